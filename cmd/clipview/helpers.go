package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"google.golang.org/grpc"

	"go.klb.dev/clipview/internal/backend"
	"go.klb.dev/clipview/internal/ipc"
)

// dialBackend connects to the local backend over IPC when one is running and
// --server was not given, otherwise to --server over TCP. The second result
// describes the transport for logs and output.
func dialBackend(cmd *cobra.Command, v *viper.Viper, opts ...backend.Option) (*backend.Client, string, error) {
	if !cmd.Flags().Changed("server") && ipc.IsRunning() {
		ipcOpts := append([]backend.Option{backend.WithDialOptions(grpc.WithContextDialer(ipc.Dial))}, opts...)
		c, err := backend.Dial(ipc.Target, "", ipcOpts...)
		if err == nil {
			return c, fmt.Sprintf("ipc (%s)", ipc.SocketPath()), nil
		}
		slog.Warn("IPC dial failed, falling back to TCP", "err", err)
	}

	addr := v.GetString("server")
	c, err := backend.Dial(addr, v.GetString("token"), opts...)
	if err != nil {
		return nil, "", err
	}
	return c, fmt.Sprintf("tcp (%s)", addr), nil
}

// xdgDir returns $env/clipview, or $HOME/fallback/clipview when env is
// unset, or the OS temp dir as a last resort.
func xdgDir(env, fallback string) string {
	if d := os.Getenv(env); d != "" {
		return filepath.Join(d, "clipview")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, fallback, "clipview")
	}
	return filepath.Join(os.TempDir(), "clipview")
}

func defaultDatabase() string {
	return filepath.Join(xdgDir("XDG_DATA_HOME", ".local/share"), "history.db")
}

func defaultLogFile() string {
	return filepath.Join(xdgDir("XDG_STATE_HOME", ".local/state"), "clipview.log")
}

// openLogFile opens path for appending, creating its directory.
func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("log file: %w", err)
	}
	return f, nil
}
