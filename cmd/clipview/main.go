// clipview: clipboard history viewer.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"go.klb.dev/clipview/internal/logging"
)

// Version is set at build time via -ldflags "-X main.Version=x.y.z".
var Version = "dev"

func main() {
	root := &cobra.Command{
		Use:   "clipview",
		Short: "Clipboard history viewer",
		Long: `clipview keeps a searchable history of everything copied to the system
clipboard and shows it as a strip of cards in the terminal.

Run "clipview serve" to capture the clipboard into the history database and
"clipview view" to browse it. The viewer reaches a local backend over the IPC
socket and a remote one over TCP with --server.

Config file search order (first found wins):
  /etc/clipview/clipview.toml
  $HOME/.config/clipview/clipview.toml
  path supplied via --config

All flags can be set via CLIPVIEW_<FLAG> env vars or config-file keys.
Backend display settings live in the [app] table of the same file.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newServeCmd(),
		newViewCmd(),
		newListCmd(),
		newSignalCmd(),
		newVersionCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("clipview %s\n", Version)
		},
	}
}

// resolveLogging sets up the global slog logger after flags are parsed.
func resolveLogging(w io.Writer, interactive bool, formatStr, levelStr string) {
	format := logging.ParseFormat(formatStr)
	level := logging.ParseLevel(levelStr)
	if levelStr == "" {
		if interactive {
			level = logging.ParseLevel("debug")
		} else {
			level = logging.ParseLevel("info")
		}
	}
	logging.Setup(w, format, level)
}
