package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/soheilhy/cmux"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"go.klb.dev/clipview/internal/clip"
	"go.klb.dev/clipview/internal/config"
	"go.klb.dev/clipview/internal/events"
	"go.klb.dev/clipview/internal/grpcservice"
	"go.klb.dev/clipview/internal/history"
	"go.klb.dev/clipview/internal/ipc"
	"go.klb.dev/clipview/internal/monitor"
)

func newServeCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Capture the clipboard and serve the history",
		Long: `Starts the clipboard history backend. Every new clipboard text or image is
stored in a SQLite database and pushed to connected viewers.

The backend serves gRPC and an HTTP/JSON API on --addr, and gRPC without
authentication on the local IPC socket.

Config file search order:
  /etc/clipview/clipview.toml
  $HOME/.config/clipview/clipview.toml
  path supplied via --config

Precedence (lowest → highest): defaults → config file → CLIPVIEW_* env vars → flags`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, _ []string) error { return runServe(cmd.Context(), v) },
	}

	f := cmd.Flags()
	f.String("addr", "127.0.0.1:8753", "TCP listen address for gRPC and HTTP")
	f.String("token", "", "shared secret for TCP clients (empty = no auth)")
	f.String("db", defaultDatabase(), "history database path (\":memory:\" for a throwaway history)")
	f.Bool("no-capture", false, "serve the history without watching the clipboard")
	f.Bool("no-ipc", false, "do not listen on the local IPC socket")
	f.Int("screen-width", 1920, "screen width used to lay out the viewer window")
	f.Int("screen-height", 1080, "screen height used to lay out the viewer window")
	addLoggingFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runServe(ctx context.Context, v *viper.Viper) error {
	setupLogging(v)

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	dbPath := v.GetString("db")
	if dbPath != history.Memory {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
			return fmt.Errorf("database dir: %w", err)
		}
	}
	hist, err := history.Open(dbPath)
	if err != nil {
		return err
	}
	defer hist.Close()

	cb := clip.New()
	defer cb.Close()

	addr := v.GetString("addr")
	token := v.GetString("token")
	slog.Info("clipview backend starting",
		"version", Version,
		"addr", addr,
		"db", dbPath,
		"clipboard", cb.Name(),
		"capture", !v.GetBool("no-capture"),
		"auth", token != "",
	)

	hub := events.NewHub()
	mon := monitor.New(hist, cb, hub, cfg.MaxDisplayedCharacters)
	svc := grpcservice.New(hist, cb, mon, hub, cfg,
		grpcservice.WithSettingsFile(v.ConfigFileUsed()),
		grpcservice.WithScreen(grpcservice.Size{
			Width:  v.GetInt("screen-width"),
			Height: v.GetInt("screen-height"),
		}),
	)
	auth := grpcservice.Auth(token)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	if !v.GetBool("no-capture") {
		g.Go(func() error { return mon.Run(gctx) })
	}

	// gRPC and the HTTP gateway share one TCP port. Clients send
	// application/grpc+json, hence the prefix match.
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	slog.Info("listening", "addr", ln.Addr())

	gw, err := svc.Gateway(auth)
	if err != nil {
		return fmt.Errorf("gateway: %w", err)
	}
	mux := cmux.New(ln)
	grpcLn := mux.MatchWithWriters(cmux.HTTP2MatchHeaderFieldPrefixSendSettings("content-type", "application/grpc"))
	httpLn := mux.Match(cmux.HTTP1Fast())

	tcpSrv := grpc.NewServer(auth.ServerOptions()...)
	svc.Register(tcpSrv)
	httpSrv := &http.Server{Handler: gw, ReadHeaderTimeout: 10 * time.Second}

	g.Go(func() error { return ignoreAfter(gctx, tcpSrv.Serve(grpcLn)) })
	g.Go(func() error { return ignoreAfter(gctx, httpSrv.Serve(httpLn)) })
	g.Go(func() error { return ignoreAfter(gctx, mux.Serve()) })

	// IPC socket for viewers on this machine.
	var ipcSrv *grpc.Server
	if !v.GetBool("no-ipc") {
		ipcLn, err := ipc.Listen()
		if err != nil {
			slog.Warn("IPC socket unavailable", "err", err)
		} else {
			slog.Info("IPC socket listening", "path", ipc.SocketPath())
			ipcSrv = grpc.NewServer()
			svc.Register(ipcSrv)
			g.Go(func() error { return ignoreAfter(gctx, ipcSrv.Serve(ipcLn)) })
		}
	}

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")
		tcpSrv.Stop()
		if ipcSrv != nil {
			ipcSrv.Stop()
		}
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(sctx)
		mux.Close()
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// ignoreAfter drops the error a server returns once shutdown has begun.
func ignoreAfter(ctx context.Context, err error) error {
	if ctx.Err() != nil || errors.Is(err, http.ErrServerClosed) || errors.Is(err, cmux.ErrListenerClosed) {
		return nil
	}
	return err
}
