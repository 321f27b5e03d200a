package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"go.klb.dev/clipview/internal/classify"
	"go.klb.dev/clipview/internal/events"
	"go.klb.dev/clipview/internal/render"
	"go.klb.dev/clipview/internal/store"
	"go.klb.dev/clipview/internal/syncer"
	"go.klb.dev/clipview/internal/view"
)

func newViewCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Browse the clipboard history in the terminal",
		Long: `Opens the clipboard history viewer. Entries are loaded from the backend
and kept in sync as the backend captures, deletes or pins entries.

Keys: enter copy, p pin, d delete, D D delete all, u unpin all,
l cycle language, o open link, s settings, r reload, ? help, q quit.

The viewer owns the terminal, so logs go to --log-file.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, _ []string) error { return runView(cmd, v) },
	}

	f := cmd.Flags()
	addServerFlags(cmd)
	f.String("log-file", defaultLogFile(), "log destination")
	addLoggingFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runView(cmd *cobra.Command, v *viper.Viper) error {
	logFile, err := openLogFile(v.GetString("log-file"))
	if err != nil {
		return err
	}
	defer logFile.Close()
	resolveLogging(logFile, v.GetBool("no-background"), v.GetString("log-format"), v.GetString("log-level"))

	client, transport, err := dialBackend(cmd, v)
	if err != nil {
		return err
	}
	defer client.Close()
	slog.Info("clipview viewer starting", "version", Version, "transport", transport)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	hub := events.NewHub()
	s := syncer.New(store.New(), client, hub, hub, syncer.Options{})
	model := view.New(ctx, s, render.NewSelector(classify.NewChromaDetector()))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return client.Pump(gctx, hub) })
	g.Go(func() error { return s.Run(gctx) })

	prog := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(gctx))
	_, runErr := prog.Run()
	cancel()

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("viewer stopped", "err", err)
		return fmt.Errorf("viewer: %w", err)
	}
	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return fmt.Errorf("viewer: %w", runErr)
	}
	return nil
}
