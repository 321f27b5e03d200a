package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipview/internal/events"
)

func newSignalCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "signal <event>",
		Short: "Push an event to every connected viewer",
		Long: `Asks the backend to broadcast an event, as the native host does.

Events: reset-scroll, reload-window, progress-update (--progress),
delete-item (--id), delete-all-items, unpin-all.

delete-item and delete-all-items only update the viewers; use the viewer to
delete entries from the history.`,
		Args:    cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSignal(cmd, v, args[0])
		},
	}

	f := cmd.Flags()
	addServerFlags(cmd)
	f.Int64("id", 0, "entry id for delete-item")
	f.Int("progress", 0, "percentage for progress-update (200 = finished)")
	addConfigFlag(cmd)

	return cmd
}

func runSignal(cmd *cobra.Command, v *viper.Viper, name string) error {
	kind, err := events.ParseKind(name)
	if err != nil {
		return err
	}
	if kind == events.NewItem {
		return fmt.Errorf("%s is published by the backend when it captures an entry", kind)
	}

	client, _, err := dialBackend(cmd, v)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()
	ev := events.Event{Kind: kind, ID: v.GetInt64("id"), Progress: v.GetInt("progress")}
	if err := client.Emit(ctx, ev); err != nil {
		return fmt.Errorf("signal %s: %w", kind, err)
	}
	return nil
}
