package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipview/internal/backend"
	"go.klb.dev/clipview/internal/classify"
	"go.klb.dev/clipview/internal/events"
	"go.klb.dev/clipview/internal/render"
	"go.klb.dev/clipview/internal/store"
	"go.klb.dev/clipview/internal/syncer"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// addedAtLayout is how the backend formats added_at.
const addedAtLayout = "2006-01-02 15:04:05"

func newListCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the clipboard history",
		Long: `Loads the clipboard history once, the same way the viewer does, and prints
one row per entry with its kind, how the viewer would render it and a preview.

If a local backend is running, the request is sent via the IPC socket. Pass
--server to target a specific backend directly over TCP.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, _ []string) error { return runList(cmd, v) },
	}

	f := cmd.Flags()
	addServerFlags(cmd)
	f.Bool("json", false, "output raw JSON")
	f.Int("width", 60, "preview width in characters")
	f.Duration("timeout", 30*time.Second, "give up loading after this long")
	addLoggingFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

// listing is one row of "clipview list --json".
type listing struct {
	ID       int64  `json:"id"`
	Kind     string `json:"entry_type"`
	Mode     string `json:"mode"`
	Language string `json:"language,omitempty"`
	Pinned   bool   `json:"pinned"`
	AddedAt  string `json:"added_at"`
	Content  string `json:"content"`
}

func runList(cmd *cobra.Command, v *viper.Viper) error {
	setupLogging(v)
	timeout := v.GetDuration("timeout")

	client, transport, err := dialBackend(cmd, v)
	if err != nil {
		return err
	}
	defer client.Close()
	slog.Debug("listing entries", "transport", transport)

	cards, err := loadCards(cmd.Context(), client, timeout)
	if err != nil {
		return err
	}

	if v.GetBool("json") {
		return printJSON(os.Stdout, cards)
	}

	printCards(os.Stdout, cards, v.GetInt("width"))
	return nil
}

func printJSON(w io.Writer, cards []render.Card) error {
	out := make([]listing, len(cards))
	for i, c := range cards {
		out[i] = listing{
			ID:       c.ID,
			Kind:     string(c.Kind()),
			Mode:     string(c.Mode),
			Language: c.Language,
			Pinned:   c.Pinned,
			AddedAt:  c.CreatedAt,
			Content:  c.Raw(),
		}
	}
	enc, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encode listing: %w", err)
	}
	if _, err := fmt.Fprintln(w, string(enc)); err != nil {
		return fmt.Errorf("write listing: %w", err)
	}
	return nil
}

// loadCards runs one bootstrap and classifies the loaded entries.
func loadCards(ctx context.Context, client *backend.Client, timeout time.Duration) ([]render.Card, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	hub := events.NewHub()
	s := syncer.New(store.New(), client, hub, hub, syncer.Options{})
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	for {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("load history: %w", ctx.Err())
		case err := <-done:
			done <- err
			return nil, fmt.Errorf("load history: %w", err)
		case sig := <-s.Signals():
			if sig.Kind != syncer.SignalState {
				continue
			}
			switch sig.State {
			case syncer.StateFailed:
				return nil, fmt.Errorf("load history: %w", sig.Err)
			case syncer.StateSettling, syncer.StateReady:
				sel := render.NewSelector(classify.NewChromaDetector())
				return sel.Cards(s.Store().Snapshot()), nil
			}
		}
	}
}

func printCards(w io.Writer, cards []render.Card, width int) {
	if len(cards) == 0 {
		fmt.Fprintln(w, "Clipboard history is empty.")
		return
	}

	tw := tabwriter.NewWriter(w, 1, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "\tID\tKIND\tMODE\tLANGUAGE\tADDED\tPREVIEW\n")
	_, _ = fmt.Fprintf(tw, "\t--\t----\t----\t--------\t-----\t-------\n")
	for _, c := range cards {
		marker := ""
		if c.Pinned {
			marker = "*"
		}
		lang := c.Language
		if lang == "" {
			lang = "-"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%s\n",
			marker, c.ID, c.Kind(), c.Mode, lang, addedAge(c.CreatedAt), c.Preview(width),
		)
	}
	_ = tw.Flush()
}

// addedAge renders added_at relative to now, or as-is when it does not parse.
func addedAge(s string) string {
	t, err := time.ParseInLocation(addedAtLayout, s, time.UTC)
	if err != nil {
		if s == "" {
			return "-"
		}
		return s
	}
	return humanize.Time(t)
}
