// Package grpcservice implements the History gRPC server on top of the SQLite
// history, the system clipboard and the event hub.
package grpcservice

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cli/browser"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"go.klb.dev/clipview/internal/clip"
	"go.klb.dev/clipview/internal/config"
	"go.klb.dev/clipview/internal/entry"
	"go.klb.dev/clipview/internal/events"
	"go.klb.dev/clipview/internal/history"
	"go.klb.dev/clipview/internal/rpc"
)

// History is the persistence surface the service needs. *history.DB
// implements it.
type History interface {
	IDs(ctx context.Context) ([]int64, error)
	Get(ctx context.Context, id int64) (entry.Entry, error)
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) (int64, error)
	SetPinned(ctx context.Context, id int64, pinned bool) error
	UnpinAll(ctx context.Context) (int64, error)
	ForceLanguage(ctx context.Context, id int64, language string) error
}

// Echo controls whether contents the service writes to the clipboard are
// captured again. *monitor.Monitor implements it.
type Echo interface {
	Ignore(clip.Contents)
	Forget(clip.Contents)
}

// Service implements rpc.HistoryServer.
type Service struct {
	hist History
	cb   clip.Backend
	echo Echo
	hub  *events.Hub
	cfg  config.App

	screen       Size
	settingsPath string
	openURL      func(string) error
	openFile     func(string) error
}

// Option configures a Service.
type Option func(*Service)

// WithScreen sets the screen size resize_window lays the viewer out on.
func WithScreen(s Size) Option {
	return func(svc *Service) { svc.screen = s }
}

// WithSettingsFile sets the file open_settings opens.
func WithSettingsFile(path string) Option {
	return func(svc *Service) { svc.settingsPath = path }
}

// WithOpener replaces the functions used to open URLs and files, which
// default to the system browser.
func WithOpener(openURL, openFile func(string) error) Option {
	return func(svc *Service) {
		svc.openURL = openURL
		svc.openFile = openFile
	}
}

// New returns a Service. echo may be nil when nothing captures the clipboard.
func New(hist History, cb clip.Backend, echo Echo, hub *events.Hub, cfg config.App, opts ...Option) *Service {
	s := &Service{
		hist:     hist,
		cb:       cb,
		echo:     echo,
		hub:      hub,
		cfg:      cfg,
		screen:   Size{Width: 1920, Height: 1080},
		openURL:  browser.OpenURL,
		openFile: browser.OpenFile,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Register registers the service on s.
func (s *Service) Register(reg grpc.ServiceRegistrar) {
	rpc.RegisterHistoryServer(reg, s)
}

// statusErr converts history errors to gRPC status errors.
func statusErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, history.ErrNotFound) {
		return status.Error(codes.NotFound, err.Error())
	}
	slog.Error("request failed", "op", op, "err", err)
	return status.Errorf(codes.Internal, "%s: %v", op, err)
}

func (s *Service) EntryIDs(ctx context.Context, _ *rpc.Empty) (*rpc.IDList, error) {
	ids, err := s.hist.IDs(ctx)
	if err != nil {
		return nil, statusErr("get_clipboard_entries_ids", err)
	}
	return &rpc.IDList{IDs: ids}, nil
}

// Entry returns one entry with non-image content truncated to
// max_displayed_characters.
func (s *Service) Entry(ctx context.Context, req *rpc.IDRequest) (*rpc.Entry, error) {
	e, err := s.hist.Get(ctx, req.ID)
	if err != nil {
		return nil, statusErr("get_clipboard_entry", err)
	}
	return rpc.FromEntry(e.Truncated(s.cfg.MaxDisplayedCharacters)), nil
}

func (s *Service) ConfigValue(_ context.Context, req *rpc.ConfigRequest) (*rpc.ConfigValue, error) {
	return &rpc.ConfigValue{Value: s.cfg.Value(req.Property)}, nil
}

// ResizeWindow lays the viewer out for the configured position. There is no
// window to move in a terminal, so the geometry is only logged.
func (s *Service) ResizeWindow(_ context.Context, _ *rpc.Empty) (*rpc.Empty, error) {
	g := Layout(s.cfg, s.screen)
	slog.Info("resize window", "position", s.cfg.WindowPosition,
		"x", g.X, "y", g.Y, "width", g.Width, "height", g.Height)
	return &rpc.Empty{}, nil
}

// PushToClipboard writes the full entry to the clipboard. Unless history
// rewriting is enabled the monitor is told to ignore the echo; with
// rewriting the entry is removed and the monitor recaptures it at the front.
func (s *Service) PushToClipboard(ctx context.Context, req *rpc.IDRequest) (*rpc.Empty, error) {
	e, err := s.hist.Get(ctx, req.ID)
	if err != nil {
		return nil, statusErr("push_to_clipboard", err)
	}

	var c clip.Contents
	if e.Kind() == entry.KindImage {
		img, err := base64.StdEncoding.DecodeString(e.Raw())
		if err != nil {
			return nil, status.Errorf(codes.DataLoss, "entry %d: bad image data: %v", e.ID, err)
		}
		c.Image = img
	} else {
		c.Text = []byte(e.Raw())
	}

	if s.echo != nil {
		if s.cfg.RewriteHistoryOnCopy {
			s.echo.Forget(c)
		} else {
			s.echo.Ignore(c)
		}
	}
	if err := s.cb.Write(c); err != nil {
		return nil, status.Errorf(codes.Unavailable, "write clipboard: %v", err)
	}
	slog.Debug("entry pushed to clipboard", "id", e.ID, "kind", e.Kind())

	if s.cfg.RewriteHistoryOnCopy {
		if err := s.hist.Delete(ctx, e.ID); err != nil {
			return nil, statusErr("push_to_clipboard", err)
		}
		s.hub.Publish(events.Event{Kind: events.DeleteItem, ID: e.ID})
	}
	return &rpc.Empty{}, nil
}

func (s *Service) DeleteItem(ctx context.Context, req *rpc.IDRequest) (*rpc.Empty, error) {
	if err := s.hist.Delete(ctx, req.ID); err != nil {
		return nil, statusErr("delete_item", err)
	}
	slog.Info("entry deleted", "id", req.ID)
	s.hub.Publish(events.Event{Kind: events.DeleteItem, ID: req.ID})
	return &rpc.Empty{}, nil
}

func (s *Service) DeleteAll(ctx context.Context, _ *rpc.Empty) (*rpc.Empty, error) {
	n, err := s.hist.DeleteAll(ctx)
	if err != nil {
		return nil, statusErr("delete_all", err)
	}
	slog.Info("history cleared", "deleted", n)
	s.hub.Publish(events.Event{Kind: events.DeleteAll})
	return &rpc.Empty{}, nil
}

func (s *Service) TogglePin(ctx context.Context, req *rpc.PinRequest) (*rpc.BoolReply, error) {
	if err := s.hist.SetPinned(ctx, req.ID, req.State); err != nil {
		return nil, statusErr("toggle_pin", err)
	}
	return &rpc.BoolReply{OK: true}, nil
}

func (s *Service) ForceLanguage(ctx context.Context, req *rpc.LanguageRequest) (*rpc.Empty, error) {
	if err := s.hist.ForceLanguage(ctx, req.ID, req.Language); err != nil {
		return nil, statusErr("force_language", err)
	}
	return &rpc.Empty{}, nil
}

// UnpinAll reports whether any entry was pinned.
func (s *Service) UnpinAll(ctx context.Context, _ *rpc.Empty) (*rpc.BoolReply, error) {
	n, err := s.hist.UnpinAll(ctx)
	if err != nil {
		return nil, statusErr("unpin_all", err)
	}
	return &rpc.BoolReply{OK: n > 0}, nil
}

func (s *Service) OpenSettings(_ context.Context, _ *rpc.Empty) (*rpc.Empty, error) {
	if s.settingsPath == "" {
		return nil, status.Error(codes.FailedPrecondition, "no settings file")
	}
	if err := s.openFile(s.settingsPath); err != nil {
		return nil, status.Errorf(codes.Unavailable, "open settings: %v", err)
	}
	return &rpc.Empty{}, nil
}

func (s *Service) OpenURL(_ context.Context, req *rpc.URLRequest) (*rpc.Empty, error) {
	if req.URL == "" {
		return nil, status.Error(codes.InvalidArgument, "empty url")
	}
	if err := s.openURL(req.URL); err != nil {
		return nil, status.Errorf(codes.Unavailable, "open %s: %v", req.URL, err)
	}
	return &rpc.Empty{}, nil
}

// Emit publishes a host-originated event, e.g. from "clipview signal".
func (s *Service) Emit(_ context.Context, req *rpc.Event) (*rpc.Empty, error) {
	ev, err := req.ToEvent()
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	s.hub.Publish(ev)
	return &rpc.Empty{}, nil
}

// Events streams hub events to one viewer. The response header is sent once
// the subscription exists so the client knows nothing published afterwards
// is lost.
func (s *Service) Events(_ *rpc.Empty, stream grpc.ServerStreamingServer[rpc.Event]) error {
	ctx := stream.Context()
	ch := s.hub.Subscribe(ctx, 64)
	if err := stream.SendHeader(metadata.MD{}); err != nil {
		return err
	}
	slog.Info("viewer subscribed", "peer", peerAddr(ctx))
	defer slog.Info("viewer unsubscribed", "peer", peerAddr(ctx))

	// A viewer connecting is the terminal's version of the window being shown.
	if s.cfg.ResetScrollOnShow {
		if err := stream.Send(rpc.FromEvent(events.Event{Kind: events.ResetScroll})); err != nil {
			return fmt.Errorf("send %s: %w", events.ResetScroll, err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-ch:
			if !ok {
				return nil
			}
			if err := stream.Send(rpc.FromEvent(ev)); err != nil {
				return fmt.Errorf("send %s: %w", ev, err)
			}
		}
	}
}
