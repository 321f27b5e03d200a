// Package backend is the viewer's gRPC client of the History service. Client
// implements the request/response surface the synchronizer needs, and Pump
// relays pushed events into a local hub, reconnecting as needed.
package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"go.klb.dev/clipview/internal/entry"
	"go.klb.dev/clipview/internal/events"
	"go.klb.dev/clipview/internal/rpc"
)

var (
	// ErrNotFound is returned for ids the backend does not know.
	ErrNotFound = errors.New("entry not found")
	// ErrClosed is returned by calls on a closed Client.
	ErrClosed = errors.New("backend: client closed")
)

const (
	defaultTimeout  = 10 * time.Second
	defaultRetryMin = time.Second
	defaultRetryMax = 30 * time.Second
)

// Publisher receives relayed events. *events.Hub implements it.
type Publisher interface {
	Publish(events.Event)
}

// Client talks to a History server.
type Client struct {
	conn    *grpc.ClientConn
	rpc     *rpc.HistoryClient
	timeout time.Duration

	retryMin time.Duration
	retryMax time.Duration
	dialOpts []grpc.DialOption

	closed atomic.Bool
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds every unary call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithRetry sets the reconnect back-off range of Pump.
func WithRetry(minDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.retryMin = minDelay
		c.retryMax = maxDelay
	}
}

// WithDialOptions adds gRPC dial options, e.g. a context dialer for the
// local IPC socket. It only affects Dial.
func WithDialOptions(o ...grpc.DialOption) Option {
	return func(c *Client) { c.dialOpts = append(c.dialOpts, o...) }
}

// Dial returns a Client for target, e.g. "unix:///run/user/1000/clipview.sock"
// or "localhost:8753". The connection is established lazily. token, when set,
// is sent as a bearer token with every call.
func Dial(target, token string, opts ...Option) (*Client, error) {
	c := New(nil, opts...)
	dopts := append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, c.dialOpts...)
	if token != "" {
		dopts = append(dopts, grpc.WithPerRPCCredentials(bearer(token)))
	}
	conn, err := grpc.NewClient(target, dopts...)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", target, err)
	}
	c.rpc = rpc.NewHistoryClient(conn)
	c.conn = conn
	return c, nil
}

// New returns a Client over an existing connection. Close does not close
// cc unless the Client was created by Dial.
func New(cc grpc.ClientConnInterface, opts ...Option) *Client {
	c := &Client{
		rpc:      rpc.NewHistoryClient(cc),
		timeout:  defaultTimeout,
		retryMin: defaultRetryMin,
		retryMax: defaultRetryMax,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Close releases the connection.
func (c *Client) Close() error {
	if c.closed.Swap(true) || c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func (c *Client) call(ctx context.Context) (context.Context, context.CancelFunc, error) {
	if c.closed.Load() {
		return nil, nil, ErrClosed
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	return ctx, cancel, nil
}

// mapErr translates gRPC status errors into package errors.
func mapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if st, ok := status.FromError(err); ok && st.Code() == codes.NotFound {
		return fmt.Errorf("%s: %w: %s", op, ErrNotFound, st.Message())
	}
	return fmt.Errorf("%s: %w", op, err)
}

// EntryIDs returns every entry id, newest first.
func (c *Client) EntryIDs(ctx context.Context) ([]int64, error) {
	ctx, cancel, err := c.call(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()
	out, err := c.rpc.EntryIDs(ctx, &rpc.Empty{})
	if err != nil {
		return nil, mapErr("get_clipboard_entries_ids", err)
	}
	return out.IDs, nil
}

// Entry fetches one entry.
func (c *Client) Entry(ctx context.Context, id int64) (entry.Entry, error) {
	ctx, cancel, err := c.call(ctx)
	if err != nil {
		return entry.Entry{}, err
	}
	defer cancel()
	out, err := c.rpc.Entry(ctx, &rpc.IDRequest{ID: id})
	if err != nil {
		return entry.Entry{}, mapErr("get_clipboard_entry", err)
	}
	return out.ToEntry(), nil
}

// ConfigValue returns one configuration property, or all of them as JSON
// when property is empty.
func (c *Client) ConfigValue(ctx context.Context, property string) (string, error) {
	ctx, cancel, err := c.call(ctx)
	if err != nil {
		return "", err
	}
	defer cancel()
	out, err := c.rpc.ConfigValue(ctx, &rpc.ConfigRequest{Property: property})
	if err != nil {
		return "", mapErr("get_config_value", err)
	}
	return out.Value, nil
}

func (c *Client) ResizeWindow(ctx context.Context) error {
	ctx, cancel, err := c.call(ctx)
	if err != nil {
		return err
	}
	defer cancel()
	_, err = c.rpc.ResizeWindow(ctx, &rpc.Empty{})
	return mapErr("resize_window", err)
}

func (c *Client) PushToClipboard(ctx context.Context, id int64) error {
	ctx, cancel, err := c.call(ctx)
	if err != nil {
		return err
	}
	defer cancel()
	_, err = c.rpc.PushToClipboard(ctx, &rpc.IDRequest{ID: id})
	return mapErr("push_to_clipboard", err)
}

func (c *Client) DeleteItem(ctx context.Context, id int64) error {
	ctx, cancel, err := c.call(ctx)
	if err != nil {
		return err
	}
	defer cancel()
	_, err = c.rpc.DeleteItem(ctx, &rpc.IDRequest{ID: id})
	return mapErr("delete_item", err)
}

func (c *Client) DeleteAll(ctx context.Context) error {
	ctx, cancel, err := c.call(ctx)
	if err != nil {
		return err
	}
	defer cancel()
	_, err = c.rpc.DeleteAll(ctx, &rpc.Empty{})
	return mapErr("delete_all", err)
}

// TogglePin sets the pin flag and reports whether the backend accepted it.
func (c *Client) TogglePin(ctx context.Context, id int64, pinned bool) (bool, error) {
	ctx, cancel, err := c.call(ctx)
	if err != nil {
		return false, err
	}
	defer cancel()
	out, err := c.rpc.TogglePin(ctx, &rpc.PinRequest{ID: id, State: pinned})
	if err != nil {
		return false, mapErr("toggle_pin", err)
	}
	return out.OK, nil
}

func (c *Client) ForceLanguage(ctx context.Context, id int64, language string) error {
	ctx, cancel, err := c.call(ctx)
	if err != nil {
		return err
	}
	defer cancel()
	_, err = c.rpc.ForceLanguage(ctx, &rpc.LanguageRequest{ID: id, Language: language})
	return mapErr("force_language", err)
}

// UnpinAll clears every pin flag and reports whether any was set.
func (c *Client) UnpinAll(ctx context.Context) (bool, error) {
	ctx, cancel, err := c.call(ctx)
	if err != nil {
		return false, err
	}
	defer cancel()
	out, err := c.rpc.UnpinAll(ctx, &rpc.Empty{})
	if err != nil {
		return false, mapErr("unpin_all", err)
	}
	return out.OK, nil
}

func (c *Client) OpenSettings(ctx context.Context) error {
	ctx, cancel, err := c.call(ctx)
	if err != nil {
		return err
	}
	defer cancel()
	_, err = c.rpc.OpenSettings(ctx, &rpc.Empty{})
	return mapErr("open_settings", err)
}

func (c *Client) OpenURL(ctx context.Context, url string) error {
	ctx, cancel, err := c.call(ctx)
	if err != nil {
		return err
	}
	defer cancel()
	_, err = c.rpc.OpenURL(ctx, &rpc.URLRequest{URL: url})
	return mapErr("open_url", err)
}

// Emit asks the backend to push ev to every connected viewer.
func (c *Client) Emit(ctx context.Context, ev events.Event) error {
	ctx, cancel, err := c.call(ctx)
	if err != nil {
		return err
	}
	defer cancel()
	_, err = c.rpc.Emit(ctx, rpc.FromEvent(ev))
	return mapErr("emit", err)
}

// Pump relays the backend's pushed events into p until ctx is done. Lost
// streams are reopened with exponential back-off; every stream opened after
// the first attempt starts with a reload-window event, since events may have
// been missed meanwhile.
func (c *Client) Pump(ctx context.Context, p Publisher) error {
	delay := c.retryMin
	attempts := 0
	for {
		if c.closed.Load() {
			return ErrClosed
		}
		err := c.relay(ctx, p, attempts > 0, func() { delay = c.retryMin })
		attempts++
		if ctx.Err() != nil {
			return nil
		}
		slog.Warn("event stream lost", "err", err, "retry_in", delay)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil
		}
		delay = min(delay*2, c.retryMax)
	}
}

// relay runs one Events stream to completion.
func (c *Client) relay(ctx context.Context, p Publisher, reconnect bool, opened func()) error {
	stream, err := c.rpc.Events(ctx, &rpc.Empty{})
	if err != nil {
		return fmt.Errorf("open event stream: %w", err)
	}
	// The server sends a header once it has subscribed.
	if _, err := stream.Header(); err != nil {
		return fmt.Errorf("open event stream: %w", err)
	}
	opened()
	slog.Info("event stream open")
	if reconnect {
		p.Publish(events.Event{Kind: events.Reload})
	}

	for {
		w, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return errors.New("stream closed by server")
		}
		if err != nil {
			return err
		}
		ev, err := w.ToEvent()
		if err != nil {
			slog.Warn("ignoring malformed event", "name", w.Name, "err", err)
			continue
		}
		p.Publish(ev)
	}
}

// bearer attaches the authorization header to every call.
type bearer string

func (b bearer) GetRequestMetadata(_ context.Context, _ ...string) (map[string]string, error) {
	return map[string]string{"authorization": "Bearer " + string(b)}, nil
}

func (bearer) RequireTransportSecurity() bool { return false }
