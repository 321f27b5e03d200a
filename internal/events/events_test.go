package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/clipview/internal/entry"
)

type recorder struct {
	id  string
	got []Event
}

func (r *recorder) ID() string    { return r.id }
func (r *recorder) Send(e Event) { r.got = append(r.got, e) }

func TestParseKind(t *testing.T) {
	for _, k := range []Kind{NewItem, DeleteItem, DeleteAll, UnpinAll, ResetScroll, Reload, Progress} {
		got, err := ParseKind(string(k))
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := ParseKind("window-moved")
	assert.Error(t, err)
}

func TestMutatesEntries(t *testing.T) {
	assert.True(t, NewItem.MutatesEntries())
	assert.True(t, DeleteItem.MutatesEntries())
	assert.True(t, DeleteAll.MutatesEntries())
	assert.True(t, UnpinAll.MutatesEntries())
	assert.False(t, ResetScroll.MutatesEntries())
	assert.False(t, Reload.MutatesEntries())
	assert.False(t, Progress.MutatesEntries())
}

func TestHubPublish(t *testing.T) {
	h := NewHub()
	a := &recorder{id: "a"}
	b := &recorder{id: "b"}
	h.Register(a)
	h.Register(b)
	require.Equal(t, 2, h.Len())

	h.Publish(Event{Kind: DeleteItem, ID: 7})
	assert.Equal(t, []Event{{Kind: DeleteItem, ID: 7}}, a.got)
	assert.Equal(t, a.got, b.got)

	h.Unregister(b)
	h.Publish(Event{Kind: ResetScroll})
	assert.Len(t, a.got, 2)
	assert.Len(t, b.got, 1)
}

func TestSubscribe(t *testing.T) {
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	ch := h.Subscribe(ctx, 2)
	require.Equal(t, 1, h.Len())

	e := entry.New(3, entry.KindText, "hi", "")
	h.Publish(Event{Kind: NewItem, Entry: e})
	h.Publish(Event{Kind: Progress, Progress: 40})
	h.Publish(Event{Kind: Reload}) // dropped, buffer full

	assert.Equal(t, Event{Kind: NewItem, Entry: e}, <-ch)
	assert.Equal(t, Event{Kind: Progress, Progress: 40}, <-ch)

	cancel()
	require.Eventually(t, func() bool { return h.Len() == 0 }, time.Second, 5*time.Millisecond)
	_, open := <-ch
	assert.False(t, open)

	// Publishing after close must not panic.
	h.Publish(Event{Kind: Reload})
}

func TestEventString(t *testing.T) {
	assert.Equal(t, "delete-item(4)", Event{Kind: DeleteItem, ID: 4}.String())
	assert.Equal(t, "progress-update(200)", Event{Kind: Progress, Progress: 200}.String())
	assert.Equal(t, "unpin-all", Event{Kind: UnpinAll}.String())
}
