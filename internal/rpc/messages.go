package rpc

import (
	"fmt"
	"log/slog"

	"go.klb.dev/clipview/internal/entry"
	"go.klb.dev/clipview/internal/events"
)

// Empty is the request or reply of methods without parameters.
type Empty struct{}

// IDList is the ordered list of entry ids, newest first.
type IDList struct {
	IDs []int64 `json:"ids"`
}

// IDRequest addresses one entry.
type IDRequest struct {
	ID int64 `json:"id"`
}

// ConfigRequest asks for one property. An empty property asks for the whole
// configuration as JSON.
type ConfigRequest struct {
	Property string `json:"property,omitempty"`
}

// ConfigValue is a configuration value in string form.
type ConfigValue struct {
	Value string `json:"value"`
}

// PinRequest sets the pin flag of an entry.
type PinRequest struct {
	ID    int64 `json:"id"`
	State bool  `json:"state"`
}

// BoolReply is the success flag of TogglePin and UnpinAll.
type BoolReply struct {
	OK bool `json:"ok"`
}

// LanguageRequest forces the syntax language of an entry.
type LanguageRequest struct {
	ID       int64  `json:"id"`
	Language string `json:"language"`
}

// URLRequest names a URL to open.
type URLRequest struct {
	URL string `json:"url"`
}

// Entry is the wire form of a clipboard entry.
type Entry struct {
	ID             int64   `json:"id"`
	EntryType      string  `json:"entry_type"`
	Content        string  `json:"content"`
	AddedAt        string  `json:"added_at"`
	Pinned         bool    `json:"pinned"`
	ForcedLanguage *string `json:"forced_language"`
}

// FromEntry converts e to its wire form.
func FromEntry(e entry.Entry) *Entry {
	out := &Entry{
		ID:        e.ID,
		EntryType: string(e.Kind()),
		Content:   e.Raw(),
		AddedAt:   e.CreatedAt,
		Pinned:    e.Pinned,
	}
	if e.LanguageOverride != "" {
		lang := e.LanguageOverride
		out.ForcedLanguage = &lang
	}
	return out
}

// ToEntry converts w to an entry.Entry. Unknown kinds are treated as text.
func (w *Entry) ToEntry() entry.Entry {
	kind, err := entry.ParseKind(w.EntryType)
	if err != nil {
		slog.Warn("treating entry as text", "id", w.ID, "err", err)
	}
	e := entry.New(w.ID, kind, w.Content, w.AddedAt)
	e.Pinned = w.Pinned
	if w.ForcedLanguage != nil {
		e.LanguageOverride = *w.ForcedLanguage
	}
	return e
}

// Event is the wire form of a pushed event. Entry is set for
// new-clipboard-item, ID for delete-item and Progress for progress-update.
type Event struct {
	Name     string `json:"name"`
	Entry    *Entry `json:"entry,omitempty"`
	ID       *int64 `json:"id,omitempty"`
	Progress *int   `json:"progress,omitempty"`
}

// FromEvent converts ev to its wire form.
func FromEvent(ev events.Event) *Event {
	out := &Event{Name: string(ev.Kind)}
	switch ev.Kind {
	case events.NewItem:
		out.Entry = FromEntry(ev.Entry)
	case events.DeleteItem:
		id := ev.ID
		out.ID = &id
	case events.Progress:
		p := ev.Progress
		out.Progress = &p
	}
	return out
}

// ToEvent validates w and converts it to an events.Event.
func (w *Event) ToEvent() (events.Event, error) {
	kind, err := events.ParseKind(w.Name)
	if err != nil {
		return events.Event{}, err
	}
	ev := events.Event{Kind: kind}
	switch kind {
	case events.NewItem:
		if w.Entry == nil {
			return events.Event{}, fmt.Errorf("%s without entry", kind)
		}
		ev.Entry = w.Entry.ToEntry()
	case events.DeleteItem:
		if w.ID == nil {
			return events.Event{}, fmt.Errorf("%s without id", kind)
		}
		ev.ID = *w.ID
	case events.Progress:
		if w.Progress == nil {
			return events.Event{}, fmt.Errorf("%s without progress", kind)
		}
		ev.Progress = *w.Progress
	}
	return ev, nil
}
