// Package render decides the presentation of every entry in the store.
//
// Auto-detection is the only expensive step of classification, so its
// outcome is remembered per entry and content. An entry with a language
// override never reaches the detector: the override is authoritative for the
// rest of the session.
package render

import (
	"sync"

	"go.klb.dev/clipview/internal/classify"
	"go.klb.dev/clipview/internal/entry"
	"go.klb.dev/clipview/internal/store"
)

// Card is an entry ready to be drawn.
type Card struct {
	store.Item
	classify.Result
}

type cached struct {
	raw string
	det classify.Detection
}

// Selector classifies entries, caching detector results by entry id.
type Selector struct {
	detector classify.Detector

	mu    sync.Mutex
	cache map[int64]cached
	runs  int
}

// NewSelector returns a Selector over d. A nil detector disables
// highlighting of entries without an override.
func NewSelector(d classify.Detector) *Selector {
	return &Selector{detector: d, cache: make(map[int64]cached)}
}

// Select classifies e.
func (s *Selector) Select(e entry.Entry) classify.Result {
	if s.detector == nil {
		return classify.Classify(e, nil)
	}
	return classify.Classify(e, classify.DetectorFunc(func(text string) classify.Detection {
		return s.detect(e.ID, text)
	}))
}

// Cards classifies a store snapshot in order and forgets cached results for
// entries no longer present.
func (s *Selector) Cards(items []store.Item) []Card {
	out := make([]Card, len(items))
	live := make(map[int64]struct{}, len(items))
	for i, it := range items {
		live[it.ID] = struct{}{}
		out[i] = Card{Item: it, Result: s.Select(it.Entry)}
	}
	s.prune(live)
	return out
}

// DetectorRuns reports how many times the detector has been invoked.
func (s *Selector) DetectorRuns() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs
}

func (s *Selector) detect(id int64, text string) classify.Detection {
	s.mu.Lock()
	if c, ok := s.cache[id]; ok && c.raw == text {
		s.mu.Unlock()
		return c.det
	}
	s.runs++
	s.mu.Unlock()

	det := s.detector.Detect(text)

	s.mu.Lock()
	s.cache[id] = cached{raw: text, det: det}
	s.mu.Unlock()
	return det
}

func (s *Selector) prune(live map[int64]struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.cache {
		if _, ok := live[id]; !ok {
			delete(s.cache, id)
		}
	}
}
