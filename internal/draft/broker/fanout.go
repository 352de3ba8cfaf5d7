// Package broker distributes draft events from the rooms to consumers: an
// in-process fanout for same-process subscribers, and a NATS JetStream
// publisher for durable cross-process delivery.
package broker

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/draftday/draftroom/internal/draft/engine"
	"github.com/draftday/draftroom/internal/draft/events"
)

// Fanout delivers events to in-process subscribers keyed by draft ID.
// Delivery is at-least-once from the room's perspective and never blocks
// the writer: a subscriber whose buffer is full loses the event and must
// reconcile from a snapshot.
type Fanout struct {
	mu   sync.RWMutex
	subs map[uuid.UUID]map[*Subscription]bool
}

// Subscription receives the event stream for one draft.
type Subscription struct {
	draftID uuid.UUID
	ch      chan events.Event
	fanout  *Fanout

	closeOnce sync.Once
}

var _ engine.Broadcaster = (*Fanout)(nil)

// NewFanout creates an empty fanout.
func NewFanout() *Fanout {
	return &Fanout{subs: make(map[uuid.UUID]map[*Subscription]bool)}
}

// Subscribe registers a consumer for one draft's events.
func (f *Fanout) Subscribe(draftID uuid.UUID, buffer int) *Subscription {
	if buffer <= 0 {
		buffer = 64
	}
	sub := &Subscription{
		draftID: draftID,
		ch:      make(chan events.Event, buffer),
		fanout:  f,
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subs[draftID] == nil {
		f.subs[draftID] = make(map[*Subscription]bool)
	}
	f.subs[draftID][sub] = true
	return sub
}

// Events is the receive side of the subscription.
func (s *Subscription) Events() <-chan events.Event { return s.ch }

// Close unregisters the subscription.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		f := s.fanout
		f.mu.Lock()
		if subs, ok := f.subs[s.draftID]; ok {
			delete(subs, s)
			if len(subs) == 0 {
				delete(f.subs, s.draftID)
			}
		}
		f.mu.Unlock()
		close(s.ch)
	})
}

// Broadcast implements engine.Broadcaster.
func (f *Fanout) Broadcast(ev events.Event) {
	f.mu.RLock()
	targets := make([]*Subscription, 0, len(f.subs[ev.DraftID]))
	for sub := range f.subs[ev.DraftID] {
		targets = append(targets, sub)
	}
	f.mu.RUnlock()

	for _, sub := range targets {
		select {
		case sub.ch <- ev:
		default:
			log.Warn().
				Str("draft_id", ev.DraftID.String()).
				Str("event_type", string(ev.Type)).
				Msg("subscriber buffer full, dropping event")
		}
	}
}

// Multi broadcasts to several broadcasters in order.
type Multi []engine.Broadcaster

var _ engine.Broadcaster = (Multi)(nil)

// Broadcast implements engine.Broadcaster.
func (m Multi) Broadcast(ev events.Event) {
	for _, b := range m {
		b.Broadcast(ev)
	}
}
