package service

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/draftday/draftroom/internal/draft/engine"
	"github.com/draftday/draftroom/internal/models"
)

// RosterBook collects applied picks per participant. It backs the roster
// read endpoint; durable roster storage belongs to the league system and is
// out of scope here.
type RosterBook struct {
	mu      sync.RWMutex
	rosters map[uuid.UUID][]models.DraftPick
}

var _ engine.RosterSink = (*RosterBook)(nil)

// NewRosterBook creates an empty roster book.
func NewRosterBook() *RosterBook {
	return &RosterBook{rosters: make(map[uuid.UUID][]models.DraftPick)}
}

// AppendToRoster implements engine.RosterSink. Duplicate deliveries of the
// same pick number are dropped.
func (b *RosterBook) AppendToRoster(_ context.Context, participantID uuid.UUID, pick models.DraftPick) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, existing := range b.rosters[participantID] {
		if existing.DraftID == pick.DraftID && existing.PickNumber == pick.PickNumber {
			return nil
		}
	}
	b.rosters[participantID] = append(b.rosters[participantID], pick)
	return nil
}

// RosterFor returns a participant's picks across drafts, in arrival order.
func (b *RosterBook) RosterFor(participantID uuid.UUID) []models.DraftPick {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]models.DraftPick, len(b.rosters[participantID]))
	copy(out, b.rosters[participantID])
	return out
}

// ClearDraft implements engine.RosterSink. A reset draft re-issues pick
// numbers from one, so its old entries must not survive the dedupe check.
func (b *RosterBook) ClearDraft(_ context.Context, draftID uuid.UUID) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for pid, picks := range b.rosters {
		kept := picks[:0]
		for _, p := range picks {
			if p.DraftID != draftID {
				kept = append(kept, p)
			}
		}
		if len(kept) == 0 {
			delete(b.rosters, pid)
			continue
		}
		b.rosters[pid] = kept
	}
	return nil
}
