// Package mirror maintains a client-side read copy of one draft, rebuilt
// from broadcast events. The mirror is a cache, never a second source of
// truth: every event applies idempotently, the turn owner is re-derived
// from the snake sequencer rather than trusted from the wire, and any gap
// is repaired by reconciling against an authoritative snapshot.
package mirror

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/draftday/draftroom/internal/draft/engine"
	"github.com/draftday/draftroom/internal/draft/events"
	"github.com/draftday/draftroom/internal/models"
	"github.com/draftday/draftroom/internal/snake"
)

// Mirror is a local copy of draft state for one connection.
type Mirror struct {
	mu sync.RWMutex

	draftID      uuid.UUID
	status       models.DraftStatus
	order        []uuid.UUID
	totalRounds  int
	totalPicks   int
	picks        map[int]models.DraftPick // keyed by pick number
	remainingSec int
}

// TurnView is the mirror's answer to "whose turn is it".
type TurnView struct {
	ParticipantID uuid.UUID
	PickIndex     int
	Round         int
	PickInRound   int
	RemainingSec  int
}

// New creates an empty mirror for a draft. State arrives via Apply or
// Reconcile.
func New(draftID uuid.UUID) *Mirror {
	return &Mirror{
		draftID: draftID,
		status:  models.DraftStatusCreated,
		picks:   make(map[int]models.DraftPick),
	}
}

// Apply folds one broadcast event into the local copy. Application is
// idempotent and tolerates re-delivery and cross-type reordering; events
// for other drafts are rejected.
func (m *Mirror) Apply(ev events.Event) error {
	if ev.DraftID != m.draftID {
		return fmt.Errorf("event for draft %s applied to mirror of %s", ev.DraftID, m.draftID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	switch p := ev.Payload.(type) {
	case events.DraftStartedPayload:
		m.status = models.DraftStatusActive
		m.order = append([]uuid.UUID(nil), p.Order...)
		m.totalRounds = p.TotalRounds
		m.totalPicks = p.TotalPicks
		m.remainingSec = p.TimePerPickSec

	case events.TurnChangedPayload:
		// The owner is re-derived locally; the wire field is only a
		// consistency check against the sequencer.
		if len(m.order) > 0 && p.PickIndex < m.totalPicks {
			derived := snake.Owner(m.order, p.PickIndex)
			if derived != p.ParticipantID {
				log.Warn().
					Str("draft_id", m.draftID.String()).
					Int("pick_index", p.PickIndex).
					Str("wire_participant", p.ParticipantID.String()).
					Str("derived_participant", derived.String()).
					Msg("turn owner mismatch; trusting sequencer")
			}
		}
		if p.PickIndex >= m.nextPickIndexLocked() {
			m.remainingSec = p.TimerDurationSec
		}

	case events.PlayerDraftedPayload:
		// No-op when the pick number is already present.
		if _, exists := m.picks[p.Pick.PickNumber]; !exists {
			m.picks[p.Pick.PickNumber] = p.Pick
		}

	case events.DraftPausedPayload:
		m.status = models.DraftStatusPaused
		m.remainingSec = p.RemainingSec

	case events.DraftResumedPayload:
		m.status = models.DraftStatusActive
		m.remainingSec = p.RemainingSec

	case events.DraftCompletedPayload:
		m.status = models.DraftStatusCompleted
		m.remainingSec = 0

	case events.DraftResetPayload:
		m.status = models.DraftStatusCreated
		m.picks = make(map[int]models.DraftPick)
		m.remainingSec = 0

	case events.TimerTickPayload:
		if p.PickIndex == m.nextPickIndexLocked() {
			m.remainingSec = p.RemainingSec
		}

	default:
		return fmt.Errorf("unknown event payload %T", ev.Payload)
	}
	return nil
}

// Reconcile replaces the local copy with an authoritative snapshot. This is
// the safety net for lost events; the surrounding system decides when to
// fetch one.
func (m *Mirror) Reconcile(snap engine.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.status = snap.Draft.Status
	m.order = append([]uuid.UUID(nil), snap.Draft.Settings.DraftOrder...)
	m.totalRounds = snap.Draft.Settings.Rounds
	m.totalPicks = snap.Draft.Settings.TotalPicks()
	m.remainingSec = snap.RemainingSec
	m.picks = make(map[int]models.DraftPick, len(snap.Picks))
	for _, p := range snap.Picks {
		m.picks[p.PickNumber] = p
	}
}

// Status returns the mirrored lifecycle.
func (m *Mirror) Status() models.DraftStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// CurrentTurn derives the turn owner from the participant order and the
// contiguous pick prefix. ok is false before the order is known and after
// completion.
func (m *Mirror) CurrentTurn() (TurnView, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	idx := m.nextPickIndexLocked()
	if len(m.order) == 0 || m.totalPicks == 0 || idx >= m.totalPicks {
		return TurnView{}, false
	}
	n := len(m.order)
	return TurnView{
		ParticipantID: snake.Owner(m.order, idx),
		PickIndex:     idx,
		Round:         snake.Round(n, idx) + 1,
		PickInRound:   snake.PickInRound(n, idx) + 1,
		RemainingSec:  m.remainingSec,
	}, true
}

// Picks returns the mirrored picks in pick-number order.
func (m *Mirror) Picks() []models.DraftPick {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.DraftPick, 0, len(m.picks))
	for _, p := range m.picks {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PickNumber < out[j].PickNumber })
	return out
}

// RosterFor returns one participant's mirrored picks in draft order.
func (m *Mirror) RosterFor(participantID uuid.UUID) []models.DraftPick {
	var out []models.DraftPick
	for _, p := range m.Picks() {
		if p.ParticipantID == participantID {
			out = append(out, p)
		}
	}
	return out
}

// Available filters a catalogue down to players not yet drafted in the
// mirrored state.
func (m *Mirror) Available(catalogue []models.PlayerRef) []models.PlayerRef {
	m.mu.RLock()
	taken := make(map[uuid.UUID]bool, len(m.picks))
	for _, p := range m.picks {
		taken[p.Player.ID] = true
	}
	m.mu.RUnlock()

	out := make([]models.PlayerRef, 0, len(catalogue))
	for _, p := range catalogue {
		if !taken[p.ID] {
			out = append(out, p)
		}
	}
	return out
}

// nextPickIndexLocked is the length of the contiguous pick prefix: the
// first index whose 1-based pick number is absent. A gap (lost
// PlayerDrafted) deliberately holds the index back until reconciliation
// fills it.
func (m *Mirror) nextPickIndexLocked() int {
	idx := 0
	for {
		if _, ok := m.picks[idx+1]; !ok {
			return idx
		}
		idx++
	}
}
