package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/draftday/draftroom/internal/models"
	"github.com/draftday/draftroom/internal/snake"
)

// State is the authoritative mutable record of one draft. It is owned by a
// single Room goroutine; nothing outside the room touches it directly.
//
// The current pick index and turn owner are always derived from the pick
// list and the fixed participant order, never stored, so they cannot
// diverge.
type State struct {
	Draft models.Draft
	Picks []models.DraftPick
}

// NewState builds the initial state for a draft.
func NewState(draft models.Draft) *State {
	if draft.Status == "" {
		draft.Status = models.DraftStatusCreated
	}
	return &State{Draft: draft}
}

// CurrentPickIndex is the 0-based count of picks made so far.
func (s *State) CurrentPickIndex() int {
	return len(s.Picks)
}

// TotalPicks is the number of picks a full draft produces.
func (s *State) TotalPicks() int {
	return s.Draft.Settings.TotalPicks()
}

// Complete reports whether every pick slot has been filled.
func (s *State) Complete() bool {
	return s.CurrentPickIndex() >= s.TotalPicks()
}

// TurnOwner returns the participant entitled to the next pick.
func (s *State) TurnOwner() uuid.UUID {
	return snake.Owner(s.Draft.Settings.DraftOrder, s.CurrentPickIndex())
}

// Start transitions Created -> Active.
func (s *State) Start(now time.Time) error {
	if s.Draft.Status != models.DraftStatusCreated {
		return ErrConflictingState
	}
	if len(s.Draft.Settings.DraftOrder) < 2 || s.Draft.Settings.Rounds < 1 {
		return ErrConflictingState
	}
	if len(s.Picks) != 0 {
		return ErrConflictingState
	}
	s.Draft.Status = models.DraftStatusActive
	s.Draft.StartedAt = &now
	s.Draft.UpdatedAt = now
	return nil
}

// Pause transitions Active -> Paused.
func (s *State) Pause(now time.Time) error {
	if s.Draft.Status != models.DraftStatusActive {
		return ErrConflictingState
	}
	s.Draft.Status = models.DraftStatusPaused
	s.Draft.UpdatedAt = now
	return nil
}

// Resume transitions Paused -> Active.
func (s *State) Resume(now time.Time) error {
	if s.Draft.Status != models.DraftStatusPaused {
		return ErrConflictingState
	}
	s.Draft.Status = models.DraftStatusActive
	s.Draft.UpdatedAt = now
	return nil
}

// Reset discards all picks and returns to Created. Legal from any state.
func (s *State) Reset(now time.Time) {
	s.Draft.Status = models.DraftStatusCreated
	s.Draft.StartedAt = nil
	s.Draft.CompletedAt = nil
	s.Draft.UpdatedAt = now
	s.Picks = nil
}

// PickRequest is a proposed pick, human or automatic. Auto-draft picks are
// always submitted as the computed turn owner.
type PickRequest struct {
	ParticipantID uuid.UUID
	Player        models.PlayerRef
	AutoDraft     bool
}

// ApplyPick validates a proposed pick against the current state and, on
// success, appends it and advances the turn. Checks short-circuit in order:
// lifecycle, turn ownership, player availability. Returns the appended pick
// and whether the draft just completed.
func (s *State) ApplyPick(req PickRequest, now time.Time) (models.DraftPick, bool, error) {
	if s.Draft.Status != models.DraftStatusActive {
		return models.DraftPick{}, false, ErrDraftNotActive
	}
	if !req.AutoDraft && s.TurnOwner() != req.ParticipantID {
		return models.DraftPick{}, false, ErrNotYourTurn
	}
	if s.PlayerDrafted(req.Player.ID) {
		return models.DraftPick{}, false, ErrPlayerAlreadyDrafted
	}

	n := len(s.Draft.Settings.DraftOrder)
	idx := s.CurrentPickIndex()
	pick := models.DraftPick{
		ID:            uuid.New(),
		DraftID:       s.Draft.ID,
		PickNumber:    idx + 1,
		Round:         snake.Round(n, idx) + 1,
		PickInRound:   snake.PickInRound(n, idx) + 1,
		ParticipantID: snake.Owner(s.Draft.Settings.DraftOrder, idx),
		Player:        req.Player,
		AutoDraft:     req.AutoDraft,
		PickedAt:      now,
	}
	s.Picks = append(s.Picks, pick)
	s.Draft.UpdatedAt = now

	completed := s.Complete()
	if completed {
		s.Draft.Status = models.DraftStatusCompleted
		s.Draft.CompletedAt = &now
	}
	return pick, completed, nil
}

// AppendRecorded applies an already-recorded pick, e.g. when hydrating from
// the pick log or replaying a duplicated delivery. Application is idempotent
// by pick-number containment: a pick number at or below the current count is
// a no-op. Returns whether the pick was appended.
func (s *State) AppendRecorded(pick models.DraftPick) bool {
	if pick.PickNumber <= len(s.Picks) {
		return false
	}
	s.Picks = append(s.Picks, pick)
	if s.Complete() && s.Draft.Status == models.DraftStatusActive {
		s.Draft.Status = models.DraftStatusCompleted
		at := pick.PickedAt
		s.Draft.CompletedAt = &at
	}
	return true
}

// PlayerDrafted reports whether the player is already on the pick list.
func (s *State) PlayerDrafted(playerID uuid.UUID) bool {
	for _, p := range s.Picks {
		if p.Player.ID == playerID {
			return true
		}
	}
	return false
}

// PicksFor returns the picks made by one participant, in draft order.
func (s *State) PicksFor(participantID uuid.UUID) []models.DraftPick {
	var out []models.DraftPick
	for _, p := range s.Picks {
		if p.ParticipantID == participantID {
			out = append(out, p)
		}
	}
	return out
}

// DraftedIDs returns the set of drafted player IDs across the whole draft.
func (s *State) DraftedIDs() map[uuid.UUID]bool {
	taken := make(map[uuid.UUID]bool, len(s.Picks))
	for _, p := range s.Picks {
		taken[p.Player.ID] = true
	}
	return taken
}
