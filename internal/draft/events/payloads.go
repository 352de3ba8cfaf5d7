package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/draftday/draftroom/internal/models"
)

// DraftStartedPayload announces that a draft went live. Order is the fixed
// participant sequence every client needs to re-derive turn ownership.
type DraftStartedPayload struct {
	Order          []uuid.UUID `json:"order"`
	TotalRounds    int         `json:"total_rounds"`
	TotalPicks     int         `json:"total_picks"`
	TimePerPickSec int         `json:"time_per_pick_sec"`
	StartedAt      time.Time   `json:"started_at"`
}

// TurnChangedPayload announces the new current turn. ParticipantID is
// redundant with the snake derivation from (order, pick_index); receivers
// use it only as a consistency check.
type TurnChangedPayload struct {
	ParticipantID    uuid.UUID `json:"participant_id"`
	PickIndex        int       `json:"pick_index"`
	Round            int       `json:"round"`
	PickInRound      int       `json:"pick_in_round"`
	TimerDurationSec int       `json:"timer_duration_sec"`
	Deadline         time.Time `json:"deadline"`
}

// PlayerDraftedPayload carries the full appended pick.
type PlayerDraftedPayload struct {
	Pick models.DraftPick `json:"pick"`
}

// DraftPausedPayload freezes the countdown at RemainingSec.
type DraftPausedPayload struct {
	PausedAt     time.Time `json:"paused_at"`
	RemainingSec int       `json:"remaining_sec"`
}

// DraftResumedPayload continues the countdown from RemainingSec.
type DraftResumedPayload struct {
	ResumedAt    time.Time `json:"resumed_at"`
	RemainingSec int       `json:"remaining_sec"`
}

// DraftCompletedPayload marks the draft immutable.
type DraftCompletedPayload struct {
	CompletedAt time.Time `json:"completed_at"`
	TotalPicks  int       `json:"total_picks"`
	Duration    string    `json:"duration,omitempty"`
}

// DraftResetPayload discards all picks and returns the draft to created.
type DraftResetPayload struct {
	ResetAt time.Time `json:"reset_at"`
}

// TimerTickPayload is a periodic countdown update for the current turn.
type TimerTickPayload struct {
	PickIndex    int       `json:"pick_index"`
	RemainingSec int       `json:"remaining_sec"`
	TickedAt     time.Time `json:"ticked_at"`
}
