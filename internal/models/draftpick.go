package models

import (
	"time"

	"github.com/google/uuid"
)

// DraftPick is one immutable record of a participant selecting a player.
// PickNumber is 1-based and global; Round and PickInRound are 1-based and
// derived from the snake order at append time.
type DraftPick struct {
	ID            uuid.UUID `json:"id"`
	DraftID       uuid.UUID `json:"draft_id"`
	PickNumber    int       `json:"pick_number"`
	Round         int       `json:"round"`
	PickInRound   int       `json:"pick_in_round"`
	ParticipantID uuid.UUID `json:"participant_id"`
	Player        PlayerRef `json:"player"`
	AutoDraft     bool      `json:"auto_draft"`
	PickedAt      time.Time `json:"picked_at"`
}
