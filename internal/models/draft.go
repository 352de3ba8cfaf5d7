package models

import (
	"time"

	"github.com/google/uuid"
)

// DraftStatus defines the lifecycle of a draft.
type DraftStatus string

const (
	DraftStatusCreated   DraftStatus = "CREATED"
	DraftStatusActive    DraftStatus = "ACTIVE"
	DraftStatusPaused    DraftStatus = "PAUSED"
	DraftStatusCompleted DraftStatus = "COMPLETED"
)

// DraftSettings holds per-draft configuration.
type DraftSettings struct {
	Rounds         int         `json:"rounds"`
	TimePerPickSec int         `json:"time_per_pick_sec"`
	DraftOrder     []uuid.UUID `json:"draft_order"`
}

// TotalPicks returns the number of picks a full draft produces.
func (s DraftSettings) TotalPicks() int {
	return s.Rounds * len(s.DraftOrder)
}

// Draft represents a single league draft event.
type Draft struct {
	ID          uuid.UUID     `json:"id"`
	LeagueID    uuid.UUID     `json:"league_id"`
	Status      DraftStatus   `json:"status"`
	Settings    DraftSettings `json:"settings"`
	StartedAt   *time.Time    `json:"started_at,omitempty"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}
