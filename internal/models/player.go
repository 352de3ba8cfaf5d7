package models

import (
	"github.com/google/uuid"
)

// PlayerRef identifies a draftable player plus the denormalized fields the
// UI needs to render a pick without a follow-up fetch.
type PlayerRef struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"full_name"`
	Position string    `json:"position"` // normalized, e.g. "QB", "SP", "G"
	Team     string    `json:"team"`
	Sport    string    `json:"sport"` // "nfl", "mlb", "nba"
}
