package engine

import (
	"context"

	"github.com/google/uuid"

	"github.com/draftday/draftroom/internal/draft/events"
	"github.com/draftday/draftroom/internal/models"
)

// Catalog supplies the server-authoritative player pool for a league,
// already filtered by the sports the league has enabled. The room subtracts
// drafted players itself; clients never supply availability.
type Catalog interface {
	ListAvailablePlayers(ctx context.Context, leagueID uuid.UUID) ([]models.PlayerRef, error)
}

// Selector chooses a player for a turn with no human input. pool is the
// available players in catalog order; drafted is the turn owner's picks so
// far. Must be deterministic for identical inputs, and must return
// ErrNoAvailablePlayers on an empty pool.
type Selector interface {
	Select(pool []models.PlayerRef, drafted []models.DraftPick) (models.PlayerRef, error)
}

// Broadcaster fans out a state transition to every connected client of the
// draft. Delivery is fire-and-forget from the room's perspective:
// at-least-once, with no ordering guarantee across event types.
type Broadcaster interface {
	Broadcast(ev events.Event)
}

// RosterSink receives every applied pick for roster persistence. Roster
// storage is an external collaborator; failures are logged, never fatal to
// the draft. ClearDraft discards the draft's roster entries so a reset
// draft can re-issue the same pick numbers.
type RosterSink interface {
	AppendToRoster(ctx context.Context, participantID uuid.UUID, pick models.DraftPick) error
	ClearDraft(ctx context.Context, draftID uuid.UUID) error
}

// PickLog is write-behind persistence for the draft and its append-only
// pick list. AppendPick must be idempotent on (draft_id, pick_number).
type PickLog interface {
	AppendPick(ctx context.Context, pick models.DraftPick) error
	UpdateDraftStatus(ctx context.Context, draftID uuid.UUID, status models.DraftStatus) error
	DeletePicks(ctx context.Context, draftID uuid.UUID) error
}
