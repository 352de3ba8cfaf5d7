package engine

import "errors"

// Validation and lifecycle failures are values returned to the submitter;
// none of them mutate draft state and none terminate the hosting process.
var (
	// ErrDraftNotActive rejects picks while the draft is created, paused
	// or completed.
	ErrDraftNotActive = errors.New("draft is not active")

	// ErrNotYourTurn rejects a pick submitted by anyone other than the
	// current turn owner.
	ErrNotYourTurn = errors.New("not your turn")

	// ErrPlayerAlreadyDrafted rejects a pick for a player already taken
	// in this draft.
	ErrPlayerAlreadyDrafted = errors.New("player already drafted")

	// ErrConflictingState rejects a lifecycle transition outside the
	// state machine table.
	ErrConflictingState = errors.New("conflicting draft state")

	// ErrNoAvailablePlayers means the auto-draft selector found an empty
	// pool; the turn is stalled and needs operator intervention.
	ErrNoAvailablePlayers = errors.New("no available players")

	// ErrDraftNotFound means no room exists for the requested draft.
	ErrDraftNotFound = errors.New("draft not found")

	// ErrRoomClosed means the room actor has shut down.
	ErrRoomClosed = errors.New("draft room closed")
)
