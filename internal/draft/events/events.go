// Package events defines the broadcast protocol for draft state
// transitions. Every event is a tagged variant with a fixed payload schema;
// payloads carry enough data to be applied without a follow-up fetch.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Type tags an event variant.
type Type string

const (
	TypeDraftStarted   Type = "DraftStarted"
	TypeTurnChanged    Type = "TurnChanged"
	TypePlayerDrafted  Type = "PlayerDrafted"
	TypeDraftPaused    Type = "DraftPaused"
	TypeDraftResumed   Type = "DraftResumed"
	TypeDraftCompleted Type = "DraftCompleted"
	TypeDraftReset     Type = "DraftReset"
	TypeTimerTick      Type = "TimerTick"
)

// Event is the in-process representation of a broadcast event. Payload is
// one of the typed payload structs below, matching Type.
type Event struct {
	ID        uuid.UUID `json:"id"`
	DraftID   uuid.UUID `json:"draft_id"`
	Type      Type      `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// New builds an event with a fresh ID.
func New(draftID uuid.UUID, typ Type, at time.Time, payload any) Event {
	return Event{
		ID:        uuid.New(),
		DraftID:   draftID,
		Type:      typ,
		Timestamp: at,
		Payload:   payload,
	}
}
