package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Envelope is the wire form of an Event: a fixed header plus the raw
// payload. Unknown event types are rejected at decode time rather than
// heuristically parsed.
type Envelope struct {
	EventID   string          `json:"eventId"`
	EventType string          `json:"eventType"`
	DraftID   string          `json:"draftId"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// Marshal encodes an event into its wire envelope.
func Marshal(ev Event) ([]byte, error) {
	payload, err := json.Marshal(ev.Payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", ev.Type, err)
	}
	return json.Marshal(Envelope{
		EventID:   ev.ID.String(),
		EventType: string(ev.Type),
		DraftID:   ev.DraftID.String(),
		Timestamp: ev.Timestamp,
		Payload:   payload,
	})
}

// Unmarshal decodes a wire envelope back into a typed Event.
func Unmarshal(data []byte) (Event, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Event{}, fmt.Errorf("unmarshal event envelope: %w", err)
	}
	return FromEnvelope(env)
}

// FromEnvelope converts a decoded envelope into a typed Event.
func FromEnvelope(env Envelope) (Event, error) {
	id, err := uuid.Parse(env.EventID)
	if err != nil {
		return Event{}, fmt.Errorf("parse event ID: %w", err)
	}
	draftID, err := uuid.Parse(env.DraftID)
	if err != nil {
		return Event{}, fmt.Errorf("parse draft ID: %w", err)
	}

	payload, err := parsePayload(Type(env.EventType), env.Payload)
	if err != nil {
		return Event{}, err
	}

	return Event{
		ID:        id,
		DraftID:   draftID,
		Type:      Type(env.EventType),
		Timestamp: env.Timestamp,
		Payload:   payload,
	}, nil
}

func parsePayload(typ Type, data json.RawMessage) (any, error) {
	switch typ {
	case TypeDraftStarted:
		return decode[DraftStartedPayload](typ, data)
	case TypeTurnChanged:
		return decode[TurnChangedPayload](typ, data)
	case TypePlayerDrafted:
		return decode[PlayerDraftedPayload](typ, data)
	case TypeDraftPaused:
		return decode[DraftPausedPayload](typ, data)
	case TypeDraftResumed:
		return decode[DraftResumedPayload](typ, data)
	case TypeDraftCompleted:
		return decode[DraftCompletedPayload](typ, data)
	case TypeDraftReset:
		return decode[DraftResetPayload](typ, data)
	case TypeTimerTick:
		return decode[TimerTickPayload](typ, data)
	default:
		return nil, fmt.Errorf("unknown event type %q", typ)
	}
}

func decode[T any](typ Type, data json.RawMessage) (T, error) {
	var payload T
	if err := json.Unmarshal(data, &payload); err != nil {
		return payload, fmt.Errorf("unmarshal %s payload: %w", typ, err)
	}
	return payload, nil
}
