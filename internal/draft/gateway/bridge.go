package gateway

import (
	"github.com/rs/zerolog/log"

	"github.com/draftday/draftroom/internal/draft/engine"
	"github.com/draftday/draftroom/internal/draft/events"
)

// LocalBridge forwards room events straight to the WebSocket pools. It is
// the single-process delivery path; multi-process deployments go through
// JetStream and the EventConsumer instead.
type LocalBridge struct {
	cm *ConnectionManager
}

var _ engine.Broadcaster = (*LocalBridge)(nil)

// NewLocalBridge wires a connection manager as an event sink.
func NewLocalBridge(cm *ConnectionManager) *LocalBridge {
	return &LocalBridge{cm: cm}
}

// Broadcast implements engine.Broadcaster.
func (b *LocalBridge) Broadcast(ev events.Event) {
	data, err := events.Marshal(ev)
	if err != nil {
		log.Error().Err(err).
			Str("draft_id", ev.DraftID.String()).
			Str("event_type", string(ev.Type)).
			Msg("failed to encode event for WebSocket broadcast")
		return
	}
	b.cm.BroadcastToDraft(ev.DraftID, data)
}
