package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/draftday/draftroom/internal/models"
)

// Manager keeps one live Room per draft. Rooms are created on draft
// creation or lazily hydrated from the pick log on first access.
type Manager struct {
	ctx context.Context
	cfg RoomConfig

	mu    sync.RWMutex
	rooms map[uuid.UUID]*Room
}

// NewManager creates an empty room registry sharing one RoomConfig.
func NewManager(ctx context.Context, cfg RoomConfig) *Manager {
	return &Manager{
		ctx:   ctx,
		cfg:   cfg,
		rooms: make(map[uuid.UUID]*Room),
	}
}

// Clock returns the clock the rooms run on.
func (m *Manager) Clock() clockwork.Clock {
	if m.cfg.Clock == nil {
		return clockwork.NewRealClock()
	}
	return m.cfg.Clock
}

// Create registers a room for a new draft. Fails if one already exists.
func (m *Manager) Create(draft models.Draft, picks []models.DraftPick) (*Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.rooms[draft.ID]; exists {
		return nil, fmt.Errorf("draft %s: %w", draft.ID, ErrConflictingState)
	}
	room := NewRoom(m.ctx, draft, picks, m.cfg)
	m.rooms[draft.ID] = room

	log.Info().
		Str("draft_id", draft.ID.String()).
		Str("league_id", draft.LeagueID.String()).
		Msg("draft room created")
	return room, nil
}

// Get returns the live room for a draft.
func (m *Manager) Get(draftID uuid.UUID) (*Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	room, ok := m.rooms[draftID]
	if !ok {
		return nil, fmt.Errorf("draft %s: %w", draftID, ErrDraftNotFound)
	}
	return room, nil
}

// Remove closes and drops a room, e.g. after completion cleanup.
func (m *Manager) Remove(draftID uuid.UUID) {
	m.mu.Lock()
	room, ok := m.rooms[draftID]
	if ok {
		delete(m.rooms, draftID)
	}
	m.mu.Unlock()

	if ok {
		room.Close()
		log.Info().Str("draft_id", draftID.String()).Msg("draft room removed")
	}
}

// Shutdown closes every room.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	rooms := make([]*Room, 0, len(m.rooms))
	for _, room := range m.rooms {
		rooms = append(rooms, room)
	}
	m.rooms = make(map[uuid.UUID]*Room)
	m.mu.Unlock()

	for _, room := range rooms {
		room.Close()
	}
	log.Info().Int("rooms", len(rooms)).Msg("draft rooms shut down")
}
