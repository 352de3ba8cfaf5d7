// Package service is the application layer over the draft rooms: request
// validation, draft creation, and lazy hydration of rooms from the store.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/draftday/draftroom/internal/draft/engine"
	"github.com/draftday/draftroom/internal/models"
)

// Store defines what the service needs from draft persistence. It is a
// subset of the Postgres repository; a nil Store keeps everything in memory.
type Store interface {
	CreateDraft(ctx context.Context, draft models.Draft) error
	GetDraft(ctx context.Context, id uuid.UUID) (*models.Draft, error)
	ListPicks(ctx context.Context, draftID uuid.UUID) ([]models.DraftPick, error)
}

// Service coordinates the room manager and the store.
type Service struct {
	manager *engine.Manager
	store   Store
}

// New creates a Service. store may be nil.
func New(manager *engine.Manager, store Store) *Service {
	return &Service{manager: manager, store: store}
}

// CreateDraftRequest carries everything needed to open a draft.
type CreateDraftRequest struct {
	LeagueID       uuid.UUID   `json:"league_id"`
	Rounds         int         `json:"rounds"`
	TimePerPickSec int         `json:"time_per_pick_sec"`
	DraftOrder     []uuid.UUID `json:"draft_order"`
}

func (r CreateDraftRequest) validate() error {
	if r.LeagueID == uuid.Nil {
		return fmt.Errorf("league_id is required")
	}
	if r.Rounds <= 0 {
		return fmt.Errorf("rounds must be greater than 0")
	}
	if r.TimePerPickSec < 0 {
		return fmt.Errorf("time_per_pick_sec cannot be negative")
	}
	if len(r.DraftOrder) < 2 {
		return fmt.Errorf("draft_order needs at least 2 participants")
	}
	seen := make(map[uuid.UUID]bool, len(r.DraftOrder))
	for _, id := range r.DraftOrder {
		if id == uuid.Nil {
			return fmt.Errorf("draft_order contains an empty participant id")
		}
		if seen[id] {
			return fmt.Errorf("participant %s appears more than once in draft_order", id)
		}
		seen[id] = true
	}
	return nil
}

// CreateDraft validates the request, persists the draft and opens its room.
func (s *Service) CreateDraft(ctx context.Context, req CreateDraftRequest) (models.Draft, error) {
	if err := req.validate(); err != nil {
		return models.Draft{}, fmt.Errorf("validation failed: %w", err)
	}

	now := s.manager.Clock().Now().UTC()
	draft := models.Draft{
		ID:       uuid.New(),
		LeagueID: req.LeagueID,
		Status:   models.DraftStatusCreated,
		Settings: models.DraftSettings{
			Rounds:         req.Rounds,
			TimePerPickSec: req.TimePerPickSec,
			DraftOrder:     req.DraftOrder,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if s.store != nil {
		if err := s.store.CreateDraft(ctx, draft); err != nil {
			return models.Draft{}, fmt.Errorf("failed to create draft: %w", err)
		}
	}
	if _, err := s.manager.Create(draft, nil); err != nil {
		return models.Draft{}, err
	}

	log.Info().
		Str("draft_id", draft.ID.String()).
		Str("league_id", draft.LeagueID.String()).
		Int("rounds", draft.Settings.Rounds).
		Int("participants", len(draft.Settings.DraftOrder)).
		Msg("draft created")
	return draft, nil
}

// room returns the live room, hydrating it from the store when the process
// has restarted since the draft was created.
func (s *Service) room(ctx context.Context, draftID uuid.UUID) (*engine.Room, error) {
	room, err := s.manager.Get(draftID)
	if err == nil {
		return room, nil
	}
	if !errors.Is(err, engine.ErrDraftNotFound) || s.store == nil {
		return nil, err
	}

	draft, err := s.store.GetDraft(ctx, draftID)
	if err != nil {
		return nil, fmt.Errorf("draft %s: %w", draftID, engine.ErrDraftNotFound)
	}
	picks, err := s.store.ListPicks(ctx, draftID)
	if err != nil {
		return nil, fmt.Errorf("hydrate picks: %w", err)
	}

	room, err = s.manager.Create(*draft, picks)
	if err != nil {
		// Another request hydrated it first.
		if errors.Is(err, engine.ErrConflictingState) {
			return s.manager.Get(draftID)
		}
		return nil, err
	}
	log.Info().
		Str("draft_id", draftID.String()).
		Int("picks", len(picks)).
		Msg("draft room hydrated from store")
	return room, nil
}

// StartDraft activates the draft and arms the first turn timer.
func (s *Service) StartDraft(ctx context.Context, draftID uuid.UUID) error {
	room, err := s.room(ctx, draftID)
	if err != nil {
		return err
	}
	return room.Start(ctx)
}

// PauseDraft freezes the draft and its countdown.
func (s *Service) PauseDraft(ctx context.Context, draftID uuid.UUID) error {
	room, err := s.room(ctx, draftID)
	if err != nil {
		return err
	}
	return room.Pause(ctx)
}

// ResumeDraft continues a paused draft with the frozen remaining time.
func (s *Service) ResumeDraft(ctx context.Context, draftID uuid.UUID) error {
	room, err := s.room(ctx, draftID)
	if err != nil {
		return err
	}
	return room.Resume(ctx)
}

// ResetDraft discards every pick and returns the draft to created.
func (s *Service) ResetDraft(ctx context.Context, draftID uuid.UUID) error {
	room, err := s.room(ctx, draftID)
	if err != nil {
		return err
	}
	return room.Reset(ctx)
}

// SubmitPick proposes a pick for the current turn.
func (s *Service) SubmitPick(ctx context.Context, draftID uuid.UUID, req engine.PickRequest) (models.DraftPick, error) {
	room, err := s.room(ctx, draftID)
	if err != nil {
		return models.DraftPick{}, err
	}
	return room.SubmitPick(ctx, req)
}

// CurrentTurn reports whose turn it is and how much time remains.
func (s *Service) CurrentTurn(ctx context.Context, draftID uuid.UUID) (engine.TurnInfo, error) {
	room, err := s.room(ctx, draftID)
	if err != nil {
		return engine.TurnInfo{}, err
	}
	return room.CurrentTurn(ctx)
}

// Snapshot returns a consistent copy of the full draft state.
func (s *Service) Snapshot(ctx context.Context, draftID uuid.UUID) (engine.Snapshot, error) {
	room, err := s.room(ctx, draftID)
	if err != nil {
		return engine.Snapshot{}, err
	}
	return room.Snapshot(ctx)
}

// CloseDraft drops the live room. State survives in the store.
func (s *Service) CloseDraft(draftID uuid.UUID) {
	s.manager.Remove(draftID)
}
