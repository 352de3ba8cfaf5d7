package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/draftday/draftroom/internal/draft/engine"
	"github.com/draftday/draftroom/internal/models"
)

type stubCatalog struct{}

func (stubCatalog) ListAvailablePlayers(context.Context, uuid.UUID) ([]models.PlayerRef, error) {
	return []models.PlayerRef{
		{ID: uuid.New(), FullName: "A", Position: "QB", Sport: "nfl"},
		{ID: uuid.New(), FullName: "B", Position: "RB", Sport: "nfl"},
	}, nil
}

type headSelector struct{}

func (headSelector) Select(pool []models.PlayerRef, _ []models.DraftPick) (models.PlayerRef, error) {
	if len(pool) == 0 {
		return models.PlayerRef{}, engine.ErrNoAvailablePlayers
	}
	return pool[0], nil
}

// fakeStore is an in-memory Store for hydration tests.
type fakeStore struct {
	drafts map[uuid.UUID]models.Draft
	picks  map[uuid.UUID][]models.DraftPick
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		drafts: make(map[uuid.UUID]models.Draft),
		picks:  make(map[uuid.UUID][]models.DraftPick),
	}
}

func (s *fakeStore) CreateDraft(_ context.Context, draft models.Draft) error {
	s.drafts[draft.ID] = draft
	return nil
}

func (s *fakeStore) GetDraft(_ context.Context, id uuid.UUID) (*models.Draft, error) {
	draft, ok := s.drafts[id]
	if !ok {
		return nil, engine.ErrDraftNotFound
	}
	return &draft, nil
}

func (s *fakeStore) ListPicks(_ context.Context, draftID uuid.UUID) ([]models.DraftPick, error) {
	return s.picks[draftID], nil
}

func newTestService(t *testing.T, store Store) *Service {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	manager := engine.NewManager(ctx, engine.RoomConfig{
		Catalog:            stubCatalog{},
		Selector:           headSelector{},
		DefaultTimePerPick: 30 * time.Second,
	})
	t.Cleanup(func() {
		manager.Shutdown()
		cancel()
	})
	return New(manager, store)
}

func validRequest() CreateDraftRequest {
	return CreateDraftRequest{
		LeagueID:       uuid.New(),
		Rounds:         2,
		TimePerPickSec: 30,
		DraftOrder:     []uuid.UUID{uuid.New(), uuid.New(), uuid.New()},
	}
}

func TestCreateDraftValidation(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*CreateDraftRequest)
	}{
		{"missing league", func(r *CreateDraftRequest) { r.LeagueID = uuid.Nil }},
		{"zero rounds", func(r *CreateDraftRequest) { r.Rounds = 0 }},
		{"negative timer", func(r *CreateDraftRequest) { r.TimePerPickSec = -1 }},
		{"single participant", func(r *CreateDraftRequest) { r.DraftOrder = r.DraftOrder[:1] }},
		{"duplicate participant", func(r *CreateDraftRequest) { r.DraftOrder[1] = r.DraftOrder[0] }},
		{"nil participant", func(r *CreateDraftRequest) { r.DraftOrder[2] = uuid.Nil }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(&req)
			_, err := svc.CreateDraft(ctx, req)
			require.Error(t, err)
		})
	}
}

func TestCreateDraftOpensRoom(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store)
	ctx := context.Background()

	draft, err := svc.CreateDraft(ctx, validRequest())
	require.NoError(t, err)
	require.Equal(t, models.DraftStatusCreated, draft.Status)
	require.False(t, draft.CreatedAt.IsZero(), "creation is timestamped")
	require.Equal(t, draft.CreatedAt, draft.UpdatedAt)
	require.Contains(t, store.drafts, draft.ID, "draft persisted on create")

	turn, err := svc.CurrentTurn(ctx, draft.ID)
	require.NoError(t, err)
	require.Equal(t, models.DraftStatusCreated, turn.Status)
	require.Equal(t, 0, turn.PickIndex)
}

func TestOperationsOnUnknownDraft(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	_, err := svc.CurrentTurn(ctx, uuid.New())
	require.ErrorIs(t, err, engine.ErrDraftNotFound)
	require.ErrorIs(t, svc.StartDraft(ctx, uuid.New()), engine.ErrDraftNotFound)
}

func TestRoomHydratesFromStoreAfterRestart(t *testing.T) {
	store := newFakeStore()
	ctx := context.Background()

	order := []uuid.UUID{uuid.New(), uuid.New()}
	draft := models.Draft{
		ID:       uuid.New(),
		LeagueID: uuid.New(),
		Status:   models.DraftStatusActive,
		Settings: models.DraftSettings{Rounds: 2, TimePerPickSec: 30, DraftOrder: order},
	}
	now := time.Now()
	draft.StartedAt = &now
	store.drafts[draft.ID] = draft
	store.picks[draft.ID] = []models.DraftPick{{
		ID:            uuid.New(),
		DraftID:       draft.ID,
		PickNumber:    1,
		Round:         1,
		PickInRound:   1,
		ParticipantID: order[0],
		Player:        models.PlayerRef{ID: uuid.New(), FullName: "Kept", Position: "RB", Sport: "nfl"},
		PickedAt:      now,
	}}

	// Fresh manager: simulates a process restart with no live rooms.
	svc := newTestService(t, store)

	turn, err := svc.CurrentTurn(ctx, draft.ID)
	require.NoError(t, err)
	require.Equal(t, models.DraftStatusActive, turn.Status)
	require.Equal(t, 1, turn.PickIndex, "hydrated room resumes after the recorded pick")
	require.Equal(t, order[1], turn.ParticipantID)
	require.Positive(t, turn.RemainingSec, "hydrated turn runs on a live countdown")

	snap, err := svc.Snapshot(ctx, draft.ID)
	require.NoError(t, err)
	require.Len(t, snap.Picks, 1)
	require.Equal(t, "Kept", snap.Picks[0].Player.FullName)
}

func TestRosterBookIsIdempotentPerPickNumber(t *testing.T) {
	book := NewRosterBook()
	ctx := context.Background()
	participant := uuid.New()
	draftID := uuid.New()

	pick := models.DraftPick{
		ID:            uuid.New(),
		DraftID:       draftID,
		PickNumber:    1,
		ParticipantID: participant,
		Player:        models.PlayerRef{ID: uuid.New(), FullName: "Once"},
	}
	require.NoError(t, book.AppendToRoster(ctx, participant, pick))
	require.NoError(t, book.AppendToRoster(ctx, participant, pick))
	require.Len(t, book.RosterFor(participant), 1)

	other := pick
	other.ID = uuid.New()
	other.PickNumber = 2
	require.NoError(t, book.AppendToRoster(ctx, participant, other))
	require.Len(t, book.RosterFor(participant), 2)

	require.NoError(t, book.ClearDraft(ctx, draftID))
	require.Empty(t, book.RosterFor(participant))
}

func TestResetClearsRostersBeforeRedraft(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	book := NewRosterBook()
	manager := engine.NewManager(ctx, engine.RoomConfig{
		Catalog:            stubCatalog{},
		Selector:           headSelector{},
		Roster:             book,
		DefaultTimePerPick: 30 * time.Second,
	})
	t.Cleanup(func() {
		manager.Shutdown()
		cancel()
	})
	svc := New(manager, nil)

	draft, err := svc.CreateDraft(ctx, validRequest())
	require.NoError(t, err)
	first := draft.Settings.DraftOrder[0]

	require.NoError(t, svc.StartDraft(ctx, draft.ID))
	_, err = svc.SubmitPick(ctx, draft.ID, engine.PickRequest{
		ParticipantID: first,
		Player:        models.PlayerRef{ID: uuid.New(), FullName: "Discarded", Position: "QB", Sport: "nfl"},
	})
	require.NoError(t, err)
	require.Len(t, book.RosterFor(first), 1)

	require.NoError(t, svc.ResetDraft(ctx, draft.ID))
	require.Empty(t, book.RosterFor(first), "reset discards roster entries with the picks")

	// The redraft re-issues pick number one; it must land, not be dropped
	// as a duplicate of the discarded pick.
	require.NoError(t, svc.StartDraft(ctx, draft.ID))
	_, err = svc.SubmitPick(ctx, draft.ID, engine.PickRequest{
		ParticipantID: first,
		Player:        models.PlayerRef{ID: uuid.New(), FullName: "Kept", Position: "RB", Sport: "nfl"},
	})
	require.NoError(t, err)

	picks := book.RosterFor(first)
	require.Len(t, picks, 1)
	require.Equal(t, "Kept", picks[0].Player.FullName)
}
