package mirror

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/draftday/draftroom/internal/draft/engine"
	"github.com/draftday/draftroom/internal/draft/events"
	"github.com/draftday/draftroom/internal/models"
	"github.com/draftday/draftroom/internal/snake"
)

func newOrder(n int) []uuid.UUID {
	order := make([]uuid.UUID, n)
	for i := range order {
		order[i] = uuid.New()
	}
	return order
}

func startedEvent(draftID uuid.UUID, order []uuid.UUID, rounds, timePerPick int) events.Event {
	return events.New(draftID, events.TypeDraftStarted, time.Now(), events.DraftStartedPayload{
		Order:          order,
		TotalRounds:    rounds,
		TotalPicks:     rounds * len(order),
		TimePerPickSec: timePerPick,
		StartedAt:      time.Now(),
	})
}

func draftedEvent(draftID uuid.UUID, order []uuid.UUID, pickNumber int) events.Event {
	idx := pickNumber - 1
	n := len(order)
	return events.New(draftID, events.TypePlayerDrafted, time.Now(), events.PlayerDraftedPayload{
		Pick: models.DraftPick{
			ID:            uuid.New(),
			DraftID:       draftID,
			PickNumber:    pickNumber,
			Round:         snake.Round(n, idx) + 1,
			PickInRound:   snake.PickInRound(n, idx) + 1,
			ParticipantID: snake.Owner(order, idx),
			Player:        models.PlayerRef{ID: uuid.New(), FullName: "P", Position: "RB", Sport: "nfl"},
			PickedAt:      time.Now(),
		},
	})
}

func TestRejectsEventsForOtherDrafts(t *testing.T) {
	m := New(uuid.New())
	other := startedEvent(uuid.New(), newOrder(2), 1, 5)
	require.Error(t, m.Apply(other))
}

func TestDerivesTurnFromPickPrefix(t *testing.T) {
	draftID := uuid.New()
	order := newOrder(2)
	m := New(draftID)

	_, ok := m.CurrentTurn()
	require.False(t, ok, "no turn before the order is known")

	require.NoError(t, m.Apply(startedEvent(draftID, order, 2, 30)))

	turn, ok := m.CurrentTurn()
	require.True(t, ok)
	require.Equal(t, order[0], turn.ParticipantID)
	require.Equal(t, 0, turn.PickIndex)
	require.Equal(t, 30, turn.RemainingSec)

	require.NoError(t, m.Apply(draftedEvent(draftID, order, 1)))
	turn, ok = m.CurrentTurn()
	require.True(t, ok)
	require.Equal(t, order[1], turn.ParticipantID)

	// Snake double-back: pick three belongs to participant two as well.
	require.NoError(t, m.Apply(draftedEvent(draftID, order, 2)))
	turn, ok = m.CurrentTurn()
	require.True(t, ok)
	require.Equal(t, order[1], turn.ParticipantID)
	require.Equal(t, 2, turn.PickIndex)
}

func TestDuplicateDeliveryIsIdempotent(t *testing.T) {
	draftID := uuid.New()
	order := newOrder(2)
	m := New(draftID)
	require.NoError(t, m.Apply(startedEvent(draftID, order, 1, 5)))

	ev := draftedEvent(draftID, order, 1)
	require.NoError(t, m.Apply(ev))
	require.NoError(t, m.Apply(ev))
	require.NoError(t, m.Apply(ev))

	require.Len(t, m.Picks(), 1)
	turn, ok := m.CurrentTurn()
	require.True(t, ok)
	require.Equal(t, 1, turn.PickIndex)
}

func TestGapHoldsTurnUntilReconciled(t *testing.T) {
	draftID := uuid.New()
	order := newOrder(2)
	m := New(draftID)
	require.NoError(t, m.Apply(startedEvent(draftID, order, 2, 5)))

	// Pick one was lost; pick two arrives first.
	require.NoError(t, m.Apply(draftedEvent(draftID, order, 2)))

	turn, ok := m.CurrentTurn()
	require.True(t, ok)
	require.Equal(t, 0, turn.PickIndex, "gap must hold the derived index back")

	// The late pick fills the gap and the index jumps past both.
	require.NoError(t, m.Apply(draftedEvent(draftID, order, 1)))
	turn, ok = m.CurrentTurn()
	require.True(t, ok)
	require.Equal(t, 2, turn.PickIndex)
}

func TestStaleTimerTickIsIgnored(t *testing.T) {
	draftID := uuid.New()
	order := newOrder(2)
	m := New(draftID)
	require.NoError(t, m.Apply(startedEvent(draftID, order, 1, 30)))
	require.NoError(t, m.Apply(draftedEvent(draftID, order, 1)))

	// A tick for the finished turn must not clobber the new countdown.
	require.NoError(t, m.Apply(events.New(draftID, events.TypeTimerTick, time.Now(), events.TimerTickPayload{
		PickIndex:    0,
		RemainingSec: 2,
		TickedAt:     time.Now(),
	})))
	turn, ok := m.CurrentTurn()
	require.True(t, ok)
	require.Equal(t, 30, turn.RemainingSec)

	require.NoError(t, m.Apply(events.New(draftID, events.TypeTimerTick, time.Now(), events.TimerTickPayload{
		PickIndex:    1,
		RemainingSec: 12,
		TickedAt:     time.Now(),
	})))
	turn, ok = m.CurrentTurn()
	require.True(t, ok)
	require.Equal(t, 12, turn.RemainingSec)
}

func TestLifecycleEvents(t *testing.T) {
	draftID := uuid.New()
	order := newOrder(2)
	m := New(draftID)
	require.NoError(t, m.Apply(startedEvent(draftID, order, 1, 30)))
	require.Equal(t, models.DraftStatusActive, m.Status())

	require.NoError(t, m.Apply(events.New(draftID, events.TypeDraftPaused, time.Now(), events.DraftPausedPayload{
		PausedAt:     time.Now(),
		RemainingSec: 17,
	})))
	require.Equal(t, models.DraftStatusPaused, m.Status())
	turn, _ := m.CurrentTurn()
	require.Equal(t, 17, turn.RemainingSec)

	require.NoError(t, m.Apply(events.New(draftID, events.TypeDraftResumed, time.Now(), events.DraftResumedPayload{
		ResumedAt:    time.Now(),
		RemainingSec: 17,
	})))
	require.Equal(t, models.DraftStatusActive, m.Status())

	require.NoError(t, m.Apply(events.New(draftID, events.TypeDraftReset, time.Now(), events.DraftResetPayload{
		ResetAt: time.Now(),
	})))
	require.Equal(t, models.DraftStatusCreated, m.Status())
	require.Empty(t, m.Picks())
}

func TestReconcileReplacesLocalState(t *testing.T) {
	draftID := uuid.New()
	order := newOrder(3)
	m := New(draftID)

	draft := models.Draft{
		ID:       draftID,
		LeagueID: uuid.New(),
		Status:   models.DraftStatusActive,
		Settings: models.DraftSettings{Rounds: 2, TimePerPickSec: 30, DraftOrder: order},
	}
	picks := []models.DraftPick{
		draftedEvent(draftID, order, 1).Payload.(events.PlayerDraftedPayload).Pick,
		draftedEvent(draftID, order, 2).Payload.(events.PlayerDraftedPayload).Pick,
	}
	m.Reconcile(engine.Snapshot{Draft: draft, Picks: picks, RemainingSec: 9})

	require.Equal(t, models.DraftStatusActive, m.Status())
	require.Len(t, m.Picks(), 2)
	turn, ok := m.CurrentTurn()
	require.True(t, ok)
	require.Equal(t, 2, turn.PickIndex)
	require.Equal(t, order[2], turn.ParticipantID)
	require.Equal(t, 9, turn.RemainingSec)
}

func TestAvailableFiltersDraftedPlayers(t *testing.T) {
	draftID := uuid.New()
	order := newOrder(2)
	m := New(draftID)
	require.NoError(t, m.Apply(startedEvent(draftID, order, 1, 5)))

	ev := draftedEvent(draftID, order, 1)
	require.NoError(t, m.Apply(ev))
	taken := ev.Payload.(events.PlayerDraftedPayload).Pick.Player

	catalogue := []models.PlayerRef{
		taken,
		{ID: uuid.New(), FullName: "Free Agent", Position: "WR", Sport: "nfl"},
	}
	available := m.Available(catalogue)
	require.Len(t, available, 1)
	require.Equal(t, "Free Agent", available[0].FullName)
}
