package broker

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/draftday/draftroom/internal/draft/events"
)

func tickEvent(draftID uuid.UUID, remaining int) events.Event {
	return events.New(draftID, events.TypeTimerTick, time.Now(), events.TimerTickPayload{
		RemainingSec: remaining,
		TickedAt:     time.Now(),
	})
}

func recv(t *testing.T, sub *Subscription) events.Event {
	t.Helper()
	select {
	case ev := <-sub.Events():
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return events.Event{}
	}
}

func TestBroadcastReachesOnlyMatchingDraft(t *testing.T) {
	f := NewFanout()
	draftA := uuid.New()
	draftB := uuid.New()

	subA := f.Subscribe(draftA, 4)
	defer subA.Close()
	subB := f.Subscribe(draftB, 4)
	defer subB.Close()

	f.Broadcast(tickEvent(draftA, 10))

	got := recv(t, subA)
	require.Equal(t, draftA, got.DraftID)

	select {
	case ev := <-subB.Events():
		t.Fatalf("subscriber for draft %s received event for %s", draftB, ev.DraftID)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestAllSubscribersOfADraftReceive(t *testing.T) {
	f := NewFanout()
	draftID := uuid.New()

	first := f.Subscribe(draftID, 4)
	defer first.Close()
	second := f.Subscribe(draftID, 4)
	defer second.Close()

	f.Broadcast(tickEvent(draftID, 9))
	require.Equal(t, 9, recv(t, first).Payload.(events.TimerTickPayload).RemainingSec)
	require.Equal(t, 9, recv(t, second).Payload.(events.TimerTickPayload).RemainingSec)
}

func TestFullSubscriberDropsInsteadOfBlocking(t *testing.T) {
	f := NewFanout()
	draftID := uuid.New()

	sub := f.Subscribe(draftID, 1)
	defer sub.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		f.Broadcast(tickEvent(draftID, 3))
		f.Broadcast(tickEvent(draftID, 2)) // buffer full, dropped
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on a full subscriber")
	}

	require.Equal(t, 3, recv(t, sub).Payload.(events.TimerTickPayload).RemainingSec)
	select {
	case ev := <-sub.Events():
		t.Fatalf("dropped event was delivered: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestClosedSubscriptionStopsReceiving(t *testing.T) {
	f := NewFanout()
	draftID := uuid.New()

	sub := f.Subscribe(draftID, 4)
	sub.Close()
	sub.Close() // idempotent

	// Must not panic on send to a removed subscriber.
	f.Broadcast(tickEvent(draftID, 1))

	_, open := <-sub.Events()
	require.False(t, open)
}

func TestMultiFansOutInOrder(t *testing.T) {
	f1 := NewFanout()
	f2 := NewFanout()
	draftID := uuid.New()

	sub1 := f1.Subscribe(draftID, 4)
	defer sub1.Close()
	sub2 := f2.Subscribe(draftID, 4)
	defer sub2.Close()

	Multi{f1, f2}.Broadcast(tickEvent(draftID, 7))
	require.Equal(t, 7, recv(t, sub1).Payload.(events.TimerTickPayload).RemainingSec)
	require.Equal(t, 7, recv(t, sub2).Payload.(events.TimerTickPayload).RemainingSec)
}
