package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/draftday/draftroom/internal/draft/events"
	"github.com/draftday/draftroom/internal/models"
	"github.com/draftday/draftroom/internal/snake"
)

// RoomConfig carries the room's collaborators. Roster and Log are optional;
// a nil sink is skipped.
type RoomConfig struct {
	Clock       clockwork.Clock
	Catalog     Catalog
	Selector    Selector
	Broadcaster Broadcaster
	Roster      RosterSink
	Log         PickLog

	// DefaultTimePerPick applies when the draft settings carry no value.
	DefaultTimePerPick time.Duration
}

// Room owns the authoritative state of one draft. All mutations — start,
// pause, resume, reset, human picks and timer-expiry auto-picks — are
// serialized through a single goroutine's inbox, so concurrent submissions
// for the same draft are resolved here, not by client coordination.
type Room struct {
	inbox chan roomMsg
	cfg   RoomConfig

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	// Everything below is owned by the loop goroutine.
	state     *State
	timer     *turnTimer
	epoch     uint64
	remaining time.Duration
	stalled   bool
}

type roomMsg interface{ isRoomMsg() }

type startMsg struct{ reply chan error }
type pauseMsg struct{ reply chan error }
type resumeMsg struct{ reply chan error }
type resetMsg struct{ reply chan error }

type submitMsg struct {
	req   PickRequest
	reply chan submitResult
}

type submitResult struct {
	pick models.DraftPick
	err  error
}

type turnMsg struct{ reply chan TurnInfo }
type snapshotMsg struct{ reply chan Snapshot }

type timerTickMsg struct {
	pickIndex int
	epoch     uint64
	remaining time.Duration
}

type timerExpireMsg struct {
	pickIndex int
	epoch     uint64
}

func (startMsg) isRoomMsg()       {}
func (pauseMsg) isRoomMsg()       {}
func (resumeMsg) isRoomMsg()      {}
func (resetMsg) isRoomMsg()       {}
func (submitMsg) isRoomMsg()      {}
func (turnMsg) isRoomMsg()        {}
func (snapshotMsg) isRoomMsg()    {}
func (timerTickMsg) isRoomMsg()   {}
func (timerExpireMsg) isRoomMsg() {}

// TurnInfo answers the current-turn query.
type TurnInfo struct {
	Status        models.DraftStatus `json:"status"`
	ParticipantID uuid.UUID          `json:"participant_id"`
	PickIndex     int                `json:"pick_index"`
	Round         int                `json:"round"`
	PickInRound   int                `json:"pick_in_round"`
	RemainingSec  int                `json:"remaining_sec"`
	Stalled       bool               `json:"stalled"`
}

// Snapshot is a consistent copy of the full draft state, used by the
// snapshot endpoint and by client mirrors for reconciliation.
type Snapshot struct {
	Draft        models.Draft       `json:"draft"`
	Picks        []models.DraftPick `json:"picks"`
	RemainingSec int                `json:"remaining_sec"`
	Stalled      bool               `json:"stalled"`
}

// NewRoom creates and starts the actor for one draft. picks hydrates
// previously recorded picks, in pick-number order.
func NewRoom(parent context.Context, draft models.Draft, picks []models.DraftPick, cfg RoomConfig) *Room {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	ctx, cancel := context.WithCancel(parent)

	state := NewState(draft)
	for _, p := range picks {
		state.AppendRecorded(p)
	}

	r := &Room{
		inbox:  make(chan roomMsg, 64),
		cfg:    cfg,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
		state:  state,
	}
	// A draft hydrated mid-flight still needs a live countdown for the
	// current turn. The frozen remainder is not persisted, so the turn
	// restarts with the full per-pick budget. The loop goroutine is not
	// running yet, so touching timer state here is race-free.
	if !state.Complete() {
		switch state.Draft.Status {
		case models.DraftStatusActive:
			r.startTurn(r.timePerPick())
		case models.DraftStatusPaused:
			r.remaining = r.timePerPick()
		}
	}
	go r.loop()
	return r
}

// DraftID returns the identifier of the draft this room owns.
func (r *Room) DraftID() uuid.UUID { return r.state.Draft.ID }

// Close stops the actor and its timer.
func (r *Room) Close() {
	r.cancel()
	<-r.done
}

func (r *Room) loop() {
	defer close(r.done)
	for {
		select {
		case <-r.ctx.Done():
			r.stopTimer()
			return
		case m := <-r.inbox:
			switch msg := m.(type) {
			case startMsg:
				msg.reply <- r.handleStart()
			case pauseMsg:
				msg.reply <- r.handlePause()
			case resumeMsg:
				msg.reply <- r.handleResume()
			case resetMsg:
				msg.reply <- r.handleReset()
			case submitMsg:
				pick, err := r.handlePick(msg.req)
				msg.reply <- submitResult{pick: pick, err: err}
			case turnMsg:
				msg.reply <- r.turnInfo()
			case snapshotMsg:
				msg.reply <- r.snapshot()
			case timerTickMsg:
				r.handleTick(msg)
			case timerExpireMsg:
				r.handleExpiry(msg)
			}
		}
	}
}

func (r *Room) handleStart() error {
	now := r.cfg.Clock.Now()
	if err := r.state.Start(now); err != nil {
		return err
	}
	r.persistStatus()

	settings := r.state.Draft.Settings
	r.broadcast(events.TypeDraftStarted, events.DraftStartedPayload{
		Order:          settings.DraftOrder,
		TotalRounds:    settings.Rounds,
		TotalPicks:     settings.TotalPicks(),
		TimePerPickSec: int(r.timePerPick().Seconds()),
		StartedAt:      now,
	})

	log.Info().
		Str("draft_id", r.DraftID().String()).
		Int("participants", len(settings.DraftOrder)).
		Int("rounds", settings.Rounds).
		Msg("draft started")

	r.startTurn(r.timePerPick())
	return nil
}

func (r *Room) handlePause() error {
	now := r.cfg.Clock.Now()
	if err := r.state.Pause(now); err != nil {
		return err
	}
	// Timer cancellation happens in the same serialized step as the
	// transition, so a stale expiry cannot fire after the pause.
	r.stopTimer()
	r.persistStatus()

	r.broadcast(events.TypeDraftPaused, events.DraftPausedPayload{
		PausedAt:     now,
		RemainingSec: int(r.remaining.Seconds()),
	})
	log.Info().
		Str("draft_id", r.DraftID().String()).
		Int("remaining_sec", int(r.remaining.Seconds())).
		Msg("draft paused")
	return nil
}

func (r *Room) handleResume() error {
	now := r.cfg.Clock.Now()
	if err := r.state.Resume(now); err != nil {
		return err
	}
	r.persistStatus()

	// The countdown continues from the frozen value; only a new turn
	// resets it to the full duration.
	r.broadcast(events.TypeDraftResumed, events.DraftResumedPayload{
		ResumedAt:    now,
		RemainingSec: int(r.remaining.Seconds()),
	})
	r.startTimer(r.remaining)
	log.Info().
		Str("draft_id", r.DraftID().String()).
		Int("remaining_sec", int(r.remaining.Seconds())).
		Msg("draft resumed")
	return nil
}

func (r *Room) handleReset() error {
	now := r.cfg.Clock.Now()
	r.stopTimer()
	r.state.Reset(now)
	r.remaining = 0
	r.stalled = false
	r.persistStatus()
	if r.cfg.Log != nil {
		if err := r.cfg.Log.DeletePicks(r.ctx, r.DraftID()); err != nil {
			log.Error().Err(err).Str("draft_id", r.DraftID().String()).Msg("failed to clear persisted picks on reset")
		}
	}
	if r.cfg.Roster != nil {
		if err := r.cfg.Roster.ClearDraft(r.ctx, r.DraftID()); err != nil {
			log.Error().Err(err).Str("draft_id", r.DraftID().String()).Msg("failed to clear rosters on reset")
		}
	}

	r.broadcast(events.TypeDraftReset, events.DraftResetPayload{ResetAt: now})
	log.Info().Str("draft_id", r.DraftID().String()).Msg("draft reset")
	return nil
}

func (r *Room) handlePick(req PickRequest) (models.DraftPick, error) {
	now := r.cfg.Clock.Now()
	pick, completed, err := r.state.ApplyPick(req, now)
	if err != nil {
		return models.DraftPick{}, err
	}
	r.stalled = false

	if r.cfg.Log != nil {
		if logErr := r.cfg.Log.AppendPick(r.ctx, pick); logErr != nil {
			log.Error().Err(logErr).
				Str("draft_id", r.DraftID().String()).
				Int("pick_number", pick.PickNumber).
				Msg("failed to persist pick")
		}
	}
	if r.cfg.Roster != nil {
		if rosterErr := r.cfg.Roster.AppendToRoster(r.ctx, pick.ParticipantID, pick); rosterErr != nil {
			log.Error().Err(rosterErr).
				Str("draft_id", r.DraftID().String()).
				Str("participant_id", pick.ParticipantID.String()).
				Msg("failed to append pick to roster")
		}
	}

	r.broadcast(events.TypePlayerDrafted, events.PlayerDraftedPayload{Pick: pick})
	log.Info().
		Str("draft_id", r.DraftID().String()).
		Int("pick_number", pick.PickNumber).
		Str("participant_id", pick.ParticipantID.String()).
		Str("player", pick.Player.FullName).
		Bool("auto_draft", pick.AutoDraft).
		Msg("pick applied")

	if completed {
		r.stopTimer()
		r.remaining = 0
		r.persistStatus()
		var duration string
		if r.state.Draft.StartedAt != nil {
			duration = now.Sub(*r.state.Draft.StartedAt).String()
		}
		r.broadcast(events.TypeDraftCompleted, events.DraftCompletedPayload{
			CompletedAt: now,
			TotalPicks:  len(r.state.Picks),
			Duration:    duration,
		})
		log.Info().Str("draft_id", r.DraftID().String()).Msg("draft completed")
	} else {
		r.startTurn(r.timePerPick())
	}
	return pick, nil
}

// startTurn announces the new turn and arms a fresh timer at full duration.
func (r *Room) startTurn(d time.Duration) {
	idx := r.state.CurrentPickIndex()
	n := len(r.state.Draft.Settings.DraftOrder)
	now := r.cfg.Clock.Now()

	r.broadcast(events.TypeTurnChanged, events.TurnChangedPayload{
		ParticipantID:    r.state.TurnOwner(),
		PickIndex:        idx,
		Round:            snake.Round(n, idx) + 1,
		PickInRound:      snake.PickInRound(n, idx) + 1,
		TimerDurationSec: int(d.Seconds()),
		Deadline:         now.Add(d),
	})
	r.startTimer(d)
}

// startTimer replaces any in-flight countdown with a new one. The epoch
// bump makes messages from the superseded timer inert even if they were
// already queued on the inbox.
func (r *Room) startTimer(d time.Duration) {
	r.stopTimer()
	r.epoch++
	r.remaining = d

	t := newTurnTimer(r.cfg.Clock, r.state.CurrentPickIndex(), r.epoch, d)
	r.timer = t
	go t.run(r.enqueueTick, r.enqueueExpiry)
}

func (r *Room) stopTimer() {
	if r.timer != nil {
		r.timer.stop()
		r.timer = nil
	}
	r.epoch++
}

func (r *Room) enqueueTick(pickIndex int, epoch uint64, remaining time.Duration) {
	select {
	case r.inbox <- timerTickMsg{pickIndex: pickIndex, epoch: epoch, remaining: remaining}:
	case <-r.ctx.Done():
	}
}

func (r *Room) enqueueExpiry(pickIndex int, epoch uint64) {
	select {
	case r.inbox <- timerExpireMsg{pickIndex: pickIndex, epoch: epoch}:
	case <-r.ctx.Done():
	}
}

func (r *Room) handleTick(msg timerTickMsg) {
	if msg.epoch != r.epoch || msg.pickIndex != r.state.CurrentPickIndex() {
		return // stale timer
	}
	r.remaining = msg.remaining
	r.broadcast(events.TypeTimerTick, events.TimerTickPayload{
		PickIndex:    msg.pickIndex,
		RemainingSec: int(msg.remaining.Seconds()),
		TickedAt:     r.cfg.Clock.Now(),
	})
}

// handleExpiry runs the auto-draft path: same validator, same applier as a
// human pick, submitted as the computed turn owner.
func (r *Room) handleExpiry(msg timerExpireMsg) {
	if msg.epoch != r.epoch || msg.pickIndex != r.state.CurrentPickIndex() {
		log.Debug().
			Str("draft_id", r.DraftID().String()).
			Int("pick_index", msg.pickIndex).
			Msg("ignoring stale timer expiry")
		return
	}
	r.timer = nil

	player, err := r.selectAutoPick()
	if err != nil {
		// An exhausted pool stalls the turn; it must surface, not
		// abort the draft.
		r.stalled = true
		r.remaining = 0
		log.Error().Err(err).
			Str("draft_id", r.DraftID().String()).
			Int("pick_index", msg.pickIndex).
			Str("participant_id", r.state.TurnOwner().String()).
			Msg("auto-draft cannot proceed; turn stalled")
		return
	}

	if _, err := r.handlePick(PickRequest{
		ParticipantID: r.state.TurnOwner(),
		Player:        player,
		AutoDraft:     true,
	}); err != nil {
		log.Error().Err(err).
			Str("draft_id", r.DraftID().String()).
			Int("pick_index", msg.pickIndex).
			Msg("auto-draft pick rejected")
	}
}

func (r *Room) selectAutoPick() (models.PlayerRef, error) {
	pool, err := r.availablePool()
	if err != nil {
		return models.PlayerRef{}, err
	}
	owner := r.state.TurnOwner()
	return r.cfg.Selector.Select(pool, r.state.PicksFor(owner))
}

// availablePool is the catalogue minus every drafted player, computed
// against the authoritative pick list at decision time.
func (r *Room) availablePool() ([]models.PlayerRef, error) {
	all, err := r.cfg.Catalog.ListAvailablePlayers(r.ctx, r.state.Draft.LeagueID)
	if err != nil {
		return nil, err
	}
	taken := r.state.DraftedIDs()
	pool := make([]models.PlayerRef, 0, len(all))
	for _, p := range all {
		if !taken[p.ID] {
			pool = append(pool, p)
		}
	}
	return pool, nil
}

func (r *Room) turnInfo() TurnInfo {
	info := TurnInfo{
		Status:       r.state.Draft.Status,
		PickIndex:    r.state.CurrentPickIndex(),
		RemainingSec: int(r.remaining.Seconds()),
		Stalled:      r.stalled,
	}
	if !r.state.Complete() && len(r.state.Draft.Settings.DraftOrder) > 0 {
		n := len(r.state.Draft.Settings.DraftOrder)
		info.ParticipantID = r.state.TurnOwner()
		info.Round = snake.Round(n, info.PickIndex) + 1
		info.PickInRound = snake.PickInRound(n, info.PickIndex) + 1
	}
	return info
}

func (r *Room) snapshot() Snapshot {
	picks := make([]models.DraftPick, len(r.state.Picks))
	copy(picks, r.state.Picks)
	return Snapshot{
		Draft:        r.state.Draft,
		Picks:        picks,
		RemainingSec: int(r.remaining.Seconds()),
		Stalled:      r.stalled,
	}
}

func (r *Room) timePerPick() time.Duration {
	if sec := r.state.Draft.Settings.TimePerPickSec; sec > 0 {
		return time.Duration(sec) * time.Second
	}
	if r.cfg.DefaultTimePerPick > 0 {
		return r.cfg.DefaultTimePerPick
	}
	return 30 * time.Second
}

func (r *Room) broadcast(typ events.Type, payload any) {
	if r.cfg.Broadcaster == nil {
		return
	}
	r.cfg.Broadcaster.Broadcast(events.New(r.DraftID(), typ, r.cfg.Clock.Now(), payload))
}

func (r *Room) persistStatus() {
	if r.cfg.Log == nil {
		return
	}
	if err := r.cfg.Log.UpdateDraftStatus(r.ctx, r.DraftID(), r.state.Draft.Status); err != nil {
		log.Error().Err(err).
			Str("draft_id", r.DraftID().String()).
			Str("status", string(r.state.Draft.Status)).
			Msg("failed to persist draft status")
	}
}

// --- public operations, each serialized through the inbox ---

// Start transitions the draft to active and arms the first turn timer.
func (r *Room) Start(ctx context.Context) error {
	return r.sendErr(ctx, func(reply chan error) roomMsg { return startMsg{reply: reply} })
}

// Pause freezes the draft and the countdown.
func (r *Room) Pause(ctx context.Context) error {
	return r.sendErr(ctx, func(reply chan error) roomMsg { return pauseMsg{reply: reply} })
}

// Resume continues the draft with the frozen remaining time.
func (r *Room) Resume(ctx context.Context) error {
	return r.sendErr(ctx, func(reply chan error) roomMsg { return resumeMsg{reply: reply} })
}

// Reset discards all picks and returns the draft to created.
func (r *Room) Reset(ctx context.Context) error {
	return r.sendErr(ctx, func(reply chan error) roomMsg { return resetMsg{reply: reply} })
}

// SubmitPick proposes a pick for the current turn. Validation failures are
// returned synchronously and never mutate state.
func (r *Room) SubmitPick(ctx context.Context, req PickRequest) (models.DraftPick, error) {
	reply := make(chan submitResult, 1)
	if err := r.send(ctx, submitMsg{req: req, reply: reply}); err != nil {
		return models.DraftPick{}, err
	}
	select {
	case res := <-reply:
		return res.pick, res.err
	case <-ctx.Done():
		return models.DraftPick{}, ctx.Err()
	case <-r.ctx.Done():
		return models.DraftPick{}, ErrRoomClosed
	}
}

// CurrentTurn reports the turn owner, derived position and remaining time.
func (r *Room) CurrentTurn(ctx context.Context) (TurnInfo, error) {
	reply := make(chan TurnInfo, 1)
	if err := r.send(ctx, turnMsg{reply: reply}); err != nil {
		return TurnInfo{}, err
	}
	select {
	case info := <-reply:
		return info, nil
	case <-ctx.Done():
		return TurnInfo{}, ctx.Err()
	case <-r.ctx.Done():
		return TurnInfo{}, ErrRoomClosed
	}
}

// Snapshot returns a consistent copy of the full draft state.
func (r *Room) Snapshot(ctx context.Context) (Snapshot, error) {
	reply := make(chan Snapshot, 1)
	if err := r.send(ctx, snapshotMsg{reply: reply}); err != nil {
		return Snapshot{}, err
	}
	select {
	case snap := <-reply:
		return snap, nil
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	case <-r.ctx.Done():
		return Snapshot{}, ErrRoomClosed
	}
}

func (r *Room) sendErr(ctx context.Context, build func(chan error) roomMsg) error {
	reply := make(chan error, 1)
	if err := r.send(ctx, build(reply)); err != nil {
		return err
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-r.ctx.Done():
		return ErrRoomClosed
	}
}

func (r *Room) send(ctx context.Context, msg roomMsg) error {
	select {
	case r.inbox <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-r.ctx.Done():
		return ErrRoomClosed
	}
}
