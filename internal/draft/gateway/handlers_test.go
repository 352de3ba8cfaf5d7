package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/draftday/draftroom/internal/catalog"
	"github.com/draftday/draftroom/internal/draft/engine"
	"github.com/draftday/draftroom/internal/draft/service"
	"github.com/draftday/draftroom/internal/models"
)

type headSelector struct{}

func (headSelector) Select(pool []models.PlayerRef, _ []models.DraftPick) (models.PlayerRef, error) {
	if len(pool) == 0 {
		return models.PlayerRef{}, engine.ErrNoAvailablePlayers
	}
	return pool[0], nil
}

type apiFixture struct {
	server  *httptest.Server
	players []models.PlayerRef
	rosters *service.RosterBook
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	players := []models.PlayerRef{
		{ID: uuid.New(), FullName: "QB One", Position: "QB", Team: "BUF", Sport: "nfl"},
		{ID: uuid.New(), FullName: "RB One", Position: "RB", Team: "SF", Sport: "nfl"},
		{ID: uuid.New(), FullName: "WR One", Position: "WR", Team: "MIN", Sport: "nfl"},
		{ID: uuid.New(), FullName: "WR Two", Position: "WR", Team: "CIN", Sport: "nfl"},
	}
	cat := catalog.NewMemory(players)
	rosters := service.NewRosterBook()

	ctx, cancel := context.WithCancel(context.Background())
	manager := engine.NewManager(ctx, engine.RoomConfig{
		Catalog:            cat,
		Selector:           headSelector{},
		Roster:             rosters,
		DefaultTimePerPick: 30 * time.Second,
	})
	svc := service.New(manager, nil)

	cm := NewConnectionManager(DefaultConnectionConfig())
	handler := NewHandler(svc, cm, cat, rosters)
	server := httptest.NewServer(handler.Routes())
	t.Cleanup(func() {
		server.Close()
		manager.Shutdown()
		cancel()
	})
	return &apiFixture{server: server, players: players, rosters: rosters}
}

func (f *apiFixture) post(t *testing.T, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	resp, err := http.Post(f.server.URL+path, "application/json", &buf)
	require.NoError(t, err)
	return resp
}

func (f *apiFixture) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(f.server.URL + path)
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func (f *apiFixture) createDraft(t *testing.T, participants int) models.Draft {
	t.Helper()
	order := make([]uuid.UUID, participants)
	for i := range order {
		order[i] = uuid.New()
	}
	resp := f.post(t, "/api/drafts", service.CreateDraftRequest{
		LeagueID:       uuid.New(),
		Rounds:         2,
		TimePerPickSec: 30,
		DraftOrder:     order,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decodeBody[models.Draft](t, resp)
}

func TestCreateDraftEndpoint(t *testing.T) {
	f := newAPIFixture(t)

	draft := f.createDraft(t, 2)
	require.NotEqual(t, uuid.Nil, draft.ID)
	require.Equal(t, models.DraftStatusCreated, draft.Status)

	// Invalid body.
	resp, err := http.Post(f.server.URL+"/api/drafts", "application/json", bytes.NewBufferString("{"))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Validation failure.
	resp = f.post(t, "/api/drafts", service.CreateDraftRequest{
		LeagueID:   uuid.New(),
		Rounds:     0,
		DraftOrder: []uuid.UUID{uuid.New(), uuid.New()},
	})
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Pausing a draft that never started conflicts.
	resp = f.post(t, fmt.Sprintf("/api/drafts/%s/pause", draft.ID), nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestUnknownDraftReturns404(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.get(t, "/api/drafts/"+uuid.NewString()+"/turn")
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = f.get(t, "/api/drafts/not-a-uuid/turn")
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPickFlowOverHTTP(t *testing.T) {
	f := newAPIFixture(t)
	draft := f.createDraft(t, 2)
	base := fmt.Sprintf("/api/drafts/%s", draft.ID)

	resp := f.post(t, base+"/start", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	turn := decodeBody[engine.TurnInfo](t, resp)
	require.Equal(t, draft.Settings.DraftOrder[0], turn.ParticipantID)

	// Wrong participant.
	resp = f.post(t, base+"/picks", map[string]any{
		"participant_id": draft.Settings.DraftOrder[1],
		"player_id":      f.players[0].ID,
	})
	resp.Body.Close()
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	// Unknown player.
	resp = f.post(t, base+"/picks", map[string]any{
		"participant_id": draft.Settings.DraftOrder[0],
		"player_id":      uuid.New(),
	})
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Valid pick, attributes resolved server-side.
	resp = f.post(t, base+"/picks", map[string]any{
		"participant_id": draft.Settings.DraftOrder[0],
		"player_id":      f.players[0].ID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	pick := decodeBody[models.DraftPick](t, resp)
	require.Equal(t, 1, pick.PickNumber)
	require.Equal(t, "QB One", pick.Player.FullName)

	// Drafted player disappears from the available pool.
	resp = f.get(t, base+"/players")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	pool := decodeBody[struct {
		Players []models.PlayerRef `json:"players"`
	}](t, resp)
	require.Len(t, pool.Players, len(f.players)-1)
	for _, p := range pool.Players {
		require.NotEqual(t, f.players[0].ID, p.ID)
	}

	// Same player again conflicts.
	resp = f.post(t, base+"/picks", map[string]any{
		"participant_id": draft.Settings.DraftOrder[1],
		"player_id":      f.players[0].ID,
	})
	resp.Body.Close()
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	// Roster endpoint shows the applied pick.
	resp = f.get(t, fmt.Sprintf("/api/participants/%s/roster", draft.Settings.DraftOrder[0]))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	roster := decodeBody[struct {
		Picks []models.DraftPick `json:"picks"`
	}](t, resp)
	require.Len(t, roster.Picks, 1)

	// Snapshot reflects the pick and the advanced turn.
	resp = f.get(t, base+"/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	snap := decodeBody[engine.Snapshot](t, resp)
	require.Len(t, snap.Picks, 1)
	require.Equal(t, models.DraftStatusActive, snap.Draft.Status)
}

func TestLifecycleEndpoints(t *testing.T) {
	f := newAPIFixture(t)
	draft := f.createDraft(t, 2)
	base := fmt.Sprintf("/api/drafts/%s", draft.ID)

	for _, step := range []struct {
		path   string
		status models.DraftStatus
	}{
		{"/start", models.DraftStatusActive},
		{"/pause", models.DraftStatusPaused},
		{"/resume", models.DraftStatusActive},
		{"/reset", models.DraftStatusCreated},
	} {
		resp := f.post(t, base+step.path, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, step.path)
		turn := decodeBody[engine.TurnInfo](t, resp)
		require.Equal(t, step.status, turn.Status, step.path)
	}
}

func TestHealthz(t *testing.T) {
	f := newAPIFixture(t)
	resp := f.get(t, "/healthz")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
