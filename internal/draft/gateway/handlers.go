package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"github.com/draftday/draftroom/internal/draft/engine"
	"github.com/draftday/draftroom/internal/draft/service"
	"github.com/draftday/draftroom/internal/models"
)

// Handler exposes the draft control API and the WebSocket endpoint.
type Handler struct {
	svc     *service.Service
	cm      *ConnectionManager
	catalog engine.Catalog
	rosters *service.RosterBook
}

// NewHandler wires the HTTP surface. rosters may be nil.
func NewHandler(svc *service.Service, cm *ConnectionManager, catalog engine.Catalog, rosters *service.RosterBook) *Handler {
	return &Handler{svc: svc, cm: cm, catalog: catalog, rosters: rosters}
}

// Routes builds the router, CORS included.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", h.healthz)

	r.Route("/api/drafts", func(r chi.Router) {
		r.Post("/", h.createDraft)
		r.Route("/{draftID}", func(r chi.Router) {
			r.Get("/", h.getSnapshot)
			r.Get("/state", h.getSnapshot)
			r.Post("/start", h.startDraft)
			r.Post("/pause", h.pauseDraft)
			r.Post("/resume", h.resumeDraft)
			r.Post("/reset", h.resetDraft)
			r.Post("/picks", h.submitPick)
			r.Get("/turn", h.currentTurn)
			r.Get("/players", h.availablePlayers)
		})
	})
	r.Get("/api/participants/{participantID}/roster", h.participantRoster)
	r.Get("/api/connections", h.connectionStats)
	r.Get("/ws/drafts/{draftID}", h.websocket)

	c := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
		},
		AllowedOrigins: []string{"*"},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(r)
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) createDraft(w http.ResponseWriter, r *http.Request) {
	var req service.CreateDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	draft, err := h.svc.CreateDraft(r.Context(), req)
	if errors.Is(err, engine.ErrConflictingState) {
		respondError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, draft)
}

func (h *Handler) getSnapshot(w http.ResponseWriter, r *http.Request) {
	draftID, ok := draftIDParam(w, r)
	if !ok {
		return
	}
	snap, err := h.svc.Snapshot(r.Context(), draftID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

func (h *Handler) startDraft(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.svc.StartDraft)
}

func (h *Handler) pauseDraft(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.svc.PauseDraft)
}

func (h *Handler) resumeDraft(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.svc.ResumeDraft)
}

func (h *Handler) resetDraft(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.svc.ResetDraft)
}

func (h *Handler) lifecycle(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, id uuid.UUID) error) {
	draftID, ok := draftIDParam(w, r)
	if !ok {
		return
	}
	if err := op(r.Context(), draftID); err != nil {
		writeServiceError(w, err)
		return
	}
	turn, err := h.svc.CurrentTurn(r.Context(), draftID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, turn)
}

type submitPickRequest struct {
	ParticipantID uuid.UUID `json:"participant_id"`
	PlayerID      uuid.UUID `json:"player_id"`
}

// submitPick resolves the proposed player against the server-side catalogue
// before handing it to the room; clients never supply player attributes.
func (h *Handler) submitPick(w http.ResponseWriter, r *http.Request) {
	draftID, ok := draftIDParam(w, r)
	if !ok {
		return
	}
	var req submitPickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ParticipantID == uuid.Nil || req.PlayerID == uuid.Nil {
		respondError(w, http.StatusBadRequest, "participant_id and player_id are required")
		return
	}

	player, err := h.resolvePlayer(r, draftID, req.PlayerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pick, err := h.svc.SubmitPick(r.Context(), draftID, engine.PickRequest{
		ParticipantID: req.ParticipantID,
		Player:        player,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, pick)
}

func (h *Handler) resolvePlayer(r *http.Request, draftID, playerID uuid.UUID) (models.PlayerRef, error) {
	snap, err := h.svc.Snapshot(r.Context(), draftID)
	if err != nil {
		return models.PlayerRef{}, err
	}
	pool, err := h.catalog.ListAvailablePlayers(r.Context(), snap.Draft.LeagueID)
	if err != nil {
		return models.PlayerRef{}, err
	}
	for _, p := range pool {
		if p.ID == playerID {
			return p, nil
		}
	}
	return models.PlayerRef{}, errUnknownPlayer
}

var errUnknownPlayer = errors.New("player not in league catalogue")

func (h *Handler) currentTurn(w http.ResponseWriter, r *http.Request) {
	draftID, ok := draftIDParam(w, r)
	if !ok {
		return
	}
	turn, err := h.svc.CurrentTurn(r.Context(), draftID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, turn)
}

// availablePlayers returns the catalogue minus every drafted player.
func (h *Handler) availablePlayers(w http.ResponseWriter, r *http.Request) {
	draftID, ok := draftIDParam(w, r)
	if !ok {
		return
	}
	snap, err := h.svc.Snapshot(r.Context(), draftID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	pool, err := h.catalog.ListAvailablePlayers(r.Context(), snap.Draft.LeagueID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	taken := make(map[uuid.UUID]bool, len(snap.Picks))
	for _, p := range snap.Picks {
		taken[p.Player.ID] = true
	}
	available := make([]models.PlayerRef, 0, len(pool))
	for _, p := range pool {
		if !taken[p.ID] {
			available = append(available, p)
		}
	}
	respondJSON(w, http.StatusOK, map[string]any{"players": available})
}

func (h *Handler) participantRoster(w http.ResponseWriter, r *http.Request) {
	if h.rosters == nil {
		respondError(w, http.StatusNotFound, "roster tracking disabled")
		return
	}
	participantID, err := uuid.Parse(chi.URLParam(r, "participantID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid participant id")
		return
	}
	picks := h.rosters.RosterFor(participantID)
	respondJSON(w, http.StatusOK, map[string]any{"participant_id": participantID, "picks": picks})
}

func (h *Handler) connectionStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.cm.Stats())
}

// websocket subscribes a client to a draft's event stream. The snapshot
// endpoint is the catch-up path; the stream is live-only.
func (h *Handler) websocket(w http.ResponseWriter, r *http.Request) {
	draftID, ok := draftIDParam(w, r)
	if !ok {
		return
	}
	// Existence check before upgrading.
	if _, err := h.svc.CurrentTurn(r.Context(), draftID); err != nil {
		writeServiceError(w, err)
		return
	}
	participantID := r.URL.Query().Get("participant_id")
	if err := h.cm.UpgradeConnection(w, r, participantID, draftID); err != nil {
		log.Error().Err(err).Str("draft_id", draftID.String()).Msg("websocket upgrade failed")
	}
}

func draftIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	draftID, err := uuid.Parse(chi.URLParam(r, "draftID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid draft id")
		return uuid.Nil, false
	}
	return draftID, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrDraftNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, engine.ErrNotYourTurn),
		errors.Is(err, engine.ErrPlayerAlreadyDrafted),
		errors.Is(err, engine.ErrDraftNotActive),
		errors.Is(err, engine.ErrConflictingState):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, errUnknownPlayer):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, engine.ErrRoomClosed):
		respondError(w, http.StatusServiceUnavailable, err.Error())
	default:
		log.Error().Err(err).Msg("request failed")
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
