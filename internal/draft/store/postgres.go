// Package store persists drafts and their append-only pick logs in
// Postgres. The room remains the single writer; this layer is write-behind
// durability plus the hydration source for restarts and reconciliation.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // register the pgx database/sql driver
	"github.com/lib/pq"
	"github.com/sqlc-dev/pqtype"

	"github.com/draftday/draftroom/internal/dbconfig"
	"github.com/draftday/draftroom/internal/draft/engine"
	"github.com/draftday/draftroom/internal/models"
)

// ErrNotFound means the requested draft has no row.
var ErrNotFound = errors.New("draft not found in store")

// Repository is the Postgres-backed draft store.
type Repository struct {
	db *sql.DB
}

var _ engine.PickLog = (*Repository)(nil)

// Open connects to Postgres and verifies the connection.
func Open(cfg dbconfig.Config) (*Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("database config: %w", err)
	}
	db, err := sql.Open("pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Repository{db: db}, nil
}

// NewRepository wraps an existing connection pool.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Close releases the connection pool.
func (r *Repository) Close() error {
	return r.db.Close()
}

// CreateDraft inserts a new draft row.
func (r *Repository) CreateDraft(ctx context.Context, draft models.Draft) error {
	settings, err := json.Marshal(draft.Settings)
	if err != nil {
		return fmt.Errorf("marshal draft settings: %w", err)
	}

	order := make([]string, len(draft.Settings.DraftOrder))
	for i, id := range draft.Settings.DraftOrder {
		order[i] = id.String()
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO drafts (id, league_id, status, participant_order, settings, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		draft.ID, draft.LeagueID, string(draft.Status), pq.Array(order), settings,
		draft.CreatedAt, draft.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert draft: %w", err)
	}
	return nil
}

// GetDraft loads one draft row.
func (r *Repository) GetDraft(ctx context.Context, id uuid.UUID) (*models.Draft, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, league_id, status, participant_order, settings,
		       started_at, completed_at, created_at, updated_at
		FROM drafts WHERE id = $1`, id)

	var (
		draft       models.Draft
		status      string
		order       []string
		rawSettings pqtype.NullRawMessage
		startedAt   sql.NullTime
		completedAt sql.NullTime
	)
	err := row.Scan(&draft.ID, &draft.LeagueID, &status, pq.Array(&order),
		&rawSettings, &startedAt, &completedAt, &draft.CreatedAt, &draft.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("draft %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get draft: %w", err)
	}

	draft.Status = models.DraftStatus(status)
	if rawSettings.Valid {
		if err := json.Unmarshal(rawSettings.RawMessage, &draft.Settings); err != nil {
			return nil, fmt.Errorf("unmarshal draft settings: %w", err)
		}
	}
	// The array column is authoritative for the order.
	draft.Settings.DraftOrder = make([]uuid.UUID, len(order))
	for i, s := range order {
		pid, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("parse participant id %q: %w", s, err)
		}
		draft.Settings.DraftOrder[i] = pid
	}
	if startedAt.Valid {
		t := startedAt.Time
		draft.StartedAt = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		draft.CompletedAt = &t
	}
	return &draft, nil
}

// UpdateDraftStatus implements engine.PickLog.
func (r *Repository) UpdateDraftStatus(ctx context.Context, draftID uuid.UUID, status models.DraftStatus) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE drafts SET
			status = $2,
			started_at = CASE WHEN $2 = 'ACTIVE' AND started_at IS NULL THEN now() ELSE started_at END,
			completed_at = CASE WHEN $2 = 'COMPLETED' THEN now()
			                    WHEN $2 = 'CREATED' THEN NULL
			                    ELSE completed_at END,
			updated_at = now()
		WHERE id = $1`, draftID, string(status))
	if err != nil {
		return fmt.Errorf("update draft status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("draft %s: %w", draftID, ErrNotFound)
	}
	return nil
}

// AppendPick implements engine.PickLog. The (draft_id, pick_number) unique
// constraint makes re-delivery a no-op.
func (r *Repository) AppendPick(ctx context.Context, pick models.DraftPick) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO draft_picks (
			id, draft_id, pick_number, round, pick_in_round, participant_id,
			player_id, player_name, player_position, player_team, player_sport,
			auto_draft, picked_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (draft_id, pick_number) DO NOTHING`,
		pick.ID, pick.DraftID, pick.PickNumber, pick.Round, pick.PickInRound,
		pick.ParticipantID, pick.Player.ID, pick.Player.FullName,
		pick.Player.Position, pick.Player.Team, pick.Player.Sport,
		pick.AutoDraft, pick.PickedAt,
	)
	if err != nil {
		return fmt.Errorf("append pick: %w", err)
	}
	return nil
}

// ListPicks returns a draft's picks in pick-number order.
func (r *Repository) ListPicks(ctx context.Context, draftID uuid.UUID) ([]models.DraftPick, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, draft_id, pick_number, round, pick_in_round, participant_id,
		       player_id, player_name, player_position, player_team, player_sport,
		       auto_draft, picked_at
		FROM draft_picks WHERE draft_id = $1 ORDER BY pick_number`, draftID)
	if err != nil {
		return nil, fmt.Errorf("list picks: %w", err)
	}
	defer rows.Close()

	var picks []models.DraftPick
	for rows.Next() {
		var p models.DraftPick
		if err := rows.Scan(&p.ID, &p.DraftID, &p.PickNumber, &p.Round,
			&p.PickInRound, &p.ParticipantID, &p.Player.ID, &p.Player.FullName,
			&p.Player.Position, &p.Player.Team, &p.Player.Sport,
			&p.AutoDraft, &p.PickedAt); err != nil {
			return nil, fmt.Errorf("scan pick: %w", err)
		}
		picks = append(picks, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate picks: %w", err)
	}
	return picks, nil
}

// DeletePicks implements engine.PickLog; used by draft reset.
func (r *Repository) DeletePicks(ctx context.Context, draftID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM draft_picks WHERE draft_id = $1`, draftID); err != nil {
		return fmt.Errorf("delete picks: %w", err)
	}
	return nil
}
