package approval

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wardops/wardops/internal/domain/census"
)

type historyRepoPG struct{ pool *pgxpool.Pool }

// NewHistoryRepoPG returns the PostgreSQL-backed approval history repository.
func NewHistoryRepoPG(pool *pgxpool.Pool) HistoryRepository {
	return &historyRepoPG{pool: pool}
}

const historyCols = `id, form_id, ward_id, census_date, shift, action, actor_id, actor_name, reason, created_at`

func scanHistory(rows pgx.Rows) (*HistoryRecord, error) {
	var h HistoryRecord
	err := rows.Scan(&h.ID, &h.FormID, &h.WardID, &h.Date, &h.Shift,
		&h.Action, &h.ActorID, &h.ActorName, &h.Reason, &h.CreatedAt)
	return &h, err
}

func (r *historyRepoPG) Append(ctx context.Context, rec *HistoryRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO approval_history (`+historyCols+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		rec.ID, rec.FormID, rec.WardID, rec.Date, rec.Shift, rec.Action,
		rec.ActorID, rec.ActorName, rec.Reason, rec.CreatedAt)
	return err
}

func (r *historyRepoPG) ListByForm(ctx context.Context, formID string, limit, offset int) ([]*HistoryRecord, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM approval_history WHERE form_id = $1`, formID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+historyCols+` FROM approval_history
		WHERE form_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		formID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*HistoryRecord
	for rows.Next() {
		h, err := scanHistory(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, h)
	}
	return items, total, rows.Err()
}

func (r *historyRepoPG) ListByWardDate(ctx context.Context, wardID string, date time.Time, limit, offset int) ([]*HistoryRecord, int, error) {
	ward := census.NormalizeWardID(wardID)
	day := census.DateOnly(date)
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM approval_history WHERE ward_id = $1 AND census_date = $2`,
		ward, day).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+historyCols+` FROM approval_history
		WHERE ward_id = $1 AND census_date = $2
		ORDER BY created_at DESC LIMIT $3 OFFSET $4`,
		ward, day, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*HistoryRecord
	for rows.Next() {
		h, err := scanHistory(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, h)
	}
	return items, total, rows.Err()
}
