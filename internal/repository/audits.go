package repository

import (
	"context"

	"github.com/jmehdipour/insights-gateway/internal/model"
	"github.com/jmoiron/sqlx"
)

// AuditsRepository records polling runs in ClickHouse (append only).
type AuditsRepository interface {
	Insert(ctx context.Context, a model.FetchAudit) error
	List(ctx context.Context, customerID string, outcome model.FetchOutcome, limit, offset int) ([]model.FetchAudit, error)
}

type AuditsRepositoryImpl struct {
	ch *sqlx.DB // ClickHouse connection
}

func NewAuditsRepository(ch *sqlx.DB) *AuditsRepositoryImpl {
	return &AuditsRepositoryImpl{ch: ch}
}

var _ AuditsRepository = (*AuditsRepositoryImpl)(nil)

func (r *AuditsRepositoryImpl) Insert(ctx context.Context, a model.FetchAudit) error {
	const q = `
		INSERT INTO insgw.fetch_audits
		    (id, customer_id, request_id, environment, outcome, attempts, upstream_code, elapsed_ms, detail, created_at)
		VALUES
		    (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.ch.ExecContext(ctx, q,
		a.ID, a.CustomerID, a.RequestID, a.Environment.String(), a.Outcome.String(),
		a.Attempts, a.UpstreamCode, a.ElapsedMs, a.Detail, a.CreatedAt,
	)
	return err
}

// List returns recent runs, newest first. Empty customerID or outcome skips
// that filter.
func (r *AuditsRepositoryImpl) List(ctx context.Context, customerID string, outcome model.FetchOutcome, limit, offset int) ([]model.FetchAudit, error) {
	if limit <= 0 || limit > 1000 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	q := `
		SELECT id, customer_id, request_id, environment, outcome, attempts, upstream_code, elapsed_ms, detail, created_at
		FROM insgw.fetch_audits
		WHERE 1 = 1
	`
	args := []any{}

	if customerID != "" {
		q += " AND customer_id = ?"
		args = append(args, customerID)
	}
	if outcome != "" {
		q += " AND outcome = ?"
		args = append(args, outcome.String())
	}

	q += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	var rows []model.FetchAudit
	if err := r.ch.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	return rows, nil
}
