package repository

import (
	"context"
	"database/sql"

	"github.com/jmehdipour/insights-gateway/internal/model"
	"github.com/jmoiron/sqlx"
)

// InsightsRepository persists scoring results, one row per request_id.
type InsightsRepository interface {
	Upsert(ctx context.Context, ins model.Insight) error
	GetByRequestID(ctx context.Context, requestID string) (*model.Insight, error)
}

type InsightsRepositoryImpl struct {
	db *sqlx.DB
}

func NewInsightsRepository(db *sqlx.DB) *InsightsRepositoryImpl {
	return &InsightsRepositoryImpl{db: db}
}

var _ InsightsRepository = (*InsightsRepositoryImpl)(nil)

// Upsert inserts the row or, when request_id already exists, overwrites every
// mutable field and refreshes received_at. customer_id keeps its first-write
// value.
func (r *InsightsRepositoryImpl) Upsert(ctx context.Context, ins model.Insight) error {
	const q = `
		INSERT INTO insights
		    (customer_id, request_id, status, message, requested_at, processed_at, version, environment, data, received_at)
		VALUES
		    (?, ?, ?, ?, ?, ?, ?, ?, ?, NOW(6))
		ON DUPLICATE KEY UPDATE
		    status       = VALUES(status),
		    message      = VALUES(message),
		    requested_at = VALUES(requested_at),
		    processed_at = VALUES(processed_at),
		    version      = VALUES(version),
		    environment  = VALUES(environment),
		    data         = VALUES(data),
		    received_at  = NOW(6)
	`
	_, err := r.db.ExecContext(ctx, q,
		ins.CustomerID, ins.RequestID, ins.Status, ins.Message,
		ins.RequestedAt, ins.ProcessedAt, ins.Version, ins.Environment.String(), []byte(ins.Data),
	)
	return err
}

func (r *InsightsRepositoryImpl) GetByRequestID(ctx context.Context, requestID string) (*model.Insight, error) {
	var ins model.Insight
	err := r.db.GetContext(ctx, &ins, `
		SELECT id, customer_id, request_id, status, message, requested_at, processed_at, version, environment, data, received_at
		  FROM insights
		 WHERE request_id = ? LIMIT 1
	`, requestID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ins, nil
}
