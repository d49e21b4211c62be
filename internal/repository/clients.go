package repository

import (
	"context"
	"database/sql"

	"github.com/jmehdipour/insights-gateway/internal/model"
	"github.com/jmoiron/sqlx"
)

type ClientsRepository interface {
	GetByAPIKey(ctx context.Context, apiKey string) (*model.Client, error)
}

type ClientsRepositoryImpl struct {
	db *sqlx.DB
}

func NewClientsRepository(db *sqlx.DB) *ClientsRepositoryImpl {
	return &ClientsRepositoryImpl{db: db}
}

var _ ClientsRepository = (*ClientsRepositoryImpl)(nil)

func (r *ClientsRepositoryImpl) GetByAPIKey(ctx context.Context, apiKey string) (*model.Client, error) {
	var c model.Client
	err := r.db.GetContext(ctx, &c, `
		SELECT id, name, api_key, status, rate_limit_rps, created_at, updated_at
		  FROM api_clients
		 WHERE api_key = ? LIMIT 1
	`, apiKey)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
