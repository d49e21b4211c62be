package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmehdipour/insights-gateway/internal/model"
	"github.com/jmehdipour/insights-gateway/internal/util"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
)

func newClickHouseMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' occurred when opening a stub database connection", err)
	}
	return sqlx.NewDb(db, "clickhouse"), mock
}

func TestAuditsInsert(t *testing.T) {
	ch, mock := newClickHouseMock(t)
	defer ch.Close()

	repo := NewAuditsRepository(ch)

	createdAt := time.Date(2024, 5, 1, 10, 0, 45, 0, time.UTC)
	a := model.FetchAudit{
		ID:           util.NewID(),
		CustomerID:   "C1",
		RequestID:    "R1",
		Environment:  model.EnvUAT,
		Outcome:      model.OutcomeCompleted,
		Attempts:     3,
		UpstreamCode: 200,
		ElapsedMs:    6400,
		Detail:       "",
		CreatedAt:    createdAt,
	}

	mock.ExpectExec("INSERT INTO insgw.fetch_audits").
		WithArgs(a.ID, "C1", "R1", "uat", "completed", int64(3), int64(200), int64(6400), "", createdAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Insert(context.Background(), a)
	assert.NoError(t, err)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func auditRows() *sqlmock.Rows {
	created := time.Date(2024, 5, 1, 10, 0, 45, 0, time.UTC)
	return sqlmock.NewRows([]string{
		"id", "customer_id", "request_id", "environment", "outcome",
		"attempts", "upstream_code", "elapsed_ms", "detail", "created_at",
	}).
		AddRow("01ST", "C1", "R1", "uat", "completed", int64(2), int64(200), int64(3100), "", created).
		AddRow("01SU", "C2", "R2", "prod", "timed_out", int64(15), int64(200), int64(45000), "", created)
}

func TestAuditsListNoFilters(t *testing.T) {
	ch, mock := newClickHouseMock(t)
	defer ch.Close()

	repo := NewAuditsRepository(ch)

	mock.ExpectQuery("SELECT .* FROM insgw.fetch_audits WHERE 1 = 1 ORDER BY created_at DESC").
		WithArgs(50, 0).
		WillReturnRows(auditRows())

	rows, err := repo.List(context.Background(), "", "", 0, -3)
	assert.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Equal(t, model.OutcomeCompleted, rows[0].Outcome)
	assert.Equal(t, int32(15), rows[1].Attempts)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestAuditsListWithFilters(t *testing.T) {
	ch, mock := newClickHouseMock(t)
	defer ch.Close()

	repo := NewAuditsRepository(ch)

	mock.ExpectQuery("SELECT .* FROM insgw.fetch_audits WHERE 1 = 1 AND customer_id = .* AND outcome =").
		WithArgs("C1", "completed", 10, 5).
		WillReturnRows(auditRows())

	rows, err := repo.List(context.Background(), "C1", model.OutcomeCompleted, 10, 5)
	assert.NoError(t, err)
	assert.Len(t, rows, 2)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestAuditsListClampsOversizedLimit(t *testing.T) {
	ch, mock := newClickHouseMock(t)
	defer ch.Close()

	repo := NewAuditsRepository(ch)

	mock.ExpectQuery("SELECT .* FROM insgw.fetch_audits").
		WithArgs(50, 0).
		WillReturnRows(auditRows())

	_, err := repo.List(context.Background(), "", "", 5000, 0)
	assert.NoError(t, err)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}
