package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jmehdipour/insights-gateway/internal/model"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func getFetches(query string, authed bool) (*httptest.ResponseRecorder, echo.Context) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/reports/fetches"+query, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if authed {
		c.Set("client_id", int64(1))
	}
	return rec, c
}

func TestListFetchesDefaults(t *testing.T) {
	repo := &fakeAuditsRepo{rows: []model.FetchAudit{
		{ID: "01ST", RequestID: "R1", Outcome: model.OutcomeCompleted, CreatedAt: time.Now()},
		{ID: "01SU", RequestID: "R2", Outcome: model.OutcomeTimedOut, CreatedAt: time.Now()},
	}}
	h := listFetchesHandler(repo)

	rec, c := getFetches("", true)
	assert.NoError(t, h(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 50, repo.gotLimit)
	assert.Equal(t, 0, repo.gotOffset)
	assert.Empty(t, repo.gotCustomerID)
	assert.Empty(t, repo.gotOutcome)

	assert.Contains(t, rec.Body.String(), `"count":2`)
	assert.Contains(t, rec.Body.String(), `"limit":50`)
}

func TestListFetchesPassesFilters(t *testing.T) {
	repo := &fakeAuditsRepo{}
	h := listFetchesHandler(repo)

	rec, c := getFetches("?limit=10&offset=20&outcome=timed_out&customer_id=C1", true)
	assert.NoError(t, h(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 10, repo.gotLimit)
	assert.Equal(t, 20, repo.gotOffset)
	assert.Equal(t, "C1", repo.gotCustomerID)
	assert.Equal(t, model.OutcomeTimedOut, repo.gotOutcome)
}

func TestListFetchesIgnoresBadParams(t *testing.T) {
	repo := &fakeAuditsRepo{}
	h := listFetchesHandler(repo)

	rec, c := getFetches("?limit=-4&offset=x&outcome=bogus", true)
	assert.NoError(t, h(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 50, repo.gotLimit)
	assert.Equal(t, 0, repo.gotOffset)
	assert.Empty(t, repo.gotOutcome)
}

func TestListFetchesQueryFailure(t *testing.T) {
	h := listFetchesHandler(&fakeAuditsRepo{err: errors.New("clickhouse down")})

	rec, c := getFetches("", true)
	assert.NoError(t, h(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestListFetchesRequiresAuth(t *testing.T) {
	h := listFetchesHandler(&fakeAuditsRepo{})

	rec, c := getFetches("", false)
	assert.NoError(t, h(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
