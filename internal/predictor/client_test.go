package predictor

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/jmehdipour/insights-gateway/internal/model"
	"github.com/stretchr/testify/assert"
)

func newTestClient() *Client {
	return NewClient(ClientOpts{
		BaseURL:      "https://uat.scoring.test",
		ProdBaseURL:  "https://prod.scoring.test",
		APIKey:       "key-123",
		ServerSecret: "server-secret",
		Version:      "6",
	})
}

func TestFetchResultSendsCredentialedRequest(t *testing.T) {
	c := newTestClient()
	httpmock.ActivateNonDefault(c.httpc)
	defer httpmock.DeactivateAndReset()

	var gotHeader http.Header
	var gotQuery url.Values
	httpmock.RegisterResponder("GET", "https://uat.scoring.test/api/v1/predictors/result",
		func(req *http.Request) (*http.Response, error) {
			gotHeader = req.Header.Clone()
			gotQuery = req.URL.Query()
			return httpmock.NewStringResponse(200, `{"status":"complete","message":"ok"}`), nil
		})

	res, err := c.FetchResult(context.Background(), model.FetchRequest{
		CustomerID:  "C1",
		RequestID:   "R1",
		Environment: model.EnvUAT,
	})
	assert.NoError(t, err)
	assert.True(t, res.Terminal())
	assert.Equal(t, "ok", *res.Message)

	assert.Equal(t, "R1", gotQuery.Get("request_id"))
	assert.Equal(t, "C1", gotQuery.Get("customer_id"))

	assert.Equal(t, "key-123", gotHeader.Get("x-api-key"))
	assert.Equal(t, HMACSalt("server-secret", "C1"), gotHeader.Get("salt"))
	assert.Equal(t, "6", gotHeader.Get("version"))
	assert.Equal(t, "application/json", gotHeader.Get("Content-Type"))
}

func TestFetchResultRoutesProdToProdBase(t *testing.T) {
	c := newTestClient()
	httpmock.ActivateNonDefault(c.httpc)
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", "https://prod.scoring.test/api/v1/predictors/result",
		httpmock.NewStringResponder(200, `{"status":"in-progress"}`))

	res, err := c.FetchResult(context.Background(), model.FetchRequest{
		CustomerID:  "C1",
		RequestID:   "R1",
		Environment: model.EnvProd,
	})
	assert.NoError(t, err)
	assert.False(t, res.Terminal())
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestFetchResultForbidden(t *testing.T) {
	c := newTestClient()
	httpmock.ActivateNonDefault(c.httpc)
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", "https://uat.scoring.test/api/v1/predictors/result",
		httpmock.NewStringResponder(403, `{"detail":"bad salt"}`))

	res, err := c.FetchResult(context.Background(), model.FetchRequest{CustomerID: "C1", RequestID: "R1"})
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Contains(t, err.Error(), "bad salt")
}

func TestFetchResultServerError(t *testing.T) {
	c := newTestClient()
	httpmock.ActivateNonDefault(c.httpc)
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", "https://uat.scoring.test/api/v1/predictors/result",
		httpmock.NewStringResponder(500, "internal failure"))

	res, err := c.FetchResult(context.Background(), model.FetchRequest{CustomerID: "C1", RequestID: "R1"})
	assert.Nil(t, res)

	var ue *UpstreamError
	assert.ErrorAs(t, err, &ue)
	assert.Equal(t, 500, ue.StatusCode)
	assert.Equal(t, "internal failure", ue.Body)
}

func TestFetchResultUndecodableBody(t *testing.T) {
	c := newTestClient()
	httpmock.ActivateNonDefault(c.httpc)
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", "https://uat.scoring.test/api/v1/predictors/result",
		httpmock.NewStringResponder(200, "<html>gateway timeout</html>"))

	res, err := c.FetchResult(context.Background(), model.FetchRequest{CustomerID: "C1", RequestID: "R1"})
	assert.Nil(t, res)

	var ue *UpstreamError
	assert.ErrorAs(t, err, &ue)
	assert.Equal(t, 200, ue.StatusCode)
	assert.Contains(t, ue.Body, "gateway timeout")
}

func TestFetchResultTruncatesLongErrorBody(t *testing.T) {
	c := newTestClient()
	httpmock.ActivateNonDefault(c.httpc)
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", "https://uat.scoring.test/api/v1/predictors/result",
		httpmock.NewStringResponder(502, strings.Repeat("x", maxErrBody*2)))

	_, err := c.FetchResult(context.Background(), model.FetchRequest{CustomerID: "C1", RequestID: "R1"})

	var ue *UpstreamError
	assert.ErrorAs(t, err, &ue)
	assert.Len(t, ue.Body, maxErrBody+len("..."))
	assert.True(t, strings.HasSuffix(ue.Body, "..."))
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(ClientOpts{BaseURL: "https://uat.scoring.test"})
	assert.Equal(t, 15*time.Second, c.httpc.Timeout)
	assert.Equal(t, "https://uat.scoring.test", c.prodBaseURL)
	assert.NotNil(t, c.salt)
}
