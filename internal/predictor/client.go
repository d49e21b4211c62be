package predictor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jmehdipour/insights-gateway/internal/metrics"
	"github.com/jmehdipour/insights-gateway/internal/model"
)

// resultPath is the status lookup endpoint of the predictors API.
const resultPath = "/api/v1/predictors/result"

// maxErrBody bounds upstream bodies echoed into error messages.
const maxErrBody = 2048

// ResultFetcher performs one status lookup against the scoring API.
type ResultFetcher interface {
	FetchResult(ctx context.Context, req model.FetchRequest) (*model.ScoringResult, error)
}

type ClientOpts struct {
	BaseURL      string // uat and default
	ProdBaseURL  string // empty => BaseURL
	APIKey       string
	ServerSecret string
	Version      string
	TimeoutMs    int      // per-call network timeout
	Salt         SaltFunc // nil => HMACSalt
}

// Client calls the scoring API over HTTP.
type Client struct {
	baseURL     string
	prodBaseURL string
	apiKey      string
	secret      string
	version     string
	salt        SaltFunc
	httpc       *http.Client
}

func NewClient(o ClientOpts) *Client {
	if o.TimeoutMs <= 0 {
		o.TimeoutMs = 15000
	}

	if o.Salt == nil {
		o.Salt = HMACSalt
	}

	if o.ProdBaseURL == "" {
		o.ProdBaseURL = o.BaseURL
	}

	return &Client{
		baseURL:     o.BaseURL,
		prodBaseURL: o.ProdBaseURL,
		apiKey:      o.APIKey,
		secret:      o.ServerSecret,
		version:     o.Version,
		salt:        o.Salt,
		httpc:       &http.Client{Timeout: time.Duration(o.TimeoutMs) * time.Millisecond},
	}
}

func (c *Client) baseFor(env model.Environment) string {
	if env == model.EnvProd {
		return c.prodBaseURL
	}

	return c.baseURL
}

// FetchResult issues one GET against the result endpoint. A 403 maps to
// ErrUnauthorized; any other status >= 400, or a body that does not decode,
// maps to UpstreamError. Network failures come back as plain errors.
func (c *Client) FetchResult(ctx context.Context, fr model.FetchRequest) (*model.ScoringResult, error) {
	q := url.Values{}
	q.Set("request_id", fr.RequestID)
	q.Set("customer_id", fr.CustomerID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseFor(fr.Environment)+resultPath+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("salt", c.salt(c.secret, fr.CustomerID))
	req.Header.Set("version", c.version)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpc.Do(req)
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	defer res.Body.Close()

	metrics.UpstreamRequestsTotal.WithLabelValues(strconv.Itoa(res.StatusCode)).Inc()

	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case res.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: status=%d body=%s", ErrUnauthorized, res.StatusCode, truncate(body))
	case res.StatusCode >= http.StatusBadRequest:
		return nil, &UpstreamError{StatusCode: res.StatusCode, Body: truncate(body)}
	}

	var out model.ScoringResult
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &UpstreamError{StatusCode: res.StatusCode, Body: truncate(body)}
	}

	return &out, nil
}

func truncate(b []byte) string {
	if len(b) <= maxErrBody {
		return string(b)
	}

	return string(b[:maxErrBody]) + "..."
}
