package predictor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmehdipour/insights-gateway/internal/model"
	"go.uber.org/zap"
)

// Poller fetches a scoring result repeatedly until it observes a terminal
// status or its wall-clock budget runs out. Each Poll call is an independent
// run; no state survives between calls.
type Poller struct {
	fetcher  ResultFetcher
	budget   time.Duration
	interval time.Duration
	log      *zap.Logger

	now   func() time.Time    // injectable for deterministic tests
	sleep func(time.Duration) // ditto
}

func NewPoller(fetcher ResultFetcher, budget, interval time.Duration, log *zap.Logger) *Poller {
	if budget <= 0 {
		budget = 45 * time.Second
	}

	if interval <= 0 {
		interval = 3 * time.Second
	}

	if log == nil {
		log = zap.NewNop()
	}

	return &Poller{
		fetcher:  fetcher,
		budget:   budget,
		interval: interval,
		log:      log,
		now:      time.Now,
		sleep:    time.Sleep,
	}
}

// Outcome is what one polling run produced.
type Outcome struct {
	Result   *model.ScoringResult // last observed result; nil only when err != nil
	Attempts int
	Elapsed  time.Duration
}

// Poll blocks until a terminal result, a terminal upstream failure, or the
// budget elapses. A nil error with a non-terminal Result means the budget ran
// out after at least one successful observation. Transport failures are
// retried until the budget elapses; 403 and upstream errors are not.
func (p *Poller) Poll(ctx context.Context, req model.FetchRequest) (Outcome, error) {
	var (
		last     *model.ScoringResult
		lastErr  error
		attempts int
	)

	start := p.now()
	deadline := start.Add(p.budget)

	for p.now().Before(deadline) {
		attempts++

		res, err := p.fetcher.FetchResult(ctx, req)
		if err != nil {
			var ue *UpstreamError
			if errors.Is(err, ErrUnauthorized) || errors.As(err, &ue) {
				return Outcome{Attempts: attempts, Elapsed: p.now().Sub(start)}, err
			}

			p.log.Warn("scoring api call failed",
				zap.String("request_id", req.RequestID),
				zap.Int("attempt", attempts),
				zap.Error(err))

			lastErr = err
			p.sleep(p.interval)

			continue
		}

		last = res
		if res.Terminal() {
			return Outcome{Result: last, Attempts: attempts, Elapsed: p.now().Sub(start)}, nil
		}

		p.sleep(p.interval)
	}

	out := Outcome{Result: last, Attempts: attempts, Elapsed: p.now().Sub(start)}
	if last == nil {
		if lastErr != nil {
			return out, fmt.Errorf("%w (last error: %v)", ErrNoResponse, lastErr)
		}

		return out, ErrNoResponse
	}

	return out, nil
}
