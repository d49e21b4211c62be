package fetch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmehdipour/insights-gateway/internal/metrics"
	"github.com/jmehdipour/insights-gateway/internal/model"
	"github.com/jmehdipour/insights-gateway/internal/predictor"
	"github.com/jmehdipour/insights-gateway/internal/repository"
	"github.com/jmehdipour/insights-gateway/internal/util"
	"go.uber.org/zap"
)

// ErrStoreFailed wraps any persistence problem after polling produced a result.
var ErrStoreFailed = errors.New("store insight failed")

// ResultPoller runs one polling run for a request.
type ResultPoller interface {
	Poll(ctx context.Context, req model.FetchRequest) (predictor.Outcome, error)
}

// EventPublisher emits stored events. Failures are logged, never surfaced.
type EventPublisher interface {
	PublishStored(ctx context.Context, ev model.StoredEvent) error
}

// Service runs the poll-and-store flow for one inbound request.
type Service struct {
	poller   ResultPoller
	insights repository.InsightsRepository
	audits   repository.AuditsRepository // nil disables auditing
	events   EventPublisher              // nil disables events
	version  string
	log      *zap.Logger

	now func() time.Time
}

func New(
	poller ResultPoller,
	insightsRepo repository.InsightsRepository,
	auditsRepo repository.AuditsRepository,
	pub EventPublisher,
	version string,
	log *zap.Logger,
) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		poller:   poller,
		insights: insightsRepo,
		audits:   auditsRepo,
		events:   pub,
		version:  version,
		log:      log,
		now:      time.Now,
	}
}

// Fetch polls the scoring API for req and persists the last observed result
// under its request_id. The returned insight mirrors what was stored. The run
// is bounded by the poll budget, not by the caller: a dropped inbound
// connection does not stop it.
func (s *Service) Fetch(ctx context.Context, req model.FetchRequest) (model.Insight, error) {
	ctx = context.WithoutCancel(ctx)

	out, err := s.poller.Poll(ctx, req)
	if err != nil {
		s.finish(ctx, req, out, outcomeForErr(err), err)
		return model.Insight{}, err
	}

	ins, err := model.NewInsight(req, *out.Result, s.version)
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrStoreFailed, err)
		s.finish(ctx, req, out, model.OutcomeStoreFailed, err)
		return model.Insight{}, err
	}

	if err := s.insights.Upsert(ctx, ins); err != nil {
		err = fmt.Errorf("%w: %v", ErrStoreFailed, err)
		s.finish(ctx, req, out, model.OutcomeStoreFailed, err)
		return model.Insight{}, err
	}

	outcome := model.OutcomeTimedOut
	if out.Result.Terminal() {
		outcome = model.OutcomeCompleted
	}
	s.finish(ctx, req, out, outcome, nil)

	if s.events != nil {
		ev := model.StoredEvent{
			RequestID:   ins.RequestID,
			CustomerID:  ins.CustomerID,
			Environment: ins.Environment,
			Status:      ins.Status,
			Version:     ins.Version,
			StoredAt:    s.now().UTC(),
		}
		if err := s.events.PublishStored(ctx, ev); err != nil {
			s.log.Warn("publish stored event failed",
				zap.String("request_id", ins.RequestID),
				zap.Error(err))
		}
	}

	return ins, nil
}

// finish records metrics and the audit row for one run.
func (s *Service) finish(ctx context.Context, req model.FetchRequest, out predictor.Outcome, outcome model.FetchOutcome, runErr error) {
	metrics.FetchesTotal.WithLabelValues(outcome.String(), req.Environment.String()).Inc()
	metrics.PollDuration.WithLabelValues(outcome.String()).Observe(out.Elapsed.Seconds())

	if s.audits == nil {
		return
	}

	detail := ""
	if runErr != nil {
		detail = runErr.Error()
		if len(detail) > 1024 {
			detail = detail[:1024]
		}
	}

	a := model.FetchAudit{
		ID:           util.NewID(),
		CustomerID:   req.CustomerID,
		RequestID:    req.RequestID,
		Environment:  req.Environment,
		Outcome:      outcome,
		Attempts:     int32(out.Attempts),
		UpstreamCode: upstreamCode(outcome, runErr),
		ElapsedMs:    out.Elapsed.Milliseconds(),
		Detail:       detail,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.audits.Insert(ctx, a); err != nil {
		s.log.Warn("audit insert failed",
			zap.String("request_id", req.RequestID),
			zap.Error(err))
	}
}

func outcomeForErr(err error) model.FetchOutcome {
	var ue *predictor.UpstreamError
	switch {
	case errors.Is(err, predictor.ErrUnauthorized):
		return model.OutcomeUnauthorized
	case errors.As(err, &ue):
		return model.OutcomeUpstreamError
	default:
		return model.OutcomeNoResponse
	}
}

// upstreamCode is the last HTTP status implied by the run outcome; completed,
// timed out and store-failed runs all parsed a 2xx body last.
func upstreamCode(outcome model.FetchOutcome, err error) int32 {
	switch outcome {
	case model.OutcomeUnauthorized:
		return 403
	case model.OutcomeUpstreamError:
		var ue *predictor.UpstreamError
		if errors.As(err, &ue) {
			return int32(ue.StatusCode)
		}
		return 0
	case model.OutcomeCompleted, model.OutcomeTimedOut, model.OutcomeStoreFailed:
		return 200
	default:
		return 0
	}
}
