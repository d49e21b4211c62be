package predictor

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized means the scoring API rejected our credentials (403).
	// Never retried: the key or salt is wrong for every subsequent call too.
	ErrUnauthorized = errors.New("scoring api rejected credentials")

	// ErrNoResponse means the poll budget elapsed without a single parsed result.
	ErrNoResponse = errors.New("no response from scoring api within poll budget")
)

// UpstreamError is a non-403 answer with status >= 400, or a 2xx body that
// does not decode as a result.
type UpstreamError struct {
	StatusCode int
	Body       string // truncated
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("scoring api error: status=%d body=%s", e.StatusCode, e.Body)
}
