package model

import "time"

type FetchOutcome string

const (
	OutcomeCompleted     FetchOutcome = "completed"
	OutcomeTimedOut      FetchOutcome = "timed_out"
	OutcomeUnauthorized  FetchOutcome = "unauthorized"
	OutcomeUpstreamError FetchOutcome = "upstream_error"
	OutcomeNoResponse    FetchOutcome = "no_response"
	OutcomeStoreFailed   FetchOutcome = "store_failed"
)

func (o FetchOutcome) String() string { return string(o) }

func (o FetchOutcome) Valid() bool {
	switch o {
	case OutcomeCompleted, OutcomeTimedOut, OutcomeUnauthorized,
		OutcomeUpstreamError, OutcomeNoResponse, OutcomeStoreFailed:
		return true
	}
	return false
}

// FetchAudit is one polling run, appended to ClickHouse for reporting.
type FetchAudit struct {
	ID           string       `db:"id" json:"id"` // ULID
	CustomerID   string       `db:"customer_id" json:"customer_id"`
	RequestID    string       `db:"request_id" json:"request_id"`
	Environment  Environment  `db:"environment" json:"environment"`
	Outcome      FetchOutcome `db:"outcome" json:"outcome"`
	Attempts     int32        `db:"attempts" json:"attempts"`
	UpstreamCode int32        `db:"upstream_code" json:"upstream_code"` // last HTTP status seen, 0 if none
	ElapsedMs    int64        `db:"elapsed_ms" json:"elapsed_ms"`
	Detail       string       `db:"detail" json:"detail"` // bounded error text, empty on success
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
}
