package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type Environment string

const (
	EnvUAT  Environment = "uat"
	EnvProd Environment = "prod"
)

func (e Environment) String() string { return string(e) }

// ParseEnvironment normalizes input; empty => uat.
// Returns (value, true) if valid; otherwise (uat, false).
func ParseEnvironment(s string) (Environment, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "uat":
		return EnvUAT, true
	case "prod":
		return EnvProd, true
	default:
		return EnvUAT, false
	}
}

func (e Environment) Valid() bool {
	return e == EnvUAT || e == EnvProd
}

// FetchRequest identifies one previously submitted scoring request.
type FetchRequest struct {
	CustomerID  string      `json:"customer_id"`
	RequestID   string      `json:"request_id"`
	Environment Environment `json:"env,omitempty"` // "uat" | "prod"
}

// ScoringResult is the payload returned by the scoring API for one poll.
// Every field except status may be absent.
type ScoringResult struct {
	Status      string          `json:"status"`
	Message     *string         `json:"message"`
	RequestedAt *string         `json:"requested_at"`
	ProcessedAt *string         `json:"processed_at"`
	Data        json.RawMessage `json:"data"`
}

// Terminal reports whether the result status ends the polling loop.
func (r ScoringResult) Terminal() bool {
	switch strings.ToLower(strings.TrimSpace(r.Status)) {
	case "complete", "completed":
		return true
	}
	return false
}

// Insight is the DB entity persisted in the insights table, one row per
// request_id. It is also what the read-back endpoint returns.
type Insight struct {
	ID          int64           `db:"id" json:"id"`
	CustomerID  string          `db:"customer_id" json:"customer_id"`
	RequestID   string          `db:"request_id" json:"request_id"`
	Status      *string         `db:"status" json:"status"`
	Message     *string         `db:"message" json:"message"`
	RequestedAt *time.Time      `db:"requested_at" json:"requested_at"`
	ProcessedAt *time.Time      `db:"processed_at" json:"processed_at"`
	Version     string          `db:"version" json:"version"`
	Environment Environment     `db:"environment" json:"environment"`
	Data        json.RawMessage `db:"data" json:"data"`
	ReceivedAt  time.Time       `db:"received_at" json:"received_at"`
}

// NewInsight builds the row to persist for req from the last observed result.
// Upstream timestamps are parsed here so a malformed one fails before any
// write happens.
func NewInsight(req FetchRequest, res ScoringResult, version string) (Insight, error) {
	requestedAt, err := parseResultTime(res.RequestedAt)
	if err != nil {
		return Insight{}, fmt.Errorf("requested_at: %w", err)
	}

	processedAt, err := parseResultTime(res.ProcessedAt)
	if err != nil {
		return Insight{}, fmt.Errorf("processed_at: %w", err)
	}

	return Insight{
		CustomerID:  req.CustomerID,
		RequestID:   req.RequestID,
		Status:      nullableString(res.Status),
		Message:     res.Message,
		RequestedAt: requestedAt,
		ProcessedAt: processedAt,
		Version:     version,
		Environment: req.Environment,
		Data:        res.Data,
	}, nil
}

// timestamp layouts the scoring API has been observed to emit.
var resultTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// parseResultTime parses an optional upstream timestamp. Layouts without an
// offset are taken as UTC.
func parseResultTime(s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}

	raw := strings.TrimSpace(*s)
	for _, layout := range resultTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}

	return nil, fmt.Errorf("unrecognized timestamp %q", raw)
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}
