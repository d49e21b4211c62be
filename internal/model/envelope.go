package model

import "time"

// StoredEvent is the payload published to Kafka after an insight upsert.
type StoredEvent struct {
	RequestID   string      `json:"request_id"`
	CustomerID  string      `json:"customer_id"`
	Environment Environment `json:"environment"`
	Status      *string     `json:"status"`
	Version     string      `json:"version"`
	StoredAt    time.Time   `json:"stored_at"`
}
