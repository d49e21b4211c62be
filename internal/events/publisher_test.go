package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jmehdipour/insights-gateway/internal/model"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
)

func TestNewPublisherDefaults(t *testing.T) {
	p := NewPublisherFromConfig(Config{
		Brokers: []string{"127.0.0.1:9092"},
		Topic:   "insights.stored",
	})
	defer p.Close()

	assert.Equal(t, "insights.stored", p.w.Topic)
	assert.Equal(t, 50*time.Millisecond, p.w.BatchTimeout)
	assert.Equal(t, 5*time.Second, p.w.WriteTimeout)
	assert.Equal(t, kafka.RequireOne, p.w.RequiredAcks)
	assert.IsType(t, &kafka.Hash{}, p.w.Balancer)
}

func TestNewPublisherKeepsExplicitTimeouts(t *testing.T) {
	p := NewPublisherFromConfig(Config{
		Brokers:      []string{"127.0.0.1:9092"},
		Topic:        "insights.stored",
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: time.Second,
	})
	defer p.Close()

	assert.Equal(t, 10*time.Millisecond, p.w.BatchTimeout)
	assert.Equal(t, time.Second, p.w.WriteTimeout)
}

func TestStoredEventPayloadShape(t *testing.T) {
	status := "complete"
	ev := model.StoredEvent{
		RequestID:   "R1",
		CustomerID:  "C1",
		Environment: model.EnvProd,
		Status:      &status,
		Version:     "6",
		StoredAt:    time.Date(2024, 5, 1, 10, 0, 45, 0, time.UTC),
	}

	payload, err := json.Marshal(ev)
	assert.NoError(t, err)
	assert.JSONEq(t, `{
		"request_id": "R1",
		"customer_id": "C1",
		"environment": "prod",
		"status": "complete",
		"version": "6",
		"stored_at": "2024-05-01T10:00:45Z"
	}`, string(payload))
}
