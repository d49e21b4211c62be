package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jmehdipour/insights-gateway/internal/model"
	"github.com/segmentio/kafka-go"
)

type Config struct {
	Brokers      []string
	Topic        string
	BatchTimeout time.Duration // default 50ms
	WriteTimeout time.Duration // default 5s
}

// Publisher is a thin wrapper around segmentio/kafka-go Writer.
type Publisher struct {
	w *kafka.Writer
}

func NewPublisherFromConfig(c Config) *Publisher {
	bt := c.BatchTimeout
	if bt <= 0 {
		bt = 50 * time.Millisecond
	}

	wt := c.WriteTimeout
	if wt <= 0 {
		wt = 5 * time.Second
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(c.Brokers...),
		Topic:        c.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: bt,
		WriteTimeout: wt,
		RequiredAcks: kafka.RequireOne,
	}

	return &Publisher{w: w}
}

// PublishStored emits one event keyed by request_id, so repeated stores for
// the same request land on the same partition in order.
func (p *Publisher) PublishStored(ctx context.Context, ev model.StoredEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	return p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.RequestID),
		Value: payload,
	})
}

func (p *Publisher) Close() error { return p.w.Close() }
