package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/qrjet/qrjet/internal/app/model"
	"go.uber.org/zap"
)

// ScanConsumer consumes scan contexts from NATS JetStream and feeds them
// through the tracker for enrichment and persistence.
type ScanConsumer struct {
	js      nats.JetStreamContext
	logger  *zap.Logger
	tracker *ScanTracker
}

// NewScanConsumer creates a new scan event consumer.
func NewScanConsumer(js nats.JetStreamContext, logger *zap.Logger, tracker *ScanTracker) *ScanConsumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScanConsumer{js: js, logger: logger, tracker: tracker}
}

// Start ensures the stream and durable consumer exist, then begins
// consuming on a background goroutine.
func (c *ScanConsumer) Start() error {
	_, err := c.js.StreamInfo(model.ScanStreamName)
	if err != nil {
		_, err = c.js.AddStream(&nats.StreamConfig{
			Name:     model.ScanStreamName,
			Subjects: []string{model.ScanStreamSubject},
			MaxBytes: model.ScanStreamMaxBytes,
		})
		if err != nil {
			return fmt.Errorf("failed to create stream: %w", err)
		}
	}

	_, err = c.js.ConsumerInfo(model.ScanStreamName, model.ScanConsumerName)
	if err != nil {
		_, err = c.js.AddConsumer(model.ScanStreamName, &nats.ConsumerConfig{
			Durable:   model.ScanConsumerName,
			AckPolicy: nats.AckExplicitPolicy,
		})
		if err != nil {
			return fmt.Errorf("failed to create consumer: %w", err)
		}
	}

	sub, err := c.js.PullSubscribe(model.ScanStreamSubject, model.ScanConsumerName)
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	go c.consume(sub)
	return nil
}

func (c *ScanConsumer) consume(sub *nats.Subscription) {
	ctx := context.Background()
	for {
		msgs, err := sub.Fetch(10, nats.MaxWait(5*time.Second))
		if err != nil && err != nats.ErrTimeout {
			c.logger.Error("failed to fetch scan messages", zap.Error(err))
			continue
		}

		for _, msg := range msgs {
			var scan model.ScanContext
			if err := json.Unmarshal(msg.Data, &scan); err != nil {
				c.logger.Error("failed to unmarshal scan context", zap.Error(err))
				msg.Nak()
				continue
			}

			// Track swallows its own failures, so a poisoned message is
			// acked either way instead of redelivering forever.
			c.tracker.Track(ctx, scan)
			msg.Ack()
		}
	}
}
