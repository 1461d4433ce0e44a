package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/qrjet/qrjet/internal/app/model"
	"go.uber.org/zap"
)

// ScanDispatcher hands a captured scan context off for asynchronous
// tracking. Implementations must never fail the caller.
type ScanDispatcher interface {
	Dispatch(scan model.ScanContext)
}

// ScanPublisher publishes scan contexts to NATS JetStream, where the
// consumer enriches and persists them.
type ScanPublisher struct {
	js     nats.JetStreamContext
	logger *zap.Logger
}

// NewScanPublisher creates a new scan event publisher.
func NewScanPublisher(js nats.JetStreamContext, logger *zap.Logger) *ScanPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScanPublisher{js: js, logger: logger}
}

// Dispatch publishes the scan context to the stream. Failures are logged
// and dropped; a lost analytics event must not affect the scan response.
func (p *ScanPublisher) Dispatch(scan model.ScanContext) {
	data, err := json.Marshal(scan)
	if err != nil {
		p.logger.Error("failed to marshal scan context", zap.Error(err))
		return
	}

	if _, err := p.js.Publish(model.ScanStreamSubject, data); err != nil {
		p.logger.Error("failed to publish scan event",
			zap.String("qr_code_id", scan.QRCodeID),
			zap.Error(err))
	}
}

const directDispatchTimeout = 15 * time.Second

// DirectDispatcher runs the tracker in-process on a background goroutine.
// It backs deployments without NATS and keeps the same fire-and-forget
// contract; Drain waits for in-flight tracking before shutdown.
type DirectDispatcher struct {
	tracker *ScanTracker
	wg      sync.WaitGroup
}

// NewDirectDispatcher wraps tracker in a goroutine-per-scan dispatcher.
func NewDirectDispatcher(tracker *ScanTracker) *DirectDispatcher {
	return &DirectDispatcher{tracker: tracker}
}

// Dispatch tracks the scan on a fresh goroutine with a detached context.
func (d *DirectDispatcher) Dispatch(scan model.ScanContext) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), directDispatchTimeout)
		defer cancel()
		d.tracker.Track(ctx, scan)
	}()
}

// Drain blocks until all dispatched scans have settled.
func (d *DirectDispatcher) Drain() {
	d.wg.Wait()
}
