package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/qrjet/qrjet/internal/app/model"
	"github.com/qrjet/qrjet/internal/app/repository"
	"go.uber.org/zap"
)

// UnknownIP is recorded when no client address could be extracted.
const UnknownIP = "Unknown"

// ScanTracker enriches raw scan context and persists one ScanEvent per
// scan. Tracking is strictly best effort: every failure is logged and
// swallowed so the redirect path never observes it.
type ScanTracker struct {
	logger *zap.Logger
	events repository.ScanEventRepository
	geo    *Geolocator
}

// NewScanTracker builds a tracker. geo may be nil to disable geolocation.
func NewScanTracker(logger *zap.Logger, events repository.ScanEventRepository, geo *Geolocator) *ScanTracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScanTracker{logger: logger, events: events, geo: geo}
}

// Track records one scan event from the captured request context.
func (t *ScanTracker) Track(ctx context.Context, scan model.ScanContext) {
	ip := ClientIP(scan.ForwardedFor, scan.RealIP)
	client := ParseUserAgent(scan.UserAgent)

	loc := UnknownLocation
	if t.geo != nil && IsRoutableIP(ip) {
		loc = t.geo.Lookup(ctx, ip)
	}

	ua := scan.UserAgent
	if len(ua) > model.MaxUserAgentLen {
		ua = ua[:model.MaxUserAgentLen]
	}

	scannedAt := scan.ScannedAt
	if scannedAt.IsZero() {
		scannedAt = time.Now().UTC()
	}

	event := &model.ScanEvent{
		ID:         uuid.New().String(),
		QRCodeID:   scan.QRCodeID,
		IPAddress:  ip,
		UserAgent:  ua,
		Country:    loc.Country,
		City:       loc.City,
		DeviceType: client.DeviceType,
		Browser:    client.Browser,
		OS:         client.OS,
		ScannedAt:  scannedAt,
	}

	if err := t.events.Create(ctx, event); err != nil {
		t.logger.Error("failed to store scan event",
			zap.String("qr_code_id", scan.QRCodeID),
			zap.Error(err))
		return
	}

	t.logger.Debug("scan event stored",
		zap.String("id", event.ID),
		zap.String("qr_code_id", event.QRCodeID),
		zap.String("country", event.Country),
		zap.String("device", event.DeviceType))
}

// ClientIP picks the client address from proxy headers: first entry of
// X-Forwarded-For, then X-Real-IP, else the Unknown sentinel.
func ClientIP(forwardedFor, realIP string) string {
	if forwardedFor != "" {
		first := forwardedFor
		if idx := strings.Index(forwardedFor, ","); idx >= 0 {
			first = forwardedFor[:idx]
		}
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if realIP = strings.TrimSpace(realIP); realIP != "" {
		return realIP
	}
	return UnknownIP
}
