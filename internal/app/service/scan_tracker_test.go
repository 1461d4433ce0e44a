package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/qrjet/qrjet/internal/app/model"
)

type mockScanEventRepository struct {
	createFn func(ctx context.Context, event *model.ScanEvent) error
}

func (m *mockScanEventRepository) Create(ctx context.Context, event *model.ScanEvent) error {
	if m.createFn != nil {
		return m.createFn(ctx, event)
	}
	return nil
}

func (m *mockScanEventRepository) ListByQRCode(ctx context.Context, qrCodeID string, limit int) ([]model.ScanEvent, error) {
	return nil, nil
}

func (m *mockScanEventRepository) CountByQRCode(ctx context.Context, qrCodeID string) (int64, error) {
	return 0, nil
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name         string
		forwardedFor string
		realIP       string
		want         string
	}{
		{"forwarded chain picks first", "203.0.113.7, 10.0.0.1, 172.16.0.9", "10.1.1.1", "203.0.113.7"},
		{"single forwarded entry", "203.0.113.7", "", "203.0.113.7"},
		{"falls back to real ip", "", "198.51.100.2", "198.51.100.2"},
		{"whitespace trimmed", "  203.0.113.7 , 10.0.0.1", "", "203.0.113.7"},
		{"nothing yields sentinel", "", "", UnknownIP},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClientIP(tt.forwardedFor, tt.realIP); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestScanTracker_EnrichesAndStores(t *testing.T) {
	var stored *model.ScanEvent
	repo := &mockScanEventRepository{
		createFn: func(ctx context.Context, event *model.ScanEvent) error {
			stored = event
			return nil
		},
	}

	tracker := NewScanTracker(nil, repo, nil)
	tracker.Track(context.Background(), model.ScanContext{
		QRCodeID:     "qr-1",
		ForwardedFor: "127.0.0.1",
		UserAgent:    "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 Safari/604.1",
	})

	if stored == nil {
		t.Fatal("expected a scan event to be stored")
	}
	if stored.QRCodeID != "qr-1" {
		t.Fatalf("qr code id = %q", stored.QRCodeID)
	}
	if stored.OS != "iOS" || stored.DeviceType != model.DeviceMobile {
		t.Fatalf("expected iOS mobile, got %s/%s", stored.OS, stored.DeviceType)
	}
	// Loopback address: geolocation skipped.
	if stored.Country != "Unknown" || stored.City != "Unknown" {
		t.Fatalf("expected Unknown location, got %s/%s", stored.Country, stored.City)
	}
	if stored.ScannedAt.IsZero() {
		t.Fatal("scannedAt must be populated")
	}
}

func TestScanTracker_TruncatesUserAgent(t *testing.T) {
	var stored *model.ScanEvent
	repo := &mockScanEventRepository{
		createFn: func(ctx context.Context, event *model.ScanEvent) error {
			stored = event
			return nil
		},
	}

	tracker := NewScanTracker(nil, repo, nil)
	tracker.Track(context.Background(), model.ScanContext{
		QRCodeID:  "qr-1",
		UserAgent: strings.Repeat("x", 2000),
	})

	if stored == nil {
		t.Fatal("expected a scan event to be stored")
	}
	if len(stored.UserAgent) != model.MaxUserAgentLen {
		t.Fatalf("user agent length = %d, want %d", len(stored.UserAgent), model.MaxUserAgentLen)
	}
}

func TestScanTracker_SwallowsStoreFailure(t *testing.T) {
	repo := &mockScanEventRepository{
		createFn: func(ctx context.Context, event *model.ScanEvent) error {
			return errors.New("insert failed")
		},
	}

	tracker := NewScanTracker(nil, repo, nil)
	// Must not panic or propagate anything.
	tracker.Track(context.Background(), model.ScanContext{QRCodeID: "qr-1"})
}

func TestScanTracker_UnknownIPSentinel(t *testing.T) {
	var stored *model.ScanEvent
	repo := &mockScanEventRepository{
		createFn: func(ctx context.Context, event *model.ScanEvent) error {
			stored = event
			return nil
		},
	}

	tracker := NewScanTracker(nil, repo, nil)
	tracker.Track(context.Background(), model.ScanContext{QRCodeID: "qr-1"})

	if stored == nil || stored.IPAddress != UnknownIP {
		t.Fatalf("expected %q ip sentinel, got %+v", UnknownIP, stored)
	}
}
