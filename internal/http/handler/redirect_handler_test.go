package handler

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/qrjet/qrjet/internal/app/model"
	"github.com/qrjet/qrjet/internal/app/repository"
	"github.com/qrjet/qrjet/internal/app/service"
)

type stubCodeRepo struct {
	codes map[string]*model.QRCode
}

func (s *stubCodeRepo) Create(ctx context.Context, code *model.QRCode) error { return nil }

func (s *stubCodeRepo) GetByID(ctx context.Context, id string) (*model.QRCode, error) {
	if code, ok := s.codes[id]; ok {
		return code, nil
	}
	return nil, repository.ErrQRCodeNotFound
}

func (s *stubCodeRepo) GetByShortCode(ctx context.Context, shortCode string) (*model.QRCode, error) {
	for _, code := range s.codes {
		if code.ShortCode != nil && *code.ShortCode == shortCode {
			return code, nil
		}
	}
	return nil, repository.ErrQRCodeNotFound
}

func (s *stubCodeRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]model.QRCode, error) {
	return nil, nil
}
func (s *stubCodeRepo) CountByUser(ctx context.Context, userID string) (int64, error) { return 0, nil }
func (s *stubCodeRepo) Update(ctx context.Context, code *model.QRCode) error          { return nil }
func (s *stubCodeRepo) Delete(ctx context.Context, id string) error                   { return nil }
func (s *stubCodeRepo) ListIdentifiers(ctx context.Context) ([]string, error)         { return nil, nil }

type stubCounter struct {
	mu sync.Mutex
	n  int
}

func (s *stubCounter) IncrementScanCount(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return nil
}

const scanID = "3f2b8c1d-9e0a-4f5b-8c7d-6e5f4a3b2c1d"

func newScanApp(t *testing.T, repo repository.QRCodeRepository, counter *stubCounter) (*fiber.App, *service.Resolver) {
	t.Helper()

	resolver := service.NewResolver(nil, repo, counter, nil, nil, service.ResolverConfig{})
	h := NewRedirectHandler(RedirectDeps{Resolver: resolver})

	app := fiber.New()
	h.Register(app)
	return app, resolver
}

func TestScan_RedirectsUsableCode(t *testing.T) {
	counter := &stubCounter{}
	repo := &stubCodeRepo{codes: map[string]*model.QRCode{
		scanID: {
			ID:       scanID,
			Type:     model.TypeURL,
			IsActive: true,
			Content:  model.Content{Kind: model.ContentStructured, OriginalURL: "https://example.com"},
		},
	}}
	app, resolver := newScanApp(t, repo, counter)

	req := httptest.NewRequest("GET", "/r/"+scanID, nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	resolver.Drain()

	if resp.StatusCode != fiber.StatusFound {
		t.Fatalf("status = %d, want 302", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "https://example.com" {
		t.Fatalf("location = %q", loc)
	}
	if counter.n != 1 {
		t.Fatalf("scan count increments = %d, want 1", counter.n)
	}
}

func TestScan_UnknownIDRendersNotFound(t *testing.T) {
	counter := &stubCounter{}
	app, resolver := newScanApp(t, &stubCodeRepo{codes: map[string]*model.QRCode{}}, counter)

	resp, err := app.Test(httptest.NewRequest("GET", "/r/does-not-exist", nil))
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	resolver.Drain()

	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	if counter.n != 0 {
		t.Fatal("missed lookup must have zero side effects")
	}
}

func TestScan_InactiveRendersGone(t *testing.T) {
	counter := &stubCounter{}
	repo := &stubCodeRepo{codes: map[string]*model.QRCode{
		scanID: {ID: scanID, Type: model.TypeURL, IsActive: false},
	}}
	app, resolver := newScanApp(t, repo, counter)

	resp, err := app.Test(httptest.NewRequest("GET", "/r/"+scanID, nil))
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	resolver.Drain()

	if resp.StatusCode != fiber.StatusGone {
		t.Fatalf("status = %d, want 410", resp.StatusCode)
	}
	if counter.n != 0 {
		t.Fatal("inactive code must not be counted")
	}
}

func TestScan_ExpiredRendersGone(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	repo := &stubCodeRepo{codes: map[string]*model.QRCode{
		scanID: {ID: scanID, Type: model.TypeURL, IsActive: true, ExpiresAt: &past},
	}}
	app, resolver := newScanApp(t, repo, &stubCounter{})

	resp, err := app.Test(httptest.NewRequest("GET", "/r/"+scanID, nil))
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	resolver.Drain()

	if resp.StatusCode != fiber.StatusGone {
		t.Fatalf("status = %d, want 410", resp.StatusCode)
	}
}

func TestScan_TextContentRendersPage(t *testing.T) {
	repo := &stubCodeRepo{codes: map[string]*model.QRCode{
		scanID: {ID: scanID, Type: model.TypeText, IsActive: true, Content: model.PlainContent("hello")},
	}}
	app, resolver := newScanApp(t, repo, &stubCounter{})

	resp, err := app.Test(httptest.NewRequest("GET", "/r/"+scanID, nil))
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	resolver.Drain()

	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestVCard_ServesDownload(t *testing.T) {
	repo := &stubCodeRepo{codes: map[string]*model.QRCode{
		scanID: {
			ID:       scanID,
			Type:     model.TypeVCard,
			IsActive: true,
			Content:  model.Content{Kind: model.ContentStructured, Encoded: "BEGIN:VCARD\nEND:VCARD"},
		},
	}}
	app, _ := newScanApp(t, repo, &stubCounter{})

	resp, err := app.Test(httptest.NewRequest("GET", "/v/"+scanID, nil))
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/vcard; charset=utf-8" {
		t.Fatalf("content type = %q", ct)
	}
}
