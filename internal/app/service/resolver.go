package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/qrjet/qrjet/internal/app/model"
	"github.com/qrjet/qrjet/internal/app/repository"
	"go.uber.org/zap"
)

// ResolveState is the terminal outcome of one scan resolution.
type ResolveState int

const (
	// StateNotFound means no record matched the identifier or alias.
	StateNotFound ResolveState = iota
	// StateInactive means the owner disabled the code.
	StateInactive
	// StateExpired means the code's expiry is in the past.
	StateExpired
	// StateRedirect means a destination URL was computed.
	StateRedirect
	// StateContent means the code is usable but has no redirectable URL;
	// its content is shown as a fallback page.
	StateContent
)

// String names the state for logs and metrics labels.
func (s ResolveState) String() string {
	switch s {
	case StateNotFound:
		return "not_found"
	case StateInactive:
		return "inactive"
	case StateExpired:
		return "expired"
	case StateRedirect:
		return "redirect"
	case StateContent:
		return "content"
	default:
		return "unknown"
	}
}

// Resolution describes what the redirect handler should do with a scan.
type Resolution struct {
	State     ResolveState
	Code      *model.QRCode
	TargetURL string
}

const counterTimeout = 10 * time.Second

// ResolverConfig carries resolver tunables.
type ResolverConfig struct {
	// BaseURL is the public origin serving /r/ routes, used to recognize
	// self-referential encoded URLs. Optional.
	BaseURL string
}

// Resolver decides whether and where a scanned identifier redirects, and
// whether the scan is counted.
type Resolver struct {
	logger   *zap.Logger
	codes    repository.QRCodeRepository
	counters repository.CounterRepository
	dispatch ScanDispatcher
	filter   *CodeFilter
	baseHost string

	wg sync.WaitGroup
}

// NewResolver builds a Resolver. counters, dispatch and filter are each
// optional; missing pieces disable the corresponding side effect.
func NewResolver(logger *zap.Logger, codes repository.QRCodeRepository, counters repository.CounterRepository, dispatch ScanDispatcher, filter *CodeFilter, cfg ResolverConfig) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	baseHost := ""
	if cfg.BaseURL != "" {
		if u, err := url.Parse(cfg.BaseURL); err == nil {
			baseHost = u.Host
		}
	}
	return &Resolver{
		logger:   logger,
		codes:    codes,
		counters: counters,
		dispatch: dispatch,
		filter:   filter,
		baseHost: baseHost,
	}
}

// Resolve runs the scan state machine for id. Lookup and state checks are
// synchronous; the counter increment and scan tracking run detached so
// their failure never delays or fails the response.
func (r *Resolver) Resolve(ctx context.Context, id string, scan model.ScanContext) Resolution {
	code, found := r.lookup(ctx, id)
	if !found {
		return Resolution{State: StateNotFound}
	}

	if !code.IsActive {
		return Resolution{State: StateInactive, Code: code}
	}
	if code.IsExpired(time.Now()) {
		return Resolution{State: StateExpired, Code: code}
	}

	// Usable: count and track, fire and forget.
	r.countScan(code.ID)
	if r.dispatch != nil {
		scan.QRCodeID = code.ID
		if scan.ScannedAt.IsZero() {
			scan.ScannedAt = time.Now().UTC()
		}
		r.dispatch.Dispatch(scan)
	}

	if target, ok := r.destination(code); ok {
		return Resolution{State: StateRedirect, Code: code, TargetURL: target}
	}
	return Resolution{State: StateContent, Code: code}
}

// Load fetches a usable-or-not code by id or alias without counting a
// scan. Landing pages use it to render from stored content.
func (r *Resolver) Load(ctx context.Context, id string) (*model.QRCode, error) {
	code, found := r.lookup(ctx, id)
	if !found {
		return nil, repository.ErrQRCodeNotFound
	}
	return code, nil
}

// Drain waits for detached counter increments. Call once at shutdown.
func (r *Resolver) Drain() {
	r.wg.Wait()
}

// lookup resolves id by primary key when it is UUID-shaped, falling back
// to the short-code alias either way. Store failures degrade to a miss so
// the caller renders not-found instead of an error page.
func (r *Resolver) lookup(ctx context.Context, id string) (*model.QRCode, bool) {
	if id == "" {
		return nil, false
	}
	if r.filter != nil && !r.filter.MayContain(id) {
		return nil, false
	}

	if uuid.Validate(id) == nil {
		code, err := r.codes.GetByID(ctx, id)
		if err == nil {
			return code, true
		}
		if !errors.Is(err, repository.ErrQRCodeNotFound) {
			r.logger.Error("qr code lookup failed", zap.String("id", id), zap.Error(err))
			return nil, false
		}
	}

	code, err := r.codes.GetByShortCode(ctx, id)
	if err != nil {
		if !errors.Is(err, repository.ErrQRCodeNotFound) {
			r.logger.Error("qr code alias lookup failed", zap.String("id", id), zap.Error(err))
		}
		return nil, false
	}
	return code, true
}

func (r *Resolver) countScan(id string) {
	if r.counters == nil {
		return
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), counterTimeout)
		defer cancel()
		if err := r.counters.IncrementScanCount(ctx, id); err != nil {
			r.logger.Error("failed to increment scan count",
				zap.String("qr_code_id", id),
				zap.Error(err))
		}
	}()
}

// destination computes where a usable code leads. Type-specific landing
// pages win, then the extracted content URL; anything else falls back to
// the content page.
func (r *Resolver) destination(code *model.QRCode) (string, bool) {
	switch code.Type {
	case model.TypeApp:
		return "/app/" + code.ID, true
	case model.TypeVCard:
		return "/v/" + code.ID, true
	case model.TypeHTML:
		return "/html/" + code.ID, true
	}

	raw, ok := r.extractURL(code)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw, true
	}
	return "", false
}

// extractURL picks the redirect candidate in priority order: originalUrl,
// then the raw url/link/website fields, then the encoded payload unless it
// points back into this service's own redirect route.
func (r *Resolver) extractURL(code *model.QRCode) (string, bool) {
	c := code.Content

	if c.Kind == model.ContentPlain {
		if c.Plain != "" && !r.pointsToSelf(c.Plain, code) {
			return c.Plain, true
		}
		return "", false
	}

	if c.OriginalURL != "" {
		return c.OriginalURL, true
	}
	for _, key := range []string{"url", "link", "website"} {
		if v := c.Raw[key]; v != "" {
			return v, true
		}
	}
	if c.Encoded != "" && !r.pointsToSelf(c.Encoded, code) {
		return c.Encoded, true
	}
	return "", false
}

// pointsToSelf reports whether raw is this service's own redirect URL for
// the code, which would loop a scanner straight back here.
func (r *Resolver) pointsToSelf(raw string, code *model.QRCode) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Host != "" && r.baseHost != "" && !strings.EqualFold(u.Host, r.baseHost) {
		return false
	}

	path := strings.TrimSuffix(u.Path, "/")
	if path == "/r/"+code.ID {
		return true
	}
	if code.ShortCode != nil && *code.ShortCode != "" && path == "/r/"+*code.ShortCode {
		return true
	}
	return false
}
