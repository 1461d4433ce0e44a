package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultGeoTimeout  = 3 * time.Second
	defaultGeoCacheTTL = time.Hour
	geoCachePrefix     = "geoip:"
)

// Location is a resolved country/city pair. The zero value is not used;
// UnknownLocation stands in for every failure path.
type Location struct {
	Country string `json:"country"`
	City    string `json:"city"`
}

// UnknownLocation is returned whenever lookup is skipped or fails.
var UnknownLocation = Location{Country: "Unknown", City: "Unknown"}

// GeolocatorConfig drives the Geolocator.
type GeolocatorConfig struct {
	// Endpoint is an ip-api compatible base URL, e.g. http://ip-api.com/json.
	Endpoint string
	Timeout  time.Duration
	CacheTTL time.Duration
	// Observe, when set, receives the outcome of every lookup
	// (cache_hit, success, failure) for metrics.
	Observe func(outcome string)
}

// Geolocator resolves an IP address to a coarse location through an
// external, rate-limited lookup service. Results are cached in Redis so a
// burst of scans from one address costs a single upstream call.
type Geolocator struct {
	logger   *zap.Logger
	client   *http.Client
	endpoint string
	cache    *redis.Client
	ttl      time.Duration
	observe  func(outcome string)
}

// NewGeolocator builds a Geolocator. The redis client may be nil, in which
// case caching is skipped.
func NewGeolocator(logger *zap.Logger, cache *redis.Client, cfg GeolocatorConfig) *Geolocator {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultGeoTimeout
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = defaultGeoCacheTTL
	}
	observe := cfg.Observe
	if observe == nil {
		observe = func(string) {}
	}
	return &Geolocator{
		logger:   logger,
		client:   &http.Client{Timeout: timeout},
		endpoint: cfg.Endpoint,
		cache:    cache,
		ttl:      ttl,
		observe:  observe,
	}
}

type geoResponse struct {
	Status  string `json:"status"`
	Country string `json:"country"`
	City    string `json:"city"`
}

// Lookup resolves ip to a Location. It never returns an error; any cache,
// network, decode or upstream failure degrades to UnknownLocation.
func (g *Geolocator) Lookup(ctx context.Context, ip string) Location {
	if g.endpoint == "" || ip == "" {
		return UnknownLocation
	}

	if loc, ok := g.cached(ctx, ip); ok {
		g.observe("cache_hit")
		return loc
	}

	loc := g.fetch(ctx, ip)
	if loc == UnknownLocation {
		g.observe("failure")
		return loc
	}
	g.observe("success")
	g.store(ctx, ip, loc)
	return loc
}

func (g *Geolocator) fetch(ctx context.Context, ip string) Location {
	lookupURL := fmt.Sprintf("%s/%s?fields=status,country,city", g.endpoint, url.PathEscape(ip))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, nil)
	if err != nil {
		g.logger.Warn("geoip: build request failed", zap.Error(err))
		return UnknownLocation
	}

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Warn("geoip: lookup failed", zap.String("ip", ip), zap.Error(err))
		return UnknownLocation
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		g.logger.Warn("geoip: unexpected status",
			zap.String("ip", ip),
			zap.Int("status", resp.StatusCode))
		return UnknownLocation
	}

	var payload geoResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		g.logger.Warn("geoip: decode failed", zap.String("ip", ip), zap.Error(err))
		return UnknownLocation
	}

	if payload.Status != "success" || payload.Country == "" {
		return UnknownLocation
	}

	loc := Location{Country: payload.Country, City: payload.City}
	if loc.City == "" {
		loc.City = "Unknown"
	}
	return loc
}

func (g *Geolocator) cached(ctx context.Context, ip string) (Location, bool) {
	if g.cache == nil {
		return Location{}, false
	}

	val, err := g.cache.Get(ctx, geoCachePrefix+ip).Result()
	if err != nil {
		if err != redis.Nil {
			g.logger.Warn("geoip: cache read failed", zap.Error(err))
		}
		return Location{}, false
	}

	var loc Location
	if err := json.Unmarshal([]byte(val), &loc); err != nil {
		return Location{}, false
	}
	return loc, true
}

func (g *Geolocator) store(ctx context.Context, ip string, loc Location) {
	if g.cache == nil {
		return
	}
	data, err := json.Marshal(loc)
	if err != nil {
		return
	}
	if err := g.cache.Set(ctx, geoCachePrefix+ip, data, g.ttl).Err(); err != nil {
		g.logger.Warn("geoip: cache write failed", zap.Error(err))
	}
}

// IsRoutableIP reports whether ip is a public, routable address worth
// sending to the geolocation service.
func IsRoutableIP(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	if parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsUnspecified() ||
		parsed.IsLinkLocalUnicast() || parsed.IsLinkLocalMulticast() {
		return false
	}
	return true
}
