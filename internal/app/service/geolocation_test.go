package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGeolocator_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success","country":"Germany","city":"Berlin"}`))
	}))
	defer srv.Close()

	g := NewGeolocator(nil, nil, GeolocatorConfig{Endpoint: srv.URL})
	loc := g.Lookup(context.Background(), "93.184.216.34")
	if loc.Country != "Germany" || loc.City != "Berlin" {
		t.Fatalf("unexpected location %+v", loc)
	}
}

func TestGeolocator_UpstreamFailureFallsBackToUnknown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	g := NewGeolocator(nil, nil, GeolocatorConfig{Endpoint: srv.URL})
	if loc := g.Lookup(context.Background(), "93.184.216.34"); loc != UnknownLocation {
		t.Fatalf("expected UnknownLocation, got %+v", loc)
	}
}

func TestGeolocator_NonSuccessStatusField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"fail","country":"","city":""}`))
	}))
	defer srv.Close()

	g := NewGeolocator(nil, nil, GeolocatorConfig{Endpoint: srv.URL})
	if loc := g.Lookup(context.Background(), "10.1.2.3"); loc != UnknownLocation {
		t.Fatalf("expected UnknownLocation, got %+v", loc)
	}
}

func TestGeolocator_UnreachableService(t *testing.T) {
	// Closed server: the client errors out, the lookup must not.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	g := NewGeolocator(nil, nil, GeolocatorConfig{Endpoint: srv.URL})
	if loc := g.Lookup(context.Background(), "93.184.216.34"); loc != UnknownLocation {
		t.Fatalf("expected UnknownLocation, got %+v", loc)
	}
}

func TestGeolocator_NoEndpointConfigured(t *testing.T) {
	g := NewGeolocator(nil, nil, GeolocatorConfig{})
	if loc := g.Lookup(context.Background(), "93.184.216.34"); loc != UnknownLocation {
		t.Fatalf("expected UnknownLocation, got %+v", loc)
	}
}

func TestIsRoutableIP(t *testing.T) {
	tests := []struct {
		ip   string
		want bool
	}{
		{"93.184.216.34", true},
		{"2001:db8::1", true},
		{"127.0.0.1", false},
		{"::1", false},
		{"10.0.0.5", false},
		{"172.16.8.1", false},
		{"192.168.1.20", false},
		{"169.254.1.1", false},
		{"0.0.0.0", false},
		{"Unknown", false},
		{"", false},
		{"not-an-ip", false},
	}
	for _, tt := range tests {
		if got := IsRoutableIP(tt.ip); got != tt.want {
			t.Errorf("IsRoutableIP(%q) = %v, want %v", tt.ip, got, tt.want)
		}
	}
}
