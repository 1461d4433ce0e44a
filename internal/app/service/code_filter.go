package service

import (
	"context"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/qrjet/qrjet/internal/app/repository"
)

const (
	defaultFilterCapacity = 1_000_000
	defaultFilterFPRate   = 0.001
)

// CodeFilter is a bloom filter over every known QR code id and short code.
// It lets the resolver reject garbage identifiers without a store round
// trip. False positives fall through to the store, so it is safe to
// consult on every scan.
type CodeFilter struct {
	mu     sync.RWMutex
	filter *bloom.BloomFilter
}

// NewCodeFilter builds a filter sized for capacity entries at the given
// false-positive rate. Zero values select sensible defaults.
func NewCodeFilter(capacity uint, fpRate float64) *CodeFilter {
	if capacity == 0 {
		capacity = defaultFilterCapacity
	}
	if fpRate <= 0 || fpRate >= 1 {
		fpRate = defaultFilterFPRate
	}
	return &CodeFilter{filter: bloom.NewWithEstimates(capacity, fpRate)}
}

// Warm loads every known identifier from the repository.
func (f *CodeFilter) Warm(ctx context.Context, codes repository.QRCodeRepository) error {
	ids, err := codes.ListIdentifiers(ctx)
	if err != nil {
		return err
	}
	f.Add(ids...)
	return nil
}

// Add registers identifiers with the filter.
func (f *CodeFilter) Add(ids ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		if id != "" {
			f.filter.AddString(id)
		}
	}
}

// MayContain reports whether id could be a known identifier. A false
// result is definitive; a true result still requires a store lookup.
func (f *CodeFilter) MayContain(id string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.filter.TestString(id)
}
