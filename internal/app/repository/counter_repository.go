package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// CounterRepository increments scan counters with a single atomic statement,
// bypassing the ORM so concurrent scans never lose increments.
type CounterRepository interface {
	IncrementScanCount(ctx context.Context, qrCodeID string) error
}

type counterRepository struct {
	pool *pgxpool.Pool
}

// NewCounterRepository returns a pgx-backed CounterRepository.
func NewCounterRepository(pool *pgxpool.Pool) CounterRepository {
	return &counterRepository{pool: pool}
}

func (r *counterRepository) IncrementScanCount(ctx context.Context, qrCodeID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE qr_codes SET scan_count = scan_count + 1 WHERE id = $1`,
		qrCodeID)
	return err
}
