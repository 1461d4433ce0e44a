package repository

import (
	"context"

	"github.com/qrjet/qrjet/internal/app/model"
	"gorm.io/gorm"
)

// ScanEventRepository defines the data access contract for scan events.
// Events are append-only; nothing updates or deletes them.
type ScanEventRepository interface {
	Create(ctx context.Context, event *model.ScanEvent) error
	ListByQRCode(ctx context.Context, qrCodeID string, limit int) ([]model.ScanEvent, error)
	CountByQRCode(ctx context.Context, qrCodeID string) (int64, error)
}

type scanEventRepository struct {
	db *gorm.DB
}

// NewScanEventRepository returns a GORM-backed ScanEventRepository.
func NewScanEventRepository(db *gorm.DB) ScanEventRepository {
	return &scanEventRepository{db: db}
}

func (r *scanEventRepository) Create(ctx context.Context, event *model.ScanEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *scanEventRepository) ListByQRCode(ctx context.Context, qrCodeID string, limit int) ([]model.ScanEvent, error) {
	if limit <= 0 {
		limit = 50
	}

	var result []model.ScanEvent
	if err := r.db.WithContext(ctx).
		Where("qr_code_id = ?", qrCodeID).
		Order("scanned_at DESC").
		Limit(limit).
		Find(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

func (r *scanEventRepository) CountByQRCode(ctx context.Context, qrCodeID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.ScanEvent{}).
		Where("qr_code_id = ?", qrCodeID).
		Count(&n).Error
	return n, err
}
