package repository

import (
	"context"
	"errors"

	"github.com/qrjet/qrjet/internal/app/model"
	"gorm.io/gorm"
)

var (
	// ErrQRCodeNotFound signals that the requested QR code does not exist.
	ErrQRCodeNotFound = errors.New("qr code not found")
)

// QRCodeRepository defines the data access contract for QR codes.
type QRCodeRepository interface {
	Create(ctx context.Context, code *model.QRCode) error
	GetByID(ctx context.Context, id string) (*model.QRCode, error)
	GetByShortCode(ctx context.Context, shortCode string) (*model.QRCode, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]model.QRCode, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
	Update(ctx context.Context, code *model.QRCode) error
	Delete(ctx context.Context, id string) error
	ListIdentifiers(ctx context.Context) ([]string, error)
}

type qrCodeRepository struct {
	db *gorm.DB
}

// NewQRCodeRepository returns a GORM-backed QRCodeRepository.
func NewQRCodeRepository(db *gorm.DB) QRCodeRepository {
	return &qrCodeRepository{db: db}
}

func (r *qrCodeRepository) Create(ctx context.Context, code *model.QRCode) error {
	return r.db.WithContext(ctx).Create(code).Error
}

func (r *qrCodeRepository) GetByID(ctx context.Context, id string) (*model.QRCode, error) {
	var code model.QRCode
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQRCodeNotFound
		}
		return nil, err
	}
	return &code, nil
}

func (r *qrCodeRepository) GetByShortCode(ctx context.Context, shortCode string) (*model.QRCode, error) {
	var code model.QRCode
	if err := r.db.WithContext(ctx).Where("short_code = ?", shortCode).First(&code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQRCodeNotFound
		}
		return nil, err
	}
	return &code, nil
}

func (r *qrCodeRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]model.QRCode, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var result []model.QRCode
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

func (r *qrCodeRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.QRCode{}).
		Where("user_id = ?", userID).
		Count(&n).Error
	return n, err
}

func (r *qrCodeRepository) Update(ctx context.Context, code *model.QRCode) error {
	result := r.db.WithContext(ctx).
		Model(&model.QRCode{}).
		Where("id = ?", code.ID).
		Updates(map[string]interface{}{
			"short_code":  code.ShortCode,
			"type":        code.Type,
			"content":     code.Content,
			"settings":    code.Settings,
			"is_active":   code.IsActive,
			"is_dynamic":  code.IsDynamic,
			"is_featured": code.IsFeatured,
			"expires_at":  code.ExpiresAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrQRCodeNotFound
	}

	return r.db.WithContext(ctx).Where("id = ?", code.ID).First(code).Error
}

func (r *qrCodeRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.QRCode{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrQRCodeNotFound
	}
	return nil
}

// ListIdentifiers returns every id and short code; used to warm the lookup
// pre-filter at startup.
func (r *qrCodeRepository) ListIdentifiers(ctx context.Context) ([]string, error) {
	var rows []struct {
		ID        string
		ShortCode *string
	}
	if err := r.db.WithContext(ctx).
		Model(&model.QRCode{}).
		Select("id", "short_code").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(rows)*2)
	for _, row := range rows {
		ids = append(ids, row.ID)
		if row.ShortCode != nil && *row.ShortCode != "" {
			ids = append(ids, *row.ShortCode)
		}
	}
	return ids, nil
}
