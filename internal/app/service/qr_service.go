package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/qrjet/qrjet/internal/app/model"
	"github.com/qrjet/qrjet/internal/app/repository"
)

var (
	// ErrPlanLimitReached signals the owner's plan QR code quota is used up.
	ErrPlanLimitReached = errors.New("plan qr code limit reached")
	// ErrInvalidType signals an unsupported QR code type.
	ErrInvalidType = errors.New("invalid qr code type")
	// ErrNotOwner signals the caller does not own the requested code.
	ErrNotOwner = errors.New("qr code belongs to another user")
)

// QRService defines behaviour-level operations on QR codes.
type QRService interface {
	CreateQRCode(ctx context.Context, input CreateQRCodeInput) (*model.QRCode, error)
	GetQRCode(ctx context.Context, userID, id string) (*model.QRCode, error)
	ListQRCodes(ctx context.Context, userID string, limit, offset int) ([]model.QRCode, error)
	UpdateQRCode(ctx context.Context, userID, id string, input UpdateQRCodeInput) (*model.QRCode, error)
	DeleteQRCode(ctx context.Context, userID, id string) error
	ScanStats(ctx context.Context, userID, id string, limit int) (*ScanStats, error)
}

type qrService struct {
	codes  repository.QRCodeRepository
	events repository.ScanEventRepository
	users  repository.UserRepository
	plans  repository.PlanRepository
	filter *CodeFilter
}

// NewQRService returns a service implementation backed by the given
// repositories. filter may be nil.
func NewQRService(codes repository.QRCodeRepository, events repository.ScanEventRepository, users repository.UserRepository, plans repository.PlanRepository, filter *CodeFilter) QRService {
	return &qrService{codes: codes, events: events, users: users, plans: plans, filter: filter}
}

// CreateQRCodeInput captures data required to create a QR code.
type CreateQRCodeInput struct {
	UserID        string
	Type          string
	Content       model.Content
	Settings      model.Settings
	IsDynamic     bool
	WantShortCode bool
	ExpiresAt     *time.Time
}

// UpdateQRCodeInput captures fields that can be changed on an existing code.
type UpdateQRCodeInput struct {
	Content    *model.Content
	Settings   *model.Settings
	IsActive   *bool
	IsFeatured *bool
	ExpiresAt  *time.Time
}

// ScanStats bundles the counter with recent scan events.
type ScanStats struct {
	ScanCount int64             `json:"scan_count"`
	Total     int64             `json:"total_events"`
	Recent    []model.ScanEvent `json:"recent"`
}

func (s *qrService) CreateQRCode(ctx context.Context, input CreateQRCodeInput) (*model.QRCode, error) {
	if !model.IsValidType(input.Type) {
		return nil, ErrInvalidType
	}

	if err := s.checkPlanLimit(ctx, input.UserID); err != nil {
		return nil, err
	}

	code := &model.QRCode{
		ID:        uuid.New().String(),
		UserID:    input.UserID,
		Type:      input.Type,
		Content:   input.Content,
		Settings:  input.Settings,
		IsActive:  true,
		IsDynamic: input.IsDynamic,
		ExpiresAt: input.ExpiresAt,
	}

	if input.WantShortCode {
		alias, err := randomShortCode(7)
		if err != nil {
			return nil, fmt.Errorf("generate short code: %w", err)
		}
		code.ShortCode = &alias
	}

	if err := s.codes.Create(ctx, code); err != nil {
		return nil, fmt.Errorf("create qr code: %w", err)
	}

	if s.filter != nil {
		s.filter.Add(code.ID)
		if code.ShortCode != nil {
			s.filter.Add(*code.ShortCode)
		}
	}
	return code, nil
}

func (s *qrService) checkPlanLimit(ctx context.Context, userID string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}

	plan, err := s.plans.GetBySlug(ctx, user.Plan)
	if err != nil {
		if errors.Is(err, repository.ErrPlanNotFound) {
			// Unknown slug: fall back to the free tier limits.
			plan, err = s.plans.GetBySlug(ctx, model.PlanFree)
		}
		if err != nil {
			return fmt.Errorf("load plan: %w", err)
		}
	}

	count, err := s.codes.CountByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("count qr codes: %w", err)
	}
	if plan.MaxQRCodes > 0 && count >= int64(plan.MaxQRCodes) {
		return ErrPlanLimitReached
	}
	return nil
}

func (s *qrService) GetQRCode(ctx context.Context, userID, id string) (*model.QRCode, error) {
	code, err := s.codes.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get qr code: %w", err)
	}
	if code.UserID != userID {
		return nil, ErrNotOwner
	}
	return code, nil
}

func (s *qrService) ListQRCodes(ctx context.Context, userID string, limit, offset int) ([]model.QRCode, error) {
	codes, err := s.codes.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list qr codes: %w", err)
	}
	return codes, nil
}

func (s *qrService) UpdateQRCode(ctx context.Context, userID, id string, input UpdateQRCodeInput) (*model.QRCode, error) {
	code, err := s.GetQRCode(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if input.Content != nil {
		code.Content = *input.Content
	}
	if input.Settings != nil {
		code.Settings = *input.Settings
	}
	if input.IsActive != nil {
		code.IsActive = *input.IsActive
	}
	if input.IsFeatured != nil {
		code.IsFeatured = *input.IsFeatured
	}
	if input.ExpiresAt != nil {
		code.ExpiresAt = input.ExpiresAt
	}

	if err := s.codes.Update(ctx, code); err != nil {
		return nil, fmt.Errorf("update qr code: %w", err)
	}
	return code, nil
}

func (s *qrService) DeleteQRCode(ctx context.Context, userID, id string) error {
	if _, err := s.GetQRCode(ctx, userID, id); err != nil {
		return err
	}
	if err := s.codes.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete qr code: %w", err)
	}
	return nil
}

func (s *qrService) ScanStats(ctx context.Context, userID, id string, limit int) (*ScanStats, error) {
	code, err := s.GetQRCode(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	total, err := s.events.CountByQRCode(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("count scan events: %w", err)
	}
	recent, err := s.events.ListByQRCode(ctx, id, limit)
	if err != nil {
		return nil, fmt.Errorf("list scan events: %w", err)
	}

	return &ScanStats{ScanCount: code.ScanCount, Total: total, Recent: recent}, nil
}

const shortCodeAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

func randomShortCode(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i := range buf {
		buf[i] = shortCodeAlphabet[int(buf[i])%len(shortCodeAlphabet)]
	}
	return string(buf), nil
}
