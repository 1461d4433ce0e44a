package service

import (
	"context"
	"errors"
	"testing"

	"github.com/qrjet/qrjet/internal/app/model"
	"github.com/qrjet/qrjet/internal/app/repository"
)

type mockUserRepository struct {
	getFn func(ctx context.Context, id string) (*model.User, error)
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error { return nil }

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) Delete(ctx context.Context, id string) error { return nil }

type mockPlanRepository struct {
	getFn func(ctx context.Context, slug string) (*model.PricingPlan, error)
}

func (m *mockPlanRepository) GetBySlug(ctx context.Context, slug string) (*model.PricingPlan, error) {
	if m.getFn != nil {
		return m.getFn(ctx, slug)
	}
	return nil, repository.ErrPlanNotFound
}

func (m *mockPlanRepository) List(ctx context.Context) ([]model.PricingPlan, error) {
	return model.DefaultPlans(), nil
}

func (m *mockPlanRepository) EnsureDefaults(ctx context.Context) error { return nil }

type countingCodeRepo struct {
	mockQRCodeRepository
	created  []*model.QRCode
	countVal int64
}

func (r *countingCodeRepo) Create(ctx context.Context, code *model.QRCode) error {
	r.created = append(r.created, code)
	return nil
}

func (r *countingCodeRepo) CountByUser(ctx context.Context, userID string) (int64, error) {
	return r.countVal, nil
}

func freeUser(id string) *model.User {
	return &model.User{ID: id, Email: id + "@example.com", Plan: model.PlanFree}
}

func freePlan() *model.PricingPlan {
	return &model.PricingPlan{Slug: model.PlanFree, Name: "Free", MaxQRCodes: 5, ScanLimit: 1000}
}

func TestQRService_CreateQRCode(t *testing.T) {
	codes := &countingCodeRepo{}
	users := &mockUserRepository{
		getFn: func(ctx context.Context, id string) (*model.User, error) {
			return freeUser(id), nil
		},
	}
	plans := &mockPlanRepository{
		getFn: func(ctx context.Context, slug string) (*model.PricingPlan, error) {
			return freePlan(), nil
		},
	}

	svc := NewQRService(codes, &mockScanEventRepository{}, users, plans, nil)
	code, err := svc.CreateQRCode(context.Background(), CreateQRCodeInput{
		UserID:        "user-1",
		Type:          model.TypeURL,
		Content:       model.Content{Kind: model.ContentStructured, OriginalURL: "https://example.com"},
		WantShortCode: true,
	})
	if err != nil {
		t.Fatalf("CreateQRCode returned error: %v", err)
	}
	if code.ID == "" {
		t.Fatal("expected generated id")
	}
	if code.ShortCode == nil || len(*code.ShortCode) != 7 {
		t.Fatalf("expected 7-char short code, got %v", code.ShortCode)
	}
	if !code.IsActive {
		t.Fatal("new codes start active")
	}
	if len(codes.created) != 1 {
		t.Fatalf("expected 1 create, got %d", len(codes.created))
	}
}

func TestQRService_CreateQRCode_InvalidType(t *testing.T) {
	svc := NewQRService(&countingCodeRepo{}, &mockScanEventRepository{}, &mockUserRepository{}, &mockPlanRepository{}, nil)
	_, err := svc.CreateQRCode(context.Background(), CreateQRCodeInput{
		UserID: "user-1",
		Type:   "hologram",
	})
	if !errors.Is(err, ErrInvalidType) {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}
}

func TestQRService_CreateQRCode_PlanLimit(t *testing.T) {
	codes := &countingCodeRepo{countVal: 5}
	users := &mockUserRepository{
		getFn: func(ctx context.Context, id string) (*model.User, error) {
			return freeUser(id), nil
		},
	}
	plans := &mockPlanRepository{
		getFn: func(ctx context.Context, slug string) (*model.PricingPlan, error) {
			return freePlan(), nil
		},
	}

	svc := NewQRService(codes, &mockScanEventRepository{}, users, plans, nil)
	_, err := svc.CreateQRCode(context.Background(), CreateQRCodeInput{
		UserID: "user-1",
		Type:   model.TypeURL,
	})
	if !errors.Is(err, ErrPlanLimitReached) {
		t.Fatalf("expected ErrPlanLimitReached, got %v", err)
	}
	if len(codes.created) != 0 {
		t.Fatal("no code may be created past the plan limit")
	}
}

func TestQRService_GetQRCode_OwnershipEnforced(t *testing.T) {
	repo := &countingCodeRepo{}
	repo.getByIDFn = func(ctx context.Context, id string) (*model.QRCode, error) {
		return &model.QRCode{ID: id, UserID: "someone-else"}, nil
	}

	svc := NewQRService(repo, &mockScanEventRepository{}, &mockUserRepository{}, &mockPlanRepository{}, nil)
	_, err := svc.GetQRCode(context.Background(), "user-1", "qr-1")
	if !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
}

func TestQRService_UpdateQRCode_TogglesActive(t *testing.T) {
	repo := &countingCodeRepo{}
	repo.getByIDFn = func(ctx context.Context, id string) (*model.QRCode, error) {
		return &model.QRCode{ID: id, UserID: "user-1", IsActive: true}, nil
	}

	svc := NewQRService(repo, &mockScanEventRepository{}, &mockUserRepository{}, &mockPlanRepository{}, nil)
	inactive := false
	code, err := svc.UpdateQRCode(context.Background(), "user-1", "qr-1", UpdateQRCodeInput{
		IsActive: &inactive,
	})
	if err != nil {
		t.Fatalf("UpdateQRCode error: %v", err)
	}
	if code.IsActive {
		t.Fatal("expected code to be deactivated")
	}
}
