package repository

import (
	"context"
	"errors"

	"github.com/qrjet/qrjet/internal/app/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrPlanNotFound signals an unknown plan slug.
	ErrPlanNotFound = errors.New("pricing plan not found")
)

// PlanRepository defines the data access contract for the plan catalog.
type PlanRepository interface {
	GetBySlug(ctx context.Context, slug string) (*model.PricingPlan, error)
	List(ctx context.Context) ([]model.PricingPlan, error)
	EnsureDefaults(ctx context.Context) error
}

type planRepository struct {
	db *gorm.DB
}

// NewPlanRepository returns a GORM-backed PlanRepository.
func NewPlanRepository(db *gorm.DB) PlanRepository {
	return &planRepository{db: db}
}

func (r *planRepository) GetBySlug(ctx context.Context, slug string) (*model.PricingPlan, error) {
	var plan model.PricingPlan
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return &plan, nil
}

func (r *planRepository) List(ctx context.Context) ([]model.PricingPlan, error) {
	var plans []model.PricingPlan
	if err := r.db.WithContext(ctx).Order("price_cents ASC").Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

// EnsureDefaults seeds the built-in catalog without touching plans an
// operator may have tuned.
func (r *planRepository) EnsureDefaults(ctx context.Context) error {
	plans := model.DefaultPlans()
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&plans).Error
}
