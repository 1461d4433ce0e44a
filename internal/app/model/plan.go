package model

import "time"

// PricingPlan defines the limits and feature flags attached to a plan slug.
// Users reference plans by slug; plans are never owned.
type PricingPlan struct {
	Slug           string    `db:"slug" gorm:"primaryKey;size:16" json:"slug"`
	Name           string    `db:"name" gorm:"size:64;not null" json:"name"`
	PriceCents     int       `db:"price_cents" gorm:"not null;default:0" json:"price_cents"`
	MaxQRCodes     int       `db:"max_qr_codes" gorm:"not null" json:"max_qr_codes"`
	ScanLimit      int64     `db:"scan_limit" gorm:"not null" json:"scan_limit"`
	Analytics      bool      `db:"analytics" gorm:"not null;default:false" json:"analytics"`
	CustomLogo     bool      `db:"custom_logo" gorm:"not null;default:false" json:"custom_logo"`
	UnlimitedScans bool      `db:"unlimited_scans" gorm:"not null;default:false" json:"unlimited_scans"`
	CreatedAt      time.Time `db:"created_at" gorm:"autoCreateTime" json:"-"`
	UpdatedAt      time.Time `db:"updated_at" gorm:"autoUpdateTime" json:"-"`
}

// TableName pins the plans table name.
func (PricingPlan) TableName() string { return "pricing_plans" }

// DefaultPlans seeds the catalog on first boot.
func DefaultPlans() []PricingPlan {
	return []PricingPlan{
		{Slug: PlanFree, Name: "Free", MaxQRCodes: 5, ScanLimit: 1000},
		{Slug: PlanPro, Name: "Pro", PriceCents: 900, MaxQRCodes: 100, ScanLimit: 100000, Analytics: true, CustomLogo: true},
		{Slug: PlanEnterprise, Name: "Enterprise", PriceCents: 4900, MaxQRCodes: 1000, ScanLimit: 0, Analytics: true, CustomLogo: true, UnlimitedScans: true},
	}
}
