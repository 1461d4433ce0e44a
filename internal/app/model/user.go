package model

import "time"

// Subscription plan slugs.
const (
	PlanFree       = "free"
	PlanPro        = "pro"
	PlanEnterprise = "enterprise"
)

// User is an account that owns QR codes. Deleting a user deletes all owned
// codes (constraint declared on QRCode's foreign key during migration).
type User struct {
	ID        string    `db:"id" gorm:"primaryKey;size:36"`
	Email     string    `db:"email" gorm:"uniqueIndex;size:255;not null"`
	Plan      string    `db:"plan" gorm:"size:16;not null;default:free"`
	CreatedAt time.Time `db:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `db:"updated_at" gorm:"autoUpdateTime"`

	QRCodes []QRCode `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// TableName matches the hosted backend's profile table.
func (User) TableName() string { return "profiles" }
