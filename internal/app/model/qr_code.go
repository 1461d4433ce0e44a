package model

import "time"

// QR code types supported by the platform.
const (
	TypeURL       = "url"
	TypeWiFi      = "wifi"
	TypeVCard     = "vcard"
	TypeEmail     = "email"
	TypePhone     = "phone"
	TypeSMS       = "sms"
	TypeWhatsApp  = "whatsapp"
	TypeText      = "text"
	TypeInstagram = "instagram"
	TypeTwitter   = "twitter"
	TypeLinkedIn  = "linkedin"
	TypeYouTube   = "youtube"
	TypeFacebook  = "facebook"
	TypeEvent     = "event"
	TypeLocation  = "location"
	TypeBitcoin   = "bitcoin"
	TypeApp       = "app"
	TypePDF       = "pdf"
	TypeImage     = "image"
	TypeHTML      = "html"
	TypeMenu      = "menu"
)

var qrTypes = map[string]struct{}{
	TypeURL: {}, TypeWiFi: {}, TypeVCard: {}, TypeEmail: {}, TypePhone: {},
	TypeSMS: {}, TypeWhatsApp: {}, TypeText: {}, TypeInstagram: {},
	TypeTwitter: {}, TypeLinkedIn: {}, TypeYouTube: {}, TypeFacebook: {},
	TypeEvent: {}, TypeLocation: {}, TypeBitcoin: {}, TypeApp: {},
	TypePDF: {}, TypeImage: {}, TypeHTML: {}, TypeMenu: {},
}

// IsValidType reports whether t is one of the supported QR code types.
func IsValidType(t string) bool {
	_, ok := qrTypes[t]
	return ok
}

// QRCode is the core entity stored in Postgres. Dynamic codes encode a
// stable /r/{id} URL so the destination and analytics can change without
// reprinting the physical code.
type QRCode struct {
	ID         string     `db:"id" gorm:"primaryKey;size:36"`
	ShortCode  *string    `db:"short_code" gorm:"uniqueIndex;size:32"`
	UserID     string     `db:"user_id" gorm:"size:36;index;not null"`
	Type       string     `db:"type" gorm:"size:16;not null"`
	Content    Content    `db:"content" gorm:"type:jsonb"`
	Settings   Settings   `db:"settings" gorm:"type:jsonb"`
	IsActive   bool       `db:"is_active" gorm:"not null;default:true"`
	IsDynamic  bool       `db:"is_dynamic" gorm:"not null;default:false"`
	IsFeatured bool       `db:"is_featured" gorm:"not null;default:false"`
	ExpiresAt  *time.Time `db:"expires_at" gorm:"index"`
	ScanCount  int64      `db:"scan_count" gorm:"not null;default:0"`
	CreatedAt  time.Time  `db:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time  `db:"updated_at" gorm:"autoUpdateTime"`
}

// TableName keeps the table aligned with the public scan pipeline queries.
func (QRCode) TableName() string { return "qr_codes" }

// IsExpired reports whether the code has an expiry in the past.
func (q *QRCode) IsExpired(now time.Time) bool {
	return q.ExpiresAt != nil && now.After(*q.ExpiresAt)
}
