package model

import "time"

// Device types recorded on scan events.
const (
	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
)

// MaxUserAgentLen bounds the stored user agent string.
const MaxUserAgentLen = 500

// ScanEvent is one immutable analytics record per successful scan of a
// usable code.
type ScanEvent struct {
	ID         string    `db:"id" gorm:"primaryKey;size:36" json:"id"`
	QRCodeID   string    `db:"qr_code_id" gorm:"size:36;index;not null" json:"qr_code_id"`
	IPAddress  string    `db:"ip_address" gorm:"size:45" json:"ip_address"`
	UserAgent  string    `db:"user_agent" gorm:"size:500" json:"user_agent"`
	Country    string    `db:"country" gorm:"size:100" json:"country"`
	City       string    `db:"city" gorm:"size:100" json:"city"`
	DeviceType string    `db:"device_type" gorm:"size:16" json:"device_type"`
	Browser    string    `db:"browser" gorm:"size:32" json:"browser"`
	OS         string    `db:"os" gorm:"size:32" json:"os"`
	ScannedAt  time.Time `db:"scanned_at" gorm:"index" json:"scanned_at"`
}

// TableName pins the analytics table name.
func (ScanEvent) TableName() string { return "qr_scans" }

// ScanContext is the raw, unenriched context captured at the redirect
// boundary and carried through the scan pipeline.
type ScanContext struct {
	QRCodeID     string    `json:"qr_code_id"`
	ForwardedFor string    `json:"forwarded_for,omitempty"`
	RealIP       string    `json:"real_ip,omitempty"`
	UserAgent    string    `json:"user_agent,omitempty"`
	ScannedAt    time.Time `json:"scanned_at"`
}

const (
	ScanStreamName     = "SCANS"
	ScanStreamSubject  = "scans.events"
	ScanConsumerName   = "scan-tracker"
	ScanStreamMaxBytes = 1024 * 1024 * 100 // 100MB
)
