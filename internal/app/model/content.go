package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// ContentKind discriminates the two content payload shapes.
type ContentKind int

const (
	// ContentPlain is a bare string payload (static codes, free text).
	ContentPlain ContentKind = iota
	// ContentStructured carries the encoded QR payload plus the raw field
	// map the user filled in, and optionally the true redirect target.
	ContentStructured
)

// Content is the payload of a QR code. Historically this column held either
// a JSON string or a JSON object, so both shapes round-trip.
type Content struct {
	Kind ContentKind

	// Plain is set when Kind == ContentPlain.
	Plain string

	// Encoded is what the physical QR image encodes.
	Encoded string
	// Raw holds the user-entered fields (url, ssid, phone, ...).
	Raw map[string]string
	// OriginalURL is the true redirect target for dynamic codes and takes
	// precedence over Raw and Encoded when resolving a scan.
	OriginalURL string
}

// PlainContent wraps a bare string payload.
func PlainContent(s string) Content {
	return Content{Kind: ContentPlain, Plain: s}
}

type structuredContent struct {
	Encoded     string            `json:"encoded"`
	Raw         map[string]string `json:"raw,omitempty"`
	OriginalURL string            `json:"originalUrl,omitempty"`
}

// MarshalJSON emits either a JSON string or the structured object.
func (c Content) MarshalJSON() ([]byte, error) {
	if c.Kind == ContentPlain {
		return json.Marshal(c.Plain)
	}
	return json.Marshal(structuredContent{
		Encoded:     c.Encoded,
		Raw:         c.Raw,
		OriginalURL: c.OriginalURL,
	})
}

// UnmarshalJSON accepts both legacy string payloads and structured objects.
func (c *Content) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		return errors.New("content: empty payload")
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("content: decode string: %w", err)
		}
		*c = PlainContent(s)
		return nil
	}

	var sc structuredContent
	if err := json.Unmarshal(data, &sc); err != nil {
		return fmt.Errorf("content: decode object: %w", err)
	}
	*c = Content{
		Kind:        ContentStructured,
		Encoded:     sc.Encoded,
		Raw:         sc.Raw,
		OriginalURL: sc.OriginalURL,
	}
	return nil
}

// Value implements driver.Valuer so GORM stores the union as jsonb.
func (c Content) Value() (driver.Value, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (c *Content) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*c = Content{}
		return nil
	case []byte:
		return c.UnmarshalJSON(v)
	case string:
		return c.UnmarshalJSON([]byte(v))
	default:
		return fmt.Errorf("content: unsupported scan type %T", src)
	}
}

// Settings is free-form display configuration (colors, size, error
// correction level, logo, frame) persisted as jsonb.
type Settings map[string]any

// Value implements driver.Valuer.
func (s Settings) Value() (driver.Value, error) {
	if s == nil {
		return "{}", nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (s *Settings) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*s = nil
		return nil
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("settings: unsupported scan type %T", src)
	}
}
