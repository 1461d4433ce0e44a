package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestContent_UnmarshalLegacyString(t *testing.T) {
	var c Content
	if err := json.Unmarshal([]byte(`"https://example.com"`), &c); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if c.Kind != ContentPlain || c.Plain != "https://example.com" {
		t.Fatalf("unexpected content %+v", c)
	}
}

func TestContent_UnmarshalStructured(t *testing.T) {
	payload := `{"encoded":"https://qr.test/r/abc","raw":{"url":"https://example.com"},"originalUrl":"https://primary.com"}`

	var c Content
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if c.Kind != ContentStructured {
		t.Fatal("expected structured kind")
	}
	if c.Encoded != "https://qr.test/r/abc" {
		t.Fatalf("encoded = %q", c.Encoded)
	}
	if c.Raw["url"] != "https://example.com" {
		t.Fatalf("raw url = %q", c.Raw["url"])
	}
	if c.OriginalURL != "https://primary.com" {
		t.Fatalf("originalUrl = %q", c.OriginalURL)
	}
}

func TestContent_MarshalMatchesKind(t *testing.T) {
	plain, err := json.Marshal(PlainContent("hello"))
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	if string(plain) != `"hello"` {
		t.Fatalf("plain content must serialize as a JSON string, got %s", plain)
	}

	structured, err := json.Marshal(Content{Kind: ContentStructured, Encoded: "x"})
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	if structured[0] != '{' {
		t.Fatalf("structured content must serialize as an object, got %s", structured)
	}
}

func TestContent_ScanDatabaseValue(t *testing.T) {
	var c Content
	if err := c.Scan([]byte(`{"encoded":"wifi:ssid","raw":{"ssid":"cafe"}}`)); err != nil {
		t.Fatalf("scan error: %v", err)
	}
	if c.Raw["ssid"] != "cafe" {
		t.Fatalf("unexpected content %+v", c)
	}

	val, err := c.Value()
	if err != nil {
		t.Fatalf("value error: %v", err)
	}
	var back Content
	if err := back.Scan(val); err != nil {
		t.Fatalf("rescan error: %v", err)
	}
	if back.Raw["ssid"] != "cafe" {
		t.Fatalf("round trip lost data: %+v", back)
	}
}

func TestQRCode_IsExpired(t *testing.T) {
	code := QRCode{}
	if code.IsExpired(time.Now()) {
		t.Fatal("no expiry means unlimited lifetime")
	}

	past := time.Now().Add(-time.Second)
	code.ExpiresAt = &past
	if !code.IsExpired(time.Now()) {
		t.Fatal("past expiry must report expired")
	}
}

func TestIsValidType(t *testing.T) {
	for _, typ := range []string{TypeURL, TypeWiFi, TypeMenu, TypeBitcoin} {
		if !IsValidType(typ) {
			t.Errorf("%q should be valid", typ)
		}
	}
	if IsValidType("hologram") {
		t.Error("unknown type accepted")
	}
}
