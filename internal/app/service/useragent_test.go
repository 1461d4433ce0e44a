package service

import (
	"testing"

	"github.com/qrjet/qrjet/internal/app/model"
)

func TestParseUserAgent(t *testing.T) {
	tests := []struct {
		name       string
		ua         string
		os         string
		browser    string
		deviceType string
	}{
		{
			name:       "windows chrome",
			ua:         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			os:         "Windows",
			browser:    "Chrome",
			deviceType: model.DeviceDesktop,
		},
		{
			name:       "iphone safari",
			ua:         "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
			os:         "iOS",
			browser:    "Safari",
			deviceType: model.DeviceMobile,
		},
		{
			name:       "ipad",
			ua:         "Mozilla/5.0 (iPad; CPU OS 16_6 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.6 Mobile/15E148 Safari/604.1",
			os:         "iOS",
			browser:    "Safari",
			deviceType: model.DeviceTablet,
		},
		{
			name:       "android phone",
			ua:         "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36",
			os:         "AndroidOS",
			browser:    "Chrome",
			deviceType: model.DeviceMobile,
		},
		{
			name:       "android tablet omits mobile token",
			ua:         "Mozilla/5.0 (Linux; Android 13; SM-X700) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
			os:         "AndroidOS",
			browser:    "Chrome",
			deviceType: model.DeviceTablet,
		},
		{
			name:       "mac firefox",
			ua:         "Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:121.0) Gecko/20100101 Firefox/121.0",
			os:         "OS X",
			browser:    "Firefox",
			deviceType: model.DeviceDesktop,
		},
		{
			name:       "edge advertises chrome",
			ua:         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.2210.91",
			os:         "Windows",
			browser:    "Edge",
			deviceType: model.DeviceDesktop,
		},
		{
			name:       "chromebook",
			ua:         "Mozilla/5.0 (X11; CrOS x86_64 14541.0.0) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			os:         "Chrome OS",
			browser:    "Chrome",
			deviceType: model.DeviceDesktop,
		},
		{
			name:       "old ie token",
			ua:         "Mozilla/5.0 (compatible; MSIE 10.0; Windows NT 6.1; Trident/6.0)",
			os:         "Windows",
			browser:    "IE",
			deviceType: model.DeviceDesktop,
		},
		{
			name:       "empty string",
			ua:         "",
			os:         "Unknown",
			browser:    "Unknown",
			deviceType: model.DeviceDesktop,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseUserAgent(tt.ua)
			if got.OS != tt.os {
				t.Errorf("os = %q, want %q", got.OS, tt.os)
			}
			if got.Browser != tt.browser {
				t.Errorf("browser = %q, want %q", got.Browser, tt.browser)
			}
			if got.DeviceType != tt.deviceType {
				t.Errorf("deviceType = %q, want %q", got.DeviceType, tt.deviceType)
			}
		})
	}
}

func TestParseUserAgent_Deterministic(t *testing.T) {
	ua := "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15"
	first := ParseUserAgent(ua)
	for i := 0; i < 10; i++ {
		if got := ParseUserAgent(ua); got != first {
			t.Fatalf("parse is not deterministic: %+v vs %+v", got, first)
		}
	}
}
