package service

import (
	"strings"

	"github.com/qrjet/qrjet/internal/app/model"
)

// ClientInfo is the result of parsing a User-Agent header.
type ClientInfo struct {
	OS         string
	Browser    string
	DeviceType string
}

// ParseUserAgent maps a raw User-Agent header to OS, browser and device
// type. Matching order matters: Edge advertises Chrome, Chrome advertises
// Safari, and Android tablets omit the "Mobile" token.
func ParseUserAgent(ua string) ClientInfo {
	info := ClientInfo{
		OS:         "Unknown",
		Browser:    "Unknown",
		DeviceType: model.DeviceDesktop,
	}

	switch {
	case strings.Contains(ua, "Windows"):
		info.OS = "Windows"
	case strings.Contains(ua, "Macintosh"):
		info.OS = "OS X"
	case strings.Contains(ua, "iPhone"), strings.Contains(ua, "iPad"), strings.Contains(ua, "iPod"):
		// Checked before the bare "Mac OS X" token, which iOS agents carry.
		info.OS = "iOS"
		info.DeviceType = model.DeviceMobile
	case strings.Contains(ua, "Mac OS X"):
		info.OS = "OS X"
	case strings.Contains(ua, "Android"):
		info.OS = "AndroidOS"
		info.DeviceType = model.DeviceMobile
	case strings.Contains(ua, "CrOS"):
		info.OS = "Chrome OS"
	case strings.Contains(ua, "Linux"):
		info.OS = "Linux"
	}

	if strings.Contains(ua, "iPad") {
		info.DeviceType = model.DeviceTablet
	} else if strings.Contains(ua, "Android") && !strings.Contains(ua, "Mobile") {
		info.DeviceType = model.DeviceTablet
	}

	switch {
	case strings.Contains(ua, "Edg"):
		info.Browser = "Edge"
	case strings.Contains(ua, "Chrome"):
		info.Browser = "Chrome"
	case strings.Contains(ua, "Safari"):
		info.Browser = "Safari"
	case strings.Contains(ua, "Firefox"):
		info.Browser = "Firefox"
	case strings.Contains(ua, "Opera"), strings.Contains(ua, "OPR"):
		info.Browser = "Opera"
	case strings.Contains(ua, "MSIE"), strings.Contains(ua, "Trident"):
		info.Browser = "IE"
	}

	return info
}
