// Package capability is the boundary between the assistant and the host
// device. Every operation reports failure through its return value
// (false, "", nil or an empty list); bridge errors are logged and never
// returned to the caller.
package capability

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type Platform string

const (
	PlatformWeb    Platform = "web"
	PlatformNative Platform = "native"
)

func ParsePlatform(s string) (Platform, error) {
	switch Platform(strings.ToLower(strings.TrimSpace(s))) {
	case PlatformWeb:
		return PlatformWeb, nil
	case PlatformNative:
		return PlatformNative, nil
	}
	return "", fmt.Errorf("unknown platform %q", s)
}

type Intensity string

const (
	Light  Intensity = "light"
	Medium Intensity = "medium"
	Heavy  Intensity = "heavy"
)

// PulseDuration is the vibration length used for a haptic intensity.
func PulseDuration(i Intensity) time.Duration {
	switch i {
	case Light:
		return 50 * time.Millisecond
	case Heavy:
		return 200 * time.Millisecond
	default:
		return 100 * time.Millisecond
	}
}

type DeviceInfo struct {
	Platform        string `json:"platform"`
	Model           string `json:"model"`
	OperatingSystem string `json:"operatingSystem"`
	OSVersion       string `json:"osVersion"`
	Manufacturer    string `json:"manufacturer"`
	IsVirtual       bool   `json:"isVirtual"`
	WebViewVersion  string `json:"webViewVersion"`
}

type Capabilities interface {
	IsNative() bool
	// OpenApp opens id, or fallbackURL when id cannot be opened. An empty
	// fallbackURL means there is none.
	OpenApp(ctx context.Context, id, fallbackURL string) bool
	ToggleFlashlight(ctx context.Context, on bool) bool
	// SetVolume takes a level in [0, 1].
	SetVolume(ctx context.Context, level float64) bool
	WriteFile(ctx context.Context, name, content string) bool
	ReadFile(ctx context.Context, name string) (string, bool)
	ListFiles(ctx context.Context) []string
	DeviceInfo(ctx context.Context) *DeviceInfo
	HapticPulse(ctx context.Context, i Intensity)
	RequestPermissions(ctx context.Context)
}

// Hosts carries the bridges for both backends; New uses the ones its
// platform needs.
type Hosts struct {
	Web    WebHost
	Native NativeHost
}

// New selects the backend for platform once.
func New(platform Platform, h Hosts) Capabilities {
	if platform == PlatformNative {
		return NewNative(h.Native)
	}
	return NewWeb(h.Web)
}

func clampLevel(level float64) float64 {
	if level < 0 {
		return 0
	}
	if level > 1 {
		return 1
	}
	return level
}
