package capability

import (
	"context"
	log "log/slog"
	"strings"
	"time"

	"hadassah/internal/storage"
)

const filePrefix = "file_"

type URLOpener interface {
	OpenURL(ctx context.Context, url string) error
}

type Vibrator interface {
	Vibrate(ctx context.Context, d time.Duration) error
}

type WebHost struct {
	Store     storage.Store
	Opener    URLOpener
	Vibrator  Vibrator // optional
	UserAgent string
}

// Web emulates device actions inside a browsing context.
type Web struct {
	store     storage.Store
	opener    URLOpener
	vibrator  Vibrator
	userAgent string
}

func NewWeb(h WebHost) *Web {
	ua := h.UserAgent
	if ua == "" {
		ua = "hadassah"
	}
	return &Web{
		store:     h.Store,
		opener:    h.Opener,
		vibrator:  h.Vibrator,
		userAgent: ua,
	}
}

func (w *Web) IsNative() bool { return false }

func (w *Web) OpenApp(ctx context.Context, id, fallbackURL string) bool {
	if fallbackURL == "" || w.opener == nil {
		log.Debug("No web fallback for app", "app", id)
		return false
	}
	if err := w.opener.OpenURL(ctx, fallbackURL); err != nil {
		log.Error("Web open error", "url", fallbackURL, "err", err)
		return false
	}
	return true
}

func (w *Web) ToggleFlashlight(context.Context, bool) bool {
	log.Warn("Flashlight control only available in native app")
	return false
}

func (w *Web) SetVolume(context.Context, float64) bool {
	log.Warn("Volume control only available in native app")
	return false
}

func (w *Web) WriteFile(ctx context.Context, name, content string) bool {
	if err := w.store.Set(ctx, filePrefix+name, content); err != nil {
		log.Error("Web file write error", "file", name, "err", err)
		return false
	}
	return true
}

func (w *Web) ReadFile(ctx context.Context, name string) (string, bool) {
	v, err := w.store.Get(ctx, filePrefix+name)
	if err != nil {
		log.Debug("Web file read error", "file", name, "err", err)
		return "", false
	}
	return v, true
}

func (w *Web) ListFiles(ctx context.Context) []string {
	keys, err := w.store.Keys(ctx, filePrefix)
	if err != nil {
		log.Error("Web file list error", "err", err)
		return nil
	}
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		names = append(names, strings.TrimPrefix(k, filePrefix))
	}
	return names
}

func (w *Web) DeviceInfo(context.Context) *DeviceInfo {
	return &DeviceInfo{
		Platform:        "web",
		Model:           w.userAgent,
		OperatingSystem: "web",
		OSVersion:       "unknown",
		Manufacturer:    "unknown",
		IsVirtual:       false,
		WebViewVersion:  "N/A",
	}
}

func (w *Web) HapticPulse(ctx context.Context, i Intensity) {
	if w.vibrator == nil {
		return
	}
	if err := w.vibrator.Vibrate(ctx, PulseDuration(i)); err != nil {
		log.Debug("Vibrate failed", "err", err)
	}
}

func (w *Web) RequestPermissions(context.Context) {}

var _ Capabilities = (*Web)(nil)
