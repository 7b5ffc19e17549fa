package capability

import (
	"context"
	log "log/slog"
)

type Launcher interface {
	Launch(ctx context.Context, target string) error
}

type Filesystem interface {
	WriteFile(ctx context.Context, name, content string) error
	ReadFile(ctx context.Context, name string) (string, error)
	ReadDir(ctx context.Context) ([]string, error)
	RequestPermissions(ctx context.Context) error
}

type DeviceProber interface {
	Probe(ctx context.Context) (DeviceInfo, error)
}

type Haptics interface {
	Impact(ctx context.Context, i Intensity) error
}

type Mixer interface {
	SetVolume(ctx context.Context, level float64) error
}

type NativeHost struct {
	Launcher Launcher
	Files    Filesystem
	Device   DeviceProber
	Haptics  Haptics
	Mixer    Mixer // optional
}

// Native delegates to host bridges.
type Native struct {
	launcher Launcher
	files    Filesystem
	device   DeviceProber
	haptics  Haptics
	mixer    Mixer
}

func NewNative(h NativeHost) *Native {
	return &Native{
		launcher: h.Launcher,
		files:    h.Files,
		device:   h.Device,
		haptics:  h.Haptics,
		mixer:    h.Mixer,
	}
}

func (n *Native) IsNative() bool { return true }

func (n *Native) OpenApp(ctx context.Context, id, fallbackURL string) bool {
	err := n.launcher.Launch(ctx, id)
	if err == nil {
		return true
	}
	log.Error("App opening error", "app", id, "err", err)

	if fallbackURL == "" {
		return false
	}
	if err := n.launcher.Launch(ctx, fallbackURL); err != nil {
		log.Error("Fallback opening error", "url", fallbackURL, "err", err)
		return false
	}
	return true
}

// ToggleFlashlight has no host bridge yet.
func (n *Native) ToggleFlashlight(_ context.Context, on bool) bool {
	log.Debug("Flashlight bridge unavailable", "on", on)
	return false
}

func (n *Native) SetVolume(ctx context.Context, level float64) bool {
	level = clampLevel(level)
	if n.mixer == nil {
		log.Info("Setting volume", "level", level)
		return true
	}
	if err := n.mixer.SetVolume(ctx, level); err != nil {
		log.Error("Volume control error", "level", level, "err", err)
		return false
	}
	return true
}

func (n *Native) WriteFile(ctx context.Context, name, content string) bool {
	if err := n.files.WriteFile(ctx, name, content); err != nil {
		log.Error("Native file write error", "file", name, "err", err)
		return false
	}
	return true
}

func (n *Native) ReadFile(ctx context.Context, name string) (string, bool) {
	data, err := n.files.ReadFile(ctx, name)
	if err != nil {
		log.Error("Native file read error", "file", name, "err", err)
		return "", false
	}
	return data, true
}

func (n *Native) ListFiles(ctx context.Context) []string {
	names, err := n.files.ReadDir(ctx)
	if err != nil {
		log.Error("Native file list error", "err", err)
		return nil
	}
	return names
}

func (n *Native) DeviceInfo(ctx context.Context) *DeviceInfo {
	info, err := n.device.Probe(ctx)
	if err != nil {
		log.Error("Device info error", "err", err)
		return nil
	}
	return &info
}

func (n *Native) HapticPulse(ctx context.Context, i Intensity) {
	if err := n.haptics.Impact(ctx, i); err != nil {
		log.Error("Haptic feedback error", "intensity", i, "err", err)
	}
}

func (n *Native) RequestPermissions(ctx context.Context) {
	if err := n.files.RequestPermissions(ctx); err != nil {
		log.Error("Permission request error", "err", err)
	}
}

var _ Capabilities = (*Native)(nil)
