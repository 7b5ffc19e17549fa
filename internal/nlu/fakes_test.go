package nlu

import (
	"context"
	"math/rand/v2"
	"time"

	"hadassah/internal/capability"
)

type openCall struct{ id, fallback string }

// recordingCaps counts capability calls and returns canned results.
type recordingCaps struct {
	native      bool
	openOK      bool
	flashOK     bool
	volumeOK    bool
	writeOK     bool
	files       []string
	info        *capability.DeviceInfo
	opens       []openCall
	flashes     []bool
	volumes     []float64
	writes      map[string]string
	pulses      []capability.Intensity
	permissions int
}

func newCaps(native bool) *recordingCaps {
	return &recordingCaps{
		native:   native,
		openOK:   true,
		volumeOK: true,
		writeOK:  true,
		writes:   map[string]string{},
	}
}

func (c *recordingCaps) IsNative() bool { return c.native }

func (c *recordingCaps) OpenApp(_ context.Context, id, fallback string) bool {
	c.opens = append(c.opens, openCall{id, fallback})
	return c.openOK
}

func (c *recordingCaps) ToggleFlashlight(_ context.Context, on bool) bool {
	c.flashes = append(c.flashes, on)
	return c.flashOK
}

func (c *recordingCaps) SetVolume(_ context.Context, level float64) bool {
	c.volumes = append(c.volumes, level)
	return c.volumeOK
}

func (c *recordingCaps) WriteFile(_ context.Context, name, content string) bool {
	c.writes[name] = content
	return c.writeOK
}

func (c *recordingCaps) ReadFile(context.Context, string) (string, bool) { return "", false }

func (c *recordingCaps) ListFiles(context.Context) []string { return c.files }

func (c *recordingCaps) DeviceInfo(context.Context) *capability.DeviceInfo { return c.info }

func (c *recordingCaps) HapticPulse(_ context.Context, i capability.Intensity) {
	c.pulses = append(c.pulses, i)
}

func (c *recordingCaps) RequestPermissions(context.Context) { c.permissions++ }

var fixedNow = time.Date(2024, 3, 9, 14, 5, 9, 0, time.UTC)

func testOpts(seed uint64) []Option {
	return []Option{
		WithRand(rand.New(rand.NewPCG(seed, seed))),
		WithClock(func() time.Time { return fixedNow }),
	}
}
