package notify

import (
	"context"

	"hadassah/internal/capability"
)

// Haptics stands in for a vibration motor with a short low tone of the
// pulse length.
type Haptics struct {
	Freq float64
}

func (h Haptics) Impact(ctx context.Context, i capability.Intensity) error {
	freq := h.Freq
	if freq == 0 {
		freq = 180
	}
	return Tone(ctx, freq, capability.PulseDuration(i))
}

var _ capability.Haptics = Haptics{}
