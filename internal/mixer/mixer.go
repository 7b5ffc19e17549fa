// Package mixer drives the host volume through pactl.
package mixer

import (
	"context"
	"fmt"
	"math"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

// maxPercent is the pactl ceiling we allow (pactl permits boost above 100).
const maxPercent = 150

var percentRe = regexp.MustCompile(`(\d+)\s*%`)

// Pactl runs pactl; tests swap it out.
type Pactl func(ctx context.Context, args ...string) ([]byte, error)

func runPactl(ctx context.Context, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, "pactl", args...).Output()
}

// Mixer sets the default sink volume through PulseAudio/PipeWire.
type Mixer struct {
	pactl Pactl
}

func NewMixer() *Mixer {
	return &Mixer{pactl: runPactl}
}

// SetVolume takes a level in [0, 1].
func (m *Mixer) SetVolume(ctx context.Context, level float64) error {
	pct := int(math.Round(math.Max(0, math.Min(1, level)) * 100))
	if _, err := m.pactl(ctx, "set-sink-volume", "@DEFAULT_SINK@", fmt.Sprintf("%d%%", pct)); err != nil {
		return fmt.Errorf("pactl set-sink-volume: %w", err)
	}
	return nil
}

type streamInfo struct {
	ID      int
	Volume  int
	AppName string
}

type fade struct {
	id       int
	from, to int
}

// Ducker lowers every other application's streams while the assistant
// talks and restores them afterwards. Streams named in self are left alone.
type Ducker struct {
	pactl Pactl

	mu       sync.Mutex
	active   bool
	self     []string
	original map[int]int
	floor    int
}

func NewDucker(self []string, floor int) *Ducker {
	return &Ducker{
		pactl:    runPactl,
		self:     append([]string(nil), self...),
		original: make(map[int]int),
		floor:    clampPercent(floor),
	}
}

// Duck fades other streams to factor of their volume, never below floor.
func (d *Ducker) Duck(ctx context.Context, factor float64, dur time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.active {
		return nil
	}

	streams, err := d.streams(ctx)
	if err != nil {
		return err
	}

	d.original = make(map[int]int)
	var fades []fade
	for _, s := range streams {
		to := int(math.Round(float64(s.Volume) * factor))
		if to < d.floor {
			to = d.floor
		}
		d.original[s.ID] = s.Volume
		fades = append(fades, fade{id: s.ID, from: s.Volume, to: clampPercent(to)})
	}

	if err := d.fade(ctx, fades, dur); err != nil {
		return err
	}
	d.active = true
	return nil
}

// Restore fades ducked streams back. Streams that appeared after Duck are
// not touched.
func (d *Ducker) Restore(ctx context.Context, dur time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.active {
		return nil
	}

	streams, err := d.streams(ctx)
	if err != nil {
		return err
	}

	var fades []fade
	for _, s := range streams {
		if orig, ok := d.original[s.ID]; ok {
			fades = append(fades, fade{id: s.ID, from: s.Volume, to: orig})
		}
	}

	if err := d.fade(ctx, fades, dur); err != nil {
		return err
	}
	d.original = make(map[int]int)
	d.active = false
	return nil
}

func (d *Ducker) streams(ctx context.Context) ([]streamInfo, error) {
	out, err := d.pactl(ctx, "list", "sink-inputs")
	if err != nil {
		return nil, fmt.Errorf("pactl list sink-inputs: %w", err)
	}

	var res []streamInfo
	for _, s := range parseSinkInputs(string(out)) {
		if !d.isSelf(s) {
			res = append(res, s)
		}
	}
	return res, nil
}

func (d *Ducker) isSelf(s streamInfo) bool {
	for _, name := range d.self {
		if s.AppName == name {
			return true
		}
	}
	return false
}

func (d *Ducker) fade(ctx context.Context, fades []fade, dur time.Duration) error {
	if len(fades) == 0 {
		return nil
	}

	const minStep = 10 * time.Millisecond
	steps := int(dur / minStep)
	if steps < 1 {
		steps = 1
	}
	pause := dur / time.Duration(steps)

	for i := 1; i <= steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		frac := float64(i) / float64(steps)
		for _, f := range fades {
			v := int(math.Round(float64(f.from) + float64(f.to-f.from)*frac))
			if _, err := d.pactl(ctx, "set-sink-input-volume", strconv.Itoa(f.id), fmt.Sprintf("%d%%", clampPercent(v))); err != nil {
				return fmt.Errorf("set volume id=%d: %w", f.id, err)
			}
		}

		if i < steps && pause > 0 {
			time.Sleep(pause)
		}
	}
	return nil
}

// parseSinkInputs reads `pactl list sink-inputs` output.
func parseSinkInputs(text string) []streamInfo {
	parts := strings.Split(text, "Sink Input #")
	var res []streamInfo

	for _, block := range parts[1:] {
		nl := strings.IndexByte(block, '\n')
		if nl <= 0 {
			continue
		}
		id, err := strconv.Atoi(strings.TrimSpace(block[:nl]))
		if err != nil {
			continue
		}

		s := streamInfo{ID: id}
		for _, line := range strings.Split(block[nl+1:], "\n") {
			line = strings.TrimSpace(line)

			if strings.HasPrefix(line, "Volume:") && s.Volume == 0 {
				if m := percentRe.FindStringSubmatch(line); m != nil {
					s.Volume, _ = strconv.Atoi(m[1])
				}
			}
			if strings.HasPrefix(line, "application.name =") && s.AppName == "" {
				s.AppName = strings.Trim(strings.TrimSpace(strings.TrimPrefix(line, "application.name =")), `"`)
			}
		}

		if s.Volume == 0 && s.AppName == "" {
			continue
		}
		res = append(res, s)
	}
	return res
}

func clampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > maxPercent {
		return maxPercent
	}
	return p
}
