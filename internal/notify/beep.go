// Package notify plays short audible cues: the listening chime and the
// tone used in place of haptic feedback on desktop hosts.
package notify

import (
	"context"
	"fmt"
	"math"
	"os"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
)

const sampleRate = beep.SampleRate(44100)

var (
	speakerOnce sync.Once
	speakerErr  error
)

func initSpeaker() error {
	speakerOnce.Do(func() {
		speakerErr = speaker.Init(sampleRate, sampleRate.N(time.Second/10))
	})
	return speakerErr
}

// Tone plays a sine tone of the given frequency for d and waits for it to
// finish.
func Tone(ctx context.Context, freq float64, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	if err := initSpeaker(); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	return play(ctx, beep.Take(sampleRate.N(d), sine(freq)))
}

// Cue plays an mp3 file, resampled to the speaker rate.
func Cue(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open cue: %w", err)
	}

	streamer, format, err := mp3.Decode(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("decode cue: %w", err)
	}
	defer streamer.Close()

	if err := initSpeaker(); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}

	var s beep.Streamer = streamer
	if format.SampleRate != sampleRate {
		s = beep.Resample(4, format.SampleRate, sampleRate, streamer)
	}
	return play(ctx, s)
}

func play(ctx context.Context, s beep.Streamer) error {
	done := make(chan struct{})
	speaker.Play(beep.Seq(s, beep.Callback(func() {
		close(done)
	})))

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		speaker.Clear()
		return ctx.Err()
	}
}

func sine(freq float64) beep.Streamer {
	var pos int
	step := 2 * math.Pi * freq / float64(sampleRate)

	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			v := 0.4 * math.Sin(step*float64(pos))
			samples[i][0] = v
			samples[i][1] = v
			pos++
		}
		return len(samples), true
	})
}
