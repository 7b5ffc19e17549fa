// Package audio owns the microphone and the host mixer.
package audio

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/gordonklaus/portaudio"
)

const (
	SampleRate = 16000
	frameSize  = 320 // 20ms

	silenceRMS      = 0.015
	trailingSilence = 600 * time.Millisecond
)

var ErrNoAudio = errors.New("no audio recorded")

type Recorder struct{}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Init() error {
	return portaudio.Initialize()
}

func (r *Recorder) Close() {
	portaudio.Terminate()
}

// Record captures mono 16 kHz audio. It ends after trailing silence once
// speech started, when stop is closed, when ctx ends, or at maxDur.
func (r *Recorder) Record(ctx context.Context, stop <-chan struct{}, maxDur time.Duration) ([]float32, error) {
	if maxDur <= 0 {
		maxDur = 15 * time.Second
	}

	buf := make([]float32, frameSize)
	out := make([]float32, 0, SampleRate*3)

	stream, err := portaudio.OpenDefaultStream(1, 0, SampleRate, len(buf), buf)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return nil, err
	}
	defer stream.Stop()

	var (
		speaking bool
		silent   time.Duration
	)

	frameDur := time.Second * frameSize / SampleRate
	maxFrames := int(maxDur / frameDur)

loop:
	for i := 0; i < maxFrames; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-stop:
			break loop
		default:
		}

		if err := stream.Read(); err != nil {
			return nil, err
		}

		if frameRMS(buf) > silenceRMS {
			speaking = true
			silent = 0
			out = append(out, buf...)
			continue
		}
		if speaking {
			silent += frameDur
			out = append(out, buf...)
			if silent >= trailingSilence {
				break
			}
		}
	}

	if len(out) == 0 {
		return nil, ErrNoAudio
	}
	return out, nil
}

func frameRMS(f []float32) float64 {
	var s float64
	for _, x := range f {
		s += float64(x * x)
	}
	return math.Sqrt(s / float64(len(f)))
}
