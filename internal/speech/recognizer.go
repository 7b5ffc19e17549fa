// Package speech turns microphone input and uploaded recordings into text.
package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
	log "log/slog"
	"strings"
	"sync"
	"time"

	"hadassah/pkg/audioconv"
)

var ErrAlreadyListening = errors.New("already listening")

// Source records 16 kHz mono PCM until stop is closed, ctx ends or the
// source decides the utterance is over.
type Source interface {
	Record(ctx context.Context, stop <-chan struct{}, maxDur time.Duration) ([]float32, error)
}

type Transcriber interface {
	TranscribePCM(ctx context.Context, pcm []float32) (string, error)
}

type Recognizer struct {
	src    Source
	tr     Transcriber
	maxDur time.Duration

	mu   sync.Mutex
	stop chan struct{}
}

func NewRecognizer(src Source, tr Transcriber, maxDur time.Duration) *Recognizer {
	return &Recognizer{src: src, tr: tr, maxDur: maxDur}
}

// Listen records one utterance and returns its transcript.
func (r *Recognizer) Listen(ctx context.Context) (string, error) {
	r.mu.Lock()
	if r.stop != nil {
		r.mu.Unlock()
		return "", ErrAlreadyListening
	}
	stop := make(chan struct{})
	r.stop = stop
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		if r.stop == stop {
			r.stop = nil
		}
		r.mu.Unlock()
	}()

	log.Debug("Listening")
	pcm, err := r.src.Record(ctx, stop, r.maxDur)
	if err != nil {
		return "", fmt.Errorf("record: %w", err)
	}
	log.Debug("Recorded", "samples", len(pcm))

	return r.transcribe(ctx, pcm)
}

// Stop ends the current recording early. Calling it when idle is a no-op.
func (r *Recognizer) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stop != nil {
		close(r.stop)
		r.stop = nil
	}
}

func (r *Recognizer) Listening() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stop != nil
}

// TranscribeAudio decodes an uploaded recording and transcribes it.
func (r *Recognizer) TranscribeAudio(ctx context.Context, audio io.ReadSeeker, hint string) (string, error) {
	pcm, err := audioconv.Decode(audio, hint, audioconv.Options{
		MaxSamples: int(r.maxDur.Seconds()) * audioconv.TargetRate,
	})
	if err != nil {
		return "", err
	}
	return r.transcribe(ctx, pcm)
}

func (r *Recognizer) transcribe(ctx context.Context, pcm []float32) (string, error) {
	if r.tr == nil {
		return "", errors.New("no transcriber configured")
	}
	text, err := r.tr.TranscribePCM(ctx, pcm)
	if err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}
	text = strings.TrimSpace(text)
	log.Info("Transcribed", "text", text)
	return text, nil
}
