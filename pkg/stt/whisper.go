// Package stt turns 16 kHz mono PCM into text, either locally with
// whisper.cpp or remotely through the OpenAI transcription API.
package stt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
)

type Options struct {
	Language      string // "auto", "en", "ru", ...
	TranslateToEn bool
	Threads       int // <=0 => NumCPU()
	InitialPrompt string
	BeamSize      int // 0 = greedy
}

// Local runs a whisper.cpp model in process.
type Local struct {
	model whisper.Model
	opt   Options
}

func NewLocal(modelPath string, opt Options) (*Local, error) {
	if modelPath == "" {
		return nil, errors.New("empty model path")
	}
	m, err := whisper.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	return &Local{model: m, opt: opt}, nil
}

func (l *Local) Close() error {
	if l.model == nil {
		return nil
	}
	return l.model.Close()
}

// TranscribePCM expects mono samples at 16 kHz in [-1, 1].
func (l *Local) TranscribePCM(ctx context.Context, pcm []float32) (string, error) {
	if l.model == nil {
		return "", errors.New("nil model")
	}
	if len(pcm) == 0 {
		return "", errors.New("no audio samples provided")
	}

	wctx, err := l.model.NewContext()
	if err != nil {
		return "", fmt.Errorf("new context: %w", err)
	}

	lang := l.opt.Language
	if lang == "" {
		lang = "auto"
	}
	if err := wctx.SetLanguage(lang); err != nil {
		return "", fmt.Errorf("set language: %w", err)
	}
	wctx.SetTranslate(l.opt.TranslateToEn)

	threads := l.opt.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	wctx.SetThreads(uint(threads))

	if l.opt.BeamSize > 0 {
		wctx.SetBeamSize(l.opt.BeamSize)
	}
	if l.opt.InitialPrompt != "" {
		wctx.SetInitialPrompt(l.opt.InitialPrompt)
	}

	if err := wctx.Process(pcm, nil, nil, nil); err != nil {
		return "", fmt.Errorf("process: %w", err)
	}

	var parts []string
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		seg, err := wctx.NextSegment()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("next segment: %w", err)
		}
		if s := strings.TrimSpace(seg.Text); s != "" {
			parts = append(parts, s)
		}
	}

	return strings.Join(parts, " "), nil
}
