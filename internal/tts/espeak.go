// Package tts speaks replies through espeak-ng.
package tts

/*
#cgo LDFLAGS: -lespeak-ng
#include <stdlib.h>
#include <string.h>
#include <espeak-ng/speak_lib.h>

static int
tts_init(void)
{
	return espeak_Initialize(AUDIO_OUTPUT_PLAYBACK, 500, NULL, 0);
}

static int
tts_voice(const char *lang)
{
	espeak_VOICE specs;
	memset(&specs, 0, sizeof(specs));
	specs.languages = lang;
	return espeak_SetVoiceByProperties(&specs);
}

static int
tts_say(const char *text, int rate, int pitch)
{
	if (!text)
	{ return -1; }

	espeak_SetParameter(espeakRATE, rate, 0);
	espeak_SetParameter(espeakPITCH, pitch, 0);
	return espeak_Synth(text, strlen(text) + 1, 0, POS_CHARACTER, 0,
		espeakCHARS_AUTO, NULL, NULL);
}
*/
import "C"

import (
	"fmt"
	log "log/slog"
	"math"
	"sync"
	"unsafe"
)

const (
	defaultRate  = 175 // words per minute at speed 1
	defaultPitch = 50  // espeak pitch at pitch 1
)

// Voice mirrors the preference knobs: Pitch and Rate are multipliers
// around 1.
type Voice struct {
	Language string
	Pitch    float64
	Rate     float64
}

// Synth is non-blocking: Speak queues the text and returns.
type Synth struct {
	mu       sync.Mutex
	ready    bool
	language string
}

func New() *Synth {
	return &Synth{}
}

func (s *Synth) init() error {
	if s.ready {
		return nil
	}
	if rc := C.tts_init(); rc < 0 {
		return fmt.Errorf("espeak_Initialize failed: %d", int(rc))
	}
	s.ready = true
	return nil
}

func (s *Synth) Speak(text string, v Voice) error {
	if text == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.init(); err != nil {
		return err
	}

	lang := v.Language
	if lang == "" {
		lang = "en"
	}
	if lang != s.language {
		clang := C.CString(lang)
		rc := C.tts_voice(clang)
		C.free(unsafe.Pointer(clang))
		if rc != 0 {
			return fmt.Errorf("espeak voice %q: %d", lang, int(rc))
		}
		s.language = lang
	}

	// a new reply replaces whatever is still playing
	C.espeak_Cancel()

	ctext := C.CString(text)
	defer C.free(unsafe.Pointer(ctext))

	rc := C.tts_say(ctext, C.int(scale(v.Rate, defaultRate, 80, 450)), C.int(scale(v.Pitch, defaultPitch, 0, 100)))
	if rc != 0 {
		return fmt.Errorf("espeak_Synth failed: %d", int(rc))
	}

	log.Debug("Speaking", "chars", len(text), "lang", lang)
	return nil
}

// Stop cuts speech off. Safe to call when nothing is playing.
func (s *Synth) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		return nil
	}
	if rc := C.espeak_Cancel(); rc != 0 {
		return fmt.Errorf("espeak_Cancel failed: %d", int(rc))
	}
	return nil
}

func (s *Synth) Speaking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready && C.espeak_IsPlaying() != 0
}

func (s *Synth) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		return nil
	}
	s.ready = false
	s.language = ""
	if rc := C.espeak_Terminate(); rc != 0 {
		return fmt.Errorf("espeak_Terminate failed: %d", int(rc))
	}
	return nil
}

func scale(mult, base, lo, hi float64) int {
	if mult <= 0 {
		mult = 1
	}
	return int(math.Round(math.Max(lo, math.Min(hi, mult*base))))
}
