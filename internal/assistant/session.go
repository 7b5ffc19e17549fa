// Package assistant runs one conversation: it feeds utterances to the
// interpreter, remembers and speaks the replies, and drives the microphone.
package assistant

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	log "log/slog"
	"strings"
	"sync"

	"hadassah/internal/nlu"
	"hadassah/internal/prefs"
)

// Apology replaces the reply when interpreting or speaking fails.
const Apology = "Sorry, I encountered an error. Please try again."

var (
	ErrEmptyInput = errors.New("empty input")
	ErrBusy       = errors.New("a command is already being processed")
	ErrNoSpeech   = errors.New("speech recognition is not configured")
)

// Voice carries the preference knobs; 1 is the engine's normal pitch/rate.
type Voice struct {
	Pitch float64
	Rate  float64
}

type Speaker interface {
	Speak(text string, v Voice) error
	Stop() error
	Speaking() bool
}

type Listener interface {
	Listen(ctx context.Context) (string, error)
	Stop()
	TranscribeAudio(ctx context.Context, audio io.ReadSeeker, hint string) (string, error)
}

type Option func(*Session)

func WithSpeaker(sp Speaker) Option {
	return func(s *Session) { s.speaker = sp }
}

func WithListener(l Listener) Option {
	return func(s *Session) { s.listener = l }
}

// WithListenCue runs cue before the microphone opens.
func WithListenCue(cue func(ctx context.Context) error) Option {
	return func(s *Session) { s.cue = cue }
}

// WithName sets the shard name used on the bus.
func WithName(name string) Option {
	return func(s *Session) { s.name = name }
}

type Session struct {
	interp   nlu.Interpreter
	prefs    *prefs.Store
	speaker  Speaker
	listener Listener
	cue      func(ctx context.Context) error
	name     string

	busy sync.Mutex

	mu        sync.Mutex
	lastReply string
}

func New(interp nlu.Interpreter, store *prefs.Store, opts ...Option) *Session {
	s := &Session{interp: interp, prefs: store, name: "hadassah"}
	for _, fn := range opts {
		fn(s)
	}
	return s
}

func (s *Session) Commands() []nlu.Command {
	return s.interp.Commands()
}

// Submit interprets text and returns the reply. Only one submission runs
// at a time; a concurrent one fails with ErrBusy.
func (s *Session) Submit(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyInput
	}
	if !s.busy.TryLock() {
		return "", ErrBusy
	}
	defer s.busy.Unlock()

	res, err := s.interpret(ctx, text)
	if err != nil {
		log.Error("Interpreting failed", "input", text, "err", err)
		return Apology, nil
	}
	log.Info("Reply", "input", text, "reply", res.Reply, "effects", len(res.SideEffects))

	p := s.preferences(ctx)
	if p.RememberConversations {
		if _, err := s.prefs.AddConversation(ctx, text, res.Reply); err != nil {
			log.Warn("Failed to remember conversation", "err", err)
		}
	}

	s.mu.Lock()
	s.lastReply = res.Reply
	s.mu.Unlock()

	if p.VoiceEnabled {
		if err := s.speak(res.Reply, p); err != nil {
			log.Error("Failed to speak", "err", err)
			return Apology, nil
		}
	}
	return res.Reply, nil
}

func (s *Session) interpret(ctx context.Context, text string) (res nlu.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("interpreter panic: %v", r)
		}
	}()
	return s.interp.Interpret(ctx, text), nil
}

func (s *Session) preferences(ctx context.Context) prefs.Preferences {
	p, err := s.prefs.Preferences(ctx)
	if err != nil {
		log.Warn("Using default preferences", "err", err)
		return prefs.Defaults()
	}
	return p
}

func (s *Session) speak(text string, p prefs.Preferences) error {
	if s.speaker == nil {
		return nil
	}
	return s.speaker.Speak(text, Voice{Pitch: p.VoicePitch, Rate: p.VoiceSpeed})
}

// Repeat speaks the last reply again and returns it. It is empty before
// the first reply.
func (s *Session) Repeat(ctx context.Context) (string, error) {
	s.mu.Lock()
	last := s.lastReply
	s.mu.Unlock()

	if last == "" {
		return "", nil
	}
	return last, s.speak(last, s.preferences(ctx))
}

func (s *Session) StopSpeaking() {
	if s.speaker == nil {
		return
	}
	if err := s.speaker.Stop(); err != nil {
		log.Warn("Failed to stop speech", "err", err)
	}
}

func (s *Session) StopListening() {
	if s.listener != nil {
		s.listener.Stop()
	}
}

// Listen records one utterance, then submits the transcript.
func (s *Session) Listen(ctx context.Context) (transcript, reply string, err error) {
	if s.listener == nil {
		return "", "", ErrNoSpeech
	}
	if s.cue != nil {
		if err := s.cue(ctx); err != nil {
			log.Debug("Listen cue failed", "err", err)
		}
	}

	transcript, err = s.listener.Listen(ctx)
	if err != nil {
		return "", "", err
	}
	reply, err = s.Submit(ctx, transcript)
	return transcript, reply, err
}

// Transcribe handles a recording uploaded by the shell. hint names the
// format (extension or MIME type) and may be empty.
func (s *Session) Transcribe(ctx context.Context, audio []byte, hint string) (transcript, reply string, err error) {
	if s.listener == nil {
		return "", "", ErrNoSpeech
	}
	transcript, err = s.listener.TranscribeAudio(ctx, bytes.NewReader(audio), hint)
	if err != nil {
		return "", "", err
	}
	reply, err = s.Submit(ctx, transcript)
	return transcript, reply, err
}
