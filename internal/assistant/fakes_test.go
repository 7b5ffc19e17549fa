package assistant

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"hadassah/internal/bus"
	"hadassah/internal/nlu"
	"hadassah/internal/prefs"
	"hadassah/internal/storage"
)

type funcInterpreter func(ctx context.Context, input string) nlu.Result

func (f funcInterpreter) Interpret(ctx context.Context, input string) nlu.Result {
	return f(ctx, input)
}

func (f funcInterpreter) Commands() []nlu.Command {
	return []nlu.Command{{ID: "whatsapp", Text: "Open WhatsApp", Icon: "💬"}}
}

func echoInterpreter() funcInterpreter {
	return func(_ context.Context, input string) nlu.Result {
		return nlu.Result{Reply: "you said " + input}
	}
}

type fakeSpeaker struct {
	mu       sync.Mutex
	said     []string
	voices   []Voice
	stops    int
	speaking bool
	err      error
}

func (f *fakeSpeaker) Speak(text string, v Voice) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.said = append(f.said, text)
	f.voices = append(f.voices, v)
	f.speaking = true
	return nil
}

func (f *fakeSpeaker) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	f.speaking = false
	return nil
}

func (f *fakeSpeaker) Speaking() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.speaking
}

func (f *fakeSpeaker) Said() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.said...)
}

type fakeListener struct {
	text  string
	err   error
	hint  string
	mu    sync.Mutex
	stops int
}

func (f *fakeListener) Listen(context.Context) (string, error) {
	return f.text, f.err
}

func (f *fakeListener) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
}

func (f *fakeListener) TranscribeAudio(_ context.Context, audio io.ReadSeeker, hint string) (string, error) {
	_, _ = io.ReadAll(audio)
	f.hint = hint
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

type fakeDucker struct {
	mu       sync.Mutex
	ducks    int
	restores int
}

func (f *fakeDucker) Duck(context.Context, float64, time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ducks++
	return nil
}

func (f *fakeDucker) Restore(context.Context, time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.restores++
	return nil
}

func (f *fakeDucker) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ducks, f.restores
}

// chanTransport feeds frames from in and collects writes on out.
type chanTransport struct {
	in  chan *bus.Message
	out chan *bus.Message
}

func newChanTransport() *chanTransport {
	return &chanTransport{in: make(chan *bus.Message), out: make(chan *bus.Message, 16)}
}

func (c *chanTransport) Read(ctx context.Context) (*bus.Message, error) {
	select {
	case m, ok := <-c.in:
		if !ok {
			return nil, bus.ErrClosed
		}
		return m, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *chanTransport) Write(m *bus.Message) error {
	c.out <- m
	return nil
}

var errBoom = errors.New("boom")

func newStore() *prefs.Store {
	return prefs.New(storage.NewMemory())
}
