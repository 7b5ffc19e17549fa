package assistant

import (
	"context"
	log "log/slog"
	"sync"
	"time"
)

type Ducker interface {
	Duck(ctx context.Context, factor float64, dur time.Duration) error
	Restore(ctx context.Context, dur time.Duration) error
}

// DuckingSpeaker lowers other audio while the wrapped speaker talks and
// restores it once speech has finished.
type DuckingSpeaker struct {
	Speaker
	ducker Ducker
	factor float64
	fade   time.Duration
	poll   time.Duration

	mu       sync.Mutex
	watching bool
	done     chan struct{}
}

func NewDuckingSpeaker(sp Speaker, d Ducker, factor float64, fade time.Duration) *DuckingSpeaker {
	return &DuckingSpeaker{
		Speaker: sp,
		ducker:  d,
		factor:  factor,
		fade:    fade,
		poll:    100 * time.Millisecond,
	}
}

func (d *DuckingSpeaker) Speak(text string, v Voice) error {
	if err := d.ducker.Duck(context.Background(), d.factor, d.fade); err != nil {
		log.Debug("Duck failed", "err", err)
	}
	if err := d.Speaker.Speak(text, v); err != nil {
		d.restore()
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.watching {
		d.watching = true
		d.done = make(chan struct{})
		go d.watch(d.done)
	}
	return nil
}

// watch restores the other streams once the speaker goes quiet.
func (d *DuckingSpeaker) watch(done chan struct{}) {
	defer close(done)

	t := time.NewTicker(d.poll)
	defer t.Stop()

	// give the engine a moment to start before the first check
	time.Sleep(d.poll)
	for range t.C {
		if d.Speaker.Speaking() {
			continue
		}
		d.mu.Lock()
		d.watching = false
		d.mu.Unlock()
		d.restore()
		return
	}
}

func (d *DuckingSpeaker) restore() {
	if err := d.ducker.Restore(context.Background(), d.fade); err != nil {
		log.Debug("Restore failed", "err", err)
	}
}

// Wait blocks until the current watcher, if any, has restored volume.
func (d *DuckingSpeaker) Wait() {
	d.mu.Lock()
	done := d.done
	d.mu.Unlock()
	if done != nil {
		<-done
	}
}
