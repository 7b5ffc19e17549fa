// Package nlu turns a typed or transcribed utterance into a reply,
// performing device actions through capability.Capabilities on the way.
//
// Matching is an ordered rule table over the lower-cased, trimmed input;
// the first rule whose predicate holds produces the reply. Nothing here
// returns an error: unsupported or failed actions become reply text.
package nlu

import (
	"context"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"hadassah/internal/capability"
)

// SideEffect records one capability call made while interpreting.
type SideEffect struct {
	Op     string `json:"op"`
	Target string `json:"target,omitempty"`
	OK     bool   `json:"ok"`
}

type Result struct {
	Reply       string       `json:"reply"`
	SideEffects []SideEffect `json:"sideEffects,omitempty"`
}

type Interpreter interface {
	Interpret(ctx context.Context, input string) Result
	Commands() []Command
}

type Option func(*options)

type options struct {
	rng      *rand.Rand
	now      func() time.Time
	persona  Persona
	nickname func(ctx context.Context) string
}

// WithRand pins the source used to pick greeting and fallback replies.
func WithRand(r *rand.Rand) Option {
	return func(o *options) { o.rng = r }
}

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func WithPersona(p Persona) Option {
	return func(o *options) { o.persona = p }
}

// WithNickname looks up the user's name on every turn. An empty result
// keeps Persona.Nickname.
func WithNickname(fn func(ctx context.Context) string) Option {
	return func(o *options) { o.nickname = fn }
}

func buildOptions(opts []Option) options {
	o := options{
		rng:     rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x6861646173736168)),
		now:     time.Now,
		persona: DefaultPersona(),
	}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

type rule struct {
	name   string
	match  func(lower string) bool
	handle func(t *turn) string
}

// turn is one interpretation in flight.
type turn struct {
	ctx     context.Context
	input   string
	lower   string
	caps    capability.Capabilities
	effects []SideEffect
}

func newTurn(ctx context.Context, input string, caps capability.Capabilities) *turn {
	return &turn{
		ctx:   ctx,
		input: input,
		lower: strings.ToLower(strings.TrimSpace(input)),
		caps:  caps,
	}
}

func (t *turn) has(words ...string) bool {
	return containsAny(t.lower, words...)
}

func (t *turn) record(op, target string, ok bool) {
	t.effects = append(t.effects, SideEffect{Op: op, Target: target, OK: ok})
}

func (t *turn) openApp(id, fallback string) bool {
	ok := t.caps.OpenApp(t.ctx, id, fallback)
	t.record("openApp", id, ok)
	return ok
}

func (t *turn) haptic(i capability.Intensity) {
	t.caps.HapticPulse(t.ctx, i)
	t.record("hapticPulse", string(i), true)
}

func (t *turn) result(reply string) Result {
	return Result{Reply: reply, SideEffects: t.effects}
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func matchAny(words ...string) func(string) bool {
	return func(lower string) bool { return containsAny(lower, words...) }
}

// picker draws uniformly from a reply pool.
type picker struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func (p *picker) pick(pool []string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return pool[p.rng.IntN(len(pool))]
}
