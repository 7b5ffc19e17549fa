package nlu

import (
	"context"
	"fmt"
	"time"

	"hadassah/internal/capability"
)

const (
	whatsAppID     = "whatsapp://send"
	whatsAppWebURL = "https://web.whatsapp.com/"
)

// Base handles requests that are safe everywhere: the only device action
// it takes is opening a URL.
type Base struct {
	caps     capability.Capabilities
	now      func() time.Time
	persona  Persona
	nickname func(ctx context.Context) string
	picker   *picker
	rules    []rule
}

func NewBase(caps capability.Capabilities, opts ...Option) *Base {
	o := buildOptions(opts)
	b := &Base{
		caps:     caps,
		now:      o.now,
		persona:  o.persona,
		nickname: o.nickname,
		picker:   &picker{rng: o.rng},
	}
	b.rules = []rule{
		{name: "greeting", match: greetingRe.MatchString, handle: b.greet},
		{name: "communication", match: matchAny("whatsapp", "message"), handle: b.communicate},
		{name: "flashlight", match: matchAny("flashlight", "torch"), handle: staticReply(replyFlashlightWeb)},
		{name: "search", match: matchAny("search", "google"), handle: b.search},
		{name: "youtube", match: matchAny("youtube"), handle: b.youtube},
		{name: "brightness", match: matchAny("brightness", "dim", "bright"), handle: staticReply(replyBrightness)},
		{name: "reminder", match: matchAny("remind"), handle: staticReply(replyReminder)},
		{name: "time", match: matchAny("time"), handle: b.tellTime},
		{name: "weather", match: matchAny("weather"), handle: staticReply(replyWeather)},
	}
	return b
}

func (b *Base) Interpret(ctx context.Context, input string) Result {
	t := newTurn(ctx, input, b.caps)
	return t.result(b.interpret(t))
}

func (b *Base) interpret(t *turn) string {
	if reply, ok := apply(b.rules, t); ok {
		return reply
	}
	return b.picker.pick(UnknownReplies)
}

func (b *Base) Commands() []Command {
	return catalog(baseCommands)
}

func apply(rules []rule, t *turn) (string, bool) {
	for _, r := range rules {
		if r.match(t.lower) {
			return r.handle(t), true
		}
	}
	return "", false
}

func staticReply(s string) func(*turn) string {
	return func(*turn) string { return s }
}

func (b *Base) greet(t *turn) string {
	p := b.persona
	if b.nickname != nil {
		if name := b.nickname(t.ctx); name != "" {
			p.Nickname = name
		}
	}
	return b.picker.pick(GreetingReplies(p))
}

func (b *Base) communicate(t *turn) string {
	if !t.has("open") {
		return replyWhatsAppClarify
	}
	if !t.openApp(whatsAppID, whatsAppWebURL) {
		return replyWhatsAppFailed
	}
	return replyWhatsAppOpened
}

func (b *Base) search(t *turn) string {
	q, ok := extractQuery(t.input, searchPatterns)
	if !ok {
		return replySearchClarify
	}
	u := googleSearchURL(q)
	if !t.openApp(u, u) {
		return replySearchFailed
	}
	return fmt.Sprintf("Searching Google for \"%s\"!", q)
}

func (b *Base) youtube(t *turn) string {
	q, ok := extractQuery(t.input, youtubePatterns)
	if !ok {
		return replyYouTubeClarify
	}
	u := youtubeSearchURL(q)
	if !t.openApp(u, u) {
		return replyYouTubeFailed
	}
	return fmt.Sprintf("Opening YouTube search for \"%s\"!", q)
}

func (b *Base) tellTime(*turn) string {
	return fmt.Sprintf("It's currently %s.", b.now().Format("3:04:05 PM"))
}

var _ Interpreter = (*Base)(nil)
