// Package prefs persists user preferences and the conversation log as JSON
// records in a storage.Store.
package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	log "log/slog"
	"time"

	"hadassah/internal/storage"
)

const (
	PreferencesKey   = "barbra_ai_preferences"
	ConversationsKey = "barbra_ai_conversations"

	// MaxConversations is the size of the conversation log; older entries
	// are dropped.
	MaxConversations = 100
)

type Preferences struct {
	Nickname              string              `json:"nickname"`
	FavoriteApps          []string            `json:"favoriteApps"`
	VoiceEnabled          bool                `json:"voiceEnabled"`
	VoicePitch            float64             `json:"voicePitch"`
	VoiceSpeed            float64             `json:"voiceSpeed"`
	RememberConversations bool                `json:"rememberConversations"`
	CommonRoutines        map[string][]string `json:"commonRoutines"`
	DarkMode              bool                `json:"darkMode"`
	Contrast              float64             `json:"contrast"`
}

// Defaults returns a fresh copy of the default preferences.
func Defaults() Preferences {
	return Preferences{
		Nickname:              "Barbra",
		FavoriteApps:          []string{"WhatsApp", "YouTube", "Google"},
		VoiceEnabled:          true,
		VoicePitch:            1,
		VoiceSpeed:            1,
		RememberConversations: true,
		DarkMode:              false,
		Contrast:              1,
		CommonRoutines: map[string][]string{
			"good morning": {"brightness up", "open news", "check weather"},
			"goodnight":    {"dim lights", "set alarm", "play soft music"},
		},
	}
}

// Update is a partial preferences change. Nil fields are left alone; a
// pointer to an empty slice or map clears that preference.
type Update struct {
	Nickname              *string              `json:"nickname,omitempty"`
	FavoriteApps          *[]string            `json:"favoriteApps,omitempty"`
	VoiceEnabled          *bool                `json:"voiceEnabled,omitempty"`
	VoicePitch            *float64             `json:"voicePitch,omitempty"`
	VoiceSpeed            *float64             `json:"voiceSpeed,omitempty"`
	RememberConversations *bool                `json:"rememberConversations,omitempty"`
	CommonRoutines        *map[string][]string `json:"commonRoutines,omitempty"`
	DarkMode              *bool                `json:"darkMode,omitempty"`
	Contrast              *float64             `json:"contrast,omitempty"`
}

type Conversation struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	UserMessage string    `json:"userMessage"`
	AIResponse  string    `json:"aiResponse"`
}

type Store struct {
	kv    storage.Store
	now   func() time.Time
	newID func() string
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDs(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

func New(kv storage.Store, opts ...Option) *Store {
	s := &Store{
		kv:    kv,
		now:   time.Now,
		newID: newConversationID,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Preferences reads the stored record merged over the defaults. A missing
// or unreadable record yields the defaults.
func (s *Store) Preferences(ctx context.Context) (Preferences, error) {
	raw, err := s.kv.Get(ctx, PreferencesKey)
	if errors.Is(err, storage.ErrNotFound) {
		return Defaults(), nil
	}
	if err != nil {
		return Defaults(), fmt.Errorf("read preferences: %w", err)
	}

	p, err := mergeOver(Defaults(), []byte(raw))
	if err != nil {
		log.Warn("Stored preferences are corrupt, using defaults", "err", err)
		return Defaults(), nil
	}
	return p, nil
}

// Update merges u over the current preferences and stores the whole record.
func (s *Store) Update(ctx context.Context, u Update) (Preferences, error) {
	patch, err := json.Marshal(u)
	if err != nil {
		return Preferences{}, fmt.Errorf("encode update: %w", err)
	}
	return s.Patch(ctx, patch)
}

// Patch merges a partial JSON object over the current preferences.
func (s *Store) Patch(ctx context.Context, patch []byte) (Preferences, error) {
	cur, err := s.Preferences(ctx)
	if err != nil {
		return Preferences{}, err
	}

	next, err := mergeOver(cur, patch)
	if err != nil {
		return Preferences{}, fmt.Errorf("apply patch: %w", err)
	}

	data, err := json.Marshal(next)
	if err != nil {
		return Preferences{}, fmt.Errorf("encode preferences: %w", err)
	}
	if err := s.kv.Set(ctx, PreferencesKey, string(data)); err != nil {
		return Preferences{}, fmt.Errorf("write preferences: %w", err)
	}
	return next, nil
}

// mergeOver applies the top-level keys of raw over base. A key present in
// raw replaces the whole value, maps included.
func mergeOver(base Preferences, raw []byte) (Preferences, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return base, err
	}
	if _, ok := keys["commonRoutines"]; ok {
		base.CommonRoutines = nil
	}
	if err := json.Unmarshal(raw, &base); err != nil {
		return base, err
	}
	return base, nil
}
