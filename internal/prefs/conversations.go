package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	log "log/slog"

	"github.com/google/uuid"

	"hadassah/internal/storage"
)

func newConversationID() string {
	return uuid.NewString()
}

// Conversations returns the log, newest first.
func (s *Store) Conversations(ctx context.Context) ([]Conversation, error) {
	raw, err := s.kv.Get(ctx, ConversationsKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read conversations: %w", err)
	}

	var out []Conversation
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		log.Warn("Stored conversations are corrupt, starting over", "err", err)
		return nil, nil
	}
	return out, nil
}

// AddConversation prepends an exchange and trims the log to
// MaxConversations entries.
func (s *Store) AddConversation(ctx context.Context, userMessage, aiResponse string) (Conversation, error) {
	list, err := s.Conversations(ctx)
	if err != nil {
		return Conversation{}, err
	}

	c := Conversation{
		ID:          s.newID(),
		Timestamp:   s.now(),
		UserMessage: userMessage,
		AIResponse:  aiResponse,
	}

	list = append([]Conversation{c}, list...)
	if len(list) > MaxConversations {
		list = list[:MaxConversations]
	}

	data, err := json.Marshal(list)
	if err != nil {
		return Conversation{}, fmt.Errorf("encode conversations: %w", err)
	}
	if err := s.kv.Set(ctx, ConversationsKey, string(data)); err != nil {
		return Conversation{}, fmt.Errorf("write conversations: %w", err)
	}
	return c, nil
}

func (s *Store) ClearConversations(ctx context.Context) error {
	if err := s.kv.Remove(ctx, ConversationsKey); err != nil {
		return fmt.Errorf("clear conversations: %w", err)
	}
	return nil
}
