package prefs

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hadassah/internal/storage"
)

func boolPtr(b bool) *bool { return &b }

func TestPreferencesDefaultsWhenMissing(t *testing.T) {
	s := New(storage.NewMemory())

	p, err := s.Preferences(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Defaults(), p)
}

func TestUpdateDarkModeKeepsOtherDefaults(t *testing.T) {
	ctx := context.Background()
	s := New(storage.NewMemory())

	_, err := s.Update(ctx, Update{DarkMode: boolPtr(true)})
	require.NoError(t, err)

	got, err := s.Preferences(ctx)
	require.NoError(t, err)

	want := Defaults()
	want.DarkMode = true
	assert.Equal(t, want, got)
}

func TestStoredPartialRecordMergesOverDefaults(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	require.NoError(t, kv.Set(ctx, PreferencesKey, `{"nickname":"Dana","voiceSpeed":1.5}`))

	p, err := New(kv).Preferences(ctx)
	require.NoError(t, err)

	assert.Equal(t, "Dana", p.Nickname)
	assert.Equal(t, 1.5, p.VoiceSpeed)
	assert.Equal(t, Defaults().FavoriteApps, p.FavoriteApps)
	assert.True(t, p.RememberConversations)
}

func TestPatchReplacesRoutinesWholesale(t *testing.T) {
	ctx := context.Background()
	s := New(storage.NewMemory())

	p, err := s.Patch(ctx, []byte(`{"commonRoutines":{"bedtime":["dim lights"]}}`))
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"bedtime": {"dim lights"}}, p.CommonRoutines)

	// an unrelated update keeps the replaced routines
	p, err = s.Update(ctx, Update{VoiceEnabled: boolPtr(false)})
	require.NoError(t, err)
	assert.False(t, p.VoiceEnabled)
	assert.Equal(t, map[string][]string{"bedtime": {"dim lights"}}, p.CommonRoutines)
}

func TestUpdateClearsCollections(t *testing.T) {
	ctx := context.Background()
	s := New(storage.NewMemory())

	apps := []string{"Spotify"}
	p, err := s.Update(ctx, Update{FavoriteApps: &apps})
	require.NoError(t, err)
	assert.Equal(t, []string{"Spotify"}, p.FavoriteApps)

	none := []string{}
	noRoutines := map[string][]string{}
	_, err = s.Update(ctx, Update{FavoriteApps: &none, CommonRoutines: &noRoutines})
	require.NoError(t, err)

	p, err = s.Preferences(ctx)
	require.NoError(t, err)
	assert.Empty(t, p.FavoriteApps)
	assert.Empty(t, p.CommonRoutines)
	assert.Equal(t, "Barbra", p.Nickname)
}

func TestPatchRejectsInvalidJSON(t *testing.T) {
	s := New(storage.NewMemory())
	_, err := s.Patch(context.Background(), []byte(`{"darkMode":`))
	assert.Error(t, err)
}

func TestCorruptRecordFallsBackToDefaults(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	require.NoError(t, kv.Set(ctx, PreferencesKey, "not json"))

	p, err := New(kv).Preferences(ctx)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), p)
}

type brokenStore struct{ storage.Store }

func (brokenStore) Get(context.Context, string) (string, error) {
	return "", errors.New("disk gone")
}

func TestReadFailureReturnsDefaultsAndError(t *testing.T) {
	p, err := New(brokenStore{storage.NewMemory()}).Preferences(context.Background())
	assert.Error(t, err)
	assert.Equal(t, Defaults(), p)
}

func TestConversationLogIsCappedNewestFirst(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	n := 0
	s := New(storage.NewMemory(),
		WithClock(func() time.Time { return base.Add(time.Duration(n) * time.Minute) }),
		WithIDs(func() string { n++; return fmt.Sprintf("c%d", n) }),
	)

	for i := 1; i <= MaxConversations+1; i++ {
		_, err := s.AddConversation(ctx, fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i))
		require.NoError(t, err)
	}

	list, err := s.Conversations(ctx)
	require.NoError(t, err)
	require.Len(t, list, MaxConversations)

	assert.Equal(t, "q101", list[0].UserMessage)
	assert.Equal(t, "c101", list[0].ID)
	assert.Equal(t, "q2", list[len(list)-1].UserMessage, "oldest entry evicted")

	for i := 1; i < len(list); i++ {
		assert.False(t, list[i].Timestamp.After(list[i-1].Timestamp), "entries newest first")
	}
}

func TestClearConversations(t *testing.T) {
	ctx := context.Background()
	s := New(storage.NewMemory())

	c, err := s.AddConversation(ctx, "hello", "hi there")
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)

	require.NoError(t, s.ClearConversations(ctx))

	list, err := s.Conversations(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}
