package platform

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hadassah/internal/capability"
	"hadassah/internal/config"
	"hadassah/internal/prefs"
	"hadassah/internal/storage"
)

type quietHaptics struct{}

func (quietHaptics) Impact(context.Context, capability.Intensity) error { return nil }

type shellRecorder struct {
	urls   []string
	pulses []time.Duration
}

func (s *shellRecorder) OpenURL(_ context.Context, url string) error {
	s.urls = append(s.urls, url)
	return nil
}

func (s *shellRecorder) Vibrate(_ context.Context, d time.Duration) error {
	s.pulses = append(s.pulses, d)
	return nil
}

func nativeConfig(docs string) config.Config {
	cfg := config.Default()
	cfg.Platform = "native"
	cfg.Native.DocumentsDir = docs
	return cfg
}

func TestNativeSaveIntoMissingDocumentsDir(t *testing.T) {
	ctx := context.Background()
	docs := filepath.Join(t.TempDir(), "Documents", "Hadassah")
	kv := storage.NewMemory()

	caps, err := Capabilities(ctx, nativeConfig(docs), kv, Bridges{Haptics: quietHaptics{}})
	require.NoError(t, err)
	require.True(t, caps.IsNative())

	interp := Interpreter(caps, prefs.New(kv))

	res := interp.Interpret(ctx, "save buy milk")
	require.True(t, strings.HasPrefix(res.Reply, "File saved as barbra_note_"), res.Reply)

	entries, err := os.ReadDir(docs)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	data, err := os.ReadFile(filepath.Join(docs, entries[0].Name()))
	require.NoError(t, err)
	assert.Equal(t, "buy milk", string(data))

	res = interp.Interpret(ctx, "list files")
	assert.Contains(t, res.Reply, entries[0].Name())
}

func TestCapabilitiesCreatesDocumentsDir(t *testing.T) {
	docs := filepath.Join(t.TempDir(), "docs")
	_, err := Capabilities(context.Background(), nativeConfig(docs), storage.NewMemory(), Bridges{Haptics: quietHaptics{}})
	require.NoError(t, err)
	assert.DirExists(t, docs)
}

func TestCapabilitiesRejectsUnknownPlatform(t *testing.T) {
	cfg := config.Default()
	cfg.Platform = "desktop"
	_, err := Capabilities(context.Background(), cfg, storage.NewMemory(), Bridges{})
	assert.Error(t, err)
}

func TestHosts(t *testing.T) {
	cfg := nativeConfig(t.TempDir())

	h := Hosts(cfg, storage.NewMemory(), Bridges{})
	assert.Nil(t, h.Native.Mixer)
	assert.Equal(t, capability.ExecLauncher{Command: "xdg-open"}, h.Web.Opener)
	assert.Nil(t, h.Web.Vibrator)

	cfg.Native.VolumeBridge = "pactl"
	shell := &shellRecorder{}
	h = Hosts(cfg, storage.NewMemory(), Bridges{Shell: shell})
	assert.NotNil(t, h.Native.Mixer)
	assert.Same(t, shell, h.Web.Opener)
	assert.Same(t, shell, h.Web.Vibrator)
}

func TestWebOpensThroughShell(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	cfg.Platform = "web"
	shell := &shellRecorder{}

	caps, err := Capabilities(ctx, cfg, storage.NewMemory(), Bridges{Shell: shell})
	require.NoError(t, err)

	res := Interpreter(caps, prefs.New(storage.NewMemory())).Interpret(ctx, "open whatsapp")
	assert.Contains(t, res.Reply, "WhatsApp")
	assert.Equal(t, []string{"https://web.whatsapp.com"}, shell.urls)
}

func TestInterpreterGreetsByStoredNickname(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	store := prefs.New(kv)
	name := "Noa"
	_, err := store.Update(ctx, prefs.Update{Nickname: &name})
	require.NoError(t, err)

	caps := capability.NewWeb(capability.WebHost{Store: kv})
	seen := map[string]bool{}
	for i := 0; i < 40; i++ {
		seen[Interpreter(caps, store).Interpret(ctx, "hello").Reply] = true
	}
	assert.True(t, seen["Hi Noa! I'm Hadassah, your personal AI assistant. How can I help you today?"])
	for reply := range seen {
		assert.NotContains(t, reply, "Barbra")
	}
}

