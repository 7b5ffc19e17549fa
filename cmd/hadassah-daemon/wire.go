package main

import (
	"context"
	"fmt"
	log "log/slog"
	"os"
	"path/filepath"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"hadassah/internal/assistant"
	"hadassah/internal/audio"
	"hadassah/internal/bus"
	"hadassah/internal/config"
	"hadassah/internal/mixer"
	"hadassah/internal/notify"
	"hadassah/internal/platform"
	"hadassah/internal/prefs"
	"hadassah/internal/proxy"
	"hadassah/internal/speech"
	"hadassah/internal/storage"
	"hadassah/internal/tts"
	"hadassah/pkg/stt"
)

type daemon struct {
	session *assistant.Session
	bus     *bus.Conn
	closers []func() error
}

func (d *daemon) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			log.Warn("Close failed", "err", err)
		}
	}
}

func wire(ctx context.Context, cfg config.Config) (*daemon, error) {
	d := &daemon{}
	ok := false
	defer func() {
		if !ok {
			d.Close()
		}
	}()

	kv, err := openStore(cfg.DataPath)
	if err != nil {
		return nil, err
	}
	if c, isCloser := kv.(interface{ Close() error }); isCloser {
		d.closers = append(d.closers, c.Close)
	}
	log.Debug("Loaded storage", "path", cfg.DataPath)

	if cfg.Bus.URL != "" {
		d.bus, err = bus.Dial(ctx, cfg.Bus.URL, cfg.Bus.Reconnect)
		if err != nil {
			return nil, err
		}
		d.closers = append(d.closers, d.bus.Close)
	}

	bridges := platform.Bridges{Haptics: notify.Haptics{Freq: cfg.Native.HapticFreq}}
	if d.bus != nil {
		bridges.Shell = bus.Shell{Conn: d.bus, From: cfg.Bus.Shard, To: cfg.Bus.Shell}
	}
	caps, err := platform.Capabilities(ctx, cfg, kv, bridges)
	if err != nil {
		return nil, err
	}

	synth := tts.New()
	d.closers = append(d.closers, synth.Close)
	var speaker assistant.Speaker = synthSpeaker{synth: synth, language: cfg.Speech.Language}
	if cfg.Ducking.Enabled {
		ducker := mixer.NewDucker([]string{"eSpeak", "hadassah"}, cfg.Ducking.Floor)
		speaker = assistant.NewDuckingSpeaker(speaker, ducker, cfg.Ducking.Factor, cfg.Ducking.Fade)
	}

	opts := []assistant.Option{
		assistant.WithName(cfg.Bus.Shard),
		assistant.WithSpeaker(speaker),
		assistant.WithListenCue(listenCue(cfg.Speech.CueFile)),
	}

	rec, err := recognizer(cfg.Speech, d)
	if err != nil {
		return nil, err
	}
	if rec != nil {
		opts = append(opts, assistant.WithListener(rec))
	}

	store := prefs.New(kv)
	d.session = assistant.New(platform.Interpreter(caps, store), store, opts...)
	ok = true
	return d, nil
}

func openStore(path string) (storage.Store, error) {
	if path == "" || path == ":memory:" {
		return storage.NewMemory(), nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return storage.OpenSQLite(path)
}

func recognizer(cfg config.SpeechConfig, d *daemon) (*speech.Recognizer, error) {
	var tr speech.Transcriber
	switch cfg.Engine {
	case "none":
		log.Info("Speech recognition disabled")
		return nil, nil

	case "remote":
		httpClient, err := proxy.NewSocksClient(cfg.Proxy)
		if err != nil {
			return nil, fmt.Errorf("proxy: %w", err)
		}
		client := openai.NewClient(
			option.WithAPIKey(cfg.APIKey),
			option.WithHTTPClient(httpClient),
		)
		tr = stt.NewRemote(client, cfg.RemoteModel, cfg.Language)
		log.Debug("Loaded remote transcriber", "model", cfg.RemoteModel, "proxy", cfg.Proxy)

	default:
		local, err := stt.NewLocal(cfg.ModelPath, stt.Options{
			Language: cfg.Language,
			Threads:  cfg.Threads,
		})
		if err != nil {
			return nil, fmt.Errorf("whisper: %w", err)
		}
		d.closers = append(d.closers, local.Close)
		tr = local
		log.Debug("Loaded whisper", "model", cfg.ModelPath)
	}

	rec := audio.NewRecorder()
	if err := rec.Init(); err != nil {
		return nil, fmt.Errorf("audio: %w", err)
	}
	d.closers = append(d.closers, func() error { rec.Close(); return nil })
	log.Debug("Loaded recorder")

	return speech.NewRecognizer(rec, tr, cfg.MaxListen), nil
}

func listenCue(path string) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if path != "" {
			return notify.Cue(ctx, path)
		}
		return notify.Tone(ctx, 880, 120*time.Millisecond)
	}
}

// synthSpeaker maps preference multipliers onto the espeak voice.
type synthSpeaker struct {
	synth    *tts.Synth
	language string
}

func (s synthSpeaker) Speak(text string, v assistant.Voice) error {
	lang := s.language
	if lang == "auto" {
		lang = ""
	}
	return s.synth.Speak(text, tts.Voice{Language: lang, Pitch: v.Pitch, Rate: v.Rate})
}

func (s synthSpeaker) Stop() error    { return s.synth.Stop() }
func (s synthSpeaker) Speaking() bool { return s.synth.Speaking() }
