// Package config loads the daemon settings from YAML, with environment
// overrides applied on top.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"hadassah/internal/capability"
)

const (
	EnvConfig   = "HADASSAH_CONFIG"
	EnvPlatform = "HADASSAH_PLATFORM"
	EnvAPIKey   = "OPENAI_API_KEY"
)

type Config struct {
	Platform string        `yaml:"platform"`
	LogLevel string        `yaml:"log_level"`
	DataPath string        `yaml:"data_path"`
	Socket   string        `yaml:"socket"`
	Bus      BusConfig     `yaml:"bus"`
	Speech   SpeechConfig  `yaml:"speech"`
	Native   NativeConfig  `yaml:"native"`
	Ducking  DuckingConfig `yaml:"ducking"`
}

// BusConfig is disabled while URL is empty.
type BusConfig struct {
	URL       string        `yaml:"url"`
	Shard     string        `yaml:"shard"`
	Shell     string        `yaml:"shell"`
	Reconnect time.Duration `yaml:"reconnect"`
}

type SpeechConfig struct {
	Engine      string        `yaml:"engine"` // local | remote | none
	ModelPath   string        `yaml:"model_path"`
	Language    string        `yaml:"language"`
	Threads     int           `yaml:"threads"`
	Proxy       string        `yaml:"proxy"`
	MaxListen   time.Duration `yaml:"max_listen"`
	RemoteModel string        `yaml:"remote_model"`
	CueFile     string        `yaml:"cue_file"`

	APIKey string `yaml:"-"`
}

type NativeConfig struct {
	Launcher     string  `yaml:"launcher"`
	DocumentsDir string  `yaml:"documents_dir"`
	VolumeBridge string  `yaml:"volume_bridge"` // pactl | stub
	HapticFreq   float64 `yaml:"haptic_freq"`
}

type DuckingConfig struct {
	Enabled bool          `yaml:"enabled"`
	Factor  float64       `yaml:"factor"`
	Floor   int           `yaml:"floor"`
	Fade    time.Duration `yaml:"fade"`
}

func Default() Config {
	return Config{
		Platform: string(capability.PlatformNative),
		LogLevel: "info",
		DataPath: filepath.Join(dataHome(), "hadassah", "hadassah.db"),
		Bus: BusConfig{
			Shard:     "hadassah",
			Shell:     "shell",
			Reconnect: 2 * time.Second,
		},
		Speech: SpeechConfig{
			Engine:      "local",
			ModelPath:   "third_party/whisper.cpp/models/ggml-base.bin",
			Language:    "en",
			MaxListen:   15 * time.Second,
			RemoteModel: "whisper-1",
		},
		Native: NativeConfig{
			Launcher:     "xdg-open",
			VolumeBridge: "stub",
			HapticFreq:   180,
		},
		Ducking: DuckingConfig{
			Factor: 0.3,
			Floor:  10,
			Fade:   250 * time.Millisecond,
		},
	}
}

// Load reads path ($HADASSAH_CONFIG, then ~/.config/hadassah/config.yaml
// when empty). A missing file yields the defaults.
func Load(path string) (Config, error) {
	path = resolvePath(path)

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return Config{}, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	cfg = hydrateDefaults(cfg)
	return cfg, cfg.Validate()
}

// Validate checks the settings every binary needs. Speech settings are
// checked separately by ValidateSpeech, since only the daemon listens.
func (c Config) Validate() error {
	if _, err := capability.ParsePlatform(c.Platform); err != nil {
		return err
	}
	switch c.Native.VolumeBridge {
	case "pactl", "stub":
	default:
		return fmt.Errorf("unknown volume bridge %q", c.Native.VolumeBridge)
	}
	return nil
}

func (c Config) ValidateSpeech() error {
	switch c.Speech.Engine {
	case "local", "remote", "none":
	default:
		return fmt.Errorf("unknown speech engine %q", c.Speech.Engine)
	}
	if c.Speech.Engine == "remote" && c.Speech.APIKey == "" {
		return fmt.Errorf("speech engine remote needs %s", EnvAPIKey)
	}
	return nil
}

func resolvePath(path string) string {
	if path != "" {
		return expandPath(path)
	}
	if custom := os.Getenv(EnvConfig); custom != "" {
		return expandPath(custom)
	}
	return filepath.Join(configHome(), "hadassah", "config.yaml")
}

func applyEnv(cfg *Config) {
	if p := os.Getenv(EnvPlatform); p != "" {
		cfg.Platform = strings.ToLower(p)
	}
	if key := os.Getenv(EnvAPIKey); key != "" {
		cfg.Speech.APIKey = key
	}
}

func hydrateDefaults(cfg Config) Config {
	def := Default()
	if cfg.Platform == "" {
		cfg.Platform = def.Platform
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = def.LogLevel
	}
	if cfg.Bus.Shard == "" {
		cfg.Bus.Shard = def.Bus.Shard
	}
	if cfg.Bus.Shell == "" {
		cfg.Bus.Shell = def.Bus.Shell
	}
	if cfg.Speech.Engine == "" {
		cfg.Speech.Engine = def.Speech.Engine
	}
	if cfg.Speech.MaxListen <= 0 {
		cfg.Speech.MaxListen = def.Speech.MaxListen
	}
	if cfg.Native.Launcher == "" {
		cfg.Native.Launcher = def.Native.Launcher
	}
	if cfg.Native.VolumeBridge == "" {
		cfg.Native.VolumeBridge = def.Native.VolumeBridge
	}
	if cfg.Ducking.Factor <= 0 || cfg.Ducking.Factor > 1 {
		cfg.Ducking.Factor = def.Ducking.Factor
	}
	cfg.DataPath = expandPath(cfg.DataPath)
	cfg.Native.DocumentsDir = expandPath(cfg.Native.DocumentsDir)
	return cfg
}

func expandPath(path string) string {
	if path == "" || path == ":memory:" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(userHomeDir(), path[2:])
	}
	return filepath.Clean(path)
}

func userHomeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

func configHome() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir
	}
	return filepath.Join(userHomeDir(), ".config")
}

func dataHome() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return dir
	}
	return filepath.Join(userHomeDir(), ".local", "share")
}
