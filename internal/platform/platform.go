// Package platform builds the capability backend and the interpreter from
// the configuration. The daemon and the console share it.
package platform

import (
	"context"
	log "log/slog"

	"hadassah/internal/capability"
	"hadassah/internal/config"
	"hadassah/internal/mixer"
	"hadassah/internal/nlu"
	"hadassah/internal/prefs"
	"hadassah/internal/storage"
)

// Shell is the presentation shell reached over the bus.
type Shell interface {
	capability.URLOpener
	capability.Vibrator
}

// Bridges are the host pieces the caller owns. Shell may be nil; URLs then
// go to the configured launcher and nothing vibrates.
type Bridges struct {
	Shell   Shell
	Haptics capability.Haptics
}

func Hosts(cfg config.Config, kv storage.Store, b Bridges) capability.Hosts {
	launcher := capability.ExecLauncher{Command: cfg.Native.Launcher}

	web := capability.WebHost{Store: kv, Opener: launcher}
	if b.Shell != nil {
		web.Opener = b.Shell
		web.Vibrator = b.Shell
	}

	docs := cfg.Native.DocumentsDir
	if docs == "" {
		var err error
		if docs, err = capability.DocumentsDir(); err != nil {
			log.Warn("No documents directory", "err", err)
		}
	}

	native := capability.NativeHost{
		Launcher: launcher,
		Files:    capability.DirFS{Dir: docs},
		Device:   capability.HostProber{},
		Haptics:  b.Haptics,
	}
	if cfg.Native.VolumeBridge == "pactl" {
		native.Mixer = mixer.NewMixer()
	}

	return capability.Hosts{Web: web, Native: native}
}

// Capabilities selects the configured backend and asks it for its
// permissions once, which creates the documents directory on native hosts.
func Capabilities(ctx context.Context, cfg config.Config, kv storage.Store, b Bridges) (capability.Capabilities, error) {
	p, err := capability.ParsePlatform(cfg.Platform)
	if err != nil {
		return nil, err
	}
	caps := capability.New(p, Hosts(cfg, kv, b))
	caps.RequestPermissions(ctx)

	log.Debug("Loaded capabilities", "native", caps.IsNative())
	return caps, nil
}

// Interpreter greets the user by the nickname currently stored in store.
func Interpreter(caps capability.Capabilities, store *prefs.Store, opts ...nlu.Option) nlu.Interpreter {
	nickname := func(ctx context.Context) string {
		p, err := store.Preferences(ctx)
		if err != nil {
			return ""
		}
		return p.Nickname
	}
	return nlu.NewEnhanced(caps, append(opts, nlu.WithNickname(nickname))...)
}
