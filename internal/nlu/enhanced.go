package nlu

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hadassah/internal/capability"
)

const maxListedFiles = 5

// Enhanced routes device requests through the capability layer and hands
// everything else to Base.
type Enhanced struct {
	base    *Base
	now     func() time.Time
	persona Persona
	rules   []rule
}

func NewEnhanced(caps capability.Capabilities, opts ...Option) *Enhanced {
	o := buildOptions(opts)
	e := &Enhanced{
		base:    NewBase(caps, opts...),
		now:     o.now,
		persona: o.persona,
	}
	e.rules = []rule{
		{name: "flashlight", match: matchAny("flashlight", "torch"), handle: e.flashlight},
		{name: "volume", match: matchAny("volume"), handle: e.volume},
		{name: "open-app", match: isOpenApp, handle: e.openApp},
		{name: "save-file", match: matchAny("save", "write file"), handle: e.saveFile},
		{name: "list-files", match: matchAny("list files", "show files"), handle: e.listFiles},
		{name: "device-info", match: matchAny("device info", "phone info"), handle: e.deviceInfo},
	}
	return e
}

func (e *Enhanced) Interpret(ctx context.Context, input string) Result {
	t := newTurn(ctx, input, e.base.caps)
	if reply, ok := apply(e.rules, t); ok {
		return t.result(reply)
	}
	return t.result(e.base.interpret(t))
}

func (e *Enhanced) Commands() []Command {
	return catalog(baseCommands, nativeCommands)
}

func isOpenApp(lower string) bool {
	return strings.Contains(lower, "open") && containsAny(lower, "whatsapp", "camera", "settings")
}

func (e *Enhanced) flashlight(t *turn) string {
	if !t.caps.IsNative() {
		return replyFlashlightInstall(e.persona)
	}

	var on bool
	switch {
	case t.has("on", "enable"):
		on = true
	case t.has("off", "disable"):
		on = false
	default:
		return replyFlashlightAsk
	}

	ok := t.caps.ToggleFlashlight(t.ctx, on)
	t.record("toggleFlashlight", fmt.Sprint(on), ok)
	t.haptic(capability.Light)

	switch {
	case !ok:
		return replyFlashlightFailed
	case on:
		return replyFlashlightOn
	default:
		return replyFlashlightOff
	}
}

func (e *Enhanced) volume(t *turn) string {
	if !t.caps.IsNative() {
		return replyVolumeInstall(e.persona)
	}

	var (
		level     float64
		intensity capability.Intensity
		reply     string
	)
	switch {
	case t.has("up", "increase"):
		level, intensity, reply = 0.8, capability.Light, replyVolumeUp
	case t.has("down", "decrease", "lower"):
		level, intensity, reply = 0.3, capability.Light, replyVolumeDown
	case t.has("mute"):
		level, intensity, reply = 0, capability.Medium, replyVolumeMuted
	default:
		return replyVolumeAsk
	}

	ok := t.caps.SetVolume(t.ctx, level)
	t.record("setVolume", fmt.Sprint(level), ok)
	t.haptic(intensity)

	if !ok {
		return replyVolumeFailed
	}
	return reply
}

func (e *Enhanced) openApp(t *turn) string {
	t.haptic(capability.Light)

	switch {
	case t.has("whatsapp"):
		if t.openApp(whatsAppID, "https://web.whatsapp.com") {
			return "Opening WhatsApp!"
		}
		return "I tried to open WhatsApp but couldn't find it installed."
	case t.has("camera"):
		if t.openApp("camera://", "") {
			return "Opening Camera!"
		}
		return "I tried to open the camera app."
	default:
		if t.openApp("app-settings:", "") {
			return "Opening device settings!"
		}
		return "I tried to open device settings."
	}
}

func (e *Enhanced) saveFile(t *turn) string {
	if !t.caps.IsNative() {
		return replySaveInstall(e.persona)
	}

	name := fmt.Sprintf("barbra_note_%d.txt", e.now().UnixMilli())
	content := noteContent(t.input)
	if content == "" {
		content = defaultNote(e.persona)
	}

	ok := t.caps.WriteFile(t.ctx, name, content)
	t.record("writeFile", name, ok)
	t.haptic(capability.Medium)

	if !ok {
		return replySaveFailed
	}
	return fmt.Sprintf("File saved as %s!", name)
}

func (e *Enhanced) listFiles(t *turn) string {
	files := t.caps.ListFiles(t.ctx)
	t.record("listFiles", "", true)
	t.haptic(capability.Light)

	if len(files) == 0 {
		return replyNoFiles
	}

	shown := files
	more := ""
	if len(shown) > maxListedFiles {
		shown = shown[:maxListedFiles]
		more = "..."
	}
	return fmt.Sprintf("I found %d files: %s%s", len(files), strings.Join(shown, ", "), more)
}

func (e *Enhanced) deviceInfo(t *turn) string {
	info := t.caps.DeviceInfo(t.ctx)
	t.record("getDeviceInfo", "", info != nil)
	t.haptic(capability.Light)

	if info == nil {
		return replyNoDeviceInfo
	}
	return fmt.Sprintf("Device: %s running %s %s", info.Model, info.OperatingSystem, info.OSVersion)
}

var _ Interpreter = (*Enhanced)(nil)
