package capability

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/joho/godotenv"
)

// ExecLauncher hands targets to a desktop opener such as xdg-open.
type ExecLauncher struct {
	Command string
}

func (l ExecLauncher) Launch(ctx context.Context, target string) error {
	name := l.Command
	if name == "" {
		name = "xdg-open"
	}
	cmd := exec.CommandContext(ctx, name, target)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s %s: %w (%s)", name, target, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// OpenURL lets the launcher stand in for a browser on web hosts.
func (l ExecLauncher) OpenURL(ctx context.Context, url string) error {
	return l.Launch(ctx, url)
}

// DirFS stores files flat inside one documents directory.
type DirFS struct {
	Dir string
}

func (d DirFS) path(name string) (string, error) {
	clean := filepath.Base(filepath.Clean("/" + name))
	if clean == "/" || clean == "." || clean != name {
		return "", fmt.Errorf("invalid file name %q", name)
	}
	return filepath.Join(d.Dir, clean), nil
}

func (d DirFS) WriteFile(_ context.Context, name, content string) error {
	p, err := d.path(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(p, []byte(content), 0o644)
}

func (d DirFS) ReadFile(_ context.Context, name string) (string, error) {
	p, err := d.path(name)
	if err != nil {
		return "", err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (d DirFS) ReadDir(context.Context) ([]string, error) {
	entries, err := os.ReadDir(d.Dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func (d DirFS) RequestPermissions(context.Context) error {
	return os.MkdirAll(d.Dir, 0o755)
}

// DocumentsDir is ~/Documents/Hadassah.
func DocumentsDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "Documents", "Hadassah"), nil
}

// HostProber describes the machine from os-release and DMI data.
type HostProber struct {
	OSRelease string // default /etc/os-release
	DMIDir    string // default /sys/devices/virtual/dmi/id
}

func (h HostProber) Probe(context.Context) (DeviceInfo, error) {
	osRelease := h.OSRelease
	if osRelease == "" {
		osRelease = "/etc/os-release"
	}
	dmi := h.DMIDir
	if dmi == "" {
		dmi = "/sys/devices/virtual/dmi/id"
	}

	rel, err := godotenv.Read(osRelease)
	if err != nil {
		return DeviceInfo{}, fmt.Errorf("read %s: %w", osRelease, err)
	}

	model := readTrimmed(filepath.Join(dmi, "product_name"))
	if model == "" {
		model, _ = os.Hostname()
	}
	if model == "" {
		return DeviceInfo{}, errors.New("cannot determine device model")
	}

	osName := rel["NAME"]
	if osName == "" {
		osName = runtime.GOOS
	}
	version := rel["VERSION_ID"]
	if version == "" {
		version = "unknown"
	}

	return DeviceInfo{
		Platform:        runtime.GOOS,
		Model:           model,
		OperatingSystem: osName,
		OSVersion:       version,
		Manufacturer:    readTrimmed(filepath.Join(dmi, "sys_vendor")),
		IsVirtual:       isVirtualModel(model),
	}, nil
}

func readTrimmed(path string) string {
	b, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

func isVirtualModel(model string) bool {
	m := strings.ToLower(model)
	for _, v := range []string{"virtual", "kvm", "qemu", "vmware", "bochs"} {
		if strings.Contains(m, v) {
			return true
		}
	}
	return false
}
