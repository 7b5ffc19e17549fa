package capability

import (
	"context"
	"errors"
	"time"
)

var errBridge = errors.New("bridge exploded")

type fakeOpener struct {
	urls []string
	err  error
}

func (f *fakeOpener) OpenURL(_ context.Context, url string) error {
	f.urls = append(f.urls, url)
	return f.err
}

type fakeVibrator struct {
	pulses []time.Duration
	err    error
}

func (f *fakeVibrator) Vibrate(_ context.Context, d time.Duration) error {
	f.pulses = append(f.pulses, d)
	return f.err
}

type fakeLauncher struct {
	targets []string
	fail    map[string]bool
}

func (f *fakeLauncher) Launch(_ context.Context, target string) error {
	f.targets = append(f.targets, target)
	if f.fail[target] {
		return errBridge
	}
	return nil
}

type fakeFiles struct {
	files map[string]string
	err   error
}

func (f *fakeFiles) WriteFile(_ context.Context, name, content string) error {
	if f.err != nil {
		return f.err
	}
	f.files[name] = content
	return nil
}

func (f *fakeFiles) ReadFile(_ context.Context, name string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	v, ok := f.files[name]
	if !ok {
		return "", errors.New("no such file")
	}
	return v, nil
}

func (f *fakeFiles) ReadDir(context.Context) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	var names []string
	for k := range f.files {
		names = append(names, k)
	}
	return names, nil
}

func (f *fakeFiles) RequestPermissions(context.Context) error { return f.err }

type fakeProber struct {
	info DeviceInfo
	err  error
}

func (f fakeProber) Probe(context.Context) (DeviceInfo, error) { return f.info, f.err }

type fakeHaptics struct {
	impacts []Intensity
	err     error
}

func (f *fakeHaptics) Impact(_ context.Context, i Intensity) error {
	f.impacts = append(f.impacts, i)
	return f.err
}

type fakeMixer struct {
	levels []float64
	err    error
}

func (f *fakeMixer) SetVolume(_ context.Context, level float64) error {
	f.levels = append(f.levels, level)
	return f.err
}

// failingStore fails every operation.
type failingStore struct{}

func (failingStore) Get(context.Context, string) (string, error) { return "", errBridge }
func (failingStore) Set(context.Context, string, string) error { return errBridge }
func (failingStore) Remove(context.Context, string) error { return errBridge }
func (failingStore) Keys(context.Context, string) ([]string, error) { return nil, errBridge }
