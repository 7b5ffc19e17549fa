package audioconv

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sine(n int, freq float64) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(0.5 * math.Sin(2*math.Pi*freq*float64(i)/TargetRate))
	}
	return out
}

func TestFormatFromHint(t *testing.T) {
	cases := map[string]Format{
		"":                         Auto,
		".wav":                     WAV,
		"audio/wav":                WAV,
		"voice.MP3":                MP3,
		"audio/mpeg":               MP3,
		"audio/ogg; codecs=opus":   OGG,
		"clip.opus":                OGG,
		"application/octet-stream": Auto,
	}
	for hint, want := range cases {
		assert.Equal(t, want, FormatFromHint(hint), hint)
	}
}

func TestWAVRoundTrip(t *testing.T) {
	pcm := sine(TargetRate/4, 440)
	path := filepath.Join(t.TempDir(), "clip.wav")

	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, EncodeWAV(f, pcm))
	require.NoError(t, f.Close())

	got, err := DecodeFile(path)
	require.NoError(t, err)
	require.Len(t, got, len(pcm))
	for i := range pcm {
		assert.InDelta(t, pcm[i], got[i], 1e-3)
	}
}

func TestDecodeSniffsWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "noext")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, EncodeWAV(f, sine(800, 300)))
	require.NoError(t, f.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	got, err := Decode(bytes.NewReader(raw), "", Options{MaxSamples: 100})
	require.NoError(t, err)
	assert.Len(t, got, 100)
}

func TestDecodeRejectsUnknown(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("plain text, not audio")), "", Options{})
	assert.Error(t, err)
}

func TestDownmix(t *testing.T) {
	assert.Equal(t, []float32{0.5, 0}, Downmix([]float32{1, 0, 0.5, -0.5}, 2))
	mono := []float32{1, 2, 3}
	assert.Equal(t, mono, Downmix(mono, 1))
}

func TestResample(t *testing.T) {
	in := make([]float32, 48000)
	for i := range in {
		in[i] = 0.25
	}
	out := Resample(in, 48000, TargetRate)
	assert.Len(t, out, TargetRate)
	for _, v := range out {
		assert.InDelta(t, 0.25, v, 1e-6)
	}

	assert.Equal(t, []float32{0, 0.5, 1, 1}, Resample([]float32{0, 1}, 1, 2))
	assert.Equal(t, in, Resample(in, TargetRate, TargetRate))
}
