// Package audioconv decodes uploaded recordings (wav, mp3, ogg vorbis,
// ogg opus) to 16 kHz mono float PCM and encodes PCM back to WAV.
package audioconv

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	popus "github.com/pekim/opus"
)

const TargetRate = 16000

type Options struct {
	MaxSamples int // 0 = no limit
}

type Format string

const (
	WAV  Format = "wav"
	MP3  Format = "mp3"
	OGG  Format = "ogg"
	Auto Format = ""
)

// FormatFromHint maps a file name, extension or MIME type to a Format.
func FormatFromHint(hint string) Format {
	h := strings.ToLower(strings.TrimSpace(hint))
	if i := strings.IndexByte(h, ';'); i >= 0 {
		h = h[:i]
	}
	switch {
	case h == "":
		return Auto
	case strings.Contains(h, "wav"):
		return WAV
	case strings.Contains(h, "mp3"), strings.Contains(h, "mpeg"):
		return MP3
	case strings.Contains(h, "ogg"), strings.Contains(h, "oga"), strings.Contains(h, "opus"):
		return OGG
	}
	return Auto
}

func DecodeFile(path string, opt Options) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f, filepath.Ext(path), opt)
}

// Decode reads a whole recording. When hint does not name a format the
// stream is sniffed by its magic bytes.
func Decode(r io.ReadSeeker, hint string, opt Options) ([]float32, error) {
	format := FormatFromHint(hint)
	if format == Auto {
		var err error
		if format, err = sniff(r); err != nil {
			return nil, err
		}
	}

	var (
		pcm []float32
		err error
	)
	switch format {
	case WAV:
		pcm, err = decodeWAV(r)
	case MP3:
		pcm, err = decodeMP3(r)
	case OGG:
		pcm, err = decodeOgg(r)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", format, err)
	}

	if opt.MaxSamples > 0 && len(pcm) > opt.MaxSamples {
		pcm = pcm[:opt.MaxSamples]
	}
	return pcm, nil
}

func sniff(r io.ReadSeeker) (Format, error) {
	magic, _ := bufio.NewReader(r).Peek(4)
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return Auto, err
	}
	switch {
	case string(magic) == "RIFF":
		return WAV, nil
	case string(magic) == "OggS":
		return OGG, nil
	case len(magic) >= 3 && (string(magic[:3]) == "ID3" || (magic[0] == 0xFF && magic[1]&0xE0 == 0xE0)):
		return MP3, nil
	}
	return Auto, errors.New("unsupported audio format (want wav, mp3 or ogg)")
}

func decodeWAV(r io.ReadSeeker) ([]float32, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, errors.New("invalid wav")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, err
	}
	if buf == nil || len(buf.Data) == 0 {
		return nil, errors.New("empty wav")
	}

	depth := int(dec.BitDepth)
	if depth == 0 {
		depth = 16
	}
	channels, rate := 1, 44100
	if buf.Format != nil {
		if buf.Format.NumChannels > 0 {
			channels = buf.Format.NumChannels
		}
		if buf.Format.SampleRate > 0 {
			rate = buf.Format.SampleRate
		}
	}

	scale := 1.0 / float64(int64(1)<<(depth-1))
	x := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		x[i] = float32(clamp(float64(v) * scale))
	}
	return toTarget(x, channels, rate), nil
}

func decodeMP3(r io.Reader) ([]float32, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, err
	}
	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, err
	}
	samples := make([]int16, len(raw)/2)
	if err := binary.Read(bytes.NewReader(raw[:len(samples)*2]), binary.LittleEndian, samples); err != nil {
		return nil, err
	}

	rate := dec.SampleRate()
	if rate <= 0 {
		rate = 44100
	}
	// go-mp3 always yields interleaved stereo
	return toTarget(int16ToFloat(samples), 2, rate), nil
}

// decodeOgg tries Vorbis first, then Opus.
func decodeOgg(r io.ReadSeeker) ([]float32, error) {
	pcm, format, verr := oggvorbis.ReadAll(r)
	if verr == nil && format != nil && format.Channels > 0 && format.SampleRate > 0 {
		return toTarget(pcm, format.Channels, format.SampleRate), nil
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	out, oerr := decodeOpus(r)
	if oerr != nil {
		return nil, fmt.Errorf("not vorbis (%v) nor opus (%w)", verr, oerr)
	}
	return out, nil
}

func decodeOpus(r io.ReadSeeker) ([]float32, error) {
	dec, err := popus.NewDecoder(r)
	if err != nil {
		return nil, err
	}
	defer dec.Destroy()

	channels := dec.ChannelCount()
	if channels <= 0 {
		channels = 1
	}

	var (
		pcm []float32
		buf = make([]int16, 24000*channels)
	)
	for {
		n, err := dec.Read(buf)
		if n > 0 {
			pcm = append(pcm, int16ToFloat(buf[:n*channels])...)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	if len(pcm) == 0 {
		return nil, errors.New("empty opus stream")
	}
	// opus always decodes at 48 kHz
	return toTarget(pcm, channels, 48000), nil
}

// EncodeWAV writes 16 kHz mono PCM as 16-bit WAV.
func EncodeWAV(w io.WriteSeeker, pcm []float32) error {
	data := make([]int, len(pcm))
	for i, v := range pcm {
		data[i] = int(clamp(float64(v)) * 32767)
	}

	enc := wav.NewEncoder(w, TargetRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: TargetRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("encode wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalize wav: %w", err)
	}
	return nil
}
