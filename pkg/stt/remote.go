package stt

import (
	"context"
	"errors"
	"fmt"
	"io"
	log "log/slog"
	"os"

	openai "github.com/openai/openai-go/v3"

	"hadassah/pkg/audioconv"
)

// Remote uploads the recording as WAV to the OpenAI transcription API.
type Remote struct {
	client   openai.Client
	model    openai.AudioModel
	language string
}

func NewRemote(client openai.Client, model, language string) *Remote {
	if model == "" {
		model = string(openai.AudioModelWhisper1)
	}
	if language == "auto" {
		language = ""
	}
	return &Remote{client: client, model: openai.AudioModel(model), language: language}
}

func (r *Remote) TranscribePCM(ctx context.Context, pcm []float32) (string, error) {
	if len(pcm) == 0 {
		return "", errors.New("no audio samples provided")
	}

	f, err := os.CreateTemp("", "hadassah-*.wav")
	if err != nil {
		return "", fmt.Errorf("temp wav: %w", err)
	}
	defer os.Remove(f.Name())
	defer f.Close()

	if err := audioconv.EncodeWAV(f, pcm); err != nil {
		return "", err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	params := openai.AudioTranscriptionNewParams{
		File:  openai.File(f, "speech.wav", "audio/wav"),
		Model: r.model,
	}
	if r.language != "" {
		params.Language = openai.String(r.language)
	}

	resp, err := r.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("transcription: %w", err)
	}

	log.Debug("Remote transcription done", "model", r.model, "chars", len(resp.Text))
	return resp.Text, nil
}
