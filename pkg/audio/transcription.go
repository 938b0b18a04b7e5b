package audio

import (
	"context"
	"errors"
	"io"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

var ErrSpeechNotConfigured = errors.New("speech service not configured")

type ITranscriber interface {
	Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error)
}

type TranscriptionService struct {
	client   *openai.Client
	language string
}

// NewTranscriptionService returns nil when OPENAI_API_KEY is unset.
func NewTranscriptionService() *TranscriptionService {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil
	}

	language := os.Getenv("OPENAI_TRANSCRIPTION_LANGUAGE")
	if language == "" {
		language = "zh"
	}

	return &TranscriptionService{
		client:   openai.NewClient(apiKey),
		language: language,
	}
}

// Transcribe returns the final transcript of a complete utterance.
func (t *TranscriptionService) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	if t == nil || t.client == nil {
		return "", ErrSpeechNotConfigured
	}

	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: filename,
		Reader:   audio,
		Language: t.language,
	})
	if err != nil {
		return "", err
	}

	return resp.Text, nil
}
