package audio

import (
	"context"
	"io"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

type ISynthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

type TTSService struct {
	client *openai.Client
	voice  openai.SpeechVoice
}

// NewTTSService returns nil when OPENAI_API_KEY is unset.
func NewTTSService() *TTSService {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil
	}

	voice := openai.SpeechVoice(os.Getenv("OPENAI_TTS_VOICE"))
	if voice == "" {
		voice = openai.VoiceAlloy
	}

	return &TTSService{
		client: openai.NewClient(apiKey),
		voice:  voice,
	}
}

// Synthesize returns mp3 audio for text.
func (tts *TTSService) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if tts == nil || tts.client == nil {
		return nil, ErrSpeechNotConfigured
	}

	resp, err := tts.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.TTSModel1,
		Input:          text,
		Voice:          tts.voice,
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return nil, err
	}
	defer resp.Close()

	return io.ReadAll(resp)
}
