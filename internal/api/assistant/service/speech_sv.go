package assistantService

import (
	"SuperApp/internal/api/assistant"
	"SuperApp/internal/entity"
	"SuperApp/pkg/audio"
	contextPkg "SuperApp/pkg/context"
	"SuperApp/pkg/notifier"
	"SuperApp/pkg/s3"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const speechTimeout = 30 * time.Second

// SubmitVoice transcribes a complete utterance and submits the transcript
// like typed text.
func (s *assistantService) SubmitVoice(ctx context.Context, sessionID string, req assistant.SubmitVoiceRequest) (*assistant.CommandResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if _, err := s.getSession(ctx, sessionID); err != nil {
		return nil, err
	}

	if s.transcriber == nil {
		return nil, assistant.ErrSpeechDisabled
	}

	if err := s.utils.ValidateAudioFile(req.AudioFile); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Rejected audio upload")
		return nil, assistant.ErrInvalidAudioFile
	}

	file, err := req.AudioFile.Open()
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to open audio upload")
		return nil, assistant.ErrInvalidAudioFile
	}
	defer file.Close()

	transcript, err := s.transcriber.Transcribe(ctx, req.AudioFile.Filename, file)
	if err != nil {
		if errors.Is(err, audio.ErrSpeechNotConfigured) {
			return nil, assistant.ErrSpeechDisabled
		}
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"session_id": sessionID,
			"error":      err.Error(),
		}).Error("Failed to transcribe audio")
		return nil, assistant.ErrTranscriptionFailed
	}

	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return nil, assistant.ErrEmptyTranscript
	}

	resp, err := s.Submit(ctx, sessionID, transcript)
	if err != nil {
		return nil, err
	}
	resp.Transcript = transcript

	return resp, nil
}

// speechSink voices every response event: the text is synthesised, stored in
// S3 and announced as a speech event carrying a presigned URL.
type speechSink struct {
	log         *logrus.Logger
	synthesizer audio.ISynthesizer
	storage     s3.ItfS3
	publisher   interface {
		Publish(ctx context.Context, event entity.AssistantEvent)
	}
	urlTTL time.Duration
}

func NewSpeechSink(
	log *logrus.Logger,
	synthesizer audio.ISynthesizer,
	storage s3.ItfS3,
	hub notifier.INotifier,
	urlTTL time.Duration,
) notifier.Sink {
	return &speechSink{
		log:         log,
		synthesizer: synthesizer,
		storage:     storage,
		publisher:   hub,
		urlTTL:      urlTTL,
	}
}

func (s *speechSink) Name() string {
	return "speech"
}

// Publish returns immediately; synthesis happens on its own goroutine.
func (s *speechSink) Publish(ctx context.Context, event entity.AssistantEvent) error {
	if event.Kind != entity.EventResponse || strings.TrimSpace(event.Text) == "" {
		return nil
	}

	go s.speak(context.WithoutCancel(ctx), event)
	return nil
}

func (s *speechSink) speak(ctx context.Context, event entity.AssistantEvent) {
	ctx, cancel := context.WithTimeout(ctx, speechTimeout)
	defer cancel()

	fields := logrus.Fields{
		"request_id": contextPkg.GetRequestID(ctx),
		"session_id": event.SessionID,
	}

	clip, err := s.synthesizer.Synthesize(ctx, event.Text)
	if err != nil {
		fields["error"] = err.Error()
		s.log.WithFields(fields).Warn("Failed to synthesize response")
		return
	}

	name, _ := event.Data["command_id"].(string)
	if name == "" {
		name = fmt.Sprintf("%d", event.At.UnixNano())
	}

	key, err := s.storage.UploadBytes(ctx, fmt.Sprintf("%s/%s.mp3", event.SessionID, name), clip, "audio/mpeg")
	if err != nil {
		fields["error"] = err.Error()
		s.log.WithFields(fields).Warn("Failed to store synthesized audio")
		return
	}

	audioURL, err := s.storage.PresignUrl(key, s.urlTTL)
	if err != nil {
		fields["error"] = err.Error()
		s.log.WithFields(fields).Warn("Failed to presign audio url")
		return
	}

	s.publisher.Publish(ctx, entity.AssistantEvent{
		SessionID: event.SessionID,
		Kind:      entity.EventSpeech,
		Text:      event.Text,
		Data: map[string]any{
			"audio_url":  audioURL,
			"command_id": name,
		},
	})
}
