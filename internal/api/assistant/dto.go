package assistant

import (
	"mime/multipart"
	"time"

	"SuperApp/internal/entity"
)

type CreateSessionResponse struct {
	SessionID string    `json:"session_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type SubmitCommandRequest struct {
	Text string `json:"text" validate:"required,min=1,max=500"`
}

type SubmitVoiceRequest struct {
	AudioFile *multipart.FileHeader `json:"audio_file" validate:"required"`
}

type CommandResponse struct {
	Command       entity.Command         `json:"command"`
	Transcript    string                 `json:"transcript,omitempty"`
	Awaiting      *entity.AwaitingSlot   `json:"awaiting,omitempty"`
	ActivePayment *entity.PaymentRequest `json:"active_payment,omitempty"`
}

type HistoryResponse struct {
	Commands []entity.Command `json:"commands"`
	Total    int              `json:"total"`
	Limit    int              `json:"limit"`
}

type PaymentResponse struct {
	Payment entity.PaymentRequest `json:"payment"`
	Active  bool                  `json:"active"`
}

type IntentsResponse struct {
	Intents []IntentDescriptor `json:"intents"`
}

type IntentDescriptor struct {
	ID       entity.IntentID `json:"id"`
	Category string          `json:"category"`
	Keywords []string        `json:"keywords"`
	Examples []string        `json:"examples"`
}

// StreamMessage is a client frame on the event stream.
type StreamMessage struct {
	Type string `json:"type" validate:"required,oneof=command ping"`
	Text string `json:"text" validate:"required_if=Type command,max=500"`
}

// StreamFrame is a server frame on the event stream.
type StreamFrame struct {
	Type   string                 `json:"type"`
	Event  *entity.AssistantEvent `json:"event,omitempty"`
	Result *CommandResponse       `json:"result,omitempty"`
	Error  string                 `json:"error,omitempty"`
	Code   int                    `json:"code,omitempty"`
}
