package assistant

import "SuperApp/pkg/response"

var (
	ErrSessionNotFound     = response.NewError(404, "session not found")
	ErrSessionExpired      = response.NewError(401, "session expired")
	ErrSessionLimitReached = response.NewError(503, "too many active sessions")
	ErrCommandNotFound     = response.NewError(404, "command not found")
	ErrCommandFinalized    = response.NewError(409, "command already finalized")
	ErrInvalidStatusChange = response.NewError(409, "invalid command status transition")
	ErrCommandCancelled    = response.NewError(408, "command cancelled before completion")
	ErrEmptyCommand        = response.NewError(400, "command text is empty")
	ErrPaymentNotFound     = response.NewError(404, "payment request not found")
	ErrNoActivePayment     = response.NewError(404, "no active payment request")
	ErrDuplicateID         = response.NewError(409, "duplicate id")
	ErrInvalidAudioFile    = response.NewError(400, "invalid audio file")
	ErrTranscriptionFailed = response.NewError(500, "failed to transcribe audio")
	ErrEmptyTranscript     = response.NewError(422, "no speech recognized")
	ErrSpeechDisabled      = response.NewError(503, "speech services are not configured")
	ErrInternalServerError = response.NewError(500, "internal server error")
)
