package handlerUtil

import (
	"SuperApp/internal/api/assistant"
	"SuperApp/pkg/log"
	"SuperApp/pkg/response"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
	TraceID string `json:"trace_id,omitempty"`
}

type ErrorHandler struct {
	logger *logrus.Logger
}

func New(logger *logrus.Logger) *ErrorHandler {
	return &ErrorHandler{
		logger: logger,
	}
}

var errorCodes = map[error]string{
	assistant.ErrSessionNotFound:     "SESSION_NOT_FOUND",
	assistant.ErrSessionExpired:      "SESSION_EXPIRED",
	assistant.ErrSessionLimitReached: "SESSION_LIMIT_REACHED",
	assistant.ErrCommandNotFound:     "COMMAND_NOT_FOUND",
	assistant.ErrCommandFinalized:    "COMMAND_FINALIZED",
	assistant.ErrInvalidStatusChange: "INVALID_STATUS_CHANGE",
	assistant.ErrCommandCancelled:    "COMMAND_CANCELLED",
	assistant.ErrEmptyCommand:        "EMPTY_COMMAND",
	assistant.ErrPaymentNotFound:     "PAYMENT_NOT_FOUND",
	assistant.ErrNoActivePayment:     "NO_ACTIVE_PAYMENT",
	assistant.ErrDuplicateID:         "DUPLICATE_ID",
	assistant.ErrInvalidAudioFile:    "INVALID_AUDIO_FILE",
	assistant.ErrTranscriptionFailed: "TRANSCRIPTION_FAILED",
	assistant.ErrEmptyTranscript:     "EMPTY_TRANSCRIPT",
	assistant.ErrSpeechDisabled:      "SPEECH_DISABLED",
	assistant.ErrInternalServerError: "INTERNAL_SERVER_ERROR",
}

// Handle maps err to a JSON error body. Known assistant errors keep their
// status and get a stable code; anything else is a 500 with a trace id.
func (h *ErrorHandler) Handle(c *fiber.Ctx, requestID string, err error, path string, operation string) error {
	fields := log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       path,
		"operation":  operation,
	}

	var respErr *response.Error
	if errors.As(err, &respErr) {
		fields["code"] = respErr.Code

		body := ErrorResponse{Error: respErr.Error()}
		for known, code := range errorCodes {
			if errors.Is(err, known) {
				body.Code = code
				break
			}
		}

		if respErr.Code >= fiber.StatusInternalServerError {
			body.TraceID = log.ErrorWithTraceID(fields, "Operation failed with server error")
		} else {
			h.logger.WithFields(fields).Warn("Operation failed with error response")
		}

		return c.Status(respErr.Code).JSON(body)
	}

	traceID := log.ErrorWithTraceID(fields, "Unexpected error")

	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error:   "An unexpected error occurred",
		Code:    "INTERNAL_SERVER_ERROR",
		TraceID: traceID,
	})
}

func (h *ErrorHandler) HandleValidationError(c *fiber.Ctx, requestID string, err error, path string) error {
	h.logger.WithFields(log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       path,
	}).Warn("Validation failed")

	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error: "Validation failed: " + err.Error(),
		Code:  "VALIDATION_ERROR",
	})
}

func (h *ErrorHandler) HandleRequestTimeout(c *fiber.Ctx) error {
	return c.Status(fiber.StatusRequestTimeout).JSON(utils.StatusMessage(fiber.StatusRequestTimeout))
}

func (h *ErrorHandler) HandleUnauthorized(c *fiber.Ctx, requestID string, message string) error {
	h.logger.WithFields(log.Fields{
		"request_id": requestID,
		"path":       c.Path(),
		"message":    message,
	}).Warn("Unauthorized access")

	return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
		Error: message,
		Code:  "UNAUTHORIZED",
	})
}

func (h *ErrorHandler) HandleSuccess(c *fiber.Ctx, statusCode int, data interface{}) error {
	if data == nil {
		return c.SendStatus(statusCode)
	}
	return c.Status(statusCode).JSON(data)
}
