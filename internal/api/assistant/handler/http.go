package assistantHandler

import (
	assistantService "SuperApp/internal/api/assistant/service"
	"SuperApp/internal/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

type AssistantHandler struct {
	log              *logrus.Logger
	validator        *validator.Validate
	middleware       middleware.Middleware
	assistantService assistantService.IAssistantService
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	as assistantService.IAssistantService,
) *AssistantHandler {
	return &AssistantHandler{
		log:              log,
		validator:        validate,
		middleware:       middleware,
		assistantService: as,
	}
}

func (h *AssistantHandler) Start(srv fiber.Router) {
	assistant := srv.Group("/assistant")
	assistant.Use(h.middleware.NewRateLimiter)

	assistant.Get("/intents", h.GetIntents)
	assistant.Post("/sessions", h.CreateSession)

	// Everything below is bound to the session carried by the token.
	auth := h.middleware.NewTokenMiddleware
	assistant.Get("/sessions/current", auth, h.GetSession)
	assistant.Delete("/sessions", auth, h.CloseSession)

	assistant.Post("/commands", auth, h.SubmitCommand)
	assistant.Post("/voice", auth, h.SubmitVoice)
	assistant.Get("/history", auth, h.GetHistory)

	assistant.Get("/payments/active", auth, h.GetActivePayment)
	assistant.Get("/payments/:payment_id", auth, h.GetPayment)

	assistant.Get("/stream", auth, h.UpgradeStream, websocket.New(h.Stream))
}
