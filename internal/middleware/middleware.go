package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

type Middleware interface {
	NewRateLimiter(ctx *fiber.Ctx) error
	NewTokenMiddleware(ctx *fiber.Ctx) error
	NewLoggingMiddleware(ctx *fiber.Ctx) error
	GetRequestID(ctx *fiber.Ctx) string
}

// Config tunes the per-IP limiter shared by every assistant route.
type Config struct {
	RequestsPerSecond rate.Limit
	Burst             int
}

func DefaultConfig() Config {
	return Config{RequestsPerSecond: 20, Burst: 40}
}

type middleware struct {
	token             *tokenMiddleware
	rateLimitter      *rateLimiter
	loggingMiddleware *loggingMiddleware
	log               *logrus.Logger
}

func New(logger *logrus.Logger) Middleware {
	return NewWithConfig(logger, DefaultConfig())
}

func NewWithConfig(logger *logrus.Logger, cfg Config) Middleware {
	if cfg.RequestsPerSecond <= 0 || cfg.Burst <= 0 {
		cfg = DefaultConfig()
	}

	return &middleware{
		token:             newTokenMiddleware(),
		rateLimitter:      newRateLimiter(cfg.RequestsPerSecond, cfg.Burst),
		loggingMiddleware: newLoggingMiddleware(logger),
		log:               logger,
	}
}

func (m *middleware) GetRequestID(ctx *fiber.Ctx) string {
	requestID, ok := ctx.Locals(RequestIDKey).(string)
	if !ok || requestID == "" {
		return "unknown"
	}
	return requestID
}
