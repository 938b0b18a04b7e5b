package config

import (
	assistantHandler "SuperApp/internal/api/assistant/handler"
	assistantRepository "SuperApp/internal/api/assistant/repository"
	assistantService "SuperApp/internal/api/assistant/service"
	"SuperApp/internal/middleware"
	"SuperApp/pkg/audio"
	"SuperApp/pkg/nlp"
	"SuperApp/pkg/notifier"
	"SuperApp/pkg/redis"
	"SuperApp/pkg/s3"
	"SuperApp/pkg/utils"
	"context"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

type ServerOption func(*Server) error

type Server struct {
	engine           *fiber.App
	log              *logrus.Logger
	middleware       middleware.Middleware
	validator        *validator.Validate
	utils            utils.IUtils
	handlers         []handler
	redisServer      redis.IRedis
	s3Client         s3.ItfS3
	hub              *notifier.Hub
	transcriber      audio.ITranscriber
	synthesizer      audio.ISynthesizer
	assistantConfig  *assistantService.AssistantConfig
	assistantService assistantService.IAssistantService
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if server.assistantConfig == nil {
		return nil, fmt.Errorf("assistant config is required")
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

func WithAssistantConfig() ServerOption {
	return func(s *Server) error {
		if s.validator == nil {
			return fmt.Errorf("validator must be initialized before assistant config")
		}
		cfg, err := LoadAssistantConfig(s.validator)
		if err != nil {
			return err
		}
		s.assistantConfig = cfg
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		cfg := middleware.DefaultConfig()
		perSecond, err := envInt("RATE_LIMIT_PER_SECOND", int(cfg.RequestsPerSecond))
		if err != nil {
			return err
		}
		burst, err := envInt("RATE_LIMIT_BURST", cfg.Burst)
		if err != nil {
			return err
		}
		cfg.RequestsPerSecond = rate.Limit(perSecond)
		cfg.Burst = burst

		s.middleware = middleware.NewWithConfig(s.log, cfg)
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New()
		return nil
	}
}

// WithNotifier builds the event hub. The log sink is always attached; the
// Redis sink only when a client was configured.
func WithNotifier() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before notifier")
		}
		s.hub = notifier.New(s.log, notifier.NewLogSink(s.log))
		if s.redisServer != nil {
			s.hub.AddSink(notifier.NewChannelSink(s.redisServer, os.Getenv("REDIS_EVENT_PREFIX")))
		}
		return nil
	}
}

func WithRedisServer(redisServer redis.IRedis) ServerOption {
	return func(s *Server) error {
		s.redisServer = redisServer
		return nil
	}
}

// WithS3Client is optional: without a bucket, synthesized speech is skipped.
func WithS3Client() ServerOption {
	return func(s *Server) error {
		client, err := s3.New()
		if err != nil {
			if s.log != nil {
				s.log.Warnf("S3 client disabled: %v", err)
			}
			return nil
		}
		s.s3Client = client
		return nil
	}
}

// WithSpeech wires Whisper transcription and TTS when OPENAI_API_KEY is set.
func WithSpeech() ServerOption {
	return func(s *Server) error {
		if transcriber := audio.NewTranscriptionService(); transcriber != nil {
			s.transcriber = transcriber
		}
		if synthesizer := audio.NewTTSService(); synthesizer != nil {
			s.synthesizer = synthesizer
		}
		if s.transcriber == nil && s.log != nil {
			s.log.Warn("OPENAI_API_KEY not set, voice input disabled")
		}
		return nil
	}
}

func (s *Server) RegisterHandler() {
	if s.hub == nil {
		s.hub = notifier.New(s.log, notifier.NewLogSink(s.log))
	}

	// Assistant Domain
	assistantRepo := assistantRepository.New(s.log)
	extractor := nlp.NewExtractor(s.assistantConfig.LocalCurrency)
	matcher := nlp.NewMatcher(nlp.DefaultRules())
	s.assistantService = assistantService.NewAssistantService(
		s.log,
		assistantRepo,
		matcher,
		extractor,
		s.utils,
		s.hub,
		s.transcriber,
		s.assistantConfig,
	)

	if s.synthesizer != nil && s.s3Client != nil {
		s.hub.AddSink(assistantService.NewSpeechSink(s.log, s.synthesizer, s.s3Client, s.hub, s.assistantConfig.AudioURLTTL))
		s.log.Info("Speech output enabled")
	}

	assistantHandlers := assistantHandler.New(s.log, s.validator, s.middleware, s.assistantService)

	s.setupHealthCheck()
	s.handlers = append(s.handlers, assistantHandlers)
}

// Run serves HTTP and runs the session janitor until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.engine.Use(s.middleware.NewLoggingMiddleware)
	router := s.engine.Group("/api/v1")

	for _, h := range s.handlers {
		h.Start(router)
	}

	go s.assistantService.Run(ctx)

	go func() {
		<-ctx.Done()
		if err := s.engine.Shutdown(); err != nil {
			s.log.Errorf("Failed to shut down fiber: %v", err)
		}
		s.hub.Close()
		if s.redisServer != nil {
			_ = s.redisServer.Close()
		}
	}()

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "3000"
	}

	return s.engine.Listen(fmt.Sprintf(":%s", port))
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"message": "Server is Healthy!",
		})
	})
}
