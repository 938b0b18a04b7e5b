package main

import (
	"SuperApp/internal/config"
	"SuperApp/pkg/log"
	"SuperApp/pkg/redis"
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	logger, envErr := bootstrapLogger()
	if envErr != nil {
		logger.Warnf("No .env file loaded: %v", envErr)
	}

	fiberApp := config.NewFiber(logger)
	validator := config.NewValidator()
	redisServer := redis.New()

	server, err := config.NewServer(
		config.WithFiber(fiberApp),
		config.WithLogger(logger),
		config.WithValidator(validator),
		config.WithAssistantConfig(),
		config.WithRedisServer(redisServer),
		config.WithNotifier(),
		config.WithMiddleware(),
		config.WithS3Client(),
		config.WithSpeech(),
		config.WithUtils(),
	)
	if err != nil {
		logger.Fatal(err)
	}

	server.RegisterHandler()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := server.Run(ctx); err != nil {
			logger.Fatalf("Error starting server: %v", err)
		}
	}()

	logger.Info("Server started successfully")

	<-ctx.Done()
	logger.Info("Shutting down server...")
}

// bootstrapLogger loads .env before the logger reads LOG_LEVEL, LOG_NO_COLOR
// and APP_ENV. A missing file is reported, not fatal.
func bootstrapLogger(envFiles ...string) (*logrus.Logger, error) {
	envErr := godotenv.Load(envFiles...)
	return log.NewLogger(), envErr
}
