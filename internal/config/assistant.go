package config

import (
	assistantService "SuperApp/internal/api/assistant/service"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	defaultHandlerLatency  = 800 * time.Millisecond
	defaultSettlementDelay = 5 * time.Second
	defaultSessionTTL      = 12 * time.Hour
	defaultJanitorInterval = time.Minute
	defaultAudioURLTTL     = 15 * time.Minute
	defaultLocalCurrency   = "CNY"
	defaultDisplayLimit    = 10
	defaultMaxSessions     = 1000
)

// LoadAssistantConfig reads the ASSISTANT_* variables, falling back to the
// defaults above, and validates the result.
func LoadAssistantConfig(validate *validator.Validate) (*assistantService.AssistantConfig, error) {
	cfg := &assistantService.AssistantConfig{
		LocalCurrency: strings.ToUpper(envString("ASSISTANT_LOCAL_CURRENCY", defaultLocalCurrency)),
	}

	var err error
	if cfg.HandlerLatency, err = envDuration("ASSISTANT_HANDLER_LATENCY", defaultHandlerLatency); err != nil {
		return nil, err
	}
	if cfg.SettlementDelay, err = envDuration("ASSISTANT_SETTLEMENT_DELAY", defaultSettlementDelay); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = envDuration("ASSISTANT_SESSION_TTL", defaultSessionTTL); err != nil {
		return nil, err
	}
	if cfg.JanitorInterval, err = envDuration("ASSISTANT_JANITOR_INTERVAL", defaultJanitorInterval); err != nil {
		return nil, err
	}
	if cfg.AudioURLTTL, err = envDuration("ASSISTANT_AUDIO_URL_TTL", defaultAudioURLTTL); err != nil {
		return nil, err
	}
	if cfg.DisplayLimit, err = envInt("ASSISTANT_DISPLAY_LIMIT", defaultDisplayLimit); err != nil {
		return nil, err
	}
	if cfg.MaxSessions, err = envInt("ASSISTANT_MAX_SESSIONS", defaultMaxSessions); err != nil {
		return nil, err
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid assistant config: %w", err)
	}

	return cfg, nil
}

func envString(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func envInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
