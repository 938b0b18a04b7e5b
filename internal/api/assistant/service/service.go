package assistantService

import (
	"SuperApp/internal/api/assistant"
	assistantRepository "SuperApp/internal/api/assistant/repository"
	"SuperApp/internal/entity"
	"SuperApp/pkg/audio"
	"SuperApp/pkg/nlp"
	"SuperApp/pkg/notifier"
	"SuperApp/pkg/utils"
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type IAssistantService interface {
	CreateSession(ctx context.Context) (*assistant.CreateSessionResponse, error)
	GetSession(ctx context.Context, sessionID string) (*entity.AssistantSession, error)
	CloseSession(ctx context.Context, sessionID string) error

	Submit(ctx context.Context, sessionID string, text string) (*assistant.CommandResponse, error)
	SubmitVoice(ctx context.Context, sessionID string, req assistant.SubmitVoiceRequest) (*assistant.CommandResponse, error)

	History(ctx context.Context, sessionID string, all bool) (*assistant.HistoryResponse, error)
	ActivePayment(ctx context.Context, sessionID string) (*assistant.PaymentResponse, error)
	GetPayment(ctx context.Context, sessionID string, paymentID string) (*assistant.PaymentResponse, error)

	Intents() assistant.IntentsResponse
	Subscribe(ctx context.Context, sessionID string) (<-chan entity.AssistantEvent, func(), error)

	Run(ctx context.Context)
	Shutdown()
}

type AssistantConfig struct {
	HandlerLatency  time.Duration `json:"handler_latency" validate:"gte=0"`
	SettlementDelay time.Duration `json:"settlement_delay" validate:"gt=0"`
	SessionTTL      time.Duration `json:"session_ttl" validate:"gt=0"`
	JanitorInterval time.Duration `json:"janitor_interval" validate:"gt=0"`
	AudioURLTTL     time.Duration `json:"audio_url_ttl" validate:"gt=0"`
	LocalCurrency   string        `json:"local_currency" validate:"required,uppercase,min=3,max=4"`
	DisplayLimit    int           `json:"display_limit" validate:"gt=0"`
	MaxSessions     int           `json:"max_sessions" validate:"gte=0"`
}

type assistantService struct {
	log         *logrus.Logger
	repo        assistantRepository.Repository
	matcher     nlp.IMatcher
	extractor   nlp.IExtractor
	utils       utils.IUtils
	notifier    notifier.INotifier
	transcriber audio.ITranscriber
	config      *AssistantConfig
	intents     map[entity.IntentID]intentDef

	mu       sync.RWMutex
	sessions map[string]*session
}

func NewAssistantService(
	log *logrus.Logger,
	repo assistantRepository.Repository,
	matcher nlp.IMatcher,
	extractor nlp.IExtractor,
	utils utils.IUtils,
	notifier notifier.INotifier,
	transcriber audio.ITranscriber,
	config *AssistantConfig,
) IAssistantService {
	s := &assistantService{
		log:         log,
		repo:        repo,
		matcher:     matcher,
		extractor:   extractor,
		utils:       utils,
		notifier:    notifier,
		transcriber: transcriber,
		config:      config,
		sessions:    make(map[string]*session),
	}
	s.intents = s.intentTable()

	return s
}

func (s *assistantService) Intents() assistant.IntentsResponse {
	rules := s.matcher.Rules()
	out := make([]assistant.IntentDescriptor, 0, len(rules))
	for _, rule := range rules {
		out = append(out, assistant.IntentDescriptor{
			ID:       rule.ID,
			Category: rule.Category,
			Keywords: rule.Keywords,
			Examples: rule.Examples,
		})
	}
	return assistant.IntentsResponse{Intents: out}
}
