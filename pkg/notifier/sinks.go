package notifier

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"SuperApp/internal/entity"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

type Publisher interface {
	Publish(ctx context.Context, channel string, message []byte) error
}

const (
	channelQueueSize      = 256
	channelPublishTimeout = 2 * time.Second
)

var ErrSinkQueueFull = errors.New("sink queue full")

// channelSink hands events to a single worker so a slow or unreachable broker
// never holds up the publisher. Events keep their order; when the queue is
// full they are dropped.
type channelSink struct {
	publisher Publisher
	prefix    string
	timeout   time.Duration
	log       *logrus.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan entity.AssistantEvent
	done   chan struct{}
}

// NewChannelSink forwards events as JSON to "<prefix>:<session_id>".
func NewChannelSink(publisher Publisher, prefix string) Sink {
	return newChannelSink(publisher, prefix, channelQueueSize, channelPublishTimeout)
}

func newChannelSink(publisher Publisher, prefix string, size int, timeout time.Duration) *channelSink {
	if prefix == "" {
		prefix = "assistant:events"
	}

	s := &channelSink{
		publisher: publisher,
		prefix:    prefix,
		timeout:   timeout,
		log:       logrus.StandardLogger(),
		queue:     make(chan entity.AssistantEvent, size),
		done:      make(chan struct{}),
	}
	go s.run()

	return s
}

func (s *channelSink) Name() string {
	return "channel"
}

func (s *channelSink) Publish(_ context.Context, event entity.AssistantEvent) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil
	}

	select {
	case s.queue <- event:
		return nil
	default:
		return ErrSinkQueueFull
	}
}

// Close stops accepting events and waits for the queued ones to be sent.
func (s *channelSink) Close() error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()

	<-s.done
	return nil
}

func (s *channelSink) run() {
	defer close(s.done)

	for event := range s.queue {
		if err := s.send(event); err != nil {
			s.log.WithFields(logrus.Fields{
				"session_id": event.SessionID,
				"kind":       event.Kind,
				"error":      err.Error(),
			}).Warn("Failed to publish event to channel")
		}
	}
}

func (s *channelSink) send(event entity.AssistantEvent) error {
	payload, err := jsoniter.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	return s.publisher.Publish(ctx, fmt.Sprintf("%s:%s", s.prefix, event.SessionID), payload)
}

type logSink struct {
	log *logrus.Logger
}

// NewLogSink writes toasts and payment events to the application log.
func NewLogSink(log *logrus.Logger) Sink {
	return &logSink{log: log}
}

func (s *logSink) Name() string {
	return "log"
}

func (s *logSink) Publish(_ context.Context, event entity.AssistantEvent) error {
	if event.Kind != entity.EventToast && event.Kind != entity.EventPayment {
		return nil
	}
	s.log.WithFields(logrus.Fields{
		"session_id": event.SessionID,
		"kind":       event.Kind,
	}).Info(event.Text)
	return nil
}
