package notifier

import (
	"context"
	"io"
	"sync"
	"time"

	"SuperApp/internal/entity"

	"github.com/sirupsen/logrus"
)

const subscriberBuffer = 32

// Sink receives every published event after local subscribers. The hub calls
// sinks inline, so a sink talking to a remote system must queue or spawn.
type Sink interface {
	Name() string
	Publish(ctx context.Context, event entity.AssistantEvent) error
}

type INotifier interface {
	Publish(ctx context.Context, event entity.AssistantEvent)
	Subscribe(sessionID string) (<-chan entity.AssistantEvent, func())
	AddSink(sink Sink)
}

type Hub struct {
	log         *logrus.Logger
	mu          sync.RWMutex
	subscribers map[string]map[uint64]chan entity.AssistantEvent
	sinks       []Sink
	nextID      uint64
}

func New(log *logrus.Logger, sinks ...Sink) *Hub {
	return &Hub{
		log:         log,
		subscribers: make(map[string]map[uint64]chan entity.AssistantEvent),
		sinks:       sinks,
	}
}

func (h *Hub) AddSink(sink Sink) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sinks = append(h.sinks, sink)
}

// Publish is fire-and-forget: a full subscriber buffer drops the event and a
// failing sink is only logged.
func (h *Hub) Publish(ctx context.Context, event entity.AssistantEvent) {
	if event.At.IsZero() {
		event.At = time.Now()
	}

	// Sends happen under the read lock so a concurrent cancel cannot close a
	// channel mid-send.
	h.mu.RLock()
	for _, ch := range h.subscribers[event.SessionID] {
		select {
		case ch <- event:
		default:
			h.log.WithFields(logrus.Fields{
				"session_id": event.SessionID,
				"kind":       event.Kind,
			}).Warn("Subscriber buffer full, dropping event")
		}
	}
	sinks := make([]Sink, len(h.sinks))
	copy(sinks, h.sinks)
	h.mu.RUnlock()

	for _, sink := range sinks {
		if err := sink.Publish(ctx, event); err != nil {
			h.log.WithFields(logrus.Fields{
				"session_id": event.SessionID,
				"kind":       event.Kind,
				"sink":       sink.Name(),
				"error":      err.Error(),
			}).Warn("Failed to publish event to sink")
		}
	}
}

// Subscribe returns the event stream of one session and its cancel func.
func (h *Hub) Subscribe(sessionID string) (<-chan entity.AssistantEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	id := h.nextID
	ch := make(chan entity.AssistantEvent, subscriberBuffer)

	if h.subscribers[sessionID] == nil {
		h.subscribers[sessionID] = make(map[uint64]chan entity.AssistantEvent)
	}
	h.subscribers[sessionID][id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()

			delete(h.subscribers[sessionID], id)
			if len(h.subscribers[sessionID]) == 0 {
				delete(h.subscribers, sessionID)
			}
			close(ch)
		})
	}

	return ch, cancel
}

// Close flushes and stops every sink that holds background work.
func (h *Hub) Close() {
	h.mu.RLock()
	sinks := make([]Sink, len(h.sinks))
	copy(sinks, h.sinks)
	h.mu.RUnlock()

	for _, sink := range sinks {
		closer, ok := sink.(io.Closer)
		if !ok {
			continue
		}
		if err := closer.Close(); err != nil {
			h.log.WithFields(logrus.Fields{
				"sink":  sink.Name(),
				"error": err.Error(),
			}).Warn("Failed to close sink")
		}
	}
}
