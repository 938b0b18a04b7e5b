package assistantHandler

import (
	"SuperApp/internal/api/assistant"
	"SuperApp/internal/middleware"
	contextPkg "SuperApp/pkg/context"
	jwtPkg "SuperApp/pkg/jwt"
	"SuperApp/pkg/log"
	"SuperApp/pkg/response"
	"context"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	jsoniter "github.com/json-iterator/go"
)

// UpgradeStream rejects plain HTTP requests to the stream endpoint.
func (h *AssistantHandler) UpgradeStream(ctx *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(ctx) {
		return ctx.Status(fiber.StatusUpgradeRequired).JSON(fiber.Map{
			"error": "websocket upgrade required",
		})
	}
	return ctx.Next()
}

// Stream pushes session events to the client and runs every "command" frame
// it receives through the same path as POST /commands.
func (h *AssistantHandler) Stream(conn *websocket.Conn) {
	sessionID, _ := conn.Locals(jwtPkg.SessionLocalKey).(string)
	requestID, _ := conn.Locals(middleware.RequestIDKey).(string)

	ctx := contextPkg.WithSessionID(contextPkg.WithRequestID(context.Background(), requestID), sessionID)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fields := log.Fields{
		"request_id": requestID,
		"session_id": sessionID,
	}

	var writeMu sync.Mutex
	send := func(frame assistant.StreamFrame) error {
		payload, err := jsoniter.Marshal(frame)
		if err != nil {
			return err
		}
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteMessage(websocket.TextMessage, payload)
	}

	events, unsubscribe, err := h.assistantService.Subscribe(ctx, sessionID)
	if err != nil {
		_ = send(assistant.StreamFrame{Type: "error", Error: err.Error(), Code: response.StatusCode(err)})
		return
	}

	h.log.WithFields(fields).Info("Event stream opened")

	// The writer must be gone before the connection is handed back.
	done := make(chan struct{})
	defer func() {
		unsubscribe()
		<-done
	}()

	go func() {
		defer close(done)
		for event := range events {
			event := event
			if err := send(assistant.StreamFrame{Type: "event", Event: &event}); err != nil {
				cancel()
			}
		}
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			h.log.WithFields(fields).Debug("Event stream closed by client")
			return
		}

		var msg assistant.StreamMessage
		if err := jsoniter.Unmarshal(payload, &msg); err != nil {
			_ = send(assistant.StreamFrame{Type: "error", Error: "malformed frame", Code: fiber.StatusBadRequest})
			continue
		}
		if err := h.validator.Struct(msg); err != nil {
			_ = send(assistant.StreamFrame{Type: "error", Error: err.Error(), Code: fiber.StatusBadRequest})
			continue
		}

		switch msg.Type {
		case "ping":
			_ = send(assistant.StreamFrame{Type: "pong"})
		case "command":
			res, err := h.assistantService.Submit(ctx, sessionID, msg.Text)
			if err != nil {
				_ = send(assistant.StreamFrame{Type: "error", Error: err.Error(), Code: response.StatusCode(err)})
				continue
			}
			_ = send(assistant.StreamFrame{Type: "result", Result: res})
		}
	}
}
