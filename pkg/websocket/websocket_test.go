package websocketPkg

import (
	"SuperApp/internal/api/assistant"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFakeAssistant(t *testing.T) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/assistant/sessions", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"session_id":"s-1","token":"tok-1"}`))
	})
	mux.HandleFunc("/api/v1/assistant/stream", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("token") != "tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for {
			_, payload, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var msg assistant.StreamMessage
			if err := jsoniter.Unmarshal(payload, &msg); err != nil {
				return
			}

			frame := assistant.StreamFrame{Type: "pong"}
			if msg.Type == "command" {
				frame = assistant.StreamFrame{Type: "error", Error: "echo:" + msg.Text, Code: 400}
			}
			out, _ := jsoniter.Marshal(frame)
			if err := conn.WriteMessage(websocket.TextMessage, out); err != nil {
				return
			}
		}
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func nextFrame(t *testing.T, client IStreamClient) assistant.StreamFrame {
	t.Helper()
	select {
	case frame := <-client.Frames():
		return frame
	case <-time.After(2 * time.Second):
		t.Fatal("no frame received")
		return assistant.StreamFrame{}
	}
}

func TestStreamClientRoundTrip(t *testing.T) {
	srv := newFakeAssistant(t)
	client := NewStreamClient(srv.URL+"/api/v1/assistant/", quietLogger())
	defer client.Close()

	session, err := client.OpenSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "s-1", session.SessionID)

	require.NoError(t, client.Connect(context.Background(), session.Token))
	assert.True(t, client.IsConnected())

	require.NoError(t, client.Ping())
	assert.Equal(t, "pong", nextFrame(t, client).Type)

	require.NoError(t, client.SendCommand("查一下余额"))
	frame := nextFrame(t, client)
	assert.Equal(t, "error", frame.Type)
	assert.Equal(t, "echo:查一下余额", frame.Error)

	client.Close()
	assert.False(t, client.IsConnected())
	assert.Error(t, client.Ping())
}

func TestStreamClientRejectedToken(t *testing.T) {
	srv := newFakeAssistant(t)
	client := NewStreamClient(srv.URL+"/api/v1/assistant", quietLogger())

	assert.Error(t, client.Connect(context.Background(), "wrong"))
	assert.False(t, client.IsConnected())
}

func TestStreamURL(t *testing.T) {
	c := NewStreamClient("https://example.com/api/v1/assistant", quietLogger()).(*streamClient)

	got, err := c.streamURL("a b")
	require.NoError(t, err)
	assert.Equal(t, "wss://example.com/api/v1/assistant/stream?token=a+b", got)
}

func TestConnectLeavesDefaultDialerUntouched(t *testing.T) {
	srv := newFakeAssistant(t)
	before := *websocket.DefaultDialer

	client := NewStreamClient(srv.URL+"/api/v1/assistant", quietLogger())
	defer client.Close()
	require.NoError(t, client.Connect(context.Background(), "tok-1"))

	assert.Equal(t, before.HandshakeTimeout, websocket.DefaultDialer.HandshakeTimeout)
}
