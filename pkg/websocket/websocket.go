package websocketPkg

import (
	"SuperApp/internal/api/assistant"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

type IStreamClient interface {
	OpenSession(ctx context.Context) (*assistant.CreateSessionResponse, error)
	Connect(ctx context.Context, token string) error
	SendCommand(text string) error
	Ping() error
	Frames() <-chan assistant.StreamFrame
	IsConnected() bool
	Close()
}

type streamClient struct {
	baseURL          string
	httpClient       *http.Client
	log              *logrus.Logger
	conn             *websocket.Conn
	frames           chan assistant.StreamFrame
	mu               sync.Mutex
	pingInterval     time.Duration
	writeTimeout     time.Duration
	handshakeTimeout time.Duration
}

// NewStreamClient talks to the assistant API rooted at baseURL, e.g.
// http://localhost:3000/api/v1/assistant.
func NewStreamClient(baseURL string, log *logrus.Logger) IStreamClient {
	return &streamClient{
		baseURL:          strings.TrimRight(baseURL, "/"),
		httpClient:       &http.Client{Timeout: 10 * time.Second},
		log:              log,
		frames:           make(chan assistant.StreamFrame, 32),
		pingInterval:     30 * time.Second,
		writeTimeout:     5 * time.Second,
		handshakeTimeout: 10 * time.Second,
	}
}

func (c *streamClient) OpenSession(ctx context.Context) (*assistant.CreateSessionResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/sessions", bytes.NewReader(nil))
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("create session returned %d: %s", resp.StatusCode, string(body))
	}

	var created assistant.CreateSessionResponse
	if err := jsoniter.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &created, nil
}

func (c *streamClient) Connect(ctx context.Context, token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}

	streamURL, err := c.streamURL(token)
	if err != nil {
		return err
	}

	dialer := &websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: c.handshakeTimeout,
	}

	conn, _, err := dialer.DialContext(ctx, streamURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", c.baseURL, err)
	}

	conn.SetPingHandler(func(appData string) error {
		err := conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(c.writeTimeout))
		if err != nil {
			c.log.Warnf("Error sending pong: %v", err)
		}
		return nil
	})

	c.conn = conn

	go c.readLoop(conn)
	go c.keepAlive(conn)

	return nil
}

func (c *streamClient) streamURL(token string) (string, error) {
	u, err := url.Parse(c.baseURL + "/stream")
	if err != nil {
		return "", fmt.Errorf("invalid base url: %w", err)
	}

	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}

	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()

	return u.String(), nil
}

func (c *streamClient) SendCommand(text string) error {
	return c.write(assistant.StreamMessage{Type: "command", Text: text})
}

func (c *streamClient) Ping() error {
	return c.write(assistant.StreamMessage{Type: "ping"})
}

func (c *streamClient) write(msg assistant.StreamMessage) error {
	payload, err := jsoniter.Marshal(msg)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return fmt.Errorf("stream not connected")
	}

	if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

func (c *streamClient) Frames() <-chan assistant.StreamFrame {
	return c.frames
}

func (c *streamClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

func (c *streamClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

func (c *streamClient) readLoop(conn *websocket.Conn) {
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			c.log.Debugf("Stream read stopped: %v", err)
			c.dropConn(conn)
			return
		}

		var frame assistant.StreamFrame
		if err := jsoniter.Unmarshal(payload, &frame); err != nil {
			c.log.Warnf("Discarding malformed frame: %v", err)
			continue
		}

		select {
		case c.frames <- frame:
		default:
			c.log.Warn("Frame buffer full, dropping frame")
		}
	}
}

func (c *streamClient) keepAlive(conn *websocket.Conn) {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		if c.conn != conn {
			c.mu.Unlock()
			return
		}

		err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(c.writeTimeout))
		c.mu.Unlock()

		if err != nil {
			c.log.Warnf("Ping failed, marking stream as dead: %v", err)
			c.dropConn(conn)
			return
		}
	}
}

func (c *streamClient) dropConn(conn *websocket.Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == conn {
		c.conn.Close()
		c.conn = nil
	}
}
