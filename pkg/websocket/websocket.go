package websocketPkg

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

// IModelClient talks to a model server that evaluates one input tensor per
// request over a long-lived WebSocket.
type IModelClient interface {
	Predict(ctx context.Context, shape []int, data []float32) ([]float32, error)
	Metadata(ctx context.Context) (*ModelMetadata, error)
	IsConnected() bool
	Reconnect() error
	Close()
}

type ModelMetadata struct {
	Name       string   `json:"name"`
	InputShape []int    `json:"input_shape"`
	Classes    []string `json:"classes"`
}

type modelRequest struct {
	Type  string    `json:"type"`
	Shape []int     `json:"shape,omitempty"`
	Data  []float32 `json:"data,omitempty"`
}

type modelResponse struct {
	Predictions []float32      `json:"predictions,omitempty"`
	Metadata    *ModelMetadata `json:"metadata,omitempty"`
	Error       string         `json:"error,omitempty"`
}

type modelClient struct {
	url          string
	conn         *websocket.Conn
	mu           sync.Mutex
	log          *logrus.Logger
	pingInterval time.Duration
	readTimeout  time.Duration
	writeTimeout time.Duration
}

type Option func(*modelClient)

func WithTimeouts(read, write time.Duration) Option {
	return func(c *modelClient) {
		c.readTimeout = read
		c.writeTimeout = write
	}
}

func WithPingInterval(interval time.Duration) Option {
	return func(c *modelClient) {
		c.pingInterval = interval
	}
}

func NewModelClient(url string, log *logrus.Logger, opts ...Option) IModelClient {
	client := &modelClient{
		url:          url,
		log:          log,
		pingInterval: 30 * time.Second,
		readTimeout:  10 * time.Second,
		writeTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(client)
	}

	return client
}

// GetModelURL returns the configured model server address.
func GetModelURL() string {
	url := os.Getenv("AI_EMOTION_MODEL_URL")
	if url == "" {
		url = "ws://localhost:8000/api/v1/emotion/ws"
	}
	return url
}

func (c *modelClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.conn != nil
}

func (c *modelClient) Reconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.connectLocked()
}

func (c *modelClient) connectLocked() error {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}

	if c.url == "" {
		return fmt.Errorf("URL for emotion model service not configured")
	}

	c.log.Infof("Connecting to emotion model service at %s", c.url)

	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = 10 * time.Second

	conn, _, err := dialer.Dial(c.url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", c.url, err)
	}

	conn.SetPingHandler(func(appData string) error {
		err := conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(c.writeTimeout))
		if err != nil {
			c.log.Warnf("Error sending pong: %v", err)
		}
		return nil
	})

	c.conn = conn
	go c.keepAlive(conn)

	return nil
}

func (c *modelClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

func (c *modelClient) keepAlive(conn *websocket.Conn) {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		if c.conn != conn {
			c.mu.Unlock()
			return
		}

		err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(c.writeTimeout))
		if err != nil {
			c.log.Warnf("Ping failed for emotion model service, marking connection as dead: %v", err)
			c.conn = nil
			conn.Close()
			c.mu.Unlock()
			return
		}

		c.mu.Unlock()
	}
}

func deadline(ctx context.Context, d time.Duration) time.Time {
	t := time.Now().Add(d)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(t) {
		return ctxDeadline
	}
	return t
}

// roundTrip sends one request and waits for its reply. The lock is held for
// the whole exchange so replies cannot be interleaved between callers.
func (c *modelClient) roundTrip(ctx context.Context, req modelRequest) (*modelResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		if err := c.connectLocked(); err != nil {
			return nil, fmt.Errorf("cannot connect to emotion model service: %w", err)
		}
	}
	conn := c.conn

	payload, err := jsoniter.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("error encoding model request: %w", err)
	}

	conn.SetWriteDeadline(deadline(ctx, c.writeTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		c.conn = nil
		conn.Close()
		return nil, fmt.Errorf("error sending model request: %w", err)
	}

	conn.SetReadDeadline(deadline(ctx, c.readTimeout))
	_, message, err := conn.ReadMessage()
	if err != nil {
		c.conn = nil
		conn.Close()
		return nil, fmt.Errorf("error reading model response: %w", err)
	}

	conn.SetReadDeadline(time.Time{})
	conn.SetWriteDeadline(time.Time{})

	var resp modelResponse
	if err := jsoniter.Unmarshal(message, &resp); err != nil {
		return nil, fmt.Errorf("error unmarshaling model response: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("emotion model service: %s", resp.Error)
	}

	return &resp, nil
}

func (c *modelClient) Metadata(ctx context.Context) (*ModelMetadata, error) {
	resp, err := c.roundTrip(ctx, modelRequest{Type: "metadata"})
	if err != nil {
		return nil, err
	}
	if resp.Metadata == nil {
		return nil, fmt.Errorf("emotion model service returned no metadata")
	}

	c.log.Infof("Emotion model %q ready, input shape %v", resp.Metadata.Name, resp.Metadata.InputShape)

	return resp.Metadata, nil
}

func (c *modelClient) Predict(ctx context.Context, shape []int, data []float32) ([]float32, error) {
	resp, err := c.roundTrip(ctx, modelRequest{Type: "predict", Shape: shape, Data: data})
	if err != nil {
		return nil, err
	}

	c.log.Debugf("Received %d predictions from emotion model service", len(resp.Predictions))

	return resp.Predictions, nil
}
