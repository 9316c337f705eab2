// Package wsconn provides a WebSocket client with automatic reconnection.
package wsconn

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/coder/websocket"
)

// State represents the connection state.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateReconnecting State = "reconnecting"
)

// ErrNotConnected is returned by Send when the socket is down.
var ErrNotConnected = errors.New("wsconn: not connected")

// Config holds WebSocket client configuration.
type Config struct {
	URL            string
	Name           string // label for logs and metrics
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	MaxReconnects  int // 0 = infinite
	PingInterval   time.Duration
	ReadLimit      int64
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(url, name string) Config {
	return Config{
		URL:            url,
		Name:           name,
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     30 * time.Second,
		MaxReconnects:  0, // infinite
		PingInterval:   30 * time.Second,
		ReadLimit:      1 << 20,
	}
}

// Client is a reconnecting WebSocket client. Incoming frames are delivered
// on the Messages channel; the read loop reconnects with exponential
// backoff until the client is closed or the reconnect budget runs out.
type Client struct {
	config Config

	mu          sync.RWMutex
	conn        *websocket.Conn
	state       State
	reconnects  int
	onReconnect func(ctx context.Context) error

	messages chan []byte
	done     chan struct{}
	closed   sync.Once
}

// New creates a new WebSocket client.
func New(config Config) (*Client, error) {
	if config.URL == "" {
		return nil, errors.New("wsconn: empty URL")
	}
	if config.InitialBackoff <= 0 {
		config.InitialBackoff = time.Second
	}
	if config.MaxBackoff < config.InitialBackoff {
		config.MaxBackoff = config.InitialBackoff
	}

	return &Client{
		config:   config,
		state:    StateDisconnected,
		messages: make(chan []byte, 100),
		done:     make(chan struct{}),
	}, nil
}

// OnReconnect registers a callback invoked after every successful
// (re)connection, before reads resume. Used to replay subscriptions.
func (c *Client) OnReconnect(fn func(ctx context.Context) error) {
	c.mu.Lock()
	c.onReconnect = fn
	c.mu.Unlock()
}

// Connect establishes the connection and starts the read and ping loops.
func (c *Client) Connect(ctx context.Context) error {
	c.setState(StateConnecting)

	if err := c.dial(ctx); err != nil {
		c.setState(StateDisconnected)
		return err
	}

	go c.readLoop()
	if c.config.PingInterval > 0 {
		go c.pingLoop()
	}

	return nil
}

func (c *Client) dial(ctx context.Context) error {
	conn, _, err := websocket.Dial(ctx, c.config.URL, nil)
	if err != nil {
		return fmt.Errorf("wsconn %s: dial %s: %w", c.config.Name, c.config.URL, err)
	}
	if c.config.ReadLimit > 0 {
		conn.SetReadLimit(c.config.ReadLimit)
	}

	c.mu.Lock()
	c.conn = conn
	c.state = StateConnected
	fn := c.onReconnect
	c.mu.Unlock()

	if fn != nil {
		if err := fn(ctx); err != nil {
			return fmt.Errorf("wsconn %s: reconnect hook: %w", c.config.Name, err)
		}
	}

	return nil
}

// Send writes a text frame.
func (c *Client) Send(ctx context.Context, msg []byte) error {
	c.mu.RLock()
	conn := c.conn
	state := c.state
	c.mu.RUnlock()

	if conn == nil || state != StateConnected {
		return ErrNotConnected
	}
	return conn.Write(ctx, websocket.MessageText, msg)
}

// SendJSON marshals v and sends it as a text frame.
func (c *Client) SendJSON(ctx context.Context, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("wsconn %s: marshal: %w", c.config.Name, err)
	}
	return c.Send(ctx, data)
}

// Messages returns the channel for receiving messages. It is closed when
// the client shuts down for good.
func (c *Client) Messages() <-chan []byte {
	return c.messages
}

// State returns the current connection state.
func (c *Client) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// IsConnected reports whether the socket is currently up.
func (c *Client) IsConnected() bool {
	return c.State() == StateConnected
}

// Close shuts the client down and stops reconnecting.
func (c *Client) Close() error {
	c.closed.Do(func() {
		close(c.done)

		c.mu.Lock()
		conn := c.conn
		c.conn = nil
		c.state = StateDisconnected
		c.mu.Unlock()

		if conn != nil {
			conn.Close(websocket.StatusNormalClosure, "client closing")
		}
	})
	return nil
}

func (c *Client) readLoop() {
	defer close(c.messages)

	for {
		c.mu.RLock()
		conn := c.conn
		c.mu.RUnlock()

		if conn == nil {
			return
		}

		_, data, err := conn.Read(context.Background())
		if err != nil {
			select {
			case <-c.done:
				return
			default:
			}

			if !c.reconnect() {
				return
			}
			continue
		}

		select {
		case c.messages <- data:
		case <-c.done:
			return
		default:
			// Slow consumer: drop the frame rather than block the read loop.
		}
	}
}

// reconnect retries with exponential backoff. Returns false when the
// client is closed or the reconnect budget is exhausted.
func (c *Client) reconnect() bool {
	c.setState(StateReconnecting)

	for {
		c.mu.Lock()
		c.reconnects++
		attempt := c.reconnects
		c.mu.Unlock()

		if c.config.MaxReconnects > 0 && attempt > c.config.MaxReconnects {
			c.setState(StateDisconnected)
			return false
		}

		backoff := time.Duration(float64(c.config.InitialBackoff) * math.Pow(2, float64(attempt-1)))
		if backoff > c.config.MaxBackoff {
			backoff = c.config.MaxBackoff
		}

		select {
		case <-c.done:
			return false
		case <-time.After(backoff):
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := c.dial(ctx)
		cancel()
		if err == nil {
			c.mu.Lock()
			c.reconnects = 0
			c.mu.Unlock()
			return true
		}
	}
}

func (c *Client) pingLoop() {
	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.mu.RLock()
			conn := c.conn
			c.mu.RUnlock()

			if conn == nil {
				continue
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			_ = conn.Ping(ctx)
			cancel()
		}
	}
}

func (c *Client) setState(state State) {
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()
}
