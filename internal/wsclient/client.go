package wsclient

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Message is a websocket frame to send or receive.
type Message struct {
	Type int // websocket.TextMessage or websocket.BinaryMessage
	Data []byte
}

// Client wraps a single websocket connection. Methods are safe for
// concurrent use, but each actor is expected to own its client.
type Client struct {
	url            string
	headers        http.Header
	dialer         *websocket.Dialer
	receiveTimeout time.Duration

	mu   sync.Mutex
	conn *websocket.Conn
}

// Options configures the websocket client.
type Options struct {
	URL              string
	Headers          http.Header
	HandshakeTimeout time.Duration
	ReceiveTimeout   time.Duration
	MaxMessageSize   int64
}

func NewClient(opt Options) *Client {
	if opt.HandshakeTimeout == 0 {
		opt.HandshakeTimeout = 30 * time.Second
	}

	dialer := &websocket.Dialer{
		HandshakeTimeout: opt.HandshakeTimeout,
		Proxy:            http.ProxyFromEnvironment,
	}

	return &Client{
		url:            opt.URL,
		headers:        opt.Headers,
		dialer:         dialer,
		receiveTimeout: opt.ReceiveTimeout,
	}
}

// Connect establishes the websocket connection.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return fmt.Errorf("already connected")
	}

	conn, resp, err := c.dialer.DialContext(ctx, c.url, c.headers)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("websocket dial failed with status %d: %w", resp.StatusCode, err)
		}
		return fmt.Errorf("websocket dial failed: %w", err)
	}

	c.conn = conn
	return nil
}

// Send writes a message to the connection.
func (c *Client) Send(msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return fmt.Errorf("not connected")
	}

	if err := c.conn.WriteMessage(msg.Type, msg.Data); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	return nil
}

// Receive reads the next message. When a receive timeout is configured
// the read deadline is armed before each read.
func (c *Client) Receive() (Message, error) {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		return Message{}, fmt.Errorf("not connected")
	}

	if c.receiveTimeout > 0 {
		if err := conn.SetReadDeadline(time.Now().Add(c.receiveTimeout)); err != nil {
			return Message{}, fmt.Errorf("set read deadline: %w", err)
		}
	}

	msgType, data, err := conn.ReadMessage()
	if err != nil {
		return Message{}, fmt.Errorf("read message: %w", err)
	}

	return Message{Type: msgType, Data: data}, nil
}

// Close sends a close frame and tears down the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}

	err := c.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(5*time.Second),
	)

	closeErr := c.conn.Close()
	c.conn = nil

	if err != nil {
		return err
	}
	return closeErr
}
