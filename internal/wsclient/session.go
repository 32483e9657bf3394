package wsclient

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kherrera/stampede/internal/config"
)

// Session runs one full websocket exchange per call: connect, send each
// configured message and read the response, then close. An empty
// message list degrades to a connect/close probe.
type Session struct {
	url      string
	headers  http.Header
	messages []string
	interval time.Duration
	options  Options
}

func NewSession(cfg *config.Config) (*Session, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	target := strings.TrimSpace(cfg.TargetURL)
	if target == "" {
		return nil, errors.New("target URL is required")
	}
	// Accept http(s) targets for convenience and rewrite the scheme.
	if strings.HasPrefix(target, "http://") {
		target = "ws://" + strings.TrimPrefix(target, "http://")
	} else if strings.HasPrefix(target, "https://") {
		target = "wss://" + strings.TrimPrefix(target, "https://")
	}
	if !strings.HasPrefix(target, "ws://") && !strings.HasPrefix(target, "wss://") {
		return nil, errors.New("websocket target must use ws:// or wss://")
	}

	headers := http.Header{}
	for key, value := range cfg.Headers {
		headers.Set(key, value)
	}

	return &Session{
		url:      target,
		headers:  headers,
		messages: cfg.WebSocket.Messages,
		interval: cfg.WebSocket.MessageInterval,
		options: Options{
			URL:              target,
			Headers:          headers,
			HandshakeTimeout: cfg.WebSocket.HandshakeTimeout,
			ReceiveTimeout:   cfg.WebSocket.ReceiveTimeout,
		},
	}, nil
}

// Run performs the exchange. The returned error covers dial, write and
// read failures; close errors after a clean exchange are ignored.
func (s *Session) Run(ctx context.Context) error {
	client := NewClient(s.options)
	if err := client.Connect(ctx); err != nil {
		return err
	}
	defer client.Close()

	for i, payload := range s.messages {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := client.Send(Message{Type: websocket.TextMessage, Data: []byte(payload)}); err != nil {
			return err
		}
		if _, err := client.Receive(); err != nil {
			return err
		}
		if s.interval > 0 && i < len(s.messages)-1 {
			if err := sleepCtx(ctx, s.interval); err != nil {
				return err
			}
		}
	}

	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
