package grpcclient

import (
	"context"
	"crypto/tls"
	"fmt"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
)

// Options holds connection and call settings for the gRPC client.
type Options struct {
	Target   string
	Service  string
	Method   string
	Metadata map[string]string
	Timeout  time.Duration
	UseTLS   bool
	Insecure bool
}

// Client invokes a single unary method over a shared connection.
type Client struct {
	target  string
	service string
	method  string
	md      metadata.MD
	timeout time.Duration
	useTLS  bool
	skipTLS bool

	mu   sync.Mutex
	conn *grpc.ClientConn
}

func NewClient(opt Options) *Client {
	if opt.Timeout == 0 {
		opt.Timeout = 30 * time.Second
	}
	return &Client{
		target:  opt.Target,
		service: opt.Service,
		method:  opt.Method,
		md:      metadata.New(opt.Metadata),
		timeout: opt.Timeout,
		useTLS:  opt.UseTLS,
		skipTLS: opt.Insecure,
	}
}

// Dial opens a gRPC connection based on the options. grpc.NewClient is
// non-blocking; connection errors surface on the first call.
func Dial(opt Options) (*grpc.ClientConn, error) {
	var dialOpts []grpc.DialOption
	if opt.UseTLS {
		if opt.Insecure {
			creds := credentials.NewTLS(&tls.Config{InsecureSkipVerify: true})
			dialOpts = append(dialOpts, grpc.WithTransportCredentials(creds))
		} else {
			creds := credentials.NewClientTLSFromCert(nil, "")
			dialOpts = append(dialOpts, grpc.WithTransportCredentials(creds))
		}
	} else {
		dialOpts = append(dialOpts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}

	return grpc.NewClient(opt.Target, dialOpts...)
}

// Connect establishes the underlying connection.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		return fmt.Errorf("client already connected")
	}

	conn, err := Dial(Options{Target: c.target, UseTLS: c.useTLS, Insecure: c.skipTLS})
	if err != nil {
		return err
	}
	c.conn = conn
	return nil
}

// Invoke makes a unary RPC call with the configured metadata and
// timeout applied.
func (c *Client) Invoke(ctx context.Context, req proto.Message, resp proto.Message) error {
	if req == nil {
		return fmt.Errorf("request cannot be nil")
	}
	if resp == nil {
		return fmt.Errorf("response cannot be nil")
	}

	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("client not connected")
	}

	md := c.md
	if existing, ok := metadata.FromOutgoingContext(ctx); ok {
		md = metadata.Join(md, existing)
	}
	if len(md) > 0 {
		ctx = metadata.NewOutgoingContext(ctx, md)
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	fullMethod := fmt.Sprintf("/%s/%s", c.service, c.method)
	if err := conn.Invoke(ctx, fullMethod, req, resp); err != nil {
		return fmt.Errorf("rpc %s failed: %s: %w", fullMethod, status.Code(err), err)
	}
	return nil
}

// Close tears down the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// StatusCode returns the gRPC status code string for an error.
func StatusCode(err error) string {
	return status.Code(err).String()
}
