package main

import (
	"context"
	"fmt"

	"google.golang.org/grpc/metadata"

	"github.com/kherrera/stampede/internal/actor"
	"github.com/kherrera/stampede/internal/config"
	"github.com/kherrera/stampede/internal/grpcclient"
	"github.com/kherrera/stampede/internal/tracing"
	"github.com/kherrera/stampede/internal/wsclient"
)

// buildOperation constructs the protocol operation for the configured
// target. The returned func releases any shared connections.
func buildOperation(cfg *config.Config) (actor.Operation, func(), error) {
	switch cfg.Protocol {
	case config.ProtocolHTTP, "":
		op, err := newHTTPOperation(cfg)
		if err != nil {
			return nil, nil, err
		}
		return op, func() {}, nil
	case config.ProtocolWebSocket:
		session, err := wsclient.NewSession(cfg)
		if err != nil {
			return nil, nil, err
		}
		return actor.OperationFunc(session.Run), func() {}, nil
	case config.ProtocolGRPC:
		invoker, err := grpcclient.NewInvoker(cfg)
		if err != nil {
			return nil, nil, err
		}
		op := actor.OperationFunc(func(ctx context.Context) error {
			md := metadata.MD{}
			tracing.InjectGRPCMetadata(ctx, md)
			if len(md) > 0 {
				ctx = metadata.NewOutgoingContext(ctx, md)
			}
			return invoker.Call(ctx)
		})
		return op, func() { _ = invoker.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported protocol %q", cfg.Protocol)
	}
}
