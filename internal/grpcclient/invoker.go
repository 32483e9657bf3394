package grpcclient

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
	"github.com/jhump/protoreflect/dynamic"
	"google.golang.org/protobuf/protoadapt"

	"github.com/kherrera/stampede/internal/config"
)

// Invoker calls one unary gRPC method described by a .proto file. The
// descriptor is parsed once at construction so malformed proto files
// fail fast, before any load is generated.
type Invoker struct {
	client     *Client
	methodDesc *desc.MethodDescriptor
	message    string
}

func NewInvoker(cfg *config.Config) (*Invoker, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	target := strings.TrimSpace(cfg.TargetURL)
	if target == "" {
		return nil, errors.New("target is required")
	}

	methodDesc, err := loadMethodDescriptor(&cfg.GRPC)
	if err != nil {
		return nil, fmt.Errorf("load proto descriptor: %w", err)
	}

	md := make(map[string]string, len(cfg.GRPC.Metadata))
	for key, value := range cfg.GRPC.Metadata {
		trimmed := strings.ToLower(strings.TrimSpace(key))
		if trimmed == "" {
			continue
		}
		md[trimmed] = value
	}

	client := NewClient(Options{
		Target:   target,
		Service:  methodDesc.GetService().GetFullyQualifiedName(),
		Method:   methodDesc.GetName(),
		Metadata: md,
		Timeout:  cfg.GRPC.Timeout,
		UseTLS:   cfg.GRPC.TLS,
		Insecure: cfg.GRPC.Insecure,
	})
	if err := client.Connect(); err != nil {
		return nil, fmt.Errorf("grpc connect: %w", err)
	}

	return &Invoker{
		client:     client,
		methodDesc: methodDesc,
		message:    cfg.GRPC.Message,
	}, nil
}

// Call builds the request message from the configured JSON payload and
// invokes the method. All actors share the invoker's connection.
func (inv *Invoker) Call(ctx context.Context) error {
	reqMsg, err := buildDynamicRequest(inv.methodDesc, inv.message)
	if err != nil {
		return fmt.Errorf("grpc request payload: %w", err)
	}
	respMsg := dynamic.NewMessage(inv.methodDesc.GetOutputType())

	reqProto := protoadapt.MessageV2Of(reqMsg)
	respProto := protoadapt.MessageV2Of(respMsg)
	return inv.client.Invoke(ctx, reqProto, respProto)
}

// Close releases the shared connection.
func (inv *Invoker) Close() error {
	return inv.client.Close()
}

func loadMethodDescriptor(cfg *config.GRPCConfig) (*desc.MethodDescriptor, error) {
	protoPath := strings.TrimSpace(cfg.ProtoFile)
	if protoPath == "" {
		return nil, fmt.Errorf("grpc proto_file is required")
	}
	parser := protoparse.Parser{
		ImportPaths: []string{filepath.Dir(protoPath)},
	}
	files, err := parser.ParseFiles(filepath.Base(protoPath))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no descriptors parsed from %s", protoPath)
	}

	serviceName := strings.TrimSpace(cfg.Service)
	methodName := strings.TrimSpace(cfg.Method)
	for _, file := range files {
		for _, svc := range file.GetServices() {
			if matchesServiceName(svc, serviceName) {
				if method := svc.FindMethodByName(methodName); method != nil {
					return method, nil
				}
			}
		}
	}
	return nil, fmt.Errorf("method %s not found in service %s", methodName, serviceName)
}

func matchesServiceName(svc *desc.ServiceDescriptor, target string) bool {
	if target == "" {
		return false
	}
	if svc.GetFullyQualifiedName() == target {
		return true
	}
	return svc.GetName() == target || strings.HasSuffix(target, "."+svc.GetName())
}

func buildDynamicRequest(method *desc.MethodDescriptor, payload string) (*dynamic.Message, error) {
	msg := dynamic.NewMessage(method.GetInputType())
	body := strings.TrimSpace(payload)
	if body == "" {
		body = "{}"
	}
	if err := msg.UnmarshalJSON([]byte(body)); err != nil {
		return nil, err
	}
	return msg, nil
}
