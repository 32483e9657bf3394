package grpcclient

import (
	"context"
	"testing"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

func TestNewClientDefaults(t *testing.T) {
	client := NewClient(Options{
		Target:  "localhost:50051",
		Service: "test.Service",
		Method:  "TestMethod",
	})

	if client.service != "test.Service" {
		t.Errorf("expected service test.Service, got %q", client.service)
	}
	if client.method != "TestMethod" {
		t.Errorf("expected method TestMethod, got %q", client.method)
	}
	if client.timeout != 30*time.Second {
		t.Errorf("expected default timeout 30s, got %v", client.timeout)
	}
}

func TestClientInvokeWithoutConnect(t *testing.T) {
	client := NewClient(Options{Target: "localhost:50051", Service: "s", Method: "m"})

	err := client.Invoke(context.Background(), &emptypb.Empty{}, &emptypb.Empty{})
	if err == nil {
		t.Fatal("expected error when invoking without connect")
	}
	if err.Error() != "client not connected" {
		t.Errorf("expected not-connected error, got %v", err)
	}
}

func TestClientInvokeRejectsNilMessages(t *testing.T) {
	client := NewClient(Options{Target: "localhost:50051"})

	if err := client.Invoke(context.Background(), nil, &emptypb.Empty{}); err == nil {
		t.Error("expected error for nil request")
	}
	if err := client.Invoke(context.Background(), &emptypb.Empty{}, nil); err == nil {
		t.Error("expected error for nil response")
	}
}

func TestClientCloseWithoutConnect(t *testing.T) {
	client := NewClient(Options{Target: "localhost:50051"})
	if err := client.Close(); err != nil {
		t.Errorf("Close without connect should not error, got: %v", err)
	}
}

func TestClientDoubleConnect(t *testing.T) {
	client := NewClient(Options{Target: "localhost:50051"})
	if err := client.Connect(); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer client.Close()

	if err := client.Connect(); err == nil {
		t.Fatal("expected error for second Connect")
	}
}

func TestStatusCode(t *testing.T) {
	if got := StatusCode(nil); got != "OK" {
		t.Errorf("expected OK for nil error, got %q", got)
	}
	err := status.Error(codes.Unavailable, "down")
	if got := StatusCode(err); got != "Unavailable" {
		t.Errorf("expected Unavailable, got %q", got)
	}
}
