package httpclient

import (
	"errors"
	"testing"

	"github.com/kherrera/stampede/internal/config"
)

func TestNewCheckReturnsNilWhenUnconfigured(t *testing.T) {
	if check := NewCheck(config.CheckConfig{}); check != nil {
		t.Fatal("expected nil check for empty config")
	}
	if check := NewCheck(config.CheckConfig{JSONPath: "   "}); check != nil {
		t.Fatal("expected nil check for blank path")
	}
}

func TestCheckVerifyMatch(t *testing.T) {
	check := NewCheck(config.CheckConfig{JSONPath: "status", Equals: "ok"})
	if err := check.Verify([]byte(`{"status":"ok","count":3}`)); err != nil {
		t.Fatalf("expected match, got %v", err)
	}
}

func TestCheckVerifyNestedPath(t *testing.T) {
	check := NewCheck(config.CheckConfig{JSONPath: "data.items.0.id", Equals: "42"})
	body := []byte(`{"data":{"items":[{"id":42},{"id":43}]}}`)
	if err := check.Verify(body); err != nil {
		t.Fatalf("expected match on nested path, got %v", err)
	}
}

func TestCheckVerifyMismatch(t *testing.T) {
	check := NewCheck(config.CheckConfig{JSONPath: "status", Equals: "ok"})
	err := check.Verify([]byte(`{"status":"degraded"}`))
	if err == nil {
		t.Fatal("expected error for mismatched value")
	}

	var checkErr *CheckError
	if !errors.As(err, &checkErr) {
		t.Fatalf("expected *CheckError, got %T", err)
	}
	if checkErr.Actual != "degraded" {
		t.Fatalf("expected actual %q, got %q", "degraded", checkErr.Actual)
	}
}

func TestCheckVerifyMissingPath(t *testing.T) {
	check := NewCheck(config.CheckConfig{JSONPath: "missing.path", Equals: "x"})
	if err := check.Verify([]byte(`{"status":"ok"}`)); err == nil {
		t.Fatal("expected error for missing path")
	}
}

func TestNilCheckAcceptsAnything(t *testing.T) {
	var check *Check
	if err := check.Verify([]byte("not even json")); err != nil {
		t.Fatalf("expected nil check to accept body, got %v", err)
	}
}
