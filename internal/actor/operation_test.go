package actor_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kherrera/stampede/internal/actor"
)

func TestWithLoggingReportsFailures(t *testing.T) {
	var buf bytes.Buffer
	logger := &actor.WriterFailureLogger{W: &buf}

	failing := actor.OperationFunc(func(ctx context.Context) error {
		return errors.New("backend unavailable")
	})
	wrapped := actor.WithLogging(failing, logger)

	if err := wrapped.Do(context.Background()); err == nil {
		t.Fatal("wrapped operation must still return the error")
	}
	if !strings.Contains(buf.String(), "backend unavailable") {
		t.Errorf("failure not logged: %q", buf.String())
	}
}

func TestWithLoggingPassesSuccessSilently(t *testing.T) {
	var buf bytes.Buffer
	logger := &actor.WriterFailureLogger{W: &buf}

	ok := actor.OperationFunc(func(ctx context.Context) error { return nil })
	if err := actor.WithLogging(ok, logger).Do(context.Background()); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("successful call should not be logged: %q", buf.String())
	}
}
