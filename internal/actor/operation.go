package actor

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// Operation abstracts one unit of work against the system under test.
// Implementations return an error for failed calls. The engine is
// protocol-agnostic: anything invokable repeatedly can be an Operation.
type Operation interface {
	Do(ctx context.Context) error
}

// OperationFunc adapts a plain function to the Operation interface.
type OperationFunc func(ctx context.Context) error

func (f OperationFunc) Do(ctx context.Context) error { return f(ctx) }

// FailureLogger receives failed call notifications from WithLogging.
type FailureLogger interface {
	LogFailure(err error)
}

// WithLogging wraps an operation so that every failure is reported to
// the given logger before being returned to the actor.
func WithLogging(op Operation, logger FailureLogger) Operation {
	if logger == nil {
		return op
	}
	return OperationFunc(func(ctx context.Context) error {
		err := op.Do(ctx)
		if err != nil {
			logger.LogFailure(err)
		}
		return err
	})
}

// WriterFailureLogger logs failures to an io.Writer, serializing
// concurrent actors' messages.
type WriterFailureLogger struct {
	mu sync.Mutex
	W  io.Writer
}

func (l *WriterFailureLogger) LogFailure(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.W, "call failed: %v\n", err)
}
