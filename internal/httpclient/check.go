package httpclient

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/kherrera/stampede/internal/config"
)

// Check asserts on a JSON response body: the value at the gjson path
// must equal the expected string.
type Check struct {
	path   string
	equals string
}

// NewCheck returns nil when no check is configured.
func NewCheck(cfg config.CheckConfig) *Check {
	path := strings.TrimSpace(cfg.JSONPath)
	if path == "" {
		return nil
	}
	return &Check{path: path, equals: cfg.Equals}
}

// CheckError reports a response body that failed the configured check.
type CheckError struct {
	Path     string
	Expected string
	Actual   string
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("check failed: %s = %q, want %q", e.Path, e.Actual, e.Expected)
}

// Verify inspects body and returns a *CheckError when the value at the
// configured path does not match. A nil Check accepts every body.
func (c *Check) Verify(body []byte) error {
	if c == nil {
		return nil
	}
	result := gjson.GetBytes(body, c.path)
	if result.String() != c.equals {
		return &CheckError{Path: c.path, Expected: c.equals, Actual: result.String()}
	}
	return nil
}
