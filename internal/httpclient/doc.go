// Package httpclient builds HTTP requests from configuration and
// provides a client tuned for high connection reuse. Response bodies
// can be asserted with a gjson path check.
package httpclient
