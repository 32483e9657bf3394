package main

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/kherrera/stampede/internal/config"
	"github.com/kherrera/stampede/internal/httpclient"
	"github.com/kherrera/stampede/internal/tracing"
)

const (
	maxLoggedBodyBytes = 1024
	maxBodyReadSize    = 1024 * 1024
)

// httpOperation performs one HTTP request per call. Responses with a
// 4xx/5xx status fail the call; a configured body check can fail 2xx
// responses too.
type httpOperation struct {
	client  *http.Client
	builder *httpclient.RequestBuilder
	check   *httpclient.Check
}

func newHTTPOperation(cfg *config.Config) (*httpOperation, error) {
	builder, err := httpclient.NewRequestBuilder(cfg)
	if err != nil {
		return nil, err
	}
	return &httpOperation{
		client:  httpclient.NewClient(cfg.Timeout),
		builder: builder,
		check:   httpclient.NewCheck(cfg.Check),
	}, nil
}

func (o *httpOperation) Do(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	req, err := o.builder.Build(ctx)
	if err != nil {
		return err
	}
	tracing.InjectHTTPHeaders(ctx, req.Header)

	resp, err := o.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// Body read errors are non-fatal; checks then run on an empty body.
	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyReadSize))
	if readErr != nil {
		body = nil
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		snippet := body
		if len(snippet) > maxLoggedBodyBytes {
			snippet = snippet[:maxLoggedBodyBytes]
		}
		return &httpclient.StatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}

	return o.check.Verify(body)
}
