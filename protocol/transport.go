package protocol

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Request is a protocol-built wire request descriptor.
type Request struct {
	Method      string
	URL         string
	ContentType string
	Header      http.Header
	Body        []byte
}

// Response is the raw outcome of executing a [Request].
type Response struct {
	StatusCode int
	Body       []byte
}

// Transport executes wire requests. Implementations must honor ctx
// cancellation and return an error (not a Response) for transport-level
// failures; server-level failures are a Response with a non-2xx status.
type Transport interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// TransportFunc adapts a function to the [Transport] interface.
type TransportFunc func(ctx context.Context, req *Request) (*Response, error)

// Do describes the do operation and its observable behavior.
func (f TransportFunc) Do(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

const defaultHTTPTimeout = 30 * time.Second

// HTTPTransport is the production [Transport] backed by net/http.
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport wraps client, defaulting to an http.Client with a 30s
// timeout when client is nil.
func NewHTTPTransport(client *http.Client) *HTTPTransport {
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &HTTPTransport{client: client}
}

// Do describes the do operation and its observable behavior.
//
// Do returns an error for connection-level failures only; HTTP error
// statuses come back as a populated [Response].
func (t *HTTPTransport) Do(ctx context.Context, req *Request) (*Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bytes.NewReader(req.Body))
	if err != nil {
		return nil, err
	}
	for key, values := range req.Header {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}
	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}

	httpResp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer func() { _ = httpResp.Body.Close() }()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Body:       body,
	}, nil
}
