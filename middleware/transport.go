package middleware

import (
	"context"
	"net/http"

	goKeyless "github.com/kaeso/goKeyless"
)

// SessionSource yields the session whose access token is attached to
// outbound requests. [goKeyless.Engine] satisfies it.
type SessionSource interface {
	CurrentSession(ctx context.Context, userID string) (*goKeyless.SessionInfo, error)
	RefreshSession(ctx context.Context, userID string) (*goKeyless.SessionInfo, error)
}

// Transport is an http.RoundTripper that injects the user's current access
// token into every request. When the upstream answers 401 it refreshes the
// session once and retries, provided the request body is replayable.
type Transport struct {
	source SessionSource
	userID string
	base   http.RoundTripper
}

// NewTransport wraps base with token injection for userID. A nil base falls
// back to [http.DefaultTransport].
func NewTransport(engine *goKeyless.Engine, userID string, base http.RoundTripper) *Transport {
	return NewTransportFromSource(engine, userID, base)
}

// NewTransportFromSource creates a Transport from a custom [SessionSource].
func NewTransportFromSource(source SessionSource, userID string, base http.RoundTripper) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{
		source: source,
		userID: userID,
		base:   base,
	}
}

// Client returns an *http.Client whose requests carry the user's access token.
func Client(engine *goKeyless.Engine, userID string) *http.Client {
	return &http.Client{Transport: NewTransport(engine, userID, nil)}
}

// RoundTrip implements http.RoundTripper. The incoming request is never
// mutated; each attempt runs on a shallow clone with its own header map.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t == nil || t.source == nil {
		return nil, goKeyless.ErrEngineNotReady
	}

	session, err := t.source.CurrentSession(req.Context(), t.userID)
	if err != nil {
		return nil, err
	}

	resp, err := t.base.RoundTrip(withToken(req, session.AccessToken))
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	// A consumed one-shot body cannot be replayed; surface the 401 as-is.
	if req.Body != nil && req.GetBody == nil {
		return resp, nil
	}

	refreshed, err := t.source.RefreshSession(req.Context(), t.userID)
	if err != nil {
		return resp, nil
	}

	retry := withToken(req, refreshed.AccessToken)
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return resp, nil
		}
		retry.Body = body
	}

	_ = resp.Body.Close()
	return t.base.RoundTrip(retry)
}

func withToken(req *http.Request, token string) *http.Request {
	out := req.Clone(req.Context())
	out.Header.Set("Authorization", "Bearer "+token)
	return out
}
