// Package middleware exposes HTTP client adapters that attach goKeyless session
// tokens to outbound requests.
//
// # Adapters
//
//   - [Transport] — http.RoundTripper that injects the current access token and
//     retries once after a refresh when the upstream answers 401.
//   - [Client] — convenience wrapper returning an *http.Client built on [Transport].
//
// Each request reads the session through Engine.CurrentSession, so expiry and
// auto-refresh policy stay in the engine.
//
// # Architecture boundaries
//
// This package translates engine sessions into HTTP headers. It does NOT
// implement authentication logic itself — token lifecycle decisions are
// delegated to the engine.
//
// # What this package must NOT do
//
//   - Parse or create tokens directly (delegates to the engine).
//   - Persist anything (the engine owns storage).
//   - Retry more than once per request.
package middleware
