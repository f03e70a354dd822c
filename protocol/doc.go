// Package protocol translates abstract authentication intents into the wire
// shape of a specific protocol generation.
//
// [Adapter] is the strategy interface: one implementation per generation
// ([LegacyAdapter] for the challenge/response endpoints, [OAuthAdapter] for
// the OAuth-backed token endpoint), selected once at engine construction.
// The engine never branches on generation; the same abstract intent yields a
// structurally valid request regardless of which implementation is active.
//
// # Architecture boundaries
//
// This package owns endpoint paths, payload field names, and server-error
// mapping. It performs I/O only through the injected [Transport].
//
// # What this package must NOT do
//
//   - Persist anything.
//   - Import goKeyless or the store package.
//   - Leak *http.Response or raw status codes to callers; failures map to
//     this package's sentinel errors.
package protocol
