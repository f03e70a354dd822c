// Package goKeyless provides a client-side passwordless authentication engine:
// device key management, challenge/response login, OTP-verified registration,
// session token lifecycle, and cross-device (web) login approval.
//
// The package is designed for concurrent client workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build]. Operations for distinct users proceed independently; a
// second in-flight operation for the same user fails with [ErrInternalState]
// rather than queuing.
//
// # Architecture boundaries
//
// goKeyless is the public surface. It exposes [Engine], [Builder], [Config],
// and value types (AuthResult, SessionInfo, WebLoginResult, etc.). All
// internal coordination — flow orchestration, challenge encoding, audit
// dispatch — lives under internal/ and is never exported. Wire-protocol
// variability is confined to the protocol package: one [protocol.Adapter]
// per generation, selected at Build time, never by runtime type inspection.
//
// # What this package must NOT do
//
//   - Expose private key material, storage backends, or encoding details in
//     its public API.
//   - Perform I/O outside of Engine methods (construction via Builder is
//     allocation-only until Build).
//   - Branch on protocol generation outside the protocol package.
//
// # Error contract
//
// Every failure surfaced by an Engine method wraps exactly one of the
// package-level sentinel errors (ErrNetwork, ErrOtpMismatch, …). Raw
// transport and storage errors never cross the Engine boundary unwrapped.
package goKeyless
