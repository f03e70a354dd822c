// Package keys models the platform key facility as an injected capability.
//
// [KeyStore] is the contract the engine signs challenges through. The
// default implementation, [DerivedStore], never persists a private key:
// it stores a random device secret and salt, and re-derives the Ed25519
// signing key via HKDF on every operation. Callers outside this package
// only ever hold an opaque [Handle].
//
// # What this package must NOT do
//
//   - Return private key material to callers.
//   - Import goKeyless or the protocol package.
package keys
