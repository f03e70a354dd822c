// Package store defines the secure key/value capability the engine persists
// device credentials and sessions into, together with two implementations:
// an in-memory store for development and tests, and a Redis-backed store for
// server-side embeddings of the engine.
//
// # Architecture boundaries
//
// This package owns the storage contract and key-space atomicity. It knows
// nothing about what the blobs contain; record encoding lives with the
// components that own the records.
//
// # What this package must NOT do
//
//   - Decode or interpret stored blobs.
//   - Import goKeyless or any sibling package.
package store
