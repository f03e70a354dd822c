// Package session owns the access/refresh token lifecycle: the persisted
// session model, its versioned binary encoding, and expiry checks with
// clock-skew tolerance.
//
// A stored session is superseded, never appended: Store replaces whatever
// session exists for the user. Refresh itself is a wire operation and lives
// with the engine; this package only decides when a session must be
// refreshed before use.
package session
