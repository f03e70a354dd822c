// Package audit provides the asynchronous audit event pipeline: the event
// model, sink implementations, and the buffered dispatcher the engine emits
// through.
//
// # What this package must NOT do
//
//   - Block an Engine operation on a slow sink (Emit is buffered, and
//     dropping is configurable).
//   - Import goKeyless or any sibling package.
package audit
