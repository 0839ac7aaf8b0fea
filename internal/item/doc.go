// Package item implements the local value model the bridge synchronises
// with the receiver.
//
// An Item is a typed value slot (bool, num or text) owned by the host
// application, not by the sync engine: the engine only writes resolved
// attribute values into items and reads command declarations from them.
//
// The Registry holds all items, provides lookup by identifier and fans out
// change notifications to subscribers (MQTT state publisher, WebSocket hub,
// history recorder).
//
// # Value kinds
//
//   - KindBool: stored as 0/1 (receiver booleans are written as integers)
//   - KindNum: stored as int64 or float64 depending on the parsed value
//   - KindText: stored as string; "-" is the not-available sentinel
//
// # Thread Safety
//
// All exported types are safe for concurrent use from multiple goroutines.
package item
