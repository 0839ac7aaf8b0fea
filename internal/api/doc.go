// Package api provides the HTTP REST API and WebSocket server for the
// Enigma2 bridge.
//
// It exposes the local item registry, item change history, and receiver
// commands (remote control, zap, on-screen messages) to user interfaces
// and automation systems. Item changes are pushed in real time to
// WebSocket clients subscribed to the "item.changed" channel.
//
// The server follows the same lifecycle pattern as the other
// infrastructure components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple
// goroutines.
package api
