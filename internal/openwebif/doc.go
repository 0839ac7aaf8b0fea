// Package openwebif implements the HTTP client for the OpenWebif control
// API exposed by Enigma2 set-top boxes (VU+, Dreambox and compatibles).
//
// # Architecture
//
// The client is a thin, typed wrapper over the receiver's XML-over-HTTP
// endpoints. It owns the transport concerns (digest authentication, TLS,
// request timeout) and the XML decoding; the bridge package decides when
// and how often to call it.
//
//	┌─────────────────┐            ┌─────────────────┐
//	│     bridge      │   HTTP+XML │    receiver     │
//	│  (sync engine)  │◄──────────►│   (OpenWebif)   │
//	└─────────────────┘            └─────────────────┘
//
// # Endpoints
//
// Endpoint pages map to fixed URL paths under /web, e.g. "powerstate" →
// /web/powerstate. See the Page type for the closed set of supported pages.
//
// # Authentication
//
// All requests use HTTP digest authentication with the configured
// credentials. HTTPS is supported, optionally without certificate
// verification (most receivers ship self-signed certificates).
//
// # Thread Safety
//
// Client is safe for concurrent use from multiple goroutines.
package openwebif
