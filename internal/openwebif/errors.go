package openwebif

import "errors"

// Domain errors for the OpenWebif client package.
var (
	// ErrUnknownPage is returned when a request addresses a page outside
	// the supported endpoint set.
	ErrUnknownPage = errors.New("openwebif: unknown endpoint page")

	// ErrRequestFailed is returned when the HTTP round-trip to the
	// receiver fails (timeout, connection refused, TLS failure).
	ErrRequestFailed = errors.New("openwebif: request failed")

	// ErrBadStatus is returned when the receiver answers with a
	// non-2xx HTTP status.
	ErrBadStatus = errors.New("openwebif: unexpected HTTP status")

	// ErrMalformedResponse is returned when a response body cannot be
	// parsed as XML.
	ErrMalformedResponse = errors.New("openwebif: malformed XML response")
)
