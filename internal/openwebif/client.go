package openwebif

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/icholy/digest"
)

// defaultTimeout is the per-request timeout used when none is configured.
const defaultTimeout = 10 * time.Second

// Options configures a Client.
type Options struct {
	// Host is the receiver's IP address or hostname.
	Host string

	// Port is the OpenWebif port.
	Port int

	// SSL selects https instead of http.
	SSL bool

	// VerifyTLS enables certificate verification for https connections.
	VerifyTLS bool

	// Username and Password are the digest-auth credentials.
	Username string
	Password string

	// Timeout is the per-request timeout. Zero means 10 seconds.
	Timeout time.Duration
}

// Client talks to a single Enigma2 receiver over the OpenWebif HTTP API.
//
// The zero value is not usable; construct with New.
type Client struct {
	base       url.URL
	httpClient *http.Client
}

// New creates an OpenWebif client for the given receiver.
//
// The returned client authenticates every request with HTTP digest auth
// and bounds every round-trip with the configured timeout.
func New(opts Options) *Client {
	scheme := "http"
	if opts.SSL {
		scheme = "https"
	}

	transport := &http.Transport{}
	if opts.SSL && !opts.VerifyTLS {
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true, //nolint:gosec // receivers ship self-signed certificates
		}
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		base: url.URL{
			Scheme: scheme,
			Host:   fmt.Sprintf("%s:%d", opts.Host, opts.Port),
		},
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &digest.Transport{
				Username:  opts.Username,
				Password:  opts.Password,
				Transport: transport,
			},
		},
	}
}

// Host returns the host:port the client is connected to.
func (c *Client) Host() string {
	return c.base.Host
}

// Get performs a GET request against an endpoint page and returns the raw
// response body.
//
// Parameters:
//   - ctx: Context for cancellation (the client timeout still applies)
//   - page: Endpoint page to request
//   - query: Optional query parameters (may be nil)
//
// Returns:
//   - []byte: Raw response body
//   - error: ErrUnknownPage, ErrRequestFailed or ErrBadStatus
func (c *Client) Get(ctx context.Context, page Page, query url.Values) ([]byte, error) {
	path, ok := page.Path()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPage, page)
	}

	u := c.base
	u.Path = path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned %d", ErrBadStatus, path, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %w", ErrRequestFailed, err)
	}

	return body, nil
}

// RemoteControl sends a remote-control key press to the receiver.
//
// Parameters:
//   - ctx: Context for cancellation
//   - command: Remote-control command identifier (e.g. 105 power toggle)
//
// Returns:
//   - Ack: Receiver acknowledgement (e2result / e2resulttext)
//   - error: Transport or parse failure
func (c *Client) RemoteControl(ctx context.Context, command int) (Ack, error) {
	query := url.Values{"command": {strconv.Itoa(command)}}
	body, err := c.Get(ctx, PageRemoteControl, query)
	if err != nil {
		return Ack{}, err
	}
	return parseAck(body, "e2result", "e2resulttext")
}

// Zap switches the receiver to another service.
//
// Parameters:
//   - ctx: Context for cancellation
//   - sRef: Enigma2 service reference of the target service
//   - title: Optional title shown for the zap action (may be empty)
//
// Returns:
//   - Ack: Receiver acknowledgement (e2state / e2statetext)
//   - error: Transport or parse failure
func (c *Client) Zap(ctx context.Context, sRef, title string) (Ack, error) {
	query := url.Values{"sRef": {sRef}, "title": {title}}
	body, err := c.Get(ctx, PageZap, query)
	if err != nil {
		return Ack{}, err
	}
	return parseAck(body, "e2state", "e2statetext")
}

// SendMessage displays an on-screen message on the receiver.
//
// Parameters:
//   - ctx: Context for cancellation
//   - text: Message text
//   - messageType: Severity class 0-3 (0 yes/no, 1 info, 2 message, 3 attention)
//   - timeout: Seconds after which the message auto-dismisses
//
// Returns:
//   - Ack: Receiver acknowledgement (e2result / e2resulttext)
//   - error: Transport or parse failure
func (c *Client) SendMessage(ctx context.Context, text string, messageType MessageType, timeout int) (Ack, error) {
	query := url.Values{
		"text":    {text},
		"type":    {strconv.Itoa(int(messageType))},
		"timeout": {strconv.Itoa(timeout)},
	}
	body, err := c.Get(ctx, PageMessage, query)
	if err != nil {
		return Ack{}, err
	}
	return parseAck(body, "e2result", "e2resulttext")
}

// MessageAnswer polls for the answer to a previously sent yes/no message.
//
// The answer text is only returned when the receiver reports a positive
// state flag; otherwise the boolean result is false.
//
// Returns:
//   - string: Answer text (empty unless answered)
//   - bool: Whether an answer was available
//   - error: Transport or parse failure
func (c *Client) MessageAnswer(ctx context.Context) (string, bool, error) {
	query := url.Values{"getanswer": {"now"}}
	body, err := c.Get(ctx, PageMessage, query)
	if err != nil {
		return "", false, err
	}

	ack, err := parseAck(body, "e2state", "e2statetext")
	if err != nil {
		return "", false, err
	}
	if !ack.OK {
		return "", false, nil
	}
	return ack.Text, true, nil
}

// AudioTracks enumerates the audio tracks available on the current service.
//
// Returns:
//   - []AudioTrack: Ordered track records (may be empty)
//   - error: Transport or parse failure
func (c *Client) AudioTracks(ctx context.Context) ([]AudioTrack, error) {
	body, err := c.Get(ctx, PageGetAudioTracks, nil)
	if err != nil {
		return nil, err
	}
	return parseAudioTracks(body)
}

// EPGEvent fetches the current EPG event for a service reference.
//
// Parameters:
//   - ctx: Context for cancellation
//   - sRef: Service reference to query
//
// Returns:
//   - Event: First event of the EPG answer (zero value when the list is empty)
//   - bool: Whether an event record was present
//   - error: Transport or parse failure
func (c *Client) EPGEvent(ctx context.Context, sRef string) (Event, bool, error) {
	query := url.Values{"sRef": {sRef}}
	body, err := c.Get(ctx, PageEPGService, query)
	if err != nil {
		return Event{}, false, err
	}
	return parseFirstEvent(body)
}
