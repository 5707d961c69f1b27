package authclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Client talks to the form endpoints of a face-auth server. It keeps a
// cookie jar, so a session cookie handed out with a form page travels
// with the submission of that form.
type Client struct {
	baseURL        *url.URL
	httpClient     *http.Client
	captureDir     string
	uploadObserver func(size int64) io.Writer
	timeout        *time.Duration // applied after all options
}

// Option configures a Client.
type Option func(*Client) error

// WithHTTPClient replaces the underlying HTTP client. A client without a
// cookie jar gets one; nil keeps the default client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc != nil {
			c.httpClient = hc
		}
		return nil
	}
}

// WithTimeout sets a client-side timeout. Zero disables it, which is the default.
// It applies to the final HTTP client whatever the option order.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d < 0 {
			return fmt.Errorf("invalid timeout %s", d)
		}
		c.timeout = &d
		return nil
	}
}

// WithCapture saves every endpoint response body into dir.
// An empty dir disables capturing.
func WithCapture(dir string) Option {
	return func(c *Client) error {
		return c.SetCaptureDir(dir)
	}
}

// WithUploadObserver is called with the body size before each form upload.
// Bytes of the body are written to the returned writer as they are sent.
func WithUploadObserver(fn func(size int64) io.Writer) Option {
	return func(c *Client) error {
		c.uploadObserver = fn
		return nil
	}
}

// New creates a client for the server at rawURL.
func New(rawURL string, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("invalid server URL %q: scheme must be http or https", rawURL)
	}

	c := &Client{baseURL: parsed, httpClient: &http.Client{}}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.timeout != nil {
		c.httpClient.Timeout = *c.timeout
	}
	if c.httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("could not create cookie jar: %w", err)
		}
		c.httpClient.Jar = jar
	}
	return c, nil
}

// BaseURL returns the server base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Resolve resolves a location (an endpoint path or a redirect target) the
// way a browser resolves a link on a page served from the base URL.
func (c *Client) Resolve(location string) (*url.URL, error) {
	ref, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("invalid location %q: %w", location, err)
	}
	return c.baseURL.ResolveReference(ref), nil
}

// ResolveFrom resolves location as a browser does for a response received
// from endpoint, so relative locations are taken relative to the endpoint.
func (c *Client) ResolveFrom(endpoint, location string) (*url.URL, error) {
	base, err := c.Resolve(endpoint)
	if err != nil {
		return nil, err
	}
	ref, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("invalid location %q: %w", location, err)
	}
	return base.ResolveReference(ref), nil
}

// Cookies returns the cookies the jar would send to the base URL.
func (c *Client) Cookies() []*http.Cookie {
	return c.httpClient.Jar.Cookies(c.baseURL)
}

// readErrorBody reads the response body for error messages.
// Returns a placeholder if reading fails (we're already in an error path).
func readErrorBody(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, 512))
	if err != nil {
		return "(could not read error body)"
	}
	return strings.TrimSpace(string(body))
}

// SetCaptureDir enables response capturing to the specified directory.
// Pass an empty string to disable capturing.
func (c *Client) SetCaptureDir(dir string) error {
	if dir == "" {
		c.captureDir = ""
		return nil
	}

	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("could not create capture directory: %w", err)
	}
	c.captureDir = dir
	return nil
}

// captureResponse saves a response body to a file if capturing is enabled.
// The filename is derived from the endpoint and the request id.
func (c *Client) captureResponse(endpoint, requestID string, body []byte) {
	if c.captureDir == "" {
		return
	}

	name := strings.Trim(strings.ReplaceAll(endpoint, "/", "_"), "_")
	if name == "" {
		name = "root"
	}
	timestamp := time.Now().Format("20060102_150405")
	name = fmt.Sprintf("%s_%s_%s.json", name, timestamp, requestID)

	path := filepath.Join(c.captureDir, name)

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err == nil {
		body = pretty.Bytes()
	}

	if err := os.WriteFile(path, body, 0600); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to capture response to %s: %v\n", path, err)
	}
}
