package authclient

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/kozaktomas/faceauth/internal/form"
)

// RequestIDHeader carries the per-submission id.
const RequestIDHeader = "X-Request-ID"

// PostForm sends data to endpoint as multipart/form-data and decodes the
// Submission Result. The body is read and decoded whatever the status code.
// Network failures and bodies that are not a result are returned as errors.
func (c *Client) PostForm(ctx context.Context, endpoint string, data *form.Data) (*Result, error) {
	target, err := c.Resolve(endpoint)
	if err != nil {
		return nil, err
	}

	body, contentType, err := form.Encode(data)
	if err != nil {
		return nil, fmt.Errorf("could not encode form: %w", err)
	}

	var reader io.Reader = body
	if c.uploadObserver != nil {
		if w := c.uploadObserver(int64(body.Len())); w != nil {
			reader = io.TeeReader(body, w)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	req.ContentLength = int64(body.Len())

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set(RequestIDHeader, requestID)

	resp, err := c.httpClient.Do(req) //nolint:gosec // URL resolved against the configured server
	if err != nil {
		return nil, fmt.Errorf("could not send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read response body: %w", err)
	}

	c.captureResponse(endpoint, requestID, respBody)

	result, err := DecodeResult(respBody)
	if err != nil {
		return nil, fmt.Errorf("status %d from %s: %w", resp.StatusCode, target.Path, err)
	}
	return result, nil
}

// FetchForm loads page and returns the definition of the form with the
// given id. Cookies set by the page are kept for later submissions.
func (c *Client) FetchForm(ctx context.Context, page, formID string) (*form.Definition, error) {
	target, err := c.Resolve(page)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Accept", "text/html")

	resp, err := c.httpClient.Do(req) //nolint:gosec // URL resolved against the configured server
	if err != nil {
		return nil, fmt.Errorf("could not send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, readErrorBody(resp.Body))
	}

	def, err := form.ParseHTML(resp.Body, formID)
	if err != nil {
		return nil, fmt.Errorf("could not read form from %s: %w", target.Path, err)
	}
	return def, nil
}

// Visit issues a GET for location, following server redirects, and returns
// the status code and the final URL.
func (c *Client) Visit(ctx context.Context, location string) (int, string, error) {
	target, err := c.Resolve(location)
	if err != nil {
		return 0, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return 0, "", fmt.Errorf("could not create request: %w", err)
	}

	resp, err := c.httpClient.Do(req) //nolint:gosec // URL resolved against the configured server
	if err != nil {
		return 0, "", fmt.Errorf("could not send request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, resp.Request.URL.String(), nil
}
