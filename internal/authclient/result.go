package authclient

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedResult is returned when a response body is not a Submission Result.
var ErrMalformedResult = errors.New("malformed submission result")

// Result is the structured answer of a form endpoint.
type Result struct {
	Success   bool   `json:"success" yaml:"success"`
	Redirect  string `json:"redirect,omitempty" yaml:"redirect,omitempty"`
	Message   string `json:"message,omitempty" yaml:"message,omitempty"`
	Duplicate bool   `json:"duplicate,omitempty" yaml:"duplicate,omitempty"` // face already registered by someone else
	PicName   string `json:"pic_name,omitempty" yaml:"pic_name,omitempty"`
}

// Succeeded returns a successful result redirecting to location.
func Succeeded(location string) Result {
	return Result{Success: true, Redirect: location}
}

// Rejected returns a failed result carrying message.
func Rejected(message string) Result {
	return Result{Success: false, Message: message}
}

// DecodeResult parses a response body. The body must be a JSON object with
// a boolean success member; anything else is ErrMalformedResult.
func DecodeResult(body []byte) (*Result, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResult, err)
	}
	successRaw, ok := raw["success"]
	if !ok {
		return nil, fmt.Errorf("%w: no success member", ErrMalformedResult)
	}
	// null unmarshals into a bool without error
	var success bool
	if bytes.Equal(bytes.TrimSpace(successRaw), []byte("null")) {
		return nil, fmt.Errorf("%w: success is null", ErrMalformedResult)
	}
	if err := json.Unmarshal(successRaw, &success); err != nil {
		return nil, fmt.Errorf("%w: success is not a boolean", ErrMalformedResult)
	}

	var result Result
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResult, err)
	}
	return &result, nil
}
