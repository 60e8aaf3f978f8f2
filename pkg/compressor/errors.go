package compressor

import (
	"encoding/json"
	"errors"
	"fmt"
)

// UpstreamError is returned when the compression API answers with a non-success status.
// Body holds the upstream response verbatim.
type UpstreamError struct {
	Stage      string
	StatusCode int
	Body       []byte
}

func (e *UpstreamError) Error() string {
	if message := e.Message(); message != "" {
		return fmt.Sprintf("%s failed with status %d: %s", e.Stage, e.StatusCode, message)
	}

	return fmt.Sprintf("%s failed with status %d", e.Stage, e.StatusCode)
}

// Message extracts the upstream "message" field, or returns an empty string.
func (e *UpstreamError) Message() string {
	var body struct {
		Message string `json:"message"`
	}

	if err := json.Unmarshal(e.Body, &body); err != nil {
		return ""
	}

	return body.Message
}

// JSONBody reports whether Body is a JSON object that can be relayed as-is.
func (e *UpstreamError) JSONBody() bool {
	var body map[string]json.RawMessage
	return json.Unmarshal(e.Body, &body) == nil && body != nil
}

func AsUpstreamError(err error) (*UpstreamError, bool) {
	var upstreamErr *UpstreamError
	if errors.As(err, &upstreamErr) {
		return upstreamErr, true
	}

	return nil, false
}

var (
	ErrLocationMissing = errors.New("upstream did not return a location header")
)
