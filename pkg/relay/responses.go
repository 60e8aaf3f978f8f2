package relay

import (
	"encoding/json"
	"time"
)

type messageResponse struct {
	Message string `json:"message"`
}

type invalidSelectorResponse struct {
	Message  string   `json:"message"`
	Received string   `json:"received"`
	Expected []string `json:"expected"`
}

type keyNotConfiguredResponse struct {
	Message  string `json:"message"`
	Selector string `json:"selector"`
}

type upstreamFailureResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// UnexpectedErrorResponse is the body of every 500 caused by a failure the relay did not anticipate.
type UnexpectedErrorResponse struct {
	Message   string `json:"message"`
	Stack     string `json:"stack,omitempty"`
	Timestamp string `json:"timestamp"`
}

type locationResponse struct {
	Location string          `json:"location"`
	Input    json.RawMessage `json:"input,omitempty"`
	Output   json.RawMessage `json:"output,omitempty"`
}

func NewUnexpectedErrorResponse(message, stack string) UnexpectedErrorResponse {
	return UnexpectedErrorResponse{
		Message:   message,
		Stack:     stack,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

const (
	MessageMethodNotAllowed   = "Method Not Allowed"
	MessageKeyMissing         = "API key is missing"
	MessageInvalidSelector    = "Invalid API key selector"
	MessageKeyNotConfigured   = "API key not configured or empty"
	MessageNoFileData         = "No file data provided"
	MessageInvalidJSON        = "Invalid JSON body"
	MessageInvalidFileData    = "Invalid file data encoding"
	MessageBodyTooLarge       = "Request body too large"
	MessageLocationMissing    = "Upstream did not return a location header"
	MessageProxyNotAllowed    = "Proxy target domain not allowed"
	MessageProxyTargetInvalid = "Proxy target must be an absolute http(s) url"
)
