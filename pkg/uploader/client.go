package uploader

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/thebartekbanach/tinyrelay/pkg/compressor"
	"github.com/thebartekbanach/tinyrelay/pkg/relay"
)

type httpRequestFunc func(req *http.Request) (*http.Response, error)

type ResultKind string

const (
	ResultDirect   ResultKind = "direct"
	ResultLocation ResultKind = "location"
)

type Result struct {
	Kind          ResultKind
	Data          []byte
	ContentType   string
	Location      string
	Width         string
	Height        string
	OriginalSize  int64
	ProcessedSize int64
}

// SavedRatio is the share of the original size saved, in percent.
func (r Result) SavedRatio() float64 {
	if r.OriginalSize == 0 {
		return 0
	}

	return (1 - float64(r.ProcessedSize)/float64(r.OriginalSize)) * 100
}

type ClientConfig struct {
	RelayURL string
	Selector string
}

// Client talks to the relay on behalf of the uploader.
type Client struct {
	config      ClientConfig
	makeRequest httpRequestFunc
}

func NewClient(config ClientConfig) Client {
	return Client{config, http.DefaultClient.Do}
}

// Process sends a single file to the relay and returns the processed image.
func (c *Client) Process(ctx context.Context, file File, data []byte, options Options) (Result, error) {
	req, err := c.buildRequest(ctx, file, data, options)
	if err != nil {
		return Result{}, err
	}

	response, err := c.makeRequest(req)
	if err != nil {
		return Result{}, fmt.Errorf("relay request: %w", err)
	}
	defer response.Body.Close()

	if !isSuccess(response.StatusCode) {
		return Result{}, newRelayError(response)
	}

	contentType := response.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "image/") {
		body, err := io.ReadAll(response.Body)
		if err != nil {
			return Result{}, err
		}

		return Result{
			Kind:          ResultDirect,
			Data:          body,
			ContentType:   contentType,
			Width:         response.Header.Get("Image-Width"),
			Height:        response.Header.Get("Image-Height"),
			OriginalSize:  file.Size,
			ProcessedSize: int64(len(body)),
		}, nil
	}

	var envelope struct {
		Location string `json:"location"`
	}
	if err := json.NewDecoder(response.Body).Decode(&envelope); err != nil || envelope.Location == "" {
		return Result{}, ErrInvalidResponse
	}

	return c.fetchLocation(ctx, file, envelope.Location)
}

func (c *Client) buildRequest(ctx context.Context, file File, data []byte, options Options) (*http.Request, error) {
	var body []byte
	contentType := file.ContentType

	if options.Operation == compressor.OperationCompress {
		body = data
	} else {
		encoded, err := json.Marshal(buildEnvelope(file, data, options))
		if err != nil {
			return nil, err
		}

		body = encoded
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.relayEndpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("X-API-Key", c.config.Selector)
	req.Header.Set("Content-Type", contentType)
	return req, nil
}

func buildEnvelope(file File, data []byte, options Options) relay.Envelope {
	envelope := relay.Envelope{
		Operation: string(options.Operation),
		FileData:  base64.StdEncoding.EncodeToString(data),
		FileName:  file.Name,
		FileType:  file.ContentType,
	}

	switch options.Operation {
	case compressor.OperationResize:
		envelope.Resize = &compressor.ResizeSpec{
			Method: options.Resize.Method,
			Width:  options.Resize.Width,
			Height: options.Resize.Height,
		}
	case compressor.OperationConvert:
		envelope.Convert = &compressor.ConvertSpec{Type: compressor.FormatList{options.Convert.Format}}

		// jpeg has no transparency, so it always needs a background
		if options.Convert.Format == "image/jpeg" {
			background := options.Convert.Background
			if background == "" {
				background = DefaultBackground
			}
			envelope.Transform = &compressor.TransformSpec{Background: background}
		}
	}

	return envelope
}

func (c *Client) fetchLocation(ctx context.Context, file File, location string) (Result, error) {
	proxyURL := c.relayEndpoint() + "?url=" + url.QueryEscape(location)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, proxyURL, nil)
	if err != nil {
		return Result{}, err
	}

	response, err := c.makeRequest(req)
	if err != nil {
		return Result{}, fmt.Errorf("download request: %w", err)
	}
	defer response.Body.Close()

	if !isSuccess(response.StatusCode) {
		return Result{}, newRelayError(response)
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Kind:          ResultLocation,
		Data:          body,
		ContentType:   response.Header.Get("Content-Type"),
		Location:      location,
		OriginalSize:  file.Size,
		ProcessedSize: int64(len(body)),
	}, nil
}

func (c *Client) relayEndpoint() string {
	return strings.TrimRight(c.config.RelayURL, "/") + "/"
}

func isSuccess(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}

// RelayError is a non-2xx reply from the relay.
type RelayError struct {
	StatusCode int
	Message    string
}

func (e *RelayError) Error() string {
	return fmt.Sprintf("%s (Status: %d)", e.Message, e.StatusCode)
}

func newRelayError(response *http.Response) *RelayError {
	message := defaultErrorMessage

	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}

	if err := json.NewDecoder(response.Body).Decode(&body); err != nil {
		if statusText := http.StatusText(response.StatusCode); statusText != "" {
			message = statusText
		}
	} else if body.Message != "" {
		message = body.Message
	} else if body.Error != "" {
		message = body.Error
	}

	return &RelayError{StatusCode: response.StatusCode, Message: message}
}

const defaultErrorMessage = "Processing failed"

var (
	ErrInvalidResponse = errors.New("Invalid response from server")
)
