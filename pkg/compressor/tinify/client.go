package tinifycompressor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/thebartekbanach/tinyrelay/pkg/compressor"
)

type httpRequestFunc func(req *http.Request) (*http.Response, error)

type Config struct {
	ServiceURL string
}

type Client struct {
	config      Config
	makeRequest httpRequestFunc
}

var _ compressor.CompressionService = (*Client)(nil)

func NewClient(config Config) Client {
	return Client{config, http.DefaultClient.Do}
}

func (c *Client) Shrink(ctx context.Context, secret, contentType string, payload []byte) (compressor.ShrinkResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.shrinkEndpoint(), bytes.NewReader(payload))
	if err != nil {
		return compressor.ShrinkResult{}, err
	}

	req.SetBasicAuth(basicAuthUser, secret)
	req.Header.Set("Content-Type", contentType)

	response, body, err := c.do(req)
	if err != nil {
		return compressor.ShrinkResult{}, fmt.Errorf("shrink request: %w", err)
	}

	if !isSuccess(response.StatusCode) {
		return compressor.ShrinkResult{}, &compressor.UpstreamError{
			Stage:      stageCompression,
			StatusCode: response.StatusCode,
			Body:       body,
		}
	}

	location, err := response.Location()
	if err != nil {
		if errors.Is(err, http.ErrNoLocation) {
			return compressor.ShrinkResult{}, compressor.ErrLocationMissing
		}

		return compressor.ShrinkResult{}, err
	}

	result := compressor.ShrinkResult{Location: location.String()}

	// metadata is optional, a non-JSON body only drops input/output
	var metadata shrinkMetadata
	if err := json.Unmarshal(body, &metadata); err == nil {
		result.Input = metadata.Input
		result.Output = metadata.Output
	}

	return result, nil
}

func (c *Client) Transform(ctx context.Context, secret, location string, request compressor.TransformRequest) (compressor.TransformResult, error) {
	if request.IsEmpty() {
		return compressor.TransformResult{}, ErrEmptyTransform
	}

	payload, err := json.Marshal(request)
	if err != nil {
		return compressor.TransformResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, location, bytes.NewReader(payload))
	if err != nil {
		return compressor.TransformResult{}, err
	}

	req.SetBasicAuth(basicAuthUser, secret)
	req.Header.Set("Content-Type", "application/json")

	response, body, err := c.do(req)
	if err != nil {
		return compressor.TransformResult{}, fmt.Errorf("transform request: %w", err)
	}

	if !isSuccess(response.StatusCode) {
		return compressor.TransformResult{}, &compressor.UpstreamError{
			Stage:      stageTransform,
			StatusCode: response.StatusCode,
			Body:       body,
		}
	}

	return compressor.TransformResult{
		ContentType: response.Header.Get("Content-Type"),
		Width:       response.Header.Get("Image-Width"),
		Height:      response.Header.Get("Image-Height"),
		Length:      response.Header.Get("Content-Length"),
		Body:        body,
	}, nil
}

func (c *Client) do(req *http.Request) (*http.Response, []byte, error) {
	response, err := c.makeRequest(req)
	if err != nil {
		return nil, nil, err
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, nil, err
	}

	return response, body, nil
}

func (c *Client) shrinkEndpoint() string {
	return strings.TrimRight(c.config.ServiceURL, "/") + "/shrink"
}

func isSuccess(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}

type shrinkMetadata struct {
	Input  json.RawMessage `json:"input"`
	Output json.RawMessage `json:"output"`
}

const (
	basicAuthUser    = "api"
	stageCompression = "compression"
	stageTransform   = "transform"
)

var (
	ErrEmptyTransform = errors.New("transform request is empty")
)
