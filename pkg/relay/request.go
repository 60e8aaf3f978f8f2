package relay

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/thebartekbanach/tinyrelay/pkg/compressor"
)

const jsonContentType = "application/json"

// Envelope is the JSON shape used for resize and convert uploads.
type Envelope struct {
	Operation string                    `json:"operation,omitempty"`
	Resize    *compressor.ResizeSpec    `json:"resize,omitempty"`
	Convert   *compressor.ConvertSpec   `json:"convert,omitempty"`
	Transform *compressor.TransformSpec `json:"transform,omitempty"`
	FileData  string                    `json:"fileData"`
	FileName  string                    `json:"fileName,omitempty"`
	FileType  string                    `json:"fileType,omitempty"`
}

// Request is an inbound upload normalized to a single binary payload.
type Request struct {
	Operation   compressor.Operation
	Payload     []byte
	ContentType string
	FileName    string

	Resize    *compressor.ResizeSpec
	Convert   *compressor.ConvertSpec
	Transform *compressor.TransformSpec
}

// ParseRequest accepts either a JSON envelope (content type exactly application/json)
// or a raw binary body. Binary uploads are always compress operations.
func ParseRequest(contentType string, body io.Reader) (Request, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return Request{}, ErrBodyTooLarge
		}

		return Request{}, err
	}

	var request Request
	if contentType == jsonContentType {
		request, err = parseEnvelope(raw)
		if err != nil {
			return Request{}, err
		}
	} else {
		request = Request{
			Operation:   compressor.OperationCompress,
			Payload:     raw,
			ContentType: contentType,
		}
	}

	if len(request.Payload) == 0 {
		return Request{}, ErrNoFileData
	}

	if request.ContentType == "" {
		request.ContentType = mimetype.Detect(request.Payload).String()
	}

	return request, nil
}

func parseEnvelope(raw []byte) (Request, error) {
	var envelope Envelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return Request{}, ErrInvalidJSON
	}

	payload, err := decodeFileData(envelope.FileData)
	if err != nil {
		return Request{}, ErrInvalidFileData
	}

	return Request{
		Operation:   compressor.ParseOperation(envelope.Operation),
		Payload:     payload,
		ContentType: envelope.FileType,
		FileName:    envelope.FileName,
		Resize:      envelope.Resize,
		Convert:     envelope.Convert,
		Transform:   envelope.Transform,
	}, nil
}

func decodeFileData(data string) ([]byte, error) {
	if data == "" {
		return nil, nil
	}

	// data URLs are accepted as well, only the part after the comma is payload
	if strings.HasPrefix(data, "data:") {
		if comma := strings.IndexByte(data, ','); comma >= 0 {
			data = data[comma+1:]
		}
	}

	if decoded, err := base64.StdEncoding.DecodeString(data); err == nil {
		return decoded, nil
	}

	return base64.RawStdEncoding.DecodeString(strings.TrimRight(data, "="))
}

// TransformRequest builds the body of the second upstream call. It is empty for
// plain compression and whenever the envelope lacks the sub-object the operation needs.
func (r Request) TransformRequest() compressor.TransformRequest {
	transform := compressor.TransformRequest{}

	switch r.Operation {
	case compressor.OperationResize:
		transform.Resize = r.Resize
	case compressor.OperationConvert:
		if r.Convert != nil {
			transform.Convert = r.Convert
			transform.Transform = r.Transform
		}
	}

	return transform
}

var (
	ErrBodyTooLarge    = errors.New("request body too large")
	ErrInvalidJSON     = errors.New("invalid json body")
	ErrInvalidFileData = errors.New("invalid file data encoding")
	ErrNoFileData      = errors.New("no file data provided")
)
