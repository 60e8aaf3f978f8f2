package compressor

import (
	"context"
	"encoding/json"
)

type Operation string

const (
	OperationCompress Operation = "compress"
	OperationResize   Operation = "resize"
	OperationConvert  Operation = "convert"
)

// ParseOperation falls back to compress for anything it does not recognize.
func ParseOperation(raw string) Operation {
	switch Operation(raw) {
	case OperationResize, OperationConvert:
		return Operation(raw)
	default:
		return OperationCompress
	}
}

type ResizeSpec struct {
	Method string `json:"method,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

type ConvertSpec struct {
	Type FormatList `json:"type"`
}

type TransformSpec struct {
	Background string `json:"background,omitempty"`
}

// TransformRequest is the body of the second call made against a shrink location.
type TransformRequest struct {
	Resize    *ResizeSpec    `json:"resize,omitempty"`
	Convert   *ConvertSpec   `json:"convert,omitempty"`
	Transform *TransformSpec `json:"transform,omitempty"`
}

func (t TransformRequest) IsEmpty() bool {
	return t.Resize == nil && t.Convert == nil && t.Transform == nil
}

type ShrinkResult struct {
	Location string
	Input    json.RawMessage
	Output   json.RawMessage
}

type TransformResult struct {
	ContentType string
	Width       string
	Height      string
	Length      string
	Body        []byte
}

type CompressionService interface {
	Shrink(ctx context.Context, secret, contentType string, payload []byte) (ShrinkResult, error)
	Transform(ctx context.Context, secret, location string, request TransformRequest) (TransformResult, error)
}
