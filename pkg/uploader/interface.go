package uploader

import "context"

type RelayClient interface {
	Process(ctx context.Context, file File, data []byte, options Options) (Result, error)
}

// Sink stores processed images and returns where each one ended up.
type Sink interface {
	Save(ctx context.Context, name, contentType string, data []byte) (string, error)
}

var _ RelayClient = (*Client)(nil)
