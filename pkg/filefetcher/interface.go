package filefetcher

import (
	"context"
	"net/http"
)

// Fetcher retrieves a remote artifact. The caller owns and must close the response body.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*http.Response, error)
}
