package filefetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ryanuber/go-glob"
)

type httpGetFunc func(ctx context.Context, url string) (resp *http.Response, err error)

const maxRedirects = 10

type PassthroughFetcherConfig struct {
	// AllowedDomains are glob patterns matched against the host of the target and of
	// every redirect hop. Empty allows any host.
	AllowedDomains []string
}

// PassthroughFetcher issues a plain GET and hands the response back untouched,
// whatever its status code.
type PassthroughFetcher struct {
	getter httpGetFunc
}

var _ Fetcher = (*PassthroughFetcher)(nil)

func NewPassthroughFetcher(config PassthroughFetcherConfig) Fetcher {
	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}

			if !IsAllowedHost(config.AllowedDomains, req.URL.Hostname()) {
				return fmt.Errorf("%w: %s", ErrRedirectNotAllowed, req.URL.Hostname())
			}

			return nil
		},
	}

	getFunc := func(ctx context.Context, url string) (resp *http.Response, err error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}

		return client.Do(req)
	}

	return &PassthroughFetcher{getFunc}
}

func (fetcher *PassthroughFetcher) Fetch(ctx context.Context, targetURL string) (*http.Response, error) {
	parsed, err := url.Parse(targetURL)
	if err != nil {
		return nil, ErrInvalidURL
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, ErrUnsupportedScheme
	}

	if parsed.Host == "" {
		return nil, ErrInvalidURL
	}

	return fetcher.getter(ctx, parsed.String())
}

// IsAllowedHost matches host against the glob patterns in allowedDomains.
func IsAllowedHost(allowedDomains []string, host string) bool {
	if len(allowedDomains) == 0 {
		return true
	}

	for _, allowedDomain := range allowedDomains {
		if glob.Glob(allowedDomain, host) {
			return true
		}
	}

	return false
}

var (
	ErrInvalidURL         = errors.New("target url is invalid")
	ErrUnsupportedScheme  = errors.New("target url scheme must be http or https")
	ErrRedirectNotAllowed = errors.New("redirect target domain not allowed")
)
