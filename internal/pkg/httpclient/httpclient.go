// Package httpclient builds the *http.Client used by every vendor parser,
// carrying the consortium's shared User-Agent and timeout policy so no
// parser has to reconstruct it.
package httpclient

import (
	"net/http"
	"time"
)

const (
	// DefaultTimeout bounds a single vendor fetch, matching the 30s ceiling
	// the coalescer also enforces end-to-end.
	DefaultTimeout = 30 * time.Second

	// UserAgent identifies this service to vendor sites. Several vendors
	// rate-limit or block requests with no User-Agent at all.
	UserAgent = "Mozilla/5.0 (compatible; ClaremontDineBot/1.0)"
)

// New builds an *http.Client configured with the shared timeout. Vendor
// parsers set the User-Agent header per-request since http.Client has no
// default-header hook.
func New() *http.Client {
	return &http.Client{
		Timeout: DefaultTimeout,
	}
}

// NewRequest builds a GET request carrying the shared User-Agent header.
func NewRequest(url string) (*http.Request, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", UserAgent)
	return req, nil
}
