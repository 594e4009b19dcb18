// Package network provides the HTTP client shared by HTTP-based player backends.
package network

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/vlcremote/vlcremote/constant"
)

// Client is shared by every HTTP backend. Players live on the local network,
// so it gives up quickly; per-request deadlines come from the caller's context.
var Client = &http.Client{
	Timeout:   30 * time.Second,
	Transport: newTransport(),
}

// newTransport keeps a handful of idle connections to the player alive so that
// one-per-second status reads reuse them.
func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 10
	t.MaxIdleConnsPerHost = 4
	t.IdleConnTimeout = 90 * time.Second
	t.ResponseHeaderTimeout = 10 * time.Second
	t.ExpectContinueTimeout = time.Second
	return t
}

// NewRequest builds a request carrying the application's user agent.
func NewRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", constant.UserAgent)
	return req, nil
}
