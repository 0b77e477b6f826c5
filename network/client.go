// Package network provides the HTTP client shared by the few remote calls reel makes.
package network

import (
	"net/http"
	"time"

	"github.com/reel-player/reel/constant"
)

// Client is used for release lookups. Requests are short and rare, so the pool stays small.
var Client = &http.Client{
	Timeout:   5 * time.Second,
	Transport: &userAgent{next: newTransport()},
}

func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 4
	t.MaxIdleConnsPerHost = 2
	t.IdleConnTimeout = 30 * time.Second
	t.ResponseHeaderTimeout = 5 * time.Second
	return t
}

// userAgent sets constant.UserAgent on requests that carry none.
type userAgent struct {
	next http.RoundTripper
}

func (u *userAgent) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return u.next.RoundTrip(req)
	}

	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", constant.UserAgent)
	return u.next.RoundTrip(req)
}
