package httpx

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const (
	defaultTimeout   = 20 * time.Second
	defaultRetryWait = 200 * time.Millisecond
	maxRetryWait     = 5 * time.Second
	defaultUserAgent = "FilmCatalog/1.0"
)

// Options tunes the playlist fetch client.
// RetryMax counts retries after the first attempt; zero or negative disables them.
type Options struct {
	ProxyURL  string
	Timeout   time.Duration
	RetryMax  int
	RetryWait time.Duration
	UserAgent string
	Logger    *slog.Logger
}

// userAgentTransport sets a User-Agent on requests that carry none.
type userAgentTransport struct {
	Base      http.RoundTripper
	UserAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}
	if t.Base == nil {
		return nil, errors.New("nil base transport")
	}
	if req.Header.Get("User-Agent") != "" || t.UserAgent == "" {
		return t.Base.RoundTrip(req)
	}
	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", t.UserAgent)
	return t.Base.RoundTrip(r)
}

// NewClient builds the HTTP client used by playlist strategies. Connection
// errors, 429 and 5xx responses are retried with exponential backoff; once
// retries run out the last response is returned to the caller as is.
func NewClient(opts Options) (*http.Client, error) {
	base := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 15 * time.Second,
	}

	if proxy := strings.TrimSpace(opts.ProxyURL); proxy != "" {
		u, err := url.Parse(proxy)
		if err != nil {
			return nil, err
		}
		base.Proxy = http.ProxyURL(u)
		base.DisableKeepAlives = true
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	wait := opts.RetryWait
	if wait <= 0 {
		wait = defaultRetryWait
	}
	ua := strings.TrimSpace(opts.UserAgent)
	if ua == "" {
		ua = defaultUserAgent
	}

	rc := retryablehttp.NewClient()
	rc.HTTPClient = &http.Client{
		Transport: &userAgentTransport{Base: base, UserAgent: ua},
		Timeout:   timeout,
	}
	rc.RetryMax = max(opts.RetryMax, 0)
	rc.RetryWaitMin = wait
	rc.RetryWaitMax = max(wait, maxRetryWait)
	rc.CheckRetry = retryablehttp.DefaultRetryPolicy
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	if opts.Logger != nil {
		rc.Logger = retryablehttp.LeveledLogger(opts.Logger)
	} else {
		rc.Logger = nil
	}

	return rc.StandardClient(), nil
}
