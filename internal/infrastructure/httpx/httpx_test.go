package httpx

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func innerClient(t *testing.T, c *http.Client) *retryablehttp.Client {
	t.Helper()
	rt, ok := c.Transport.(*retryablehttp.RoundTripper)
	require.True(t, ok, "expected retryable round tripper, got %T", c.Transport)
	return rt.Client
}

func flakyServer(t *testing.T, failures int32, status int) (*httptest.Server, *atomic.Int32, *atomic.Value) {
	t.Helper()
	var attempts atomic.Int32
	var agent atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent.Store(r.Header.Get("User-Agent"))
		if attempts.Add(1) <= failures {
			w.WriteHeader(status)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	t.Cleanup(server.Close)
	return server, &attempts, &agent
}

func TestNewClientProxyDisablesKeepAlive(t *testing.T) {
	c, err := NewClient(Options{ProxyURL: "http://127.0.0.1:8080", RetryMax: 2})
	require.NoError(t, err)

	rc := innerClient(t, c)
	ua, ok := rc.HTTPClient.Transport.(*userAgentTransport)
	require.True(t, ok)
	base, ok := ua.Base.(*http.Transport)
	require.True(t, ok)
	assert.True(t, base.DisableKeepAlives)
	assert.Equal(t, defaultTimeout, rc.HTTPClient.Timeout)
	assert.Equal(t, 2, rc.RetryMax)
	assert.Equal(t, defaultUserAgent, ua.UserAgent)
}

func TestNewClientInvalidProxyURL(t *testing.T) {
	_, err := NewClient(Options{ProxyURL: "http://[::1"})
	assert.Error(t, err)
}

func TestNewClientRetryMaxIsHonored(t *testing.T) {
	for _, n := range []int{0, -1} {
		c, err := NewClient(Options{RetryMax: n})
		require.NoError(t, err)
		assert.Equal(t, 0, innerClient(t, c).RetryMax)
	}
}

func TestClientRetriesServerErrors(t *testing.T) {
	for _, status := range []int{http.StatusServiceUnavailable, http.StatusTooManyRequests} {
		server, attempts, agent := flakyServer(t, 2, status)

		c, err := NewClient(Options{RetryMax: 2, RetryWait: time.Millisecond, UserAgent: "agent/1"})
		require.NoError(t, err)

		resp, err := c.Get(server.URL)
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "ok", string(body))
		assert.Equal(t, int32(3), attempts.Load())
		assert.Equal(t, "agent/1", agent.Load())
	}
}

func TestClientReturnsLastResponseWhenRetriesRunOut(t *testing.T) {
	server, attempts, _ := flakyServer(t, 10, http.StatusBadGateway)

	c, err := NewClient(Options{RetryMax: 1, RetryWait: time.Millisecond})
	require.NoError(t, err)

	resp, err := c.Get(server.URL)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, int32(2), attempts.Load())
}

func TestClientDoesNotRetryNotFound(t *testing.T) {
	server, attempts, _ := flakyServer(t, 10, http.StatusNotFound)

	c, err := NewClient(Options{RetryMax: 3, RetryWait: time.Millisecond})
	require.NoError(t, err)

	resp, err := c.Get(server.URL)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, int32(1), attempts.Load())
}

func TestUserAgentTransportKeepsCallerHeader(t *testing.T) {
	var seen string
	tr := &userAgentTransport{
		UserAgent: "agent/1",
		Base: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			seen = r.Header.Get("User-Agent")
			return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader("ok"))}, nil
		}),
	}

	req, err := http.NewRequest(http.MethodGet, "http://example.org", nil)
	require.NoError(t, err)
	resp, err := tr.RoundTrip(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, "agent/1", seen)
	assert.Empty(t, req.Header.Get("User-Agent"), "caller request must not be mutated")

	req.Header.Set("User-Agent", "custom/9")
	_, err = tr.RoundTrip(req)
	require.NoError(t, err)
	assert.Equal(t, "custom/9", seen)

	_, err = (&userAgentTransport{}).RoundTrip(req)
	assert.Error(t, err)
}
