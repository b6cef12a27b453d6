// Package httpclient implements the shared HTTP client of spec.md §5: a
// single client configuration, exponential backoff retry on rate limiting
// and transient server errors, and per-provider auth attachment. Grounded
// on original_source/shared/src/providers/retry.rs's fetch_with_retry
// (initial delay, multiplier, max delay, max retries, per-attempt
// timeout).
package httpclient

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/http2"

	"llmpipe/appconfig"
	"llmpipe/perr"
	"llmpipe/provider"
)

// Client wraps a standard *http.Client with the retry/backoff policy and
// provider-aware auth attachment this module's callers need.
type Client struct {
	http    *http.Client
	retry   appconfig.HTTPConfig
}

// New builds a Client from cfg, using an HTTP/2-capable transport (grounded
// on the pack's golang.org/x/net dependency) so providers that support
// h2 get connection multiplexing for free.
func New(cfg appconfig.HTTPConfig) (*Client, error) {
	transport := &http.Transport{}
	if err := http2.ConfigureTransport(transport); err != nil {
		return nil, perr.Internalf(err, "httpclient: configure http2 transport")
	}
	return &Client{
		http:  &http.Client{Transport: transport, Timeout: cfg.Timeout},
		retry: cfg,
	}, nil
}

// Request describes one call to a provider endpoint. Path is joined to the
// provider's BaseURL; Query is sent with the request, and for an
// AuthQueryParam provider the credential is set into it last, replacing
// any parameter of the same name.
type Request struct {
	Provider provider.Provider
	Method   string
	Path     string
	Query    url.Values
	Body     io.Reader
	Headers  map[string]string

	// BaseURLOverride replaces Provider.BaseURL() for this request when
	// non-empty, e.g. to reach a self-hosted proxy in front of a
	// provider's API or an httptest server in tests. Client does not read
	// appconfig's per-provider overrides itself; the caller sets this field.
	BaseURLOverride string
}

// Do sends req with the configured retry policy, attaching req.Provider's
// credential per its AuthMethod. It returns perr.KindMissingCredential if
// the provider has no resolvable credential and is not local.
func (c *Client) Do(ctx context.Context, req Request) (*http.Response, error) {
	cred, ok := req.Provider.ResolveCredential()
	if !ok {
		return nil, perr.MissingCredential(req.Provider.String())
	}

	delay := time.Duration(c.retry.RetryInitialMs) * time.Millisecond
	maxDelay := time.Duration(c.retry.RetryMaxMs) * time.Millisecond

	var lastErr error
	for attempt := 0; attempt <= c.retry.RetryMaxRetries; attempt++ {
		resp, err := c.attempt(ctx, req, cred)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		var pe *perr.Error
		if !asPerr(err, &pe) || !pe.Retryable() || attempt == c.retry.RetryMaxRetries {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, perr.Cancelled("httpclient retry wait")
		case <-time.After(delay):
		}
		delay = time.Duration(math.Min(float64(delay*2), float64(maxDelay)))
	}
	return nil, lastErr
}

func (c *Client) attempt(ctx context.Context, req Request, cred string) (*http.Response, error) {
	base := req.Provider.BaseURL()
	if req.BaseURLOverride != "" {
		base = req.BaseURLOverride
	}
	fullURL := base + req.Path
	query := req.Query
	if query == nil {
		query = url.Values{}
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, fullURL, req.Body)
	if err != nil {
		return nil, perr.Internalf(err, "httpclient: build request")
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	cfg, _ := provider.ConfigFor(req.Provider)
	switch cfg.Auth {
	case provider.AuthBearerToken:
		httpReq.Header.Set("Authorization", "Bearer "+cred)
	case provider.AuthAPIKeyHeader:
		httpReq.Header.Set(cfg.AuthParam, cred)
	case provider.AuthQueryParam:
		query.Set(cfg.AuthParam, cred)
	case provider.AuthNone:
	}
	httpReq.URL.RawQuery = query.Encode()

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, perr.Timeout(fmt.Sprintf("%s %s", req.Method, req.Path), err)
		}
		return nil, perr.Internalf(err, "httpclient: request to %s", fullURL)
	}
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, perr.HTTPStatus(resp.StatusCode, string(body))
	}
	return resp, nil
}

func asPerr(err error, target **perr.Error) bool {
	for err != nil {
		if pe, ok := err.(*perr.Error); ok {
			*target = pe
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
