// Package client implements the forum HTTP client: form-based login, post
// creation, own-post listing, and deletion with independent verification.
// All knowledge of the site's URLs, form fields, and markup lives here; the
// worker above it deals only in sessions and PostRefs.
package client

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/coldhawk/coldhawk/internal/config"
	"github.com/coldhawk/coldhawk/internal/errors"
	"github.com/coldhawk/coldhawk/internal/logging"
)

// Config holds the client's transport settings. BaseURL and MemberBaseURL
// are separate because login lives on a different host than the boards.
type Config struct {
	BaseURL       string
	MemberBaseURL string
	UserAgent     string
	Timeout       time.Duration
	MaxRetries    int
	RetryDelay    time.Duration
	MaxRetryDelay time.Duration
	Logger        *logging.Logger
}

// FromAppConfig builds a client Config from the application configuration.
func FromAppConfig(cfg *config.Config, logger *logging.Logger) Config {
	return Config{
		BaseURL:       cfg.HTTP.BaseURL,
		MemberBaseURL: cfg.HTTP.MemberBaseURL,
		UserAgent:     cfg.HTTP.UserAgent,
		Timeout:       cfg.HTTP.Timeout(),
		MaxRetries:    cfg.HTTP.MaxRetries,
		RetryDelay:    cfg.HTTP.RetryDelay(),
		MaxRetryDelay: cfg.HTTP.MaxRetryDelay(),
		Logger:        logger,
	}
}

// Client is a logged-in browsing identity against one forum account. The
// cookie jar is the only login state; both underlying HTTP clients share it
// so a login on the member host is visible to board requests.
type Client struct {
	cfg  Config
	http *http.Client
	// noRedirect is used where the interesting signal is the redirect
	// response itself (the login dispatch).
	noRedirect *http.Client
	logger     *logging.Logger
}

// New creates a Client with a fresh cookie jar.
func New(cfg Config) (*Client, error) {
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NopLogger()
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, errors.NewClientError("failed to create cookie jar", err)
	}

	return &Client{
		cfg: cfg,
		http: &http.Client{
			Jar:     jar,
			Timeout: cfg.Timeout,
		},
		noRedirect: &http.Client{
			Jar:     jar,
			Timeout: cfg.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		logger: cfg.Logger.WithComponent("client"),
	}, nil
}

// response is a fully drained HTTP response. FinalURL reflects redirects
// the transport followed.
type response struct {
	Status   int
	FinalURL string
	Body     string
}

// get issues a GET with retry on transport failures. HTTP error statuses
// are returned to the caller, never retried.
func (c *Client) get(ctx context.Context, rawURL string) (*response, error) {
	return c.do(ctx, c.http, http.MethodGet, rawURL, nil, nil)
}

// postForm issues a form POST with retry on transport failures.
func (c *Client) postForm(ctx context.Context, rawURL string, form url.Values, headers map[string]string) (*response, error) {
	return c.do(ctx, c.http, http.MethodPost, rawURL, form, headers)
}

// postFormNoRedirect is postForm without redirect following, for endpoints
// whose redirect response carries the signal.
func (c *Client) postFormNoRedirect(ctx context.Context, rawURL string, form url.Values, headers map[string]string) (*response, error) {
	return c.do(ctx, c.noRedirect, http.MethodPost, rawURL, form, headers)
}

func (c *Client) do(ctx context.Context, hc *http.Client, method, rawURL string, form url.Values, headers map[string]string) (*response, error) {
	var lastErr error
	for attempt := 0; attempt < c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := c.backoff(ctx, attempt-1); err != nil {
				return nil, err
			}
		}

		resp, err := c.attempt(ctx, hc, method, rawURL, form, headers)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, errors.NewClientError("request canceled", ctx.Err()).WithURL(rawURL)
		}
		c.logger.Warn("request failed",
			"method", method,
			"url", rawURL,
			"attempt", attempt+1,
			"max_attempts", c.cfg.MaxRetries,
			"error", err)
	}
	return nil, errors.NewClientError("retries exhausted", errors.Join(errors.ErrRetriesExhausted, lastErr)).
		WithOperation(method).
		WithURL(rawURL).
		WithRetryable(true)
}

func (c *Client) attempt(ctx context.Context, hc *http.Client, method, rawURL string, form url.Values, headers map[string]string) (*response, error) {
	var bodyReader io.Reader
	if form != nil {
		bodyReader = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, bodyReader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "ko-KR,ko;q=0.9,en-US;q=0.8,en;q=0.7")
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &response{
		Status:   resp.StatusCode,
		FinalURL: finalURL,
		Body:     string(body),
	}, nil
}

// backoff sleeps the exponential delay for the given zero-based retry
// index, capped at MaxRetryDelay, respecting cancellation.
func (c *Client) backoff(ctx context.Context, retry int) error {
	delay := c.cfg.RetryDelay << retry
	if c.cfg.MaxRetryDelay > 0 && delay > c.cfg.MaxRetryDelay {
		delay = c.cfg.MaxRetryDelay
	}
	if delay <= 0 {
		return nil
	}

	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return errors.NewClientError("retry wait canceled", ctx.Err())
	case <-t.C:
		return nil
	}
}

// cookies returns the jar's cookies for the given base URL.
func (c *Client) cookies(base string) []*http.Cookie {
	u, err := url.Parse(base)
	if err != nil {
		return nil
	}
	return c.http.Jar.Cookies(u)
}

// hasCookie reports whether a cookie with the given name is present for
// either host.
func (c *Client) hasCookie(name string) bool {
	for _, base := range []string{c.cfg.MemberBaseURL, c.cfg.BaseURL} {
		for _, ck := range c.cookies(base) {
			if ck.Name == name && ck.Value != "" {
				return true
			}
		}
	}
	return false
}
