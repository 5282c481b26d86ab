package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/coldhawk/coldhawk/internal/errors"
)

const (
	loginPagePath     = "/user/scorpio/mlogin"
	loginDispatchPath = "/m/login/dispatch"

	// bridgePath is an arbitrary board page fetched after login to carry
	// the member-host session over to the board host.
	bridgePath = "/board/diablo4/6025"
)

// encodePassword applies the login form's reversible encoding: each rune's
// codepoint as lowercase hex, concatenated. This is transport encoding the
// form script performs in the browser, not protection.
func encodePassword(pw string) string {
	var sb strings.Builder
	for _, r := range pw {
		fmt.Fprintf(&sb, "%x", r)
	}
	return sb.String()
}

// Login authenticates the client's cookie jar against the member host.
// Success is judged solely by the presence of the M_ID and M_SID session
// cookies afterwards; the response status and body are not trusted.
func (c *Client) Login(ctx context.Context, userID, password string) error {
	// Warm-up visit so the login page sees a normal browsing session.
	if _, err := c.get(ctx, c.cfg.BaseURL+"/"); err != nil {
		return errors.NewClientError("login warm-up failed", err).WithOperation("login")
	}

	loginURL := c.cfg.MemberBaseURL + loginPagePath
	page, err := c.get(ctx, loginURL)
	if err != nil {
		return errors.NewClientError("login page fetch failed", err).WithOperation("login").WithURL(loginURL)
	}
	if page.Status != http.StatusOK {
		return errors.NewClientError("login page unavailable", errors.ErrBadStatus).
			WithOperation("login").WithURL(loginURL)
	}

	doc, err := parsePage(page.Body)
	if err != nil {
		return errors.NewClientError("login page parse failed", err).WithOperation("login")
	}

	csrf := inputValue(doc, "st")
	if csrf == "" {
		return errors.NewClientError("login form has no csrf token", errors.ErrMissingToken).
			WithOperation("login").WithURL(loginURL)
	}

	form := url.Values{}
	for name, value := range hiddenInputs(doc) {
		form.Set(name, value)
	}
	form.Set("user_id", userID)
	form.Set("password", encodePassword(password))
	form.Set("kp", "0")
	form.Set("st", csrf)
	form.Set("wsip", "")
	form.Set("surl", c.cfg.BaseURL+"/")

	headers := map[string]string{
		"Accept":  "*/*",
		"Origin":  c.cfg.MemberBaseURL,
		"Referer": loginURL,
	}

	resp, err := c.postFormNoRedirect(ctx, c.cfg.MemberBaseURL+loginDispatchPath, form, headers)
	if err != nil {
		return errors.NewClientError("login request failed", err).WithOperation("login")
	}

	okStatus := resp.Status == http.StatusOK || resp.Status == http.StatusFound
	if !okStatus || !c.hasCookie("M_ID") || !c.hasCookie("M_SID") {
		return errors.NewClientError("credentials rejected", errors.ErrLoginFailed).
			WithOperation("login")
	}

	c.bridgeSession(ctx)
	c.logger.Info("login succeeded", "user_id", userID)
	return nil
}

// bridgeSession visits the board host so the fresh member cookies get
// exercised there. Best effort: failures here do not fail the login, the
// next board request simply does the bridging itself.
func (c *Client) bridgeSession(ctx context.Context) {
	for _, path := range []string{"/", bridgePath} {
		if _, err := c.get(ctx, c.cfg.BaseURL+path); err != nil {
			c.logger.Debug("session bridge request failed", "path", path, "error", err)
			return
		}
	}
}

// LoggedIn reports whether the jar currently holds the session cookies.
func (c *Client) LoggedIn() bool {
	return c.hasCookie("M_ID") && c.hasCookie("M_SID")
}
