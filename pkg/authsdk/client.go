package authsdk

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

// Wire names shared with the server.
const (
	SessionCookieName = "ltcms_session"
	CSRFCookieName    = "ltcms_csrf"
	CSRFHeaderName    = "x-csrf-token"
)

// SDKClient is a client for the ltcms auth API. Its HTTP client carries a
// cookie jar, so it behaves like a browser: after Login the session and
// CSRF cookies ride along on every request.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a new client with an empty cookie jar.
func NewSDKClient(baseURL string) *SDKClient {
	jar, _ := cookiejar.New(nil) // never fails with nil options
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
			Jar:     jar,
		},
	}
}

// Login exchanges credentials for a session.
func (c *SDKClient) Login(ctx context.Context, username, password string) (*Session, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", LoginRequest{
		Username: username,
		Password: password,
	}, nil)
	if err != nil {
		return nil, err
	}

	var login LoginResponse
	if err := decodeJSON(resp, &login, http.StatusOK); err != nil {
		return nil, err
	}

	return &Session{client: c, token: login.Token, user: login.User}, nil
}

// Cookie returns the value of the named cookie held for BaseURL.
func (c *SDKClient) Cookie(name string) (string, bool) {
	if c.HTTPClient.Jar == nil {
		return "", false
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return "", false
	}
	for _, ck := range c.HTTPClient.Jar.Cookies(u) {
		if ck.Name == name {
			return ck.Value, true
		}
	}
	return "", false
}

// CSRFToken returns the CSRF cookie value, if one is held.
func (c *SDKClient) CSRFToken() (string, bool) {
	return c.Cookie(CSRFCookieName)
}

// Logout ends whatever session the jar holds. It succeeds even when there
// is none.
func (c *SDKClient) Logout(ctx context.Context) error {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
	if err != nil {
		return err
	}

	var msg MessageResponse
	if err := decodeJSON(resp, &msg, http.StatusOK); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}
