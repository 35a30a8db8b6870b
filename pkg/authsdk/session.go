package authsdk

import (
	"context"
	"io"
	"net/http"
)

// Session is a logged-in client. By default requests authenticate with the
// jar's session cookie; set UseBearerHeader to send the token as an
// Authorization header instead, the way a non-browser client would.
type Session struct {
	client *SDKClient
	token  string
	user   UserInfo

	UseBearerHeader bool
}

// NewSessionFromToken wraps an existing bearer token. The session sends it
// in the Authorization header.
func (c *SDKClient) NewSessionFromToken(token string) *Session {
	return &Session{client: c, token: token, UseBearerHeader: true}
}

// Token returns the bearer token.
func (s *Session) Token() string { return s.token }

// User returns the account returned at login.
func (s *Session) User() UserInfo { return s.user }

// Me fetches the identity behind the session.
func (s *Session) Me(ctx context.Context) (*UserInfo, error) {
	resp, err := s.Do(ctx, http.MethodGet, "/api/auth/me", nil)
	if err != nil {
		return nil, err
	}

	var me UserInfo
	if err := decodeJSON(resp, &me, http.StatusOK); err != nil {
		return nil, err
	}
	return &me, nil
}

// Logout revokes the session's token and clears the cookies.
func (s *Session) Logout(ctx context.Context) error {
	resp, err := s.Do(ctx, http.MethodPost, "/api/auth/logout", nil)
	if err != nil {
		return err
	}

	var msg MessageResponse
	return decodeJSON(resp, &msg, http.StatusOK)
}

// Do sends an authenticated request. State-changing methods carry the CSRF
// header copied from the jar's CSRF cookie.
func (s *Session) Do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	headers := map[string]string{}
	if body != nil {
		headers["Content-Type"] = "application/json"
	}
	if s.UseBearerHeader {
		headers["Authorization"] = "Bearer " + s.token
	}
	if !isSafeMethod(method) {
		if csrf, ok := s.client.CSRFToken(); ok {
			headers[CSRFHeaderName] = csrf
		}
	}
	return s.client.doRequest(ctx, method, path, body, headers)
}

// CheckResponse consumes resp and returns an *APIError when its status is
// not want.
func CheckResponse(resp *http.Response, want int) error {
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != want {
		if err := parseErrorResponse(resp, body); err != nil {
			return err
		}
		return &APIError{StatusCode: resp.StatusCode, Kind: kindForStatus(resp.StatusCode), Message: http.StatusText(resp.StatusCode)}
	}
	return nil
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}
