package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/ltcms/internal/auth/service"
	"github.com/aussiebroadwan/ltcms/pkg/authsdk"
	"github.com/aussiebroadwan/ltcms/pkg/httpx"
	"github.com/aussiebroadwan/ltcms/pkg/slogx"
)

// MaxLoginBody caps the login request body.
const MaxLoginBody = 4 << 10

var errInvalidFormat = authsdk.NewBadRequest("Invalid username or password format")

type LoginHandler struct {
	LoginService *service.LoginService
	Cookies      httpx.CookieBinder
}

// ServeHTTP handles password login.
//
//	@Summary		Log in
//	@Description	Verifies a username and password. On success sets the ltcms_session and ltcms_csrf cookies
//	@Description	and returns the bearer token for non-browser clients. Failed logins take at least 100 ms and
//	@Description	never reveal whether the username exists.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	authsdk.LoginResponse	"Session token and account"
//	@Header			200		{string}	Set-Cookie				"ltcms_session and ltcms_csrf"
//	@Failure		400		{object}	authsdk.APIError		"Invalid request body or credential format"
//	@Failure		401		{object}	authsdk.APIError		"Invalid credentials"
//	@Failure		429		{object}	authsdk.APIError		"Too many failed login attempts"
//	@Failure		500		{object}	authsdk.APIError		"Internal server error"
//	@Router			/api/auth/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req authsdk.LoginRequest
	if err := httpx.DecodeJSON(w, r, MaxLoginBody, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	res, err := h.LoginService.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			slogx.FromContext(ctx).Info("login abandoned by client")
			return
		}
		httpx.WriteError(w, r, loginError(err))
		return
	}

	h.Cookies.SetSession(w.Header(), res.Session.Bearer, res.Session.CSRF)
	httpx.WriteJSON(w, http.StatusOK, authsdk.LoginResponse{
		Token: res.Session.Bearer,
		User: authsdk.UserInfo{
			Username: res.User.Username,
			Role:     res.User.Role.String(),
		},
	})
}

// loginError attaches the external form to a login failure while keeping
// the cause for the log line.
func loginError(err error) error {
	var apiErr *authsdk.APIError
	switch {
	case errors.Is(err, service.ErrInvalidUsername), errors.Is(err, service.ErrInvalidPassword):
		apiErr = errInvalidFormat
	case errors.Is(err, service.ErrInvalidCredentials):
		apiErr = authsdk.ErrInvalidCredentials
	case errors.Is(err, service.ErrLoginBlocked):
		apiErr = authsdk.ErrLoginBlocked
	default:
		return err
	}
	return fmt.Errorf("%w: %w", apiErr, err)
}
