package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/ltcms/internal/auth/service"
	"github.com/aussiebroadwan/ltcms/pkg/authsdk"
	"github.com/aussiebroadwan/ltcms/pkg/httpx"
	"github.com/aussiebroadwan/ltcms/pkg/slogx"
)

// LogoutHandler clears both session cookies and, when the request carries a
// live bearer, blacklists it until its own expiry. Requests without a
// usable credential still get the removal cookies and a 200, so repeating a
// logout yields the same response.
//
// There is no CSRF check here: the session cookie is SameSite=Lax and is
// never sent on a cross-site POST.
type LogoutHandler struct {
	Authn          *httpx.Authenticator
	SessionService *service.SessionService
	Cookies        httpx.CookieBinder
}

// ServeHTTP godoc
//
//	@Summary		Log out
//	@Description	Revokes the presented bearer token, if any, and expires both session cookies.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.MessageResponse	"Logged out"
//	@Header			200	{string}	Set-Cookie				"removal forms of ltcms_session and ltcms_csrf"
//	@Failure		500	{object}	authsdk.APIError		"Revocation could not be recorded"
//	@Router			/api/auth/logout [post].
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	h.Cookies.ClearAll(w.Header())

	id, err := h.Authn.Resolve(r)
	switch {
	case errors.Is(err, httpx.ErrBlacklistUnavailable):
		httpx.WriteError(w, r, err)
		return
	case err != nil:
		log.Debug("logout without a live session", "reason", httpx.Reason(err))
	default:
		if err := h.SessionService.Logout(ctx, id.Subject(), id.Fingerprint(), id.ExpiresAt()); err != nil {
			httpx.WriteError(w, r, err)
			return
		}
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Message: "Logged out"})
}
