package http

import (
	"net/http"

	"github.com/aussiebroadwan/ltcms/pkg/authsdk"
	"github.com/aussiebroadwan/ltcms/pkg/httpx"
)

// MeHandler returns the identity behind the bearer.
//
//	@Summary		Current account
//	@Description	Returns the username and role carried by the bearer token, read from the Authorization header
//	@Description	or the ltcms_session cookie.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.UserInfo	"username, role"
//	@Failure		401	{object}	authsdk.APIError	"Missing, invalid, expired or revoked token"
//	@Router			/api/auth/me [get].
func MeHandler(w http.ResponseWriter, a httpx.Authenticated) {
	id := a.Identity()
	httpx.WriteJSON(w, http.StatusOK, authsdk.UserInfo{
		Username: id.Subject(),
		Role:     id.Role(),
	})
}
