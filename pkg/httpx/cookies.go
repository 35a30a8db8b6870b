package httpx

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aussiebroadwan/ltcms/pkg/authsdk"
)

const (
	SessionCookieName = authsdk.SessionCookieName
	CSRFCookieName    = authsdk.CSRFCookieName
	CSRFHeaderName    = authsdk.CSRFHeaderName

	SessionCookieMaxAge = 24 * time.Hour
	CSRFCookieMaxAge    = 6 * time.Hour
)

// SecureCookies reports whether cookies should carry the Secure attribute
// for the raw AUTH_COOKIE_SECURE value. Only an explicit "false" turns it
// off.
func SecureCookies(raw string) bool {
	return !strings.EqualFold(raw, "false")
}

// CookieBinder emits the session and CSRF cookie families.
//
// The session cookie is HttpOnly and SameSite=Lax. The CSRF cookie must be
// readable by the front-end so it can be echoed in the x-csrf-token header,
// so it is not HttpOnly and is SameSite=Strict instead.
type CookieBinder struct {
	Secure bool
	Logger *slog.Logger
}

// Session returns the cookie carrying a bearer token.
func (b CookieBinder) Session(token string) *http.Cookie {
	return b.session(token, int(SessionCookieMaxAge.Seconds()))
}

// CSRF returns the cookie carrying a CSRF token.
func (b CookieBinder) CSRF(token string) *http.Cookie {
	return b.csrf(token, int(CSRFCookieMaxAge.Seconds()))
}

// ClearSession returns the removal form of the session cookie.
func (b CookieBinder) ClearSession() *http.Cookie {
	c := b.session("", -1)
	c.Expires = time.Unix(0, 0).UTC()
	return c
}

// ClearCSRF returns the removal form of the CSRF cookie.
func (b CookieBinder) ClearCSRF() *http.Cookie {
	c := b.csrf("", -1)
	c.Expires = time.Unix(0, 0).UTC()
	return c
}

// MaxAge -1 serializes as Max-Age=0.
func (b CookieBinder) session(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   b.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (b CookieBinder) csrf(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CSRFCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: false,
		Secure:   b.Secure,
		SameSite: http.SameSiteStrictMode,
	}
}

// AppendTo adds c as a Set-Cookie header. A cookie that cannot be
// serialized is logged and dropped; the response carries on without it.
func (b CookieBinder) AppendTo(h http.Header, c *http.Cookie) {
	if err := c.Valid(); err != nil {
		b.logger().Warn("dropping unserializable cookie", "cookie", c.Name, "err", err)
		return
	}
	h.Add("Set-Cookie", c.String())
}

// SetSession appends both cookies of a freshly minted session.
func (b CookieBinder) SetSession(h http.Header, bearer, csrf string) {
	b.AppendTo(h, b.Session(bearer))
	b.AppendTo(h, b.CSRF(csrf))
}

// ClearAll appends the removal forms of both cookies.
func (b CookieBinder) ClearAll(h http.Header) {
	b.AppendTo(h, b.ClearSession())
	b.AppendTo(h, b.ClearCSRF())
}

func (b CookieBinder) logger() *slog.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return slog.Default()
}
