package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/ltcms/internal/auth/service"
	"github.com/aussiebroadwan/ltcms/internal/auth/store"
	"github.com/aussiebroadwan/ltcms/pkg/httpx"
	"github.com/aussiebroadwan/ltcms/pkg/secretx"
	"github.com/aussiebroadwan/ltcms/pkg/slogx"

	_ "github.com/aussiebroadwan/ltcms/api/ltcms" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware
	handler     http.Handler

	secrets      *secretx.Registry
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	Authn   *httpx.Authenticator
	Guard   *httpx.CSRFGuard
	Cookies httpx.CookieBinder

	LoginService   *service.LoginService
	SessionService *service.SessionService
}

func NewRouter(
	secrets *secretx.Registry,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		secrets:      secrets,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

// ApplyRoutes registers the auth, system and docs routes. Authn, Guard,
// Cookies and the services must be set first.
func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())

	r.handler = httpx.Chain(r.Mux, r.middlewares...)
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title						ltcms Authentication API
//	@version					0.1.0
//	@description				Session authentication for the ltcms content backend.
//	@description
//	@description				Login sets an HttpOnly ltcms_session cookie carrying an HS256 bearer token and a
//	@description				script-readable ltcms_csrf cookie. State-changing requests must echo the CSRF
//	@description				cookie in the x-csrf-token header.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/ltcms
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				HS256 bearer token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.handler.ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	login := &LoginHandler{LoginService: r.LoginService, Cookies: r.Cookies}
	logout := &LogoutHandler{
		Authn:          r.Authn,
		SessionService: r.SessionService,
		Cookies:        r.Cookies,
	}

	// POST /login - strict rate limit by IP, in front of the per-username lockout
	r.Mux.Handle("POST /api/auth/login",
		httpx.Chain(login,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /logout - authentication is optional, so limit by user or IP
	r.Mux.Handle("POST /api/auth/logout",
		httpx.Chain(logout,
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)

	// GET /me - requires a bearer
	r.Mux.Handle("GET /api/auth/me", r.Read(MeHandler))
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.secrets),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

// Read wraps a handler that needs a bearer but no CSRF check.
func (r *Router) Read(h httpx.AuthenticatedHandlerFunc) http.Handler {
	return r.Authn.Require(h, httpx.RateLimitByUser(httpx.LenientLimit))
}

// Write wraps a state-changing handler: bearer first, then the CSRF guard.
func (r *Router) Write(h httpx.CheckedHandlerFunc) http.Handler {
	return r.Authn.Require(r.Guard.Protect(h), httpx.RateLimitByUser(httpx.ModerateLimit))
}

// Admin is Write plus the admin role gate, checked before the CSRF token.
func (r *Router) Admin(h httpx.CheckedHandlerFunc) http.Handler {
	return r.Authn.Require(httpx.AdminOnly(r.Guard.Protect(h)), httpx.RateLimitByUser(httpx.ModerateLimit))
}

// Mount registers a plain http.Handler behind the same pipeline. Safe
// methods pass the guard; everything else needs a matching CSRF pair.
// Handlers read the caller with httpx.IdentityFromContext.
func (r *Router) Mount(pattern string, h http.Handler) {
	r.Mux.Handle(pattern, httpx.Chain(h,
		r.Authn.Middleware(),
		r.Guard.Middleware(),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	))
}
