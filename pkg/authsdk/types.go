package authsdk

// ============================================================================
// Request Types
// ============================================================================

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	// Username matches ^[A-Za-z0-9._-]{1,50}$
	Username string `json:"username"`

	// Password is 1-128 characters
	Password string `json:"password"`
}

// ============================================================================
// Response Types
// ============================================================================

// UserInfo identifies the authenticated account.
type UserInfo struct {
	Username string `json:"username"`

	// Role is "admin" or "user"
	Role string `json:"role"`
}

// LoginResponse is returned by a successful login. The same token is also
// set as the session cookie.
type LoginResponse struct {
	Token string   `json:"token"`
	User  UserInfo `json:"user"`
}

// MessageResponse is a plain acknowledgement, e.g. {"message":"Logged out"}.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes additional Checks field).
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks maps each readiness dependency to "ok" or a failure summary
	Checks map[string]string `json:"checks,omitempty"`
}
