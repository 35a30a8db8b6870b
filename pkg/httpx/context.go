package httpx

import (
	"context"
	"time"

	"github.com/aussiebroadwan/ltcms/pkg/jwtx"
)

type ctxKey string

const (
	CtxKeyUserID   ctxKey = "user_id"
	CtxKeyIdentity ctxKey = "identity"
)

// Identity is the verified subject of a request. It can only be produced
// by the Authenticator.
type Identity struct {
	subject     string
	role        string
	expiresAt   time.Time
	fingerprint string
}

// Subject returns the username the bearer token was issued to.
func (i Identity) Subject() string { return i.subject }

// Role returns the role claim.
func (i Identity) Role() string { return i.role }

// IsAdmin reports whether the role claim is admin.
func (i Identity) IsAdmin() bool { return i.role == jwtx.RoleAdmin }

// ExpiresAt returns the token's exp claim.
func (i Identity) ExpiresAt() time.Time { return i.expiresAt }

// Fingerprint returns the blacklist key of the presented token.
func (i Identity) Fingerprint() string { return i.fingerprint }

func contextWithAuth(ctx context.Context, id Identity) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, id.subject)
	ctx = context.WithValue(ctx, CtxKeyIdentity, id)
	return ctx
}

// IdentityFromContext returns the identity attached by the Authenticator.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(CtxKeyIdentity).(Identity)
	return id, ok && id.subject != ""
}
