package domain

import "github.com/aussiebroadwan/ltcms/pkg/jwtx"

// Role is one of the two tiers carried in the bearer role claim.
type Role string

const (
	RoleAdmin Role = jwtx.RoleAdmin
	RoleUser  Role = jwtx.RoleUser
)

// Valid reports whether r is in the closed role set.
func (r Role) Valid() bool { return jwtx.ValidRole(string(r)) }

func (r Role) String() string { return string(r) }
