package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRole(t *testing.T) {
	require.True(t, RoleAdmin.Valid())
	require.True(t, RoleUser.Valid())
	require.False(t, Role("superuser").Valid())
	require.False(t, Role("Admin").Valid())

	require.True(t, User{Role: RoleAdmin}.IsAdmin())
	require.False(t, User{Role: RoleUser}.IsAdmin())
}

func TestLoginAttemptBlocked(t *testing.T) {
	now := time.Now()
	later := now.Add(time.Minute)
	earlier := now.Add(-time.Minute)

	require.False(t, LoginAttempt{}.Blocked(now))
	require.True(t, LoginAttempt{BlockedUntil: &later}.Blocked(now))
	require.False(t, LoginAttempt{BlockedUntil: &earlier}.Blocked(now))
	require.False(t, LoginAttempt{BlockedUntil: &now}.Blocked(now))
}

func TestBootstrapEnabled(t *testing.T) {
	require.True(t, BootstrapData{AdminUsername: "a", AdminPassword: "b"}.Enabled())
	require.False(t, BootstrapData{AdminUsername: "a"}.Enabled())
	require.False(t, BootstrapData{AdminPassword: "b"}.Enabled())
}
