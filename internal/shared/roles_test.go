package shared_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meridian-hrm/meridian-hrm/internal/shared"
)

func TestParseRole(t *testing.T) {
	for _, role := range shared.AllRoles() {
		parsed, err := shared.ParseRole(string(role))
		require.NoError(t, err)
		require.Equal(t, role, parsed)
	}

	for _, raw := range []string{"", "superuser", "Admin", "ADMIN", " hr"} {
		_, err := shared.ParseRole(raw)
		require.Error(t, err, "input %q", raw)
	}
}

func TestRoleIn(t *testing.T) {
	require.True(t, shared.RoleHR.In(shared.RoleAdmin, shared.RoleHR))
	require.False(t, shared.RoleEmployee.In(shared.RoleAdmin, shared.RoleHR))
	require.False(t, shared.RoleAdmin.In())
}
