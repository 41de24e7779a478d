package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestPermissions(t *testing.T) {
	perms := Permissions()

	// Dashboard has view only; the other nine groups are full CRUD.
	assert.Len(t, perms, 1+9*4)
	assert.Equal(t, "dashboard-view", perms[0].ID)
	assert.True(t, Exists("products-edit"))
	assert.True(t, Exists("report-delete"))
	assert.False(t, Exists("dashboard-delete"))
}

func TestGrouped(t *testing.T) {
	g := Grouped()

	require.Len(t, g, 10)
	assert.Equal(t, "Dashboard", g[0].Group)
	assert.Len(t, g[0].Permissions, 1)
	assert.Equal(t, "Report&Analysis", g[6].Group)
	assert.Equal(t, "report-view", g[6].Permissions[0].ID)
}

func TestNormalize(t *testing.T) {
	t.Run("dedupes and orders", func(t *testing.T) {
		got, err := Normalize([]string{"role-view", "dashboard-view", "role-view", " users-edit "})
		require.NoError(t, err)
		assert.Equal(t, []string{"dashboard-view", "users-edit", "role-view"}, got)
	})

	t.Run("unknown permission", func(t *testing.T) {
		_, err := Normalize([]string{"users-view", "launch-missiles"})
		assert.ErrorIs(t, err, ErrUnknownPermission)
		assert.Contains(t, err.Error(), "launch-missiles")
	})

	t.Run("empty", func(t *testing.T) {
		got, err := Normalize(nil)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestDefaultRoles(t *testing.T) {
	roles, err := DefaultRoles()
	require.NoError(t, err)
	require.Len(t, roles, 3)

	byName := map[string][]string{}
	for _, r := range roles {
		byName[r.Name] = r.Permissions
	}

	assert.Len(t, byName["Admin"], len(Permissions()))
	assert.Contains(t, byName["Editor"], "products-edit")
	assert.NotContains(t, byName["Editor"], "products-delete")
	assert.NotContains(t, byName["Editor"], "users-view")
	assert.Len(t, byName["Viewer"], 10)
}

func TestParseSeed_Errors(t *testing.T) {
	_, err := ParseSeed([]byte("roles: [{groups: ['*'], actions: ['*']}]"))
	assert.Error(t, err)

	_, err = ParseSeed([]byte("roles: [{name: Nobody, groups: [nope], actions: [view]}]"))
	assert.Error(t, err)

	_, err = ParseSeed([]byte("roles: ["))
	assert.Error(t, err)
}
