package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPermissions_ValueAndScan(t *testing.T) {
	v, err := Permissions{PermissionUser, PermissionAdmin}.Value()
	require.NoError(t, err)
	assert.Equal(t, "USER,ADMIN", v)

	var p Permissions
	require.NoError(t, p.Scan([]byte("USER, ITEMDELETE,")))
	assert.Equal(t, Permissions{PermissionUser, PermissionItemDelete}, p)

	require.NoError(t, p.Scan(""))
	assert.Empty(t, p)

	require.NoError(t, p.Scan(nil))
	assert.Empty(t, p)

	assert.Error(t, p.Scan(42))
}

func TestPermissions_Has(t *testing.T) {
	p := Permissions{PermissionUser}
	assert.True(t, p.Has(PermissionUser))
	assert.False(t, p.Has(PermissionAdmin))
}

func TestIsKnownPermission(t *testing.T) {
	for _, k := range KnownPermissions {
		assert.True(t, IsKnownPermission(k), k)
	}
	assert.False(t, IsKnownPermission("admin"))
	assert.False(t, IsKnownPermission("ROOT"))
}

func TestUser_CheckResetFields(t *testing.T) {
	tok := "abc"
	exp := time.Now()

	assert.NoError(t, (&User{}).CheckResetFields())
	assert.NoError(t, (&User{ResetToken: &tok, ResetTokenExpiry: &exp}).CheckResetFields())
	assert.ErrorIs(t, (&User{ResetToken: &tok}).CheckResetFields(), ErrResetFieldsMismatch)
	assert.ErrorIs(t, (&User{ResetTokenExpiry: &exp}).CheckResetFields(), ErrResetFieldsMismatch)
}

func TestIdentity_IsAnonymous(t *testing.T) {
	assert.True(t, Anonymous.IsAnonymous())
	assert.False(t, Identity{UserID: "u1"}.IsAnonymous())
}
