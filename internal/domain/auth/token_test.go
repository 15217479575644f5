package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("test-secret", Claims{
		UserID:     "user-1",
		EmployeeID: "emp-1",
		RoleName:   RoleManager,
	}, time.Minute)
	require.NoError(t, err)

	claims, err := ParseToken("test-secret", token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "emp-1", claims.EmployeeID)
	assert.Equal(t, RoleManager, claims.RoleName)
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken("secret-a", Claims{UserID: "user-1"}, time.Minute)
	require.NoError(t, err)

	_, err = ParseToken("secret-b", token)
	assert.Error(t, err)
}

func TestParseTokenExpired(t *testing.T) {
	token, err := GenerateToken("test-secret", Claims{UserID: "user-1"}, -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken("test-secret", token)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	require.NoError(t, CheckPassword(hash, "s3cret-pass"))
	assert.Error(t, CheckPassword(hash, "wrong"))
}

func TestRolePermissions(t *testing.T) {
	assert.True(t, HasPermission(RoleManager, PermLeaveApprove))
	assert.False(t, HasPermission(RoleEmployee, PermLeaveApprove))
	assert.True(t, HasPermission(RoleEmployee, PermLeaveWrite))
	assert.False(t, HasPermission("unknown", PermLeaveRead))
}
