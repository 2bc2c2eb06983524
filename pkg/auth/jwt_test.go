package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jordanlanch/leadcrm/pkg/policy"
)

func TestGenerateAndValidateJWT(t *testing.T) {
	secret := "test-secret"

	token, err := GenerateJWT("000000000000000000000001", "admin@example.com", policy.RoleAdmin, "0000000000000000000000aa", secret, 24)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateJWT(token, secret)
	require.NoError(t, err)
	assert.Equal(t, "000000000000000000000001", claims.UserID)
	assert.Equal(t, "admin@example.com", claims.Email)
	assert.Equal(t, string(policy.RoleAdmin), claims.Role)
	assert.Equal(t, "0000000000000000000000aa", claims.OrganizationID)

	p := claims.Principal()
	assert.True(t, p.IsAdmin())
	assert.False(t, p.IsSuperAdmin())
}

func TestValidateJWT_WrongSecret(t *testing.T) {
	token, err := GenerateJWT("000000000000000000000001", "a@b.c", policy.RoleAgent, "", "secret-a", 24)
	require.NoError(t, err)

	_, err = ValidateJWT(token, "secret-b")
	assert.Error(t, err)
}

func TestValidateJWT_Expired(t *testing.T) {
	token, err := GenerateJWT("000000000000000000000001", "a@b.c", policy.RoleAgent, "", "secret", -1)
	require.NoError(t, err)

	_, err = ValidateJWT(token, "secret")
	assert.Error(t, err)
}

func TestValidateJWT_Garbage(t *testing.T) {
	_, err := ValidateJWT("not.a.token", "secret")
	assert.Error(t, err)
}
