package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testSecret = "dev-secret-change-in-production-32bytes"

func TestIssuer_IssueAndVerify(t *testing.T) {
	iss := NewIssuer(testSecret)
	token, err := iss.Issue(Identity{ID: "42", Email: "owner@example.com", Roles: []string{RoleAdmin}}, time.Hour)
	require.NoError(t, err)

	id, err := iss.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "42", id.ID)
	require.Equal(t, "owner@example.com", id.Email)
	require.ElementsMatch(t, []string{RoleAdmin, RoleUser}, id.Roles)
	require.True(t, id.HasRole(RoleAdmin))
}

func TestIssuer_Verify_Expired(t *testing.T) {
	iss := NewIssuer(testSecret)
	iss.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := iss.Issue(Identity{ID: "1"}, time.Hour)
	require.NoError(t, err)

	iss.now = time.Now
	_, err = iss.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuer_Verify_WrongSecret(t *testing.T) {
	token, err := NewIssuer(testSecret).Issue(Identity{ID: "1"}, time.Hour)
	require.NoError(t, err)

	_, err = NewIssuer("another-secret-of-at-least-32-bytes!!").Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuer_Verify_RejectsOtherAlgorithms(t *testing.T) {
	c := claims{RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, c).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewIssuer(testSecret).Verify(token)
	require.True(t, errors.Is(err, ErrInvalidToken))
}

func TestIssuer_Issue_RequiresID(t *testing.T) {
	_, err := NewIssuer(testSecret).Issue(Identity{Email: "a@example.com"}, time.Hour)
	require.Error(t, err)
}

func TestSecretBytes_PadsShortSecrets(t *testing.T) {
	require.Len(t, SecretBytes("short"), minSecretLen)
	require.Equal(t, []byte(testSecret), SecretBytes(testSecret))
}
