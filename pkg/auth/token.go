// Package auth issues and verifies the bearer tokens that identify API operators.
package auth

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// RoleAdmin grants access to the message listing.
	RoleAdmin = "ROLE_ADMIN"
	// RoleUser is implied for every authenticated identity.
	RoleUser = "ROLE_USER"

	tokenIssuer  = "portfolio-api"
	minSecretLen = 32
)

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("auth: invalid token")

// Identity is the authenticated principal attached to a request.
type Identity struct {
	ID    string   `json:"id"`
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

// HasRole reports whether the identity carries role.
func (i Identity) HasRole(role string) bool {
	return slices.Contains(i.Roles, role)
}

type claims struct {
	Email string   `json:"email"`
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// Verifier validates a raw bearer token.
type Verifier interface {
	Verify(token string) (Identity, error)
}

// Issuer signs and verifies HS256 tokens with a shared secret.
type Issuer struct {
	secret []byte
	now    func() time.Time
}

// NewIssuer は署名用シークレットから Issuer を生成する（最低32バイトにパディング）
func NewIssuer(secret string) *Issuer {
	return &Issuer{secret: SecretBytes(secret), now: time.Now}
}

// SecretBytes は文字列から署名用のバイト列を生成する（最低32バイト）
func SecretBytes(s string) []byte {
	b := []byte(s)
	if len(b) < minSecretLen {
		out := make([]byte, minSecretLen)
		copy(out, b)
		return out
	}
	return b
}

// Issue signs a token for id valid for ttl. ROLE_USER is always included.
func (i *Issuer) Issue(id Identity, ttl time.Duration) (string, error) {
	if id.ID == "" {
		return "", fmt.Errorf("auth: identity id is required")
	}
	roles := id.Roles
	if !slices.Contains(roles, RoleUser) {
		roles = append(slices.Clone(roles), RoleUser)
	}
	now := i.now()
	c := claims{
		Email: id.Email,
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   id.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(i.secret)
}

// Verify parses token and returns the identity it carries.
func (i *Issuer) Verify(token string) (Identity, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c,
		func(*jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if c.Subject == "" {
		return Identity{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return Identity{ID: c.Subject, Email: c.Email, Roles: c.Roles}, nil
}
