package utils // package utils provides helpers for session token creation

import (
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens

	"github.com/iliyamo/investor-portal/internal/model"
)

// Coarse role tags carried in the session claim. Every rejection and
// authorization decision downstream keys off this tag, not the full role.
const (
	ClaimRoleAdmin  = "admin"
	ClaimRoleClient = "client"
)

// SessionToken represents a signed HS256 JWT session claim along with its
// expiry. The Token field contains the serialized JWT; Exp the UTC
// expiration time.
type SessionToken struct {
	Token string
	Exp   time.Time
}

// NewSessionToken builds and signs a session claim for an account. The JWT
// carries the account's internal id (sub), a coarse role tag, expiration
// (exp) and issued at (iat).
func NewSessionToken(secret string, accountID uint64, role string, ttlMin int) (SessionToken, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub":  accountID,
		"role": ClaimRole(role),
		"exp":  exp.Unix(),
		"iat":  time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return SessionToken{}, err
	}
	return SessionToken{Token: signed, Exp: exp}, nil
}

// ClaimRole collapses an account role into the coarse admin/non-admin tag.
func ClaimRole(role string) string {
	if role == model.RoleAdmin {
		return ClaimRoleAdmin
	}
	return ClaimRoleClient
}
