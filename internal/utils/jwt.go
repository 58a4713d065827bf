package utils // package utils provides helpers for token issuing and hashing

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
)

// Token validation failure modes.  Callers need to tell an expired token
// apart from a forged or undecodable one, so ParseAccessToken maps the
// jwt library's errors onto these three sentinels.  None of them ever
// carries the signing secret.
var (
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenInvalid   = errors.New("token invalid")
)

// Claims is the payload embedded in every access token: the subject (user
// ID as a decimal string), the username and role for display/authorization,
// plus the standard issued-at and expiry timestamps.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim back into the numeric user ID.
func (c *Claims) UserID() (uint64, error) {
	return strconv.ParseUint(c.Subject, 10, 64)
}

// AccessToken is a signed JWT together with its expiry.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewAccessToken builds and signs an HS256 JWT for a user.  ttlDays
// controls the token lifetime (1 day by default at the config layer).
func NewAccessToken(secret string, userID uint64, username, role string, ttlDays int) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlDays) * 24 * time.Hour)
	claims := Claims{
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies a raw token against the secret and returns its
// claims.  Only HMAC-signed tokens are accepted; a token signed with any
// other method is rejected as invalid.  The returned error is always one
// of ErrTokenMalformed, ErrTokenExpired or ErrTokenInvalid.
func ParseAccessToken(secret, raw string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		default:
			return nil, ErrTokenInvalid
		}
	}
	if !tok.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
