package helpers

import (
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/pkg/errors"
)

// ErrTokenExpired is returned by ParseJWT for a well-signed but expired token
var ErrTokenExpired = errors.New("token expired")

// TokenClaims is what the session reads out of a bearer token
type TokenClaims struct {
	UserID    int64
	Username  string
	ExpiresAt time.Time
}

// Expired reports whether the claims carry an expiry that has passed
func (c TokenClaims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// GenerateJWT generates a HS256 jwt token with id, username and exp claims
func GenerateJWT(secret []byte, userID int64, username string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{}
	claims["id"] = userID
	claims["username"] = username
	claims["exp"] = time.Now().Add(ttl).Unix()
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token, err := jt.SignedString(secret)
	if err != nil {
		return "", errors.Wrap(err, "jwt sign")
	}
	return token, nil
}

// ParseJWT verifies a token signed by GenerateJWT
func ParseJWT(secret []byte, token string) (TokenClaims, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		if verr, ok := err.(*jwt.ValidationError); ok && verr.Errors&jwt.ValidationErrorExpired != 0 {
			return TokenClaims{}, ErrTokenExpired
		}
		return TokenClaims{}, errors.Wrap(err, "jwt parse")
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return TokenClaims{}, errors.New("jwt claims invalid")
	}
	return claimsFromMap(claims), nil
}

// InspectJWT reads claims without verifying the signature. The client never
// holds the signing key; it only wants expiry and identity hints. Opaque
// (non-JWT) tokens return an error and are still usable as bearer tokens.
func InspectJWT(token string) (TokenClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return TokenClaims{}, errors.Wrap(err, "jwt inspect")
	}
	return claimsFromMap(claims), nil
}

func claimsFromMap(claims jwt.MapClaims) TokenClaims {
	var out TokenClaims
	if id, ok := claims["id"].(float64); ok {
		out.UserID = int64(id)
	}
	if username, ok := claims["username"].(string); ok {
		out.Username = username
	}
	if exp, ok := claims["exp"].(float64); ok {
		out.ExpiresAt = time.Unix(int64(exp), 0)
	}
	return out
}
