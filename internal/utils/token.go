package utils // package utils provides helper functions for token creation and hashing

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// Token type discriminators embedded in the signed payload.  Both token
// kinds are signed with the same secret; without the "type" claim an
// access token could be replayed as a refresh token and vice versa.
const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// ErrInvalidToken is returned for every verification failure: bad
// signature, expired, wrong type, missing subject.  Callers are not
// told which check failed.
var ErrInvalidToken = errors.New("invalid or expired token")

// SignedToken carries a serialized JWT together with its expiry so
// handlers can report the expiration to clients without re-parsing.
type SignedToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewAccessToken builds and signs a short-lived HS256 JWT for a user.
// Claims are {sub, exp, iat, type:"access"}.  The signing secret is an
// explicit argument so tests can use distinct secrets per case.
func NewAccessToken(secret, userID string, ttlMin int) (SignedToken, error) {
	return signToken(secret, userID, tokenTypeAccess,
		time.Now().UTC().Add(time.Duration(ttlMin)*time.Minute))
}

// NewRefreshToken builds and signs a long-lived HS256 JWT for a user
// with type "refresh".  Only a hash of the returned token is ever
// persisted; the plaintext goes back to the client.
func NewRefreshToken(secret, userID string, ttlDays int) (SignedToken, error) {
	return signToken(secret, userID, tokenTypeRefresh,
		time.Now().UTC().Add(time.Duration(ttlDays)*24*time.Hour))
}

func signToken(secret, userID, typ string, exp time.Time) (SignedToken, error) {
	claims := jwt.MapClaims{
		"sub":  userID,
		"type": typ,
		"exp":  exp.Unix(),
		"iat":  time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return SignedToken{}, err
	}
	return SignedToken{Token: signed, Exp: exp}, nil
}

// VerifyAccessToken validates an access token and returns the subject
// user ID.  Any failure yields ErrInvalidToken.
func VerifyAccessToken(secret, raw string) (string, error) {
	return verifyToken(secret, raw, tokenTypeAccess)
}

// VerifyRefreshToken validates a refresh token and returns the subject
// user ID.  Any failure yields ErrInvalidToken.
func VerifyRefreshToken(secret, raw string) (string, error) {
	return verifyToken(secret, raw, tokenTypeRefresh)
}

func verifyToken(secret, raw, wantType string) (string, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		// Reject tokens signed with anything but HMAC before touching claims.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	if typ, _ := claims["type"].(string); typ != wantType {
		return "", ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}
