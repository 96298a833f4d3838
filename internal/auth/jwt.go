// Package auth implements credential checking and JWT handling for the
// single-operator admin surface. Tokens are symmetric (HS256), time-limited,
// and carry the operator username plus an explicit admin role claim.
package auth

import (
	"crypto/subtle"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/autoexport/go-export-backend/internal/config"
)

// RoleAdmin is the role claim value issued to the site operator.
const RoleAdmin = "admin"

// Sentinel errors returned by credential and token verification. Handlers and
// middleware map these onto the HTTP error taxonomy.
var (
	// ErrInvalidCredentials is returned when the submitted username/password
	// pair does not match the configured operator credentials.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrTokenExpired is returned when a token's expiry has passed.
	ErrTokenExpired = errors.New("token expired")

	// ErrInvalidToken is returned for any other token verification failure
	// (bad signature, wrong algorithm, malformed payload).
	ErrInvalidToken = errors.New("invalid token")
)

// Claims is the JWT payload issued at login.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// CheckCredentials compares the submitted pair against the configured
// operator credentials in constant time. It returns ErrInvalidCredentials on
// mismatch and never reveals which of the two fields was wrong.
func CheckCredentials(cfg config.AuthConfig, username, password string) error {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(cfg.AdminUsername))
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(cfg.AdminPassword))
	if userOK&passOK != 1 {
		return ErrInvalidCredentials
	}
	return nil
}

// GenerateToken signs an HS256 JWT for the operator. The token carries the
// username, an admin role claim, and expires after cfg.TokenTTL (24h default).
func GenerateToken(cfg config.AuthConfig, username string) (token string, expiresAt time.Time, err error) {
	if cfg.JWTSecret == "" {
		return "", time.Time{}, errors.New("jwt secret is empty")
	}
	now := time.Now().UTC()
	expiresAt = now.Add(cfg.TokenTTL)

	c := Claims{
		Username: username,
		Role:     RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := t.SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ParseToken verifies signature and expiry of a bearer token and returns its
// claims. Only HS256 is accepted; any other algorithm fails verification.
func ParseToken(cfg config.AuthConfig, tokenString string) (*Claims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}))
	var claims Claims
	token, err := parser.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
