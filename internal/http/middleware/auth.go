package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/autoexport/go-export-backend/internal/auth"
)

// Context keys under which the verified identity is stashed for downstream
// middleware and handlers.
const (
	ctxKeyUsername = "auth.username"
	ctxKeyRole     = "auth.role"
)

// Username returns the authenticated username stored by RequireAuth.
func Username(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeyUsername)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// Role returns the authenticated role stored by RequireAuth.
func Role(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeyRole)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// RequireAuth enforces a valid `Authorization: Bearer <token>` header.
//
// Failure modes map to distinct error codes so clients can react precisely:
//   - missing header          -> 401 missing_token
//   - malformed header        -> 401 malformed_header
//   - expired token           -> 401 token_expired
//   - any other invalid token -> 401 invalid_token
//
// On success the verified username and role are stashed in the context.
func RequireAuth(verify func(token string) (*auth.Claims, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortAuth(c, http.StatusUnauthorized, "missing_token", "authorization header required")
			return
		}
		// Exactly "Bearer <token>": literal scheme, single space, no spaces
		// inside the token.
		scheme, token, found := strings.Cut(header, " ")
		if !found || scheme != "Bearer" || token == "" || strings.Contains(token, " ") {
			abortAuth(c, http.StatusUnauthorized, "malformed_header", "authorization header must be 'Bearer <token>'")
			return
		}

		claims, err := verify(token)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrTokenExpired):
				abortAuth(c, http.StatusUnauthorized, "token_expired", "token has expired")
			default:
				abortAuth(c, http.StatusUnauthorized, "invalid_token", "token is invalid")
			}
			return
		}

		c.Set(ctxKeyUsername, claims.Username)
		c.Set(ctxKeyRole, claims.Role)
		c.Next()
	}
}

// RequireAdmin rejects requests whose verified role is not admin. It must be
// installed after RequireAuth on the same group.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := Role(c)
		if !ok || role != auth.RoleAdmin {
			abortAuth(c, http.StatusForbidden, "forbidden", "admin privileges required")
			return
		}
		c.Next()
	}
}

func abortAuth(c *gin.Context, status int, code, msg string) {
	c.Header("WWW-Authenticate", `Bearer realm="api"`)
	c.AbortWithStatusJSON(status, gin.H{
		"request_id": c.GetString(requestIDKey),
		"code":       code,
		"message":    msg,
	})
}
