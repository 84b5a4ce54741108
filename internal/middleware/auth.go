package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/glowingstore/internal/auth"
	"github.com/simp-lee/glowingstore/internal/domain"
)

// AccountVerifier checks that the account behind a verified token is still
// active: the user exists, is not locked out, and the token's embedded
// security stamp matches the current one. Rotating the stamp therefore
// revokes every previously issued token.
type AccountVerifier interface {
	VerifyActive(ctx context.Context, userName, securityStamp string) error
}

// Authentication returns a gin middleware that verifies the bearer token,
// runs the active-account check, and attaches the authenticated context to
// the request. Invalid or missing tokens yield 401; a valid token over an
// inactive account yields 403.
func Authentication(tokens *auth.TokenService, verifier AccountVerifier, logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}

	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			abortJSON(c, http.StatusUnauthorized, "missing or malformed authorization header")
			return
		}

		claims, err := tokens.Parse(tokenString)
		if err != nil {
			logger.DebugContext(c.Request.Context(), "token rejected", slog.Any("error", err))
			abortJSON(c, http.StatusUnauthorized, "invalid token")
			return
		}

		authCtx, err := auth.NewContext(claims)
		if err != nil {
			abortJSON(c, http.StatusUnauthorized, "invalid token claims")
			return
		}

		if err := verifier.VerifyActive(c.Request.Context(), authCtx.UserName, authCtx.SecurityStamp); err != nil {
			if domain.IsForbidden(err) || domain.IsNotFound(err) {
				abortJSON(c, http.StatusForbidden, "account is not active")
				return
			}
			logger.ErrorContext(c.Request.Context(), "active-account check failed", slog.Any("error", err))
			abortJSON(c, http.StatusInternalServerError, "internal error")
			return
		}

		auth.Attach(c, authCtx)
		c.Next()
	}
}

// RequireAnyRole returns a gin middleware that rejects with 403 unless the
// authenticated context holds at least one of the named roles. It must run
// after Authentication.
func RequireAnyRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authCtx, ok := auth.FromGin(c)
		if !ok {
			abortJSON(c, http.StatusUnauthorized, "authentication required")
			return
		}
		if !authCtx.HasAnyRole(roles...) {
			abortJSON(c, http.StatusForbidden, "insufficient permissions")
			return
		}
		c.Next()
	}
}

// Administrator is the policy for catalog mutation: role Administrator or
// PowerUser on an active account.
func Administrator() gin.HandlerFunc {
	return RequireAnyRole(domain.RoleAdministrator, domain.RolePowerUser)
}

// UserActive is the policy for catalog reads: role User on an active account.
func UserActive() gin.HandlerFunc {
	return RequireAnyRole(domain.RoleUser)
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func abortJSON(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"code":    status,
		"message": message,
		"data":    nil,
	})
}
