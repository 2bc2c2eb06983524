package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/jordanlanch/leadcrm/pkg/auth"
	"github.com/jordanlanch/leadcrm/pkg/models"
	"github.com/jordanlanch/leadcrm/pkg/policy"
	"github.com/jordanlanch/leadcrm/pkg/users"
	"github.com/labstack/echo/v4"
)

const principalKey = "principal"

// JWTMiddleware creates a JWT authentication middleware without blacklist
// or account checks. Useful in tests.
func JWTMiddleware(secret string) echo.MiddlewareFunc {
	return JWTMiddlewareWithBlacklist(secret, nil, nil)
}

// JWTMiddlewareWithBlacklist creates a JWT authentication middleware. When a
// blacklist is given, revoked tokens are rejected; when a user store is
// given, tokens for deleted accounts are rejected.
func JWTMiddlewareWithBlacklist(secret string, blacklist *auth.TokenBlacklist, userStore users.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
					Error:   "missing_token",
					Message: "Authorization header is required",
				})
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
					Error:   "invalid_token_format",
					Message: "Authorization header must be 'Bearer {token}'",
				})
			}
			token := parts[1]

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()

			claims, err := auth.ValidateJWTWithBlacklist(ctx, token, secret, blacklist)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
					Error:   "invalid_token",
					Message: "Token is invalid or expired",
				})
			}

			if userStore != nil {
				if _, err := userStore.GetByID(ctx, claims.UserID); err != nil {
					return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
						Error:   "user_not_found",
						Message: "User account not found",
					})
				}
			}

			// Token kept for potential logout.
			c.Set("token", token)
			c.Set(principalKey, claims.Principal())

			return next(c)
		}
	}
}

// PrincipalFrom extracts the authenticated principal set by the JWT
// middleware. The second return is false when the request is unauthenticated.
func PrincipalFrom(c echo.Context) (policy.Principal, bool) {
	p, ok := c.Get(principalKey).(policy.Principal)
	return p, ok
}

// SetPrincipal stores a principal on the context. Exposed for handler tests
// that bypass the JWT middleware.
func SetPrincipal(c echo.Context, p policy.Principal) {
	c.Set(principalKey, p)
}

// RequireAdmin ensures the authenticated principal has the admin or
// super_admin role. Apply after JWT authentication.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFrom(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
					Error:   "unauthorized",
					Message: "Authentication required",
				})
			}
			if !p.IsAdmin() {
				return c.JSON(http.StatusForbidden, models.ErrorResponse{
					Error:   "forbidden",
					Message: "You do not have access to this resource",
				})
			}
			return next(c)
		}
	}
}

// RequireSuperAdmin ensures the authenticated principal has the super_admin
// role. Use for destructive operations.
func RequireSuperAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFrom(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
					Error:   "unauthorized",
					Message: "Authentication required",
				})
			}
			if !p.IsSuperAdmin() {
				return c.JSON(http.StatusForbidden, models.ErrorResponse{
					Error:   "forbidden",
					Message: "You do not have access to this resource",
				})
			}
			return next(c)
		}
	}
}
