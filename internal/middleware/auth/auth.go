package middleware

import (
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/local_directory/internal/logging"
	"github.com/Skotchmaster/local_directory/internal/models"
	"github.com/Skotchmaster/local_directory/internal/tokens"
)

const CtxIdentity = "identity"

const (
	msgNoToken      = "Access denied. No token provided."
	msgInvalidToken = "Invalid token."
	msgAdminOnly    = "Access denied. Admin only."
)

// Verifier resolves a raw token into an identity.
type Verifier interface {
	Verify(token string) (models.Identity, error)
}

var _ Verifier = (*tokens.Codec)(nil)

// RequireAuth resolves the bearer token of the Authorization header and
// stores the identity in the echo context.
func RequireAuth(v Verifier) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  CtxIdentity,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			return v.Verify(auth)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			l := logging.FromContext(c.Request().Context()).With("middleware", "require_auth")
			if c.Request().Header.Get(echo.HeaderAuthorization) == "" {
				l.Warn("auth_failed", "status", 401, "reason", "no token")
				return echo.NewHTTPError(http.StatusUnauthorized, msgNoToken).SetInternal(err)
			}
			l.Warn("auth_failed", "status", 401, "reason", "invalid token", "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, msgInvalidToken).SetInternal(err)
		},
	})
}

// RequireRole must be chained after RequireAuth.
func RequireRole(role models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ident, ok := IdentityFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, msgNoToken)
			}
			if ident.Role != role {
				msg := "Access denied. " + string(role) + " only."
				if role == models.RoleAdmin {
					msg = msgAdminOnly
				}
				logging.FromContext(c.Request().Context()).Warn("role_check_failed",
					"status", 403, "required", role, "role", ident.Role, "user_id", ident.UserID)
				return echo.NewHTTPError(http.StatusForbidden, msg)
			}
			return next(c)
		}
	}
}

func RequireAdmin(v Verifier) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{RequireAuth(v), RequireRole(models.RoleAdmin)}
}

func IdentityFrom(c echo.Context) (models.Identity, bool) {
	ident, ok := c.Get(CtxIdentity).(models.Identity)
	return ident, ok
}
