package http

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/njprem/PlaceBook_BackEnd/internal/domain"
	"github.com/njprem/PlaceBook_BackEnd/internal/service"
	"github.com/njprem/PlaceBook_BackEnd/internal/util"
)

const (
	contextPrincipalKey = "principal"
	contextTokenKey     = "token"
)

// RequireAuth resolves the bearer token into a principal stored on the context.
func RequireAuth(gate *service.Gate, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if strings.TrimSpace(authHeader) == "" {
				return c.JSON(http.StatusUnauthorized, util.Error("missing authorization header"))
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return c.JSON(http.StatusUnauthorized, util.Error("invalid authorization header"))
			}
			token := strings.TrimSpace(parts[1])
			principal, err := gate.Authenticate(c.Request().Context(), token)
			if err != nil {
				return writeError(c, logger, err)
			}
			c.Set(contextPrincipalKey, principal)
			c.Set(contextTokenKey, token)
			return next(c)
		}
	}
}

// RequireRole rejects principals whose role does not include role. It must run
// after RequireAuth.
func RequireRole(role domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := service.RequireRole(CurrentPrincipal(c), role); err != nil {
				return writeError(c, nil, err)
			}
			return next(c)
		}
	}
}

// CurrentPrincipal returns the authenticated principal or domain.Anonymous.
func CurrentPrincipal(c echo.Context) domain.Principal {
	if p, ok := c.Get(contextPrincipalKey).(domain.Principal); ok {
		return p
	}
	return domain.Anonymous
}

func currentToken(c echo.Context) string {
	token, _ := c.Get(contextTokenKey).(string)
	return token
}
