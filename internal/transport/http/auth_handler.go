package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/njprem/PlaceBook_BackEnd/internal/service"
	"github.com/njprem/PlaceBook_BackEnd/internal/util"
)

type AuthHandler struct {
	auth   *service.AuthService
	logger *zap.Logger
}

func RegisterAuth(e *echo.Echo, auth *service.AuthService, gate *service.Gate, logger *zap.Logger) {
	h := &AuthHandler{auth: auth, logger: logger}

	g := e.Group("/api/v1/auth")
	g.POST("/register", h.register)
	g.POST("/login", h.login)
	g.POST("/google", h.google)
	g.POST("/logout", h.logout, RequireAuth(gate, logger))
}

func (h *AuthHandler) register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	res, err := h.auth.Register(c.Request().Context(), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, util.Success(res))
}

func (h *AuthHandler) login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	res, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, util.Success(res))
}

func (h *AuthHandler) google(c echo.Context) error {
	var req GoogleLoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	res, err := h.auth.LoginWithGoogle(c.Request().Context(), req.IDToken)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, util.Success(res))
}

func (h *AuthHandler) logout(c echo.Context) error {
	if err := h.auth.Logout(c.Request().Context(), currentToken(c)); err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, util.Success(nil))
}
