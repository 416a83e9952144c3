package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/njprem/PlaceBook_BackEnd/internal/domain"
	"github.com/njprem/PlaceBook_BackEnd/internal/service"
	"github.com/njprem/PlaceBook_BackEnd/internal/util"
)

type AdminUserHandler struct {
	auth   *service.AuthService
	logger *zap.Logger
}

func RegisterAdminUsers(e *echo.Echo, auth *service.AuthService, gate *service.Gate, logger *zap.Logger) {
	h := &AdminUserHandler{auth: auth, logger: logger}

	g := e.Group("/api/v1/admin/users", RequireAuth(gate, logger), RequireRole(domain.RoleAdmin))
	g.GET("", h.list)
	g.PUT("/:id/role", h.changeRole)
	g.DELETE("/:id", h.delete)
}

func (h *AdminUserHandler) list(c echo.Context) error {
	limit, offset, err := parsePagination(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	users, err := h.auth.ListUsers(c.Request().Context(), CurrentPrincipal(c), limit, offset)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, util.Success(listResponse{
		Items: users,
		Meta:  PageMeta{Limit: limit, Offset: offset, Count: len(users)},
	}))
}

func (h *AdminUserHandler) changeRole(c echo.Context) error {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return badRequest(c, "id must be a valid UUID")
	}
	var req RoleRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	user, err := h.auth.ChangeRole(c.Request().Context(), CurrentPrincipal(c), id, req.Role)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, util.Success(user))
}

func (h *AdminUserHandler) delete(c echo.Context) error {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return badRequest(c, "id must be a valid UUID")
	}
	if err := h.auth.DeleteUser(c.Request().Context(), CurrentPrincipal(c), id); err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, util.Success(echo.Map{"id": id}))
}
