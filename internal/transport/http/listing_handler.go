package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/njprem/PlaceBook_BackEnd/internal/domain"
	"github.com/njprem/PlaceBook_BackEnd/internal/service"
	"github.com/njprem/PlaceBook_BackEnd/internal/util"
)

type ListingHandler struct {
	listings *service.ListingService
	logger   *zap.Logger
}

func RegisterListings(e *echo.Echo, listings *service.ListingService, gate *service.Gate, logger *zap.Logger) {
	h := &ListingHandler{listings: listings, logger: logger}

	owned := e.Group("/api/v1/listings", RequireAuth(gate, logger))
	owned.POST("", h.submit)
	owned.GET("/mine", h.listMine)
	owned.GET("/:id", h.getOne)
	owned.PUT("/:id", h.updateOwn)
	owned.DELETE("/:id", h.delete)

	admin := e.Group("/api/v1/admin/listings", RequireAuth(gate, logger), RequireRole(domain.RoleAdmin))
	admin.GET("", h.listAll)
	admin.PUT("/:id/status", h.updateStatus)
	admin.DELETE("/:id", h.delete)
}

func (h *ListingHandler) submit(c echo.Context) error {
	var req domain.PlaceFields
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	detail, err := h.listings.Submit(c.Request().Context(), CurrentPrincipal(c), req)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, util.Success(detail))
}

func (h *ListingHandler) listMine(c echo.Context) error {
	items, err := h.listings.ListMine(c.Request().Context(), CurrentPrincipal(c))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, util.Success(listResponse{
		Items: items,
		Meta:  PageMeta{Count: len(items)},
	}))
}

func (h *ListingHandler) listAll(c echo.Context) error {
	limit, offset, err := parsePagination(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	query := service.ListingQuery{
		Status: c.QueryParam("status"),
		Limit:  limit,
		Offset: offset,
	}
	items, err := h.listings.ListAll(c.Request().Context(), CurrentPrincipal(c), query)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, util.Success(listResponse{
		Items: items,
		Meta:  PageMeta{Limit: query.PageLimit(), Offset: offset, Count: len(items)},
	}))
}

func (h *ListingHandler) getOne(c echo.Context) error {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return badRequest(c, "id must be a valid UUID")
	}
	detail, err := h.listings.GetOne(c.Request().Context(), CurrentPrincipal(c), id)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, util.Success(detail))
}

func (h *ListingHandler) updateOwn(c echo.Context) error {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return badRequest(c, "id must be a valid UUID")
	}
	var req domain.PlaceFields
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	detail, err := h.listings.UpdateOwn(c.Request().Context(), CurrentPrincipal(c), id, req)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, util.Success(detail))
}

func (h *ListingHandler) updateStatus(c echo.Context) error {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return badRequest(c, "id must be a valid UUID")
	}
	var req StatusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	listing, err := h.listings.UpdateStatus(c.Request().Context(), CurrentPrincipal(c), id, req.Status, req.AdminNote)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, util.Success(listing))
}

func (h *ListingHandler) delete(c echo.Context) error {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return badRequest(c, "id must be a valid UUID")
	}
	if err := h.listings.DeleteOwn(c.Request().Context(), CurrentPrincipal(c), id); err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, util.Success(echo.Map{"id": id}))
}
