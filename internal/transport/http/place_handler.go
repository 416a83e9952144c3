package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/njprem/PlaceBook_BackEnd/internal/domain"
	"github.com/njprem/PlaceBook_BackEnd/internal/service"
	"github.com/njprem/PlaceBook_BackEnd/internal/util"
)

type PlaceHandler struct {
	places *service.PlaceService
	logger *zap.Logger
}

func RegisterPlaces(e *echo.Echo, places *service.PlaceService, gate *service.Gate, logger *zap.Logger) {
	h := &PlaceHandler{places: places, logger: logger}

	public := e.Group("/api/v1/places")
	public.GET("", h.list)
	public.GET("/:id", h.get)

	admin := e.Group("/api/v1/admin/places", RequireAuth(gate, logger), RequireRole(domain.RoleAdmin))
	admin.POST("", h.create)
	admin.PUT("/:id", h.update)
	admin.DELETE("/:id", h.delete)
}

func parsePlaceQuery(c echo.Context) (service.PlaceQuery, error) {
	limit, offset, err := parsePagination(c)
	if err != nil {
		return service.PlaceQuery{}, err
	}
	q := service.PlaceQuery{
		Search:     strings.TrimSpace(firstNonEmpty(c.QueryParam("search"), c.QueryParam("q"))),
		City:       strings.TrimSpace(c.QueryParam("city")),
		Categories: queryList(c, "category", "categories"),
		Sort:       c.QueryParam("sort"),
		Limit:      limit,
		Offset:     offset,
	}
	if raw := strings.TrimSpace(c.QueryParam("price_level")); raw != "" {
		level, err := strconv.Atoi(raw)
		if err != nil {
			return service.PlaceQuery{}, errInvalidPriceLevel
		}
		q.PriceLevel = &level
	}
	return q, nil
}

var errInvalidPriceLevel = errors.New("price_level must be an integer")

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func (h *PlaceHandler) list(c echo.Context) error {
	q, err := parsePlaceQuery(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	places, err := h.places.List(c.Request().Context(), q)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, util.Success(listResponse{
		Items: places,
		Meta:  PageMeta{Limit: q.Limit, Offset: q.Offset, Count: len(places)},
	}))
}

func (h *PlaceHandler) get(c echo.Context) error {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return badRequest(c, "id must be a valid UUID")
	}
	place, err := h.places.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, util.Success(place))
}

func (h *PlaceHandler) create(c echo.Context) error {
	var req domain.PlaceFields
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	place, err := h.places.Create(c.Request().Context(), CurrentPrincipal(c), req)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, util.Success(place))
}

func (h *PlaceHandler) update(c echo.Context) error {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return badRequest(c, "id must be a valid UUID")
	}
	var req domain.PlaceFields
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	place, err := h.places.Update(c.Request().Context(), CurrentPrincipal(c), id, req)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, util.Success(place))
}

func (h *PlaceHandler) delete(c echo.Context) error {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return badRequest(c, "id must be a valid UUID")
	}
	if err := h.places.Delete(c.Request().Context(), CurrentPrincipal(c), id); err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, util.Success(echo.Map{"id": id}))
}
