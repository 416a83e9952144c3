package http

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/njprem/PlaceBook_BackEnd/internal/service"
	"github.com/njprem/PlaceBook_BackEnd/internal/util"
)

type LedgerHandler struct {
	ledger *service.LedgerService
	logger *zap.Logger
}

func RegisterLedger(e *echo.Echo, ledger *service.LedgerService, gate *service.Gate, logger *zap.Logger) {
	h := &LedgerHandler{ledger: ledger, logger: logger}

	g := e.Group("/api/v1/users/me", RequireAuth(gate, logger))
	g.GET("/favorites", h.listFavorites)
	g.POST("/favorites", h.addFavorite)
	g.DELETE("/favorites/:place_id", h.removeFavorite)
	g.GET("/history", h.listHistory)
	g.POST("/history", h.recordVisit)
	g.DELETE("/history", h.clearHistory)
}

// bindPlaceRef reads {"place_id": "..."}; a non-empty problem means the
// request must be rejected with it.
func bindPlaceRef(c echo.Context) (uuid.UUID, string) {
	var req PlaceRefRequest
	if err := c.Bind(&req); err != nil {
		return uuid.Nil, "invalid request body"
	}
	if strings.TrimSpace(req.PlaceID) == "" {
		return uuid.Nil, "place_id is required"
	}
	id, err := uuid.Parse(strings.TrimSpace(req.PlaceID))
	if err != nil {
		return uuid.Nil, "place_id must be a valid UUID"
	}
	return id, ""
}

func (h *LedgerHandler) listFavorites(c echo.Context) error {
	ledger, err := h.ledger.Get(c.Request().Context(), CurrentPrincipal(c))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, util.Success(echo.Map{"favorites": ledger.Favorites}))
}

func (h *LedgerHandler) addFavorite(c echo.Context) error {
	placeID, problem := bindPlaceRef(c)
	if problem != "" {
		return badRequest(c, problem)
	}
	favorites, err := h.ledger.AddFavorite(c.Request().Context(), CurrentPrincipal(c), placeID)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, util.Success(echo.Map{"favorites": favorites}))
}

func (h *LedgerHandler) removeFavorite(c echo.Context) error {
	placeID, ok := parseUUIDParam(c, "place_id")
	if !ok {
		return badRequest(c, "place_id must be a valid UUID")
	}
	favorites, err := h.ledger.RemoveFavorite(c.Request().Context(), CurrentPrincipal(c), placeID)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, util.Success(echo.Map{"favorites": favorites}))
}

func (h *LedgerHandler) listHistory(c echo.Context) error {
	ledger, err := h.ledger.Get(c.Request().Context(), CurrentPrincipal(c))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, util.Success(echo.Map{"history": ledger.History}))
}

func (h *LedgerHandler) recordVisit(c echo.Context) error {
	placeID, problem := bindPlaceRef(c)
	if problem != "" {
		return badRequest(c, problem)
	}
	history, err := h.ledger.RecordVisit(c.Request().Context(), CurrentPrincipal(c), placeID)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, util.Success(echo.Map{"history": history}))
}

func (h *LedgerHandler) clearHistory(c echo.Context) error {
	history, err := h.ledger.ClearHistory(c.Request().Context(), CurrentPrincipal(c))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, util.Success(echo.Map{"history": history}))
}
