package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/njprem/PlaceBook_BackEnd/internal/metrics"
	"github.com/njprem/PlaceBook_BackEnd/internal/service"
	"github.com/njprem/PlaceBook_BackEnd/internal/util"
)

type RouterConfig struct {
	AllowOrigins []string
	BodyLimit    string
	Logger       *zap.Logger
}

// Services bundles everything the route handlers call into.
type Services struct {
	Gate     *service.Gate
	Auth     *service.AuthService
	Listings *service.ListingService
	Places   *service.PlaceService
	Ledger   *service.LedgerService
	Profiles *service.ProfileService
}

func NewRouter(cfg RouterConfig) *echo.Echo {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = httpErrorHandler(logger)

	allowCredentials := true
	for _, origin := range cfg.AllowOrigins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	registerLogging(e, logger)

	e.Use(middleware.Recover())
	e.Use(middleware.Secure())
	e.Use(metrics.Middleware())
	if cfg.BodyLimit != "" {
		e.Use(middleware.BodyLimit(cfg.BodyLimit))
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{
			echo.HeaderAuthorization,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderOrigin,
			echo.HeaderXRequestedWith,
		},
		AllowCredentials: allowCredentials,
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, util.Success(echo.Map{"ok": true}))
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	return e
}

// RegisterRoutes mounts every API handler on e.
func RegisterRoutes(e *echo.Echo, s Services, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	RegisterPages(e)
	RegisterAuth(e, s.Auth, s.Gate, logger)
	RegisterPlaces(e, s.Places, s.Gate, logger)
	RegisterListings(e, s.Listings, s.Gate, logger)
	RegisterLedger(e, s.Ledger, s.Gate, logger)
	RegisterProfile(e, s.Profiles, s.Gate, logger)
	RegisterAdminUsers(e, s.Auth, s.Gate, logger)
}
