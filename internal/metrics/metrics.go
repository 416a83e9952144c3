package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "placebook_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "placebook_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	listingTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "placebook_listing_transitions_total",
		Help: "Listing lifecycle events by action and resulting status",
	}, []string{"action", "status"})

	ledgerOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "placebook_ledger_operations_total",
		Help: "Favorites and history mutations by operation and result",
	}, []string{"operation", "result"})

	placeCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "placebook_place_cache_lookups_total",
		Help: "Place cache lookups by result",
	}, []string{"result"})
)

func ObserveHTTPRequest(method, route, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	httpRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

// ObserveListingTransition counts submit, status, edit and delete events.
func ObserveListingTransition(action, status string) {
	listingTransitions.WithLabelValues(action, status).Inc()
}

func ObserveLedgerOperation(operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	ledgerOperations.WithLabelValues(operation, result).Inc()
}

func ObservePlaceCache(hit bool) {
	if hit {
		placeCacheLookups.WithLabelValues("hit").Inc()
		return
	}
	placeCacheLookups.WithLabelValues("miss").Inc()
}

// Middleware labels requests by route template rather than raw path to keep
// label cardinality bounded.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			ObserveHTTPRequest(c.Request().Method, route, strconv.Itoa(status), time.Since(start))
			return err
		}
	}
}
