package http

import (
	"encoding/json"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

const (
	requestBodyLogKey  = "http.request.body.summary"
	responseBodyLogKey = "http.response.body.summary"
	maxLoggedBody      = 2048
)

var sensitiveKeys = []string{"password", "token", "secret"}

func registerLogging(e *echo.Echo, logger *zap.Logger) {
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogMethod:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			userID := "anonymous"
			if p := CurrentPrincipal(c); p.Authenticated() {
				userID = p.UserID.String()
			}
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.String("route", c.Path()),
				zap.Int("status", v.Status),
				zap.Int64("latency_ms", v.Latency.Milliseconds()),
				zap.String("user_uuid", userID),
			}
			if body := c.Get(requestBodyLogKey); body != nil {
				fields = append(fields, zap.Any("request_body", body))
			}
			if body := c.Get(responseBodyLogKey); body != nil {
				fields = append(fields, zap.Any("response_body", body))
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}

			switch {
			case v.Status >= 500:
				logger.Error("http request", fields...)
			case v.Status >= 400:
				logger.Warn("http request", fields...)
			default:
				logger.Info("http request", fields...)
			}
			return nil
		},
	}))

	e.Use(middleware.BodyDumpWithConfig(middleware.BodyDumpConfig{
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics" || strings.HasPrefix(c.Path(), "/swagger")
		},
		Handler: func(c echo.Context, reqBody, resBody []byte) {
			if summary := sanitizeBody(reqBody, c.Request().Header.Get(echo.HeaderContentType)); summary != nil {
				c.Set(requestBodyLogKey, summary)
			}
			if summary := sanitizeBody(resBody, c.Response().Header().Get(echo.HeaderContentType)); summary != nil {
				c.Set(responseBodyLogKey, summary)
			}
		},
	}))
}

// sanitizeBody returns a loggable summary of body with credentials redacted.
func sanitizeBody(body []byte, contentType string) any {
	if len(body) == 0 {
		return nil
	}
	lowered := strings.ToLower(strings.TrimSpace(contentType))

	if strings.HasPrefix(lowered, "multipart/form-data") {
		return "multipart"
	}
	if strings.HasPrefix(lowered, "application/json") || json.Valid(body) {
		var data any
		if err := json.Unmarshal(body, &data); err == nil {
			return limitJSONSize(sanitizeJSON(data, ""))
		}
	}
	if strings.HasPrefix(lowered, "application/x-www-form-urlencoded") {
		if values, err := url.ParseQuery(string(body)); err == nil && len(values) > 0 {
			out := make(map[string]any, len(values))
			for key, vals := range values {
				out[key] = sanitizeString(strings.Join(vals, ","), strings.ToLower(key))
			}
			return limitJSONSize(out)
		}
	}
	if containsBinaryBytes(body) {
		return "binary"
	}
	return sanitizeString(string(body), "")
}

func sanitizeJSON(value any, keyHint string) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, val := range v {
			lowerKey := strings.ToLower(key)
			if isSensitive(lowerKey) {
				out[key] = "redacted"
				continue
			}
			out[key] = sanitizeJSON(val, lowerKey)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = sanitizeJSON(item, keyHint)
		}
		return out
	case string:
		return sanitizeString(v, keyHint)
	default:
		return v
	}
}

func sanitizeString(value, keyHint string) string {
	if isSensitive(keyHint) {
		return "redacted"
	}
	if keyHint == "" && isSensitive(strings.ToLower(value)) {
		return "redacted"
	}
	if containsBinaryBytes([]byte(value)) {
		return "binary"
	}
	return clampString(value)
}

func isSensitive(s string) bool {
	for _, key := range sensitiveKeys {
		if strings.Contains(s, key) {
			return true
		}
	}
	return false
}

func limitJSONSize(value any) any {
	buf, err := json.Marshal(value)
	if err != nil || len(buf) <= maxLoggedBody {
		return value
	}
	return map[string]any{"_truncated": true, "_bytes": len(buf)}
}

func containsBinaryBytes(data []byte) bool {
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			return true
		}
		if !unicode.IsPrint(r) && !unicode.IsSpace(r) {
			return true
		}
		data = data[size:]
	}
	return false
}

func clampString(value string) string {
	if len(value) <= maxLoggedBody {
		return value
	}
	truncated := value[:maxLoggedBody]
	for !utf8.ValidString(truncated) && len(truncated) > 0 {
		truncated = truncated[:len(truncated)-1]
	}
	return truncated + "...(truncated)"
}
