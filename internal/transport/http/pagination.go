package http

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

type PageMeta struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Count  int `json:"count"`
}

type listResponse struct {
	Items any      `json:"items"`
	Meta  PageMeta `json:"meta"`
}

func parsePagination(c echo.Context) (limit, offset int, err error) {
	if limit, err = parseNonNegative(c, "limit"); err != nil {
		return 0, 0, err
	}
	if offset, err = parseNonNegative(c, "offset"); err != nil {
		return 0, 0, err
	}
	return limit, offset, nil
}

func parseNonNegative(c echo.Context, key string) (int, error) {
	raw := strings.TrimSpace(c.QueryParam(key))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", key)
	}
	return v, nil
}

// queryList collects a repeated and/or comma separated query parameter.
func queryList(c echo.Context, keys ...string) []string {
	var out []string
	params := c.QueryParams()
	for _, key := range keys {
		for _, raw := range params[key] {
			for _, part := range strings.Split(raw, ",") {
				if part = strings.TrimSpace(part); part != "" {
					out = append(out, part)
				}
			}
		}
	}
	return out
}
