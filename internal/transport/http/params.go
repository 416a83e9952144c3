package http

import (
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func parseUUIDParam(c echo.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param(name)))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
