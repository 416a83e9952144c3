package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/njprem/PlaceBook_BackEnd/internal/media"
	"github.com/njprem/PlaceBook_BackEnd/internal/service"
	"github.com/njprem/PlaceBook_BackEnd/internal/util"
)

const avatarFormField = "file"

type ProfileHandler struct {
	profiles *service.ProfileService
	logger   *zap.Logger
}

func RegisterProfile(e *echo.Echo, profiles *service.ProfileService, gate *service.Gate, logger *zap.Logger) {
	h := &ProfileHandler{profiles: profiles, logger: logger}

	g := e.Group("/api/v1/users/me", RequireAuth(gate, logger))
	g.GET("", h.get)
	g.PUT("", h.update)
	g.POST("/avatar", h.uploadAvatar)
}

func (h *ProfileHandler) get(c echo.Context) error {
	profile, err := h.profiles.Get(c.Request().Context(), CurrentPrincipal(c))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, util.Success(profile))
}

func (h *ProfileHandler) update(c echo.Context) error {
	var req ProfileRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	user, err := h.profiles.UpdateName(c.Request().Context(), CurrentPrincipal(c), req.Name)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, util.Success(user))
}

func (h *ProfileHandler) uploadAvatar(c echo.Context) error {
	fileHeader, err := c.FormFile(avatarFormField)
	if err != nil {
		return badRequest(c, "multipart field \"file\" is required")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return badRequest(c, "unable to read uploaded file")
	}
	defer file.Close()

	user, err := h.profiles.UploadAvatar(c.Request().Context(), CurrentPrincipal(c), media.Upload{
		Reader:      file,
		Size:        fileHeader.Size,
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get(echo.HeaderContentType),
	})
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, util.Success(user))
}
