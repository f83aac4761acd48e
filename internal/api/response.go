package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MohdFaizan63/Resume-Builder/internal/api/middleware"
	"github.com/MohdFaizan63/Resume-Builder/internal/errcode"
	"github.com/MohdFaizan63/Resume-Builder/internal/resume"
	"github.com/MohdFaizan63/Resume-Builder/internal/service"
)

func Error(c *gin.Context, status, code int, msg string) {
	c.JSON(status, gin.H{"error": msg, "code": code})
}

func AbortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "code": errcode.Unauthorized})
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, errcode.Unauthorized, "unauthorized")
}

func BadRequest(c *gin.Context, msg string) {
	Error(c, http.StatusBadRequest, errcode.InvalidRequest, msg)
}

func Forbidden(c *gin.Context, msg string) {
	Error(c, http.StatusForbidden, errcode.Forbidden, msg)
}

func NotFound(c *gin.Context, msg string) {
	Error(c, http.StatusNotFound, errcode.ResourceMissing, msg)
}

func Conflict(c *gin.Context, msg string) {
	Error(c, http.StatusConflict, errcode.Conflict, msg)
}

func Internal(c *gin.Context, msg string) {
	Error(c, http.StatusInternalServerError, errcode.SystemError, msg)
}

// RespondError maps service errors to HTTP responses; unknown errors are logged and hidden.
func RespondError(c *gin.Context, err error) {
	var verr *resume.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "validation failed",
			"code":   errcode.InvalidRequest,
			"errors": verr.Fields,
		})
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrOwnerNotFound), errors.Is(err, service.ErrUserNotFound):
		Error(c, http.StatusNotFound, errcode.ResourceMissing, err.Error())
	case errors.Is(err, service.ErrExpired):
		Error(c, http.StatusGone, errcode.LinkExpired, err.Error())
	case errors.Is(err, service.ErrVersionConflict):
		Error(c, http.StatusConflict, errcode.VersionConflict, err.Error())
	case errors.Is(err, service.ErrPasswordRequired):
		Error(c, http.StatusUnauthorized, errcode.PasswordRequired, err.Error())
	case errors.Is(err, service.ErrDownloadDisabled):
		Error(c, http.StatusForbidden, errcode.DownloadDisabled, err.Error())
	case errors.Is(err, service.ErrInvalidPlan):
		BadRequest(c, err.Error())
	default:
		middleware.LoggerFromContext(c).Error("request failed", slog.Any("error", err))
		Internal(c, "internal error")
	}
}
