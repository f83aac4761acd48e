package api

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/MohdFaizan63/Resume-Builder/internal/api/middleware"
	"github.com/MohdFaizan63/Resume-Builder/internal/resume"
)

func userIDFromContext(c *gin.Context) (uint, bool) {
	value, exists := c.Get(middleware.UserIDKey)
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint(v), true
	case uint64:
		return uint(v), true
	case int64:
		if v < 0 {
			return 0, false
		}
		return uint(v), true
	default:
		return 0, false
	}
}

// resumeIDParam parses :id. Malformed ids are reported like missing resumes.
func resumeIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// ownedTarget resolves the caller and the :id parameter, writing the error response itself.
func ownedTarget(c *gin.Context) (uint, uint, bool) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return 0, 0, false
	}
	resumeID, ok := resumeIDParam(c)
	if !ok {
		NotFound(c, "resume not found")
		return 0, 0, false
	}
	return userID, resumeID, true
}

// bindError turns binding failures into field-addressed validation errors.
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return resume.FromValidator(verrs)
	}
	if verr, ok := resume.DecodeError(err); ok {
		return verr
	}
	return resume.NewValidationError("body", "malformed JSON payload")
}
