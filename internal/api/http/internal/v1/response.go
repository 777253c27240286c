package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/souqly/backend/internal/service"
	"github.com/souqly/backend/pkg/logger"
	"go.uber.org/zap"
)

type ErrorStruct struct {
	Message string   `json:"message"`
	Missing []string `json:"missing,omitempty"`
}

func newResponse(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, ErrorStruct{Message: message})
}

// errorResponse maps service errors onto HTTP statuses. Anything it does not
// recognize is treated as an internal error and logged with its cause.
func errorResponse(c *gin.Context, err error) {
	var (
		validationErr *service.ValidationError
		incompleteErr *service.IncompleteProfileError
		storageErr    *service.StorageError
	)

	switch {
	case errors.As(err, &validationErr):
		newResponse(c, http.StatusBadRequest, validationErr.Error())
	case errors.As(err, &incompleteErr):
		missing := make([]string, 0, len(incompleteErr.Missing))
		for _, reason := range incompleteErr.Missing {
			missing = append(missing, string(reason))
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorStruct{
			Message: incompleteErr.Error(),
			Missing: missing,
		})
	case errors.Is(err, service.ErrPhoneCodeInvalid):
		newResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrRequestNotFound),
		errors.Is(err, service.ErrDocumentNotFound):
		newResponse(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrAlreadySubmitted),
		errors.Is(err, service.ErrReviewConflict),
		errors.Is(err, service.ErrAlreadyVerified),
		errors.Is(err, service.ErrPhoneAlreadyVerified),
		errors.Is(err, service.ErrPrecondition):
		newResponse(c, http.StatusConflict, err.Error())
	case errors.As(err, &storageErr):
		logger.Error("document storage failure", zap.Error(err))
		newResponse(c, http.StatusBadGateway, "document storage unavailable")
	default:
		logger.Error("internal error", zap.Error(err))
		newResponse(c, http.StatusInternalServerError, "internal server error")
	}
}
