package response

import (
	"errors"
	"net/http"

	domainerrors "blood-donate.backend/internal/domain/errors"
	"github.com/gin-gonic/gin"
)

// Success sends a success response
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// Error sends an error response. Upstream failures carry "retryable": true.
func Error(c *gin.Context, err error) {
	appErr := toAppError(err)

	body := gin.H{
		"code":    appErr.Code,
		"message": appErr.Message,
		"error":   appErr.Message, // Backward compatibility
	}
	if appErr.Retryable() {
		body["retryable"] = true
	}
	c.JSON(appErr.Status, body)
}

func toAppError(err error) *domainerrors.AppError {
	var appErr *domainerrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, domainerrors.ErrNotFound):
		return domainerrors.NotFound("resource not found")
	case errors.Is(err, domainerrors.ErrInvalidInput), errors.Is(err, domainerrors.ErrBadRequest):
		return domainerrors.BadRequest(err.Error())
	case errors.Is(err, domainerrors.ErrUnauthorized), errors.Is(err, domainerrors.ErrTokenExpired):
		return domainerrors.Unauthorized("unauthorized")
	case errors.Is(err, domainerrors.ErrUserBlocked):
		return domainerrors.UserBlocked()
	case errors.Is(err, domainerrors.ErrForbidden):
		return domainerrors.Forbidden("forbidden")
	case errors.Is(err, domainerrors.ErrConflict), errors.Is(err, domainerrors.ErrAlreadyExists):
		return domainerrors.Conflict("conflict")
	case errors.Is(err, domainerrors.ErrUpstream):
		return domainerrors.Upstream("upstream unavailable", err)
	case errors.Is(err, domainerrors.ErrPaymentNotCompleted):
		return domainerrors.PaymentNotCompleted()
	}
	return domainerrors.NewAppError(http.StatusInternalServerError, domainerrors.CodeInternalError, "internal server error", err)
}
