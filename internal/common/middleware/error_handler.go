package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	apperrors "giveaway-market-backend/internal/common/errors"
)

// RequestID attaches an id to every request for log correlation.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// RequestLogger logs each request with its outcome.
func RequestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		event := logger.Info()
		if c.Writer.Status() >= http.StatusInternalServerError {
			event = logger.Error()
		}
		event.
			Str("request_id", c.GetString("request_id")).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("Request handled")
	}
}

// ErrorResponse is the error payload returned to clients.
type ErrorResponse struct {
	Success   bool                `json:"success"`
	Error     *apperrors.AppError `json:"error"`
	RequestID string              `json:"request_id,omitempty"`
}

// RespondWithError maps an application error to its HTTP status and writes
// the typed payload. Non-recoverable errors are logged with full cause.
func RespondWithError(c *gin.Context, logger zerolog.Logger, err error) {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		appErr = apperrors.Wrap(err, apperrors.ErrCodeInternal, "Internal server error")
	}

	if !appErr.IsRecoverable() {
		logger.Error().
			Err(err).
			Str("request_id", c.GetString("request_id")).
			Str("path", c.Request.URL.Path).
			Msg("Request failed")
	}

	c.JSON(statusForCode(appErr.Code), ErrorResponse{
		Success:   false,
		Error:     appErr,
		RequestID: c.GetString("request_id"),
	})
}

func statusForCode(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrCodeValidation, apperrors.ErrCodeInvalidSlotCount:
		return http.StatusBadRequest
	case apperrors.ErrCodeForbidden:
		return http.StatusForbidden
	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeUnknownTier:
		return http.StatusUnprocessableEntity
	case apperrors.ErrCodeQuotaExceeded,
		apperrors.ErrCodeValueLimitExceeded,
		apperrors.ErrCodePaidEntriesDenied,
		apperrors.ErrCodeGiveawayNotActive,
		apperrors.ErrCodeGiveawayExpired,
		apperrors.ErrCodeCapacityExceeded,
		apperrors.ErrCodeNoEntries,
		apperrors.ErrCodeAlreadyDrawn,
		apperrors.ErrCodeInvalidTransition,
		apperrors.ErrCodeConflict,
		apperrors.ErrCodeVersionConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
