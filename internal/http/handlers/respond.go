package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/geocoder89/secondserve/internal/apperr"
	"github.com/gin-gonic/gin"
)

type APIError struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"requestId,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

func requestIDFrom(ctx *gin.Context) string {
	v, ok := ctx.Get("request_id")

	if ok {
		s, ok := v.(string)
		if ok && s != "" {
			return s
		}
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

func RespondError(ctx *gin.Context, status int, code, message string, details interface{}) {
	ctx.JSON(status, gin.H{
		"error": APIError{
			Code:      code,
			Message:   message,
			RequestID: requestIDFrom(ctx),
			Details:   details,
		},
	})
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, "invalid_request", message, details)
}

func RespondUnauthorized(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusUnauthorized, code, message, nil)
}

func RespondForbidden(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusForbidden, "forbidden", message, nil)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, "not_found", message, nil)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, "internal_error", message, nil)
}

func RespondConflict(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusConflict, code, message, nil)
}

// respondServiceError maps the apperr taxonomy onto HTTP. Anything outside
// it is logged and reported as a 500 with fallback as the message.
func respondServiceError(ctx *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, apperr.ErrUnauthorized):
		RespondUnauthorized(ctx, "unauthorized", err.Error())
	case errors.Is(err, apperr.ErrForbidden):
		RespondForbidden(ctx, err.Error())
	case errors.Is(err, apperr.ErrNotFound):
		RespondNotFound(ctx, err.Error())
	case errors.Is(err, apperr.ErrInvalidState):
		RespondError(ctx, http.StatusBadRequest, "invalid_state", err.Error(), nil)
	case errors.Is(err, apperr.ErrConflict):
		RespondConflict(ctx, "conflict", err.Error())
	default:
		slog.ErrorContext(ctx.Request.Context(), fallback, "err", err, "route", ctx.FullPath())
		RespondInternal(ctx, fallback)
	}
}

// orEmpty keeps list endpoints rendering [] rather than null.
func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
