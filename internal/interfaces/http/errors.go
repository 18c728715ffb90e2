package http

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/Vedant-1724/Ai-Finance-Assistant/internal/entities"
	"github.com/gin-gonic/gin"
)

// Canonical error codes surfaced to clients. The HTTP layer is the only
// place that maps domain failures to status codes.
const (
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeBadCredentials     = "BAD_CREDENTIALS"
	CodeAuthRequired       = "AUTH_REQUIRED"
	CodeForbidden          = "FORBIDDEN"
	CodeNotFound           = "NOT_FOUND"
	CodeConflict           = "CONFLICT"
	CodeFeatureLocked      = "FEATURE_LOCKED"
	CodeQuotaExceeded      = "DAILY_LIMIT_EXCEEDED"
	CodeRateLimited        = "RATE_LIMITED"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeInternal           = "INTERNAL_ERROR"
)

// errorBody writes the shared error envelope: {error, message, timestamp}.
func errorBody(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error":     code,
		"message":   message,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// respondError maps a domain failure to its status code. Unknown errors
// become an opaque 500 — the body never leaks internals.
func respondError(c *gin.Context, err error) {
	var validation entities.ValidationError
	switch {
	case errors.As(err, &validation):
		errorBody(c, http.StatusBadRequest, CodeValidationFailed, validation.Message)
	case errors.Is(err, entities.ErrWeakPassword):
		errorBody(c, http.StatusBadRequest, CodeValidationFailed, err.Error())
	case errors.Is(err, entities.ErrBadCredentials):
		errorBody(c, http.StatusUnauthorized, CodeBadCredentials, "Invalid email or password")
	case errors.Is(err, entities.ErrForbidden):
		errorBody(c, http.StatusForbidden, CodeForbidden, "Access denied")
	case errors.Is(err, entities.ErrNotFound):
		errorBody(c, http.StatusNotFound, CodeNotFound, "Not found")
	case errors.Is(err, entities.ErrEmailTaken):
		errorBody(c, http.StatusConflict, CodeConflict, "An account with this email already exists.")
	case errors.Is(err, entities.ErrQuotaExceeded):
		errorBody(c, http.StatusTooManyRequests, CodeQuotaExceeded, "Daily AI chat limit exceeded.")
	case errors.Is(err, entities.ErrRateLimited):
		errorBody(c, http.StatusTooManyRequests, CodeRateLimited, "Too many attempts. Please wait and try again.")
	default:
		log.Printf("unhandled error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		errorBody(c, http.StatusInternalServerError, CodeInternal, "An error occurred. Please try again.")
	}
}
