// Package httputil provides HTTP utility functions for request and response handling.
package httputil

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	cryptoDomain "github.com/allisson/sealedrecords/internal/crypto/domain"
	apperrors "github.com/allisson/sealedrecords/internal/errors"
)

// ErrorResponse represents a structured error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

// envelopeErrorCodes lists the engine failures that get their own machine-readable code.
// Order matters: the first match wins.
var envelopeErrorCodes = []struct {
	err  error
	code string
}{
	{cryptoDomain.ErrMalformedEncoding, "malformed_encoding"},
	{cryptoDomain.ErrLengthMismatch, "length_mismatch"},
	{cryptoDomain.ErrUnknownKeyVersion, "unknown_key_version"},
	{cryptoDomain.ErrAuthenticationFailed, "authentication_failed"},
	{cryptoDomain.ErrUnsupportedAlgorithm, "unsupported_algorithm"},
	{cryptoDomain.ErrInvalidPayload, "invalid_payload"},
}

func envelopeErrorCode(err error) string {
	for _, entry := range envelopeErrorCodes {
		if apperrors.Is(err, entry.err) {
			return entry.code
		}
	}
	return ""
}

// HandleErrorGin maps domain errors to HTTP status codes and writes a JSON response.
//
// Internal and integrity failures never expose their message. Authentication failures
// expose only the generic message so the cause stays undisclosed.
func HandleErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if err == nil {
		return
	}

	var statusCode int
	var errorResponse ErrorResponse

	switch {
	case apperrors.Is(err, apperrors.ErrNotFound):
		statusCode = http.StatusNotFound
		errorResponse = ErrorResponse{
			Error:   "not_found",
			Message: "The requested resource was not found",
		}

	case apperrors.Is(err, apperrors.ErrConflict):
		statusCode = http.StatusConflict
		errorResponse = ErrorResponse{
			Error:   "conflict",
			Message: "A conflict occurred with existing data",
		}

	case apperrors.Is(err, cryptoDomain.ErrAuthenticationFailed):
		statusCode = http.StatusUnprocessableEntity
		errorResponse = ErrorResponse{
			Error:   "invalid_input",
			Message: cryptoDomain.ErrAuthenticationFailed.Error(),
			Code:    "authentication_failed",
		}

	case apperrors.Is(err, apperrors.ErrInvalidInput):
		statusCode = http.StatusUnprocessableEntity
		errorResponse = ErrorResponse{
			Error:   "invalid_input",
			Message: err.Error(),
			Code:    envelopeErrorCode(err),
		}

	case apperrors.Is(err, cryptoDomain.ErrCorruptPayload):
		statusCode = http.StatusInternalServerError
		errorResponse = ErrorResponse{
			Error:   "integrity_error",
			Message: "Stored data failed an integrity check",
			Code:    "corrupt_payload",
		}

	default:
		statusCode = http.StatusInternalServerError
		errorResponse = ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
			Code:    "internal",
		}
	}

	if logger != nil {
		level := slog.LevelWarn
		if statusCode >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(c.Request.Context(), level, "request failed",
			slog.Int("status_code", statusCode),
			slog.String("error_code", errorResponse.Error),
			slog.Any("error", err),
		)
	}

	c.JSON(statusCode, errorResponse)
}

// HandleBadRequestGin writes a 400 Bad Request response for malformed JSON or parameters.
func HandleBadRequestGin(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.WarnContext(c.Request.Context(), "bad request", slog.Any("error", err))
	}

	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "bad_request",
		Message: err.Error(),
	})
}

// HandleValidationErrorGin writes a 422 Unprocessable Entity response for validation errors.
func HandleValidationErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.WarnContext(c.Request.Context(), "validation failed", slog.Any("error", err))
	}

	c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
		Error:   "validation_error",
		Message: err.Error(),
	})
}
