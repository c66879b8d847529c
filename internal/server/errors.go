package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/jdstudio/internal/backend"
	"github.com/jonathan/jdstudio/internal/export"
	"github.com/jonathan/jdstudio/internal/reveal"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validationErr *ErrValidation
		fieldErrs     validator.ValidationErrors
		apiErr        *backend.APICallError
		parseErr      *backend.ParseError
	)

	switch {
	case errors.As(err, &validationErr), errors.As(err, &fieldErrs):
		return http.StatusBadRequest
	case errors.Is(err, backend.ErrNotPDF):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, export.ErrNothingToExport):
		return http.StatusBadRequest
	case errors.As(err, &apiErr):
		switch apiErr.Status {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound, http.StatusTooManyRequests:
			return apiErr.Status
		}
		return http.StatusBadGateway
	case errors.As(err, &parseErr):
		return http.StatusBadGateway
	case errors.Is(err, reveal.ErrLoopClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// extractValidationErrors formats the first validator failure for the client.
func extractValidationErrors(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		// Return first validation error for simplicity
		ve := validationErrors[0]
		return fmt.Sprintf("validation error: %s - %s", ve.Field(), ve.Tag())
	}
	var validationErr *ErrValidation
	if errors.As(err, &validationErr) {
		return validationErr.Error()
	}
	return "validation error: invalid request"
}

// publicMessage is the text shown to the client for err. Backend refusals carry the backend's
// own message; validation failures name the first bad field.
func publicMessage(err error) string {
	var (
		validationErr *ErrValidation
		fieldErrs     validator.ValidationErrors
		apiErr        *backend.APICallError
	)
	switch {
	case errors.As(err, &validationErr), errors.As(err, &fieldErrs):
		return extractValidationErrors(err)
	case errors.As(err, &apiErr) && apiErr.Status != 0:
		return apiErr.Message
	default:
		return err.Error()
	}
}
