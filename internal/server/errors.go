package server

import (
	"errors"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"github.com/devroom/checkout/internal/checkout/domain"
	"github.com/devroom/checkout/internal/gateway"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	if fieldErrs := asFieldErrors(err); fieldErrs != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  fieldErrs,
		}
	}

	switch {
	case errors.Is(err, domain.ErrInvalidPaymentID),
		errors.Is(err, domain.ErrUnknownFormField):
		return http.StatusBadRequest, errorPayload{
			Type:    "invalid_request",
			Message: "invalid request",
		}
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrInvoiceNotFound),
		errors.Is(err, gateway.ErrNotFound):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, domain.ErrInvoiceAlreadyPaid),
		errors.Is(err, domain.ErrSessionNotReady),
		errors.Is(err, domain.ErrFormHidden),
		errors.Is(err, domain.ErrFormSubmitting):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: conflictMessage(err),
		}
	case errors.Is(err, gateway.ErrAuthFailure),
		errors.Is(err, gateway.ErrTokenMint),
		errors.Is(err, gateway.ErrServerError):
		return http.StatusBadGateway, errorPayload{
			Type:    "upstream_error",
			Message: "upstream service error",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func conflictMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvoiceAlreadyPaid):
		return "invoice already paid"
	case errors.Is(err, domain.ErrFormSubmitting):
		return "submission already in progress"
	default:
		return "conflict"
	}
}

// asFieldErrors flattens the form state machine's per-field errors into the
// wire payload, sorted for stable output.
func asFieldErrors(err error) []ValidationError {
	var vErr *domain.ValidationError
	if !errors.As(err, &vErr) || vErr == nil || len(vErr.Fields) == 0 {
		return nil
	}

	out := make([]ValidationError, 0, len(vErr.Fields))
	for field, message := range vErr.Fields {
		out = append(out, ValidationError{
			Field:   field,
			Code:    "required",
			Message: message,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}

func classifyErrorForLog(err error) (string, string) {
	if err == nil {
		return "", ""
	}

	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		return "validation", "validation_error"
	}

	var sErr *gateway.StatusError
	if errors.As(err, &sErr) {
		return "upstream", http.StatusText(sErr.Status)
	}

	switch {
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrInvoiceNotFound):
		return "not_found", err.Error()
	case errors.Is(err, domain.ErrInvoiceAlreadyPaid),
		errors.Is(err, domain.ErrSessionNotReady),
		errors.Is(err, domain.ErrFormHidden),
		errors.Is(err, domain.ErrFormSubmitting):
		return "conflict", err.Error()
	default:
		return "internal", err.Error()
	}
}
