package domain

import (
	"context"
	"errors"
)

// Gateway is the authenticated DevRoom API client the checkout flow depends
// on.
type Gateway interface {
	FetchPayment(ctx context.Context, paymentID string) (*PaymentRecord, error)
	SubmitBusiness(ctx context.Context, customerID string, form BusinessFormData) error
	// SubmitGeolocation returns the upstream confirmation message.
	SubmitGeolocation(ctx context.Context, customerID string, hint GeolocationHint) (string, error)
}

// StartSessionRequest begins a checkout session for one page load.
type StartSessionRequest struct {
	PaymentID string
	Geo       GeolocationHint
}

type Service interface {
	// Start fetches the payment record and runs the once-only geolocation
	// side effect. Upstream failures surface as the session's Error state,
	// not as a returned error.
	Start(ctx context.Context, req StartSessionRequest) (*Session, error)
	Get(ctx context.Context, sessionID string) (*Session, error)
	ToggleForm(ctx context.Context, sessionID string) (*Session, error)
	EditFormField(ctx context.Context, sessionID, field, value string) (*Session, error)
	// SubmitBusiness runs the form state machine for one submit attempt. On
	// validation failure the returned error is a *ValidationError and the
	// gateway is not called.
	SubmitBusiness(ctx context.Context, sessionID string, form BusinessFormData) (*Session, error)
	// InvoiceRedirect resolves the external payment URL for an unpaid
	// invoice.
	InvoiceRedirect(ctx context.Context, sessionID, invoiceID string) (string, error)
}

var (
	ErrInvalidPaymentID   = errors.New("invalid_payment_id")
	ErrSessionNotFound    = errors.New("session_not_found")
	ErrSessionNotReady    = errors.New("session_not_ready")
	ErrFormHidden         = errors.New("form_hidden")
	ErrFormSubmitting     = errors.New("form_submitting")
	ErrUnknownFormField   = errors.New("unknown_form_field")
	ErrInvoiceNotFound    = errors.New("invoice_not_found")
	ErrInvoiceAlreadyPaid = errors.New("invoice_already_paid")
)
