package domain

import (
	"strings"

	"github.com/devroom/checkout/internal/taxtable"
)

// FormState is the business registration form machine:
// Collapsed -> Expanded -> Submitting -> {SubmittedOk, SubmittedError}.
// SubmittedError behaves as Expanded with the entered values kept, so the
// user can correct and retry without retyping; SubmittedOk is terminal.
type FormState string

const (
	FormCollapsed      FormState = "collapsed"
	FormExpanded       FormState = "expanded"
	FormSubmitting     FormState = "submitting"
	FormSubmittedOk    FormState = "submitted_ok"
	FormSubmittedError FormState = "submitted_error"
)

// Form field names, matching the upstream form schema.
const (
	FieldName       = "name"
	FieldCountry    = "country"
	FieldAddress    = "address"
	FieldCity       = "city"
	FieldPostalCode = "postalCode"
	FieldVATID      = "vatId"
)

// ValidationError carries one message per invalid field, keyed by field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "validation_error" }

// ValidateBusinessForm checks the six required fields. Text fields must be
// non-blank after trimming; the country must be a recognized jurisdiction.
func ValidateBusinessForm(d BusinessFormData, table taxtable.Table) *ValidationError {
	fields := map[string]string{}

	if strings.TrimSpace(d.Name) == "" {
		fields[FieldName] = "Entity name is required"
	}
	if strings.TrimSpace(d.Country) == "" {
		fields[FieldCountry] = "Country is required"
	} else if !table.IsTaxRelevant(d.Country) {
		fields[FieldCountry] = "Country is not supported"
	}
	if strings.TrimSpace(d.Address) == "" {
		fields[FieldAddress] = "Address is required"
	}
	if strings.TrimSpace(d.City) == "" {
		fields[FieldCity] = "City is required"
	}
	if strings.TrimSpace(d.PostalCode) == "" {
		fields[FieldPostalCode] = "Postal code is required"
	}
	if strings.TrimSpace(d.VATID) == "" {
		fields[FieldVATID] = "VAT ID is required"
	}

	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

// ToggleForm flips the disclosure between Collapsed and Expanded. No data
// implication.
func (s *Session) ToggleForm() error {
	if s.State != SessionReady {
		return ErrSessionNotReady
	}
	if !s.FormVisible {
		return ErrFormHidden
	}
	switch s.Form {
	case FormSubmitting:
		return ErrFormSubmitting
	case FormCollapsed:
		s.Form = FormExpanded
	default:
		s.Form = FormCollapsed
	}
	return nil
}

// EditFormField updates one draft field and clears that field's validation
// error only; errors for other fields persist.
func (s *Session) EditFormField(field, value string) error {
	if s.State != SessionReady {
		return ErrSessionNotReady
	}
	if !s.FormVisible {
		return ErrFormHidden
	}
	if s.Form == FormSubmitting {
		return ErrFormSubmitting
	}

	switch field {
	case FieldName:
		s.Draft.Name = value
	case FieldCountry:
		s.Draft.Country = value
	case FieldAddress:
		s.Draft.Address = value
	case FieldCity:
		s.Draft.City = value
	case FieldPostalCode:
		s.Draft.PostalCode = value
	case FieldVATID:
		s.Draft.VATID = value
	default:
		return ErrUnknownFormField
	}

	if s.Form == FormCollapsed {
		s.Form = FormExpanded
	}
	delete(s.FieldErrors, field)
	return nil
}

// BeginSubmit validates the draft and, when valid, enters Submitting.
// Validation failures keep the form editable and never reach the gateway.
func (s *Session) BeginSubmit(draft BusinessFormData, table taxtable.Table) error {
	if s.State != SessionReady {
		return ErrSessionNotReady
	}
	if !s.FormVisible {
		return ErrFormHidden
	}
	if s.Form == FormSubmitting {
		return ErrFormSubmitting
	}

	s.Draft = draft
	if vErr := ValidateBusinessForm(draft, table); vErr != nil {
		s.FieldErrors = vErr.Fields
		s.Form = FormExpanded
		return vErr
	}

	s.FieldErrors = nil
	s.Form = FormSubmitting
	return nil
}

// SubmitFailed returns the form to an editable state with values intact.
func (s *Session) SubmitFailed() {
	s.Form = FormSubmittedError
	s.AddNotice(NoticeError, "Failed to save business details. Please try again.")
}
