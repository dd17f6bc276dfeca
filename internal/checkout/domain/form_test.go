package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devroom/checkout/internal/taxtable"
)

func validForm() BusinessFormData {
	return BusinessFormData{
		Name:       "ACME GmbH",
		Country:    "DE",
		Address:    "Unter den Linden 1",
		City:       "Berlin",
		PostalCode: "10117",
		VATID:      "DE123456789",
	}
}

func readySession(t *testing.T) *Session {
	t.Helper()
	sess := NewSession("sid", "pay_1", time.Now())
	sess.LoadSucceeded(&PaymentRecord{
		PaymentCurrency: "EUR",
		AmountDue:       100,
		IsNewCustomer:   true,
	})
	require.Equal(t, SessionReady, sess.State)
	require.True(t, sess.FormVisible)
	return sess
}

func TestValidateBusinessFormValid(t *testing.T) {
	assert.Nil(t, ValidateBusinessForm(validForm(), taxtable.Default()))
}

func TestValidateBusinessFormMissingFields(t *testing.T) {
	table := taxtable.Default()

	tests := []struct {
		field  string
		mutate func(*BusinessFormData)
		want   string
	}{
		{FieldName, func(d *BusinessFormData) { d.Name = "  " }, "Entity name is required"},
		{FieldCountry, func(d *BusinessFormData) { d.Country = "" }, "Country is required"},
		{FieldCountry, func(d *BusinessFormData) { d.Country = "US" }, "Country is not supported"},
		{FieldAddress, func(d *BusinessFormData) { d.Address = "" }, "Address is required"},
		{FieldCity, func(d *BusinessFormData) { d.City = "" }, "City is required"},
		{FieldPostalCode, func(d *BusinessFormData) { d.PostalCode = " " }, "Postal code is required"},
		{FieldVATID, func(d *BusinessFormData) { d.VATID = "" }, "VAT ID is required"},
	}

	for _, tc := range tests {
		form := validForm()
		tc.mutate(&form)

		vErr := ValidateBusinessForm(form, table)
		require.NotNil(t, vErr, "field %s", tc.field)
		require.Len(t, vErr.Fields, 1, "field %s", tc.field)
		assert.Equal(t, tc.want, vErr.Fields[tc.field])
	}
}

func TestToggleForm(t *testing.T) {
	sess := readySession(t)

	require.NoError(t, sess.ToggleForm())
	assert.Equal(t, FormExpanded, sess.Form)

	require.NoError(t, sess.ToggleForm())
	assert.Equal(t, FormCollapsed, sess.Form)
}

func TestToggleFormHidden(t *testing.T) {
	sess := NewSession("sid", "pay_1", time.Now())
	sess.LoadSucceeded(&PaymentRecord{
		Business: &Business{ID: "DE123", Name: "ACME"},
	})

	assert.False(t, sess.FormVisible)
	assert.ErrorIs(t, sess.ToggleForm(), ErrFormHidden)
}

func TestEditFormFieldClearsOwnErrorOnly(t *testing.T) {
	sess := readySession(t)
	sess.Form = FormExpanded
	sess.FieldErrors = map[string]string{
		FieldName: "Entity name is required",
		FieldCity: "City is required",
	}

	require.NoError(t, sess.EditFormField(FieldName, "ACME GmbH"))

	assert.Equal(t, "ACME GmbH", sess.Draft.Name)
	_, hasName := sess.FieldErrors[FieldName]
	assert.False(t, hasName)
	assert.Equal(t, "City is required", sess.FieldErrors[FieldCity])
}

func TestEditFormFieldUnknown(t *testing.T) {
	sess := readySession(t)
	sess.Form = FormExpanded

	assert.ErrorIs(t, sess.EditFormField("company", "x"), ErrUnknownFormField)
}

func TestBeginSubmitInvalidKeepsFormEditable(t *testing.T) {
	sess := readySession(t)
	sess.Form = FormExpanded

	form := validForm()
	form.City = ""

	err := sess.BeginSubmit(form, taxtable.Default())

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, FormExpanded, sess.Form)
	assert.Equal(t, "City is required", sess.FieldErrors[FieldCity])
	// Entered values survive the failed attempt.
	assert.Equal(t, "ACME GmbH", sess.Draft.Name)
}

func TestBeginSubmitValid(t *testing.T) {
	sess := readySession(t)
	sess.Form = FormExpanded

	require.NoError(t, sess.BeginSubmit(validForm(), taxtable.Default()))
	assert.Equal(t, FormSubmitting, sess.Form)
	assert.Empty(t, sess.FieldErrors)
}

func TestBeginSubmitWhileSubmitting(t *testing.T) {
	sess := readySession(t)
	sess.Form = FormSubmitting

	assert.ErrorIs(t, sess.BeginSubmit(validForm(), taxtable.Default()), ErrFormSubmitting)
}

func TestSubmitFailedKeepsDraft(t *testing.T) {
	sess := readySession(t)
	sess.Form = FormSubmitting
	sess.Draft = validForm()

	sess.SubmitFailed()

	assert.Equal(t, FormSubmittedError, sess.Form)
	assert.Equal(t, validForm(), sess.Draft)
	require.NotEmpty(t, sess.Notices)
	assert.Equal(t, NoticeError, sess.Notices[len(sess.Notices)-1].Level)
}

func TestAcceptBusinessFoldsDraftAndHidesForm(t *testing.T) {
	sess := readySession(t)
	sess.Form = FormSubmitting
	sess.Draft = validForm()

	sess.AcceptBusiness(sess.Draft)

	require.NotNil(t, sess.Record.Business)
	assert.Equal(t, "DE123456789", sess.Record.Business.ID)
	assert.Equal(t, "ACME GmbH", sess.Record.Business.Name)
	assert.False(t, sess.FormVisible)
	assert.Equal(t, FormSubmittedOk, sess.Form)
}
