package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/devroom/checkout/internal/checkout/domain"
	"github.com/devroom/checkout/internal/checkout/sessionstore"
	"github.com/devroom/checkout/internal/config"
	"github.com/devroom/checkout/internal/taxtable"
)

type fakeGateway struct {
	mu sync.Mutex

	record      *domain.PaymentRecord
	fetchErr    error
	businessErr error
	geoErr      error
	geoMessage  string

	fetchCalls    int
	businessCalls int
	geoCalls      int

	lastCustomerID string
	lastForm       domain.BusinessFormData
}

func (g *fakeGateway) FetchPayment(_ context.Context, _ string) (*domain.PaymentRecord, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fetchCalls++
	if g.fetchErr != nil {
		return nil, g.fetchErr
	}
	return g.record.Clone(), nil
}

func (g *fakeGateway) SubmitBusiness(_ context.Context, customerID string, form domain.BusinessFormData) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.businessCalls++
	g.lastCustomerID = customerID
	g.lastForm = form
	return g.businessErr
}

func (g *fakeGateway) SubmitGeolocation(_ context.Context, customerID string, _ domain.GeolocationHint) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.geoCalls++
	g.lastCustomerID = customerID
	return g.geoMessage, g.geoErr
}

func newTestService(g domain.Gateway) *Service {
	return &Service{
		log:      zap.NewNop(),
		gateway:  g,
		sessions: sessionstore.New(time.Hour),
		taxRates: config.NewStaticTaxRateHolder(taxtable.Default()),
		newID: func() func() string {
			n := 0
			return func() string { n++; return "sess_" + strconv.Itoa(n) }
		}(),
		now: time.Now,
	}
}

func newCustomerRecord() *domain.PaymentRecord {
	return &domain.PaymentRecord{
		PaymentTotalAmount: 100,
		PaymentCurrency:    "USD",
		AmountDue:          100,
		IsNewCustomer:      true,
		CustomerID:         "cus_1",
		Invoices: []domain.Invoice{
			{InvoiceID: "inv_1", Amount: 100, URL: "https://pay.example.com/inv_1"},
		},
	}
}

func submittableForm() domain.BusinessFormData {
	return domain.BusinessFormData{
		Name:       "ACME GmbH",
		Country:    "DE",
		Address:    "Unter den Linden 1",
		City:       "Berlin",
		PostalCode: "10117",
		VATID:      "DE123456789",
	}
}

func TestStartInvalidPaymentID(t *testing.T) {
	svc := newTestService(&fakeGateway{record: newCustomerRecord()})

	_, err := svc.Start(context.Background(), domain.StartSessionRequest{PaymentID: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidPaymentID)
}

func TestStartFetchFailure(t *testing.T) {
	g := &fakeGateway{fetchErr: errors.New("boom")}
	svc := newTestService(g)

	sess, err := svc.Start(context.Background(), domain.StartSessionRequest{PaymentID: "pay_1"})
	require.NoError(t, err)

	assert.Equal(t, domain.SessionError, sess.State)
	assert.Equal(t, "Failed to load payment data. Please try again later.", sess.ErrorMessage)
	assert.Equal(t, 1, g.fetchCalls)
	assert.Equal(t, 0, g.geoCalls)
}

func TestStartFetchesOncePerSession(t *testing.T) {
	g := &fakeGateway{record: newCustomerRecord()}
	svc := newTestService(g)
	ctx := context.Background()

	sess, err := svc.Start(ctx, domain.StartSessionRequest{PaymentID: "pay_1"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, sess.ID)
	require.NoError(t, err)
	_, err = svc.ToggleForm(ctx, sess.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, g.fetchCalls)
}

func TestStartSavesGeolocationForNewCustomer(t *testing.T) {
	g := &fakeGateway{record: newCustomerRecord(), geoMessage: "Successfully saved geolocation data"}
	svc := newTestService(g)

	sess, err := svc.Start(context.Background(), domain.StartSessionRequest{
		PaymentID: "pay_1",
		Geo:       domain.GeolocationHint{Country: "de", City: "Berlin"},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.SessionReady, sess.State)
	assert.Equal(t, "DE", sess.Jurisdiction)
	assert.True(t, sess.GeoSaved)
	assert.Equal(t, 1, g.geoCalls)
	assert.Equal(t, "cus_1", g.lastCustomerID)
	require.Len(t, sess.Notices, 1)
	assert.Equal(t, domain.NoticeInfo, sess.Notices[0].Level)
	assert.Equal(t, "Successfully saved geolocation data", sess.Notices[0].Message)
}

func TestStartSkipsGeolocationForExistingCustomer(t *testing.T) {
	record := newCustomerRecord()
	record.IsNewCustomer = false
	g := &fakeGateway{record: record}
	svc := newTestService(g)

	sess, err := svc.Start(context.Background(), domain.StartSessionRequest{
		PaymentID: "pay_1",
		Geo:       domain.GeolocationHint{Country: "DE"},
	})
	require.NoError(t, err)

	assert.Empty(t, sess.Jurisdiction)
	assert.False(t, sess.GeoSaved)
	assert.Equal(t, 0, g.geoCalls)
}

func TestStartSkipsGeolocationForUnknownCountry(t *testing.T) {
	g := &fakeGateway{record: newCustomerRecord()}
	svc := newTestService(g)

	sess, err := svc.Start(context.Background(), domain.StartSessionRequest{
		PaymentID: "pay_1",
		Geo:       domain.GeolocationHint{Country: "US"},
	})
	require.NoError(t, err)

	assert.Empty(t, sess.Jurisdiction)
	assert.Equal(t, 0, g.geoCalls)
}

func TestStartGeolocationFailureIsNotificationOnly(t *testing.T) {
	g := &fakeGateway{record: newCustomerRecord(), geoErr: errors.New("upstream down")}
	svc := newTestService(g)

	sess, err := svc.Start(context.Background(), domain.StartSessionRequest{
		PaymentID: "pay_1",
		Geo:       domain.GeolocationHint{Country: "DE"},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.SessionReady, sess.State)
	assert.Equal(t, "DE", sess.Jurisdiction)
	assert.True(t, sess.GeoSaved)
	require.Len(t, sess.Notices, 1)
	assert.Equal(t, domain.NoticeError, sess.Notices[0].Level)
}

func TestGeolocationFiresAtMostOnce(t *testing.T) {
	g := &fakeGateway{record: newCustomerRecord()}
	svc := newTestService(g)
	ctx := context.Background()

	sess, err := svc.Start(ctx, domain.StartSessionRequest{
		PaymentID: "pay_1",
		Geo:       domain.GeolocationHint{Country: "DE"},
	})
	require.NoError(t, err)
	require.Equal(t, 1, g.geoCalls)

	_, err = svc.ToggleForm(ctx, sess.ID)
	require.NoError(t, err)
	_, err = svc.EditFormField(ctx, sess.ID, domain.FieldName, "ACME GmbH")
	require.NoError(t, err)
	_, err = svc.SubmitBusiness(ctx, sess.ID, submittableForm())
	require.NoError(t, err)

	assert.Equal(t, 1, g.geoCalls)
}

func TestSubmitBusinessValidationSkipsGateway(t *testing.T) {
	g := &fakeGateway{record: newCustomerRecord()}
	svc := newTestService(g)
	ctx := context.Background()

	sess, err := svc.Start(ctx, domain.StartSessionRequest{PaymentID: "pay_1"})
	require.NoError(t, err)

	form := submittableForm()
	form.City = ""

	updated, err := svc.SubmitBusiness(ctx, sess.ID, form)

	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "City is required", vErr.Fields[domain.FieldCity])
	assert.Equal(t, 0, g.businessCalls)

	// The error state is committed so a re-render shows it.
	assert.Equal(t, "City is required", updated.FieldErrors[domain.FieldCity])
	stored, err := svc.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "City is required", stored.FieldErrors[domain.FieldCity])
}

func TestSubmitBusinessSuccess(t *testing.T) {
	g := &fakeGateway{record: newCustomerRecord()}
	svc := newTestService(g)
	ctx := context.Background()

	sess, err := svc.Start(ctx, domain.StartSessionRequest{PaymentID: "pay_1"})
	require.NoError(t, err)

	updated, err := svc.SubmitBusiness(ctx, sess.ID, submittableForm())
	require.NoError(t, err)

	assert.Equal(t, 1, g.businessCalls)
	assert.Equal(t, "cus_1", g.lastCustomerID)
	assert.Equal(t, submittableForm(), g.lastForm)

	require.NotNil(t, updated.Record.Business)
	assert.Equal(t, "DE123456789", updated.Record.Business.ID)
	assert.False(t, updated.FormVisible)
	assert.Equal(t, domain.FormSubmittedOk, updated.Form)
	require.NotEmpty(t, updated.Notices)
	assert.Equal(t, domain.NoticeSuccess, updated.Notices[len(updated.Notices)-1].Level)
}

func TestSubmitBusinessGatewayFailure(t *testing.T) {
	g := &fakeGateway{record: newCustomerRecord(), businessErr: errors.New("upstream down")}
	svc := newTestService(g)
	ctx := context.Background()

	sess, err := svc.Start(ctx, domain.StartSessionRequest{PaymentID: "pay_1"})
	require.NoError(t, err)

	updated, err := svc.SubmitBusiness(ctx, sess.ID, submittableForm())
	require.NoError(t, err)

	assert.Equal(t, 1, g.businessCalls)
	assert.Equal(t, domain.FormSubmittedError, updated.Form)
	assert.Nil(t, updated.Record.Business)
	assert.True(t, updated.FormVisible)
	// Entered values survive so the user can retry.
	assert.Equal(t, submittableForm(), updated.Draft)
	require.NotEmpty(t, updated.Notices)
	assert.Equal(t, domain.NoticeError, updated.Notices[len(updated.Notices)-1].Level)
}

func TestFormHiddenWhenBusinessOnRecord(t *testing.T) {
	record := newCustomerRecord()
	record.Business = &domain.Business{ID: "DE999", Name: "Existing Co"}
	g := &fakeGateway{record: record}
	svc := newTestService(g)
	ctx := context.Background()

	sess, err := svc.Start(ctx, domain.StartSessionRequest{PaymentID: "pay_1"})
	require.NoError(t, err)
	assert.False(t, sess.FormVisible)

	_, err = svc.ToggleForm(ctx, sess.ID)
	assert.ErrorIs(t, err, domain.ErrFormHidden)
	_, err = svc.SubmitBusiness(ctx, sess.ID, submittableForm())
	assert.ErrorIs(t, err, domain.ErrFormHidden)
	assert.Equal(t, 0, g.businessCalls)
}

func TestInvoiceRedirect(t *testing.T) {
	record := newCustomerRecord()
	record.Invoices = append(record.Invoices, domain.Invoice{
		InvoiceID: "inv_2", Amount: 50, URL: "https://pay.example.com/inv_2", Paid: true,
	})
	g := &fakeGateway{record: record}
	svc := newTestService(g)
	ctx := context.Background()

	sess, err := svc.Start(ctx, domain.StartSessionRequest{PaymentID: "pay_1"})
	require.NoError(t, err)

	url, err := svc.InvoiceRedirect(ctx, sess.ID, "inv_1")
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example.com/inv_1", url)

	_, err = svc.InvoiceRedirect(ctx, sess.ID, "inv_2")
	assert.ErrorIs(t, err, domain.ErrInvoiceAlreadyPaid)

	_, err = svc.InvoiceRedirect(ctx, sess.ID, "inv_404")
	assert.ErrorIs(t, err, domain.ErrInvoiceNotFound)

	_, err = svc.InvoiceRedirect(ctx, "missing", "inv_1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}
