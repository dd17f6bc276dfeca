package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/devroom/checkout/internal/checkout/domain"
	"github.com/devroom/checkout/internal/checkout/sessionstore"
	"github.com/devroom/checkout/internal/config"
	obsmetrics "github.com/devroom/checkout/internal/observability/metrics"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Gateway  domain.Gateway
	Sessions *sessionstore.Store
	TaxRates *config.TaxRateHolder
	Metrics  *obsmetrics.Metrics `optional:"true"`
}

// Service owns the checkout page state transitions. Each public method is one
// external event against the session reducer; gateway calls happen outside
// the store lock.
type Service struct {
	log      *zap.Logger
	gateway  domain.Gateway
	sessions *sessionstore.Store
	taxRates *config.TaxRateHolder
	metrics  *obsmetrics.Metrics

	newID func() string
	now   func() time.Time
}

func New(p Params) domain.Service {
	return &Service{
		log:      p.Log.Named("checkout.service"),
		gateway:  p.Gateway,
		sessions: p.Sessions,
		taxRates: p.TaxRates,
		metrics:  p.Metrics,
		newID:    uuid.NewString,
		now:      time.Now,
	}
}

func (s *Service) Start(ctx context.Context, req domain.StartSessionRequest) (*domain.Session, error) {
	paymentID := strings.TrimSpace(req.PaymentID)
	if paymentID == "" {
		return nil, domain.ErrInvalidPaymentID
	}

	sess := domain.NewSession(s.newID(), paymentID, s.now())

	record, err := s.gateway.FetchPayment(ctx, paymentID)
	if err != nil {
		s.log.Error("payment fetch failed",
			zap.String("payment_id", paymentID),
			zap.Error(err),
		)
		sess.LoadFailed("Failed to load payment data. Please try again later.")
		s.metrics.RecordSessionStart(string(domain.SessionError))
	} else {
		sess.LoadSucceeded(record)
		s.saveGeolocation(ctx, sess, req.Geo)
		s.metrics.RecordSessionStart(string(domain.SessionReady))
	}

	s.sessions.Put(sess)
	return sess.Clone(), nil
}

// saveGeolocation runs the once-only geolocation side effect: record the
// tax-relevant jurisdiction and forward the hint upstream. The GeoSaved latch
// is set after the attempt regardless of outcome, and a failure only becomes
// a notification; it never blocks Ready.
func (s *Service) saveGeolocation(ctx context.Context, sess *domain.Session, geo domain.GeolocationHint) {
	if sess.Record == nil || !sess.Record.IsNewCustomer || sess.GeoSaved {
		return
	}

	country := strings.ToUpper(strings.TrimSpace(geo.Country))
	if country == "" || !s.taxRates.Get().IsTaxRelevant(country) {
		return
	}

	sess.SetJurisdiction(country)
	sess.MarkGeoSaved()

	customerID := strings.TrimSpace(sess.Record.CustomerID)
	if customerID == "" {
		return
	}

	message, err := s.gateway.SubmitGeolocation(ctx, customerID, geo)
	if err != nil {
		s.log.Warn("geolocation save failed",
			zap.String("customer_id", customerID),
			zap.Error(err),
		)
		sess.AddNotice(domain.NoticeError, "Failed to detect or save your location.")
		s.metrics.RecordGeolocationSave("error")
		return
	}

	if message == "" {
		message = "Your location has been detected as " + country + "."
	}
	sess.AddNotice(domain.NoticeInfo, message)
	s.metrics.RecordGeolocationSave("ok")
}

func (s *Service) Get(_ context.Context, sessionID string) (*domain.Session, error) {
	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return sess, nil
}

func (s *Service) ToggleForm(_ context.Context, sessionID string) (*domain.Session, error) {
	return s.sessions.Update(sessionID, func(w *domain.Session) error {
		return w.ToggleForm()
	})
}

func (s *Service) EditFormField(_ context.Context, sessionID, field, value string) (*domain.Session, error) {
	return s.sessions.Update(sessionID, func(w *domain.Session) error {
		return w.EditFormField(field, value)
	})
}

func (s *Service) SubmitBusiness(ctx context.Context, sessionID string, form domain.BusinessFormData) (*domain.Session, error) {
	table := s.taxRates.Get()

	// Validation outcomes are committed to the session so the form keeps its
	// per-field errors; state-machine precondition failures are not.
	var vErr *domain.ValidationError
	sess, err := s.sessions.Update(sessionID, func(w *domain.Session) error {
		err := w.BeginSubmit(form, table)
		if errors.As(err, &vErr) {
			return nil
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if vErr != nil {
		s.metrics.RecordBusinessSubmission("validation_error")
		return sess, vErr
	}

	customerID := ""
	if sess.Record != nil {
		customerID = strings.TrimSpace(sess.Record.CustomerID)
	}

	if submitErr := s.gateway.SubmitBusiness(ctx, customerID, form); submitErr != nil {
		s.log.Error("business submit failed",
			zap.String("customer_id", customerID),
			zap.Error(submitErr),
		)
		s.metrics.RecordBusinessSubmission("error")
		return s.sessions.Update(sessionID, func(w *domain.Session) error {
			w.SubmitFailed()
			return nil
		})
	}

	s.metrics.RecordBusinessSubmission("ok")
	return s.sessions.Update(sessionID, func(w *domain.Session) error {
		w.AcceptBusiness(form)
		w.AddNotice(domain.NoticeSuccess, "Your business details have been saved successfully.")
		return nil
	})
}

func (s *Service) InvoiceRedirect(_ context.Context, sessionID, invoiceID string) (string, error) {
	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		return "", domain.ErrSessionNotFound
	}
	if sess.State != domain.SessionReady || sess.Record == nil {
		return "", domain.ErrSessionNotReady
	}

	invoice, ok := sess.Record.InvoiceByID(invoiceID)
	if !ok {
		return "", domain.ErrInvoiceNotFound
	}
	if invoice.Paid {
		return "", domain.ErrInvoiceAlreadyPaid
	}
	return invoice.URL, nil
}
