package domain

import (
	"time"
)

// SessionState is the page-level state machine: Loading -> {Error, Ready}.
// Error is terminal except for a full reload, which starts a new session.
type SessionState string

const (
	SessionLoading SessionState = "loading"
	SessionError   SessionState = "error"
	SessionReady   SessionState = "ready"
)

// NoticeLevel classifies user-visible notifications.
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

// Notice is a user-visible notification attached to the session.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

// Session is the per-page-load checkout state. Invariants the shape enforces:
// the geolocation side effect fires at most once (GeoSaved), and the
// registration form never re-shows once hidden (FormVisible only ever flips
// to false).
type Session struct {
	ID        string       `json:"id"`
	PaymentID string       `json:"paymentId"`
	State     SessionState `json:"state"`

	// ErrorMessage is set only in SessionError.
	ErrorMessage string `json:"errorMessage,omitempty"`

	Record *PaymentRecord `json:"record,omitempty"`

	// Jurisdiction is the edge-inferred tax jurisdiction code, empty when
	// none applies. A server-asserted VAT record overrides it at summary time.
	Jurisdiction string `json:"jurisdiction,omitempty"`
	GeoSaved     bool   `json:"geoSaved"`

	FormVisible bool              `json:"formVisible"`
	Form        FormState         `json:"formState"`
	Draft       BusinessFormData  `json:"draft"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`

	Notices []Notice `json:"notices,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// NewSession starts a session in Loading.
func NewSession(id, paymentID string, now time.Time) *Session {
	return &Session{
		ID:        id,
		PaymentID: paymentID,
		State:     SessionLoading,
		Form:      FormCollapsed,
		CreatedAt: now,
	}
}

// LoadFailed transitions Loading -> Error.
func (s *Session) LoadFailed(message string) {
	s.State = SessionError
	s.ErrorMessage = message
	s.Record = nil
	s.FormVisible = false
}

// LoadSucceeded transitions Loading -> Ready. The form is visible only when
// the record carries no business registration.
func (s *Session) LoadSucceeded(record *PaymentRecord) {
	s.State = SessionReady
	s.ErrorMessage = ""
	s.Record = record
	s.FormVisible = record.Business == nil
}

// SetJurisdiction records the active edge-inferred tax jurisdiction.
func (s *Session) SetJurisdiction(code string) {
	s.Jurisdiction = code
}

// MarkGeoSaved latches the at-most-once geolocation side effect.
func (s *Session) MarkGeoSaved() {
	s.GeoSaved = true
}

// AddNotice appends a user-visible notification.
func (s *Session) AddNotice(level NoticeLevel, message string) {
	s.Notices = append(s.Notices, Notice{Level: level, Message: message})
}

// AcceptBusiness folds an accepted draft into the record and permanently hides
// the form. One-way handoff: the record is not re-fetched.
func (s *Session) AcceptBusiness(draft BusinessFormData) {
	business := draft.AsBusiness()
	if s.Record != nil {
		s.Record.Business = &business
	}
	s.FormVisible = false
	s.Form = FormSubmittedOk
	s.FieldErrors = nil
}

// Clone deep-copies the session.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Record = s.Record.Clone()
	if s.FieldErrors != nil {
		out.FieldErrors = make(map[string]string, len(s.FieldErrors))
		for k, v := range s.FieldErrors {
			out.FieldErrors[k] = v
		}
	}
	out.Notices = make([]Notice, len(s.Notices))
	copy(out.Notices, s.Notices)
	return &out
}
