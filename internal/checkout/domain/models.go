package domain

import "strings"

// Invoice is a payable line fetched from the DevRoom API. Immutable once
// fetched; Paid gates the payment affordance.
type Invoice struct {
	InvoiceID string  `json:"invoiceId"`
	Amount    float64 `json:"amount"`
	URL       string  `json:"url"`
	Paid      bool    `json:"paid"`
}

// VAT is a server-asserted tax record. It takes precedence over any
// client-inferred jurisdiction.
type VAT struct {
	Country string `json:"country"`
	// Rate arrives as a string on the wire.
	Rate string `json:"rate"`
}

// RatePercent parses the wire rate with parseInt semantics: leading digits
// only, 0 for anything unparseable.
func (v VAT) RatePercent() int {
	s := strings.TrimSpace(v.Rate)
	n := 0
	parsed := false
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
		parsed = true
	}
	if !parsed {
		return 0
	}
	return n
}

// Business is a stored business/VAT registration record. Its presence on a
// PaymentRecord suppresses the registration form for the session.
type Business struct {
	ID         string `json:"id"`
	Country    string `json:"country"`
	City       string `json:"city"`
	Name       string `json:"name"`
	Address    string `json:"address"`
	PostalCode string `json:"postalCode"`
}

// PaymentRecord identifies a payable obligation. Fetched once per session and
// mutated locally when business registration completes; never re-fetched.
type PaymentRecord struct {
	PaymentTotalAmount float64   `json:"paymentTotalAmount"`
	PaymentCurrency    string    `json:"paymentCurrency"`
	Invoices           []Invoice `json:"invoices"`
	PaymentDescription string    `json:"paymentDescription"`
	VAT                *VAT      `json:"vat"`
	Business           *Business `json:"business"`
	IsNewCustomer      bool      `json:"isNewCustomer"`
	CreditAmount       float64   `json:"creditAmount"`
	BalanceAmount      float64   `json:"balanceAmount"`
	AmountDue          float64   `json:"amountDue"`
	UserID             string    `json:"userId"`
	CustomerID         string    `json:"customerId"`
}

// AllPaid reports whether every invoice is paid. True for an empty list.
func (r *PaymentRecord) AllPaid() bool {
	for _, inv := range r.Invoices {
		if !inv.Paid {
			return false
		}
	}
	return true
}

// InvoiceByID returns the invoice with the given identifier.
func (r *PaymentRecord) InvoiceByID(id string) (Invoice, bool) {
	for _, inv := range r.Invoices {
		if inv.InvoiceID == id {
			return inv, true
		}
	}
	return Invoice{}, false
}

// Clone deep-copies the record so session snapshots cannot alias stored state.
func (r *PaymentRecord) Clone() *PaymentRecord {
	if r == nil {
		return nil
	}
	out := *r
	out.Invoices = make([]Invoice, len(r.Invoices))
	copy(out.Invoices, r.Invoices)
	if r.VAT != nil {
		vat := *r.VAT
		out.VAT = &vat
	}
	if r.Business != nil {
		business := *r.Business
		out.Business = &business
	}
	return &out
}

// BusinessFormData is the transient, user-entered draft of a Business record.
type BusinessFormData struct {
	Name       string `json:"name"`
	Country    string `json:"country"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	VATID      string `json:"vatId"`
}

// AsBusiness folds an accepted draft into a Business record. The VAT id doubles
// as the record identifier, mirroring the upstream schema.
func (d BusinessFormData) AsBusiness() Business {
	return Business{
		ID:         d.VATID,
		Country:    d.Country,
		City:       d.City,
		Name:       d.Name,
		Address:    d.Address,
		PostalCode: d.PostalCode,
	}
}

// GeolocationHint carries jurisdiction signals supplied by the serving edge.
// Empty fields mean unknown.
type GeolocationHint struct {
	Country    string `json:"country"`
	City       string `json:"city"`
	Region     string `json:"region"`
	PostalCode string `json:"postalCode"`
}

// HasCountry reports whether the edge supplied a country signal.
func (g GeolocationHint) HasCountry() bool {
	return strings.TrimSpace(g.Country) != ""
}
