package domain

import "github.com/devroom/checkout/internal/taxtable"

// Summary is the derived payment summary for a Ready session.
type Summary struct {
	Currency    string  `json:"currency"`
	TotalAmount float64 `json:"totalAmount"`

	// Subtractive display lines; rendered only when strictly positive.
	PaidAmount    float64 `json:"paidAmount"`
	CreditAmount  float64 `json:"creditAmount"`
	BalanceAmount float64 `json:"balanceAmount"`

	// Tax context. ServerAsserted distinguishes an upstream VAT record from
	// an edge-inferred jurisdiction.
	TaxApplies     bool   `json:"taxApplies"`
	TaxCountry     string `json:"taxCountry,omitempty"`
	TaxCountryName string `json:"taxCountryName,omitempty"`
	TaxRate        int    `json:"taxRate"`
	ServerAsserted bool   `json:"serverAsserted"`

	TaxAmount float64 `json:"taxAmount"`
	AmountDue float64 `json:"amountDue"`
}

// BuildSummary derives the payment summary from a record and the active
// edge-inferred jurisdiction. A server-asserted VAT record takes precedence.
//
// Tax is computed on the pre-payment amountDue, not on the net balance, and
// already-paid amounts are subtracted from the final total afterwards. That
// ordering matches the upstream product behavior.
func BuildSummary(record *PaymentRecord, jurisdiction string, table taxtable.Table) Summary {
	sum := Summary{
		Currency:      record.PaymentCurrency,
		TotalAmount:   record.PaymentTotalAmount,
		CreditAmount:  record.CreditAmount,
		BalanceAmount: record.BalanceAmount,
	}

	for _, inv := range record.Invoices {
		if inv.Paid {
			sum.PaidAmount += inv.Amount
		}
	}

	switch {
	case record.VAT != nil:
		sum.TaxApplies = true
		sum.ServerAsserted = true
		sum.TaxCountry = record.VAT.Country
		sum.TaxCountryName = table.NameFor(record.VAT.Country)
		sum.TaxRate = record.VAT.RatePercent()
	case jurisdiction != "" && table.IsTaxRelevant(jurisdiction):
		sum.TaxApplies = true
		sum.TaxCountry = jurisdiction
		sum.TaxCountryName = table.NameFor(jurisdiction)
		sum.TaxRate = table.RateFor(jurisdiction)
	}

	if sum.TaxRate > 0 {
		sum.TaxAmount = record.AmountDue * float64(sum.TaxRate) / 100
	}
	sum.AmountDue = record.AmountDue + sum.TaxAmount - sum.PaidAmount

	return sum
}
