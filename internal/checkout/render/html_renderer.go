// Package render produces the server-rendered checkout page.
package render

import (
	"bytes"
	"html/template"

	"github.com/devroom/checkout/internal/checkout/domain"
	"github.com/devroom/checkout/internal/taxtable"
)

const checkoutHTMLTemplate = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>{{.Title}}</title>
  <style>
    body {
      margin: 0;
      padding: 32px 16px;
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
      color: #1a1f36;
      background: #f7f9fc;
    }
    .page { max-width: 860px; margin: 0 auto; }
    h1 { text-align: center; font-size: 26px; margin-bottom: 28px; }
    .columns { display: grid; grid-template-columns: 1fr 1fr; gap: 24px; }
    @media (max-width: 720px) { .columns { grid-template-columns: 1fr; } }
    .card {
      background: #ffffff;
      border-radius: 8px;
      padding: 20px 24px;
      margin-bottom: 24px;
      box-shadow: 0 2px 5px rgba(0,0,0,0.04);
    }
    .card h2 { font-size: 18px; margin-top: 0; }
    .muted { color: #6b7280; }
    .row { display: flex; justify-content: space-between; margin: 10px 0; }
    .row.total { border-top: 1px solid #e5e7eb; padding-top: 14px; font-weight: 600; }
    .credit { color: #059669; }
    .badge { font-size: 12px; border-radius: 999px; padding: 2px 10px; }
    .badge.paid { background: #d1fae5; color: #065f46; }
    .badge.unpaid { background: #fef3c7; color: #92400e; }
    .invoice-line {
      display: flex; justify-content: space-between; align-items: center;
      background: #f9fafb; border-radius: 6px; padding: 10px 12px; margin: 8px 0;
    }
    .notice { border-radius: 6px; padding: 10px 14px; margin-bottom: 12px; }
    .notice.info { background: #e0f2fe; color: #075985; }
    .notice.success { background: #d1fae5; color: #065f46; }
    .notice.error { background: #fee2e2; color: #991b1b; }
    .field { margin: 12px 0; }
    .field label { display: block; font-size: 14px; margin-bottom: 4px; }
    .field input, .field select {
      width: 100%; box-sizing: border-box; padding: 8px 10px;
      border: 1px solid #d1d5db; border-radius: 6px; font-size: 14px;
    }
    .field .error { color: #dc2626; font-size: 13px; margin-top: 4px; }
    .business-card { border: 1px solid #ffd35f; }
    button {
      width: 100%; padding: 12px; border: 0; border-radius: 6px;
      background: #1a56db; color: #ffffff; font-size: 15px; cursor: pointer;
    }
    button[disabled] { opacity: 0.5; cursor: not-allowed; }
    button.link {
      width: auto; background: none; color: #1d4ed8; padding: 0; font-size: 14px;
    }
    .all-paid { text-align: center; color: #059669; margin-top: 14px; }
    .error-page { max-width: 420px; margin: 64px auto; text-align: center; }
  </style>
</head>
<body>
  <div class="page">
    {{- range .Session.Notices }}
    <div class="notice {{.Level}}">{{.Message}}</div>
    {{- end }}

    {{- if eq .Session.State "error" }}
    <div class="error-page card">
      <h1>Something went wrong</h1>
      <p class="muted">{{.Session.ErrorMessage}}</p>
      <form method="get" action="/checkout/{{.Session.PaymentID}}">
        <button type="submit">Try Again</button>
      </form>
    </div>
    {{- else }}
    {{- $record := .Session.Record }}
    <h1>Complete Your Payment</h1>
    <div class="columns">
      <div>
        <div class="card">
          <h2>Payment Details</h2>
          <p class="muted">{{$record.PaymentDescription}}</p>
          {{- if $record.Invoices }}
          {{- range $record.Invoices }}
          <div class="invoice-line">
            <span>{{.InvoiceID}}
              {{- if .Paid }} <span class="badge paid">Paid</span>
              {{- else }} <span class="badge unpaid">Unpaid</span>{{- end }}
            </span>
            <span>{{money .Amount $record.PaymentCurrency}}</span>
          </div>
          {{- end }}
          {{- end }}
        </div>

        {{- if .Session.FormVisible }}
        <div class="card business-card">
          <form method="post" action="/checkout/{{.Session.PaymentID}}/form/toggle">
            <button class="link" type="submit">
              {{- if eq .Session.Form "collapsed" }}Are you registered for VAT?{{- else }}Hide VAT registration details{{- end }}
            </button>
          </form>
          {{- if ne .Session.Form "collapsed" }}
          <form method="post" action="/checkout/{{.Session.PaymentID}}/business">
            <div class="field">
              <label for="name">Entity Name</label>
              <input id="name" name="name" value="{{.Session.Draft.Name}}" />
              {{- with fieldError .Session "name" }}<p class="error">{{.}}</p>{{- end }}
            </div>
            <div class="field">
              <label for="country">Country</label>
              <select id="country" name="country">
                <option value="">Select country</option>
                {{- range .Countries }}
                <option value="{{.Code}}"{{if eq .Code $.Session.Draft.Country}} selected{{end}}>{{.Name}}</option>
                {{- end }}
              </select>
              {{- with fieldError .Session "country" }}<p class="error">{{.}}</p>{{- end }}
            </div>
            <div class="field">
              <label for="address">Address</label>
              <input id="address" name="address" value="{{.Session.Draft.Address}}" />
              {{- with fieldError .Session "address" }}<p class="error">{{.}}</p>{{- end }}
            </div>
            <div class="field">
              <label for="city">City</label>
              <input id="city" name="city" value="{{.Session.Draft.City}}" />
              {{- with fieldError .Session "city" }}<p class="error">{{.}}</p>{{- end }}
            </div>
            <div class="field">
              <label for="postalCode">Postal Code</label>
              <input id="postalCode" name="postalCode" value="{{.Session.Draft.PostalCode}}" />
              {{- with fieldError .Session "postalCode" }}<p class="error">{{.}}</p>{{- end }}
            </div>
            <div class="field">
              <label for="vatId">VAT ID</label>
              <input id="vatId" name="vatId" value="{{.Session.Draft.VATID}}" />
              {{- with fieldError .Session "vatId" }}<p class="error">{{.}}</p>{{- end }}
            </div>
            <button type="submit"{{if eq .Session.Form "submitting"}} disabled{{end}}>
              {{- if eq .Session.Form "submitting" }}Saving...{{- else }}Save Business Details{{- end }}
            </button>
          </form>
          {{- end }}
        </div>
        {{- end }}

        {{- with $record.Business }}
        <div class="card business-card">
          <h2>Business Details</h2>
          <div class="muted">
            <p>{{.Name}}</p>
            <p>{{.Address}}</p>
            <p>{{.City}}, {{.PostalCode}}</p>
            <p>{{.Country}}</p>
            <p>VAT ID: {{.ID}}</p>
          </div>
        </div>
        {{- end }}
      </div>

      <div>
        {{- with .Summary }}
        <div class="card">
          <h2>Payment Summary</h2>
          <div class="row"><span class="muted">Total Amount:</span><span>{{money .TotalAmount .Currency}}</span></div>
          {{- if gt .PaidAmount 0.0 }}
          <div class="row"><span class="muted">Already Paid:</span><span class="credit">-{{money .PaidAmount .Currency}}</span></div>
          {{- end }}
          {{- if gt .CreditAmount 0.0 }}
          <div class="row"><span class="muted">Credit Applied:</span><span class="credit">-{{money .CreditAmount .Currency}}</span></div>
          {{- end }}
          {{- if gt .BalanceAmount 0.0 }}
          <div class="row"><span class="muted">Balance Applied:</span><span class="credit">-{{money .BalanceAmount .Currency}}</span></div>
          {{- end }}
          {{- if .TaxApplies }}
          <div class="row">
            <span class="muted" title="{{if .ServerAsserted}}VAT is being applied based on your business location.{{else}}VAT applies because your location was detected as {{.TaxCountryName}}. If you believe this is a mistake, please contact support.{{end}}">VAT ({{.TaxRate}}%):</span>
            <span>{{money .TaxAmount .Currency}}</span>
          </div>
          {{- end }}
          <div class="row total"><span>Amount Due:</span><span>{{money .AmountDue .Currency}}</span></div>
        </div>
        {{- end }}

        <div class="card">
          <h2>Payment Options</h2>
          {{- range $record.Invoices }}
          {{- if not .Paid }}
          <form method="post" action="/checkout/{{$.Session.PaymentID}}/invoices/{{.InvoiceID}}/pay">
            <button type="submit">Pay {{.InvoiceID}}</button>
          </form>
          {{- end }}
          {{- end }}
          {{- if allPaid $record }}
          <div class="all-paid">All invoices have been paid. Thank you!</div>
          {{- end }}
        </div>
      </div>
    </div>
    {{- end }}
  </div>
</body>
</html>
`

// PageInput is the data the checkout template renders.
type PageInput struct {
	Title     string
	Session   *domain.Session
	Summary   *domain.Summary
	Countries []taxtable.Entry
}

type Renderer interface {
	RenderPage(input PageInput) (string, error)
}

type HTMLRenderer struct {
	tpl *template.Template
}

func NewRenderer() Renderer {
	funcs := template.FuncMap{
		"money":      FormatCurrency,
		"fieldError": fieldError,
		"allPaid":    allPaid,
	}
	return &HTMLRenderer{
		tpl: template.Must(template.New("checkout").Funcs(funcs).Parse(checkoutHTMLTemplate)),
	}
}

func (r *HTMLRenderer) RenderPage(input PageInput) (string, error) {
	if input.Title == "" {
		input.Title = "DevRoom Payment Checkout"
	}

	var buf bytes.Buffer
	if err := r.tpl.Execute(&buf, input); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func fieldError(s *domain.Session, field string) string {
	if s == nil {
		return ""
	}
	return s.FieldErrors[field]
}

func allPaid(r *domain.PaymentRecord) bool {
	if r == nil {
		return false
	}
	return r.AllPaid()
}
