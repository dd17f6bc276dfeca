// Package taxtable maps jurisdiction codes to display names and VAT rates.
package taxtable

import "strings"

// Entry is a single jurisdiction with its standard VAT rate in whole percent.
type Entry struct {
	Code string `json:"code" mapstructure:"code"`
	Name string `json:"name" mapstructure:"name"`
	Rate int    `json:"rate" mapstructure:"rate"`
}

// Table is an immutable jurisdiction lookup. The zero value is an empty table.
type Table struct {
	entries []Entry
	byCode  map[string]Entry
}

// New builds a Table from entries. Codes are normalized to upper case; a later
// duplicate replaces an earlier one.
func New(entries []Entry) Table {
	t := Table{
		entries: make([]Entry, 0, len(entries)),
		byCode:  make(map[string]Entry, len(entries)),
	}
	for _, e := range entries {
		e.Code = strings.ToUpper(strings.TrimSpace(e.Code))
		if e.Code == "" {
			continue
		}
		if _, seen := t.byCode[e.Code]; !seen {
			t.entries = append(t.entries, e)
		} else {
			for i := range t.entries {
				if t.entries[i].Code == e.Code {
					t.entries[i] = e
					break
				}
			}
		}
		t.byCode[e.Code] = e
	}
	return t
}

// Lookup returns the entry for a jurisdiction code, case-insensitively.
func (t Table) Lookup(code string) (Entry, bool) {
	e, ok := t.byCode[strings.ToUpper(strings.TrimSpace(code))]
	return e, ok
}

// RateFor returns the VAT rate for a code, or 0 when the code is unknown.
func (t Table) RateFor(code string) int {
	e, ok := t.Lookup(code)
	if !ok {
		return 0
	}
	return e.Rate
}

// NameFor returns the display name for a code. Unknown codes echo the input
// so callers always have something printable.
func (t Table) NameFor(code string) string {
	e, ok := t.Lookup(code)
	if !ok {
		return code
	}
	return e.Name
}

// IsTaxRelevant reports whether the code is present in the table.
func (t Table) IsTaxRelevant(code string) bool {
	_, ok := t.Lookup(code)
	return ok
}

// Entries returns the table contents in declaration order.
func (t Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Default returns the standard EU VAT table.
func Default() Table {
	return New(defaultEntries)
}

var defaultEntries = []Entry{
	{Code: "AT", Name: "Austria", Rate: 20},
	{Code: "BE", Name: "Belgium", Rate: 21},
	{Code: "BG", Name: "Bulgaria", Rate: 20},
	{Code: "HR", Name: "Croatia", Rate: 25},
	{Code: "CY", Name: "Cyprus", Rate: 19},
	{Code: "CZ", Name: "Czech Republic", Rate: 21},
	{Code: "DK", Name: "Denmark", Rate: 25},
	{Code: "EE", Name: "Estonia", Rate: 20},
	{Code: "FI", Name: "Finland", Rate: 24},
	{Code: "FR", Name: "France", Rate: 20},
	{Code: "DE", Name: "Germany", Rate: 19},
	{Code: "GR", Name: "Greece", Rate: 24},
	{Code: "HU", Name: "Hungary", Rate: 27},
	{Code: "IE", Name: "Ireland", Rate: 23},
	{Code: "IT", Name: "Italy", Rate: 22},
	{Code: "LV", Name: "Latvia", Rate: 21},
	{Code: "LT", Name: "Lithuania", Rate: 21},
	{Code: "LU", Name: "Luxembourg", Rate: 17},
	{Code: "MT", Name: "Malta", Rate: 18},
	{Code: "NL", Name: "Netherlands", Rate: 21},
	{Code: "PL", Name: "Poland", Rate: 23},
	{Code: "PT", Name: "Portugal", Rate: 23},
	{Code: "RO", Name: "Romania", Rate: 19},
	{Code: "SK", Name: "Slovakia", Rate: 20},
	{Code: "SI", Name: "Slovenia", Rate: 22},
	{Code: "ES", Name: "Spain", Rate: 21},
	{Code: "SE", Name: "Sweden", Rate: 25},
}
