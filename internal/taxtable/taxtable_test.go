package taxtable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTableEntries(t *testing.T) {
	table := Default()
	entries := table.Entries()
	require.Len(t, entries, 27)

	for _, e := range entries {
		assert.NotEmpty(t, e.Code, "entry code")
		assert.NotEmpty(t, e.Name, "name for %s", e.Code)
		assert.GreaterOrEqual(t, e.Rate, 0, "rate for %s", e.Code)
		assert.LessOrEqual(t, e.Rate, 100, "rate for %s", e.Code)
	}
}

func TestLookupKnownRates(t *testing.T) {
	table := Default()

	assert.Equal(t, 19, table.RateFor("DE"))
	assert.Equal(t, 20, table.RateFor("AT"))
	assert.Equal(t, 27, table.RateFor("HU"))
	assert.Equal(t, 25, table.RateFor("SE"))

	assert.Equal(t, "Germany", table.NameFor("DE"))
}

func TestLookupCaseInsensitive(t *testing.T) {
	table := Default()

	entry, ok := table.Lookup("de")
	require.True(t, ok)
	assert.Equal(t, "DE", entry.Code)
	assert.Equal(t, 19, entry.Rate)

	assert.Equal(t, 19, table.RateFor("De"))
	assert.True(t, table.IsTaxRelevant("fr"))
}

func TestLookupUnknownJurisdiction(t *testing.T) {
	table := Default()

	_, ok := table.Lookup("US")
	assert.False(t, ok)
	assert.Equal(t, 0, table.RateFor("US"))
	assert.False(t, table.IsTaxRelevant("US"))
	// Unknown codes echo back for display.
	assert.Equal(t, "US", table.NameFor("US"))
	assert.Equal(t, "XX", table.NameFor("XX"))
}

func TestNewLaterDuplicateWins(t *testing.T) {
	table := New([]Entry{
		{Code: "DE", Name: "Germany", Rate: 19},
		{Code: "de", Name: "Germany", Rate: 21},
	})

	require.Len(t, table.Entries(), 1)
	assert.Equal(t, 21, table.RateFor("DE"))
}
