package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/devroom/checkout/internal/taxtable"
)

// TaxRateHolder serves the active jurisdiction tax table. Rates default to the
// built-in EU table and can be overridden from checkout.yml; the file is
// watched so rate changes apply without a restart.
type TaxRateHolder struct {
	current atomic.Value // holds taxtable.Table
}

func NewTaxRateHolder() (*TaxRateHolder, error) {
	v := viper.New()

	v.SetConfigName("checkout")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/devroom")
	v.AddConfigPath(".")

	v.SetEnvPrefix("CHECKOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	holder := &TaxRateHolder{}
	holder.current.Store(taxtable.Default())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		return holder, nil
	}

	table, err := loadTaxTable(v)
	if err != nil {
		return nil, err
	}
	holder.current.Store(table)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		updated, err := loadTaxTable(v)
		if err != nil {
			log.Printf("[tax-config] reload failed: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[tax-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticTaxRateHolder serves a fixed table with no file watching.
func NewStaticTaxRateHolder(table taxtable.Table) *TaxRateHolder {
	holder := &TaxRateHolder{}
	holder.current.Store(table)
	return holder
}

// Get returns the active table.
func (h *TaxRateHolder) Get() taxtable.Table {
	return h.current.Load().(taxtable.Table)
}

func loadTaxTable(v *viper.Viper) (taxtable.Table, error) {
	if !v.IsSet("tax.rates") {
		return taxtable.Default(), nil
	}

	var overrides []taxtable.Entry
	if err := v.UnmarshalKey("tax.rates", &overrides); err != nil {
		return taxtable.Table{}, err
	}
	if err := validateTaxEntries(overrides); err != nil {
		return taxtable.Table{}, err
	}

	// Overrides replace matching codes and may add new jurisdictions.
	return taxtable.New(append(taxtable.Default().Entries(), overrides...)), nil
}

func validateTaxEntries(entries []taxtable.Entry) error {
	for _, e := range entries {
		if strings.TrimSpace(e.Code) == "" {
			return errors.New("tax.rates entry missing code")
		}
		if e.Rate < 0 || e.Rate > 100 {
			return errors.New("tax.rates rate out of range for " + e.Code)
		}
	}
	return nil
}
