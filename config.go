package solcgt

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Settings is the YAML-backed configuration of a run.
type Settings struct {
	// Wallets is the tracked wallet set.
	Wallets []string `yaml:"wallets"`
	// Method selects the cost-basis method (fifo, lifo, hifo, specific).
	Method string `yaml:"method"`
	// FeePolicy selects where pure-acquisition fees land (on_lot, in_unit_cost).
	FeePolicy string `yaml:"fee_policy"`
	// LongTermDays overrides the long-term holding threshold.
	LongTermDays int `yaml:"long_term_days"`
	// TransferWindowMinutes bounds unsigned self-transfer matching.
	TransferWindowMinutes int `yaml:"transfer_window_minutes"`
	// ExternalLotTracking matches returning transfers against the external bucket.
	ExternalLotTracking bool `yaml:"external_lot_tracking"`
	// StrictLots aborts on basis shortfalls instead of synthesizing lots.
	StrictLots bool `yaml:"strict_lots"`
	// SpecificLots maps disposal event ids to explicit lot plans.
	SpecificLots map[string][]SpecificEntry `yaml:"specific_lots"`
	// Prices is the static AUD price table for the provider.
	Prices []PriceEntry `yaml:"prices"`
}

// SpecificEntry is one step of a Specific-ID plan in configuration form.
type SpecificEntry struct {
	LotID string `yaml:"lot_id"`
	Qty   string `yaml:"qty"`
}

// PriceEntry is one static price point. Date is optional; a dateless entry
// applies to every timestamp.
type PriceEntry struct {
	Mint string `yaml:"mint"`
	Date string `yaml:"date"` // yyyy-mm-dd
	AUD  string `yaml:"aud"`
}

// LoadSettings reads and validates a YAML settings file.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading settings %q: %w", path, err)
	}
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing settings %q: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("settings %q: %w", path, err)
	}
	return &s, nil
}

// Validate checks the cross-field consistency of the settings.
func (s *Settings) Validate() error {
	if s.Method != "" {
		if _, err := ParseMethod(s.Method); err != nil {
			return err
		}
	}
	if _, err := ParseFeePolicy(s.FeePolicy); err != nil {
		return err
	}
	if s.LongTermDays < 0 {
		return fmt.Errorf("long_term_days must not be negative: %d", s.LongTermDays)
	}
	if s.TransferWindowMinutes < 0 {
		return fmt.Errorf("transfer_window_minutes must not be negative: %d", s.TransferWindowMinutes)
	}
	for eventID, plan := range s.SpecificLots {
		for i, step := range plan {
			if step.LotID == "" {
				return fmt.Errorf("specific_lots[%s][%d]: missing lot_id", eventID, i)
			}
			if _, err := parsePositive(step.Qty); err != nil {
				return fmt.Errorf("specific_lots[%s][%d]: %w", eventID, i, err)
			}
		}
	}
	for i, price := range s.Prices {
		if price.Mint == "" {
			return fmt.Errorf("prices[%d]: missing mint", i)
		}
		if _, err := parsePositive(price.AUD); err != nil {
			return fmt.Errorf("prices[%d] (%s): %w", i, price.Mint, err)
		}
		if price.Date != "" {
			if _, err := time.Parse("2006-01-02", price.Date); err != nil {
				return fmt.Errorf("prices[%d] (%s): invalid date %q", i, price.Mint, price.Date)
			}
		}
	}
	return nil
}

// EngineMethod returns the configured method, FIFO by default.
func (s *Settings) EngineMethod() Method {
	if s.Method == "" {
		return FIFO
	}
	m, _ := ParseMethod(s.Method)
	return m
}

// TransferWindow returns the configured window, the default when unset.
func (s *Settings) TransferWindow() time.Duration {
	if s.TransferWindowMinutes == 0 {
		return DefaultTransferWindow
	}
	return time.Duration(s.TransferWindowMinutes) * time.Minute
}

// SpecificPlans converts the configured plans into engine form.
func (s *Settings) SpecificPlans() (SpecificLots, error) {
	if len(s.SpecificLots) == 0 {
		return nil, nil
	}
	plans := make(SpecificLots, len(s.SpecificLots))
	for eventID, entries := range s.SpecificLots {
		plan := make(SpecificPlan, 0, len(entries))
		for i, entry := range entries {
			qty, err := parsePositive(entry.Qty)
			if err != nil {
				return nil, fmt.Errorf("specific_lots[%s][%d]: %w", eventID, i, err)
			}
			plan = append(plan, LotPortion{LotID: entry.LotID, Qty: Q(qty)})
		}
		plans[eventID] = plan
	}
	return plans, nil
}

// PriceProvider builds the static provider from the configured price table.
func (s *Settings) PriceProvider() (*StaticPriceProvider, error) {
	provider := NewStaticPriceProvider(nil)
	for i, entry := range s.Prices {
		aud, err := parsePositive(entry.AUD)
		if err != nil {
			return nil, fmt.Errorf("prices[%d] (%s): %w", i, entry.Mint, err)
		}
		if entry.Date == "" {
			provider.flat[entry.Mint] = AUD(aud)
			continue
		}
		day, err := time.Parse("2006-01-02", entry.Date)
		if err != nil {
			return nil, fmt.Errorf("prices[%d] (%s): invalid date %q", i, entry.Mint, entry.Date)
		}
		provider.Set(entry.Mint, day, AUD(aud))
	}
	return provider, nil
}

func parsePositive(value string) (string, error) {
	if value == "" {
		return "", fmt.Errorf("missing numeric value")
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return "", fmt.Errorf("invalid numeric value %q: %w", value, err)
	}
	if !d.IsPositive() {
		return "", fmt.Errorf("value must be positive: %q", value)
	}
	return value, nil
}
