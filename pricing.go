package solcgt

import (
	"time"

	"github.com/shopspring/decimal"
)

// SOLMint is the pseudo-mint the engine prices network fees against.
const SOLMint = "SOL"

// PriceProvider resolves the AUD spot price of a mint at a timestamp. The
// hints argument carries the event's raw side-channel, which the provider
// may consult before its own lookup. A missing price is reported with
// ok=false, never an error: failing is reserved for provider-level faults.
type PriceProvider interface {
	PriceAUD(mint string, ts time.Time, hints *Raw) (Money, bool)
}

// FXRateFunc resolves a USD→AUD rate for a timestamp.
type FXRateFunc func(ts time.Time) (decimal.Decimal, bool)

// StaticPriceProvider resolves prices from event hints first, then from a
// fixed per-mint, per-day table. It is deterministic and side-effect free,
// which keeps Process re-runnable byte for byte.
type StaticPriceProvider struct {
	prices map[string]Money // keyed mint|yyyy-mm-dd
	flat   map[string]Money // keyed mint, date-independent fallback
}

// NewStaticPriceProvider creates a provider with date-independent overrides.
func NewStaticPriceProvider(overrides map[string]Money) *StaticPriceProvider {
	flat := make(map[string]Money, len(overrides))
	for mint, price := range overrides {
		flat[mint] = price
	}
	return &StaticPriceProvider{prices: make(map[string]Money), flat: flat}
}

// Set registers the price of mint for the UTC day of ts.
func (p *StaticPriceProvider) Set(mint string, ts time.Time, price Money) {
	p.prices[priceKey(mint, ts)] = price
}

func priceKey(mint string, ts time.Time) string {
	return mint + "|" + ts.UTC().Format("2006-01-02")
}

func (p *StaticPriceProvider) PriceAUD(mint string, ts time.Time, hints *Raw) (Money, bool) {
	if hints != nil {
		if price, ok := hints.PriceAUD[mint]; ok {
			return price, true
		}
	}
	if price, ok := p.prices[priceKey(mint, ts)]; ok {
		return price, true
	}
	price, ok := p.flat[mint]
	return price, ok
}
