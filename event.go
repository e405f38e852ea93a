package solcgt

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// EventKind is the economic classification attached by normalization.
type EventKind string

const (
	KindSwap            EventKind = "swap"
	KindSell            EventKind = "sell"
	KindBuy             EventKind = "buy"
	KindTransferIn      EventKind = "transfer_in"
	KindTransferOut     EventKind = "transfer_out"
	KindAirdrop         EventKind = "airdrop"
	KindMint            EventKind = "mint"
	KindBurn            EventKind = "burn"
	KindWrap            EventKind = "wrap"
	KindUnwrap          EventKind = "unwrap"
	KindLiquidityAdd    EventKind = "liquidity_add"
	KindLiquidityRemove EventKind = "liquidity_remove"
	KindUnknown         EventKind = "unknown"
)

// TokenAmount is an SPL token amount in its smallest unit. The decimal
// quantity is always derived from AmountRaw and Decimals, never stored.
type TokenAmount struct {
	Mint      string
	Symbol    string // optional display name
	Decimals  int32
	AmountRaw int64
}

// Amount returns the quantity in whole-token units.
func (t TokenAmount) Amount() Quantity {
	return Quantity{value: decimal.New(t.AmountRaw, -t.Decimals)}
}

// Tags is the set of engine-applied classifications on an event.
type Tags map[string]struct{}

const (
	// TagSelfTransfer marks both legs of a reconciled self-transfer.
	TagSelfTransfer = "self_transfer"
	// TagUnpriced marks an event whose value could not be resolved.
	TagUnpriced = "unpriced"
)

func (t Tags) Add(tag string) { t[tag] = struct{}{} }

func (t Tags) Has(tag string) bool {
	_, ok := t[tag]
	return ok
}

// Raw is the structured side-channel attached to an event by normalization
// and enriched by upstream valuation. It replaces the untyped dict of the
// raw chain payload with named optional fields; pointer fields are absent
// when nil.
type Raw struct {
	Signature string

	// Explicit valuations, highest priority.
	ProceedsAUD *Money
	CostAUD     *Money

	// Hints left by the valuation stage.
	ProceedsHintAUD *Money
	ProceedsHintUSD *decimal.Decimal
	CostHintAUD     *Money
	CostHintUSD     *decimal.Decimal
	FXRateUSDAUD    *decimal.Decimal

	// Per-mint price overrides the provider may consult.
	PriceAUD map[string]Money

	// Markers recorded by normalization.
	SwapHintMissingPrices bool
	DefaultDecimalsMints  []string

	// Engine write-backs.
	FeeAUD   *Money
	Unpriced bool
}

// NormalizedEvent is one economic action for one wallet at one instant.
// Events are created once by normalization and owned by the engine for the
// duration of Process; the engine mutates them only to record fee and
// unpriced annotations and tags.
type NormalizedEvent struct {
	ID           string
	TS           time.Time
	Kind         EventKind
	BaseToken    *TokenAmount // asset leaving the wallet
	QuoteToken   *TokenAmount // asset entering the wallet
	FeeSOL       decimal.Decimal
	Wallet       string
	Counterparty string // best-effort address of the other side
	Raw          Raw
	Tags         Tags
}

// Signature returns the transaction signature, falling back to the event id
// when normalization recorded none.
func (ev *NormalizedEvent) Signature() string {
	if ev.Raw.Signature != "" {
		return ev.Raw.Signature
	}
	return ev.ID
}

// sortEvents returns a chronologically sorted copy, id as the tie-break so
// same-timestamp events keep a deterministic order.
func sortEvents(events []*NormalizedEvent) []*NormalizedEvent {
	sorted := make([]*NormalizedEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool { return eventBefore(sorted[i], sorted[j]) })
	return sorted
}

func eventBefore(a, b *NormalizedEvent) bool {
	if !a.TS.Equal(b.TS) {
		return a.TS.Before(b.TS)
	}
	return a.ID < b.ID
}
