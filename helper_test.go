package solcgt

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// day returns a timestamp n days after the test epoch.
func day(n int) time.Time {
	return time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

// tok builds a nine-decimal token amount from a human-readable quantity.
func tok(mint, amount string) *TokenAmount {
	raw := decimal.RequireFromString(amount).Shift(9).IntPart()
	return &TokenAmount{Mint: mint, Symbol: mint, Decimals: 9, AmountRaw: raw}
}

func newTestEvent(id string, ts time.Time, kind EventKind, wallet string) *NormalizedEvent {
	return &NormalizedEvent{
		ID:     id,
		TS:     ts,
		Kind:   kind,
		Wallet: wallet,
		Raw:    Raw{Signature: "sig-" + id},
		Tags:   Tags{},
	}
}

func buyEvent(id string, ts time.Time, wallet, mint, qty, costAUD string) *NormalizedEvent {
	ev := newTestEvent(id, ts, KindBuy, wallet)
	ev.QuoteToken = tok(mint, qty)
	cost := AUD(costAUD)
	ev.Raw.CostAUD = &cost
	return ev
}

func sellEvent(id string, ts time.Time, wallet, mint, qty, proceedsAUD string) *NormalizedEvent {
	ev := newTestEvent(id, ts, KindSell, wallet)
	ev.BaseToken = tok(mint, qty)
	proceeds := AUD(proceedsAUD)
	ev.Raw.ProceedsAUD = &proceeds
	return ev
}

func transferOutEvent(id string, ts time.Time, wallet, counterparty, mint, qty string) *NormalizedEvent {
	ev := newTestEvent(id, ts, KindTransferOut, wallet)
	ev.BaseToken = tok(mint, qty)
	ev.Counterparty = counterparty
	return ev
}

func transferInEvent(id string, ts time.Time, wallet, counterparty, mint, qty string) *NormalizedEvent {
	ev := newTestEvent(id, ts, KindTransferIn, wallet)
	ev.QuoteToken = tok(mint, qty)
	ev.Counterparty = counterparty
	return ev
}

// withFee attaches an already-priced network fee to the event.
func withFee(ev *NormalizedEvent, feeAUD string) *NormalizedEvent {
	fee := AUD(feeAUD)
	ev.Raw.FeeAUD = &fee
	ev.FeeSOL = decimal.RequireFromString("0.000005")
	return ev
}

func makeLot(id string, ts time.Time, wallet, mint, qty, unitCost string) *AcquisitionLot {
	return &AcquisitionLot{
		LotID:        id,
		Wallet:       wallet,
		TS:           ts,
		TokenMint:    mint,
		TokenSymbol:  mint,
		QtyAcquired:  Q(qty),
		UnitCostAUD:  AUD(unitCost),
		RemainingQty: Q(qty),
	}
}

func newTestEngine(method Method) *Engine {
	provider := NewStaticPriceProvider(map[string]Money{SOLMint: AUD(100)})
	return NewEngine(method, provider)
}

func assertMoney(t *testing.T, label string, got Money, want string) {
	t.Helper()
	if !got.Equal(AUD(want)) {
		t.Errorf("%s = %s, want %s", label, got.Decimal(), want)
	}
}

func assertQty(t *testing.T, label string, got Quantity, want string) {
	t.Helper()
	if !got.Equal(Q(want)) {
		t.Errorf("%s = %s, want %s", label, got, want)
	}
}

func hasWarning(res *Result, code string) bool {
	for _, w := range res.Warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}
