package solcgt

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultLongTermDays is the holding period at which a disposal is flagged
// long term.
const DefaultLongTermDays = 365

// externalBucketPrefix namespaces the synthetic wallets that hold lots after
// they leave the tracked set.
const externalBucketPrefix = "__external__"

// externalBucket returns the synthetic wallet identity that parks lots sent
// to the given counterparty.
func externalBucket(counterparty string) string {
	if counterparty == "" {
		return externalBucketPrefix
	}
	return externalBucketPrefix + ":" + counterparty
}

// Engine transforms normalized events into acquisitions, disposals, lot
// moves and warnings. One engine owns one lot ledger; it is single-threaded
// and deterministic for a fixed event list, match set and price provider.
// Concurrent processing requires one engine per goroutine.
type Engine struct {
	Method       Method
	Provider     PriceProvider
	FXRate       FXRateFunc   // optional USD→AUD fallback for USD hints
	Specific     SpecificLots // plans for the Specific method
	LongTermDays int          // 0 means DefaultLongTermDays
	FeePolicy    FeePolicy

	ledger *LotLedger
}

// NewEngine creates an engine with an empty ledger.
func NewEngine(method Method, provider PriceProvider) *Engine {
	return &Engine{Method: method, Provider: provider, ledger: NewLotLedger()}
}

// Ledger exposes the engine's lot ledger, mainly for inspecting remaining
// quantities after a pass.
func (e *Engine) Ledger() *LotLedger {
	if e.ledger == nil {
		e.ledger = NewLotLedger()
	}
	return e.ledger
}

// ProcessOptions configure one Process pass.
type ProcessOptions struct {
	// Wallets is the tracked set; empty means every wallet seen is tracked.
	Wallets []string
	// Matches are the reconciled self-transfers from DetectSelfTransfers.
	Matches []TransferMatch
	// ExternalLotTracking matches returning transfers against the external
	// bucket instead of treating them as fresh acquisitions.
	ExternalLotTracking bool
	// StrictLots aborts on any basis shortfall instead of minting a
	// synthetic zero-cost lot.
	StrictLots bool
	// MissingLots, when non-nil, receives every shortfall as it occurs,
	// including recovered ones.
	MissingLots *[]MissingLotIssue
}

// Process performs one chronological pass over events. It returns the result
// bundle; under StrictLots an unrecovered shortfall aborts with a
// *LotSelectionError whose Partial field carries everything produced before
// the failure (the returned Result is the same bundle).
func (e *Engine) Process(events []*NormalizedEvent, opts ProcessOptions) (*Result, error) {
	p := &pass{
		engine:  e,
		ledger:  e.Ledger(),
		opts:    opts,
		res:     &Result{},
		tracked: make(map[string]struct{}, len(opts.Wallets)),
		inSide:  make(map[string]struct{}, len(opts.Matches)),
		outSide: make(map[string]*TransferMatch, len(opts.Matches)),
		warned:  make(map[string]struct{}),
	}
	for _, w := range opts.Wallets {
		p.tracked[w] = struct{}{}
	}
	for i := range opts.Matches {
		m := &opts.Matches[i]
		p.outSide[m.Out.ID] = m
		p.inSide[m.In.ID] = struct{}{}
	}

	for _, ev := range sortEvents(events) {
		if err := p.handle(ev); err != nil {
			var lerr *LotSelectionError
			if errors.As(err, &lerr) {
				lerr.Partial = p.res
			}
			return p.res, err
		}
	}
	return p.res, nil
}

// pass is the state of one Process call.
type pass struct {
	engine  *Engine
	ledger  *LotLedger
	opts    ProcessOptions
	res     *Result
	tracked map[string]struct{}
	inSide  map[string]struct{}       // event ids matched as the receiving leg
	outSide map[string]*TransferMatch // event ids matched as the sending leg
	warned  map[string]struct{}
}

// handle classifies one event and routes it. Classification priority:
// matched-in skip, matched-out lot move, untracked transfer out, untracked
// transfer in, then general disposal/acquisition handling. Normalization
// markers surface as warnings on the way through.
func (p *pass) handle(ev *NormalizedEvent) error {
	if _, ok := p.inSide[ev.ID]; ok {
		return nil // handled with its paired out leg
	}
	if m, ok := p.outSide[ev.ID]; ok {
		return p.selfTransferMove(m)
	}
	if ev.Kind == KindTransferOut && ev.BaseToken != nil {
		return p.externalOut(ev)
	}
	if ev.Kind == KindTransferIn && ev.QuoteToken != nil {
		return p.externalIn(ev)
	}
	if ev.Kind == KindSwap && ev.Raw.SwapHintMissingPrices {
		p.warn(ev, "", WarnSwapHintMissing, "swap valuation hints carry no usable prices")
	}
	for _, mint := range ev.Raw.DefaultDecimalsMints {
		p.warn(ev, mint, WarnDefaultDecimals, fmt.Sprintf("decimals unknown for mint %s, defaulted", mint))
	}
	return p.general(ev)
}

// general is the ordinary disposal/acquisition path.
func (p *pass) general(ev *NormalizedEvent) error {
	if ClassifyEvent(ev) == TreatIgnore {
		return nil
	}
	feeAUD := p.feeToAUD(ev)
	var proceeds *Money
	if ev.BaseToken != nil && ev.BaseToken.Amount().IsPositive() {
		resolved := p.resolveProceeds(ev)
		proceeds = &resolved
		if err := p.disposal(ev, resolved, feeAUD); err != nil {
			return err
		}
	}
	if ev.QuoteToken != nil && ev.QuoteToken.Amount().IsPositive() {
		p.acquisition(ev, proceeds, feeAUD)
	}
	return nil
}

// disposal allocates the base quantity against the wallet's lots and emits
// one record per consumed lot.
func (p *pass) disposal(ev *NormalizedEvent, proceeds, feeAUD Money) error {
	base := ev.BaseToken
	qty := base.Amount()
	takes, synthetic, err := p.allocate(ev, ev.Wallet, base.Mint, base.Symbol, qty, p.engine.Method)
	if err != nil {
		return err
	}
	feeShares := prorate(feeAUD, takes, qty)
	proceedsShares := prorate(proceeds, takes, qty)
	longTermDays := p.engine.LongTermDays
	if longTermDays == 0 {
		longTermDays = DefaultLongTermDays
	}
	for i, take := range takes {
		costBase := take.Lot.UnitCostAUD.Mul(take.Qty).Round().Add(drawLotFee(take.Lot, take.Qty))
		gain := proceedsShares[i].Sub(feeShares[i]).Sub(costBase).Round()
		held := holdingDays(take.Lot.TS, ev.TS)
		notes := "lot_id=" + take.Lot.LotID
		if synthetic {
			notes += ";" + noteUnreliableBasis
		}
		p.res.Disposals = append(p.res.Disposals, DisposalRecord{
			EventID:     ev.ID,
			Wallet:      ev.Wallet,
			TS:          ev.TS,
			TokenMint:   base.Mint,
			TokenSymbol: base.Symbol,
			QtyDisposed: take.Qty,
			ProceedsAUD: proceedsShares[i],
			CostBaseAUD: costBase,
			FeesAUD:     feeShares[i],
			GainLossAUD: gain,
			HeldDays:    held,
			LongTerm:    held >= longTermDays,
			Method:      p.engine.Method,
			Notes:       notes,
		})
		p.ledger.UpdateRemaining(take.Lot, take.Qty)
	}
	return nil
}

// acquisition creates a new lot for the quote token. proceeds, when the
// event is a swap, is the already-resolved value of the disposed side and
// doubles as the acquisition cost.
func (p *pass) acquisition(ev *NormalizedEvent, proceeds *Money, feeAUD Money) *AcquisitionLot {
	quote := ev.QuoteToken
	qty := quote.Amount()
	totalCost, priced := p.resolveCost(ev, proceeds)
	if !priced {
		p.markUnpriced(ev, quote.Mint)
	}

	lotFee := AUD(0)
	if ev.BaseToken == nil && !feeAUD.IsZero() {
		// A pure acquisition carries the event fee; one side of a swap does
		// not, the disposal side already accounted for it.
		if p.engine.FeePolicy == FeeInUnitCost {
			totalCost = totalCost.Add(feeAUD)
		} else {
			lotFee = feeAUD
		}
	}
	unitCost := AUD(0)
	if qty.IsPositive() {
		unitCost = totalCost.Div(qty).Round()
	}
	lot := &AcquisitionLot{
		LotID:        lotID(ev.ID, quote.Mint),
		Wallet:       ev.Wallet,
		TS:           ev.TS,
		TokenMint:    quote.Mint,
		TokenSymbol:  quote.Symbol,
		QtyAcquired:  qty,
		UnitCostAUD:  unitCost,
		FeesAUD:      lotFee,
		RemainingQty: qty,
		SourceEvent:  ev.ID,
		SourceType:   string(ev.Kind),
	}
	p.ledger.AddLot(lot)
	p.res.Acquisitions = append(p.res.Acquisitions, lot)
	return lot
}

// selfTransferMove re-homes the consumed lot portions to the receiving
// wallet, preserving acquisition date and unit cost.
func (p *pass) selfTransferMove(m *TransferMatch) error {
	out, in := m.Out, m.In
	base := out.BaseToken
	qty := base.Amount()
	takes, _, err := p.allocate(out, out.Wallet, base.Mint, base.Symbol, qty, FIFO)
	if err != nil {
		return err
	}
	p.moveLots(out, takes, qty, in.Wallet, SourceLotMove, base)
	return nil
}

// externalOut parks the consumed lots in the counterparty's external bucket.
// Transfers to third parties are not deemed taxable here; that judgment
// belongs to the caller's jurisdictional policy.
func (p *pass) externalOut(ev *NormalizedEvent) error {
	base := ev.BaseToken
	qty := base.Amount()
	takes, _, err := p.allocate(ev, ev.Wallet, base.Mint, base.Symbol, qty, FIFO)
	if err != nil {
		return err
	}
	bucket := externalBucket(ev.Counterparty)
	p.warn(ev, base.Mint, WarnExternalOut,
		fmt.Sprintf("transfer of %s %s to %s wallet %q parked in external bucket",
			qty, base.Mint, p.counterpartyKind(ev.Counterparty), ev.Counterparty))
	p.moveLots(ev, takes, qty, bucket, SourceExternalMove, base)
	return nil
}

// counterpartyKind distinguishes a transfer leg the reconciler should have
// paired (the counterparty is one of ours) from a genuinely external one, so
// the warning points at the right problem.
func (p *pass) counterpartyKind(wallet string) string {
	if _, ok := p.tracked[wallet]; ok {
		return "unreconciled tracked"
	}
	return "untracked"
}

// externalIn tries to match a transfer from outside the tracked set against
// lots previously parked in the external bucket; failing that it becomes a
// fresh acquisition at spot price.
func (p *pass) externalIn(ev *NormalizedEvent) error {
	quote := ev.QuoteToken
	qty := quote.Amount()
	if p.opts.ExternalLotTracking {
		bucket := externalBucket(ev.Counterparty)
		takes, err := Allocate(p.ledger.LotsFor(bucket, quote.Mint), qty, FIFO, nil, ev.ID)
		if err == nil {
			p.returnLots(ev, takes, qty, bucket, quote)
			return nil
		}
	}
	p.warn(ev, quote.Mint, WarnExternalIn,
		fmt.Sprintf("transfer of %s %s from %s wallet %q treated as acquisition",
			qty, quote.Mint, p.counterpartyKind(ev.Counterparty), ev.Counterparty))
	feeAUD := p.feeToAUD(ev)
	p.acquisition(ev, nil, feeAUD)
	return nil
}

// moveLots consumes takes from the source wallet and spawns matching lots
// owned by toWallet. Each new lot inherits the source lot's acquisition date
// and unit cost; its fee is the source lot's pro-rata fee draw plus its
// share of the transfer fee.
func (p *pass) moveLots(ev *NormalizedEvent, takes []LotTake, qty Quantity, toWallet, sourceType string, token *TokenAmount) {
	feeAUD := p.feeToAUD(ev)
	feeShares := prorate(feeAUD, takes, qty)
	rec := LotMoveRecord{
		Signature:  ev.Raw.Signature,
		EventID:    ev.ID,
		TS:         ev.TS,
		FromWallet: ev.Wallet,
		ToWallet:   toWallet,
		TokenMint:  token.Mint,
		Amount:     qty,
		FeeAUD:     feeAUD,
	}
	for i, take := range takes {
		lotFee := drawLotFee(take.Lot, take.Qty)
		symbol := take.Lot.TokenSymbol
		if symbol == "" {
			symbol = token.Symbol
		}
		moved := &AcquisitionLot{
			LotID:        moveLotID(ev.ID, token.Mint, i),
			Wallet:       toWallet,
			TS:           take.Lot.TS,
			TokenMint:    token.Mint,
			TokenSymbol:  symbol,
			QtyAcquired:  take.Qty,
			UnitCostAUD:  take.Lot.UnitCostAUD,
			FeesAUD:      lotFee.Add(feeShares[i]),
			RemainingQty: take.Qty,
			SourceEvent:  ev.ID,
			SourceType:   sourceType,
		}
		p.ledger.UpdateRemaining(take.Lot, take.Qty)
		p.ledger.AddLot(moved)
		p.res.Acquisitions = append(p.res.Acquisitions, moved)
		rec.Consumed = append(rec.Consumed, LotPortion{LotID: take.Lot.LotID, Qty: take.Qty})
		rec.Created = append(rec.Created, LotPortion{LotID: moved.LotID, Qty: take.Qty})
	}
	p.res.LotMoves = append(p.res.LotMoves, rec)
}

// returnLots brings parked lots back from the external bucket. Accumulated
// fees fold into the unit cost so the returned lot carries verified basis in
// a single figure.
func (p *pass) returnLots(ev *NormalizedEvent, takes []LotTake, qty Quantity, bucket string, token *TokenAmount) {
	feeAUD := p.feeToAUD(ev)
	feeShares := prorate(feeAUD, takes, qty)
	rec := LotMoveRecord{
		Signature:  ev.Raw.Signature,
		EventID:    ev.ID,
		TS:         ev.TS,
		FromWallet: bucket,
		ToWallet:   ev.Wallet,
		TokenMint:  token.Mint,
		Amount:     qty,
		FeeAUD:     feeAUD,
	}
	for i, take := range takes {
		lotFee := drawLotFee(take.Lot, take.Qty)
		totalCost := take.Lot.UnitCostAUD.Mul(take.Qty).Add(lotFee).Add(feeShares[i])
		unitCost := AUD(0)
		if take.Qty.IsPositive() {
			unitCost = totalCost.Div(take.Qty).Round()
		}
		symbol := take.Lot.TokenSymbol
		if symbol == "" {
			symbol = token.Symbol
		}
		returned := &AcquisitionLot{
			LotID:        moveLotID(ev.ID, token.Mint, i),
			Wallet:       ev.Wallet,
			TS:           take.Lot.TS,
			TokenMint:    token.Mint,
			TokenSymbol:  symbol,
			QtyAcquired:  take.Qty,
			UnitCostAUD:  unitCost,
			FeesAUD:      AUD(0),
			RemainingQty: take.Qty,
			SourceEvent:  ev.ID,
			SourceType:   SourceExternalBack,
		}
		p.ledger.UpdateRemaining(take.Lot, take.Qty)
		p.ledger.AddLot(returned)
		p.res.Acquisitions = append(p.res.Acquisitions, returned)
		rec.Consumed = append(rec.Consumed, LotPortion{LotID: take.Lot.LotID, Qty: take.Qty})
		rec.Created = append(rec.Created, LotPortion{LotID: returned.LotID, Qty: take.Qty})
	}
	p.res.LotMoves = append(p.res.LotMoves, rec)
}

// allocate runs the allocation strategy and applies the strict-vs-synthetic
// shortfall policy. The bool reports whether a synthetic lot covered part of
// the allocation.
func (p *pass) allocate(ev *NormalizedEvent, wallet, mint, symbol string, qty Quantity, method Method) ([]LotTake, bool, error) {
	takes, err := Allocate(p.ledger.LotsFor(wallet, mint), qty, method, p.engine.Specific, ev.ID)
	if err == nil {
		return takes, false, nil
	}
	var lerr *LotSelectionError
	if !errors.As(err, &lerr) || lerr.Issue == nil {
		// Plan errors are configuration mistakes, fatal regardless of mode.
		return nil, false, err
	}
	issue := lerr.Issue
	issue.Wallet = wallet
	issue.TokenMint = mint
	issue.TokenSymbol = symbol
	issue.TS = ev.TS
	issue.EventID = ev.ID
	if p.opts.MissingLots != nil {
		*p.opts.MissingLots = append(*p.opts.MissingLots, *issue)
	}
	if p.opts.StrictLots {
		return nil, false, lerr
	}
	// Lenient mode: mint a zero-cost lot covering the exact shortfall and
	// re-attempt. The resulting figures rest on an assumption, which the
	// warning and the disposal notes make visible downstream.
	synth := &AcquisitionLot{
		LotID:        syntheticLotID(ev.ID, mint),
		Wallet:       wallet,
		TS:           ev.TS,
		TokenMint:    mint,
		TokenSymbol:  symbol,
		QtyAcquired:  issue.Shortfall,
		UnitCostAUD:  AUD(0),
		FeesAUD:      AUD(0),
		RemainingQty: issue.Shortfall,
		SourceEvent:  ev.ID,
		SourceType:   SourceSynthetic,
	}
	p.ledger.AddLot(synth)
	p.res.Acquisitions = append(p.res.Acquisitions, synth)
	p.warn(ev, mint, WarnSyntheticLots,
		fmt.Sprintf("missing basis for %s %s: synthesized zero-cost lot for shortfall %s", issue.Required, mint, issue.Shortfall))
	takes, err = Allocate(p.ledger.LotsFor(wallet, mint), qty, method, p.engine.Specific, ev.ID)
	if err != nil {
		return nil, false, err
	}
	return takes, true, nil
}

// feeToAUD prices the event's network fee, writing the result back onto the
// event. A missing SOL price degrades to a zero fee plus a warning.
func (p *pass) feeToAUD(ev *NormalizedEvent) Money {
	if ev.FeeSOL.IsZero() {
		return AUD(0)
	}
	if ev.Raw.FeeAUD != nil {
		return *ev.Raw.FeeAUD
	}
	price, ok := p.engine.Provider.PriceAUD(SOLMint, ev.TS, &ev.Raw)
	if !ok {
		p.warn(ev, SOLMint, WarnMissingFeePrice, "SOL price unavailable, fee treated as zero")
		return AUD(0)
	}
	fee := AUD(ev.FeeSOL.Mul(price.Decimal())).Round()
	ev.Raw.FeeAUD = &fee
	return fee
}

// resolveProceeds resolves the AUD value of the disposed side: explicit
// value, AUD hint, USD hint through FX, quote-token spot, then base-token
// spot. An unpriceable disposal degrades to zero proceeds.
func (p *pass) resolveProceeds(ev *NormalizedEvent) Money {
	raw := &ev.Raw
	if raw.ProceedsAUD != nil {
		return *raw.ProceedsAUD
	}
	if raw.ProceedsHintAUD != nil {
		return *raw.ProceedsHintAUD
	}
	if raw.ProceedsHintUSD != nil {
		if fx, ok := p.fxRate(ev); ok {
			return AUD(raw.ProceedsHintUSD.Mul(fx)).Round()
		}
	}
	if quote := ev.QuoteToken; quote != nil && quote.Amount().IsPositive() {
		if price, ok := p.engine.Provider.PriceAUD(quote.Mint, ev.TS, raw); ok {
			return price.Mul(quote.Amount()).Round()
		}
	}
	base := ev.BaseToken
	if price, ok := p.engine.Provider.PriceAUD(base.Mint, ev.TS, raw); ok {
		return price.Mul(base.Amount()).Round()
	}
	p.markUnpriced(ev, base.Mint)
	return AUD(0)
}

// resolveCost mirrors resolveProceeds for the acquired side; proceeds is the
// same event's disposal value when present.
func (p *pass) resolveCost(ev *NormalizedEvent, proceeds *Money) (Money, bool) {
	raw := &ev.Raw
	if raw.CostAUD != nil {
		return *raw.CostAUD, true
	}
	if raw.CostHintAUD != nil {
		return *raw.CostHintAUD, true
	}
	if raw.CostHintUSD != nil {
		if fx, ok := p.fxRate(ev); ok {
			return AUD(raw.CostHintUSD.Mul(fx)).Round(), true
		}
	}
	if proceeds != nil {
		return *proceeds, true
	}
	quote := ev.QuoteToken
	if price, ok := p.engine.Provider.PriceAUD(quote.Mint, ev.TS, raw); ok {
		return price.Mul(quote.Amount()).Round(), true
	}
	return AUD(0), false
}

func (p *pass) fxRate(ev *NormalizedEvent) (decimal.Decimal, bool) {
	if ev.Raw.FXRateUSDAUD != nil {
		return *ev.Raw.FXRateUSDAUD, true
	}
	if p.engine.FXRate != nil {
		return p.engine.FXRate(ev.TS)
	}
	return decimal.Decimal{}, false
}

func (p *pass) markUnpriced(ev *NormalizedEvent, mint string) {
	ev.Raw.Unpriced = true
	if ev.Tags == nil {
		ev.Tags = Tags{}
	}
	ev.Tags.Add(TagUnpriced)
	p.warn(ev, mint, WarnUnpriced, fmt.Sprintf("no price for mint %s at %s, valued at zero", mint, ev.TS.UTC().Format(time.RFC3339)))
}

// warn records a warning once per (signature, mint, code).
func (p *pass) warn(ev *NormalizedEvent, mint, code, message string) {
	key := ev.Signature() + "|" + mint + "|" + code
	if _, seen := p.warned[key]; seen {
		return
	}
	p.warned[key] = struct{}{}
	p.res.Warnings = append(p.res.Warnings, WarningRecord{
		TS:        ev.TS,
		Wallet:    ev.Wallet,
		Signature: ev.Raw.Signature,
		Mint:      mint,
		Code:      code,
		Message:   message,
	})
}

// prorate splits total across takes proportionally to quantity. The last
// take receives the remainder instead of its own rounded share, so the
// shares always sum exactly to total.
func prorate(total Money, takes []LotTake, qty Quantity) []Money {
	shares := make([]Money, len(takes))
	if len(takes) == 0 {
		return shares
	}
	if total.IsZero() || !qty.IsPositive() {
		for i := range shares {
			shares[i] = AUD(0)
		}
		return shares
	}
	allocated := AUD(0)
	for i, take := range takes[:len(takes)-1] {
		share := total.Mul(take.Qty).Div(qty).Round()
		shares[i] = share
		allocated = allocated.Add(share)
	}
	shares[len(shares)-1] = total.Sub(allocated)
	return shares
}

// drawLotFee consumes the pro-rata portion of the lot's own unallocated fee,
// proportional to the quantity taken out of what remains. Taking the whole
// remainder takes the whole fee, so nothing leaks to a drained lot.
func drawLotFee(lot *AcquisitionLot, qtyUsed Quantity) Money {
	if lot.FeesAUD.IsZero() || !lot.RemainingQty.IsPositive() {
		return AUD(0)
	}
	if !lot.RemainingQty.Sub(qtyUsed).IsPositive() {
		draw := lot.FeesAUD
		lot.FeesAUD = AUD(0)
		return draw
	}
	draw := lot.FeesAUD.Mul(qtyUsed).Div(lot.RemainingQty).Round()
	lot.FeesAUD = lot.FeesAUD.Sub(draw)
	return draw
}

// holdingDays is the whole number of days between acquisition and disposal.
func holdingDays(acquired, disposed time.Time) int {
	return int(disposed.Sub(acquired) / (24 * time.Hour))
}
