package solcgt

import (
	"fmt"
	"time"
)

// Provenance markers for lots that were not created directly by an event.
const (
	SourceLotMove      = "lot_move"
	SourceExternalMove = "external_move"
	SourceExternalBack = "external_return"
	SourceSynthetic    = "synthetic_missing_basis"
)

// AcquisitionLot is a parcel of an asset acquired at one point in time.
// Lots are never deleted, only drained: 0 <= RemainingQty <= QtyAcquired
// holds throughout, and FeesAUD never goes negative.
type AcquisitionLot struct {
	LotID        string
	Wallet       string
	TS           time.Time // acquisition date; governs ordering and holding period
	TokenMint    string
	TokenSymbol  string
	QtyAcquired  Quantity // immutable original quantity
	UnitCostAUD  Money
	FeesAUD      Money    // unallocated fee portion still attached to the lot
	RemainingQty Quantity // monotonically non-increasing, floor 0
	SourceEvent  string
	SourceType   string // producing event kind, or a Source* marker
}

// lotID derives the deterministic id of an event-created lot.
func lotID(eventID, mint string) string {
	return eventID + ":" + mint
}

// moveLotID derives the id of the n-th lot spawned by a lot move.
func moveLotID(eventID, mint string, n int) string {
	return fmt.Sprintf("%s:%s:move%d", eventID, mint, n)
}

// syntheticLotID derives the id of a lot minted to cover a basis shortfall.
func syntheticLotID(eventID, mint string) string {
	return eventID + ":" + mint + ":synthetic"
}

// DisposalRecord is one lot consumption resulting from a disposal. A single
// disposal spanning several lots produces one record per lot; Notes carries
// the consumed lot id and any reliability annotations.
type DisposalRecord struct {
	EventID     string
	Wallet      string
	TS          time.Time
	TokenMint   string
	TokenSymbol string
	QtyDisposed Quantity
	ProceedsAUD Money
	CostBaseAUD Money
	FeesAUD     Money
	GainLossAUD Money
	HeldDays    int
	LongTerm    bool
	Method      Method
	Notes       string
}

// LotPortion pairs a lot id with the quantity consumed from or created in it.
type LotPortion struct {
	LotID string
	Qty   Quantity
}

// LotMoveRecord is a non-taxable transfer of lots between wallets, including
// moves into and out of the external bucket.
type LotMoveRecord struct {
	Signature  string
	EventID    string
	TS         time.Time
	FromWallet string
	ToWallet   string
	TokenMint  string
	Amount     Quantity
	FeeAUD     Money
	Consumed   []LotPortion
	Created    []LotPortion
}

// Warning codes emitted by the engine.
const (
	WarnMissingFeePrice = "missing_fee_price"
	WarnSwapHintMissing = "swap_hint_missing_prices"
	WarnDefaultDecimals = "default_decimals"
	WarnExternalOut     = "external_transfer_out"
	WarnExternalIn      = "external_transfer_in"
	WarnSyntheticLots   = "missing_lots_synthetic"
	WarnUnpriced        = "unpriced"
	noteUnreliableBasis = "unreliable_missing_lots"
)

// WarningRecord is a non-fatal anomaly surfaced as data, deduplicated by
// (signature, mint, code).
type WarningRecord struct {
	TS        time.Time
	Wallet    string
	Signature string
	Mint      string
	Code      string
	Message   string
}

// MissingLotIssue describes a basis shortfall with enough context to build a
// synthetic covering lot or surface the gap to the user.
type MissingLotIssue struct {
	Wallet      string
	TokenMint   string
	TokenSymbol string
	TS          time.Time
	EventID     string
	Required    Quantity
	Available   Quantity
	Shortfall   Quantity
}

// Result is the bundle produced by Engine.Process. Each list is in the order
// produced during the pass.
type Result struct {
	Acquisitions []*AcquisitionLot
	Disposals    []DisposalRecord
	LotMoves     []LotMoveRecord
	Warnings     []WarningRecord
}
