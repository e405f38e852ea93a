package solcgt

// TaxTreatment is the AU CGT treatment of an event kind.
type TaxTreatment int

const (
	TreatAcquisition TaxTreatment = iota
	TreatDisposal
	TreatIncome
	TreatLotMove
	TreatOutOfScope
	TreatIgnore
)

var eventTaxTreatment = map[EventKind]TaxTreatment{
	KindSwap:            TreatDisposal,
	KindSell:            TreatDisposal,
	KindBuy:             TreatAcquisition,
	KindTransferIn:      TreatAcquisition,
	KindTransferOut:     TreatOutOfScope,
	KindAirdrop:         TreatIncome,
	KindMint:            TreatAcquisition,
	KindBurn:            TreatDisposal,
	KindWrap:            TreatDisposal,
	KindUnwrap:          TreatAcquisition,
	KindLiquidityAdd:    TreatDisposal,
	KindLiquidityRemove: TreatAcquisition,
	KindUnknown:         TreatIgnore,
}

// ClassifyEvent maps an event to its tax treatment. A reconciled
// self-transfer is a lot move no matter its kind.
func ClassifyEvent(ev *NormalizedEvent) TaxTreatment {
	if ev.Tags.Has(TagSelfTransfer) {
		return TreatLotMove
	}
	treatment, ok := eventTaxTreatment[ev.Kind]
	if !ok {
		return TreatIgnore
	}
	return treatment
}
