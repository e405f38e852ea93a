package solcgt

import "sort"

// LotLedger stores acquisition lots grouped by (wallet, token mint). It is
// private to one engine instance and not safe for concurrent mutation.
//
// The ledger holds no policy: insufficient quantity and selection failures
// are the allocation strategy's business.
type LotLedger struct {
	lots map[ledgerKey][]*AcquisitionLot
}

type ledgerKey struct {
	wallet string
	mint   string
}

// NewLotLedger creates an empty ledger.
func NewLotLedger() *LotLedger {
	return &LotLedger{lots: make(map[ledgerKey][]*AcquisitionLot)}
}

// AddLot inserts a lot and re-sorts its group by (ts, lot id). Sorting on
// every insert keeps retrieval trivial; groups stay small relative to the
// total event volume.
func (l *LotLedger) AddLot(lot *AcquisitionLot) {
	key := ledgerKey{wallet: lot.Wallet, mint: lot.TokenMint}
	group := append(l.lots[key], lot)
	sort.SliceStable(group, func(i, j int) bool {
		if !group[i].TS.Equal(group[j].TS) {
			return group[i].TS.Before(group[j].TS)
		}
		return group[i].LotID < group[j].LotID
	})
	l.lots[key] = group
}

// LotsFor returns a snapshot of the group for (wallet, mint). The slice is a
// copy so callers can reorder it freely; the lots themselves are shared.
func (l *LotLedger) LotsFor(wallet, mint string) []*AcquisitionLot {
	group := l.lots[ledgerKey{wallet: wallet, mint: mint}]
	snapshot := make([]*AcquisitionLot, len(group))
	copy(snapshot, group)
	return snapshot
}

// UpdateRemaining decrements a lot's remaining quantity by qtyUsed, quantized
// to the ledger precision and clamped at zero.
func (l *LotLedger) UpdateRemaining(lot *AcquisitionLot, qtyUsed Quantity) {
	remaining := lot.RemainingQty.Sub(qtyUsed).Quantize()
	if remaining.IsNegative() {
		remaining = Q(0)
	}
	lot.RemainingQty = remaining
}

// AllLots returns every lot in the ledger, ordered by wallet, mint and the
// group order.
func (l *LotLedger) AllLots() []*AcquisitionLot {
	keys := make([]ledgerKey, 0, len(l.lots))
	for key := range l.lots {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].wallet != keys[j].wallet {
			return keys[i].wallet < keys[j].wallet
		}
		return keys[i].mint < keys[j].mint
	})
	var items []*AcquisitionLot
	for _, key := range keys {
		items = append(items, l.lots[key]...)
	}
	return items
}
