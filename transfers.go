package solcgt

import "time"

// amountTolerance is the absolute tolerance when comparing the two legs of a
// transfer; chain rounding can shave dust off one side.
var amountTolerance = Q("0.00000001")

// DefaultTransferWindow bounds the time between the two legs of a
// self-transfer matched without a shared signature.
const DefaultTransferWindow = 5 * time.Minute

// TransferMatch pairs the out and in legs of one self-transfer.
type TransferMatch struct {
	Out *NormalizedEvent
	In  *NormalizedEvent
}

// DetectSelfTransfers identifies transfer pairs that move value between two
// tracked wallets, so the engine treats them as lot moves instead of a
// disposal plus an acquisition. Both legs of every match are tagged
// self_transfer.
//
// Matching runs in two phases. Events sharing a transaction signature are
// paired first: same mint, same amount within tolerance, different wallets,
// and mutually consistent counterparty declarations when both legs carry
// one. This is exact, with no timing ambiguity, and handles multi-leg
// transactions. Whatever remains falls back to a per-mint pending queue of
// transfer_out events matched to later transfer_in events within the window;
// that covers genuinely separate transactions such as manual sends.
//
// The result is deterministic for a fixed event list: running it twice
// yields the same match set.
func DetectSelfTransfers(events []*NormalizedEvent, wallets []string, window time.Duration) []TransferMatch {
	if window <= 0 {
		window = DefaultTransferWindow
	}
	tracked := make(map[string]struct{}, len(wallets))
	for _, w := range wallets {
		tracked[w] = struct{}{}
	}
	isTracked := func(wallet string) bool {
		if len(tracked) == 0 {
			return true
		}
		_, ok := tracked[wallet]
		return ok
	}

	sorted := sortEvents(events)
	matched := make(map[*NormalizedEvent]struct{})
	var matches []TransferMatch

	pair := func(out, in *NormalizedEvent) {
		matches = append(matches, TransferMatch{Out: out, In: in})
		matched[out] = struct{}{}
		matched[in] = struct{}{}
		for _, ev := range []*NormalizedEvent{out, in} {
			if ev.Tags == nil {
				ev.Tags = Tags{}
			}
			ev.Tags.Add(TagSelfTransfer)
		}
	}

	// Phase 1: signature groups.
	groups := make(map[string][]*NormalizedEvent)
	var order []string
	for _, ev := range sorted {
		sig := ev.Raw.Signature
		if sig == "" {
			continue
		}
		if _, seen := groups[sig]; !seen {
			order = append(order, sig)
		}
		groups[sig] = append(groups[sig], ev)
	}
	for _, sig := range order {
		group := groups[sig]
		for _, out := range group {
			if out.Kind != KindTransferOut || out.BaseToken == nil || !isTracked(out.Wallet) {
				continue
			}
			if _, done := matched[out]; done {
				continue
			}
			for _, in := range group {
				if in.Kind != KindTransferIn || in.QuoteToken == nil || !isTracked(in.Wallet) {
					continue
				}
				if _, done := matched[in]; done {
					continue
				}
				if legsMatch(out, in) {
					pair(out, in)
					break
				}
			}
		}
	}

	// Phase 2: windowed fallback for whatever phase 1 left unmatched.
	pending := make(map[string][]*NormalizedEvent) // per-mint queues
	for _, ev := range sorted {
		if _, done := matched[ev]; done {
			continue
		}
		switch {
		case ev.Kind == KindTransferOut && ev.BaseToken != nil:
			// Only queue transfers that could plausibly land in a tracked
			// wallet.
			if ev.Counterparty != "" && !isTracked(ev.Counterparty) {
				continue
			}
			mint := ev.BaseToken.Mint
			pending[mint] = append(pending[mint], ev)
		case ev.Kind == KindTransferIn && ev.QuoteToken != nil:
			mint := ev.QuoteToken.Mint
			// Prune expired entries, then take the first matching one.
			var fresh []*NormalizedEvent
			for _, candidate := range pending[mint] {
				if ev.TS.Sub(candidate.TS) > window {
					continue
				}
				fresh = append(fresh, candidate)
			}
			var hit *NormalizedEvent
			kept := fresh[:0]
			for _, candidate := range fresh {
				if hit == nil && legsMatch(candidate, ev) {
					hit = candidate
					continue
				}
				kept = append(kept, candidate)
			}
			pending[mint] = kept
			if hit != nil {
				pair(hit, ev)
			}
		}
	}
	return matches
}

// legsMatch reports whether out and in look like the two sides of one
// movement of value.
func legsMatch(out, in *NormalizedEvent) bool {
	if out.Wallet == in.Wallet {
		return false
	}
	if out.BaseToken == nil || in.QuoteToken == nil || out.BaseToken.Mint != in.QuoteToken.Mint {
		return false
	}
	if !out.BaseToken.Amount().WithinTolerance(in.QuoteToken.Amount(), amountTolerance) {
		return false
	}
	// When both sides declare a counterparty, each must name the other.
	if out.Counterparty != "" && in.Counterparty != "" {
		return out.Counterparty == in.Wallet && in.Counterparty == out.Wallet
	}
	return true
}
