// Package report renders and aggregates the output of an accounting pass.
package report

import (
	"sort"

	"solcgt"
)

// TokenSummary aggregates disposals of one mint.
type TokenSummary struct {
	TokenMint     string
	TokenSymbol   string
	Disposals     int
	QtyDisposed   solcgt.Quantity
	ProceedsAUD   solcgt.Money
	CostBaseAUD   solcgt.Money
	FeesAUD       solcgt.Money
	GainLossAUD   solcgt.Money
	LongTermGain  solcgt.Money
	ShortTermGain solcgt.Money
}

// WalletSummary aggregates disposals of one wallet.
type WalletSummary struct {
	Wallet      string
	Disposals   int
	ProceedsAUD solcgt.Money
	CostBaseAUD solcgt.Money
	FeesAUD     solcgt.Money
	GainLossAUD solcgt.Money
}

// SummarizeByToken groups disposal records per mint, sorted by mint.
func SummarizeByToken(disposals []solcgt.DisposalRecord) []TokenSummary {
	byMint := make(map[string]*TokenSummary)
	for _, d := range disposals {
		s, ok := byMint[d.TokenMint]
		if !ok {
			s = &TokenSummary{TokenMint: d.TokenMint, TokenSymbol: d.TokenSymbol}
			byMint[d.TokenMint] = s
		}
		s.Disposals++
		s.QtyDisposed = s.QtyDisposed.Add(d.QtyDisposed)
		s.ProceedsAUD = s.ProceedsAUD.Add(d.ProceedsAUD)
		s.CostBaseAUD = s.CostBaseAUD.Add(d.CostBaseAUD)
		s.FeesAUD = s.FeesAUD.Add(d.FeesAUD)
		s.GainLossAUD = s.GainLossAUD.Add(d.GainLossAUD)
		if d.LongTerm {
			s.LongTermGain = s.LongTermGain.Add(d.GainLossAUD)
		} else {
			s.ShortTermGain = s.ShortTermGain.Add(d.GainLossAUD)
		}
	}
	summaries := make([]TokenSummary, 0, len(byMint))
	for _, s := range byMint {
		summaries = append(summaries, *s)
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].TokenMint < summaries[j].TokenMint })
	return summaries
}

// SummarizeByWallet groups disposal records per wallet, sorted by wallet.
func SummarizeByWallet(disposals []solcgt.DisposalRecord) []WalletSummary {
	byWallet := make(map[string]*WalletSummary)
	for _, d := range disposals {
		s, ok := byWallet[d.Wallet]
		if !ok {
			s = &WalletSummary{Wallet: d.Wallet}
			byWallet[d.Wallet] = s
		}
		s.Disposals++
		s.ProceedsAUD = s.ProceedsAUD.Add(d.ProceedsAUD)
		s.CostBaseAUD = s.CostBaseAUD.Add(d.CostBaseAUD)
		s.FeesAUD = s.FeesAUD.Add(d.FeesAUD)
		s.GainLossAUD = s.GainLossAUD.Add(d.GainLossAUD)
	}
	summaries := make([]WalletSummary, 0, len(byWallet))
	for _, s := range byWallet {
		summaries = append(summaries, *s)
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Wallet < summaries[j].Wallet })
	return summaries
}

// FilterDisposals keeps the records whose timestamp falls inside the period.
func FilterDisposals(disposals []solcgt.DisposalRecord, period solcgt.Period) []solcgt.DisposalRecord {
	var kept []solcgt.DisposalRecord
	for _, d := range disposals {
		if period.Contains(d.TS) {
			kept = append(kept, d)
		}
	}
	return kept
}
