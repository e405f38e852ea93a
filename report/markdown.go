package report

import (
	"bytes"
	"fmt"

	md "github.com/nao1215/markdown"

	"solcgt"
)

// Overview carries the run-level facts rendered at the top of a report.
type Overview struct {
	RunID         string
	FinancialYear string // "all" when unfiltered
	Method        solcgt.Method
	Wallets       []string
}

// Markdown renders the result bundle as a markdown document.
func Markdown(res *solcgt.Result, overview Overview) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Capital Gains Report")
	doc.Table(md.TableSet{
		Header: []string{"Run", "Financial year", "Method", "Wallets"},
		Rows: [][]string{{
			overview.RunID,
			overview.FinancialYear,
			overview.Method.String(),
			fmt.Sprintf("%d", len(overview.Wallets)),
		}},
	})

	doc.H2("Disposals by token")
	tokenRows := [][]string{}
	for _, s := range SummarizeByToken(res.Disposals) {
		tokenRows = append(tokenRows, []string{
			label(s.TokenSymbol, s.TokenMint),
			fmt.Sprintf("%d", s.Disposals),
			s.QtyDisposed.String(),
			s.ProceedsAUD.String(),
			s.CostBaseAUD.String(),
			s.FeesAUD.String(),
			s.GainLossAUD.SignedString(),
			s.LongTermGain.SignedString(),
		})
	}
	doc.Table(md.TableSet{
		Header: []string{"Token", "Disposals", "Qty", "Proceeds", "Cost base", "Fees", "Gain/loss", "Long-term"},
		Rows:   tokenRows,
	})

	doc.H2("Disposals by wallet")
	walletRows := [][]string{}
	for _, s := range SummarizeByWallet(res.Disposals) {
		walletRows = append(walletRows, []string{
			s.Wallet,
			fmt.Sprintf("%d", s.Disposals),
			s.ProceedsAUD.String(),
			s.CostBaseAUD.String(),
			s.GainLossAUD.SignedString(),
		})
	}
	doc.Table(md.TableSet{
		Header: []string{"Wallet", "Disposals", "Proceeds", "Cost base", "Gain/loss"},
		Rows:   walletRows,
	})

	if len(res.LotMoves) > 0 {
		doc.H2("Lot moves")
		moveRows := [][]string{}
		for _, m := range res.LotMoves {
			moveRows = append(moveRows, []string{
				m.TS.UTC().Format("2006-01-02"),
				m.FromWallet,
				m.ToWallet,
				m.TokenMint,
				m.Amount.String(),
				m.FeeAUD.String(),
			})
		}
		doc.Table(md.TableSet{
			Header: []string{"Date", "From", "To", "Mint", "Amount", "Fee"},
			Rows:   moveRows,
		})
	}

	if len(res.Warnings) > 0 {
		doc.H2("Warnings")
		warnRows := [][]string{}
		for _, w := range res.Warnings {
			warnRows = append(warnRows, []string{w.Code, w.Wallet, w.Mint, w.Message})
		}
		doc.Table(md.TableSet{
			Header: []string{"Code", "Wallet", "Mint", "Message"},
			Rows:   warnRows,
		})
	}

	return doc.String()
}

func label(symbol, mint string) string {
	if symbol != "" {
		return symbol
	}
	return mint
}
