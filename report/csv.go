package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"solcgt"
)

// WriteDisposalsCSV writes one row per disposal record.
func WriteDisposalsCSV(w io.Writer, disposals []solcgt.DisposalRecord) error {
	cw := csv.NewWriter(w)
	header := []string{
		"event_id", "wallet", "ts", "token_mint", "token_symbol", "qty_disposed",
		"proceeds_aud", "cost_base_aud", "fees_aud", "gain_loss_aud",
		"held_days", "long_term", "method", "notes",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing disposals header: %w", err)
	}
	for _, d := range disposals {
		row := []string{
			d.EventID,
			d.Wallet,
			d.TS.UTC().Format(time.RFC3339),
			d.TokenMint,
			d.TokenSymbol,
			d.QtyDisposed.String(),
			d.ProceedsAUD.Decimal().StringFixed(2),
			d.CostBaseAUD.Decimal().StringFixed(2),
			d.FeesAUD.Decimal().StringFixed(2),
			d.GainLossAUD.Decimal().StringFixed(2),
			strconv.Itoa(d.HeldDays),
			strconv.FormatBool(d.LongTerm),
			d.Method.String(),
			d.Notes,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing disposal %s: %w", d.EventID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteLotsCSV writes one row per acquisition lot.
func WriteLotsCSV(w io.Writer, lots []*solcgt.AcquisitionLot) error {
	cw := csv.NewWriter(w)
	header := []string{
		"lot_id", "wallet", "ts", "token_mint", "token_symbol",
		"qty_acquired", "unit_cost_aud", "fees_aud", "remaining_qty",
		"source_event", "source_type",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing lots header: %w", err)
	}
	for _, lot := range lots {
		row := []string{
			lot.LotID,
			lot.Wallet,
			lot.TS.UTC().Format(time.RFC3339),
			lot.TokenMint,
			lot.TokenSymbol,
			lot.QtyAcquired.String(),
			lot.UnitCostAUD.Decimal().StringFixed(2),
			lot.FeesAUD.Decimal().StringFixed(2),
			lot.RemainingQty.String(),
			lot.SourceEvent,
			lot.SourceType,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing lot %s: %w", lot.LotID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteWarningsCSV writes one row per warning.
func WriteWarningsCSV(w io.Writer, warnings []solcgt.WarningRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"ts", "wallet", "signature", "mint", "code", "message"}); err != nil {
		return fmt.Errorf("writing warnings header: %w", err)
	}
	for _, warning := range warnings {
		row := []string{
			warning.TS.UTC().Format(time.RFC3339),
			warning.Wallet,
			warning.Signature,
			warning.Mint,
			warning.Code,
			warning.Message,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing warning %s: %w", warning.Code, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
