package solcgt

import (
	"strings"
	"testing"
)

func TestSelfTransferMovesLots(t *testing.T) {
	out := withFee(transferOutEvent("t1", day(2), "A", "B", "TOK", "10"), "0.50")
	in := transferInEvent("t2", day(2), "B", "A", "TOK", "10")
	out.Raw.Signature = "shared"
	in.Raw.Signature = "shared"
	events := []*NormalizedEvent{
		buyEvent("b1", day(0), "A", "TOK", "10", "100"),
		out, in,
		sellEvent("s1", day(400), "B", "TOK", "10", "150"),
	}
	matches := DetectSelfTransfers(events, []string{"A", "B"}, 0)
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}

	engine := newTestEngine(FIFO)
	res, err := engine.Process(events, ProcessOptions{Wallets: []string{"A", "B"}, Matches: matches})
	if err != nil {
		t.Fatalf("Process() failed: %v", err)
	}

	// The transfer itself realizes nothing.
	if len(res.LotMoves) != 1 {
		t.Fatalf("got %d lot moves, want 1", len(res.LotMoves))
	}
	move := res.LotMoves[0]
	if move.FromWallet != "A" || move.ToWallet != "B" {
		t.Errorf("move %s -> %s, want A -> B", move.FromWallet, move.ToWallet)
	}
	assertMoney(t, "move fee", move.FeeAUD, "0.50")
	if len(move.Consumed) != 1 || move.Consumed[0].LotID != "b1:TOK" {
		t.Errorf("consumed = %+v, want lot b1:TOK", move.Consumed)
	}
	if len(move.Created) != 1 || move.Created[0].LotID != "t1:TOK:move0" {
		t.Errorf("created = %+v, want lot t1:TOK:move0", move.Created)
	}

	moved := engine.Ledger().LotsFor("B", "TOK")
	if len(moved) != 1 {
		t.Fatalf("got %d lots in B, want 1", len(moved))
	}
	if !moved[0].TS.Equal(day(0)) {
		t.Errorf("moved lot ts = %s, want the original acquisition date %s", moved[0].TS, day(0))
	}
	assertMoney(t, "moved unit cost", moved[0].UnitCostAUD, "10")
	if moved[0].SourceType != SourceLotMove {
		t.Errorf("moved source type = %s, want %s", moved[0].SourceType, SourceLotMove)
	}

	// The eventual disposal keeps the original holding period and draws the
	// transfer fee into the cost base.
	if len(res.Disposals) != 1 {
		t.Fatalf("got %d disposals, want 1", len(res.Disposals))
	}
	d := res.Disposals[0]
	assertMoney(t, "cost base", d.CostBaseAUD, "100.50")
	assertMoney(t, "gain", d.GainLossAUD, "49.50")
	if d.HeldDays != 400 || !d.LongTerm {
		t.Errorf("held %d days, long term %v; want 400 and long term", d.HeldDays, d.LongTerm)
	}
}

func TestExternalOutParksLots(t *testing.T) {
	events := []*NormalizedEvent{
		buyEvent("b1", day(0), "A", "TOK", "10", "100"),
		withFee(transferOutEvent("t1", day(1), "A", "eve", "TOK", "10"), "0.10"),
	}
	engine := newTestEngine(FIFO)
	res, err := engine.Process(events, ProcessOptions{Wallets: []string{"A"}, ExternalLotTracking: true})
	if err != nil {
		t.Fatalf("Process() failed: %v", err)
	}
	if !hasWarning(res, WarnExternalOut) {
		t.Error("missing warning " + WarnExternalOut)
	}
	if len(res.Disposals) != 0 {
		t.Fatalf("external transfer out realized %d disposals, want 0", len(res.Disposals))
	}
	if len(res.LotMoves) != 1 || res.LotMoves[0].ToWallet != "__external__:eve" {
		t.Fatalf("lot moves = %+v, want one move into __external__:eve", res.LotMoves)
	}

	parked := engine.Ledger().LotsFor("__external__:eve", "TOK")
	if len(parked) != 1 {
		t.Fatalf("got %d parked lots, want 1", len(parked))
	}
	assertMoney(t, "parked lot fee", parked[0].FeesAUD, "0.10")
	if parked[0].SourceType != SourceExternalMove {
		t.Errorf("parked source type = %s, want %s", parked[0].SourceType, SourceExternalMove)
	}
	assertQty(t, "A remaining", engine.Ledger().LotsFor("A", "TOK")[0].RemainingQty, "0")
}

func TestExternalRoundTrip(t *testing.T) {
	events := []*NormalizedEvent{
		buyEvent("b1", day(0), "A", "TOK", "10", "100"),
		withFee(transferOutEvent("t1", day(1), "A", "eve", "TOK", "10"), "0.10"),
		transferInEvent("t2", day(2), "A", "eve", "TOK", "10"),
		sellEvent("s1", day(3), "A", "TOK", "10", "115.10"),
	}
	engine := newTestEngine(FIFO)
	res, err := engine.Process(events, ProcessOptions{Wallets: []string{"A"}, ExternalLotTracking: true})
	if err != nil {
		t.Fatalf("Process() failed: %v", err)
	}
	if hasWarning(res, WarnExternalIn) {
		t.Error("return of parked lots warned " + WarnExternalIn)
	}
	if len(res.LotMoves) != 2 {
		t.Fatalf("got %d lot moves, want 2", len(res.LotMoves))
	}

	var returned *AcquisitionLot
	for _, lot := range res.Acquisitions {
		if lot.SourceType == SourceExternalBack {
			returned = lot
		}
	}
	if returned == nil {
		t.Fatal("no returned lot created")
	}
	// Parked fees fold into the unit cost on the way back.
	assertMoney(t, "returned unit cost", returned.UnitCostAUD, "10.01")
	assertMoney(t, "returned lot fee", returned.FeesAUD, "0")
	if !returned.TS.Equal(day(0)) {
		t.Errorf("returned lot ts = %s, want the original acquisition date", returned.TS)
	}

	if len(res.Disposals) != 1 {
		t.Fatalf("got %d disposals, want 1", len(res.Disposals))
	}
	assertMoney(t, "cost base", res.Disposals[0].CostBaseAUD, "100.10")
	assertMoney(t, "gain", res.Disposals[0].GainLossAUD, "15")
}

func TestExternalInFreshAcquisition(t *testing.T) {
	in := transferInEvent("t1", day(0), "A", "eve", "TOK", "5")
	engine := NewEngine(FIFO, NewStaticPriceProvider(map[string]Money{"TOK": AUD(2)}))
	res, err := engine.Process([]*NormalizedEvent{in}, ProcessOptions{
		Wallets:             []string{"A"},
		ExternalLotTracking: true, // the bucket is empty, so this falls back
	})
	if err != nil {
		t.Fatalf("Process() failed: %v", err)
	}
	if !hasWarning(res, WarnExternalIn) {
		t.Error("missing warning " + WarnExternalIn)
	}
	if len(res.Acquisitions) != 1 {
		t.Fatalf("got %d acquisitions, want 1", len(res.Acquisitions))
	}
	lot := res.Acquisitions[0]
	assertMoney(t, "unit cost", lot.UnitCostAUD, "2")
	assertQty(t, "qty", lot.QtyAcquired, "5")
	if lot.Wallet != "A" {
		t.Errorf("lot wallet = %s, want A", lot.Wallet)
	}
}

func TestFeeProrationSumsExactly(t *testing.T) {
	// Three equal lots disposed in one event with a fee whose thirds round.
	events := []*NormalizedEvent{
		buyEvent("b1", day(0), "w", "TOK", "1", "10"),
		buyEvent("b2", day(1), "w", "TOK", "1", "10"),
		buyEvent("b3", day(2), "w", "TOK", "1", "10"),
		withFee(sellEvent("s1", day(3), "w", "TOK", "3", "100"), "1"),
	}
	res, err := newTestEngine(FIFO).Process(events, ProcessOptions{})
	if err != nil {
		t.Fatalf("Process() failed: %v", err)
	}
	if len(res.Disposals) != 3 {
		t.Fatalf("got %d disposals, want 3", len(res.Disposals))
	}
	fees, proceeds, gains := AUD(0), AUD(0), AUD(0)
	for _, d := range res.Disposals {
		fees = fees.Add(d.FeesAUD)
		proceeds = proceeds.Add(d.ProceedsAUD)
		gains = gains.Add(d.GainLossAUD)
		if !strings.HasPrefix(d.Notes, "lot_id=") {
			t.Errorf("notes = %q, want a lot_id prefix", d.Notes)
		}
	}
	assertMoney(t, "fee total", fees, "1")
	assertMoney(t, "proceeds total", proceeds, "100")
	assertMoney(t, "gain total", gains, "69") // 100 - 1 - 30
}
