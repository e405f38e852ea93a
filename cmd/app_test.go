package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"solcgt"
)

func TestLoadEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.json")
	content := `{
		"walletB": [
			{"signature": "sig2", "timestamp": 1700000500, "events": [
				{"type": "transfer_in", "quote": {"mint": "TOK", "decimals": 9, "amount_raw": "1000000000"}}
			]}
		],
		"walletA": [
			{"signature": "sig1", "timestamp": 1700000000, "events": [
				{"type": "buy", "quote": {"mint": "TOK", "decimals": 9, "amount_raw": "2000000000"}, "cost_aud": 20}
			]}
		]
	}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing events: %v", err)
	}

	events, err := loadEvents(path)
	if err != nil {
		t.Fatalf("loadEvents() failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	wallets := map[string]bool{}
	for _, ev := range events {
		wallets[ev.Wallet] = true
	}
	if !wallets["walletA"] || !wallets["walletB"] {
		t.Errorf("events cover wallets %v, want walletA and walletB", wallets)
	}
}

func TestLoadEventsErrors(t *testing.T) {
	if _, err := loadEvents(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("loadEvents() accepted a missing file")
	}
	path := filepath.Join(t.TempDir(), "events.json")
	if err := os.WriteFile(path, []byte(`[]`), 0o644); err != nil {
		t.Fatalf("writing events: %v", err)
	}
	if _, err := loadEvents(path); err == nil {
		t.Error("loadEvents() accepted a non-object payload")
	}
}

func TestBuildEngine(t *testing.T) {
	settings := &solcgt.Settings{
		Method:       "hifo",
		FeePolicy:    "in_unit_cost",
		LongTermDays: 100,
		Prices:       []solcgt.PriceEntry{{Mint: "SOL", AUD: "150"}},
	}
	engine, err := buildEngine(settings)
	if err != nil {
		t.Fatalf("buildEngine() failed: %v", err)
	}
	if engine.Method != solcgt.HIFO {
		t.Errorf("method = %s, want hifo", engine.Method)
	}
	if engine.FeePolicy != solcgt.FeeInUnitCost {
		t.Errorf("fee policy = %s, want in_unit_cost", engine.FeePolicy)
	}
	if engine.LongTermDays != 100 {
		t.Errorf("long term days = %d, want 100", engine.LongTermDays)
	}
}

func TestLoadSettingsDefault(t *testing.T) {
	settings, err := loadSettings("")
	if err != nil {
		t.Fatalf("loadSettings(\"\") failed: %v", err)
	}
	if settings.EngineMethod() != solcgt.FIFO {
		t.Errorf("default method = %s, want fifo", settings.EngineMethod())
	}
}
