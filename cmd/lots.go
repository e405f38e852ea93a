package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"solcgt"
	"solcgt/report"
)

// lotsCmd holds the flags for the 'lots' subcommand.
type lotsCmd struct {
	config    string
	events    string
	remaining bool
}

func (*lotsCmd) Name() string     { return "lots" }
func (*lotsCmd) Synopsis() string { return "show acquisition lots after the accounting pass" }
func (*lotsCmd) Usage() string {
	return `scgt lots -events <file> [-config <file>] [-remaining]

  Runs the accounting pass and writes the resulting lot ledger as CSV on
  stdout. With -remaining, drained lots are skipped.
`
}

func (c *lotsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.config, "config", "", "Path to the YAML settings file")
	f.StringVar(&c.events, "events", "", "Path to the raw events file (JSON, wallet to transactions)")
	f.BoolVar(&c.remaining, "remaining", false, "Only lots with remaining quantity")
}

func (c *lotsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.events == "" {
		fmt.Fprintln(os.Stderr, "-events is required")
		return subcommands.ExitUsageError
	}
	settings, err := loadSettings(c.config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading settings: %v\n", err)
		return subcommands.ExitFailure
	}
	events, err := loadEvents(c.events)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading events: %v\n", err)
		return subcommands.ExitFailure
	}
	engine, err := buildEngine(settings)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building engine: %v\n", err)
		return subcommands.ExitFailure
	}
	matches := solcgt.DetectSelfTransfers(events, settings.Wallets, settings.TransferWindow())
	if _, err := engine.Process(events, solcgt.ProcessOptions{
		Wallets:             settings.Wallets,
		Matches:             matches,
		ExternalLotTracking: settings.ExternalLotTracking,
		StrictLots:          settings.StrictLots,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error processing events: %v\n", err)
		return subcommands.ExitFailure
	}
	lots := engine.Ledger().AllLots()
	if c.remaining {
		kept := lots[:0]
		for _, lot := range lots {
			if lot.RemainingQty.IsPositive() {
				kept = append(kept, lot)
			}
		}
		lots = kept
	}
	if err := report.WriteLotsCSV(os.Stdout, lots); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing lots: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
