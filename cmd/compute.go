package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/subcommands"
	"github.com/google/uuid"

	"solcgt"
	"solcgt/report"
)

// computeCmd holds the flags for the 'compute' subcommand.
type computeCmd struct {
	config string
	events string
	fy     string
	outDir string
}

func (*computeCmd) Name() string     { return "compute" }
func (*computeCmd) Synopsis() string { return "compute capital gains from a wallet events file" }
func (*computeCmd) Usage() string {
	return `scgt compute -events <file> [-config <file>] [-fy <YYYY-YYYY>] [-out <dir>]

  Normalizes raw wallet transactions, reconciles self-transfers, runs the
  accounting pass and prints a markdown report. With -out, also writes
  disposals, lots and warnings as CSV.
`
}

func (c *computeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.config, "config", "", "Path to the YAML settings file")
	f.StringVar(&c.events, "events", "", "Path to the raw events file (JSON, wallet to transactions)")
	f.StringVar(&c.fy, "fy", "", "Restrict the report to one financial year, e.g. 2023-2024")
	f.StringVar(&c.outDir, "out", "", "Directory to receive CSV exports")
}

func (c *computeCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	log.WithField("matches", len(matches)).Debug("self-transfers reconciled")

	var missing []solcgt.MissingLotIssue
	res, err := engine.Process(events, solcgt.ProcessOptions{
		Wallets:             settings.Wallets,
		Matches:             matches,
		ExternalLotTracking: settings.ExternalLotTracking,
		StrictLots:          settings.StrictLots,
		MissingLots:         &missing,
	})
	if err != nil {
		// Partial results are still written so the failure can be inspected.
		log.WithError(err).Error("accounting pass aborted")
		if res == nil {
			return subcommands.ExitFailure
		}
	}
	for _, issue := range missing {
		log.WithFields(map[string]interface{}{
			"wallet": issue.Wallet,
			"mint":   issue.TokenMint,
			"event":  issue.EventID,
		}).Warnf("missing basis: short %s of %s", issue.Shortfall, issue.Required)
	}

	fyLabel := "all"
	disposals := res.Disposals
	if c.fy != "" {
		period, perr := solcgt.ParseFinancialYear(c.fy)
		if perr != nil {
			fmt.Fprintf(os.Stderr, "Error parsing financial year: %v\n", perr)
			return subcommands.ExitUsageError
		}
		disposals = report.FilterDisposals(disposals, period)
		fyLabel = c.fy
	}

	filtered := &solcgt.Result{
		Acquisitions: res.Acquisitions,
		Disposals:    disposals,
		LotMoves:     res.LotMoves,
		Warnings:     res.Warnings,
	}
	fmt.Print(report.Markdown(filtered, report.Overview{
		RunID:         uuid.NewString(),
		FinancialYear: fyLabel,
		Method:        settings.EngineMethod(),
		Wallets:       settings.Wallets,
	}))

	if c.outDir != "" {
		if werr := writeCSVs(c.outDir, filtered); werr != nil {
			fmt.Fprintf(os.Stderr, "Error writing CSV exports: %v\n", werr)
			return subcommands.ExitFailure
		}
	}
	if err != nil {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func writeCSVs(dir string, res *solcgt.Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	files := []struct {
		name  string
		write func(f *os.File) error
	}{
		{"disposals.csv", func(f *os.File) error { return report.WriteDisposalsCSV(f, res.Disposals) }},
		{"lots.csv", func(f *os.File) error { return report.WriteLotsCSV(f, res.Acquisitions) }},
		{"warnings.csv", func(f *os.File) error { return report.WriteWarningsCSV(f, res.Warnings) }},
	}
	for _, export := range files {
		f, err := os.Create(filepath.Join(dir, export.name))
		if err != nil {
			return err
		}
		if err := export.write(f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}
