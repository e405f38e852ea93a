package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"solcgt"
)

// transfersCmd holds the flags for the 'transfers' subcommand.
type transfersCmd struct {
	config string
	events string
}

func (*transfersCmd) Name() string     { return "transfers" }
func (*transfersCmd) Synopsis() string { return "list reconciled self-transfers" }
func (*transfersCmd) Usage() string {
	return `scgt transfers -events <file> [-config <file>]

  Runs the self-transfer reconciler and prints one line per matched pair,
  without performing the accounting pass.
`
}

func (c *transfersCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.config, "config", "", "Path to the YAML settings file")
	f.StringVar(&c.events, "events", "", "Path to the raw events file (JSON, wallet to transactions)")
}

func (c *transfersCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	matches := solcgt.DetectSelfTransfers(events, settings.Wallets, settings.TransferWindow())
	for _, m := range matches {
		amount := m.Out.BaseToken.Amount()
		fmt.Printf("%s  %s -> %s  %s %s  (%s -> %s)\n",
			m.Out.TS.UTC().Format("2006-01-02 15:04:05"),
			m.Out.Wallet, m.In.Wallet,
			amount, m.Out.BaseToken.Mint,
			m.Out.ID, m.In.ID)
	}
	fmt.Printf("%d self-transfer(s)\n", len(matches))
	return subcommands.ExitSuccess
}
