package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"

	"solcgt"
)

// fyCmd holds the flags for the 'fy' subcommand.
type fyCmd struct {
	label string
}

func (*fyCmd) Name() string     { return "fy" }
func (*fyCmd) Synopsis() string { return "show the bounds of a financial year" }
func (*fyCmd) Usage() string {
	return `scgt fy [-label <YYYY-YYYY>]

  Prints the UTC bounds of an Australian financial year. Without -label,
  shows the financial year containing today.
`
}

func (c *fyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.label, "label", "", "Financial year label, e.g. 2023-2024")
}

func (c *fyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	label := c.label
	if label == "" {
		label = solcgt.FinancialYearOf(time.Now())
	}
	period, err := solcgt.ParseFinancialYear(label)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing financial year: %v\n", err)
		return subcommands.ExitUsageError
	}
	fmt.Printf("%s: %s\n", label, period)
	return subcommands.ExitSuccess
}
