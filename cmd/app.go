// Package cmd implements the CLI application around the accounting engine.
package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/google/subcommands"

	"solcgt"
)

// Commands lists the subcommands a main package registers on its commander.
var Commands = []subcommands.Command{
	&computeCmd{},
	&transfersCmd{},
	&lotsCmd{},
	&fyCmd{},
}

// loadSettings reads the run configuration, an empty default when no path is
// given.
func loadSettings(path string) (*solcgt.Settings, error) {
	if path == "" {
		return &solcgt.Settings{}, nil
	}
	return solcgt.LoadSettings(path)
}

// loadEvents reads an events file mapping wallet addresses to their raw
// transaction lists and normalizes everything into one event set.
func loadEvents(path string) ([]*solcgt.NormalizedEvent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading events %q: %w", path, err)
	}
	var byWallet map[string]json.RawMessage
	if err := json.Unmarshal(data, &byWallet); err != nil {
		return nil, fmt.Errorf("parsing events %q: %w", path, err)
	}
	wallets := make([]string, 0, len(byWallet))
	for wallet := range byWallet {
		wallets = append(wallets, wallet)
	}
	sort.Strings(wallets)
	var events []*solcgt.NormalizedEvent
	for _, wallet := range wallets {
		walletEvents, err := solcgt.Normalize(wallet, byWallet[wallet])
		if err != nil {
			return nil, fmt.Errorf("normalizing %s: %w", wallet, err)
		}
		events = append(events, walletEvents...)
	}
	return events, nil
}

// buildEngine assembles an engine from settings.
func buildEngine(settings *solcgt.Settings) (*solcgt.Engine, error) {
	provider, err := settings.PriceProvider()
	if err != nil {
		return nil, err
	}
	plans, err := settings.SpecificPlans()
	if err != nil {
		return nil, err
	}
	engine := solcgt.NewEngine(settings.EngineMethod(), provider)
	engine.Specific = plans
	engine.LongTermDays = settings.LongTermDays
	if settings.FeePolicy != "" {
		policy, err := solcgt.ParseFeePolicy(settings.FeePolicy)
		if err != nil {
			return nil, err
		}
		engine.FeePolicy = policy
	}
	return engine, nil
}
