package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/joho/godotenv"

	"solcgt/cmd"
)

func main() {
	// Optional .env for local runs; absence is fine.
	_ = godotenv.Load()

	verbose := flag.Bool("verbose", false, "enable debug logging")
	logFile := flag.String("log-file", "", "write logs to this file instead of stderr")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))

	for _, c := range cmd.Commands {
		commander.Register(c, "")
	}

	flag.Parse()
	cmd.InitLogging(*verbose, *logFile)
	os.Exit(int(commander.Execute(context.Background())))
}
