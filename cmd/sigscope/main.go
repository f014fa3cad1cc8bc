package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const (
	appName = "sigscope"
	version = "v1.2.0"
)

func main() {
	// .env is optional; real settings come from config/flags.
	_ = godotenv.Load()

	zerolog.TimeFieldFormat = time.RFC3339
	if term.IsTerminal(int(os.Stderr.Fd())) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "Retrospective analysis of recorded trading signals",
		Version: version,
		Long: `sigscope post-processes a trading-signal snapshot database: it
classifies every signal's outcome (TP/SL tiers, open, expired), computes
risk-adjusted performance metrics, and surfaces the patterns behind
high-confidence signals that still fail.`,
	}

	rootCmd.PersistentFlags().String("db", "", "path to the signals snapshot database (overrides config)")
	rootCmd.PersistentFlags().String("config", "config/sigscope.yaml", "path to the YAML config file")

	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newRejectedCmd())
	rootCmd.AddCommand(newDumpCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("Command failed")
	}
}
