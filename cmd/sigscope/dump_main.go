package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/quantaudit/sigscope/internal/storage"
)

func newDumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Dump the snapshot database contents for inspection",
		RunE:  runDump,
	}
	cmd.Flags().String("out", "", "write the dump to this file instead of stdout")
	return cmd
}

func runDump(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open signal store: %w", err)
	}
	defer store.Close()

	ctx := context.Background()

	out := os.Stdout
	if path, _ := cmd.Flags().GetString("out"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create dump file: %w", err)
		}
		defer f.Close()
		out = f
		log.Info().Str("path", path).Msg("Writing database dump")
	}

	fmt.Fprintf(out, "# sigscope database dump\n")
	fmt.Fprintf(out, "# db: %s\n# at: %s\n\n", cfg.DBPath, time.Now().Format("2006-01-02 15:04:05"))

	counts, err := store.TableCounts(ctx)
	if err != nil {
		return err
	}
	tables := make([]string, 0, len(counts))
	for table := range counts {
		tables = append(tables, table)
	}
	sort.Strings(tables)
	for _, table := range tables {
		fmt.Fprintf(out, "%-20s %d rows\n", table, counts[table])
	}

	signals, err := store.Signals(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\n== signals ==\n")
	for i := range signals {
		line, err := json.Marshal(&signals[i])
		if err != nil {
			return fmt.Errorf("marshal signal %s: %w", signals[i].SignalID, err)
		}
		fmt.Fprintf(out, "%s\n", line)
	}

	rejected, err := store.Rejected(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\n== rejected_signals ==\n")
	for i := range rejected {
		line, err := json.Marshal(&rejected[i])
		if err != nil {
			return fmt.Errorf("marshal rejected signal: %w", err)
		}
		fmt.Fprintf(out, "%s\n", line)
	}

	return nil
}
