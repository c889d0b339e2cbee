package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/wjy123009/gatk/internal/depth"
	"github.com/wjy123009/gatk/internal/store"
)

// exportBatchSize bounds the rows buffered per transaction.
const exportBatchSize = 10000

func newExportCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "export <file.bci>",
		Short: "Export a LocusDepth stream into a DuckDB database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				dbPath = viper.GetString("export.db")
			}
			if dbPath == "" {
				return fmt.Errorf("no database path: pass --db or set export.db in config")
			}
			return runExport(args[0], dbPath)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "DuckDB database path (default from config key export.db)")

	return cmd
}

func runExport(path, dbPath string) error {
	r, err := depth.Open(path)
	if err != nil {
		return err
	}
	defer r.Close()
	r.SetLogger(logger)

	s, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer s.Close()

	it, err := r.Iterator()
	if err != nil {
		return err
	}
	defer it.Close()

	dict := r.Dictionary()
	batch := make([]depth.LocusDepth, 0, exportBatchSize)
	total := 0
	for it.Next() {
		batch = append(batch, it.Record())
		if len(batch) == exportBatchSize {
			if err := s.WriteLocusDepths(dict, batch); err != nil {
				return err
			}
			total += len(batch)
			batch = batch[:0]
		}
	}
	if err := it.Err(); err != nil {
		return err
	}
	if err := s.WriteLocusDepths(dict, batch); err != nil {
		return err
	}
	total += len(batch)

	logger.Debug("export complete", zap.String("path", path), zap.String("db", dbPath), zap.Int("records", total))
	fmt.Printf("Exported %d records from %s to %s\n", total, path, dbPath)
	return nil
}
