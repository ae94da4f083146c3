package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pkordes/trip-planner/internal/app"
	"github.com/pkordes/trip-planner/internal/config"
	"github.com/pkordes/trip-planner/internal/reference"
)

var importCmd = &cobra.Command{
	Use:   "import-reference",
	Short: "Load the airport and airline CSVs into Postgres",
	Long: `Applies pending migrations, then replaces the airports and airlines
tables with the files named by AIRPORTS_CSV_PATH and AIRLINES_CSV_PATH.
Requires DATABASE_URL.`,
	Args: cobra.NoArgs,
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadReference()
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	ctx := cmd.Context()

	pool, err := app.OpenPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	counts, err := app.ImportReference(ctx, pool, cfg.AirportsPath, cfg.AirlinesPath, newLogger(cmd))
	if err != nil {
		return err
	}
	for _, table := range []string{reference.Airports, reference.Airlines} {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d rows\n", table, counts[table])
	}
	return nil
}
