package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reliastack/reliabase-engine/internal/config"
	"github.com/reliastack/reliabase-engine/internal/repo"
)

var seedValue int64

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the database with a deterministic demo fleet",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		store, err := repo.Open(cfg.Database.Path)
		if err != nil {
			return err
		}
		defer store.Close()

		result, err := store.SeedDemo(cmd.Context(), seedValue)
		if err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
		fmt.Printf("seeded %d assets, %d exposures, %d events, %d failure modes, %d parts\n",
			result.Assets, result.Exposures, result.Events, result.FailureModes, result.Parts)
		return nil
	},
}

func init() {
	seedCmd.Flags().Int64Var(&seedValue, "seed", 42, "random seed for the generated fleet")
	rootCmd.AddCommand(seedCmd)
}
