package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/reliastack/reliabase-engine/internal/config"
	"github.com/reliastack/reliabase-engine/internal/repo"
	"github.com/reliastack/reliabase-engine/internal/services"
	"github.com/reliastack/reliabase-engine/internal/utils"
)

var (
	analyzeResamples int
	analyzeSeed      int64
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <asset-id>",
	Short: "Run the full reliability analysis for one asset and print JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var assetID int64
		if _, err := fmt.Sscanf(args[0], "%d", &assetID); err != nil || assetID <= 0 {
			return fmt.Errorf("asset-id must be a positive integer, got %q", args[0])
		}

		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logger := utils.NewLogger("error", false)

		store, err := repo.Open(cfg.Database.Path)
		if err != nil {
			return err
		}
		defer store.Close()

		svc := services.NewAnalysisService(logger, store, nil, nil, services.Defaults{
			BootstrapResamples: cfg.Analysis.BootstrapResamples,
			BootstrapSeed:      cfg.Analysis.BootstrapSeed,
			CurvePoints:        cfg.Analysis.CurvePoints,
			Workers:            cfg.Analysis.Workers,
			ConfidenceAlpha:    cfg.Analysis.ConfidenceAlpha,
		})

		doc, err := svc.AnalyzeAsset(cmd.Context(), assetID, services.AnalysisOptions{
			BootstrapResamples: analyzeResamples,
			BootstrapSeed:      analyzeSeed,
			SkipCache:          true,
		})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	},
}

func init() {
	analyzeCmd.Flags().IntVar(&analyzeResamples, "resamples", 0, "bootstrap resamples (0 uses the configured default)")
	analyzeCmd.Flags().Int64Var(&analyzeSeed, "seed", 0, "bootstrap seed (0 uses the configured default)")
	rootCmd.AddCommand(analyzeCmd)
}
