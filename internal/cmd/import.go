package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/reliastack/reliabase-engine/internal/config"
	"github.com/reliastack/reliabase-engine/internal/csvio"
	"github.com/reliastack/reliabase-engine/internal/repo"
)

var (
	importAssets    string
	importExposures string
	importEvents    string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import assets, exposures and events from CSV files",
	Long: `Import CSV files into the database. Assets are imported first so
that exposure and event rows can reference them by name.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if importAssets == "" && importExposures == "" && importEvents == "" {
			return fmt.Errorf("nothing to import: pass at least one of --assets, --exposures, --events")
		}

		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		store, err := repo.Open(cfg.Database.Path)
		if err != nil {
			return err
		}
		defer store.Close()

		if importAssets != "" {
			n, err := importFrom(importAssets, func(f *os.File) (int, error) {
				return csvio.ImportAssets(cmd.Context(), store, f)
			})
			if err != nil {
				return fmt.Errorf("import assets: %w", err)
			}
			fmt.Printf("imported %d assets\n", n)
		}
		if importExposures != "" {
			n, err := importFrom(importExposures, func(f *os.File) (int, error) {
				return csvio.ImportExposures(cmd.Context(), store, f)
			})
			if err != nil {
				return fmt.Errorf("import exposures: %w", err)
			}
			fmt.Printf("imported %d exposures\n", n)
		}
		if importEvents != "" {
			n, err := importFrom(importEvents, func(f *os.File) (int, error) {
				return csvio.ImportEvents(cmd.Context(), store, f)
			})
			if err != nil {
				return fmt.Errorf("import events: %w", err)
			}
			fmt.Printf("imported %d events\n", n)
		}
		return nil
	},
}

func importFrom(path string, fn func(*os.File) (int, error)) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return fn(f)
}

func init() {
	importCmd.Flags().StringVar(&importAssets, "assets", "", "CSV file of assets")
	importCmd.Flags().StringVar(&importExposures, "exposures", "", "CSV file of exposure logs")
	importCmd.Flags().StringVar(&importEvents, "events", "", "CSV file of events")
	rootCmd.AddCommand(importCmd)
}
