package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/reliastack/reliabase-engine/internal/config"
	"github.com/reliastack/reliabase-engine/internal/csvio"
	"github.com/reliastack/reliabase-engine/internal/repo"
)

var exportDir string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export assets, exposures and events to CSV files",
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

		if err := os.MkdirAll(exportDir, 0o755); err != nil {
			return fmt.Errorf("create export directory: %w", err)
		}

		exports := []struct {
			name  string
			write func() error
		}{
			{"assets.csv", func() error {
				return withFile(filepath.Join(exportDir, "assets.csv"), func(f *os.File) error {
					return csvio.ExportAssets(cmd.Context(), store, f)
				})
			}},
			{"exposures.csv", func() error {
				return withFile(filepath.Join(exportDir, "exposures.csv"), func(f *os.File) error {
					return csvio.ExportExposures(cmd.Context(), store, f)
				})
			}},
			{"events.csv", func() error {
				return withFile(filepath.Join(exportDir, "events.csv"), func(f *os.File) error {
					return csvio.ExportEvents(cmd.Context(), store, f)
				})
			}},
		}
		for _, ex := range exports {
			if err := ex.write(); err != nil {
				return fmt.Errorf("export %s: %w", ex.name, err)
			}
			fmt.Printf("wrote %s\n", filepath.Join(exportDir, ex.name))
		}
		return nil
	},
}

func withFile(path string, fn func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func init() {
	exportCmd.Flags().StringVar(&exportDir, "dir", ".", "directory to write CSV files into")
	rootCmd.AddCommand(exportCmd)
}
