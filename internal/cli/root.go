package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"dilr/config"
)

var (
	cfgFile string
	cfg     *config.Config
	rootDir string
)

var rootCmd = &cobra.Command{
	Use:   "dilr",
	Short: "DILR Reasoning Explainer - retrieve worked examples and explain puzzles in four styles",
	Long: `dilr indexes a curated dataset of logical-reasoning puzzles, retrieves
the worked examples most similar to a new question, and asks a chat model
to explain the question in four styles: direct answer, step-by-step with
progressive tables, intuitive approach, and exam shortcut.

Example usage:
  dilr build                          # Embed the dataset and save the store
  dilr query -q "circular seating"    # Inspect retrieval only
  dilr solve -q "Eight friends..."    # Full four-style explanation
  dilr serve                          # HTTP API on the configured address`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./dilr.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "root directory (default is current directory)")
}

func GetConfig() *config.Config {
	return cfg
}

func GetRootDir() string {
	return rootDir
}
