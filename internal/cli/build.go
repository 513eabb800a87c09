package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"dilr/internal/adapter/dataset"
	"dilr/internal/adapter/store"
	"dilr/internal/usecase"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Embed the dataset and save the vector store",
	Long: `Load the seed JSONL files, embed every problem through the configured
embedding API, and save the resulting vector store snapshot.

Examples:
  dilr build                       # Use dataset patterns from config
  dilr build --dir /path/to/data   # Resolve patterns under another root`,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	root := GetRootDir()

	fmt.Printf("Loading dataset from %v...\n", cfg.Dataset.Paths)
	loader := dataset.NewLoader(cfg.Dataset.Paths)
	problems, err := loader.Load(root)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}
	fmt.Printf("Found %d problems\n", len(problems))

	embedder, err := newEmbedder(cfg)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	bar := progressbar.NewOptions(len(problems),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(false),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("[cyan]Embedding[reset]"),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)

	build := usecase.NewBuildUseCase(embedder, cfg.Embedding.BatchSize, cfg.Embedding.Normalize)
	index, err := build.Build(problems, func(embedded, total int) {
		bar.Set(embedded)
	})
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	path := storePath(cfg, root)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}
	if err := store.Save(path, index, embedder.ModelName()); err != nil {
		return fmt.Errorf("failed to save vector store: %w", err)
	}

	fmt.Printf("\nBuild complete:\n")
	fmt.Printf("  Problems embedded: %d\n", index.Len())
	fmt.Printf("  Dimension:         %d\n", index.Dimension())
	fmt.Printf("  Model:             %s\n", embedder.ModelName())
	fmt.Printf("\nStore saved at: %s\n", path)
	return nil
}
