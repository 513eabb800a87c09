package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"dilr/internal/domain"
	"dilr/internal/prompt"
	"dilr/internal/usecase"
)

var (
	promptText   string
	promptTopK   int
	promptSystem bool
)

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Render the model prompt without calling the model",
	Long: `Run retrieval and print the exact prompt a solve call would send,
for manual orchestration or prompt debugging.

Examples:
  dilr prompt -q "Eight friends sit around a table..."
  dilr prompt --system`,
	RunE: runPrompt,
}

func init() {
	rootCmd.AddCommand(promptCmd)
	promptCmd.Flags().StringVarP(&promptText, "question", "q", "", "question text")
	promptCmd.Flags().IntVarP(&promptTopK, "top-k", "k", 0, "number of reference examples (default from config)")
	promptCmd.Flags().BoolVar(&promptSystem, "system", false, "print the system prompt instead")
}

func runPrompt(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	root := GetRootDir()

	builder, err := prompt.NewBuilder(cfg.Prompt.MaxContextChars)
	if err != nil {
		return err
	}

	if promptSystem {
		fmt.Println(builder.System())
		return nil
	}

	if promptText == "" {
		return fmt.Errorf("must specify either --question or --system")
	}

	index, _, err := openIndex(cfg, root)
	if err != nil {
		return err
	}

	embedder, err := newEmbedder(cfg)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	ret, err := newRetriever(cfg, index, embedder)
	if err != nil {
		return err
	}

	topK := cfg.Retrieve.TopK
	if promptTopK > 0 {
		topK = promptTopK
	}

	solver := usecase.NewSolveUseCase(ret, newReranker(cfg), nil, nil, cfg.Retrieve.MinScore)
	retrieved, err := solver.Retrieve(promptText, topK)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	contexts := make([]domain.Problem, len(retrieved))
	for i, r := range retrieved {
		contexts[i] = r.Problem
	}

	rendered, err := builder.User(promptText, contexts)
	if err != nil {
		return err
	}
	fmt.Println(rendered)
	return nil
}
