package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"dilr/internal/adapter/llm"
	"dilr/internal/prompt"
	"dilr/internal/usecase"
)

var (
	solveText string
	solveTopK int
	solveJSON bool
)

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Explain a reasoning problem in four styles",
	Long: `Retrieve the most similar worked examples, send them with the question
to the chat model, and print the explanation in four styles.

Examples:
  dilr solve -q "Eight friends sit around a circular table..."
  dilr solve -q "..." --top-k 6 --json`,
	RunE: runSolve,
}

func init() {
	rootCmd.AddCommand(solveCmd)
	solveCmd.Flags().StringVarP(&solveText, "question", "q", "", "question text (required)")
	solveCmd.Flags().IntVarP(&solveTopK, "top-k", "k", 0, "number of reference examples (default from config)")
	solveCmd.Flags().BoolVar(&solveJSON, "json", false, "output as JSON")
	solveCmd.MarkFlagRequired("question")
}

func runSolve(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	root := GetRootDir()

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

	builder, err := prompt.NewBuilder(cfg.Prompt.MaxContextChars)
	if err != nil {
		return err
	}

	model, err := llm.NewClient(cfg.LLM)
	if err != nil {
		return fmt.Errorf("failed to create chat client: %w", err)
	}

	topK := cfg.Retrieve.TopK
	if solveTopK > 0 {
		topK = solveTopK
	}

	solver := usecase.NewSolveUseCase(ret, newReranker(cfg), builder, model, cfg.Retrieve.MinScore)
	result, err := solver.Solve(solveText, topK)
	if err != nil {
		return fmt.Errorf("solve failed: %w", err)
	}

	if solveJSON {
		output, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	divider := strings.Repeat("=", 70)
	fmt.Println(divider)
	fmt.Println("DIRECT ANSWER")
	fmt.Println(divider)
	fmt.Println(result.Direct)
	fmt.Println()
	fmt.Println(divider)
	fmt.Println("STEP BY STEP")
	fmt.Println(divider)
	fmt.Println(result.StepByStep)
	fmt.Println()
	fmt.Println(divider)
	fmt.Println("INTUITIVE APPROACH")
	fmt.Println(divider)
	fmt.Println(result.Intuitive)
	fmt.Println()
	fmt.Println(divider)
	fmt.Println("SHORTCUT")
	fmt.Println(divider)
	fmt.Println(result.Shortcut)
	fmt.Println()
	fmt.Printf("Reference examples: %s\n", strings.Join(result.RetrievedIDs, ", "))

	return nil
}
