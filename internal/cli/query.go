package cli

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"dilr/internal/usecase"
)

var (
	queryText string
	queryTopK int
	queryJSON bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Retrieve similar worked examples without calling the model",
	Long: `Search the vector store for the problems most similar to a question.
Useful for inspecting what a solve call would feed the model.

Examples:
  dilr query -q "eight friends around a circular table"
  dilr query -q "train timetable grid" --top-k 10 --json`,
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVarP(&queryText, "query", "q", "", "question text (required)")
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of results (default from config)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output as JSON")
	queryCmd.MarkFlagRequired("query")
}

type queryResult struct {
	ID       string  `json:"id"`
	Score    float64 `json:"score"`
	Topic    string  `json:"topic,omitempty"`
	Question string  `json:"question"`
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	root := GetRootDir()

	index, meta, err := openIndex(cfg, root)
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
	if queryTopK > 0 {
		topK = queryTopK
	}

	solver := usecase.NewSolveUseCase(ret, newReranker(cfg), nil, nil, cfg.Retrieve.MinScore)
	retrieved, err := solver.Retrieve(queryText, topK)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	results := make([]queryResult, len(retrieved))
	for i, r := range retrieved {
		results[i] = queryResult{
			ID:       r.Problem.ID,
			Score:    r.Score,
			Topic:    r.Problem.Topic,
			Question: r.Problem.Question,
		}
	}

	if queryJSON {
		output, _ := json.MarshalIndent(results, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Printf("Found %d results (store: %d problems, model %s)\n\n", len(results), meta.Count, meta.Model)
	for i, r := range results {
		fmt.Printf("--- [%d] %s (score: %.4f) ---\n", i+1, r.ID, r.Score)
		text := r.Question
		if len(text) > 300 {
			cut := 300
			for cut > 0 && !utf8.RuneStart(text[cut]) {
				cut--
			}
			text = text[:cut] + "..."
		}
		fmt.Println(text)
		fmt.Println()
	}

	return nil
}
