package cli

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"dilr/internal/adapter/llm"
	"dilr/internal/prompt"
	"dilr/internal/server"
	"dilr/internal/usecase"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the solve pipeline over HTTP",
	Long: `Load the vector store once and serve it for the lifetime of the process.

Endpoints:
  GET  /health  store and credential status
  POST /solve   {"question": "...", "top_k": 4}

Example:
  dilr serve --addr :8080`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	root := GetRootDir()

	index, meta, err := openIndex(cfg, root)
	if err != nil {
		return err
	}
	fmt.Printf("Loaded %d problems (dimension %d, model %s)\n", index.Len(), meta.Dimension, meta.Model)

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

	keysPresent := os.Getenv(cfg.Embedding.APIKeyEnv) != "" && os.Getenv(cfg.LLM.APIKeyEnv) != ""
	solver := usecase.NewSolveUseCase(ret, newReranker(cfg), builder, model, cfg.Retrieve.MinScore)
	svc := server.New(solver, index, cfg.Retrieve.TopK, keysPresent)

	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	fmt.Printf("Listening on %s\n", addr)
	return http.ListenAndServe(addr, svc.Handler())
}
