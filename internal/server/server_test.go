package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"dilr/internal/adapter/analyzer"
	"dilr/internal/adapter/embedding"
	"dilr/internal/adapter/retriever"
	"dilr/internal/domain"
	"dilr/internal/prompt"
	"dilr/internal/usecase"
)

type fakeLLM struct {
	explanation domain.Explanation
}

func (f *fakeLLM) Explain(system, user string) (domain.Explanation, error) {
	return f.explanation, nil
}

func (f *fakeLLM) ModelName() string { return "fake" }

func testService(t *testing.T) *Service {
	return testServiceMinScore(t, 0)
}

func testServiceMinScore(t *testing.T, minScore float64) *Service {
	t.Helper()

	problems := []domain.Problem{
		{ID: "p1", Question: "Eight friends around a circular arrangement"},
		{ID: "p2", Question: "Five runners finish a race"},
	}
	embedder := embedding.NewMockEmbedder(16)

	index, err := usecase.NewBuildUseCase(embedder, 10, true).Build(problems, nil)
	if err != nil {
		t.Fatal(err)
	}

	builder, err := prompt.NewBuilder(0)
	if err != nil {
		t.Fatal(err)
	}

	sem := retriever.NewSemanticRetriever(index, embedder, true)
	mmr := retriever.NewMMRReranker(analyzer.NewTokenizer(), 0.7, 0.95)
	llm := &fakeLLM{explanation: domain.Explanation{Direct: "answer"}}

	solver := usecase.NewSolveUseCase(sem, mmr, builder, llm, minScore)
	return New(solver, index, 4, true)
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(testService(t).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var health struct {
		Status      string `json:"status"`
		Problems    int    `json:"problems"`
		StoreLoaded bool   `json:"store_loaded"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatal(err)
	}
	if health.Status != "ok" || health.Problems != 2 || !health.StoreLoaded {
		t.Errorf("unexpected health: %+v", health)
	}
}

func TestSolve(t *testing.T) {
	srv := httptest.NewServer(testService(t).Handler())
	defer srv.Close()

	body := strings.NewReader(`{"question":"who sits opposite","top_k":2}`)
	resp, err := http.Post(srv.URL+"/solve", "application/json", body)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result domain.SolveResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if result.Direct != "answer" {
		t.Errorf("unexpected direct answer: %q", result.Direct)
	}
	if len(result.RetrievedIDs) == 0 {
		t.Error("expected retrieved ids")
	}
}

func TestSolve_BadRequests(t *testing.T) {
	srv := httptest.NewServer(testService(t).Handler())
	defer srv.Close()

	tests := []struct {
		name string
		body string
	}{
		{"empty question", `{"question":""}`},
		{"negative top_k", `{"question":"q","top_k":-1}`},
		{"malformed json", `{"question":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/solve", "application/json", strings.NewReader(tt.body))
			if err != nil {
				t.Fatal(err)
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", resp.StatusCode)
			}
		})
	}
}

func TestSolve_NoMatchesIs404(t *testing.T) {
	// A min-score threshold above any cosine similarity filters every
	// candidate even though the store is non-empty.
	srv := httptest.NewServer(testServiceMinScore(t, 2.0).Handler())
	defer srv.Close()

	body := strings.NewReader(`{"question":"who sits opposite","top_k":2}`)
	resp, err := http.Post(srv.URL+"/solve", "application/json", body)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestSolve_MethodNotAllowed(t *testing.T) {
	srv := httptest.NewServer(testService(t).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/solve")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", resp.StatusCode)
	}
}
