package prompt

import (
	"strings"
	"testing"
	"unicode/utf8"

	"dilr/internal/domain"
)

func sample(id, question string) domain.Problem {
	return domain.Problem{
		ID:       id,
		Question: question,
		Solutions: domain.SolutionSet{
			Direct:     "answer " + id,
			StepByStep: "steps " + id,
			Intuitive:  "intuition " + id,
			Shortcut:   "shortcut " + id,
		},
	}
}

func TestBuilder_System(t *testing.T) {
	b, err := NewBuilder(0)
	if err != nil {
		t.Fatal(err)
	}
	sys := b.System()
	if !strings.Contains(sys, "step_by_step") {
		t.Errorf("system prompt missing format instructions: %q", sys[:80])
	}
	if !strings.Contains(sys, "TABLE 1") {
		t.Error("system prompt missing table structure")
	}
}

func TestBuilder_User(t *testing.T) {
	b, err := NewBuilder(0)
	if err != nil {
		t.Fatal(err)
	}

	out, err := b.User("Who sits opposite to A?", []domain.Problem{
		sample("p1", "circular seating"),
		sample("p2", "race ranking"),
	})
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{
		"Who sits opposite to A?",
		"Example p1:",
		"Example p2:",
		"Steps: steps p1",
		"Return your response as JSON",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("user prompt missing %q", want)
		}
	}
}

func TestBuilder_TruncatesLongSolutions(t *testing.T) {
	b, err := NewBuilder(0)
	if err != nil {
		t.Fatal(err)
	}

	long := sample("big", "q")
	long.Solutions.StepByStep = strings.Repeat("x", 5000)

	out, err := b.User("question", []domain.Problem{long})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "...[truncated for brevity]") {
		t.Error("long step_by_step should be truncated")
	}
	if strings.Contains(out, strings.Repeat("x", 1300)) {
		t.Error("truncation limit not applied")
	}
}

func TestTruncate_RuneBoundary(t *testing.T) {
	// "é" is two bytes; a limit landing inside it must back up to the
	// rune start instead of emitting half a rune.
	s := "abcé"
	got := truncate(s, 4)
	if !utf8.ValidString(got) {
		t.Errorf("truncate produced invalid UTF-8: %q", got)
	}
	if !strings.HasPrefix(got, "abc") {
		t.Errorf("unexpected prefix: %q", got)
	}

	if got := truncate("short", 10); got != "short" {
		t.Errorf("string under the limit must be untouched, got %q", got)
	}
}

func TestBuilder_ContextBudget(t *testing.T) {
	b, err := NewBuilder(400)
	if err != nil {
		t.Fatal(err)
	}

	contexts := []domain.Problem{
		sample("first", strings.Repeat("a", 150)),
		sample("second", strings.Repeat("b", 150)),
		sample("third", strings.Repeat("c", 150)),
	}

	out, err := b.User("question", contexts)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Example first:") {
		t.Error("first example must always be kept")
	}
	if strings.Contains(out, "Example third:") {
		t.Error("budget should have cut the third example")
	}
}
