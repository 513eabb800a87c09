package cleanup

import (
	"strings"
	"testing"
)

const trustedSolution = `TABLE 1: DATA EXTRACTION

+------+------+
| Col1 | Col2 |
+------+------+
|  A   |  ?   |
+------+------+

EXPLANATION: From the question we extract the given cells.

TABLE 2: APPLY DIRECT CONSTRAINTS

+------+------+
| Col1 | Col2 |
+------+------+
|  A   |  X   |
+------+------+

EXPLANATION: Constraint one forces Col2 to X.`

func TestRepair_TrustedOutputUntouched(t *testing.T) {
	got := Repair("some puzzle", trustedSolution)
	if got != trustedSolution {
		t.Error("well-formed solution must pass through unchanged")
	}
}

func TestRepair_ExtractsDictLiteral(t *testing.T) {
	in := `tables: [{'table': '+---+\n| A |\n+---+'}] and then some reasoning`

	got := Repair("plain reasoning puzzle", in)
	if strings.Contains(got, "tables:") {
		t.Errorf("dict literal not removed: %q", got)
	}
	if !strings.Contains(got, "| A |") {
		t.Errorf("table body lost: %q", got)
	}
	if !strings.Contains(got, "+---+\n| A |") {
		t.Errorf("escaped newlines not expanded: %q", got)
	}
}

func TestRepair_ExtractsArrayLiteral(t *testing.T) {
	in := `tables: ['+---+---+', '| X | Y |', '+---+---+'] remaining text`

	got := Repair("plain reasoning puzzle", in)
	if strings.Contains(got, "tables:") {
		t.Errorf("array literal not removed: %q", got)
	}
	if !strings.Contains(got, "| X | Y |") {
		t.Errorf("rows lost: %q", got)
	}
}

func TestRepair_AppendsNoteWhenNoTables(t *testing.T) {
	got := Repair("why is the answer 4", "Because three plus one is four.")
	if !strings.Contains(got, "[NOTE:") {
		t.Errorf("expected advisory note, got %q", got)
	}
}

func TestRepair_ScaffoldsGridQuestions(t *testing.T) {
	got := Repair("Assign each person to a grid cell", "The assignment follows from the constraints.")
	if !strings.Contains(got, "TABLE 1: DATA EXTRACTION") {
		t.Errorf("expected starter table for grid question, got %q", got)
	}
	if !strings.Contains(got, "[NOTE:") {
		t.Errorf("expected advisory note too, got %q", got)
	}
}

func TestRepair_ScaffoldsCircularQuestions(t *testing.T) {
	got := Repair("Eight friends sit around a circle facing the centre", "Pair them off by opposites.")
	if !strings.Contains(got, "circular positions") {
		t.Errorf("expected circular starter, got %q", got)
	}
}

func TestRepair_CircularStarterSkippedWhenDiscussed(t *testing.T) {
	in := "Start from the arrangement given and rotate."
	got := Repair("Eight friends sit around a circle facing the centre", in)
	if strings.Contains(got, "circular positions") {
		t.Errorf("starter must be skipped when the solution covers the arrangement: %q", got)
	}
	if !strings.Contains(got, "[NOTE:") {
		t.Errorf("advisory note still expected: %q", got)
	}
}

func TestRepair_ScaffoldsVennQuestions(t *testing.T) {
	got := Repair("How many students like the overlap of tea and coffee", "Count both groups.")
	if !strings.Contains(got, "Venn diagram structure") {
		t.Errorf("expected Venn starter, got %q", got)
	}
}

func TestRepair_ScaffoldsRankingQuestions(t *testing.T) {
	got := Repair("Who finished first if B came before C", "B beat C by a margin.")
	if !strings.Contains(got, "ranking table") {
		t.Errorf("expected ranking starter, got %q", got)
	}
}

func TestRepair_ManySeparatorsTrusted(t *testing.T) {
	in := "+---+\n+---+\n+---+\n+---+\nsolution grid without numbered labels"
	if got := Repair("puzzle", in); got != in {
		t.Error("output with 4+ table separators must pass through unchanged")
	}
}
