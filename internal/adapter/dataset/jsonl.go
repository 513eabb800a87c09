package dataset

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"dilr/internal/domain"
)

// Loader reads problem records from JSONL seed files.
type Loader struct {
	patterns []string
}

// NewLoader creates a loader for the given doublestar glob patterns.
func NewLoader(patterns []string) *Loader {
	if len(patterns) == 0 {
		patterns = []string{"data/*.jsonl"}
	}
	return &Loader{patterns: patterns}
}

// Load reads every file matched by the configured patterns, in sorted path
// order, and returns the decoded problems. A record that fails validation
// aborts the whole load: a partially usable dataset would silently skew
// retrieval.
func (l *Loader) Load(root string) ([]domain.Problem, error) {
	paths, err := l.resolve(root)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no dataset files match %v under %s", l.patterns, root)
	}

	var problems []domain.Problem
	seen := make(map[string]string) // id -> file
	for _, path := range paths {
		loaded, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		for _, p := range loaded {
			if prev, dup := seen[p.ID]; dup {
				return nil, fmt.Errorf("duplicate problem id %q in %s (first seen in %s)", p.ID, path, prev)
			}
			seen[p.ID] = path
		}
		problems = append(problems, loaded...)
	}

	return problems, nil
}

// LoadFile reads a single JSONL file: one problem per line, blank lines
// skipped.
func LoadFile(path string) ([]domain.Problem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset file: %w", err)
	}
	defer f.Close()

	var problems []domain.Problem
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		p, err := decodeProblem([]byte(line))
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
		problems = append(problems, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return problems, nil
}

func (l *Loader) resolve(root string) ([]string, error) {
	matched := make(map[string]struct{})
	for _, pattern := range l.patterns {
		if filepath.IsAbs(pattern) {
			base := filepath.VolumeName(pattern) + string(filepath.Separator)
			rel, err := filepath.Rel(base, pattern)
			if err != nil {
				return nil, err
			}
			hits, err := doublestar.Glob(os.DirFS(base), filepath.ToSlash(rel))
			if err != nil {
				return nil, fmt.Errorf("bad dataset pattern %q: %w", pattern, err)
			}
			for _, h := range hits {
				matched[filepath.Join(base, h)] = struct{}{}
			}
			continue
		}

		hits, err := doublestar.Glob(os.DirFS(root), filepath.ToSlash(pattern))
		if err != nil {
			return nil, fmt.Errorf("bad dataset pattern %q: %w", pattern, err)
		}
		for _, h := range hits {
			matched[filepath.Join(root, h)] = struct{}{}
		}
	}

	paths := make([]string, 0, len(matched))
	for p := range matched {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths, nil
}
