// Package prompt renders the system and user prompts sent to the chat
// model, folding retrieved worked examples into a bounded context block.
package prompt

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"
	"unicode/utf8"

	"dilr/internal/domain"
)

//go:embed templates/*.txt
var promptTemplates embed.FS

// Per-field truncation keeps one long example from eating the context
// budget; step-by-step gets the most room because the tables are what the
// model is asked to imitate.
const (
	maxQuestionChars   = 200
	maxDirectChars     = 150
	maxStepByStepChars = 1200
	maxStyleChars      = 200

	defaultContextBudget = 5000
)

// Builder renders prompts from the embedded templates.
type Builder struct {
	userTmpl     *template.Template
	systemPrompt string
	contextChars int
}

// NewBuilder parses the embedded templates. maxContextChars bounds the
// reference-examples block; 0 uses the default budget.
func NewBuilder(maxContextChars int) (*Builder, error) {
	systemText, err := promptTemplates.ReadFile("templates/system.txt")
	if err != nil {
		return nil, fmt.Errorf("system template missing: %w", err)
	}

	userText, err := promptTemplates.ReadFile("templates/user.txt")
	if err != nil {
		return nil, fmt.Errorf("user template missing: %w", err)
	}
	tmpl, err := template.New("user").Parse(string(userText))
	if err != nil {
		return nil, fmt.Errorf("failed to parse user template: %w", err)
	}

	if maxContextChars <= 0 {
		maxContextChars = defaultContextBudget
	}

	return &Builder{
		userTmpl:     tmpl,
		systemPrompt: strings.TrimSpace(string(systemText)),
		contextChars: maxContextChars,
	}, nil
}

// System returns the system prompt.
func (b *Builder) System() string {
	return b.systemPrompt
}

// User renders the user prompt for a question and its retrieved examples.
func (b *Builder) User(question string, contexts []domain.Problem) (string, error) {
	data := struct {
		Question string
		Examples string
	}{
		Question: question,
		Examples: b.formatExamples(contexts),
	}

	var buf bytes.Buffer
	if err := b.userTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render user prompt: %w", err)
	}
	return buf.String(), nil
}

// formatExamples packs truncated examples until the budget would
// overflow. The first example is always kept so the model never goes in
// blind.
func (b *Builder) formatExamples(contexts []domain.Problem) string {
	var entries []string
	total := 0

	for _, ctx := range contexts {
		entry := fmt.Sprintf(
			"Example %s:\nQ: %s\nDirect: %s\nSteps: %s\nIntuitive: %s\nShortcut: %s\n",
			ctx.ID,
			truncate(ctx.Question, maxQuestionChars),
			truncate(ctx.Solutions.Direct, maxDirectChars),
			truncate(ctx.Solutions.StepByStep, maxStepByStepChars),
			truncate(ctx.Solutions.Intuitive, maxStyleChars),
			truncate(ctx.Solutions.Shortcut, maxStyleChars),
		)

		if total+len(entry) > b.contextChars && len(entries) > 0 {
			break
		}
		entries = append(entries, entry)
		total += len(entry)
	}

	return strings.Join(entries, "\n---\n")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	// Back up to a rune boundary so the cut never leaves invalid UTF-8.
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max] + "...[truncated for brevity]"
}
