package ai

import (
	"context"
	"fmt"
	"strings"
)

// TaskContext is the task snapshot handed to a scorer. All fields are
// plain strings so providers can drop them straight into a prompt.
type TaskContext struct {
	Title       string
	Description string
	SourceKind  string
	SourceRef   string
	DueDate     string
	Horizon     string
	CreatedAt   string
}

// ScorerService is the contract for the agent scoring strategy and the
// no-source task suggestion fallback. Implementations return the model's
// raw text output; callers extract and validate JSON from it and fall back
// to heuristics when that fails. Nothing downstream may treat an error or
// malformed output as fatal.
// Implement this interface to add new AI providers (Gemini, Ollama, OpenAI, etc.)
type ScorerService interface {
	ScoreTask(ctx context.Context, task TaskContext) (string, error)
	SuggestTasks(ctx context.Context, count int) (string, error)
}

// ProviderType represents the AI provider type
type ProviderType string

const (
	ProviderGemini ProviderType = "gemini"
	ProviderOllama ProviderType = "ollama"
	ProviderAuto   ProviderType = "auto"
)

func scorePrompt(task TaskContext) string {
	var b strings.Builder
	b.WriteString(`Score this task for prioritisation. Provide ONLY JSON.
Fields required: urgency, importance, recency, source_signal (floats 0..1) and suggested_horizon (today|week|month).
If unsure, estimate conservatively.

`)
	fmt.Fprintf(&b, "Title: %s\n", task.Title)
	fmt.Fprintf(&b, "Description: %s\n", task.Description)
	fmt.Fprintf(&b, "Source Kind: %s\n", orUnknown(task.SourceKind))
	fmt.Fprintf(&b, "Source Ref: %s\n", task.SourceRef)
	fmt.Fprintf(&b, "Due Date: %s\n", task.DueDate)
	fmt.Fprintf(&b, "Current Horizon: %s\n", orDefault(task.Horizon, "month"))
	fmt.Fprintf(&b, "Created At: %s\n", task.CreatedAt)
	return b.String()
}

func suggestPrompt(count int) string {
	return fmt.Sprintf(`Generate %d varied, realistic work-related tasks for a user. The user has no connected data sources, so make them general and creative.

Return the tasks as a JSON array, where each object has:
- "title": string (task description)
- "horizon": string, one of "today", "week", "month"

Example format:
[
    {"title": "Draft the Q4 marketing plan", "horizon": "week"},
    {"title": "Book flights for the upcoming conference", "horizon": "today"}
]

Your response should only contain the JSON array.`, count)
}

func orUnknown(s string) string {
	return orDefault(s, "unknown")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
