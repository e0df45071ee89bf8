package prioritize

import (
	"context"
	"log"
	"time"

	"mimir-backend/internal/task/domain"
	"mimir-backend/pkg/ai"
)

// AgentScorer asks a model for the scoring factors and keeps the heuristic
// result as a per-field safety net. Model output is advisory: any missing,
// out-of-range, or unparseable field silently keeps its heuristic value, and
// a failed call drops back to pure heuristics for the whole task.
type AgentScorer struct {
	scorer ai.ScorerService
}

func NewAgentScorer(scorer ai.ScorerService) *AgentScorer {
	return &AgentScorer{scorer: scorer}
}

func (a *AgentScorer) Score(ctx context.Context, task *domain.Task, now time.Time) Scores {
	base := HeuristicScores(task, now)
	if a == nil || a.scorer == nil {
		return base
	}

	raw, err := a.scorer.ScoreTask(ctx, taskContext(task))
	if err != nil {
		log.Printf("[Prioritize] Agent scoring failed for task %s, using heuristics: %v", task.ID, err)
		return base
	}
	obj, ok := ai.ExtractJSONObject(raw)
	if !ok {
		log.Printf("[Prioritize] Agent returned no JSON object for task %s, using heuristics", task.ID)
		return base
	}

	scores := base
	scores.Strategy = "agent"
	scores.Urgency = mergeFactor(obj, "urgency", base.Urgency)
	scores.Importance = mergeFactor(obj, "importance", base.Importance)
	scores.Recency = mergeFactor(obj, "recency", base.Recency)
	scores.SourceSignal = mergeFactor(obj, "source_signal", base.SourceSignal)
	if h, ok := obj["suggested_horizon"].(string); ok {
		// Only the schedulable horizons are accepted from the model;
		// past7d is derived from completion, never suggested.
		switch domain.Horizon(h) {
		case domain.HorizonToday, domain.HorizonWeek, domain.HorizonMonth:
			scores.SuggestedHorizon = domain.Horizon(h)
		}
	}
	return scores
}

// mergeFactor takes the model's value for one factor when it is numeric,
// clamped into [0, 1]. Non-numeric or missing fields keep the heuristic value.
func mergeFactor(obj map[string]interface{}, key string, fallback float64) float64 {
	v, ok := obj[key].(float64)
	if !ok {
		return fallback
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func taskContext(task *domain.Task) ai.TaskContext {
	tc := ai.TaskContext{
		Title:       task.Title,
		Description: task.Description,
		SourceKind:  task.SourceKind,
		Horizon:     string(task.Horizon),
		CreatedAt:   task.CreatedAt.Format(time.RFC3339),
	}
	if task.SourceRef != nil {
		tc.SourceRef = *task.SourceRef
	}
	if task.DueDate != nil {
		tc.DueDate = task.DueDate.Format("2006-01-02")
	}
	return tc
}
