package prioritize

import (
	"context"
	"log"
	"math"
	"time"

	"mimir-backend/internal/task/domain"
	"mimir-backend/internal/task/repository"
)

var factorWeights = map[string]float64{
	"urgency":       0.4,
	"importance":    0.3,
	"recency":       0.2,
	"source_signal": 0.1,
}

var horizonBias = map[domain.Horizon]float64{
	domain.HorizonToday:  1.0,
	domain.HorizonWeek:   0.85,
	domain.HorizonMonth:  0.6,
	domain.HorizonPast7d: 0.3,
}

// Prioritizer recomputes priority and horizon for every non-done task of a
// user. Scoring strategy is chosen at construction: pass an AgentScorer for
// model-assisted scoring or nil for pure heuristics.
type Prioritizer struct {
	tasks repository.TaskRepository
	agent *AgentScorer
}

func NewPrioritizer(tasks repository.TaskRepository, agent *AgentScorer) *Prioritizer {
	return &Prioritizer{tasks: tasks, agent: agent}
}

// Run scores and reprioritises all active tasks for the user, returning how
// many were updated. A single task failing to persist does not stop the pass.
func (p *Prioritizer) Run(ctx context.Context, userID string) (int, error) {
	tasks, err := p.tasks.FindActive(userID)
	if err != nil {
		return 0, err
	}

	now := time.Now()
	updated := 0
	for _, task := range tasks {
		p.score(ctx, task, now)
		if err := p.tasks.Update(task); err != nil {
			log.Printf("[Prioritize] Failed to update task %s: %v", task.ID, err)
			continue
		}
		updated++
	}
	log.Printf("[Prioritize] Reprioritised %d tasks for user %s", updated, userID)
	return updated, nil
}

func (p *Prioritizer) score(ctx context.Context, task *domain.Task, now time.Time) {
	var scores Scores
	if p.agent != nil {
		scores = p.agent.Score(ctx, task, now)
	} else {
		scores = HeuristicScores(task, now)
	}

	task.PriorityFactors = domain.Factors{
		"urgency":           scores.Urgency,
		"importance":        scores.Importance,
		"recency":           scores.Recency,
		"source_signal":     scores.SourceSignal,
		"suggested_horizon": string(scores.SuggestedHorizon),
		"strategy":          scores.Strategy,
	}

	weighted := factorWeights["urgency"]*scores.Urgency +
		factorWeights["importance"]*scores.Importance +
		factorWeights["recency"]*scores.Recency +
		factorWeights["source_signal"]*scores.SourceSignal

	// Bias is keyed by the horizon the task holds now, before escalation,
	// so a promotion this pass does not also inflate this pass's score.
	bias, ok := horizonBias[task.Horizon]
	if !ok {
		bias = horizonBias[domain.HorizonMonth]
	}
	priority := round4(weighted) * bias
	task.Priority = &priority

	task.Horizon = escalate(task.Horizon, scores.SuggestedHorizon)
}

// escalate adopts the suggestion only when it is stricter than the current
// horizon under month < week < today. A task is never moved to a laxer
// horizon here, so a promoted urgent task cannot be quietly buried again.
func escalate(current, suggested domain.Horizon) domain.Horizon {
	if current == domain.HorizonPast7d {
		return current
	}
	if horizonRank(suggested) > horizonRank(current) {
		return suggested
	}
	return current
}

func horizonRank(h domain.Horizon) int {
	switch h {
	case domain.HorizonToday:
		return 3
	case domain.HorizonWeek:
		return 2
	case domain.HorizonMonth:
		return 1
	default:
		return 0
	}
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
