package prioritize

import (
	"time"

	"mimir-backend/internal/task/domain"
)

// Scores holds the four scoring factors plus the horizon the scorer would
// move the task to. Every factor is in [0, 1].
type Scores struct {
	Urgency          float64
	Importance       float64
	Recency          float64
	SourceSignal     float64
	SuggestedHorizon domain.Horizon
	Strategy         string
}

var importanceByKind = map[string]float64{
	domain.KindIssues: 0.9,
	domain.KindCode:   0.8,
	domain.KindMail:   0.6,
	domain.KindFiles:  0.5,
}

// HeuristicScores derives all factors from the task row alone, no model
// call involved.
func HeuristicScores(task *domain.Task, now time.Time) Scores {
	urgency := urgencyScore(task, now)
	s := Scores{
		Urgency:          urgency,
		Importance:       importanceScore(task.SourceKind),
		Recency:          recencyScore(task.CreatedAt, now),
		SourceSignal:     sourceSignalScore(task),
		SuggestedHorizon: suggestHorizon(urgency, task.Horizon),
		Strategy:         "heuristic",
	}
	return s
}

func urgencyScore(task *domain.Task, now time.Time) float64 {
	if task.DueDate == nil {
		if task.Horizon == domain.HorizonToday {
			return 0.6
		}
		return 0.35
	}
	days := daysUntil(*task.DueDate, now)
	switch {
	case days <= 0:
		return 1.0
	case days <= 2:
		return 0.85
	case days <= 7:
		return 0.6
	default:
		return 0.3
	}
}

func importanceScore(kind string) float64 {
	if v, ok := importanceByKind[kind]; ok {
		return v
	}
	return 0.5
}

func recencyScore(createdAt time.Time, now time.Time) float64 {
	if createdAt.IsZero() {
		return 0.5
	}
	age := now.Sub(createdAt)
	switch {
	case age < 6*time.Hour:
		return 0.9
	case age < 24*time.Hour:
		return 0.75
	case age < 72*time.Hour:
		return 0.6
	default:
		return 0.4
	}
}

func sourceSignalScore(task *domain.Task) float64 {
	if task.SourceRef == nil || *task.SourceRef == "" {
		return 0.5
	}
	if task.SourceKind == domain.KindIssues || task.SourceKind == domain.KindCode {
		return 0.7
	}
	return 0.5
}

// suggestHorizon maps urgency to a horizon. Low urgency keeps the task on
// its current horizon, defaulting to month.
func suggestHorizon(urgency float64, current domain.Horizon) domain.Horizon {
	switch {
	case urgency > 0.8:
		return domain.HorizonToday
	case urgency > 0.6:
		return domain.HorizonWeek
	default:
		if domain.ValidHorizon(current) {
			return current
		}
		return domain.HorizonMonth
	}
}

// daysUntil counts whole calendar days between the two timestamps' own
// dates. Due dates are stored at UTC midnight while now is wall-clock, so
// subtracting the instants directly would shift buckets near midnight.
func daysUntil(due, now time.Time) int {
	d := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, time.UTC)
	n := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return int(d.Sub(n).Hours() / 24)
}
