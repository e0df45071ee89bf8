package prioritize

import (
	"context"
	"testing"
	"time"

	"mimir-backend/internal/task/domain"
	"mimir-backend/internal/task/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTaskRepo struct {
	repository.TaskRepository
	active  []*domain.Task
	updated []*domain.Task
}

func (s *stubTaskRepo) FindActive(userID string) ([]*domain.Task, error) {
	return s.active, nil
}

func (s *stubTaskRepo) Update(task *domain.Task) error {
	s.updated = append(s.updated, task)
	return nil
}

func TestPrioritizerRun(t *testing.T) {
	now := time.Now()
	ref := "X-1"
	due := now // due today

	task := &domain.Task{
		ID:         "t-1",
		UserID:     "user-1",
		Title:      "Ship hotfix",
		Horizon:    domain.HorizonMonth,
		Status:     domain.StatusTodo,
		SourceKind: domain.KindIssues,
		SourceRef:  &ref,
		DueDate:    &due,
		CreatedAt:  now.Add(-1 * time.Hour),
	}
	repo := &stubTaskRepo{active: []*domain.Task{task}}
	p := NewPrioritizer(repo, nil)

	updated, err := p.Run(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, updated)
	require.Len(t, repo.updated, 1)

	// urgency 1.0 (due today), importance 0.9 (issue tracker), recency 0.9
	// (1h old), source_signal 0.7 (ref on issue tracker):
	// 0.4*1.0 + 0.3*0.9 + 0.2*0.9 + 0.1*0.7 = 0.92, biased by the month
	// horizon the task held before escalation.
	require.NotNil(t, task.Priority)
	assert.InDelta(t, 0.92*0.6, *task.Priority, 1e-9)

	// urgency > 0.8 escalates month to today
	assert.Equal(t, domain.HorizonToday, task.Horizon)

	require.NotNil(t, task.PriorityFactors)
	assert.Equal(t, "heuristic", task.PriorityFactors["strategy"])
	assert.Equal(t, string(domain.HorizonToday), task.PriorityFactors["suggested_horizon"])
	for _, key := range []string{"urgency", "importance", "recency", "source_signal"} {
		v, ok := task.PriorityFactors[key].(float64)
		require.True(t, ok, key)
		assert.GreaterOrEqual(t, v, 0.0, key)
		assert.LessOrEqual(t, v, 1.0, key)
	}
}

func TestEscalateOnlyTightens(t *testing.T) {
	assert.Equal(t, domain.HorizonToday, escalate(domain.HorizonMonth, domain.HorizonToday))
	assert.Equal(t, domain.HorizonWeek, escalate(domain.HorizonMonth, domain.HorizonWeek))
	assert.Equal(t, domain.HorizonToday, escalate(domain.HorizonToday, domain.HorizonMonth))
	assert.Equal(t, domain.HorizonWeek, escalate(domain.HorizonWeek, domain.HorizonWeek))
	assert.Equal(t, domain.HorizonPast7d, escalate(domain.HorizonPast7d, domain.HorizonToday))
}

func TestPriorityBiasKeyedByCurrentHorizon(t *testing.T) {
	now := time.Now()
	base := func(horizon domain.Horizon) *domain.Task {
		return &domain.Task{
			ID:        "t-" + string(horizon),
			UserID:    "user-1",
			Title:     "Same task",
			Horizon:   horizon,
			Status:    domain.StatusTodo,
			CreatedAt: now.Add(-100 * time.Hour),
		}
	}

	today := base(domain.HorizonToday)
	month := base(domain.HorizonMonth)

	repo := &stubTaskRepo{active: []*domain.Task{today, month}}
	p := NewPrioritizer(repo, nil)
	_, err := p.Run(context.Background(), "user-1")
	require.NoError(t, err)

	require.NotNil(t, today.Priority)
	require.NotNil(t, month.Priority)
	// Identical factors except urgency differs on the today horizon, so
	// just verify the bias ordering holds.
	assert.Greater(t, *today.Priority, *month.Priority)
}

func TestRound4(t *testing.T) {
	assert.InDelta(t, 0.1235, round4(0.123456), 1e-12)
	assert.InDelta(t, 0.92, round4(0.92), 1e-12)
	assert.InDelta(t, 0.0, round4(0.00004), 1e-12)
}
