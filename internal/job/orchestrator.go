package job

import (
	"context"
	"fmt"
	"log"
	"time"

	"mimir-backend/internal/ingest"
	jobdomain "mimir-backend/internal/job/domain"
	"mimir-backend/internal/job/repository"
	"mimir-backend/internal/prioritize"
	taskdomain "mimir-backend/internal/task/domain"
	taskrepo "mimir-backend/internal/task/repository"
	"mimir-backend/pkg/ai"

	connrepo "mimir-backend/internal/connector/repository"
)

const suggestionCount = 3

// Orchestrator runs one Job end to end: ingest from every connected
// connector, or fall back to AI task suggestions when the user has none,
// then reprioritise everything. Transitions are one-way; a failed Job is
// resubmitted as a new one, never retried in place.
type Orchestrator struct {
	jobs        repository.JobRepository
	tasks       taskrepo.TaskRepository
	connectors  connrepo.ConnectorRepository
	ingestor    *ingest.Service
	prioritizer *prioritize.Prioritizer
	scorer      ai.ScorerService
}

func NewOrchestrator(
	jobs repository.JobRepository,
	tasks taskrepo.TaskRepository,
	connectors connrepo.ConnectorRepository,
	ingestor *ingest.Service,
	prioritizer *prioritize.Prioritizer,
	scorer ai.ScorerService,
) *Orchestrator {
	return &Orchestrator{
		jobs:        jobs,
		tasks:       tasks,
		connectors:  connectors,
		ingestor:    ingestor,
		prioritizer: prioritizer,
		scorer:      scorer,
	}
}

// Submit creates a pending Job row for the user.
func (o *Orchestrator) Submit(userID string) (*jobdomain.Job, error) {
	job := &jobdomain.Job{
		UserID:  userID,
		JobType: jobdomain.TypeSuggestTasks,
		Status:  jobdomain.StatusPending,
	}
	if err := o.jobs.Create(job); err != nil {
		return nil, err
	}
	return job, nil
}

// Run executes the job body. Tasks persisted before a late failure stay
// persisted; only the Job row records that the run went wrong.
func (o *Orchestrator) Run(ctx context.Context, jobID string) error {
	job, err := o.jobs.FindByID(jobID)
	if err != nil {
		return err
	}
	if job == nil {
		return fmt.Errorf("job %s not found", jobID)
	}

	job.Status = jobdomain.StatusInProgress
	if err := o.jobs.Update(job); err != nil {
		return err
	}
	log.Printf("[Job] Started job %s for user %s", job.ID, job.UserID)

	result, runErr := o.runBody(ctx, job.UserID)

	now := time.Now()
	job.FinishedAt = &now
	if runErr != nil {
		job.Status = jobdomain.StatusFailed
		job.Result = jobdomain.Result{"error": runErr.Error()}
		if err := o.jobs.Update(job); err != nil {
			return err
		}
		log.Printf("[Job] Job %s failed: %v", job.ID, runErr)
		return runErr
	}

	job.Status = jobdomain.StatusCompleted
	job.Result = result
	if err := o.jobs.Update(job); err != nil {
		return err
	}
	log.Printf("[Job] Completed job %s: %v", job.ID, result)
	return nil
}

func (o *Orchestrator) runBody(ctx context.Context, userID string) (result jobdomain.Result, runErr error) {
	defer func() {
		if r := recover(); r != nil {
			runErr = fmt.Errorf("job panicked: %v", r)
		}
	}()

	result = jobdomain.Result{}

	connected, err := o.connectors.FindConnected(userID)
	if err != nil {
		return nil, err
	}

	if len(connected) > 0 {
		created, err := o.ingestor.RunCycle(ctx, userID, connected)
		if err != nil {
			return nil, err
		}
		result["created_tasks"] = created
	} else {
		suggested := o.suggestTasks(ctx, userID)
		result["suggested_tasks"] = suggested
	}

	prioritized, err := o.prioritizer.Run(ctx, userID)
	if err != nil {
		return nil, err
	}
	result["prioritized_tasks"] = prioritized

	return result, nil
}

// suggestTasks fills an empty workspace with a few general tasks when the
// user has no data sources. Best effort: a failed or garbled model call
// just yields zero suggestions.
func (o *Orchestrator) suggestTasks(ctx context.Context, userID string) int {
	if o.scorer == nil {
		return 0
	}
	raw, err := o.scorer.SuggestTasks(ctx, suggestionCount)
	if err != nil {
		log.Printf("[Job] Task suggestion failed for user %s: %v", userID, err)
		return 0
	}
	arr, ok := ai.ExtractJSONArray(raw)
	if !ok {
		log.Printf("[Job] Suggestion output contained no JSON array for user %s", userID)
		return 0
	}

	created := 0
	for _, entry := range arr {
		obj, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		title, _ := obj["title"].(string)
		if title == "" {
			continue
		}
		horizon := taskdomain.HorizonWeek
		if h, ok := obj["horizon"].(string); ok {
			switch taskdomain.Horizon(h) {
			case taskdomain.HorizonToday, taskdomain.HorizonWeek, taskdomain.HorizonMonth:
				horizon = taskdomain.Horizon(h)
			}
		}
		task := &taskdomain.Task{
			UserID:     userID,
			Title:      title,
			Horizon:    horizon,
			Status:     taskdomain.StatusTodo,
			SourceKind: taskdomain.KindSuggestion,
		}
		if err := o.tasks.Create(task); err != nil {
			log.Printf("[Job] Failed to create suggested task %q: %v", title, err)
			continue
		}
		created++
	}
	return created
}
