package job

import (
	"context"
	"errors"
	"testing"

	conndomain "mimir-backend/internal/connector/domain"
	"mimir-backend/internal/connector/provider"
	"mimir-backend/internal/ingest"
	jobdomain "mimir-backend/internal/job/domain"
	"mimir-backend/internal/prioritize"
	taskdomain "mimir-backend/internal/task/domain"
	taskrepo "mimir-backend/internal/task/repository"
	"mimir-backend/pkg/ai"
	"mimir-backend/pkg/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memJobRepo struct {
	jobs map[string]*jobdomain.Job
}

func newMemJobRepo() *memJobRepo {
	return &memJobRepo{jobs: map[string]*jobdomain.Job{}}
}

func (r *memJobRepo) Create(job *jobdomain.Job) error {
	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	if job.Status == "" {
		job.Status = jobdomain.StatusPending
	}
	copied := *job
	r.jobs[job.ID] = &copied
	return nil
}

func (r *memJobRepo) FindByID(id string) (*jobdomain.Job, error) {
	job, ok := r.jobs[id]
	if !ok {
		return nil, nil
	}
	copied := *job
	return &copied, nil
}

func (r *memJobRepo) FindByUserID(userID string, limit int) ([]*jobdomain.Job, error) {
	var out []*jobdomain.Job
	for _, job := range r.jobs {
		if job.UserID == userID {
			out = append(out, job)
		}
	}
	return out, nil
}

func (r *memJobRepo) Update(job *jobdomain.Job) error {
	copied := *job
	r.jobs[job.ID] = &copied
	return nil
}

type stubConnectorRepo struct {
	connected []*conndomain.Connector
	err       error
}

func (s *stubConnectorRepo) Upsert(connector *conndomain.Connector) error { return nil }
func (s *stubConnectorRepo) FindByUserID(userID string) ([]*conndomain.Connector, error) {
	return s.connected, s.err
}
func (s *stubConnectorRepo) FindByUserAndKind(userID, kind string) (*conndomain.Connector, error) {
	return nil, nil
}
func (s *stubConnectorRepo) FindConnected(userID string) ([]*conndomain.Connector, error) {
	return s.connected, s.err
}
func (s *stubConnectorRepo) Update(connector *conndomain.Connector) error { return nil }

type stubTaskRepo struct {
	taskrepo.TaskRepository
	created []*taskdomain.Task
}

func (s *stubTaskRepo) Create(task *taskdomain.Task) error {
	s.created = append(s.created, task)
	return nil
}

func (s *stubTaskRepo) FindActive(userID string) ([]*taskdomain.Task, error) {
	return nil, nil
}

type stubScorer struct {
	response string
	err      error
}

func (s *stubScorer) ScoreTask(ctx context.Context, task ai.TaskContext) (string, error) {
	return s.response, s.err
}

func (s *stubScorer) SuggestTasks(ctx context.Context, count int) (string, error) {
	return s.response, s.err
}

type nilOpener struct{}

func (nilOpener) Unseal(connector *conndomain.Connector) (*provider.Credentials, error) {
	return nil, errors.New("no credentials")
}

func newTestOrchestrator(jobs *memJobRepo, tasks *stubTaskRepo, connectors *stubConnectorRepo, scorer ai.ScorerService) *Orchestrator {
	registry := provider.NewRegistry(&config.Config{})
	ingestor := ingest.NewService(tasks, connectors, nil, nil, registry, nilOpener{})
	prioritizer := prioritize.NewPrioritizer(tasks, nil)
	return NewOrchestrator(jobs, tasks, connectors, ingestor, prioritizer, scorer)
}

func TestRunSuggestsTasksWithoutConnectors(t *testing.T) {
	jobs := newMemJobRepo()
	tasks := &stubTaskRepo{}
	o := newTestOrchestrator(jobs, tasks, &stubConnectorRepo{}, &stubScorer{
		response: `[{"title": "Draft the Q4 marketing plan", "horizon": "week"},
			{"title": "Book conference flights", "horizon": "someday"}]`,
	})

	job, err := o.Submit("user-1")
	require.NoError(t, err)
	assert.Equal(t, jobdomain.StatusPending, job.Status)
	assert.Equal(t, jobdomain.TypeSuggestTasks, job.JobType)

	require.NoError(t, o.Run(context.Background(), job.ID))

	done, err := jobs.FindByID(job.ID)
	require.NoError(t, err)
	assert.Equal(t, jobdomain.StatusCompleted, done.Status)
	assert.Equal(t, jobdomain.TypeSuggestTasks, done.JobType)
	require.NotNil(t, done.FinishedAt)
	assert.Equal(t, 2, done.Result["suggested_tasks"])

	require.Len(t, tasks.created, 2)
	assert.Equal(t, taskdomain.KindSuggestion, tasks.created[0].SourceKind)
	assert.Equal(t, taskdomain.HorizonWeek, tasks.created[0].Horizon)
	// invalid horizon literal falls back to week
	assert.Equal(t, taskdomain.HorizonWeek, tasks.created[1].Horizon)
}

func TestRunToleratesGarbledSuggestions(t *testing.T) {
	jobs := newMemJobRepo()
	tasks := &stubTaskRepo{}
	o := newTestOrchestrator(jobs, tasks, &stubConnectorRepo{}, &stubScorer{
		response: "sorry, no tasks today",
	})

	job, err := o.Submit("user-1")
	require.NoError(t, err)
	require.NoError(t, o.Run(context.Background(), job.ID))

	done, _ := jobs.FindByID(job.ID)
	assert.Equal(t, jobdomain.StatusCompleted, done.Status)
	assert.Equal(t, 0, done.Result["suggested_tasks"])
	assert.Empty(t, tasks.created)
}

func TestRunWithoutScorerStillCompletes(t *testing.T) {
	jobs := newMemJobRepo()
	tasks := &stubTaskRepo{}
	o := newTestOrchestrator(jobs, tasks, &stubConnectorRepo{}, nil)

	job, err := o.Submit("user-1")
	require.NoError(t, err)
	require.NoError(t, o.Run(context.Background(), job.ID))

	done, _ := jobs.FindByID(job.ID)
	assert.Equal(t, jobdomain.StatusCompleted, done.Status)
	assert.Equal(t, 0, done.Result["suggested_tasks"])
}

func TestRunMarksJobFailed(t *testing.T) {
	jobs := newMemJobRepo()
	tasks := &stubTaskRepo{}
	o := newTestOrchestrator(jobs, tasks, &stubConnectorRepo{err: errors.New("db down")}, nil)

	job, err := o.Submit("user-1")
	require.NoError(t, err)
	require.Error(t, o.Run(context.Background(), job.ID))

	done, _ := jobs.FindByID(job.ID)
	assert.Equal(t, jobdomain.StatusFailed, done.Status)
	require.NotNil(t, done.FinishedAt)
	assert.Equal(t, "db down", done.Result["error"])
}

func TestRunUnknownJob(t *testing.T) {
	o := newTestOrchestrator(newMemJobRepo(), &stubTaskRepo{}, &stubConnectorRepo{}, nil)
	assert.Error(t, o.Run(context.Background(), "missing"))
}
