package repository

import (
	"errors"
	"testing"
	"time"

	"mimir-backend/internal/task/domain"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRepo(t *testing.T) TaskRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Task{}, &domain.TaskLink{}))
	return NewGormTaskRepository(db)
}

func newTask(userID, kind, ref, title string) *domain.Task {
	task := &domain.Task{
		UserID:     userID,
		Title:      title,
		Horizon:    domain.HorizonWeek,
		Status:     domain.StatusTodo,
		SourceKind: kind,
	}
	if ref != "" {
		task.SourceRef = &ref
	}
	return task
}

func TestCreateEnforcesSourceUniqueness(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.Create(newTask("user-1", domain.KindIssues, "PROJ-1", "First")))

	err := repo.Create(newTask("user-1", domain.KindIssues, "PROJ-1", "Duplicate"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey))

	// Same ref under another user or kind is fine
	require.NoError(t, repo.Create(newTask("user-2", domain.KindIssues, "PROJ-1", "Other user")))
	require.NoError(t, repo.Create(newTask("user-1", domain.KindCode, "PROJ-1", "Other kind")))
}

func TestCreateAllowsMultipleNilRefs(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.Create(newTask("user-1", "", "", "Manual one")))
	require.NoError(t, repo.Create(newTask("user-1", "", "", "Manual two")))
}

func TestExistingSourceRefs(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.Create(newTask("user-1", domain.KindIssues, "PROJ-1", "a")))
	require.NoError(t, repo.Create(newTask("user-1", domain.KindMail, "msg-1", "b")))
	require.NoError(t, repo.Create(newTask("user-2", domain.KindIssues, "PROJ-2", "c")))
	require.NoError(t, repo.Create(newTask("user-1", "", "", "no ref")))

	existing, err := repo.ExistingSourceRefs("user-1", []string{domain.KindIssues, domain.KindMail})
	require.NoError(t, err)
	assert.Len(t, existing, 2)
	assert.Contains(t, existing, SourceRef{Kind: domain.KindIssues, Ref: "PROJ-1"})
	assert.Contains(t, existing, SourceRef{Kind: domain.KindMail, Ref: "msg-1"})

	empty, err := repo.ExistingSourceRefs("user-1", nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestFindActiveExcludesDone(t *testing.T) {
	repo := newTestRepo(t)

	open := newTask("user-1", "", "", "Open")
	require.NoError(t, repo.Create(open))

	closed := newTask("user-1", "", "", "Closed")
	require.NoError(t, repo.Create(closed))
	closed.Status = domain.StatusDone
	require.NoError(t, repo.Update(closed))

	active, err := repo.FindActive("user-1")
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Open", active[0].Title)
}

func TestFindForWindowKeepsActiveOutsideWindow(t *testing.T) {
	repo := newTestRepo(t)

	old := newTask("user-1", "", "", "Old but active")
	old.CreatedAt = time.Now().AddDate(0, 0, -60)
	require.NoError(t, repo.Create(old))

	oldDone := newTask("user-1", "", "", "Old and done")
	oldDone.CreatedAt = time.Now().AddDate(0, 0, -60)
	require.NoError(t, repo.Create(oldDone))
	oldDone.Status = domain.StatusDone
	require.NoError(t, repo.Update(oldDone))

	recentDone := newTask("user-1", "", "", "Recent and done")
	require.NoError(t, repo.Create(recentDone))
	recentDone.Status = domain.StatusDone
	require.NoError(t, repo.Update(recentDone))

	since := time.Now().AddDate(0, 0, -30)
	tasks, err := repo.FindForWindow("user-1", since)
	require.NoError(t, err)

	titles := make([]string, 0, len(tasks))
	for _, task := range tasks {
		titles = append(titles, task.Title)
	}
	assert.ElementsMatch(t, []string{"Old but active", "Recent and done"}, titles)
}

func TestFindByUserIDOrdersByPriority(t *testing.T) {
	repo := newTestRepo(t)

	low := newTask("user-1", "", "", "Low")
	lowP := 0.2
	low.Priority = &lowP
	require.NoError(t, repo.Create(low))

	high := newTask("user-1", "", "", "High")
	highP := 0.9
	high.Priority = &highP
	require.NoError(t, repo.Create(high))

	unscored := newTask("user-1", "", "", "Unscored")
	require.NoError(t, repo.Create(unscored))

	tasks, err := repo.FindByUserID("user-1", nil, 10)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, "High", tasks[0].Title)
	assert.Equal(t, "Low", tasks[1].Title)
	assert.Equal(t, "Unscored", tasks[2].Title)
}

func TestFindByUserIDHorizonFilter(t *testing.T) {
	repo := newTestRepo(t)

	today := newTask("user-1", "", "", "Today task")
	today.Horizon = domain.HorizonToday
	require.NoError(t, repo.Create(today))
	require.NoError(t, repo.Create(newTask("user-1", "", "", "Week task")))

	horizon := domain.HorizonToday
	tasks, err := repo.FindByUserID("user-1", &horizon, 10)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Today task", tasks[0].Title)
}

func TestLinks(t *testing.T) {
	repo := newTestRepo(t)

	a := newTask("user-1", "", "", "Parent")
	b := newTask("user-1", "", "", "Child")
	require.NoError(t, repo.Create(a))
	require.NoError(t, repo.Create(b))
	require.NoError(t, repo.CreateLink(&domain.TaskLink{Parent: a.ID, Child: b.ID, Kind: domain.LinkRelatesTo}))

	links, err := repo.FindLinks([]string{a.ID, b.ID})
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, a.ID, links[0].Parent)

	// Link with an endpoint outside the set is not returned
	links, err = repo.FindLinks([]string{a.ID})
	require.NoError(t, err)
	assert.Empty(t, links)
}
