package ingest

import (
	"testing"

	"mimir-backend/internal/connector/provider"
	"mimir-backend/internal/task/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Run("maps fields with defaults", func(t *testing.T) {
		items := []provider.RawItem{
			{ID: "PROJ-1", Title: "Fix login bug", Snippet: "500 on submit", URL: "https://issues.example/PROJ-1", Due: "2026-09-15"},
		}
		tasks := Normalize("user-1", domain.KindIssues, items)
		require.Len(t, tasks, 1)

		task := tasks[0]
		assert.Equal(t, "user-1", task.UserID)
		assert.Equal(t, "Fix login bug", task.Title)
		assert.Equal(t, "500 on submit", task.Description)
		assert.Equal(t, domain.HorizonWeek, task.Horizon)
		assert.Equal(t, domain.StatusTodo, task.Status)
		assert.Equal(t, domain.KindIssues, task.SourceKind)
		require.NotNil(t, task.SourceRef)
		assert.Equal(t, "PROJ-1", *task.SourceRef)
		require.NotNil(t, task.DueDate)
		assert.Equal(t, "2026-09-15", task.DueDate.Format("2006-01-02"))
	})

	t.Run("title falls back to subject then untitled", func(t *testing.T) {
		tasks := Normalize("user-1", domain.KindMail, []provider.RawItem{
			{ID: "m1", Subject: "Quarterly review"},
			{ID: "m2"},
		})
		require.Len(t, tasks, 2)
		assert.Equal(t, "Quarterly review", tasks[0].Title)
		assert.Equal(t, "Untitled", tasks[1].Title)
	})

	t.Run("missing id leaves source ref nil", func(t *testing.T) {
		tasks := Normalize("user-1", domain.KindMail, []provider.RawItem{{Title: "No ref"}})
		require.Len(t, tasks, 1)
		assert.Nil(t, tasks[0].SourceRef)
	})

	t.Run("unparsable due date becomes nil", func(t *testing.T) {
		tasks := Normalize("user-1", domain.KindIssues, []provider.RawItem{
			{ID: "a", Title: "Bad date", Due: "next tuesday"},
			{ID: "b", Title: "Timestamp date", Due: "2026-09-15T10:30:00Z"},
		})
		require.Len(t, tasks, 2)
		assert.Nil(t, tasks[0].DueDate)
		require.NotNil(t, tasks[1].DueDate)
		assert.Equal(t, "2026-09-15", tasks[1].DueDate.Format("2006-01-02"))
	})
}
