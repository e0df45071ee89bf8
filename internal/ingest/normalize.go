package ingest

import (
	"time"

	"mimir-backend/internal/connector/provider"
	"mimir-backend/internal/task/domain"
)

// Normalize maps provider raw items to task creation records. Pure: no
// lookups, no errors. Unparsable input degrades to defaults, it never
// rejects an item.
func Normalize(userID, kind string, items []provider.RawItem) []*domain.Task {
	tasks := make([]*domain.Task, 0, len(items))
	for _, item := range items {
		var ref *string
		if item.ID != "" {
			id := item.ID
			ref = &id
		}
		tasks = append(tasks, &domain.Task{
			UserID:      userID,
			Title:       normalizeTitle(item),
			Description: item.Snippet,
			Horizon:     domain.HorizonWeek, // initial guess, prioritizer may escalate
			Status:      domain.StatusTodo,
			SourceKind:  kind,
			SourceRef:   ref,
			SourceURL:   item.URL,
			DueDate:     parseDate(item.Due),
		})
	}
	return tasks
}

func normalizeTitle(item provider.RawItem) string {
	if item.Title != "" {
		return item.Title
	}
	if item.Subject != "" {
		return item.Subject
	}
	return "Untitled"
}

// parseDate reads the date prefix of an ISO-like string. Anything it
// cannot parse becomes nil.
func parseDate(val string) *time.Time {
	if val == "" {
		return nil
	}
	if len(val) > 10 {
		val = val[:10]
	}
	t, err := time.Parse("2006-01-02", val)
	if err != nil {
		return nil
	}
	return &t
}
