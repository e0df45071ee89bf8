package repository

import (
	"time"

	"mimir-backend/internal/task/domain"
)

// SourceRef identifies a task within its originating system.
type SourceRef struct {
	Kind string
	Ref  string
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task. Returns gorm.ErrDuplicatedKey (translated)
	// when the (owner, source_kind, source_ref) composite already exists.
	Create(task *domain.Task) error

	// FindByID finds a task by its ID
	FindByID(id string) (*domain.Task, error)

	// FindByUserID finds tasks for a user with an optional horizon filter
	FindByUserID(userID string, horizon *domain.Horizon, limit int) ([]*domain.Task, error)

	// FindActive returns the user's tasks with status != done,
	// the working set of the prioritizer
	FindActive(userID string) ([]*domain.Task, error)

	// FindForWindow returns tasks created at or after since OR still not
	// done, the selection rule of the graph builder
	FindForWindow(userID string, since time.Time) ([]*domain.Task, error)

	// ExistingSourceRefs returns the set of (kind, ref) pairs already
	// persisted for the user among the given kinds, in one query
	ExistingSourceRefs(userID string, kinds []string) (map[SourceRef]struct{}, error)

	// Update updates an existing task
	Update(task *domain.Task) error

	// DeleteByUserID removes all of a user's tasks. Reseed only.
	DeleteByUserID(userID string) error

	// FindLinks returns explicit links whose both endpoints are in taskIDs
	FindLinks(taskIDs []string) ([]*domain.TaskLink, error)

	// CreateLink creates an explicit link between two tasks
	CreateLink(link *domain.TaskLink) error
}
