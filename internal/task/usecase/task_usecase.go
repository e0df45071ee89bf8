package usecase

import (
	"errors"
	"time"

	"mimir-backend/internal/task/domain"
	"mimir-backend/internal/task/repository"
)

var (
	// ErrNotFound means the task id does not exist for this user.
	ErrNotFound = errors.New("task not found")
	// ErrInvalidID means the caller-supplied identifier is malformed.
	ErrInvalidID = errors.New("invalid task id")
)

// TaskUsecase covers the direct user actions on tasks: listing,
// completion and undo. Everything else mutating tasks goes through the
// ingestion pipeline or the prioritizer.
type TaskUsecase interface {
	GetUserTasks(userID string, horizon *domain.Horizon, limit int) ([]*domain.Task, error)
	CompleteTask(userID, taskID string) (*domain.Task, error)
	UndoTask(userID, taskID string) (*domain.Task, error)

	// SeedTasks inserts a small fixed set of tasks for development.
	// Idempotent: existing seeds are not duplicated.
	SeedTasks(userID string, reseed bool) error
}

type taskUsecase struct {
	taskRepo repository.TaskRepository
}

func NewTaskUsecase(taskRepo repository.TaskRepository) TaskUsecase {
	return &taskUsecase{taskRepo: taskRepo}
}

func (u *taskUsecase) GetUserTasks(userID string, horizon *domain.Horizon, limit int) ([]*domain.Task, error) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}
	return u.taskRepo.FindByUserID(userID, horizon, limit)
}

func (u *taskUsecase) CompleteTask(userID, taskID string) (*domain.Task, error) {
	task, err := u.ownedTask(userID, taskID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	task.Status = domain.StatusDone
	task.CompletedAt = &now
	if err := u.taskRepo.Update(task); err != nil {
		return nil, err
	}
	return task, nil
}

func (u *taskUsecase) UndoTask(userID, taskID string) (*domain.Task, error) {
	task, err := u.ownedTask(userID, taskID)
	if err != nil {
		return nil, err
	}

	task.Status = domain.StatusTodo
	task.CompletedAt = nil
	if err := u.taskRepo.Update(task); err != nil {
		return nil, err
	}
	return task, nil
}

func (u *taskUsecase) SeedTasks(userID string, reseed bool) error {
	if reseed {
		if err := u.taskRepo.DeleteByUserID(userID); err != nil {
			return err
		}
	}

	existing, err := u.taskRepo.FindByUserID(userID, nil, 50)
	if err != nil {
		return err
	}
	titles := map[string]bool{}
	for _, t := range existing {
		titles[t.Title] = true
	}

	for _, title := range []string{"Email CTO", "Update Kubernetes", "Purge S3 Buckets"} {
		if titles[title] {
			continue
		}
		task := &domain.Task{
			UserID:  userID,
			Title:   title,
			Horizon: domain.HorizonWeek,
			Status:  domain.StatusTodo,
		}
		if err := u.taskRepo.Create(task); err != nil {
			return err
		}
	}
	return nil
}

func (u *taskUsecase) ownedTask(userID, taskID string) (*domain.Task, error) {
	if taskID == "" {
		return nil, ErrInvalidID
	}
	task, err := u.taskRepo.FindByID(taskID)
	if err != nil {
		return nil, err
	}
	if task == nil || task.UserID != userID {
		return nil, ErrNotFound
	}
	return task, nil
}
