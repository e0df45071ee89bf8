package repository

import (
	"time"

	"mimir-backend/internal/task/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// gormTaskRepository implements TaskRepository using GORM
type gormTaskRepository struct {
	db *gorm.DB
}

// NewGormTaskRepository creates a new GORM-based TaskRepository
func NewGormTaskRepository(db *gorm.DB) TaskRepository {
	return &gormTaskRepository{db: db}
}

func (r *gormTaskRepository) Create(task *domain.Task) error {
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	now := time.Now()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	task.UpdatedAt = now
	return r.db.Create(task).Error
}

func (r *gormTaskRepository) FindByID(id string) (*domain.Task, error) {
	var task domain.Task
	err := r.db.Where("id = ?", id).First(&task).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &task, nil
}

func (r *gormTaskRepository) FindByUserID(userID string, horizon *domain.Horizon, limit int) ([]*domain.Task, error) {
	var tasks []*domain.Task
	query := r.db.Where("user_id = ?", userID)
	if horizon != nil {
		query = query.Where("horizon = ?", *horizon)
	}
	err := query.Order("priority DESC NULLS LAST, created_at DESC").
		Limit(limit).Find(&tasks).Error
	return tasks, err
}

func (r *gormTaskRepository) FindActive(userID string) ([]*domain.Task, error) {
	var tasks []*domain.Task
	err := r.db.Where("user_id = ? AND status <> ?", userID, domain.StatusDone).
		Find(&tasks).Error
	return tasks, err
}

func (r *gormTaskRepository) FindForWindow(userID string, since time.Time) ([]*domain.Task, error) {
	var tasks []*domain.Task
	err := r.db.Where("user_id = ? AND (created_at >= ? OR status <> ?)",
		userID, since, domain.StatusDone).Find(&tasks).Error
	return tasks, err
}

func (r *gormTaskRepository) ExistingSourceRefs(userID string, kinds []string) (map[SourceRef]struct{}, error) {
	existing := make(map[SourceRef]struct{})
	if len(kinds) == 0 {
		return existing, nil
	}

	var rows []struct {
		SourceKind string
		SourceRef  string
	}
	err := r.db.Model(&domain.Task{}).
		Select("source_kind", "source_ref").
		Where("user_id = ? AND source_ref IS NOT NULL AND source_kind IN ?", userID, kinds).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		existing[SourceRef{Kind: row.SourceKind, Ref: row.SourceRef}] = struct{}{}
	}
	return existing, nil
}

func (r *gormTaskRepository) Update(task *domain.Task) error {
	task.UpdatedAt = time.Now()
	return r.db.Save(task).Error
}

func (r *gormTaskRepository) DeleteByUserID(userID string) error {
	return r.db.Where("user_id = ?", userID).Delete(&domain.Task{}).Error
}

func (r *gormTaskRepository) FindLinks(taskIDs []string) ([]*domain.TaskLink, error) {
	if len(taskIDs) == 0 {
		return nil, nil
	}
	var links []*domain.TaskLink
	err := r.db.Where("parent IN ? AND child IN ?", taskIDs, taskIDs).
		Find(&links).Error
	return links, err
}

func (r *gormTaskRepository) CreateLink(link *domain.TaskLink) error {
	return r.db.Create(link).Error
}
