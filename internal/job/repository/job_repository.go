package repository

import (
	"time"

	"mimir-backend/internal/job/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JobRepository defines the interface for job data access
type JobRepository interface {
	Create(job *domain.Job) error
	FindByID(id string) (*domain.Job, error)
	FindByUserID(userID string, limit int) ([]*domain.Job, error)
	Update(job *domain.Job) error
}

type gormJobRepository struct {
	db *gorm.DB
}

func NewGormJobRepository(db *gorm.DB) JobRepository {
	return &gormJobRepository{db: db}
}

func (r *gormJobRepository) Create(job *domain.Job) error {
	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	if job.Status == "" {
		job.Status = domain.StatusPending
	}
	now := time.Now()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = now
	return r.db.Create(job).Error
}

func (r *gormJobRepository) FindByID(id string) (*domain.Job, error) {
	var job domain.Job
	err := r.db.Where("id = ?", id).First(&job).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &job, nil
}

func (r *gormJobRepository) FindByUserID(userID string, limit int) ([]*domain.Job, error) {
	var jobs []*domain.Job
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Find(&jobs).Error
	return jobs, err
}

func (r *gormJobRepository) Update(job *domain.Job) error {
	job.UpdatedAt = time.Now()
	return r.db.Save(job).Error
}
