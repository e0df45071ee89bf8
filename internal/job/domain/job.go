package domain

import "time"

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// TypeSuggestTasks is the only job type today; the column keeps runs
// inspectable once more types exist.
const TypeSuggestTasks = "suggest_tasks"

// Result carries whatever the run produced: created/updated counts on
// success, an error message on failure.
type Result map[string]interface{}

// Job tracks one asynchronous ingest-and-prioritise run for one user.
// Status moves pending -> in_progress -> completed|failed, one way only;
// a failed run is resubmitted as a fresh Job.
type Job struct {
	ID         string     `json:"id" gorm:"primaryKey"`
	UserID     string     `json:"user_id" gorm:"index;not null"`
	JobType    string     `json:"job_type" gorm:"not null"`
	Status     Status     `json:"status" gorm:"not null;default:pending"`
	Result     Result     `json:"result,omitempty" gorm:"serializer:json"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}
