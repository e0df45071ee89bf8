package domain

import "time"

// Horizon is the coarse due-by bucket for a task. past7d is retrospective:
// it only ever holds recently completed work.
type Horizon string

const (
	HorizonToday  Horizon = "today"
	HorizonWeek   Horizon = "week"
	HorizonMonth  Horizon = "month"
	HorizonPast7d Horizon = "past7d"
)

// ValidHorizon reports whether h is a known horizon value.
func ValidHorizon(h Horizon) bool {
	switch h {
	case HorizonToday, HorizonWeek, HorizonMonth, HorizonPast7d:
		return true
	}
	return false
}

// Status represents the current state of a task
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
	StatusScheduled  Status = "scheduled"
)

// Source kinds a task can originate from. KindTask tags locally-derived
// sub-tasks whose source_ref names their parent task.
const (
	KindMail       = "mail"
	KindIssues     = "issue-tracker"
	KindCode       = "code-host"
	KindFiles      = "file-store"
	KindTask       = "task"
	KindSuggestion = "suggestion"
)

// Factors is the persisted factor breakdown written by the scoring engine.
// Numeric entries are in [0,1]; suggested_horizon and strategy are strings.
type Factors map[string]interface{}

// Task is the canonical unit of work aggregated from external sources.
// (UserID, SourceKind, SourceRef) is unique whenever SourceRef is present;
// that composite is the exact-dedup key for ingestion.
type Task struct {
	ID              string     `json:"id" gorm:"primaryKey"`
	UserID          string     `json:"user_id" gorm:"index;not null;uniqueIndex:idx_tasks_owner_source"`
	Title           string     `json:"title" gorm:"not null"`
	Description     string     `json:"description,omitempty"`
	Horizon         Horizon    `json:"horizon" gorm:"default:week"`
	Status          Status     `json:"status" gorm:"default:todo"`
	SourceKind      string     `json:"source_kind,omitempty" gorm:"uniqueIndex:idx_tasks_owner_source"`
	SourceRef       *string    `json:"source_ref,omitempty" gorm:"uniqueIndex:idx_tasks_owner_source"`
	SourceURL       string     `json:"source_url,omitempty"`
	Priority        *float64   `json:"priority,omitempty"`
	PriorityFactors Factors    `json:"priority_factors,omitempty" gorm:"serializer:json"`
	DueDate         *time.Time `json:"due_date,omitempty" gorm:"type:date"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// TaskLink is a directed edge between two tasks. Implicit parent/sub-task
// structure is not stored here; the graph builder derives it on read from
// SourceRef, so edited refs never leave stale rows behind.
type TaskLink struct {
	Parent string `json:"parent" gorm:"primaryKey"`
	Child  string `json:"child" gorm:"primaryKey"`
	Kind   string `json:"kind" gorm:"not null;default:relates_to"`
}

// Link kinds for explicit TaskLink rows.
const (
	LinkRelatesTo   = "relates_to"
	LinkProgression = "progression"
)
