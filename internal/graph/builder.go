package graph

import (
	"time"

	"mimir-backend/internal/task/domain"
	"mimir-backend/internal/task/repository"
)

type Window string

const (
	WindowDay   Window = "day"
	WindowWeek  Window = "week"
	WindowMonth Window = "month"
)

type Lane string

const (
	LaneToday   Lane = "today"
	LaneWeek    Lane = "week"
	LaneMonth   Lane = "month"
	LanePast7d  Lane = "past7d"
	LaneArchive Lane = "archive"
)

// Node is one task placed on the timeline. Lane is derived at read time,
// never stored.
type Node struct {
	Task *domain.Task `json:"task"`
	Lane Lane         `json:"lane"`
}

type Edge struct {
	Parent string `json:"parent"`
	Child  string `json:"child"`
}

type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Builder assembles the task graph for a user: every task created inside
// the display window plus every still-active task, with lanes and edges.
type Builder struct {
	tasks repository.TaskRepository
}

func NewBuilder(tasks repository.TaskRepository) *Builder {
	return &Builder{tasks: tasks}
}

func windowDays(w Window) int {
	switch w {
	case WindowDay:
		return 1
	case WindowWeek:
		return 7
	default:
		return 30
	}
}

func (b *Builder) Build(userID string, window Window) (*Graph, error) {
	since := time.Now().AddDate(0, 0, -windowDays(window))
	tasks, err := b.tasks.FindForWindow(userID, since)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	graph := &Graph{Nodes: make([]Node, 0, len(tasks)), Edges: []Edge{}}

	selected := make(map[string]*domain.Task, len(tasks))
	ids := make([]string, 0, len(tasks))
	for _, task := range tasks {
		graph.Nodes = append(graph.Nodes, Node{Task: task, Lane: laneFor(task, now)})
		selected[task.ID] = task
		ids = append(ids, task.ID)
	}

	links, err := b.tasks.FindLinks(ids)
	if err != nil {
		return nil, err
	}
	seen := make(map[Edge]struct{})
	for _, link := range links {
		edge := Edge{Parent: link.Parent, Child: link.Child}
		if _, dup := seen[edge]; dup {
			continue
		}
		seen[edge] = struct{}{}
		graph.Edges = append(graph.Edges, edge)
	}

	// Sub-tasks carry their parent's identity in source_ref rather than a
	// stored link row, so those edges are rebuilt on every read.
	for _, task := range tasks {
		if task.SourceKind != domain.KindTask || task.SourceRef == nil {
			continue
		}
		if _, ok := selected[*task.SourceRef]; !ok {
			continue
		}
		edge := Edge{Parent: *task.SourceRef, Child: task.ID}
		if _, dup := seen[edge]; dup {
			continue
		}
		seen[edge] = struct{}{}
		graph.Edges = append(graph.Edges, edge)
	}

	return graph, nil
}

// laneFor buckets a task for display. Rules apply in order: recently
// finished work first, then the active horizons, everything else archives.
func laneFor(task *domain.Task, now time.Time) Lane {
	done := task.Status == domain.StatusDone
	if done && task.CompletedAt != nil && now.Sub(*task.CompletedAt) <= 7*24*time.Hour {
		return LanePast7d
	}
	if !done {
		switch task.Horizon {
		case domain.HorizonToday:
			return LaneToday
		case domain.HorizonWeek:
			return LaneWeek
		case domain.HorizonMonth:
			return LaneMonth
		}
	}
	return LaneArchive
}
