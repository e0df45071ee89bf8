package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"mimir-backend/internal/task/domain"
	"mimir-backend/internal/task/repository"
	"mimir-backend/pkg/chroma"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTaskRepo struct {
	repository.TaskRepository
	existing map[repository.SourceRef]struct{}
}

func (s *stubTaskRepo) ExistingSourceRefs(userID string, kinds []string) (map[repository.SourceRef]struct{}, error) {
	if s.existing == nil {
		return map[repository.SourceRef]struct{}{}, nil
	}
	return s.existing, nil
}

type stubVectorIndex struct {
	neighbors map[string][]chroma.Neighbor
	err       error
}

func (s *stubVectorIndex) Upsert(ctx context.Context, namespace, id, text string, metadata map[string]interface{}) error {
	return nil
}

func (s *stubVectorIndex) NearestNeighbor(ctx context.Context, namespace, text string, k int) ([]chroma.Neighbor, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.neighbors[text], nil
}

func record(kind, ref, title string) *domain.Task {
	return &domain.Task{
		UserID:     "user-1",
		Title:      title,
		Horizon:    domain.HorizonWeek,
		Status:     domain.StatusTodo,
		SourceKind: kind,
		SourceRef:  &ref,
		CreatedAt:  time.Now(),
	}
}

func TestDeduplicatorExactStage(t *testing.T) {
	repo := &stubTaskRepo{existing: map[repository.SourceRef]struct{}{
		{Kind: domain.KindIssues, Ref: "PROJ-1"}: {},
	}}
	d := NewDeduplicator(repo, nil)

	records := []*domain.Task{
		record(domain.KindIssues, "PROJ-1", "Fix login bug"),
		record(domain.KindIssues, "PROJ-2", "Add pagination"),
	}
	kept, err := d.Filter(context.Background(), "user-1", records)
	require.NoError(t, err)
	require.Len(t, kept, 1)
	assert.Equal(t, "Add pagination", kept[0].Title)
}

func TestDeduplicatorSecondPassCreatesNothing(t *testing.T) {
	// After ingesting a batch once, every ref is in the existing set and
	// the same batch filters down to nothing.
	repo := &stubTaskRepo{existing: map[repository.SourceRef]struct{}{
		{Kind: domain.KindIssues, Ref: "PROJ-1"}: {},
		{Kind: domain.KindIssues, Ref: "PROJ-2"}: {},
	}}
	d := NewDeduplicator(repo, nil)

	records := []*domain.Task{
		record(domain.KindIssues, "PROJ-1", "Fix login bug"),
		record(domain.KindIssues, "PROJ-2", "Add pagination"),
	}
	kept, err := d.Filter(context.Background(), "user-1", records)
	require.NoError(t, err)
	assert.Empty(t, kept)
}

func TestDeduplicatorSemanticStage(t *testing.T) {
	repo := &stubTaskRepo{}

	t.Run("drops records below the distance threshold", func(t *testing.T) {
		vectors := &stubVectorIndex{neighbors: map[string][]chroma.Neighbor{
			"Fix login bug":  {{ID: "t-1", Distance: 0.08}},
			"Add pagination": {{ID: "t-2", Distance: 0.42}},
		}}
		d := NewDeduplicator(repo, vectors)

		kept, err := d.Filter(context.Background(), "user-1", []*domain.Task{
			record(domain.KindIssues, "PROJ-1", "Fix login bug"),
			record(domain.KindIssues, "PROJ-2", "Add pagination"),
		})
		require.NoError(t, err)
		require.Len(t, kept, 1)
		assert.Equal(t, "Add pagination", kept[0].Title)
	})

	t.Run("distance at the threshold is kept", func(t *testing.T) {
		vectors := &stubVectorIndex{neighbors: map[string][]chroma.Neighbor{
			"Fix login bug": {{ID: "t-1", Distance: SemanticDistanceThreshold}},
		}}
		d := NewDeduplicator(repo, vectors)

		kept, err := d.Filter(context.Background(), "user-1", []*domain.Task{
			record(domain.KindIssues, "PROJ-1", "Fix login bug"),
		})
		require.NoError(t, err)
		assert.Len(t, kept, 1)
	})

	t.Run("lookup failure keeps the record", func(t *testing.T) {
		vectors := &stubVectorIndex{err: errors.New("index unavailable")}
		d := NewDeduplicator(repo, vectors)

		kept, err := d.Filter(context.Background(), "user-1", []*domain.Task{
			record(domain.KindIssues, "PROJ-1", "Fix login bug"),
		})
		require.NoError(t, err)
		assert.Len(t, kept, 1)
	})

	t.Run("nil index skips the stage", func(t *testing.T) {
		d := NewDeduplicator(repo, nil)

		kept, err := d.Filter(context.Background(), "user-1", []*domain.Task{
			record(domain.KindIssues, "PROJ-1", "Fix login bug"),
		})
		require.NoError(t, err)
		assert.Len(t, kept, 1)
	})
}
