package ingest

import (
	"context"
	"log"

	"mimir-backend/internal/task/domain"
	"mimir-backend/internal/task/repository"
)

// SemanticDistanceThreshold is the nearest-neighbor distance below which a
// normalized record counts as a duplicate of an existing task. Tuned for
// the default embedding model; swapping providers likely needs a new value.
const SemanticDistanceThreshold = 0.15

// Deduplicator filters normalized records against the owner's existing
// tasks: a bulk exact source-ref stage first, then a per-item semantic
// stage over whatever survives. Order matters, the exact stage is one
// query while the semantic stage costs a vector lookup per record.
type Deduplicator struct {
	tasks   repository.TaskRepository
	vectors VectorIndex
}

func NewDeduplicator(tasks repository.TaskRepository, vectors VectorIndex) *Deduplicator {
	return &Deduplicator{tasks: tasks, vectors: vectors}
}

// Filter returns the records that are not duplicates of persisted tasks.
func (d *Deduplicator) Filter(ctx context.Context, userID string, records []*domain.Task) ([]*domain.Task, error) {
	records, err := d.exactStage(userID, records)
	if err != nil {
		return nil, err
	}
	return d.semanticStage(ctx, userID, records), nil
}

func (d *Deduplicator) exactStage(userID string, records []*domain.Task) ([]*domain.Task, error) {
	kindSet := map[string]bool{}
	for _, rec := range records {
		if rec.SourceRef != nil {
			kindSet[rec.SourceKind] = true
		}
	}
	if len(kindSet) == 0 {
		return records, nil
	}
	kinds := make([]string, 0, len(kindSet))
	for k := range kindSet {
		kinds = append(kinds, k)
	}

	existing, err := d.tasks.ExistingSourceRefs(userID, kinds)
	if err != nil {
		return nil, err
	}

	kept := records[:0]
	for _, rec := range records {
		if rec.SourceRef != nil {
			key := repository.SourceRef{Kind: rec.SourceKind, Ref: *rec.SourceRef}
			if _, dup := existing[key]; dup {
				continue
			}
		}
		kept = append(kept, rec)
	}
	return kept, nil
}

// semanticStage drops records whose title sits closer than the threshold
// to an already-indexed task. This catches the same underlying item
// rephrased across sources or reprocessed after a title edit. Lookup
// failures keep the record: a degraded index must not block ingestion.
func (d *Deduplicator) semanticStage(ctx context.Context, userID string, records []*domain.Task) []*domain.Task {
	if d.vectors == nil {
		return records
	}

	kept := records[:0]
	for _, rec := range records {
		neighbors, err := d.vectors.NearestNeighbor(ctx, userID, rec.Title, 1)
		if err != nil {
			log.Printf("[Dedup] Vector lookup failed for %q: %v", rec.Title, err)
			kept = append(kept, rec)
			continue
		}
		if len(neighbors) > 0 && neighbors[0].Distance < SemanticDistanceThreshold {
			continue
		}
		kept = append(kept, rec)
	}
	return kept
}
