package ingest

import (
	"context"
	"errors"
	"log"
	"time"

	conndomain "mimir-backend/internal/connector/domain"
	connrepo "mimir-backend/internal/connector/repository"
	"mimir-backend/internal/connector/provider"
	"mimir-backend/internal/task/domain"
	"mimir-backend/internal/task/repository"

	"gorm.io/gorm"
)

// CredentialOpener rebuilds plaintext provider credentials from a stored
// connector row. Implemented by the connector usecase.
type CredentialOpener interface {
	Unseal(connector *conndomain.Connector) (*provider.Credentials, error)
}

// Service runs ingest cycles: fetch raw items per connector, normalize,
// dedup, persist, index. One connector's failure is recorded on its row
// and never stops the cycle.
type Service struct {
	tasks      repository.TaskRepository
	connectors connrepo.ConnectorRepository
	embeddings EmbeddingRepository
	vectors    VectorIndex
	registry   *provider.Registry
	opener     CredentialOpener
	dedup      *Deduplicator
}

func NewService(
	tasks repository.TaskRepository,
	connectors connrepo.ConnectorRepository,
	embeddings EmbeddingRepository,
	vectors VectorIndex,
	registry *provider.Registry,
	opener CredentialOpener,
) *Service {
	return &Service{
		tasks:      tasks,
		connectors: connectors,
		embeddings: embeddings,
		vectors:    vectors,
		registry:   registry,
		opener:     opener,
		dedup:      NewDeduplicator(tasks, vectors),
	}
}

// RunCycle ingests from every given connector and returns how many tasks
// were created in total.
func (s *Service) RunCycle(ctx context.Context, userID string, connectors []*conndomain.Connector) (int, error) {
	total := 0
	for _, connector := range connectors {
		created, err := s.ingestConnector(ctx, userID, connector)
		if err != nil {
			// Soft failure: record it, keep the cycle going
			log.Printf("[Ingest] Connector %s failed for user %s: %v", connector.Kind, userID, err)
			s.markFailed(connector, err)
			continue
		}
		total += created
	}
	return total, nil
}

func (s *Service) ingestConnector(ctx context.Context, userID string, connector *conndomain.Connector) (int, error) {
	creds, err := s.opener.Unseal(connector)
	if err != nil {
		return 0, err
	}
	p, err := s.registry.For(connector.Kind, creds)
	if err != nil {
		return 0, err
	}

	connector.Status = conndomain.StatusWorking
	if err := s.connectors.Update(connector); err != nil {
		return 0, err
	}

	items, err := p.Fetch(ctx)
	if err != nil {
		return 0, err
	}

	records := Normalize(userID, connector.Kind, items)
	records, err = s.dedup.Filter(ctx, userID, records)
	if err != nil {
		return 0, err
	}

	created := s.persist(ctx, userID, records)

	now := time.Now()
	connector.Status = conndomain.StatusConnected
	connector.LastChecked = &now
	connector.Message = ""
	if err := s.connectors.Update(connector); err != nil {
		return created, err
	}

	log.Printf("[Ingest] Connector %s created %d tasks for user %s", connector.Kind, created, userID)
	return created, nil
}

// persist writes the surviving records one by one. A duplicate-key error
// means a concurrent ingestion won the check-then-insert race for the same
// source ref; the losing record is discarded, not retried.
func (s *Service) persist(ctx context.Context, userID string, records []*domain.Task) int {
	created := 0
	for _, rec := range records {
		if err := s.tasks.Create(rec); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				continue
			}
			log.Printf("[Ingest] Failed to create task %q: %v", rec.Title, err)
			continue
		}
		created++
		s.index(ctx, userID, rec)
	}
	return created
}

// index inserts the new task's title into the vector index and records the
// embedding row. Best effort: the task exists either way, and a missed
// insert only delays semantic dedup until the next pass.
func (s *Service) index(ctx context.Context, userID string, task *domain.Task) {
	if s.vectors == nil {
		return
	}
	metadata := map[string]interface{}{
		"source_kind": task.SourceKind,
		"task_id":     task.ID,
	}
	if err := s.vectors.Upsert(ctx, userID, task.ID, task.Title, metadata); err != nil {
		log.Printf("[Ingest] Vector upsert failed for task %s: %v", task.ID, err)
		return
	}
	if s.embeddings == nil {
		return
	}
	sourceID := ""
	if task.SourceRef != nil {
		sourceID = *task.SourceRef
	}
	embedding := &Embedding{
		UserID:     userID,
		SourceKind: task.SourceKind,
		SourceID:   sourceID,
		VectorID:   task.ID,
		Provider:   "gemini/text-embedding-004",
	}
	if err := s.embeddings.Create(embedding); err != nil {
		log.Printf("[Ingest] Failed to record embedding for task %s: %v", task.ID, err)
	}
}

func (s *Service) markFailed(connector *conndomain.Connector, cause error) {
	now := time.Now()
	connector.Status = conndomain.StatusFailed
	connector.Message = cause.Error()
	connector.LastChecked = &now
	if err := s.connectors.Update(connector); err != nil {
		log.Printf("[Ingest] Failed to mark connector %s failed: %v", connector.Kind, err)
	}
}
