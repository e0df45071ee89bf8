package chroma

import (
	"context"
	"fmt"
	"log"
	"os"

	"mimir-backend/pkg/config"

	chroma "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings/gemini"
)

// Neighbor is one nearest-neighbor hit from the vector index.
type Neighbor struct {
	ID       string
	Distance float64
	Metadata map[string]interface{}
}

// Client wraps a single Chroma Cloud collection holding task title
// embeddings for all users. The owner id doubles as the namespace via a
// metadata filter, so per-user isolation does not need one collection per
// user.
type Client struct {
	client     chroma.Client
	embedFunc  *gemini.GeminiEmbeddingFunction
	collection chroma.Collection
}

func NewClient(cfg *config.Config) (*Client, error) {
	if cfg.ChromaAPIKey == "" {
		return nil, fmt.Errorf("CHROMA_API_KEY is required")
	}

	if cfg.GeminiAPIKey != "" {
		os.Setenv("GEMINI_API_KEY", cfg.GeminiAPIKey)
	}

	embedFunc, err := gemini.NewGeminiEmbeddingFunction(
		gemini.WithEnvAPIKey(),
		gemini.WithDefaultModel("text-embedding-004"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini embedding function: %w", err)
	}

	var client chroma.Client
	if cfg.ChromaDatabase != "" && cfg.ChromaTenant != "" {
		client, err = chroma.NewHTTPClient(
			chroma.WithBaseURL(chroma.ChromaCloudEndpoint),
			chroma.WithCloudAPIKey(cfg.ChromaAPIKey),
			chroma.WithDatabaseAndTenant(cfg.ChromaDatabase, cfg.ChromaTenant),
		)
	} else if cfg.ChromaTenant != "" {
		client, err = chroma.NewHTTPClient(
			chroma.WithBaseURL(chroma.ChromaCloudEndpoint),
			chroma.WithCloudAPIKey(cfg.ChromaAPIKey),
			chroma.WithTenant(cfg.ChromaTenant),
		)
	} else {
		client, err = chroma.NewHTTPClient(
			chroma.WithBaseURL(chroma.ChromaCloudEndpoint),
			chroma.WithCloudAPIKey(cfg.ChromaAPIKey),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create Chroma client: %w", err)
	}

	collection, err := client.GetOrCreateCollection(
		context.Background(),
		"tasks",
		chroma.WithEmbeddingFunctionCreate(embedFunc),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}

	log.Printf("[Chroma] Initialized client with collection: tasks")

	return &Client{
		client:     client,
		embedFunc:  embedFunc,
		collection: collection,
	}, nil
}

// Upsert inserts or replaces one embedded document in the owner's
// namespace. Using the task id as the document id makes re-ingestion of the
// same task a no-op on the index side.
func (c *Client) Upsert(ctx context.Context, namespace, id, text string, metadata map[string]interface{}) error {
	merged := map[string]interface{}{"user_id": namespace}
	for k, v := range metadata {
		merged[k] = v
	}
	docMeta, err := chroma.NewDocumentMetadataFromMap(merged)
	if err != nil {
		return fmt.Errorf("failed to create metadata: %w", err)
	}

	// Embedding models have token limits
	if len(text) > 10000 {
		text = text[:10000]
	}

	err = c.collection.Upsert(
		ctx,
		chroma.WithIDs(chroma.DocumentID(id)),
		chroma.WithMetadatas(docMeta),
		chroma.WithTexts(text),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert embedding: %w", err)
	}
	return nil
}

// NearestNeighbor returns the k closest documents to text within the
// owner's namespace, nearest first.
func (c *Client) NearestNeighbor(ctx context.Context, namespace, text string, k int) ([]Neighbor, error) {
	where := chroma.EqString("user_id", namespace)

	results, err := c.collection.Query(
		ctx,
		chroma.WithQueryTexts(text),
		chroma.WithNResults(k),
		chroma.WithWhereQuery(where),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection: %w", err)
	}
	if results == nil || results.CountGroups() == 0 {
		return nil, nil
	}

	idGroups := results.GetIDGroups()
	distanceGroups := results.GetDistancesGroups()
	if len(idGroups) == 0 || len(idGroups[0]) == 0 {
		return nil, nil
	}

	neighbors := make([]Neighbor, 0, len(idGroups[0]))
	for i, id := range idGroups[0] {
		n := Neighbor{ID: string(id)}
		if len(distanceGroups) > 0 && i < len(distanceGroups[0]) {
			n.Distance = float64(distanceGroups[0][i])
		}
		neighbors = append(neighbors, n)
	}
	return neighbors, nil
}
