package job

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

// Message is the payload published per submitted Job.
type Message struct {
	JobID  string `json:"job_id"`
	UserID string `json:"user_id"`
}

// Dispatcher hands a submitted Job off for execution. The Pub/Sub
// implementation runs it on a background worker; InlineDispatcher runs it
// in-process with the same semantics when no broker is configured.
type Dispatcher interface {
	Enqueue(ctx context.Context, jobID, userID string) error
}

type PubSubDispatcher struct {
	client    *pubsub.Client
	topicName string
}

func NewPubSubDispatcher(ctx context.Context, projectID, topicName, credentialsFile string) (*PubSubDispatcher, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %v", err)
	}
	return &PubSubDispatcher{client: client, topicName: topicName}, nil
}

func (d *PubSubDispatcher) Enqueue(ctx context.Context, jobID, userID string) error {
	data, err := json.Marshal(Message{JobID: jobID, UserID: userID})
	if err != nil {
		return err
	}
	result := d.client.Topic(d.topicName).Publish(ctx, &pubsub.Message{Data: data})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("failed to publish job %s: %v", jobID, err)
	}
	log.Printf("[Job] Enqueued job %s for user %s", jobID, userID)
	return nil
}

// InlineDispatcher executes jobs synchronously in the API process. The
// enqueue call itself never fails; a failed run is recorded on the Job row
// like any other.
type InlineDispatcher struct {
	orchestrator *Orchestrator
}

func NewInlineDispatcher(orchestrator *Orchestrator) *InlineDispatcher {
	return &InlineDispatcher{orchestrator: orchestrator}
}

func (d *InlineDispatcher) Enqueue(ctx context.Context, jobID, userID string) error {
	if err := d.orchestrator.Run(ctx, jobID); err != nil {
		log.Printf("[Job] Inline run of job %s failed: %v", jobID, err)
	}
	return nil
}
