package job

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

// Worker consumes the job topic and runs each Job through the
// Orchestrator. Messages are acked regardless of run outcome: a failed run
// already recorded its error on the Job row and must not be redelivered.
type Worker struct {
	client       *pubsub.Client
	orchestrator *Orchestrator
	topicName    string
	subName      string
}

func NewWorker(ctx context.Context, projectID, topicName, credentialsFile string, orchestrator *Orchestrator) (*Worker, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %v", err)
	}
	return &Worker{
		client:       client,
		orchestrator: orchestrator,
		topicName:    topicName,
		subName:      topicName + "-sub", // Convention: topic-sub
	}, nil
}

func (w *Worker) Start(ctx context.Context) {
	log.Printf("[Worker] Starting job worker with topic: %s, subscription: %s", w.topicName, w.subName)

	sub := w.client.Subscription(w.subName)
	exists, err := sub.Exists(ctx)
	if err != nil {
		log.Printf("[Worker] Error checking subscription existence: %v", err)
		return
	}

	if !exists {
		topic := w.client.Topic(w.topicName)
		topicExists, err := topic.Exists(ctx)
		if err != nil {
			log.Printf("[Worker] Error checking topic existence: %v", err)
			return
		}
		if !topicExists {
			log.Printf("[Worker] Topic does not exist, cannot create subscription")
			return
		}
		sub, err = w.client.CreateSubscription(ctx, w.subName, pubsub.SubscriptionConfig{
			Topic:       topic,
			AckDeadline: 10 * time.Second,
		})
		if err != nil {
			log.Printf("[Worker] Failed to create subscription: %v", err)
			return
		}
		log.Printf("[Worker] Created subscription: %s", w.subName)
	}

	log.Printf("[Worker] Listening for jobs on subscription: %s", w.subName)
	err = sub.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		w.handleMessage(ctx, msg)
		msg.Ack()
	})
	if err != nil {
		log.Printf("[Worker] Error receiving messages: %v", err)
	}
}

func (w *Worker) handleMessage(ctx context.Context, msg *pubsub.Message) {
	var m Message
	if err := json.Unmarshal(msg.Data, &m); err != nil {
		log.Printf("[Worker] Failed to unmarshal job message: %v", err)
		return
	}
	log.Printf("[Worker] Received job %s for user %s", m.JobID, m.UserID)
	if err := w.orchestrator.Run(ctx, m.JobID); err != nil {
		log.Printf("[Worker] Job %s failed: %v", m.JobID, err)
	}
}
