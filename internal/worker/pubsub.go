package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"
)

// Message is the payload of a worker job message.
type Message struct {
	JobType string `json:"job_type"`
}

// Acker acknowledges a received message. *pubsub.Message implements it.
type Acker interface {
	Ack()
	Nack()
}

// PubSubHandler runs sync jobs requested over Pub/Sub.
type PubSubHandler struct {
	client           *pubsub.Client
	subscriber       *pubsub.Subscriber
	subscriptionName string
	job              *SyncJob
	logger           zerolog.Logger
}

// PubSubConfig holds configuration for the Pub/Sub handler.
type PubSubConfig struct {
	ProjectID        string
	SubscriptionName string
	Job              *SyncJob
	Logger           zerolog.Logger
}

// NewPubSubHandler creates a new Pub/Sub handler.
func NewPubSubHandler(ctx context.Context, cfg PubSubConfig) (*PubSubHandler, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	subscriber := client.Subscriber(cfg.SubscriptionName)

	// One sync at a time; runs can outlast the default ack deadline.
	subscriber.ReceiveSettings.MaxOutstandingMessages = 1
	subscriber.ReceiveSettings.MaxExtension = 10 * time.Minute

	return NewHandler(cfg.Job, cfg.Logger).withSubscriber(client, subscriber, cfg.SubscriptionName), nil
}

// NewHandler creates a handler without a subscription, for dispatching
// messages received some other way.
func NewHandler(job *SyncJob, logger zerolog.Logger) *PubSubHandler {
	return &PubSubHandler{job: job, logger: logger}
}

func (h *PubSubHandler) withSubscriber(client *pubsub.Client, sub *pubsub.Subscriber, name string) *PubSubHandler {
	h.client = client
	h.subscriber = sub
	h.subscriptionName = name
	return h
}

// Start receives messages until ctx is done.
func (h *PubSubHandler) Start(ctx context.Context) error {
	if h.subscriber == nil {
		return fmt.Errorf("pubsub handler has no subscription")
	}

	h.logger.Info().
		Str("subscription", h.subscriptionName).
		Msg("starting pubsub handler")

	return h.subscriber.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		logger := h.logger.With().
			Str("message_id", msg.ID).
			Str("publish_time", msg.PublishTime.Format(time.RFC3339)).
			Logger()
		h.Handle(logger.WithContext(ctx), msg.Data, msg)
	})
}

// Close closes the Pub/Sub client.
func (h *PubSubHandler) Close() error {
	if h.client == nil {
		return nil
	}
	return h.client.Close()
}

// Handle dispatches one message and acknowledges it. Malformed payloads and
// failed jobs are nacked for redelivery; unknown job types are acked and
// dropped.
func (h *PubSubHandler) Handle(ctx context.Context, data []byte, ack Acker) {
	start := time.Now()
	logger := zerolog.Ctx(ctx)
	if logger.GetLevel() == zerolog.Disabled {
		logger = &h.logger
	}

	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		logger.Error().Err(err).Msg("failed to parse message")
		ack.Nack()
		return
	}

	var err error
	switch msg.JobType {
	case JobStationSync:
		err = h.handleSync(ctx)
	case JobHealthCheck:
		err = h.job.HealthCheck(ctx)
	default:
		logger.Warn().Str("job_type", msg.JobType).Msg("unknown job type")
		ack.Ack()
		return
	}

	if err != nil {
		logger.Error().Err(err).Str("job_type", msg.JobType).Msg("job failed")
		ack.Nack()
		return
	}

	logger.Info().
		Str("job_type", msg.JobType).
		Dur("duration", time.Since(start)).
		Msg("job completed successfully")
	ack.Ack()
}

func (h *PubSubHandler) handleSync(ctx context.Context) error {
	result, err := h.job.Run(ctx)
	if err != nil {
		return err
	}

	// Mostly broken data is worth a redelivery.
	if result.Stations > 0 && result.Skipped*2 > result.Stations {
		return fmt.Errorf("too many stations skipped: %d/%d", result.Skipped, result.Stations)
	}
	return nil
}
