// Package taskqueue implements deferred work on a Watermill router over an in-process pub/sub.
package taskqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"conferencecentral/internal/domain"
	"conferencecentral/internal/metrics"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
)

const (
	topicPrefix = "tasks."
	metadataKey = "task"
)

// Config holds the delivery settings of the queue.
type Config struct {
	CloseTimeout time.Duration

	// A failing task is run at most 1+MaxRetries times, then dropped.
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64

	OutputBuffer int64
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		CloseTimeout:    30 * time.Second,
		MaxRetries:      5,
		InitialInterval: time.Second,
		MaxInterval:     time.Minute,
		Multiplier:      2.0,
		OutputBuffer:    256,
	}
}

type payload struct {
	Task   string            `json:"task"`
	Params map[string]string `json:"params"`
}

// Queue is a domain.TaskQueue and domain.TaskRegistry. Handlers must be registered
// before Run; tasks enqueued before the router is running are lost.
type Queue struct {
	pubSub *gochannel.GoChannel
	router *message.Router
	logger *slog.Logger
}

var (
	_ domain.TaskQueue    = (*Queue)(nil)
	_ domain.TaskRegistry = (*Queue)(nil)
)

// New builds the queue and its router.
func New(cfg Config, logger *slog.Logger) (*Queue, error) {
	wmLogger := watermill.NewSlogLogger(logger)

	pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: cfg.OutputBuffer}, wmLogger)

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: cfg.CloseTimeout}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	q := &Queue{pubSub: pubSub, router: router, logger: logger}

	// Outermost: once Retry gives up the delivery is dropped, otherwise the nack would
	// make the pub/sub redeliver it forever.
	router.AddMiddleware(q.dropExhausted)

	retry := middleware.Retry{
		MaxRetries:      cfg.MaxRetries,
		InitialInterval: cfg.InitialInterval,
		MaxInterval:     cfg.MaxInterval,
		Multiplier:      cfg.Multiplier,
		Logger:          wmLogger,
	}
	router.AddMiddleware(retry.Middleware)

	// Innermost, so a panicking task is retried like a failing one.
	router.AddMiddleware(middleware.Recoverer)

	return q, nil
}

// Enqueue publishes a task. It does not wait for the task to run.
func (q *Queue) Enqueue(ctx context.Context, task string, params map[string]string) error {
	data, err := json.Marshal(payload{Task: task, Params: params})
	if err != nil {
		return fmt.Errorf("marshal task %s: %w", task, err)
	}
	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.Metadata.Set(metadataKey, task)
	if err := q.pubSub.Publish(topicPrefix+task, msg); err != nil {
		return fmt.Errorf("publish task %s: %w", task, err)
	}
	q.logger.DebugContext(ctx, "task enqueued", "task", task, "message_id", msg.UUID)
	return nil
}

// Handle registers the handler of a task.
func (q *Queue) Handle(task string, handler domain.TaskHandlerFunc) {
	q.router.AddConsumerHandler(task, topicPrefix+task, q.pubSub, func(msg *message.Message) error {
		var p payload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			// Redelivery cannot fix a malformed payload.
			q.logger.Error("dropping malformed task", "task", task, "message_id", msg.UUID, "error", err)
			return nil
		}
		start := time.Now()
		err := handler(msg.Context(), p.Params)
		metrics.RecordTask(task, time.Since(start), err)
		if err != nil {
			q.logger.Warn("task failed", "task", task, "message_id", msg.UUID, "error", err)
		}
		return err
	})
}

func (q *Queue) dropExhausted(h message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		msgs, err := h(msg)
		if err != nil {
			q.logger.Error("task dropped after retries", "task", msg.Metadata.Get(metadataKey), "message_id", msg.UUID, "error", err)
			return nil, nil
		}
		return msgs, nil
	}
}

// Run blocks running the router until ctx is cancelled or Close is called.
func (q *Queue) Run(ctx context.Context) error {
	return q.router.Run(ctx)
}

// Running is closed once the router is ready to deliver.
func (q *Queue) Running() <-chan struct{} {
	return q.router.Running()
}

// Close stops the router, waiting up to CloseTimeout for running tasks, then the pub/sub.
func (q *Queue) Close() error {
	if err := q.router.Close(); err != nil {
		return err
	}
	return q.pubSub.Close()
}
