package queue

import (
	"context"
	"fmt"
	"time"

	"resumelens/internal/config"
	"resumelens/internal/errors"

	"github.com/streadway/amqp"
	"golang.org/x/sync/errgroup"
)

// Publisher is the subset of an AMQP channel used to publish results
type Publisher interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Worker consumes analysis jobs with a fixed pool of consumers
type Worker struct {
	cfg       config.QueueConfig
	processor *Processor
	logger    *errors.Logger
}

// NewWorker creates a Worker
func NewWorker(cfg config.QueueConfig, processor *Processor, logger *errors.Logger) *Worker {
	if logger == nil {
		logger = errors.NewDiscardLogger()
	}
	return &Worker{cfg: cfg, processor: processor, logger: logger}
}

// Run connects to the broker and consumes until ctx is cancelled or a
// consumer fails. concurrency overrides the configured consumer count when
// positive.
func (w *Worker) Run(ctx context.Context, concurrency int) error {
	if concurrency <= 0 {
		concurrency = w.cfg.Concurrency
	}
	if concurrency <= 0 {
		concurrency = 1
	}

	conn, err := amqp.Dial(w.cfg.URL)
	if err != nil {
		return errors.NewNetworkError(errors.ErrCodeQueueFailed, "failed to connect to RabbitMQ", err)
	}
	defer func() {
		if err := conn.Close(); err != nil && err != amqp.ErrClosed {
			w.logger.LogError(err, "Failed to close RabbitMQ connection")
		}
	}()

	if err := w.declareTopology(conn); err != nil {
		return err
	}

	w.logger.Info("Starting consumer pool",
		"queue", w.cfg.RequestQueue,
		"exchange", w.cfg.ResultExchange,
		"consumers", concurrency)

	g, gctx := errgroup.WithContext(ctx)
	for i := range concurrency {
		g.Go(func() error {
			return w.consume(gctx, conn, i+1)
		})
	}

	// Closing the connection unblocks consumers waiting on deliveries
	go func() {
		<-gctx.Done()
		_ = conn.Close()
	}()

	err = g.Wait()
	if ctx.Err() != nil {
		w.logger.Info("Consumer pool stopped")
		return nil
	}
	return err
}

// declareTopology declares the durable request queue and result exchange
func (w *Worker) declareTopology(conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return errors.NewNetworkError(errors.ErrCodeQueueFailed, "failed to open RabbitMQ channel", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		w.cfg.RequestQueue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		return errors.NewNetworkError(errors.ErrCodeQueueFailed, "failed to declare request queue", err)
	}

	if err := ch.ExchangeDeclare(
		w.cfg.ResultExchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return errors.NewNetworkError(errors.ErrCodeQueueFailed, "failed to declare result exchange", err)
	}
	return nil
}

// consume runs one consumer on its own channel
func (w *Worker) consume(ctx context.Context, conn *amqp.Connection, id int) error {
	ch, err := conn.Channel()
	if err != nil {
		return errors.NewNetworkError(errors.ErrCodeQueueFailed, "failed to open consumer channel", err)
	}
	defer func() { _ = ch.Close() }()

	if w.cfg.Prefetch > 0 {
		if err := ch.Qos(w.cfg.Prefetch, 0, false); err != nil {
			return errors.NewNetworkError(errors.ErrCodeQueueFailed, "failed to set prefetch", err)
		}
	}

	deliveries, err := ch.Consume(
		w.cfg.RequestQueue,
		fmt.Sprintf("resumelens-worker-%d", id),
		false, // manual ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return errors.NewNetworkError(errors.ErrCodeQueueFailed, "failed to start consuming", err)
	}

	w.logger.Info("Consumer started", "consumer", id)
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errors.NewNetworkError(errors.ErrCodeQueueFailed, "delivery channel closed", nil)
			}
			w.handleDelivery(ctx, ch, d)
		}
	}
}

// handleDelivery processes one message and settles it. Results are
// published before the job is acked; a publish failure requeues the job.
func (w *Worker) handleDelivery(ctx context.Context, pub Publisher, d amqp.Delivery) {
	start := time.Now()
	outcome, err := w.processor.Process(ctx, d.Body)
	if err != nil {
		w.logger.LogError(err, "Rejecting malformed job message", "delivery_tag", d.DeliveryTag)
		if rejectErr := d.Reject(false); rejectErr != nil {
			w.logger.LogError(rejectErr, "Failed to reject message")
		}
		return
	}

	err = pub.Publish(w.cfg.ResultExchange, outcome.RoutingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    outcome.JobID,
		Timestamp:    time.Now(),
		Body:         outcome.Body,
	})
	if err != nil {
		w.logger.LogError(err, "Failed to publish job result", "job_id", outcome.JobID)
		if nackErr := d.Nack(false, true); nackErr != nil {
			w.logger.LogError(nackErr, "Failed to requeue message")
		}
		return
	}

	if err := d.Ack(false); err != nil {
		w.logger.LogError(err, "Failed to ack message", "job_id", outcome.JobID)
		return
	}
	w.logger.Info("Job processed",
		"job_id", outcome.JobID,
		"failed", outcome.Failed,
		"duration", time.Since(start))
}
