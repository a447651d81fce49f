package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cuongbtq/bid-service/internal/worker/domain"
	"github.com/cuongbtq/bid-service/shared/events"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Consumer is the subset of the RabbitMQ client the worker needs
type Consumer interface {
	Consume(consumerTag string, prefetch int) (<-chan amqp.Delivery, error)
}

// NotificationStore persists notifications into user inboxes
type NotificationStore interface {
	InsertNotification(ctx context.Context, n *events.Notification) (bool, error)
}

// Config holds worker configuration
type Config struct {
	Logger         *slog.Logger
	Consumer       Consumer
	Store          NotificationStore
	WorkerID       string
	QueueName      string
	Concurrency    int
	QueueSize      int
	PrefetchCount  int
	ProcessTimeout time.Duration
}

// Worker consumes notification events and records them in user inboxes
type Worker struct {
	logger         *slog.Logger
	consumer       Consumer
	storage        NotificationStore
	workerID       string
	queueName      string
	concurrency    int
	prefetchCount  int
	processTimeout time.Duration
	jobsChan       chan *domain.NotificationMessage
	wg             sync.WaitGroup
	stopChan       chan struct{}
	stopOnce       sync.Once
}

// NewWorker creates a new worker instance
func NewWorker(cfg *Config) *Worker {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	return &Worker{
		logger:         cfg.Logger,
		consumer:       cfg.Consumer,
		storage:        cfg.Store,
		workerID:       cfg.WorkerID,
		queueName:      cfg.QueueName,
		concurrency:    concurrency,
		prefetchCount:  cfg.PrefetchCount,
		processTimeout: cfg.ProcessTimeout,
		jobsChan:       make(chan *domain.NotificationMessage, cfg.QueueSize),
		stopChan:       make(chan struct{}),
	}
}

// Start subscribes to the queue, spawns the pool and blocks until ctx is
// cancelled or the delivery channel closes
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("Starting worker",
		slog.String("worker_id", w.workerID),
		slog.Int("concurrency", w.concurrency),
		slog.Duration("process_timeout", w.processTimeout),
	)

	deliveries, err := w.setupConsumer()
	if err != nil {
		return err
	}

	w.spawnWorkerPool(ctx)

	dispatcherDone := make(chan struct{})
	go func() {
		defer close(dispatcherDone)
		w.startMessageDispatcher(ctx, deliveries)
	}()

	select {
	case <-ctx.Done():
		w.logger.Info("Worker context canceled, stopping...")
		<-dispatcherDone
		return nil
	case <-dispatcherDone:
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("delivery channel closed")
	}
}

// Stop signals the pool to exit and waits for in-flight messages
func (w *Worker) Stop() {
	w.logger.Info("Stopping worker...")
	w.stopOnce.Do(func() { close(w.stopChan) })
	w.wg.Wait()
	w.logger.Info("Worker stopped")
}
