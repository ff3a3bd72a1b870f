package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/uniedit/invite-server/internal/model"
	"github.com/uniedit/invite-server/internal/port/outbound"
)

// WorkerConfig contains worker configuration.
type WorkerConfig struct {
	MaxConcurrent int           `json:"max_concurrent" yaml:"max_concurrent"`
	PollTimeout   time.Duration `json:"poll_timeout" yaml:"poll_timeout"`
	MaxAttempts   int           `json:"max_attempts" yaml:"max_attempts"`
	RetryDelay    time.Duration `json:"retry_delay" yaml:"retry_delay"`
	SendTimeout   time.Duration `json:"send_timeout" yaml:"send_timeout"`
}

// DefaultWorkerConfig returns the default worker configuration.
func DefaultWorkerConfig() *WorkerConfig {
	return &WorkerConfig{
		MaxConcurrent: 4,
		PollTimeout:   2 * time.Second,
		MaxAttempts:   5,
		RetryDelay:    time.Second,
		SendTimeout:   30 * time.Second,
	}
}

// Worker drains the notification queue with bounded concurrency.
type Worker struct {
	queue    outbound.NotificationQueuePort
	notifier outbound.InvitationNotifierPort
	metrics  outbound.InvitationMetricsPort
	logger   *zap.Logger
	config   *WorkerConfig

	semaphore chan struct{}

	cancel context.CancelFunc
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewWorker creates a new notification worker.
func NewWorker(
	queue outbound.NotificationQueuePort,
	notifier outbound.InvitationNotifierPort,
	metrics outbound.InvitationMetricsPort,
	logger *zap.Logger,
	config *WorkerConfig,
) *Worker {
	if config == nil {
		config = DefaultWorkerConfig()
	}
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 1
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Worker{
		queue:     queue,
		notifier:  notifier,
		metrics:   metrics,
		logger:    logger.Named("notify-worker"),
		config:    config,
		semaphore: make(chan struct{}, config.MaxConcurrent),
		stopCh:    make(chan struct{}),
	}
}

// Start recovers jobs left by a previous run and begins polling.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("starting notification worker",
		zap.Int("max_concurrent", w.config.MaxConcurrent),
		zap.Duration("poll_timeout", w.config.PollTimeout))

	recovered, err := w.queue.Recover(ctx)
	if err != nil {
		return fmt.Errorf("recover notifications: %w", err)
	}
	if recovered > 0 {
		w.logger.Info("recovered notifications", zap.Int("count", recovered))
	}

	runCtx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel

	w.wg.Add(1)
	go w.poll(runCtx)

	return nil
}

// Stop stops polling and waits for in-flight deliveries.
func (w *Worker) Stop() {
	w.logger.Info("stopping notification worker")
	close(w.stopCh)
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
	w.logger.Info("notification worker stopped")
}

func (w *Worker) poll(ctx context.Context) {
	defer w.wg.Done()

	for {
		// Acquire semaphore before claiming so jobs wait in the queue, not in memory.
		select {
		case <-w.stopCh:
			return
		case w.semaphore <- struct{}{}:
		}

		job, err := w.queue.Dequeue(ctx, w.config.PollTimeout)
		if err != nil {
			<-w.semaphore
			if ctx.Err() != nil {
				return
			}
			w.logger.Warn("failed to claim notification", zap.Error(err))
			w.sleep(w.config.RetryDelay)
			continue
		}
		if job == nil {
			<-w.semaphore
			continue
		}

		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			defer func() { <-w.semaphore }()
			w.process(job)
		}()
	}
}

// process delivers one job. Failed jobs are retried until MaxAttempts.
func (w *Worker) process(job *model.NotificationJob) {
	ctx, cancel := context.WithTimeout(context.Background(), w.config.SendTimeout)
	defer cancel()

	log := w.logger.With(
		zap.String("invitation_id", job.InvitationID.String()),
		zap.String("kind", string(job.Kind)),
		zap.Int("attempts", job.Attempts))

	err := Deliver(ctx, w.notifier, job)
	if err == nil {
		w.record(job.Kind, StatusSent)
		log.Debug("notification sent")
		if err := w.queue.Ack(ctx, job); err != nil {
			log.Error("failed to ack notification", zap.Error(err))
		}
		return
	}

	if job.Attempts+1 < w.config.MaxAttempts {
		log.Warn("notification delivery failed, retrying", zap.Error(err))
		w.record(job.Kind, StatusRetried)
		w.sleep(w.config.RetryDelay)
		if err := w.queue.Requeue(ctx, job); err != nil {
			log.Error("failed to requeue notification", zap.Error(err))
		}
		return
	}

	log.Error("notification delivery failed", zap.Error(err))
	w.record(job.Kind, StatusFailed)
	if err := w.queue.Ack(ctx, job); err != nil {
		log.Error("failed to ack notification", zap.Error(err))
	}
}

func (w *Worker) sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-w.stopCh:
	case <-timer.C:
	}
}

func (w *Worker) record(kind model.NotificationKind, status string) {
	if w.metrics != nil {
		w.metrics.RecordNotification(kind, status)
	}
}
