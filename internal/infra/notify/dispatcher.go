package notify

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/uniedit/invite-server/internal/model"
	"github.com/uniedit/invite-server/internal/port/outbound"
)

// Notification outcomes recorded in metrics.
const (
	StatusSent      = "sent"
	StatusFailed    = "failed"
	StatusQueued    = "queued"
	StatusDuplicate = "duplicate"
	StatusRetried   = "retried"
)

// ErrUnknownKind is returned for jobs with an unrecognized notification kind.
var ErrUnknownKind = errors.New("unknown notification kind")

// Deliver sends job through the notifier method matching its kind.
func Deliver(ctx context.Context, notifier outbound.InvitationNotifierPort, job *model.NotificationJob) error {
	switch job.Kind {
	case model.NotificationProjectInvitation:
		return notifier.SendProjectInvitation(ctx, job)
	case model.NotificationSignupInvitation:
		return notifier.SendSignupInvitation(ctx, job)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, job.Kind)
	}
}

// SyncDispatcher delivers notifications inline with the request.
type SyncDispatcher struct {
	notifier outbound.InvitationNotifierPort
	metrics  outbound.InvitationMetricsPort
	logger   *zap.Logger
}

// NewSyncDispatcher creates a dispatcher that sends immediately.
func NewSyncDispatcher(notifier outbound.InvitationNotifierPort, metrics outbound.InvitationMetricsPort, logger *zap.Logger) *SyncDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncDispatcher{notifier: notifier, metrics: metrics, logger: logger.Named("notify")}
}

// Dispatch sends the job and records the outcome.
func (d *SyncDispatcher) Dispatch(ctx context.Context, job *model.NotificationJob) error {
	if err := Deliver(ctx, d.notifier, job); err != nil {
		d.record(job.Kind, StatusFailed)
		return fmt.Errorf("deliver %s: %w", job.Kind, err)
	}

	d.record(job.Kind, StatusSent)
	d.logger.Debug("notification sent",
		zap.String("invitation_id", job.InvitationID.String()),
		zap.String("kind", string(job.Kind)))
	return nil
}

func (d *SyncDispatcher) record(kind model.NotificationKind, status string) {
	if d.metrics != nil {
		d.metrics.RecordNotification(kind, status)
	}
}

// QueuedDispatcher schedules notifications for the background worker.
type QueuedDispatcher struct {
	queue   outbound.NotificationQueuePort
	metrics outbound.InvitationMetricsPort
	logger  *zap.Logger
}

// NewQueuedDispatcher creates a dispatcher backed by queue.
func NewQueuedDispatcher(queue outbound.NotificationQueuePort, metrics outbound.InvitationMetricsPort, logger *zap.Logger) *QueuedDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueuedDispatcher{queue: queue, metrics: metrics, logger: logger.Named("notify")}
}

// Dispatch enqueues the job. A job already scheduled for the same invitation is skipped.
func (d *QueuedDispatcher) Dispatch(ctx context.Context, job *model.NotificationJob) error {
	scheduled, err := d.queue.Enqueue(ctx, job)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", job.Kind, err)
	}

	if !scheduled {
		d.logger.Info("notification already scheduled",
			zap.String("invitation_id", job.InvitationID.String()))
		d.record(job.Kind, StatusDuplicate)
		return nil
	}

	d.record(job.Kind, StatusQueued)
	return nil
}

func (d *QueuedDispatcher) record(kind model.NotificationKind, status string) {
	if d.metrics != nil {
		d.metrics.RecordNotification(kind, status)
	}
}

// Compile-time interface checks
var (
	_ outbound.NotificationDispatcherPort = (*SyncDispatcher)(nil)
	_ outbound.NotificationDispatcherPort = (*QueuedDispatcher)(nil)
)
