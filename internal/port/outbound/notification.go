package outbound

import (
	"context"
	"time"

	"github.com/uniedit/invite-server/internal/model"
)

// InvitationNotifierPort delivers invitation notifications.
type InvitationNotifierPort interface {
	// SendProjectInvitation notifies an invitee who already has an account.
	SendProjectInvitation(ctx context.Context, job *model.NotificationJob) error

	// SendSignupInvitation notifies an email-only invitee.
	SendSignupInvitation(ctx context.Context, job *model.NotificationJob) error
}

// NotificationDispatcherPort schedules or performs notification delivery.
type NotificationDispatcherPort interface {
	// Dispatch hands a job to the configured delivery strategy.
	Dispatch(ctx context.Context, job *model.NotificationJob) error
}

// NotificationQueuePort stores notification jobs for background delivery.
type NotificationQueuePort interface {
	// Enqueue schedules a job. Returns false if the invitation was already scheduled.
	Enqueue(ctx context.Context, job *model.NotificationJob) (bool, error)

	// Dequeue claims the next job, waiting up to timeout. Returns nil, nil on timeout.
	Dequeue(ctx context.Context, timeout time.Duration) (*model.NotificationJob, error)

	// Ack marks a claimed job as done.
	Ack(ctx context.Context, job *model.NotificationJob) error

	// Requeue returns a claimed job to the queue for another attempt.
	Requeue(ctx context.Context, job *model.NotificationJob) error

	// Recover returns jobs claimed by a previous process to the queue.
	Recover(ctx context.Context) (int, error)
}

// InvitationMetricsPort records invitation workflow metrics.
type InvitationMetricsPort interface {
	RecordInvitationCreated(kind model.TargetKind, notified bool)
	RecordValidationFailure(reason string)
	RecordInvitationAccepted(kind model.TargetKind)
	RecordNotification(kind model.NotificationKind, status string)
}
