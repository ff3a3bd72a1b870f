package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/uniedit/invite-server/internal/model"
	"github.com/uniedit/invite-server/internal/port/outbound"
)

// ErrQueueFull is returned when the in-memory queue has no free slots.
var ErrQueueFull = errors.New("notification queue is full")

// MemoryQueue is a process-local notification queue.
// Jobs claimed but not acknowledged are returned by Recover.
type MemoryQueue struct {
	jobs      chan *model.NotificationJob
	scheduled *gocache.Cache

	mu      sync.Mutex
	claimed map[uuid.UUID]*model.NotificationJob
}

// NewMemoryQueue creates a queue holding up to capacity jobs.
// Invitations stay marked as scheduled for markerTTL.
func NewMemoryQueue(capacity int, markerTTL time.Duration) *MemoryQueue {
	if capacity <= 0 {
		capacity = 1024
	}
	return &MemoryQueue{
		jobs:      make(chan *model.NotificationJob, capacity),
		scheduled: gocache.New(markerTTL, markerTTL),
		claimed:   make(map[uuid.UUID]*model.NotificationJob),
	}
}

func (q *MemoryQueue) Enqueue(ctx context.Context, job *model.NotificationJob) (bool, error) {
	if err := q.scheduled.Add(job.InvitationID.String(), struct{}{}, gocache.DefaultExpiration); err != nil {
		return false, nil
	}

	select {
	case q.jobs <- job:
		return true, nil
	default:
		q.scheduled.Delete(job.InvitationID.String())
		return false, ErrQueueFull
	}
}

func (q *MemoryQueue) Dequeue(ctx context.Context, timeout time.Duration) (*model.NotificationJob, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, nil
	case job := <-q.jobs:
		q.mu.Lock()
		q.claimed[job.InvitationID] = job
		q.mu.Unlock()
		return job, nil
	}
}

func (q *MemoryQueue) Ack(ctx context.Context, job *model.NotificationJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.claimed, job.InvitationID)
	return nil
}

func (q *MemoryQueue) Requeue(ctx context.Context, job *model.NotificationJob) error {
	q.mu.Lock()
	delete(q.claimed, job.InvitationID)
	q.mu.Unlock()

	job.Attempts++
	select {
	case q.jobs <- job:
		return nil
	default:
		q.hold(job)
		return ErrQueueFull
	}
}

func (q *MemoryQueue) Recover(ctx context.Context) (int, error) {
	q.mu.Lock()
	stranded := make([]*model.NotificationJob, 0, len(q.claimed))
	for id, job := range q.claimed {
		stranded = append(stranded, job)
		delete(q.claimed, id)
	}
	q.mu.Unlock()

	for i, job := range stranded {
		select {
		case q.jobs <- job:
		default:
			q.hold(stranded[i:]...)
			return i, ErrQueueFull
		}
	}
	return len(stranded), nil
}

// hold keeps jobs claimed so a later Recover returns them.
func (q *MemoryQueue) hold(jobs ...*model.NotificationJob) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, job := range jobs {
		q.claimed[job.InvitationID] = job
	}
}

// Len returns the number of jobs waiting to be claimed.
func (q *MemoryQueue) Len() int {
	return len(q.jobs)
}

var _ outbound.NotificationQueuePort = (*MemoryQueue)(nil)
