package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/uniedit/invite-server/internal/model"
	"github.com/uniedit/invite-server/internal/port/outbound"
)

const (
	notificationPendingKey       = "invite:notify:pending"
	notificationProcessingPrefix = "invite:notify:processing:"
	notificationLeasePrefix      = "invite:notify:lease:"
	notificationInstancesKey     = "invite:notify:instances"
	notificationMarkerPrefix     = "invite:notify:scheduled:"
)

// QueueConfig configures the Redis notification queue.
type QueueConfig struct {
	// MarkerTTL bounds how long an invitation stays marked as scheduled.
	MarkerTTL time.Duration

	// LeaseTTL is how long an instance stays alive without polling.
	// Must exceed the longest delivery plus the poll timeout.
	LeaseTTL time.Duration

	// InstanceID names this queue's processing list. Generated when empty.
	InstanceID string
}

// DefaultQueueConfig returns the default queue configuration.
func DefaultQueueConfig() *QueueConfig {
	return &QueueConfig{
		MarkerTTL: 7 * 24 * time.Hour,
		LeaseTTL:  2 * time.Minute,
	}
}

// notificationQueue implements outbound.NotificationQueuePort on Redis lists.
// Each instance claims jobs into its own processing list and holds a lease key
// while it polls. Only lists whose lease expired are recovered by other instances.
type notificationQueue struct {
	client     redis.UniversalClient
	cfg        *QueueConfig
	instanceID string
	processing string

	mu      sync.Mutex
	claimed map[uuid.UUID]string
}

// NewNotificationQueue creates a new Redis notification queue.
func NewNotificationQueue(client redis.UniversalClient, cfg *QueueConfig) outbound.NotificationQueuePort {
	defaults := DefaultQueueConfig()
	if cfg == nil {
		cfg = defaults
	}
	if cfg.MarkerTTL <= 0 {
		cfg.MarkerTTL = defaults.MarkerTTL
	}
	if cfg.LeaseTTL <= 0 {
		cfg.LeaseTTL = defaults.LeaseTTL
	}

	instanceID := cfg.InstanceID
	if instanceID == "" {
		instanceID = uuid.NewString()
	}

	return &notificationQueue{
		client:     client,
		cfg:        cfg,
		instanceID: instanceID,
		processing: processingKey(instanceID),
		claimed:    make(map[uuid.UUID]string),
	}
}

func (q *notificationQueue) Enqueue(ctx context.Context, job *model.NotificationJob) (bool, error) {
	payload, err := json.Marshal(job)
	if err != nil {
		return false, fmt.Errorf("marshal job: %w", err)
	}

	ok, err := q.client.SetNX(ctx, markerKey(job.InvitationID), 1, q.cfg.MarkerTTL).Result()
	if err != nil {
		return false, fmt.Errorf("mark scheduled: %w", err)
	}
	if !ok {
		return false, nil
	}

	if err := q.client.LPush(ctx, notificationPendingKey, payload).Err(); err != nil {
		// Clear the marker so a later attempt can schedule the job.
		q.client.Del(ctx, markerKey(job.InvitationID))
		return false, fmt.Errorf("push job: %w", err)
	}

	return true, nil
}

func (q *notificationQueue) Dequeue(ctx context.Context, timeout time.Duration) (*model.NotificationJob, error) {
	if err := q.renewLease(ctx); err != nil {
		return nil, err
	}

	payload, err := q.client.BLMove(ctx, notificationPendingKey, q.processing, "RIGHT", "LEFT", timeout).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("claim job: %w", err)
	}

	var job model.NotificationJob
	if err := json.Unmarshal([]byte(payload), &job); err != nil {
		// Drop undecodable payloads instead of looping on them.
		q.client.LRem(ctx, q.processing, 1, payload)
		return nil, fmt.Errorf("decode job: %w", err)
	}

	q.mu.Lock()
	q.claimed[job.InvitationID] = payload
	q.mu.Unlock()

	return &job, nil
}

func (q *notificationQueue) Ack(ctx context.Context, job *model.NotificationJob) error {
	payload, err := q.release(job)
	if err != nil {
		return err
	}
	if err := q.client.LRem(ctx, q.processing, 1, payload).Err(); err != nil {
		return fmt.Errorf("ack job: %w", err)
	}
	return nil
}

func (q *notificationQueue) Requeue(ctx context.Context, job *model.NotificationJob) error {
	payload, err := q.release(job)
	if err != nil {
		return err
	}

	job.Attempts++
	next, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}

	pipe := q.client.TxPipeline()
	pipe.LRem(ctx, q.processing, 1, payload)
	pipe.LPush(ctx, notificationPendingKey, next)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("requeue job: %w", err)
	}
	return nil
}

// Recover returns jobs held by instances whose lease has expired to the pending list.
// Jobs claimed by live instances, including this one, are left alone.
func (q *notificationQueue) Recover(ctx context.Context) (int, error) {
	if err := q.renewLease(ctx); err != nil {
		return 0, err
	}

	owners, err := q.client.SMembers(ctx, notificationInstancesKey).Result()
	if err != nil {
		return 0, fmt.Errorf("list instances: %w", err)
	}

	recovered := 0
	for _, owner := range owners {
		if owner == q.instanceID {
			continue
		}

		alive, err := q.client.Exists(ctx, leaseKey(owner)).Result()
		if err != nil {
			return recovered, fmt.Errorf("check lease: %w", err)
		}
		if alive > 0 {
			continue
		}

		n, err := q.drain(ctx, processingKey(owner))
		recovered += n
		if err != nil {
			return recovered, err
		}
		if err := q.client.SRem(ctx, notificationInstancesKey, owner).Err(); err != nil {
			return recovered, fmt.Errorf("forget instance: %w", err)
		}
	}
	return recovered, nil
}

// drain moves every job of a processing list back to pending.
func (q *notificationQueue) drain(ctx context.Context, key string) (int, error) {
	moved := 0
	for {
		err := q.client.LMove(ctx, key, notificationPendingKey, "RIGHT", "LEFT").Err()
		if errors.Is(err, redis.Nil) {
			return moved, nil
		}
		if err != nil {
			return moved, fmt.Errorf("recover jobs: %w", err)
		}
		moved++
	}
}

// renewLease registers the instance and extends its lease.
func (q *notificationQueue) renewLease(ctx context.Context) error {
	pipe := q.client.TxPipeline()
	pipe.SAdd(ctx, notificationInstancesKey, q.instanceID)
	pipe.Set(ctx, leaseKey(q.instanceID), 1, q.cfg.LeaseTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("renew lease: %w", err)
	}
	return nil
}

func (q *notificationQueue) release(job *model.NotificationJob) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	payload, ok := q.claimed[job.InvitationID]
	if !ok {
		return "", fmt.Errorf("job for invitation %s is not claimed", job.InvitationID)
	}
	delete(q.claimed, job.InvitationID)
	return payload, nil
}

func markerKey(invitationID uuid.UUID) string {
	return notificationMarkerPrefix + invitationID.String()
}

func processingKey(instanceID string) string {
	return notificationProcessingPrefix + instanceID
}

func leaseKey(instanceID string) string {
	return notificationLeasePrefix + instanceID
}
