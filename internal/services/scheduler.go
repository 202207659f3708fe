package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/aalfraarauscher/loan-app-admin/internal/config"
	"github.com/aalfraarauscher/loan-app-admin/internal/logger"
)

// Redis keys for the delivery queue
const (
	DeliveryQueueKey      = "webhook:deliveries:queue"
	DeliveryProcessingKey = "webhook:deliveries:processing"
	DeliveryScheduledKey  = "webhook:deliveries:scheduled"
)

// DeliveryQueue is the durable background queue for delivery attempts. Fresh
// dispatches go onto a redis list consumed by worker goroutines; retries wait
// in a sorted set scored by their due time and are promoted onto the list by
// a ticker. Because due times live in redis, pending retries survive a
// process restart.
//
// It implements RetryScheduler.
type DeliveryQueue struct {
	redis    *redis.Client
	logger   *logger.Logger
	cfg      config.DispatcherConfig
	executor AttemptExecutor
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewDeliveryQueue creates a new delivery queue
func NewDeliveryQueue(redisClient *redis.Client, log *logger.Logger, cfg config.DispatcherConfig) *DeliveryQueue {
	ctx, cancel := context.WithCancel(context.Background())
	return &DeliveryQueue{
		redis:  redisClient,
		logger: log,
		cfg:    cfg,
		ctx:    ctx,
		cancel: cancel,
	}
}

// SetExecutor wires in the attempt executor. Set once during startup, before
// Start; the queue and the delivery service reference each other, so the
// executor cannot be a constructor argument.
func (q *DeliveryQueue) SetExecutor(executor AttemptExecutor) {
	q.executor = executor
}

// Start launches the worker goroutines and the retry promoter
func (q *DeliveryQueue) Start() {
	q.logger.WithField("workers", q.cfg.Workers).Info("Starting delivery queue")

	for i := 0; i < q.cfg.Workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}

	q.wg.Add(1)
	go q.promoteDueRetries()
}

// Stop gracefully stops the queue, waiting for in-flight attempts
func (q *DeliveryQueue) Stop() {
	q.logger.Info("Stopping delivery queue...")
	q.cancel()
	q.wg.Wait()
	q.logger.Info("Delivery queue stopped")
}

// EnqueueDelivery pushes a job for immediate processing
func (q *DeliveryQueue) EnqueueDelivery(ctx context.Context, job *DeliveryJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal delivery job: %w", err)
	}
	if err := q.redis.LPush(ctx, DeliveryQueueKey, data).Err(); err != nil {
		return fmt.Errorf("failed to enqueue delivery: %w", err)
	}
	return nil
}

// ScheduleRetry parks a job in the scheduled set until its due time
func (q *DeliveryQueue) ScheduleRetry(ctx context.Context, job *DeliveryJob, at time.Time) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal delivery job: %w", err)
	}
	if err := q.redis.ZAdd(ctx, DeliveryScheduledKey, &redis.Z{
		Score:  float64(at.Unix()),
		Member: data,
	}).Err(); err != nil {
		return fmt.Errorf("failed to schedule retry: %w", err)
	}

	q.logger.WithDelivery(job.DeliveryID).
		WithField("attempt", job.Attempt).
		WithField("due_at", at.Format(time.RFC3339)).
		Debug("Retry scheduled")

	return nil
}

// worker consumes delivery jobs from the queue
func (q *DeliveryQueue) worker(workerID int) {
	defer q.wg.Done()

	for {
		select {
		case <-q.ctx.Done():
			return
		default:
			// Move the job to the processing list atomically so it is not
			// lost if the worker dies mid-attempt
			result, err := q.redis.BRPopLPush(q.ctx, DeliveryQueueKey, DeliveryProcessingKey, time.Second).Result()
			if err != nil {
				if err == redis.Nil || q.ctx.Err() != nil {
					continue
				}
				q.logger.WithError(err).WithField("worker", workerID).Error("Failed to pop delivery job")
				continue
			}

			var job DeliveryJob
			if err := json.Unmarshal([]byte(result), &job); err != nil {
				q.logger.WithError(err).WithField("worker", workerID).Error("Failed to unmarshal delivery job")
				q.redis.LRem(q.ctx, DeliveryProcessingKey, 1, result)
				continue
			}

			if execErr := q.executor.ExecuteAttempt(q.ctx, &job); execErr != nil {
				q.logger.WithError(execErr).
					WithField("delivery_id", job.DeliveryID).
					WithField("worker", workerID).
					Error("Delivery attempt errored")
			}

			q.redis.LRem(q.ctx, DeliveryProcessingKey, 1, result)
		}
	}
}

// promoteDueRetries moves scheduled jobs whose due time has passed onto the
// processing queue
func (q *DeliveryQueue) promoteDueRetries() {
	defer q.wg.Done()

	ticker := time.NewTicker(time.Duration(q.cfg.SchedulerInterval) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-q.ctx.Done():
			return
		case <-ticker.C:
			now := float64(time.Now().Unix())

			due, err := q.redis.ZRangeByScore(q.ctx, DeliveryScheduledKey, &redis.ZRangeBy{
				Min: "0",
				Max: fmt.Sprintf("%f", now),
			}).Result()
			if err != nil {
				q.logger.WithError(err).Error("Failed to read scheduled retries")
				continue
			}

			for _, data := range due {
				q.redis.ZRem(q.ctx, DeliveryScheduledKey, data)
				q.redis.LPush(q.ctx, DeliveryQueueKey, data)
			}
		}
	}
}
