package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/admitra/portal-backend/internal/config"
)

const (
	StatsBatchSize    = 50
	StatsBatchTimeout = 2 * time.Second
	StatsPollTimeout  = 1 * time.Second
)

// StatsWorker drains submission events off the Redis queue, keeps the
// dashboard counters current, and fans events out to the staff live feed.
// Scoring itself happens synchronously at submit; this worker only does
// the bookkeeping that must not slow the submit path down.
type StatsWorker struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewStatsWorker creates a new StatsWorker.
func NewStatsWorker(rdb *redis.Client, log zerolog.Logger) *StatsWorker {
	return &StatsWorker{
		rdb: rdb,
		log: log.With().Str("component", "stats_worker").Logger(),
	}
}

// SubmissionEvent is the queue payload for one finalized attempt.
type SubmissionEvent struct {
	AttemptID  string `json:"attempt_id"`
	Department string `json:"department"`
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

func (w *StatsWorker) Start(ctx context.Context) {
	w.log.Info().Msg("StatsWorker started")

	batch := make([]*SubmissionEvent, 0, StatsBatchSize)
	lastFlush := time.Now()

	for {
		// Should flush?
		if len(batch) > 0 &&
			(len(batch) >= StatsBatchSize || time.Since(lastFlush) >= StatsBatchTimeout) {

			w.flush(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flush(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, StatsPollTimeout, config.WorkerKey.SubmittedAttemptsQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var ev SubmissionEvent
			if err := json.Unmarshal([]byte(item[1]), &ev); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, &ev)
		}
	}
}

// flush applies one batch of events: counter increments plus one Pub/Sub
// publish per event. Counters and publishes are idempotent enough that a
// retried event only inflates a statistic, never corrupts exam data.
func (w *StatsWorker) flush(ctx context.Context, batch []*SubmissionEvent) {
	if len(batch) == 0 {
		return
	}

	byDept := make(map[string]int, len(batch))
	for _, ev := range batch {
		byDept[ev.Department]++
	}

	pipe := w.rdb.Pipeline()
	pipe.IncrBy(ctx, config.CacheKey.TotalSubmissionsKey(), int64(len(batch)))
	for dept, n := range byDept {
		pipe.IncrBy(ctx, config.CacheKey.DepartmentSubmissionsKey(dept), int64(n))
	}
	for _, ev := range batch {
		raw, _ := json.Marshal(ev)
		pipe.Publish(ctx, config.CacheKey.ResultsLiveChannel(), raw)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		w.log.Warn().Err(err).Int("events", len(batch)).Msg("stats flush failed — requeueing")
		for _, ev := range batch {
			raw, _ := json.Marshal(ev)
			w.rdb.RPush(ctx, config.WorkerKey.SubmittedAttemptsQueue, raw)
		}
		return
	}

	w.log.Debug().Int("events", len(batch)).Msg("stats flushed")
}

// ----------------------------------------------------------------
// Submit-side producer
// ----------------------------------------------------------------

// QueueNotifier pushes submission events onto the worker queue. It
// satisfies the notifier the attempt service expects.
type QueueNotifier struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewQueueNotifier creates a new QueueNotifier.
func NewQueueNotifier(rdb *redis.Client, log zerolog.Logger) *QueueNotifier {
	return &QueueNotifier{rdb: rdb, log: log}
}

// NotifySubmitted enqueues a submission event. Failures are logged and
// dropped; the attempt row in Postgres stays the source of truth and the
// counters self-heal from it on the next stats read.
func (n *QueueNotifier) NotifySubmitted(ctx context.Context, attemptID, department string) {
	raw, err := json.Marshal(SubmissionEvent{AttemptID: attemptID, Department: department})
	if err != nil {
		return
	}
	if err := n.rdb.RPush(ctx, config.WorkerKey.SubmittedAttemptsQueue, raw).Err(); err != nil {
		n.log.Warn().Err(err).Str("attempt_id", attemptID).Msg("submission event enqueue failed")
	}
}
