package runstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL is how long run records are kept.
const DefaultTTL = 24 * time.Hour

const keyPrefix = "brandstudio:run:"

// Connect opens a Redis client from a redis:// or rediss:// URL and checks it
// with a ping.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	opts.DialTimeout = 10 * time.Second
	opts.ReadTimeout = 30 * time.Second
	opts.WriteTimeout = 30 * time.Second

	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

// RedisTracker stores runs in Redis: one hash per run holding the run header
// under "meta" and one field per step.
type RedisTracker struct {
	rdb *redis.Client
	ttl time.Duration
	now func() time.Time
}

// NewRedisTracker creates a RedisTracker. A zero ttl uses DefaultTTL.
func NewRedisTracker(rdb *redis.Client, ttl time.Duration) *RedisTracker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisTracker{rdb: rdb, ttl: ttl, now: time.Now}
}

func runKey(runID string) string {
	return keyPrefix + runID
}

const (
	metaField  = "meta"
	stepPrefix = "step:"
)

// StartRun implements Tracker.
func (t *RedisTracker) StartRun(ctx context.Context, run Run) error {
	now := t.now().UTC()
	run.Status = StatusRunning
	run.CreatedAt, run.UpdatedAt = now, now
	run.Steps = nil

	meta, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}

	key := runKey(run.ID)
	_, err = t.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, metaField, meta)
		pipe.Expire(ctx, key, t.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to start run %s: %w", run.ID, err)
	}
	return nil
}

// UpdateStep implements Tracker.
func (t *RedisTracker) UpdateStep(ctx context.Context, runID string, state StepState) error {
	key := runKey(runID)

	run, err := t.loadMeta(ctx, key)
	if err != nil {
		return err
	}

	field := stepPrefix + state.Step
	prevRaw, err := t.rdb.HGet(ctx, key, field).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to read step %s: %w", state.Step, err)
	}
	if prevRaw != "" {
		var prev StepState
		if json.Unmarshal([]byte(prevRaw), &prev) == nil {
			state = mergeStep(prev, state)
		}
	}

	stepData, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal step: %w", err)
	}
	run.UpdatedAt = t.now().UTC()
	meta, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}

	_, err = t.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, field, stepData, metaField, meta)
		pipe.Expire(ctx, key, t.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to update step %s: %w", state.Step, err)
	}
	return nil
}

// FinishRun implements Tracker.
func (t *RedisTracker) FinishRun(ctx context.Context, runID, status, failureKind, message string) error {
	key := runKey(runID)
	run, err := t.loadMeta(ctx, key)
	if err != nil {
		return err
	}
	run.Status, run.FailureKind, run.Error = status, failureKind, message
	run.UpdatedAt = t.now().UTC()

	meta, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}
	if err := t.rdb.HSet(ctx, key, metaField, meta).Err(); err != nil {
		return fmt.Errorf("failed to finish run %s: %w", runID, err)
	}
	return nil
}

// GetRun implements Tracker.
func (t *RedisTracker) GetRun(ctx context.Context, runID string) (*Run, error) {
	fields, err := t.rdb.HGetAll(ctx, runKey(runID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", runID, err)
	}
	metaRaw, ok := fields[metaField]
	if !ok {
		return nil, ErrRunNotFound
	}

	var run Run
	if err := json.Unmarshal([]byte(metaRaw), &run); err != nil {
		return nil, fmt.Errorf("failed to decode run %s: %w", runID, err)
	}
	for name, raw := range fields {
		if name == metaField {
			continue
		}
		var state StepState
		if err := json.Unmarshal([]byte(raw), &state); err != nil {
			return nil, fmt.Errorf("failed to decode step %s: %w", name, err)
		}
		run.Steps = append(run.Steps, state)
	}
	sortSteps(run.Steps)
	return &run, nil
}

// StepStatus implements steps.StatusSource.
func (t *RedisTracker) StepStatus(ctx context.Context, runID, step string) (string, error) {
	raw, err := t.rdb.HGet(ctx, runKey(runID), stepPrefix+step).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read step %s: %w", step, err)
	}
	var state StepState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return "", fmt.Errorf("failed to decode step %s: %w", step, err)
	}
	return state.Status, nil
}

func (t *RedisTracker) loadMeta(ctx context.Context, key string) (Run, error) {
	raw, err := t.rdb.HGet(ctx, key, metaField).Result()
	if errors.Is(err, redis.Nil) {
		return Run{}, ErrRunNotFound
	}
	if err != nil {
		return Run{}, fmt.Errorf("failed to load run: %w", err)
	}
	var run Run
	if err := json.Unmarshal([]byte(raw), &run); err != nil {
		return Run{}, fmt.Errorf("failed to decode run: %w", err)
	}
	return run, nil
}
