package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/rhyrak/go-registrar/internal/registrar"
)

// runIndexKey is a sorted set of run IDs scored by creation time.
const runIndexKey = "runs"

func runKey(id uuid.UUID) string {
	return fmt.Sprintf("run:%s", id)
}

func artifactKey(id uuid.UUID, kind ArtifactKind) string {
	return fmt.Sprintf("run:%s:%s", id, kind)
}

// RedisStore keeps runs as JSON documents that expire after ttl. A zero ttl
// keeps them forever.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) put(ctx context.Context, pipe redis.Pipeliner, run *Run) error {
	raw, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("marshal run: %w", err)
	}
	pipe.Set(ctx, runKey(run.ID), raw, s.ttl)
	return nil
}

func (s *RedisStore) Create(ctx context.Context, params Params) (*Run, error) {
	run := newRun(params)
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if err := s.put(ctx, pipe, run); err != nil {
			return err
		}
		pipe.ZAdd(ctx, runIndexKey, redis.Z{Score: float64(run.CreatedAt.UnixMilli()), Member: run.ID.String()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}
	return run, nil
}

func (s *RedisStore) update(ctx context.Context, id uuid.UUID, mutate func(*Run), extra func(redis.Pipeliner)) error {
	run, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	mutate(run)
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if err := s.put(ctx, pipe, run); err != nil {
			return err
		}
		if extra != nil {
			extra(pipe)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	return nil
}

func (s *RedisStore) Complete(ctx context.Context, id uuid.UUID, summary registrar.Summary, report string, artifacts *registrar.Artifacts) error {
	return s.update(ctx, id, func(run *Run) {
		now := time.Now().UTC()
		run.Status = StatusCompleted
		run.Summary = &summary
		run.Report = report
		run.FinishedAt = &now
	}, func(pipe redis.Pipeliner) {
		for _, kind := range []ArtifactKind{ArtifactSchedule, ArtifactEnrollments, ArtifactStudents} {
			pipe.Set(ctx, artifactKey(id, kind), pick(artifacts, kind), s.ttl)
		}
	})
}

func (s *RedisStore) Fail(ctx context.Context, id uuid.UUID, cause error) error {
	return s.update(ctx, id, func(run *Run) {
		now := time.Now().UTC()
		run.Status = StatusFailed
		run.Error = cause.Error()
		run.FinishedAt = &now
	}, nil)
}

func (s *RedisStore) Get(ctx context.Context, id uuid.UUID) (*Run, error) {
	raw, err := s.rdb.Get(ctx, runKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	run := &Run{}
	if err := json.Unmarshal(raw, run); err != nil {
		return nil, fmt.Errorf("decode run: %w", err)
	}
	return run, nil
}

// List drops index entries whose run document has expired.
func (s *RedisStore) List(ctx context.Context) ([]*Run, error) {
	ids, err := s.rdb.ZRevRange(ctx, runIndexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	runs := []*Run{}
	if len(ids) == 0 {
		return runs, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = "run:" + id
	}
	values, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load runs: %w", err)
	}
	var expired []any
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			expired = append(expired, ids[i])
			continue
		}
		run := &Run{}
		if err := json.Unmarshal([]byte(raw), run); err != nil {
			return nil, fmt.Errorf("decode run %s: %w", ids[i], err)
		}
		runs = append(runs, run)
	}
	if len(expired) > 0 {
		s.rdb.ZRem(ctx, runIndexKey, expired...)
	}
	return runs, nil
}

func (s *RedisStore) Artifact(ctx context.Context, id uuid.UUID, kind ArtifactKind) ([]byte, error) {
	if _, err := ParseArtifactKind(string(kind)); err != nil {
		return nil, err
	}
	data, err := s.rdb.Get(ctx, artifactKey(id, kind)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get artifact: %w", err)
	}
	return data, nil
}

func (s *RedisStore) Delete(ctx context.Context, id uuid.UUID) error {
	var deleted *redis.IntCmd
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		deleted = pipe.Del(ctx, runKey(id))
		pipe.Del(ctx,
			artifactKey(id, ArtifactSchedule),
			artifactKey(id, ArtifactEnrollments),
			artifactKey(id, ArtifactStudents))
		pipe.ZRem(ctx, runIndexKey, id.String())
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	if deleted.Val() == 0 {
		return ErrNotFound
	}
	return nil
}
