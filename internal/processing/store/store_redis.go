package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"gazette/internal/processing/models"
	id "gazette/pkg/domain"
	"gazette/pkg/platform/sentinel"
)

const jobKeyPrefix = "gazette:job:"

// Redis is a redis-backed JobStore for distributed deployments where the
// extraction pipeline and the API run as separate processes. Records
// expire after the retention TTL.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func (s *Redis) Save(ctx context.Context, job *models.JobStatus) error {
	raw, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, jobKeyPrefix+job.ID.String(), raw, s.ttl).Err()
}

func (s *Redis) FindByID(ctx context.Context, jobID id.JobID) (*models.JobStatus, error) {
	raw, err := s.client.Get(ctx, jobKeyPrefix+jobID.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var job models.JobStatus
	if err := json.Unmarshal(raw, &job); err != nil {
		return nil, err
	}
	return &job, nil
}
