package repository

import (
	"context"

	"github.com/ManuelReschke/tiersync/app/models"
	"github.com/redis/go-redis/v9"
)

// redisSubscriberRepository keeps subscribers in a single Redis hash
// (field = email, value = tier). HSET on one field is atomic.
type redisSubscriberRepository struct {
	client *redis.Client
	key    string
}

func NewRedisSubscriberRepository(client *redis.Client) SubscriberRepository {
	return &redisSubscriberRepository{client: client, key: models.SubscriberTable}
}

func (r *redisSubscriberRepository) Upsert(ctx context.Context, subscriber *models.Subscriber) error {
	return r.client.HSet(ctx, r.key, subscriber.Email, subscriber.MembershipTier).Err()
}

func (r *redisSubscriberRepository) Backend() string {
	return BackendRedis
}
