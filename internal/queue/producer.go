package queue

import (
	"context"
	"encoding/json"

	"github.com/ilkeraydogduPofuduk/kolajBot-sub001/internal/config"
	"github.com/ilkeraydogduPofuduk/kolajBot-sub001/internal/model"

	"github.com/go-redis/redis/v8"
)

type Producer struct {
	client *redis.Client
	cfg    *config.Config
}

func NewProducer(redisClient *RedisClient, cfg *config.Config) *Producer {
	return &Producer{
		client: redisClient.Client(),
		cfg:    cfg,
	}
}

func (p *Producer) EnqueueBatch(ctx context.Context, msg model.BatchMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	return p.client.LPush(ctx, p.cfg.Redis.IngestionQueue, data).Err()
}

// Depth reports how many batches are waiting on the ingestion queue.
func (p *Producer) Depth(ctx context.Context) (int64, error) {
	return p.client.LLen(ctx, p.cfg.Redis.IngestionQueue).Result()
}
