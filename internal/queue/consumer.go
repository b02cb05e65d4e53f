package queue

import (
	"context"
	"encoding/json"

	"github.com/ilkeraydogduPofuduk/kolajBot-sub001/internal/config"
	"github.com/ilkeraydogduPofuduk/kolajBot-sub001/internal/logger"
	"github.com/ilkeraydogduPofuduk/kolajBot-sub001/internal/model"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

type Consumer struct {
	client *redis.Client
	cfg    *config.Config
	log    zerolog.Logger
}

type BatchHandler func(ctx context.Context, msg model.BatchMessage) error

func NewConsumer(redisClient *RedisClient, cfg *config.Config) *Consumer {
	return &Consumer{
		client: redisClient.Client(),
		cfg:    cfg,
		log:    logger.With("consumer"),
	}
}

// Consume polls the ingestion queue and hands each message to the handler.
// A failed message is requeued with its attempts counter incremented; once it
// exhausts the attempt budget it goes to the dead-letter queue instead. The
// counter rides on the message itself so the loop is bounded by construction.
func (c *Consumer) Consume(ctx context.Context, handler BatchHandler) error {
	queueName := c.cfg.Redis.IngestionQueue

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			result, err := c.client.BRPop(ctx, c.cfg.Redis.ConsumerTimeout, queueName).Result()
			if err != nil {
				if err == redis.Nil {
					continue // Timeout, continue polling
				}
				if ctx.Err() != nil {
					return ctx.Err()
				}
				c.log.Error().Err(err).Str("queue", queueName).Msg("Failed to consume message")
				continue
			}

			if len(result) < 2 {
				continue
			}

			raw := result[1]
			var msg model.BatchMessage
			if err := json.Unmarshal([]byte(raw), &msg); err != nil {
				c.log.Error().Err(err).Msg("Unparseable message, dead-lettering")
				c.deadLetter(ctx, raw)
				continue
			}

			msg.Attempts++
			if err := handler(ctx, msg); err != nil {
				c.log.Error().Err(err).
					Str("job_id", msg.JobID).
					Int("attempts", msg.Attempts).
					Msg("Failed to process batch")

				if msg.Attempts >= c.cfg.Redis.MaxJobAttempts {
					if data, mErr := json.Marshal(msg); mErr == nil {
						c.deadLetter(ctx, string(data))
					}
					continue
				}
				if data, mErr := json.Marshal(msg); mErr == nil {
					if pushErr := c.client.LPush(ctx, queueName, data).Err(); pushErr != nil {
						c.log.Error().Err(pushErr).Str("job_id", msg.JobID).Msg("Failed to requeue message")
					}
				}
			}
		}
	}
}

func (c *Consumer) deadLetter(ctx context.Context, raw string) {
	dlqName := c.cfg.Redis.IngestionQueue + c.cfg.Redis.DLQSuffix
	if err := c.client.LPush(ctx, dlqName, raw).Err(); err != nil {
		c.log.Error().Err(err).Str("dlq", dlqName).Msg("Failed to move message to DLQ")
	}
}
