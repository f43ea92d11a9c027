package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/DRSN-tech/beauty-backend/internal/cfg"
	"github.com/DRSN-tech/beauty-backend/internal/usecase"
	"github.com/DRSN-tech/beauty-backend/pkg/clients"
	"github.com/DRSN-tech/beauty-backend/pkg/e"
	"github.com/DRSN-tech/beauty-backend/pkg/logger"
	"github.com/jimlawless/whereami"
	r "github.com/redis/go-redis/v9"
)

const keyPrefix = "beauty:ratelimit"

// RateLimitRepo — счётчик запросов с фиксированным окном: INCR + EXPIRE в одной транзакции.
type RateLimitRepo struct {
	client *clients.RedisClient
	cfg    *cfg.RedisCfg
	logger logger.Logger
	now    func() time.Time
}

func NewRateLimitRepo(client *clients.RedisClient, cfg *cfg.RedisCfg, logger logger.Logger) *RateLimitRepo {
	return &RateLimitRepo{
		client: client,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Allow учитывает запрос клиента в текущем окне и сообщает, укладывается ли он в лимит.
func (l *RateLimitRepo) Allow(ctx context.Context, clientKey string) (*usecase.RateDecision, error) {
	window := l.cfg.RateLimitWindow
	now := l.now()
	windowStart := now.Truncate(window)
	key := buildRateLimitKey(clientKey, windowStart)

	var incr *r.IntCmd
	_, err := l.client.Client.TxPipelined(ctx, func(pipe r.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, window)
		return nil
	})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	count := int(incr.Val())
	remaining := l.cfg.RateLimit - count
	if remaining < 0 {
		remaining = 0
	}

	return &usecase.RateDecision{
		Allowed:   count <= l.cfg.RateLimit,
		Limit:     l.cfg.RateLimit,
		Remaining: remaining,
		ResetAt:   windowStart.Add(window),
	}, nil
}

func buildRateLimitKey(clientKey string, windowStart time.Time) string {
	return fmt.Sprintf("%s:%s:%d", keyPrefix, clientKey, windowStart.Unix())
}
