// Polling consumers: a backup sweep over the subreddit's newest submissions
// (covering posts missed by event delivery) and an inbound modmail reader
// for reinstatement requests.
package consumer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Zwemvest/paradoxplazabot-sub001/rulefive/engine"
)

var sweepCursorKey = "r5/sweep-cursor"

// Poller periodically pages the newest submissions and runs them through
// the engine's dedup/classify/schedule path. The listing cursor is
// persisted to redis so a restart does not re-read the whole backlog; if
// redis is not configured the cursor is skipped (the seen-mark makes
// re-reads harmless).
type Poller struct {
	Logger      *slog.Logger
	Engine      *engine.Engine
	Platform    engine.PlatformClient
	RedisClient *redis.Client
	Interval    time.Duration
	PageSize    int

	cursor string
}

func (p *Poller) Run(ctx context.Context) error {
	if p.Engine == nil {
		return fmt.Errorf("nil engine")
	}
	cur, err := p.readCursor(ctx)
	if err != nil {
		return err
	}
	p.cursor = cur

	p.Logger.Info("starting submission sweep", "interval", p.Interval, "cursor", p.cursor)
	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := p.sweep(ctx); err != nil {
				p.Logger.Error("submission sweep failed", "err", err)
			}
		}
	}
}

func (p *Poller) sweep(ctx context.Context) error {
	posts, err := p.Platform.ListNewPosts(ctx, p.cursor, p.PageSize)
	if err != nil {
		return fmt.Errorf("listing new posts: %w", err)
	}
	if len(posts) == 0 {
		return nil
	}
	p.Engine.ProcessSweep(ctx, posts)

	// listings are newest-first
	p.cursor = posts[0].ID
	return p.persistCursor(ctx)
}

func (p *Poller) readCursor(ctx context.Context) (string, error) {
	// if redis isn't configured, just skip
	if p.RedisClient == nil {
		p.Logger.Info("redis not configured, skipping cursor read")
		return "", nil
	}
	val, err := p.RedisClient.Get(ctx, sweepCursorKey).Result()
	if err == redis.Nil {
		p.Logger.Info("no pre-existing sweep cursor in redis")
		return "", nil
	}
	return val, err
}

func (p *Poller) persistCursor(ctx context.Context) error {
	if p.RedisClient == nil {
		return nil
	}
	return p.RedisClient.Set(ctx, sweepCursorKey, p.cursor, 14*24*time.Hour).Err()
}
