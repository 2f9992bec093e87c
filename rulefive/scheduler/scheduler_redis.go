package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var redisChecksKey = "r5/checks"

// RedisScheduler persists due checks in a redis sorted set (member
// "<postID>/<kind>", score due-time unix seconds), so scheduled work
// survives restarts. Run drains due members on a polling interval.
type RedisScheduler struct {
	Client       *redis.Client
	Handler      CheckHandler
	Logger       *slog.Logger
	PollInterval time.Duration
}

var _ Scheduler = (*RedisScheduler)(nil)

func NewRedisScheduler(redisURL string, handler CheckHandler, logger *slog.Logger) (*RedisScheduler, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)
	// check redis connection
	_, err = rdb.Ping(context.TODO()).Result()
	if err != nil {
		return nil, err
	}
	return &RedisScheduler{
		Client:       rdb,
		Handler:      handler,
		Logger:       logger,
		PollInterval: 15 * time.Second,
	}, nil
}

func (s *RedisScheduler) Schedule(ctx context.Context, postID string, delay time.Duration, kind CheckKind) error {
	due := time.Now().Add(delay).Unix()
	return s.Client.ZAdd(ctx, redisChecksKey, redis.Z{
		Score:  float64(due),
		Member: checkKey(postID, kind),
	}).Err()
}

// Run polls for due checks until the context is cancelled. Each due member
// is claimed with ZRem before dispatch, so concurrent runners cannot fire
// the same check twice; each dispatch runs in its own goroutine so one
// post's processing never blocks another's.
func (s *RedisScheduler) Run(ctx context.Context) error {
	if s.Handler == nil {
		return fmt.Errorf("nil check handler")
	}
	ticker := time.NewTicker(s.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.dispatchDue(ctx); err != nil {
				s.Logger.Error("dispatching due checks failed", "err", err)
			}
		}
	}
}

func (s *RedisScheduler) dispatchDue(ctx context.Context) error {
	now := strconv.FormatInt(time.Now().Unix(), 10)
	members, err := s.Client.ZRangeByScore(ctx, redisChecksKey, &redis.ZRangeBy{
		Min: "0",
		Max: now,
	}).Result()
	if err != nil {
		return err
	}
	for _, member := range members {
		removed, err := s.Client.ZRem(ctx, redisChecksKey, member).Result()
		if err != nil {
			return err
		}
		if removed == 0 {
			// another runner claimed it
			continue
		}
		postID, kind, err := parseCheckKey(member)
		if err != nil {
			s.Logger.Warn("dropping malformed scheduled check", "member", member, "err", err)
			continue
		}
		go s.Handler(context.Background(), postID, kind)
	}
	return nil
}

func parseCheckKey(member string) (string, CheckKind, error) {
	parts := strings.SplitN(member, "/", 2)
	if len(parts) != 2 || parts[0] == "" {
		return "", "", fmt.Errorf("malformed check member: %q", member)
	}
	kind := CheckKind(parts[1])
	switch kind {
	case CheckGrace, CheckWarning:
		return parts[0], kind, nil
	default:
		return "", "", fmt.Errorf("unknown check kind: %q", parts[1])
	}
}
