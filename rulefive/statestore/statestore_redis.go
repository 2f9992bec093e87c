package statestore

import (
	"context"
	"time"

	"github.com/go-redis/cache/v9"
	"github.com/redis/go-redis/v9"
)

type RedisStateStore struct {
	Data   *cache.Cache
	Client *redis.Client
	TTL    time.Duration
}

var _ StateStore = (*RedisStateStore)(nil)

func NewRedisStateStore(redisURL string) (*RedisStateStore, error) {
	ctx := context.Background()
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)
	// check redis connection
	_, err = rdb.Ping(ctx).Result()
	if err != nil {
		return nil, err
	}
	data := cache.New(&cache.Options{
		Redis:      rdb,
		LocalCache: cache.NewTinyLFU(10_000, time.Minute),
	})
	return &RedisStateStore{
		Data:   data,
		Client: rdb,
		TTL:    RetentionPeriod,
	}, nil
}

func redisStateKey(fact, postID string) string {
	return "r5/" + fact + "/" + postID
}

func (s *RedisStateStore) get(ctx context.Context, fact, postID string) (*FactRecord, error) {
	var rec FactRecord
	err := s.Data.Get(ctx, redisStateKey(fact, postID), &rec)
	if err == cache.ErrCacheMiss {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *RedisStateStore) mark(ctx context.Context, fact, postID, commentID string) error {
	return s.Data.Set(&cache.Item{
		Ctx:   ctx,
		Key:   redisStateKey(fact, postID),
		Value: FactRecord{At: time.Now().UTC(), CommentID: commentID},
		TTL:   s.TTL,
	})
}

func (s *RedisStateStore) IsSeen(ctx context.Context, postID string) (bool, error) {
	// the seen fact is written with SetNX, so read the raw key (the local
	// TinyLFU layer could otherwise report a stale miss right after a
	// competing handler's mark)
	n, err := s.Client.Exists(ctx, redisStateKey(factSeen, postID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MarkSeen unconditionally (re)writes the seen fact, refreshing its expiry;
// only MarkSeenOnce carries the set-if-absent dedup semantics.
func (s *RedisStateStore) MarkSeen(ctx context.Context, postID string) error {
	return s.Client.Set(ctx, redisStateKey(factSeen, postID), time.Now().UTC().Format(time.RFC3339), s.TTL).Err()
}

func (s *RedisStateStore) MarkSeenOnce(ctx context.Context, postID string) (bool, error) {
	return s.Client.SetNX(ctx, redisStateKey(factSeen, postID), time.Now().UTC().Format(time.RFC3339), s.TTL).Result()
}

func (s *RedisStateStore) IsWarned(ctx context.Context, postID string) (bool, error) {
	rec, err := s.get(ctx, factWarned, postID)
	return rec != nil, err
}

func (s *RedisStateStore) GetWarned(ctx context.Context, postID string) (*FactRecord, error) {
	return s.get(ctx, factWarned, postID)
}

func (s *RedisStateStore) MarkWarned(ctx context.Context, postID, commentID string) error {
	return s.mark(ctx, factWarned, postID, commentID)
}

func (s *RedisStateStore) IsRemovedByBot(ctx context.Context, postID string) (bool, error) {
	rec, err := s.get(ctx, factRemoved, postID)
	return rec != nil, err
}

func (s *RedisStateStore) MarkRemoved(ctx context.Context, postID, commentID string) error {
	return s.mark(ctx, factRemoved, postID, commentID)
}

func (s *RedisStateStore) WasRecentlyApproved(ctx context.Context, postID string) (bool, error) {
	rec, err := s.get(ctx, factApproved, postID)
	if err != nil || rec == nil {
		return false, err
	}
	return time.Now().UTC().Sub(rec.At) <= ApprovalWindow, nil
}

func (s *RedisStateStore) MarkApproved(ctx context.Context, postID string) error {
	return s.mark(ctx, factApproved, postID, "")
}

func (s *RedisStateStore) GetState(ctx context.Context, postID string) (*PostState, error) {
	st := &PostState{PostID: postID}
	seen, err := s.IsSeen(ctx, postID)
	if err != nil {
		return nil, err
	}
	st.Processed = seen
	if rec, err := s.get(ctx, factWarned, postID); err != nil {
		return nil, err
	} else if rec != nil {
		st.Warned = true
		st.WarnedAt = &rec.At
		st.WarningCommentID = rec.CommentID
	}
	if rec, err := s.get(ctx, factRemoved, postID); err != nil {
		return nil, err
	} else if rec != nil {
		st.Removed = true
		st.RemovedAt = &rec.At
		st.RemovalCommentID = rec.CommentID
	}
	if rec, err := s.get(ctx, factApproved, postID); err != nil {
		return nil, err
	} else if rec != nil {
		st.Approved = true
		st.ApprovedAt = &rec.At
	}
	return st, nil
}

func (s *RedisStateStore) ClearState(ctx context.Context, postID string) error {
	for _, fact := range []string{factWarned, factRemoved, factApproved} {
		if err := s.Data.Delete(ctx, redisStateKey(fact, postID)); err != nil && err != cache.ErrCacheMiss {
			return err
		}
	}
	return s.Client.Del(ctx, redisStateKey(factSeen, postID)).Err()
}
