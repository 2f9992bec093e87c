package scheduler

import (
	"context"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
)

// MemScheduler fires checks from in-process timers. Scheduled work does not
// survive a restart; the redis implementation should be preferred whenever
// redis is configured.
type MemScheduler struct {
	Handler CheckHandler

	timers *xsync.MapOf[string, *time.Timer]
}

var _ Scheduler = (*MemScheduler)(nil)

func NewMemScheduler(handler CheckHandler) *MemScheduler {
	return &MemScheduler{
		Handler: handler,
		timers:  xsync.NewMapOf[string, *time.Timer](),
	}
}

func checkKey(postID string, kind CheckKind) string {
	return postID + "/" + string(kind)
}

func (s *MemScheduler) Schedule(ctx context.Context, postID string, delay time.Duration, kind CheckKind) error {
	key := checkKey(postID, kind)
	timer := time.AfterFunc(delay, func() {
		s.timers.Delete(key)
		s.Handler(context.Background(), postID, kind)
	})
	// last write wins if the same check is scheduled twice
	if prev, loaded := s.timers.LoadAndStore(key, timer); loaded {
		prev.Stop()
	}
	return nil
}

// Pending reports the number of scheduled checks that have not fired yet.
func (s *MemScheduler) Pending() int {
	return s.timers.Size()
}
