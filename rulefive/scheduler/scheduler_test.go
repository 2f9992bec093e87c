package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemSchedulerFires(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	var mu sync.Mutex
	var fired []string
	done := make(chan struct{}, 2)

	s := NewMemScheduler(func(ctx context.Context, postID string, kind CheckKind) {
		mu.Lock()
		fired = append(fired, checkKey(postID, kind))
		mu.Unlock()
		done <- struct{}{}
	})

	assert.NoError(s.Schedule(ctx, "abc123", time.Millisecond, CheckGrace))
	assert.NoError(s.Schedule(ctx, "abc123", 2*time.Millisecond, CheckWarning))
	assert.Equal(2, s.Pending())

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("scheduled check did not fire")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch([]string{"abc123/grace", "abc123/warning"}, fired)
	assert.Equal(0, s.Pending())
}

func TestMemSchedulerReschedule(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	done := make(chan struct{}, 2)
	s := NewMemScheduler(func(ctx context.Context, postID string, kind CheckKind) {
		done <- struct{}{}
	})

	// second schedule for the same post+kind replaces the first
	assert.NoError(s.Schedule(ctx, "abc123", time.Hour, CheckGrace))
	assert.NoError(s.Schedule(ctx, "abc123", time.Millisecond, CheckGrace))
	assert.Equal(1, s.Pending())

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("rescheduled check did not fire")
	}
	select {
	case <-done:
		t.Fatal("replaced check fired anyway")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestParseCheckKey(t *testing.T) {
	assert := assert.New(t)

	postID, kind, err := parseCheckKey("abc123/grace")
	assert.NoError(err)
	assert.Equal("abc123", postID)
	assert.Equal(CheckGrace, kind)

	postID, kind, err = parseCheckKey("xy9z88/warning")
	assert.NoError(err)
	assert.Equal("xy9z88", postID)
	assert.Equal(CheckWarning, kind)

	_, _, err = parseCheckKey("abc123")
	assert.Error(err)
	_, _, err = parseCheckKey("abc123/bogus")
	assert.Error(err)
	_, _, err = parseCheckKey("/grace")
	assert.Error(err)
}
