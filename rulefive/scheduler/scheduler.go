// Component for scheduling delayed compliance checks, keyed by post id.
//
// Includes an interface and implementations using redis (a sorted set of due
// times, drained by a polling runner) and in-process timers.
//
// There is deliberately no cancellation: a check that fires for a post that
// has since been approved or removed must re-validate and no-op.
package scheduler

import (
	"context"
	"time"
)

type CheckKind string

const (
	// first compliance check, after the grace period
	CheckGrace CheckKind = "grace"
	// final compliance check, after a warning has been issued
	CheckWarning CheckKind = "warning"
)

// CheckHandler runs a due check. Errors are the handler's to log; a failed
// check is simply lost (the polling sweep is the only backup path).
type CheckHandler func(ctx context.Context, postID string, kind CheckKind)

type Scheduler interface {
	Schedule(ctx context.Context, postID string, delay time.Duration, kind CheckKind) error
}
