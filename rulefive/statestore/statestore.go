package statestore

import (
	"context"
	"time"
)

const (
	// how long a recorded fact stays authoritative, counted from its write time
	RetentionPeriod = 7 * 24 * time.Hour
	// window within which a recorded approval suppresses repeat removal attempts
	ApprovalWindow = 24 * time.Hour
)

const (
	factSeen     = "seen"
	factWarned   = "warned"
	factRemoved  = "removed"
	factApproved = "approved"
)

// FactRecord is the stored value for a single lifecycle fact.
type FactRecord struct {
	At        time.Time `json:"at"`
	CommentID string    `json:"commentId,omitempty"`
}

// PostState is the full lifecycle record for one post, assembled from the
// individual fact keys. A fact whose key has expired reads as absent.
type PostState struct {
	PostID           string
	Processed        bool
	Warned           bool
	WarnedAt         *time.Time
	WarningCommentID string
	Removed          bool
	RemovedAt        *time.Time
	RemovalCommentID string
	Approved         bool
	ApprovedAt       *time.Time
}

// StateStore is the single source of truth for post lifecycle facts. All
// mark operations are idempotent with last-write-wins value semantics, and
// each fact key expires RetentionPeriod after its most recent write.
//
// The IsSeen/MarkSeen pair is not atomic across the two calls; a narrow race
// between concurrent handlers can double-process a post. MarkSeenOnce is the
// compare-and-set variant: it reports whether this caller recorded the fact,
// and is what event handlers should use for dedup.
type StateStore interface {
	IsSeen(ctx context.Context, postID string) (bool, error)
	MarkSeen(ctx context.Context, postID string) error
	MarkSeenOnce(ctx context.Context, postID string) (bool, error)

	IsWarned(ctx context.Context, postID string) (bool, error)
	GetWarned(ctx context.Context, postID string) (*FactRecord, error)
	MarkWarned(ctx context.Context, postID, commentID string) error

	IsRemovedByBot(ctx context.Context, postID string) (bool, error)
	MarkRemoved(ctx context.Context, postID, commentID string) error

	// WasRecentlyApproved applies the shorter ApprovalWindow over the stored
	// approval timestamp; the key itself may live for the full retention.
	WasRecentlyApproved(ctx context.Context, postID string) (bool, error)
	MarkApproved(ctx context.Context, postID string) error

	GetState(ctx context.Context, postID string) (*PostState, error)
	ClearState(ctx context.Context, postID string) error
}
