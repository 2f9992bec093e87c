package engine

import (
	"context"
)

// PlatformClient reads posts and comments from the platform.
type PlatformClient interface {
	// GetPost resolves a post by id. A deleted or unresolvable post returns
	// (nil, nil); transport failures return an error.
	GetPost(ctx context.Context, postID string) (*Post, error)
	// GetAuthorTopLevelComment returns the author's most relevant top-level
	// comment on the post, or nil when the author has not commented.
	GetAuthorTopLevelComment(ctx context.Context, postID, author string) (*Comment, error)
	// ListNewPosts pages the subreddit's newest submissions. before is a
	// listing cursor (empty for the newest page).
	ListNewPosts(ctx context.Context, before string, limit int) ([]*Post, error)
}

// ActionClient performs all platform mutations on the engine's behalf. The
// engine itself never writes to the platform directly.
type ActionClient interface {
	// WarnComment leaves a sticky warning comment and returns its id.
	WarnComment(ctx context.Context, postID, body string) (string, error)
	// RemovalComment leaves a sticky removal-notice comment and returns its id.
	RemovalComment(ctx context.Context, postID, body string) (string, error)
	RemovePost(ctx context.Context, postID string) error
	ReportPost(ctx context.Context, postID, reason string) error
	ApprovePost(ctx context.Context, postID string) error
	ReplyToConversation(ctx context.Context, conversationID, body string) error
	ArchiveConversation(ctx context.Context, conversationID string) error
}
