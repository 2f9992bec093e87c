package engine

import (
	"strings"
	"time"
)

// Metadata for a single submission, as read from the platform. The engine
// never mutates posts directly; all mutation goes through the ActionClient.
type Post struct {
	ID        string
	Author    string
	Title     string
	SelfText  string
	URL       string
	Permalink string
	Flair     string
	// platform's own type hint, eg "image", "hosted:video", "rich:video", "link"
	PostHint  string
	IsSelf    bool
	IsGallery bool
	IsVideo   bool
	Score     int64
	CreatedAt time.Time
	// moderator-visible platform state; Removed says nothing about who removed
	Removed  bool
	Approved bool
}

// A top-level comment on a post.
type Comment struct {
	ID        string
	Author    string
	Body      string
	CreatedAt time.Time
}

// One message in a modmail conversation, markdown body plus author name.
type ModmailMessage struct {
	Author string
	Body   string
}

// Inbound modmail payload. The reinstatement handler only inspects the
// subject and the most recent message.
type ModmailConversation struct {
	ID       string
	Subject  string
	Messages []ModmailMessage
}

// LastMessage returns the most recent message, or nil for an empty conversation.
func (c *ModmailConversation) LastMessage() *ModmailMessage {
	if len(c.Messages) == 0 {
		return nil
	}
	return &c.Messages[len(c.Messages)-1]
}

func (p *Post) isImage() bool {
	return p.PostHint == "image"
}

func (p *Post) isVideoPost() bool {
	return p.IsVideo || p.PostHint == "hosted:video" || p.PostHint == "rich:video"
}

// hasEmbeddedURL reports whether a text post body carries a link.
func (p *Post) hasEmbeddedURL() bool {
	body := strings.ToLower(p.SelfText)
	return strings.Contains(body, "http://") || strings.Contains(body, "https://")
}
