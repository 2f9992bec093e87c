package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Zwemvest/paradoxplazabot-sub001/rulefive/scheduler"
	"github.com/Zwemvest/paradoxplazabot-sub001/rulefive/statestore"
)

// FakePlatform is an in-memory PlatformClient and ActionClient, recording
// every action for assertions. Intentionally exported, for use in other
// packages' tests.
type FakePlatform struct {
	mu       sync.Mutex
	Posts    map[string]*Post
	Comments map[string][]*Comment

	WarnedPosts   []string
	RemovedPosts  []string
	ReportedPosts []string
	ApprovedPosts []string
	Replies       []FakeReply
	Archived      []string

	nextCommentID int
}

type FakeReply struct {
	ConversationID string
	Body           string
}

func NewFakePlatform() *FakePlatform {
	return &FakePlatform{
		Posts:    make(map[string]*Post),
		Comments: make(map[string][]*Comment),
	}
}

func (f *FakePlatform) AddPost(p *Post) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Posts[p.ID] = p
}

func (f *FakePlatform) AddComment(postID string, c *Comment) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Comments[postID] = append(f.Comments[postID], c)
}

func (f *FakePlatform) GetPost(ctx context.Context, postID string) (*Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Posts[postID], nil
}

func (f *FakePlatform) GetAuthorTopLevelComment(ctx context.Context, postID, author string) (*Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.Comments[postID] {
		if c.Author == author {
			return c, nil
		}
	}
	return nil, nil
}

func (f *FakePlatform) ListNewPosts(ctx context.Context, before string, limit int) ([]*Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*Post
	for _, p := range f.Posts {
		out = append(out, p)
	}
	return out, nil
}

func (f *FakePlatform) comment() string {
	f.nextCommentID++
	return fmt.Sprintf("cmt%03d", f.nextCommentID)
}

func (f *FakePlatform) WarnComment(ctx context.Context, postID, body string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.WarnedPosts = append(f.WarnedPosts, postID)
	return f.comment(), nil
}

func (f *FakePlatform) RemovalComment(ctx context.Context, postID, body string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.comment(), nil
}

func (f *FakePlatform) RemovePost(ctx context.Context, postID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.RemovedPosts = append(f.RemovedPosts, postID)
	if p, ok := f.Posts[postID]; ok {
		p.Removed = true
	}
	return nil
}

func (f *FakePlatform) ReportPost(ctx context.Context, postID, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ReportedPosts = append(f.ReportedPosts, postID)
	return nil
}

func (f *FakePlatform) ApprovePost(ctx context.Context, postID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ApprovedPosts = append(f.ApprovedPosts, postID)
	if p, ok := f.Posts[postID]; ok {
		p.Removed = false
		p.Approved = true
	}
	return nil
}

func (f *FakePlatform) ReplyToConversation(ctx context.Context, conversationID, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Replies = append(f.Replies, FakeReply{ConversationID: conversationID, Body: body})
	return nil
}

func (f *FakePlatform) ArchiveConversation(ctx context.Context, conversationID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Archived = append(f.Archived, conversationID)
	return nil
}

var (
	_ PlatformClient = (*FakePlatform)(nil)
	_ ActionClient   = (*FakePlatform)(nil)
)

// immediateScheduler runs checks synchronously, ignoring the delay. Keeps
// end-to-end tests deterministic.
type immediateScheduler struct {
	eng *Engine
}

func (s *immediateScheduler) Schedule(ctx context.Context, postID string, delay time.Duration, kind scheduler.CheckKind) error {
	s.eng.HandleScheduledCheck(ctx, postID, kind)
	return nil
}

// recordingScheduler records scheduled checks without firing them.
type recordingScheduler struct {
	mu        sync.Mutex
	Scheduled []scheduledCheck
}

type scheduledCheck struct {
	PostID string
	Delay  time.Duration
	Kind   scheduler.CheckKind
}

func (s *recordingScheduler) Schedule(ctx context.Context, postID string, delay time.Duration, kind scheduler.CheckKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Scheduled = append(s.Scheduled, scheduledCheck{PostID: postID, Delay: delay, Kind: kind})
	return nil
}

// EngineTestFixture returns an engine wired to in-memory collaborators and a
// permissive default config enforcing image posts.
func EngineTestFixture() (*Engine, *FakePlatform) {
	platform := NewFakePlatform()
	eng := &Engine{
		Logger: slog.Default(),
		Config: Config{
			Subreddit:            "test",
			BotUsername:          "rule5bot",
			EnforceImages:        true,
			EnforceGalleries:     true,
			ExplanationSource:    SourceBoth,
			MinExplanationLength: 20,
			Policy:               PolicyRemove,
			GracePeriod:          10 * time.Minute,
			WarningPeriod:        30 * time.Minute,
			ModmailKeywords:      []string{"rule 5", "reinstate"},
			AutoReinstate:        true,
			AutoArchive:          true,
		},
		Store:    statestore.NewMemStateStore(1000),
		Platform: platform,
		Actions:  platform,
	}
	eng.Scheduler = &recordingScheduler{}
	return eng, platform
}

// TestPost returns a plain image post fixture.
func TestPost(id, author string) *Post {
	return &Post{
		ID:        id,
		Author:    author,
		Title:     "a map",
		URL:       "https://i.redd.it/" + id + ".png",
		Permalink: "https://reddit.com/r/test/comments/" + id + "/a_map/",
		PostHint:  "image",
		CreatedAt: time.Now(),
	}
}
