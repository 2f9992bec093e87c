package engine

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPostID(t *testing.T) {
	assert := assert.New(t)

	fixtures := []struct {
		text string
		out  string
	}{
		{text: "check my post: https://reddit.com/r/test/comments/xyz123/title/", out: "xyz123"},
		{text: "see redd.it/ab12cd", out: "ab12cd"},
		{text: "random text ab12c3 more text", out: "ab12c3"},
		{text: "no ids here just words", out: ""},
		{text: "", out: ""},
		// permalink wins over a bare token earlier in the text
		{text: "qq12ww and https://reddit.com/r/test/comments/xyz123/", out: "xyz123"},
		// bare tokens without a digit are not ids
		{text: "morning everyone please restore", out: ""},
	}

	for _, fix := range fixtures {
		assert.Equal(fix.out, ExtractPostID(fix.text), "text=%q", fix.text)
	}
}

func reinstatementConvo(author, body string) *ModmailConversation {
	return &ModmailConversation{
		ID:      "convo1",
		Subject: "Please reinstate my post",
		Messages: []ModmailMessage{
			{Author: author, Body: body},
		},
	}
}

func TestModmailSubjectGate(t *testing.T) {
	assert := assert.New(t)
	eng, platform := EngineTestFixture()

	convo := reinstatementConvo("alice", "redd.it/abc123")
	convo.Subject = "unrelated question"
	eng.HandleModmail(context.Background(), convo)
	assert.Empty(platform.Replies)
}

func TestModmailNoPostID(t *testing.T) {
	assert := assert.New(t)
	eng, platform := EngineTestFixture()

	eng.HandleModmail(context.Background(), reinstatementConvo("alice", "no ids here just words"))
	require.Len(t, platform.Replies, 1)
	assert.Contains(platform.Replies[0].Body, "could not find a link")
	assert.Empty(platform.ApprovedPosts)
}

func TestModmailPostNotFound(t *testing.T) {
	assert := assert.New(t)
	eng, platform := EngineTestFixture()

	eng.HandleModmail(context.Background(), reinstatementConvo("alice", "redd.it/zz99zz"))
	require.Len(t, platform.Replies, 1)
	assert.Contains(platform.Replies[0].Body, "zz99zz")
	assert.Empty(platform.ApprovedPosts)
}

func TestModmailNotAuthor(t *testing.T) {
	assert := assert.New(t)
	eng, platform := EngineTestFixture()

	post := TestPost("abc123", "alice")
	post.Removed = true
	platform.AddPost(post)

	eng.HandleModmail(context.Background(), reinstatementConvo("mallory", "redd.it/abc123"))
	require.Len(t, platform.Replies, 1)
	assert.Contains(platform.Replies[0].Body, "author")
	assert.Empty(platform.ApprovedPosts)
}

func TestModmailNotBotRemoval(t *testing.T) {
	assert := assert.New(t)
	eng, platform := EngineTestFixture()
	ctx := context.Background()

	// platform shows the post removed, but the store has no removal record:
	// a human moderator removed it, so the bot must refuse, even with a
	// perfect explanation from the right author
	post := TestPost("abc123", "alice")
	post.Removed = true
	platform.AddPost(post)
	platform.AddComment("abc123", &Comment{Author: "alice", Body: "a perfectly valid explanation of this map"})

	eng.HandleModmail(ctx, reinstatementConvo("alice", "redd.it/abc123"))
	require.Len(t, platform.Replies, 1)
	assert.Contains(platform.Replies[0].Body, "removed by a moderator")
	assert.Empty(platform.ApprovedPosts)
}

func TestModmailAlreadyLive(t *testing.T) {
	assert := assert.New(t)
	eng, platform := EngineTestFixture()

	platform.AddPost(TestPost("abc123", "alice"))

	eng.HandleModmail(context.Background(), reinstatementConvo("alice", "redd.it/abc123"))
	require.Len(t, platform.Replies, 1)
	assert.Contains(platform.Replies[0].Body, "not currently removed")
	// this branch may auto-archive
	assert.Contains(platform.Archived, "convo1")
	assert.Empty(platform.ApprovedPosts)
}

func TestModmailInvalidExplanation(t *testing.T) {
	assert := assert.New(t)
	eng, platform := EngineTestFixture()
	ctx := context.Background()

	post := TestPost("abc123", "alice")
	post.Removed = true
	platform.AddPost(post)
	assert.NoError(eng.Store.MarkRemoved(ctx, "abc123", "cmt001"))
	platform.AddComment("abc123", &Comment{Author: "alice", Body: "short"})

	eng.HandleModmail(ctx, reinstatementConvo("alice", "redd.it/abc123"))
	require.Len(t, platform.Replies, 1)
	assert.Contains(platform.Replies[0].Body, "20 characters")
	assert.Empty(platform.ApprovedPosts)
}

func TestModmailSuccess(t *testing.T) {
	assert := assert.New(t)
	eng, platform := EngineTestFixture()
	ctx := context.Background()

	post := TestPost("abc123", "alice")
	post.Removed = true
	platform.AddPost(post)
	assert.NoError(eng.Store.MarkRemoved(ctx, "abc123", "cmt001"))
	platform.AddComment("abc123", &Comment{Author: "alice", Body: "this map shows the empire at its greatest extent"})

	eng.HandleModmail(ctx, reinstatementConvo("alice", "please see https://reddit.com/r/test/comments/abc123/a_map/"))

	assert.Equal([]string{"abc123"}, platform.ApprovedPosts)
	require.Len(t, platform.Replies, 1)
	assert.Contains(platform.Replies[0].Body, post.Permalink)
	assert.Contains(platform.Archived, "convo1")

	st, err := eng.Store.GetState(ctx, "abc123")
	assert.NoError(err)
	assert.True(st.Approved)

	recent, err := eng.Store.WasRecentlyApproved(ctx, "abc123")
	assert.NoError(err)
	assert.True(recent)
}

type archiveFailingActions struct {
	*FakePlatform
}

func (a *archiveFailingActions) ArchiveConversation(ctx context.Context, conversationID string) error {
	return fmt.Errorf("archive failed: HTTP 500")
}

func TestModmailArchiveFailureAfterSuccess(t *testing.T) {
	assert := assert.New(t)
	eng, platform := EngineTestFixture()
	eng.Actions = &archiveFailingActions{platform}
	ctx := context.Background()

	post := TestPost("abc123", "alice")
	post.Removed = true
	platform.AddPost(post)
	assert.NoError(eng.Store.MarkRemoved(ctx, "abc123", "cmt001"))
	platform.AddComment("abc123", &Comment{Author: "alice", Body: "this map shows the empire at its greatest extent"})

	eng.HandleModmail(ctx, reinstatementConvo("alice", "please see redd.it/abc123"))

	// the reinstatement already happened; a failed archive afterwards is
	// logged and swallowed, never answered with the generic error reply
	assert.Equal([]string{"abc123"}, platform.ApprovedPosts)
	require.Len(t, platform.Replies, 1)
	assert.Contains(platform.Replies[0].Body, "reinstated")

	st, err := eng.Store.GetState(ctx, "abc123")
	assert.NoError(err)
	assert.True(st.Approved)
}

func TestModmailAutoReinstateDisabled(t *testing.T) {
	assert := assert.New(t)
	eng, platform := EngineTestFixture()
	eng.Config.AutoReinstate = false

	eng.HandleModmail(context.Background(), reinstatementConvo("alice", "redd.it/abc123"))
	assert.Empty(platform.Replies)
	assert.Empty(platform.ApprovedPosts)
}
