package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zwemvest/paradoxplazabot-sub001/rulefive/scheduler"
)

func TestProcessSubmissionDedup(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	eng, platform := EngineTestFixture()
	sched := eng.Scheduler.(*recordingScheduler)

	post := TestPost("abc123", "alice")
	platform.AddPost(post)

	assert.NoError(eng.ProcessSubmission(ctx, post))
	require.Len(t, sched.Scheduled, 1)
	assert.Equal("abc123", sched.Scheduled[0].PostID)
	assert.Equal(scheduler.CheckGrace, sched.Scheduled[0].Kind)
	assert.Equal(eng.Config.GracePeriod, sched.Scheduled[0].Delay)

	// re-delivering the same submission is a no-op
	assert.NoError(eng.ProcessSubmission(ctx, post))
	assert.Len(sched.Scheduled, 1)

	// the polling sweep uses the identical dedup key
	eng.ProcessSweep(ctx, []*Post{post})
	assert.Len(sched.Scheduled, 1)
}

func TestProcessSubmissionUnenforced(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	eng, _ := EngineTestFixture()
	sched := eng.Scheduler.(*recordingScheduler)

	post := TestPost("txt111", "alice")
	post.PostHint = ""
	post.URL = ""
	post.IsSelf = true

	assert.NoError(eng.ProcessSubmission(ctx, post))
	assert.Empty(sched.Scheduled)

	// still marked seen, so a later sighting stays a no-op
	seen, err := eng.Store.IsSeen(ctx, "txt111")
	assert.NoError(err)
	assert.True(seen)
}

func TestGraceCheckWithValidExplanation(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	eng, platform := EngineTestFixture()

	post := TestPost("abc123", "alice")
	platform.AddPost(post)
	platform.AddComment("abc123", &Comment{Author: "alice", Body: "this map shows the empire at its height"})

	eng.HandleScheduledCheck(ctx, "abc123", scheduler.CheckGrace)
	assert.Empty(platform.WarnedPosts)
	assert.Empty(platform.RemovedPosts)
}

func TestGraceCheckWarns(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	eng, platform := EngineTestFixture()
	sched := eng.Scheduler.(*recordingScheduler)

	post := TestPost("abc123", "alice")
	platform.AddPost(post)

	eng.HandleScheduledCheck(ctx, "abc123", scheduler.CheckGrace)

	assert.Equal([]string{"abc123"}, platform.WarnedPosts)
	st, err := eng.Store.GetState(ctx, "abc123")
	assert.NoError(err)
	assert.True(st.Warned)
	assert.NotEmpty(st.WarningCommentID)

	require.Len(t, sched.Scheduled, 1)
	assert.Equal(scheduler.CheckWarning, sched.Scheduled[0].Kind)
	assert.Equal(eng.Config.WarningPeriod, sched.Scheduled[0].Delay)

	// a duplicate grace check does not warn twice
	eng.HandleScheduledCheck(ctx, "abc123", scheduler.CheckGrace)
	assert.Len(platform.WarnedPosts, 1)
}

func TestWarningCheckRemoves(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	eng, platform := EngineTestFixture()

	post := TestPost("abc123", "alice")
	platform.AddPost(post)
	assert.NoError(eng.Store.MarkWarned(ctx, "abc123", "cmt001"))

	eng.HandleScheduledCheck(ctx, "abc123", scheduler.CheckWarning)

	assert.Equal([]string{"abc123"}, platform.RemovedPosts)
	st, err := eng.Store.GetState(ctx, "abc123")
	assert.NoError(err)
	assert.True(st.Removed)
	assert.NotEmpty(st.RemovalCommentID)

	// the check firing again after removal is a no-op
	eng.HandleScheduledCheck(ctx, "abc123", scheduler.CheckWarning)
	assert.Len(platform.RemovedPosts, 1)
}

func TestWarningCheckReportPolicy(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	eng, platform := EngineTestFixture()
	eng.Config.Policy = PolicyReport

	post := TestPost("abc123", "alice")
	platform.AddPost(post)

	eng.HandleScheduledCheck(ctx, "abc123", scheduler.CheckWarning)
	assert.Equal([]string{"abc123"}, platform.ReportedPosts)
	assert.Empty(platform.RemovedPosts)

	st, err := eng.Store.GetState(ctx, "abc123")
	assert.NoError(err)
	assert.False(st.Removed)
}

func TestWarningCheckApprovalCooldown(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	eng, platform := EngineTestFixture()

	post := TestPost("abc123", "alice")
	platform.AddPost(post)
	assert.NoError(eng.Store.MarkApproved(ctx, "abc123"))

	// a recently reinstated post is not removed again, even without a
	// valid explanation
	eng.HandleScheduledCheck(ctx, "abc123", scheduler.CheckWarning)
	assert.Empty(platform.RemovedPosts)
}

func TestEndToEndLifecycle(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	eng, platform := EngineTestFixture()
	eng.Scheduler = &immediateScheduler{eng: eng}

	// image post by a non-allow-listed author, no explanation
	post := TestPost("xyz789", "alice")
	platform.AddPost(post)

	// submission: grace check fires immediately, finds nothing, warns,
	// then the warning check fires immediately and removes
	assert.NoError(eng.ProcessSubmission(ctx, post))

	assert.Equal([]string{"xyz789"}, platform.WarnedPosts)
	assert.Equal([]string{"xyz789"}, platform.RemovedPosts)
	st, err := eng.Store.GetState(ctx, "xyz789")
	assert.NoError(err)
	assert.True(st.Processed)
	assert.True(st.Warned)
	assert.True(st.Removed)

	// the author adds a qualifying explanation and mails the mods
	platform.AddComment("xyz789", &Comment{Author: "alice", Body: "this map shows the empire at its greatest extent"})
	eng.HandleModmail(ctx, reinstatementConvo("alice", "see redd.it/xyz789"))

	assert.Equal([]string{"xyz789"}, platform.ApprovedPosts)
	st, err = eng.Store.GetState(ctx, "xyz789")
	assert.NoError(err)
	assert.True(st.Approved)

	require.NotEmpty(t, platform.Replies)
	assert.Contains(platform.Replies[len(platform.Replies)-1].Body, "reinstated")
}
