package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassifyPostTypes(t *testing.T) {
	assert := assert.New(t)
	eng, _ := EngineTestFixture()

	d := eng.Classify(TestPost("abc123", "alice"))
	assert.True(d.ShouldEnforce)
	assert.Equal("image post", d.Reason)

	gallery := TestPost("def456", "alice")
	gallery.PostHint = ""
	gallery.IsGallery = true
	d = eng.Classify(gallery)
	assert.True(d.ShouldEnforce)
	assert.Equal("gallery post", d.Reason)

	text := TestPost("ghi789", "alice")
	text.PostHint = ""
	text.URL = ""
	text.IsSelf = true
	text.SelfText = "just a discussion"
	d = eng.Classify(text)
	assert.False(d.ShouldEnforce)
	assert.NotEmpty(d.Reason)
}

func TestClassifyVideoAndLinks(t *testing.T) {
	assert := assert.New(t)
	eng, _ := EngineTestFixture()
	eng.Config.EnforceVideos = true
	eng.Config.EnforceDomains = []string{"youtube.com"}
	eng.Config.EnforceTextWithURL = true

	video := TestPost("vid111", "alice")
	video.PostHint = "hosted:video"
	d := eng.Classify(video)
	assert.True(d.ShouldEnforce)
	assert.Equal("video post", d.Reason)

	link := TestPost("lnk222", "alice")
	link.PostHint = "link"
	link.URL = "https://www.youtube.com/watch?v=x"
	d = eng.Classify(link)
	assert.True(d.ShouldEnforce)
	assert.Equal("link domain requires explanation", d.Reason)

	textURL := TestPost("txt333", "alice")
	textURL.PostHint = ""
	textURL.IsSelf = true
	textURL.SelfText = "look at https://example.com/thing"
	d = eng.Classify(textURL)
	assert.True(d.ShouldEnforce)
	assert.Equal("text post with embedded link", d.Reason)
}

func TestClassifyExclusionOrder(t *testing.T) {
	assert := assert.New(t)
	eng, _ := EngineTestFixture()
	eng.Config.AllowedAuthors = []string{"TrustedUser"}
	eng.Config.ExcludedFlairs = []string{"Meta"}
	eng.Config.EnforcedFlairs = []string{"Screenshot"}
	eng.Config.SkipKeywords = []string{"[no r5 needed]"}

	// allow-listed author outranks everything
	post := TestPost("abc123", "trusteduser")
	post.Flair = "Screenshot"
	d := eng.Classify(post)
	assert.False(d.ShouldEnforce)
	assert.Equal("author is allow-listed", d.Reason)

	// flair exclusion outranks enforced flair and type rules
	post = TestPost("def456", "alice")
	post.Flair = "Meta"
	d = eng.Classify(post)
	assert.False(d.ShouldEnforce)

	// enforced flair outranks the type checks (a text post gets enforced)
	post = TestPost("ghi789", "alice")
	post.PostHint = ""
	post.IsSelf = true
	post.Flair = "Screenshot"
	d = eng.Classify(post)
	assert.True(d.ShouldEnforce)

	// skip keyword overrides type match
	post = TestPost("jkl012", "alice")
	post.Title = "a map [no R5 needed]"
	d = eng.Classify(post)
	assert.False(d.ShouldEnforce)
	assert.Equal("post contains a skip keyword", d.Reason)
}

func TestClassifyModeratorStateAndAge(t *testing.T) {
	assert := assert.New(t)
	eng, _ := EngineTestFixture()
	eng.Config.RespectApproved = true
	eng.Config.SkipModeratorRemoved = true
	eng.Config.MaxPostAge = time.Hour
	eng.Config.UpvoteThreshold = 100

	post := TestPost("abc123", "alice")
	post.Approved = true
	assert.False(eng.Classify(post).ShouldEnforce)

	post = TestPost("def456", "alice")
	post.Removed = true
	assert.False(eng.Classify(post).ShouldEnforce)

	post = TestPost("ghi789", "alice")
	post.CreatedAt = time.Now().Add(-2 * time.Hour)
	assert.False(eng.Classify(post).ShouldEnforce)

	post = TestPost("jkl012", "alice")
	post.Score = 500
	assert.False(eng.Classify(post).ShouldEnforce)

	post = TestPost("mno345", "alice")
	post.Score = 50
	assert.True(eng.Classify(post).ShouldEnforce)
}

func TestClassifyExcludedDomain(t *testing.T) {
	assert := assert.New(t)
	eng, _ := EngineTestFixture()
	eng.Config.EnforceAllLinks = true
	eng.Config.ExcludedDomains = []string{"wikipedia.org"}

	post := TestPost("abc123", "alice")
	post.PostHint = "link"
	post.URL = "https://en.wikipedia.org/wiki/Thing"
	d := eng.Classify(post)
	assert.False(d.ShouldEnforce)
	assert.Equal("link domain is excluded", d.Reason)

	post.URL = "https://example.com/thing"
	d = eng.Classify(post)
	assert.True(d.ShouldEnforce)
}

func TestClassifyTextPostRules(t *testing.T) {
	assert := assert.New(t)
	eng, _ := EngineTestFixture()
	eng.Config.EnforceTextKeywords = []string{"[map]", "[chart]"}
	eng.Config.ExcludedTextPrefixes = []string{"meta:"}
	eng.Config.ExcludedTextKeywords = []string{"weekly thread"}

	textPost := func(id, title, body string) *Post {
		p := TestPost(id, "alice")
		p.PostHint = ""
		p.URL = ""
		p.IsSelf = true
		p.Title = title
		p.SelfText = body
		return p
	}

	// keyword match makes a plain text post enforceable
	d := eng.Classify(textPost("txt111", "[MAP] my empire", "description below"))
	assert.True(d.ShouldEnforce)
	assert.Equal("text post matches enforcement keywords", d.Reason)

	// an excluded title prefix wins over the keyword match
	d = eng.Classify(textPost("txt222", "Meta: [map] feedback wanted", "thoughts?"))
	assert.False(d.ShouldEnforce)
	assert.Equal("text post title has an excluded prefix", d.Reason)

	// so does an excluded keyword anywhere in the text
	d = eng.Classify(textPost("txt333", "[map] weekly thread", "post your maps"))
	assert.False(d.ShouldEnforce)
	assert.Equal("text post contains an excluded keyword", d.Reason)

	// a text post matching nothing stays unenforced
	d = eng.Classify(textPost("txt444", "a question", "how do sessions work?"))
	assert.False(d.ShouldEnforce)

	// text-post exclusions do not leak onto link posts
	link := TestPost("lnk555", "alice")
	link.Title = "meta: a map"
	d = eng.Classify(link)
	assert.True(d.ShouldEnforce)
}
