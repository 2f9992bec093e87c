package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/Zwemvest/paradoxplazabot-sub001/rulefive/match"
)

// EnforcementDecision always carries a reason, even on the negative branch,
// so every skipped post can be audited from logs.
type EnforcementDecision struct {
	ShouldEnforce bool
	Reason        string
}

func enforce(reason string) EnforcementDecision {
	return EnforcementDecision{ShouldEnforce: true, Reason: reason}
}

func skip(reason string) EnforcementDecision {
	return EnforcementDecision{ShouldEnforce: false, Reason: reason}
}

// Classify decides whether a post requires an explanation comment. The rule
// order is first-match-wins: author allow-list, flair overrides, moderator
// state, age, score, content overrides, then post-type matching.
func (eng *Engine) Classify(post *Post) EnforcementDecision {
	cfg := &eng.Config

	for _, a := range cfg.AllowedAuthors {
		if strings.EqualFold(a, post.Author) {
			return skip("author is allow-listed")
		}
	}

	// flair exclusion outranks the enforced-flair override and all type rules
	if post.Flair != "" {
		for _, f := range cfg.ExcludedFlairs {
			if strings.EqualFold(f, post.Flair) {
				return skip(fmt.Sprintf("flair %q is excluded", post.Flair))
			}
		}
		for _, f := range cfg.EnforcedFlairs {
			if strings.EqualFold(f, post.Flair) {
				return enforce(fmt.Sprintf("flair %q is always enforced", post.Flair))
			}
		}
	}

	if cfg.RespectApproved && post.Approved {
		return skip("post was already approved by a moderator")
	}
	if cfg.SkipModeratorRemoved && post.Removed {
		return skip("post was already removed")
	}
	if cfg.MaxPostAge > 0 && time.Since(post.CreatedAt) > cfg.MaxPostAge {
		return skip("post is older than the configured maximum age")
	}
	if cfg.UpvoteThreshold > 0 && post.Score > cfg.UpvoteThreshold {
		return skip("post score is above the upvote threshold")
	}

	text := post.Title + "\n" + post.SelfText
	if match.MatchesAnyPattern(text, cfg.SkipKeywords) {
		return skip("post contains a skip keyword")
	}

	if post.IsSelf {
		if len(cfg.ExcludedTextPrefixes) > 0 && match.StartsWith(post.Title, cfg.ExcludedTextPrefixes) {
			return skip("text post title has an excluded prefix")
		}
		if match.MatchesAnyPattern(text, cfg.ExcludedTextKeywords) {
			return skip("text post contains an excluded keyword")
		}
	}

	if !post.IsSelf && match.MatchesDomain(post.URL, cfg.ExcludedDomains) {
		return skip("link domain is excluded")
	}

	// enabled post-type categories
	if cfg.EnforceGalleries && post.IsGallery {
		return enforce("gallery post")
	}
	if cfg.EnforceImages && post.isImage() {
		return enforce("image post")
	}
	if cfg.EnforceVideos && post.isVideoPost() {
		return enforce("video post")
	}
	if cfg.EnforceTextWithURL && post.IsSelf && post.hasEmbeddedURL() {
		return enforce("text post with embedded link")
	}
	if len(cfg.EnforceTextKeywords) > 0 && post.IsSelf && match.MatchesAnyPattern(text, cfg.EnforceTextKeywords) {
		return enforce("text post matches enforcement keywords")
	}
	if len(cfg.EnforceDomains) > 0 && !post.IsSelf && match.MatchesDomain(post.URL, cfg.EnforceDomains) {
		return enforce("link domain requires explanation")
	}
	if cfg.EnforceAllLinks && !post.IsSelf && post.URL != "" {
		return enforce("link post")
	}

	return skip("post type does not require an explanation")
}
