package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/Zwemvest/paradoxplazabot-sub001/rulefive/match"
)

// EnforcementPolicy selects what happens when a post fails its final check.
type EnforcementPolicy string

const (
	PolicyRemove EnforcementPolicy = "remove"
	PolicyReport EnforcementPolicy = "report"
	PolicyBoth   EnforcementPolicy = "both"
)

// ExplanationSource selects where a valid explanation may live.
type ExplanationSource string

const (
	SourceSelftext ExplanationSource = "selftext"
	SourceComment  ExplanationSource = "comment"
	SourceBoth     ExplanationSource = "both"
)

// Config is the full, typed enforcement configuration. It is built once at
// startup and treated as an immutable snapshot; the engine holds no other
// mutable settings state.
type Config struct {
	Subreddit   string
	BotUsername string

	// enabled post-type categories
	EnforceImages       bool
	EnforceGalleries    bool
	EnforceVideos       bool
	EnforceTextWithURL  bool
	EnforceAllLinks     bool
	EnforceTextKeywords []string
	EnforceDomains      []string

	// exclusion rules
	AllowedAuthors       []string
	ExcludedFlairs       []string
	EnforcedFlairs       []string
	RespectApproved      bool
	SkipModeratorRemoved bool
	MaxPostAge           time.Duration
	UpvoteThreshold      int64
	SkipKeywords         []string
	ExcludedTextPrefixes []string
	ExcludedTextKeywords []string
	ExcludedDomains      []string

	// explanation requirements
	ExplanationSource    ExplanationSource
	MinExplanationLength int
	RequireAllKeywords   []string
	RequireOneKeyword    []string
	RequirePrefixes      []string
	RequireSuffixes      []string

	// escalation
	Policy        EnforcementPolicy
	GracePeriod   time.Duration
	WarningPeriod time.Duration

	// reinstatement channel
	ModmailKeywords []string
	AutoReinstate   bool
	AutoArchive     bool

	// which notification events get delivered (empty: all)
	NotifyEvents []string

	// message templates; empty fields fall back to the package defaults
	WarningTemplate           string
	RemovalTemplate           string
	ReplyNoPostIDTemplate     string
	ReplyNotFoundTemplate     string
	ReplyNotAuthorTemplate    string
	ReplyNotBotTemplate       string
	ReplyAlreadyLiveTemplate  string
	ReplyInvalidTemplate      string
	ReplySuccessTemplate      string
	ReplyErrorTemplate        string
}

// Validate rejects enum fields outside their known values. Called once at
// startup, so a typo in the policy or source setting fails the daemon
// immediately instead of silently disabling enforcement.
func (c *Config) Validate() error {
	switch c.Policy {
	case PolicyRemove, PolicyReport, PolicyBoth:
	default:
		return fmt.Errorf("unknown enforcement policy: %q (want remove, report, or both)", c.Policy)
	}
	switch c.ExplanationSource {
	case SourceSelftext, SourceComment, SourceBoth:
	default:
		return fmt.Errorf("unknown explanation source: %q (want selftext, comment, or both)", c.ExplanationSource)
	}
	return nil
}

// explanationRules binds the configured constraints into a match rule set.
func (c *Config) explanationRules() match.TextRules {
	return match.TextRules{
		MinLength:   c.MinExplanationLength,
		ContainsAll: c.RequireAllKeywords,
		ContainsOne: c.RequireOneKeyword,
		StartsWith:  c.RequirePrefixes,
		EndsWith:    c.RequireSuffixes,
	}
}

func (c *Config) notifyEnabled(event NotificationEvent) bool {
	if len(c.NotifyEvents) == 0 {
		return true
	}
	for _, e := range c.NotifyEvents {
		if strings.EqualFold(e, string(event)) {
			return true
		}
	}
	return false
}

// ParseKeywordList splits a newline-separated settings value into a clean
// keyword list, dropping empty lines.
func ParseKeywordList(raw string) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// ParseDomainList splits a newline- or comma-separated settings value into a
// clean domain list.
func ParseDomainList(raw string) []string {
	var out []string
	for _, chunk := range strings.FieldsFunc(raw, func(r rune) bool { return r == '\n' || r == ',' }) {
		chunk = strings.TrimSpace(chunk)
		if chunk != "" {
			out = append(out, chunk)
		}
	}
	return out
}
