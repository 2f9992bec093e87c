package match

import (
	"net/url"
	"strings"
)

// Keyword and URL matching helpers for enforcement rules.
//
// All matching is substring/prefix/suffix based and runs in time linear in
// input length times pattern count. Post and comment text is attacker
// supplied, so no regular expression engine is applied to it.

// ContainsOne reports whether text contains at least one of the keywords,
// case-insensitive. An empty keyword list is vacuously true.
func ContainsOne(text string, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// ContainsAll reports whether text contains every keyword, case-insensitive.
// An empty keyword list is vacuously true.
func ContainsAll(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if !strings.Contains(lower, strings.ToLower(kw)) {
			return false
		}
	}
	return true
}

// StartsWith reports whether the trimmed text starts with one of the
// prefixes, case-insensitive. An empty prefix list is vacuously true.
func StartsWith(text string, prefixes []string) bool {
	if len(prefixes) == 0 {
		return true
	}
	lower := strings.ToLower(strings.TrimSpace(text))
	for _, p := range prefixes {
		if p == "" {
			continue
		}
		if strings.HasPrefix(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

// EndsWith reports whether the trimmed text ends with one of the suffixes,
// case-insensitive. An empty suffix list is vacuously true.
func EndsWith(text string, suffixes []string) bool {
	if len(suffixes) == 0 {
		return true
	}
	lower := strings.ToLower(strings.TrimSpace(text))
	for _, s := range suffixes {
		if s == "" {
			continue
		}
		if strings.HasSuffix(lower, strings.ToLower(s)) {
			return true
		}
	}
	return false
}

// MeetsMinimumLength reports whether text, after trimming surrounding
// whitespace, is at least n characters long.
func MeetsMinimumLength(text string, n int) bool {
	return len([]rune(strings.TrimSpace(text))) >= n
}

// MatchesDomain reports whether the URL's hostname contains one of the
// configured domains, case-insensitive. Matching is a substring check, so
// "reddit.com" also matches subdomains. An unparseable URL never matches.
func MatchesDomain(rawURL string, domains []string) bool {
	if rawURL == "" || len(domains) == 0 {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return false
	}
	for _, d := range domains {
		if d == "" {
			continue
		}
		if strings.Contains(host, strings.ToLower(d)) {
			return true
		}
	}
	return false
}

// MatchesAnyPattern reports whether text contains one of the raw patterns as
// a substring, case-insensitive. Used for URL-shaped or extension-shaped
// patterns (".png", "i.redd.it/...") that are not standalone domains.
func MatchesAnyPattern(text string, patterns []string) bool {
	if text == "" || len(patterns) == 0 {
		return false
	}
	lower := strings.ToLower(text)
	for _, p := range patterns {
		if p == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}
