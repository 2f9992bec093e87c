package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsOne(t *testing.T) {
	assert := assert.New(t)

	fixtures := []struct {
		text     string
		keywords []string
		out      bool
	}{
		{text: "anything at all", keywords: nil, out: true},
		{text: "", keywords: []string{}, out: true},
		{text: "this map shows the HRE in 1444", keywords: []string{"hre", "byzantium"}, out: true},
		{text: "this map shows the HRE in 1444", keywords: []string{"byzantium"}, out: false},
		{text: "BECAUSE reasons", keywords: []string{"because"}, out: true},
		{text: "", keywords: []string{"because"}, out: false},
	}

	for _, fix := range fixtures {
		assert.Equal(fix.out, ContainsOne(fix.text, fix.keywords), "text=%q keywords=%v", fix.text, fix.keywords)
	}
}

func TestContainsAll(t *testing.T) {
	assert := assert.New(t)

	assert.True(ContainsAll("whatever", nil))
	assert.True(ContainsAll("the EMPIRE fell because of coalitions", []string{"empire", "because"}))
	assert.False(ContainsAll("the EMPIRE fell", []string{"empire", "because"}))
	assert.False(ContainsAll("", []string{"empire"}))
}

func TestStartsEndsWith(t *testing.T) {
	assert := assert.New(t)

	assert.True(StartsWith("  R5: a map of europe", []string{"r5:"}))
	assert.False(StartsWith("a map of europe, R5 below", []string{"r5:"}))
	assert.True(StartsWith("anything", nil))

	assert.True(EndsWith("explained above. thanks!  ", []string{"thanks!"}))
	assert.False(EndsWith("thanks! explained above.", []string{"thanks!"}))
	assert.True(EndsWith("anything", nil))
}

func TestMeetsMinimumLength(t *testing.T) {
	assert := assert.New(t)

	assert.True(MeetsMinimumLength("12345", 5))
	assert.False(MeetsMinimumLength("  1234  ", 5))
	assert.True(MeetsMinimumLength("anything", 0))
	assert.False(MeetsMinimumLength("   ", 1))
}

func TestMatchesDomain(t *testing.T) {
	assert := assert.New(t)

	fixtures := []struct {
		url     string
		domains []string
		out     bool
	}{
		{url: "https://i.imgur.com/abc.png", domains: []string{"imgur.com"}, out: true},
		{url: "https://old.reddit.com/r/test", domains: []string{"reddit.com"}, out: true},
		{url: "https://example.com/page", domains: []string{"imgur.com"}, out: false},
		{url: "::not a url::", domains: []string{"imgur.com"}, out: false},
		{url: "https://imgur.com/a/xyz", domains: nil, out: false},
		{url: "", domains: []string{"imgur.com"}, out: false},
	}

	for _, fix := range fixtures {
		assert.Equal(fix.out, MatchesDomain(fix.url, fix.domains), "url=%q domains=%v", fix.url, fix.domains)
	}
}

func TestMatchesAnyPattern(t *testing.T) {
	assert := assert.New(t)

	assert.True(MatchesAnyPattern("https://cdn.site/thing.PNG", []string{".png", ".jpg"}))
	assert.False(MatchesAnyPattern("https://cdn.site/thing.gif", []string{".png", ".jpg"}))
	assert.False(MatchesAnyPattern("anything", nil))
}
