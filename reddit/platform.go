package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Zwemvest/paradoxplazabot-sub001/rulefive/engine"
)

// Platform reads submissions and comments from a single subreddit. It
// implements engine.PlatformClient.
type Platform struct {
	client    *Client
	subreddit string
}

func NewPlatform(client *Client, subreddit string) *Platform {
	return &Platform{client: client, subreddit: subreddit}
}

var _ engine.PlatformClient = (*Platform)(nil)

// thing wrappers for the listing envelope the API wraps everything in
type listing struct {
	Data struct {
		Children []thing `json:"children"`
	} `json:"data"`
}

type thing struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

type postData struct {
	ID            string  `json:"id"`
	Author        string  `json:"author"`
	Title         string  `json:"title"`
	SelfText      string  `json:"selftext"`
	URL           string  `json:"url"`
	Permalink     string  `json:"permalink"`
	LinkFlairText string  `json:"link_flair_text"`
	PostHint      string  `json:"post_hint"`
	IsSelf        bool    `json:"is_self"`
	IsGallery     bool    `json:"is_gallery"`
	IsVideo       bool    `json:"is_video"`
	Score         int64   `json:"score"`
	CreatedUTC    float64 `json:"created_utc"`
	// null unless a moderator removed or approved the post
	RemovedByCategory string `json:"removed_by_category"`
	ApprovedBy        string `json:"approved_by"`
}

type commentData struct {
	ID         string  `json:"id"`
	Author     string  `json:"author"`
	Body       string  `json:"body"`
	CreatedUTC float64 `json:"created_utc"`
}

func (d *postData) toPost() *engine.Post {
	return &engine.Post{
		ID:        d.ID,
		Author:    d.Author,
		Title:     d.Title,
		SelfText:  d.SelfText,
		URL:       d.URL,
		Permalink: "https://www.reddit.com" + d.Permalink,
		Flair:     d.LinkFlairText,
		PostHint:  d.PostHint,
		IsSelf:    d.IsSelf,
		IsGallery: d.IsGallery,
		IsVideo:   d.IsVideo,
		Score:     d.Score,
		CreatedAt: time.Unix(int64(d.CreatedUTC), 0).UTC(),
		Removed:   d.RemovedByCategory != "",
		Approved:  d.ApprovedBy != "",
	}
}

// GetPost fetches a single submission by bare id. It returns (nil, nil)
// when the post no longer exists (deleted by the author or purged).
func (p *Platform) GetPost(ctx context.Context, postID string) (*engine.Post, error) {
	var out listing
	path := fmt.Sprintf("/api/info?id=t3_%s&raw_json=1", url.QueryEscape(postID))
	if err := p.client.get(ctx, path, &out); err != nil {
		return nil, err
	}
	if len(out.Data.Children) == 0 {
		return nil, nil
	}
	var d postData
	if err := json.Unmarshal(out.Data.Children[0].Data, &d); err != nil {
		return nil, fmt.Errorf("parsing post %s: %w", postID, err)
	}
	if d.Author == "[deleted]" {
		return nil, nil
	}
	return d.toPost(), nil
}

// GetAuthorTopLevelComment returns the author's earliest top-level comment
// on their own post, or nil if they have not commented.
func (p *Platform) GetAuthorTopLevelComment(ctx context.Context, postID, author string) (*engine.Comment, error) {
	// the comments endpoint returns a two-element array: the post
	// listing, then the top-level comment tree
	var out []listing
	path := fmt.Sprintf("/comments/%s?depth=1&limit=100&sort=old&raw_json=1", url.PathEscape(postID))
	if err := p.client.get(ctx, path, &out); err != nil {
		return nil, err
	}
	if len(out) < 2 {
		return nil, nil
	}
	for _, child := range out[1].Data.Children {
		if child.Kind != "t1" {
			continue
		}
		var d commentData
		if err := json.Unmarshal(child.Data, &d); err != nil {
			continue
		}
		if !strings.EqualFold(d.Author, author) {
			continue
		}
		return &engine.Comment{
			ID:        d.ID,
			Author:    d.Author,
			Body:      d.Body,
			CreatedAt: time.Unix(int64(d.CreatedUTC), 0).UTC(),
		}, nil
	}
	return nil, nil
}

// ListNewPosts pages the subreddit's new listing, most recent first. The
// before cursor is a bare post id; pass "" for the first page.
func (p *Platform) ListNewPosts(ctx context.Context, before string, limit int) ([]*engine.Post, error) {
	q := url.Values{}
	q.Set("limit", fmt.Sprintf("%d", limit))
	q.Set("raw_json", "1")
	if before != "" {
		q.Set("before", "t3_"+before)
	}
	var out listing
	path := fmt.Sprintf("/r/%s/new?%s", url.PathEscape(p.subreddit), q.Encode())
	if err := p.client.get(ctx, path, &out); err != nil {
		return nil, err
	}
	posts := make([]*engine.Post, 0, len(out.Data.Children))
	for _, child := range out.Data.Children {
		if child.Kind != "t3" {
			continue
		}
		var d postData
		if err := json.Unmarshal(child.Data, &d); err != nil {
			return nil, fmt.Errorf("parsing listing entry: %w", err)
		}
		posts = append(posts, d.toPost())
	}
	return posts, nil
}
