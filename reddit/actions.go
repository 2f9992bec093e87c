package reddit

import (
	"context"
	"fmt"
	"net/url"

	"github.com/Zwemvest/paradoxplazabot-sub001/rulefive/engine"
)

// Actions performs moderator mutations. It implements engine.ActionClient.
// The authenticated account must be a moderator of the target subreddit
// with posts and mail permissions.
type Actions struct {
	client *Client
}

func NewActions(client *Client) *Actions {
	return &Actions{client: client}
}

var _ engine.ActionClient = (*Actions)(nil)

type commentResponse struct {
	JSON struct {
		Errors [][]string `json:"errors"`
		Data   struct {
			Things []struct {
				Kind string `json:"kind"`
				Data struct {
					ID string `json:"id"`
				} `json:"data"`
			} `json:"things"`
		} `json:"data"`
	} `json:"json"`
}

// stickyComment leaves a comment on a post, then distinguishes and stickies
// it so it renders as an official moderator notice.
func (a *Actions) stickyComment(ctx context.Context, postID, body string) (string, error) {
	form := url.Values{}
	form.Set("api_type", "json")
	form.Set("thing_id", "t3_"+postID)
	form.Set("text", body)

	var out commentResponse
	if err := a.client.post(ctx, "/api/comment", form, &out); err != nil {
		return "", err
	}
	if len(out.JSON.Errors) > 0 {
		return "", fmt.Errorf("commenting on %s: %v", postID, out.JSON.Errors[0])
	}
	if len(out.JSON.Data.Things) == 0 {
		return "", fmt.Errorf("commenting on %s: empty response", postID)
	}
	commentID := out.JSON.Data.Things[0].Data.ID

	form = url.Values{}
	form.Set("api_type", "json")
	form.Set("id", "t1_"+commentID)
	form.Set("how", "yes")
	form.Set("sticky", "true")
	if err := a.client.post(ctx, "/api/distinguish", form, nil); err != nil {
		// the comment exists either way; a failed sticky is cosmetic
		a.client.logger.Warn("failed to distinguish comment", "comment", commentID, "err", err)
	}
	return commentID, nil
}

func (a *Actions) WarnComment(ctx context.Context, postID, body string) (string, error) {
	return a.stickyComment(ctx, postID, body)
}

func (a *Actions) RemovalComment(ctx context.Context, postID, body string) (string, error) {
	return a.stickyComment(ctx, postID, body)
}

func (a *Actions) RemovePost(ctx context.Context, postID string) error {
	form := url.Values{}
	form.Set("id", "t3_"+postID)
	form.Set("spam", "false")
	return a.client.post(ctx, "/api/remove", form, nil)
}

func (a *Actions) ReportPost(ctx context.Context, postID, reason string) error {
	form := url.Values{}
	form.Set("api_type", "json")
	form.Set("thing_id", "t3_"+postID)
	form.Set("reason", reason)
	return a.client.post(ctx, "/api/report", form, nil)
}

func (a *Actions) ApprovePost(ctx context.Context, postID string) error {
	form := url.Values{}
	form.Set("id", "t3_"+postID)
	return a.client.post(ctx, "/api/approve", form, nil)
}

func (a *Actions) ReplyToConversation(ctx context.Context, conversationID, body string) error {
	form := url.Values{}
	form.Set("body", body)
	form.Set("isInternal", "false")
	form.Set("isAuthorHidden", "false")
	path := fmt.Sprintf("/api/mod/conversations/%s", url.PathEscape(conversationID))
	return a.client.post(ctx, path, form, nil)
}

func (a *Actions) ArchiveConversation(ctx context.Context, conversationID string) error {
	path := fmt.Sprintf("/api/mod/conversations/%s/archive", url.PathEscape(conversationID))
	return a.client.post(ctx, path, nil, nil)
}
