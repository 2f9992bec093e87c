package reddit

import (
	"context"
	"fmt"
	"net/url"

	"github.com/Zwemvest/paradoxplazabot-sub001/rulefive/engine"
)

// Modmail lists unread conversations for a subreddit. It implements
// consumer.ModmailSource.
type Modmail struct {
	client    *Client
	subreddit string
}

func NewModmail(client *Client, subreddit string) *Modmail {
	return &Modmail{client: client, subreddit: subreddit}
}

// the modmail API returns conversations and messages as flat maps keyed by
// id, with each conversation ordering its messages via objIds
type conversationsResponse struct {
	Conversations map[string]struct {
		ID      string `json:"id"`
		Subject string `json:"subject"`
		ObjIDs  []struct {
			ID  string `json:"id"`
			Key string `json:"key"`
		} `json:"objIds"`
	} `json:"conversations"`
	Messages map[string]struct {
		BodyMarkdown string `json:"bodyMarkdown"`
		Author       struct {
			Name string `json:"name"`
		} `json:"author"`
	} `json:"messages"`
	ConversationIDs []string `json:"conversationIds"`
}

func (m *Modmail) ListUnreadConversations(ctx context.Context) ([]*engine.ModmailConversation, error) {
	q := url.Values{}
	q.Set("entity", m.subreddit)
	q.Set("state", "new")
	q.Set("sort", "unread")
	q.Set("limit", "25")

	var out conversationsResponse
	if err := m.client.get(ctx, "/api/mod/conversations?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	return mapConversations(&out), nil
}

func mapConversations(out *conversationsResponse) []*engine.ModmailConversation {
	convos := make([]*engine.ModmailConversation, 0, len(out.ConversationIDs))
	for _, id := range out.ConversationIDs {
		raw, ok := out.Conversations[id]
		if !ok {
			continue
		}
		convo := &engine.ModmailConversation{
			ID:      raw.ID,
			Subject: raw.Subject,
		}
		for _, obj := range raw.ObjIDs {
			if obj.Key != "messages" {
				continue
			}
			msg, ok := out.Messages[obj.ID]
			if !ok {
				continue
			}
			convo.Messages = append(convo.Messages, engine.ModmailMessage{
				Author: msg.Author.Name,
				Body:   msg.BodyMarkdown,
			})
		}
		convos = append(convos, convo)
	}

	// the API sorts newest first; reverse so a backlog is handled in
	// arrival order
	reverse(convos)
	return convos
}

func reverse(c []*engine.ModmailConversation) {
	for i, j := 0, len(c)-1; i < j; i, j = i+1, j-1 {
		c[i], c[j] = c[j], c[i]
	}
}

func (m *Modmail) MarkConversationRead(ctx context.Context, conversationID string) error {
	form := url.Values{}
	form.Set("conversationIds", conversationID)
	if err := m.client.post(ctx, "/api/mod/conversations/read", form, nil); err != nil {
		return fmt.Errorf("marking conversation %s read: %w", conversationID, err)
	}
	return nil
}
