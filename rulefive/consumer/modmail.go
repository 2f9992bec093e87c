package consumer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Zwemvest/paradoxplazabot-sub001/rulefive/engine"
)

// ModmailSource lists unread modmail conversations and acknowledges them.
type ModmailSource interface {
	ListUnreadConversations(ctx context.Context) ([]*engine.ModmailConversation, error)
	MarkConversationRead(ctx context.Context, conversationID string) error
}

// ModmailPoller feeds unread reinstatement requests to the engine. Each
// conversation is marked read before handling, so a crash mid-handling
// drops the request instead of replaying it forever.
type ModmailPoller struct {
	Logger   *slog.Logger
	Engine   *engine.Engine
	Source   ModmailSource
	Interval time.Duration
}

func (p *ModmailPoller) Run(ctx context.Context) error {
	if p.Engine == nil {
		return fmt.Errorf("nil engine")
	}
	p.Logger.Info("starting modmail poller", "interval", p.Interval)
	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := p.poll(ctx); err != nil {
				p.Logger.Error("modmail poll failed", "err", err)
			}
		}
	}
}

func (p *ModmailPoller) poll(ctx context.Context) error {
	convos, err := p.Source.ListUnreadConversations(ctx)
	if err != nil {
		return fmt.Errorf("listing unread modmail: %w", err)
	}
	for _, convo := range convos {
		if err := p.Source.MarkConversationRead(ctx, convo.ID); err != nil {
			p.Logger.Error("marking conversation read failed", "conversation", convo.ID, "err", err)
			continue
		}
		p.Engine.HandleModmail(ctx, convo)
	}
	return nil
}
