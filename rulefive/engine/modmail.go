package engine

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/Zwemvest/paradoxplazabot-sub001/rulefive/match"
)

// Post id extraction patterns, tried in order: full permalink, shortlink,
// then a bare 6-7 character alphanumeric token containing at least one
// digit, matched as a whole word. These are fixed patterns compiled once,
// not operator-configurable matching (which stays regex-free in match).
var (
	permalinkIDPattern = regexp.MustCompile(`/comments/([a-zA-Z0-9]+)`)
	shortlinkIDPattern = regexp.MustCompile(`redd\.it/([a-zA-Z0-9]+)`)
	bareIDPattern      = regexp.MustCompile(`\b([a-zA-Z0-9]{6,7})\b`)
)

// ExtractPostID pulls a post id out of free-form modmail text. Returns ""
// when no id-shaped token is present.
func ExtractPostID(text string) string {
	if m := permalinkIDPattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	if m := shortlinkIDPattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	for _, m := range bareIDPattern.FindAllStringSubmatch(text, -1) {
		if strings.ContainsAny(m[1], "0123456789") {
			return m[1]
		}
	}
	return ""
}

// HandleModmail runs the reinstatement pipeline for one inbound modmail
// conversation. Each gate short-circuits to its own templated reply; only a
// request that passes authorship, bot-removal provenance, and explanation
// validation results in an approval. Unexpected errors are answered with a
// best-effort generic reply and never re-thrown.
func (eng *Engine) HandleModmail(ctx context.Context, convo *ModmailConversation) {
	logger := eng.Logger.With("conversation", convo.ID)
	defer func() {
		if r := recover(); r != nil {
			logger.Error("modmail handling exception", "err", r)
			eng.replyBestEffort(ctx, convo.ID, DefaultReplyError, logger)
		}
	}()

	if !match.ContainsOne(convo.Subject, eng.Config.ModmailKeywords) {
		logger.Debug("subject does not match reinstatement keywords")
		return
	}
	if !eng.Config.AutoReinstate {
		logger.Debug("auto-reinstatement disabled")
		return
	}

	outcome, err := eng.runReinstatement(ctx, convo, logger)
	if err != nil {
		modmailHandled.WithLabelValues("error").Inc()
		logger.Error("modmail handling failed", "err", err)
		eng.replyBestEffort(ctx, convo.ID, fallback(eng.Config.ReplyErrorTemplate, DefaultReplyError), logger)
		eng.notify(ctx, Notification{Event: NotifyError, Reason: err.Error()})
		return
	}
	modmailHandled.WithLabelValues(outcome).Inc()
}

func (eng *Engine) runReinstatement(ctx context.Context, convo *ModmailConversation, logger *slog.Logger) (string, error) {
	msg := convo.LastMessage()
	if msg == nil {
		return "empty", nil
	}

	postID := ExtractPostID(msg.Body)
	if postID == "" {
		logger.Info("no post id in reinstatement request")
		return "no_post_id", eng.reply(ctx, convo.ID, fallback(eng.Config.ReplyNoPostIDTemplate, DefaultReplyNoPostID), nil, false, logger)
	}
	logger = logger.With("post", postID)

	post, err := eng.Platform.GetPost(ctx, postID)
	if err != nil {
		return "", fmt.Errorf("resolving post: %w", err)
	}
	if post == nil {
		logger.Info("reinstatement request for unknown post")
		return "not_found", eng.reply(ctx, convo.ID, fallback(eng.Config.ReplyNotFoundTemplate, DefaultReplyNotFound),
			map[string]string{"postid": postID}, false, logger)
	}

	if !strings.EqualFold(msg.Author, post.Author) {
		logger.Info("reinstatement request from non-author", "requester", msg.Author, "author", post.Author)
		return "not_author", eng.reply(ctx, convo.ID, fallback(eng.Config.ReplyNotAuthorTemplate, DefaultReplyNotAuthor), nil, false, logger)
	}

	if !post.Removed {
		logger.Info("post is not removed, nothing to reinstate")
		return "already_live", eng.reply(ctx, convo.ID, fallback(eng.Config.ReplyAlreadyLiveTemplate, DefaultReplyAlreadyLive),
			nil, eng.Config.AutoArchive, logger)
	}

	// security gate: never auto-approve a removal this bot did not perform
	removedByBot, err := eng.Store.IsRemovedByBot(ctx, postID)
	if err != nil {
		return "", fmt.Errorf("reading removal provenance: %w", err)
	}
	if !removedByBot {
		logger.Info("post was removed by a human moderator, refusing auto-reinstatement")
		return "not_bot_removal", eng.reply(ctx, convo.ID, fallback(eng.Config.ReplyNotBotTemplate, DefaultReplyNotBot), nil, false, logger)
	}

	comment, err := eng.Platform.GetAuthorTopLevelComment(ctx, postID, post.Author)
	if err != nil {
		return "", fmt.Errorf("fetching author comment: %w", err)
	}
	res := eng.ValidateExplanation(post, comment)
	if !res.Valid {
		logger.Info("reinstatement request without valid explanation", "reason", res.Reason)
		eng.notify(ctx, Notification{
			Event:    NotifyInvalid,
			Username: post.Author,
			PostURL:  post.Permalink,
			Reason:   res.Reason,
		})
		return "invalid", eng.reply(ctx, convo.ID, fallback(eng.Config.ReplyInvalidTemplate, DefaultReplyInvalid),
			map[string]string{
				"reason":     res.Reason,
				"min_length": strconv.Itoa(eng.Config.MinExplanationLength),
			}, false, logger)
	}

	if err := eng.Actions.ApprovePost(ctx, postID); err != nil {
		return "", fmt.Errorf("approving post: %w", err)
	}
	if err := eng.Store.MarkApproved(ctx, postID); err != nil {
		return "", fmt.Errorf("recording approval: %w", err)
	}
	reinstatements.Inc()
	logger.Info("reinstated post")

	eng.notify(ctx, Notification{
		Event:    NotifyReinstatement,
		Username: post.Author,
		PostURL:  post.Permalink,
	})
	return "approved", eng.reply(ctx, convo.ID, fallback(eng.Config.ReplySuccessTemplate, DefaultReplySuccess),
		map[string]string{"permalink": post.Permalink}, eng.Config.AutoArchive, logger)
}

// reply sends a templated reply, then optionally archives the conversation.
// Archiving happens after the reply is already delivered, so a failure there
// is logged and swallowed rather than surfaced as a pipeline error.
func (eng *Engine) reply(ctx context.Context, conversationID, tpl string, vars map[string]string, archive bool, logger *slog.Logger) error {
	body := RenderTemplate(tpl, vars)
	if err := eng.Actions.ReplyToConversation(ctx, conversationID, body); err != nil {
		return fmt.Errorf("replying to conversation: %w", err)
	}
	if archive {
		if err := eng.Actions.ArchiveConversation(ctx, conversationID); err != nil {
			logger.Error("archiving conversation failed", "err", err)
		}
	}
	return nil
}

func (eng *Engine) replyBestEffort(ctx context.Context, conversationID, body string, logger *slog.Logger) {
	if err := eng.Actions.ReplyToConversation(ctx, conversationID, body); err != nil {
		logger.Error("error reply failed", "err", err)
	}
}
