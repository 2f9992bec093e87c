package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/Zwemvest/paradoxplazabot-sub001/rulefive/scheduler"
	"github.com/Zwemvest/paradoxplazabot-sub001/rulefive/statestore"
)

// runtime for enforcing the explanation rule: classifies new submissions,
// schedules delayed compliance checks, and drives warn/remove/reinstate
// transitions through the state store.
type Engine struct {
	Logger    *slog.Logger
	Config    Config
	Store     statestore.StateStore
	Scheduler scheduler.Scheduler
	Platform  PlatformClient
	Actions   ActionClient
	// optional; nil disables notifications
	Notifier Notifier
}

// ProcessSubmission handles one sighting of a post, from either the event
// stream or the polling sweep (both paths share the same dedup key).
// Classification or scheduling failures are returned for logging but never
// block the platform's own post-creation flow.
func (eng *Engine) ProcessSubmission(ctx context.Context, post *Post) error {
	// similar to an HTTP server, we want to recover any panics from rule execution
	defer func() {
		if r := recover(); r != nil {
			eng.Logger.Error("submission processing exception", "err", r, "post", post.ID)
		}
	}()

	// dedup before any other work, to keep the race window between
	// concurrent sightings as small as possible
	fresh, err := eng.Store.MarkSeenOnce(ctx, post.ID)
	if err != nil {
		return fmt.Errorf("marking post seen: %w", err)
	}
	if !fresh {
		submissionsDeduped.Inc()
		eng.Logger.Debug("post already processed", "post", post.ID)
		return nil
	}
	submissionsProcessed.Inc()

	logger := eng.Logger.With("post", post.ID, "author", post.Author)
	decision := eng.Classify(post)
	if !decision.ShouldEnforce {
		logger.Debug("not enforcing", "reason", decision.Reason)
		return nil
	}

	logger.Info("scheduling grace check", "reason", decision.Reason, "delay", eng.Config.GracePeriod)
	if err := eng.Scheduler.Schedule(ctx, post.ID, eng.Config.GracePeriod, scheduler.CheckGrace); err != nil {
		return fmt.Errorf("scheduling grace check: %w", err)
	}
	return nil
}

// ProcessSweep feeds polled posts through the same dedup/classify/schedule
// path as submission events. Per-post failures are logged, not propagated,
// so one bad post cannot stall the sweep.
func (eng *Engine) ProcessSweep(ctx context.Context, posts []*Post) {
	for _, post := range posts {
		if err := eng.ProcessSubmission(ctx, post); err != nil {
			eng.Logger.Error("sweep processing failed", "post", post.ID, "err", err)
		}
	}
}

// HandleScheduledCheck runs a due grace or warning check. Checks are
// idempotent re-validations: a post that gained an explanation, was removed
// by a moderator, or was deleted since scheduling results in a no-op.
func (eng *Engine) HandleScheduledCheck(ctx context.Context, postID string, kind scheduler.CheckKind) {
	defer func() {
		if r := recover(); r != nil {
			eng.Logger.Error("scheduled check exception", "err", r, "post", postID, "kind", kind)
		}
	}()
	checksHandled.WithLabelValues(string(kind)).Inc()

	logger := eng.Logger.With("post", postID, "kind", kind)
	if err := eng.runCheck(ctx, postID, kind, logger); err != nil {
		checksFailed.WithLabelValues(string(kind)).Inc()
		// a failed check is lost; the polling sweep is the only backup
		logger.Error("scheduled check failed", "err", err)
	}
}

func (eng *Engine) runCheck(ctx context.Context, postID string, kind scheduler.CheckKind, logger *slog.Logger) error {
	post, err := eng.Platform.GetPost(ctx, postID)
	if err != nil {
		return fmt.Errorf("resolving post: %w", err)
	}
	if post == nil {
		logger.Debug("post gone, skipping check")
		return nil
	}
	if post.Removed {
		// already removed, by us or by a human; nothing further to do
		logger.Debug("post already removed, skipping check")
		return nil
	}
	if eng.Config.RespectApproved && post.Approved {
		logger.Debug("post approved by a moderator, skipping check")
		return nil
	}

	comment, err := eng.Platform.GetAuthorTopLevelComment(ctx, postID, post.Author)
	if err != nil {
		return fmt.Errorf("fetching author comment: %w", err)
	}
	res := eng.ValidateExplanation(post, comment)
	if res.Valid {
		logger.Info("valid explanation found, leaving post alone")
		return nil
	}

	switch kind {
	case scheduler.CheckGrace:
		return eng.warn(ctx, post, res, logger)
	case scheduler.CheckWarning:
		return eng.enforcePost(ctx, post, res, logger)
	default:
		return fmt.Errorf("unknown check kind: %q", kind)
	}
}

func (eng *Engine) warn(ctx context.Context, post *Post, res ValidationResult, logger *slog.Logger) error {
	warned, err := eng.Store.IsWarned(ctx, post.ID)
	if err != nil {
		return fmt.Errorf("reading warned state: %w", err)
	}
	if warned {
		logger.Debug("post already warned, skipping duplicate warning")
		return nil
	}

	body := RenderTemplate(fallback(eng.Config.WarningTemplate, DefaultWarningTemplate), map[string]string{
		"author":          post.Author,
		"permalink":       post.Permalink,
		"reason":          res.Reason,
		"subreddit":       eng.Config.Subreddit,
		"min_length":      strconv.Itoa(eng.Config.MinExplanationLength),
		"warning_minutes": strconv.Itoa(int(eng.Config.WarningPeriod / time.Minute)),
	})
	commentID, err := eng.Actions.WarnComment(ctx, post.ID, body)
	if err != nil {
		return fmt.Errorf("issuing warning comment: %w", err)
	}
	if err := eng.Store.MarkWarned(ctx, post.ID, commentID); err != nil {
		return fmt.Errorf("recording warning: %w", err)
	}
	warningsIssued.Inc()
	logger.Info("warned post", "comment", commentID, "reason", res.Reason)

	eng.notify(ctx, Notification{
		Event:    NotifyWarning,
		Username: post.Author,
		PostURL:  post.Permalink,
		Reason:   res.Reason,
	})

	if err := eng.Scheduler.Schedule(ctx, post.ID, eng.Config.WarningPeriod, scheduler.CheckWarning); err != nil {
		return fmt.Errorf("scheduling warning check: %w", err)
	}
	return nil
}

func (eng *Engine) enforcePost(ctx context.Context, post *Post, res ValidationResult, logger *slog.Logger) error {
	// a fresh reinstatement suppresses re-removal for the cooldown window
	recent, err := eng.Store.WasRecentlyApproved(ctx, post.ID)
	if err != nil {
		return fmt.Errorf("reading approval state: %w", err)
	}
	if recent {
		logger.Info("post recently reinstated, skipping enforcement")
		return nil
	}
	already, err := eng.Store.IsRemovedByBot(ctx, post.ID)
	if err != nil {
		return fmt.Errorf("reading removal state: %w", err)
	}
	if already {
		logger.Debug("post already removed by bot, skipping duplicate removal")
		return nil
	}

	policy := eng.Config.Policy
	if policy == PolicyReport || policy == PolicyBoth {
		if err := eng.Actions.ReportPost(ctx, post.ID, "Missing Rule 5 explanation: "+res.Reason); err != nil {
			return fmt.Errorf("reporting post: %w", err)
		}
		reportsIssued.Inc()
		logger.Info("reported post", "reason", res.Reason)
		eng.notify(ctx, Notification{
			Event:    NotifyReport,
			Username: post.Author,
			PostURL:  post.Permalink,
			Reason:   res.Reason,
		})
	}
	if policy != PolicyRemove && policy != PolicyBoth {
		return nil
	}

	body := RenderTemplate(fallback(eng.Config.RemovalTemplate, DefaultRemovalTemplate), map[string]string{
		"author":     post.Author,
		"permalink":  post.Permalink,
		"reason":     res.Reason,
		"subreddit":  eng.Config.Subreddit,
		"min_length": strconv.Itoa(eng.Config.MinExplanationLength),
	})
	commentID, err := eng.Actions.RemovalComment(ctx, post.ID, body)
	if err != nil {
		return fmt.Errorf("issuing removal comment: %w", err)
	}
	if err := eng.Actions.RemovePost(ctx, post.ID); err != nil {
		return fmt.Errorf("removing post: %w", err)
	}
	if err := eng.Store.MarkRemoved(ctx, post.ID, commentID); err != nil {
		return fmt.Errorf("recording removal: %w", err)
	}
	removalsIssued.Inc()
	logger.Info("removed post", "comment", commentID, "reason", res.Reason)

	eng.notify(ctx, Notification{
		Event:    NotifyRemoval,
		Username: post.Author,
		PostURL:  post.Permalink,
		Reason:   res.Reason,
	})
	return nil
}
