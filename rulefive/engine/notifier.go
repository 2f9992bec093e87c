package engine

import (
	"context"
	"log/slog"
)

type NotificationEvent string

const (
	NotifyWarning       NotificationEvent = "warning"
	NotifyRemoval       NotificationEvent = "removal"
	NotifyReinstatement NotificationEvent = "reinstatement"
	NotifyReport        NotificationEvent = "r5_report"
	NotifyInvalid       NotificationEvent = "r5_invalid"
	NotifyError         NotificationEvent = "error"
)

type Notification struct {
	Event     NotificationEvent
	Username  string
	Subreddit string
	PostURL   string
	Reason    string
}

// Interface for a type that can handle sending notifications
type Notifier interface {
	Send(ctx context.Context, note Notification) error
}

// MultiNotifier fans a notification out to every configured sink. Sink
// failures are logged and swallowed; Send never returns an error for a
// delivery failure.
type MultiNotifier struct {
	Logger *slog.Logger
	Sinks  []Notifier
}

var _ Notifier = (*MultiNotifier)(nil)

func (n *MultiNotifier) Send(ctx context.Context, note Notification) error {
	for _, sink := range n.Sinks {
		if err := sink.Send(ctx, note); err != nil {
			notificationsFailed.Inc()
			n.Logger.Error("webhook notification failed", "event", note.Event, "err", err)
		}
	}
	return nil
}

// notify dispatches a notification without blocking the state transition
// that produced it. Delivery failures never propagate.
func (eng *Engine) notify(ctx context.Context, note Notification) {
	if eng.Notifier == nil || !eng.Config.notifyEnabled(note.Event) {
		return
	}
	note.Subreddit = eng.Config.Subreddit
	go func(ctx context.Context) {
		if err := eng.Notifier.Send(ctx, note); err != nil {
			eng.Logger.Error("notification send failed", "event", note.Event, "err", err)
		}
	}(context.WithoutCancel(ctx))
}
