package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var submissionsProcessed = promauto.NewCounter(prometheus.CounterOpts{
	Name: "rulefive_submissions_processed",
	Help: "Number of new submissions processed (post-dedup)",
})

var submissionsDeduped = promauto.NewCounter(prometheus.CounterOpts{
	Name: "rulefive_submissions_deduped",
	Help: "Number of submission sightings dropped by the seen-mark",
})

var checksHandled = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "rulefive_checks_handled",
	Help: "Number of scheduled compliance checks handled",
}, []string{"kind"})

var checksFailed = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "rulefive_checks_failed",
	Help: "Number of scheduled compliance checks that failed",
}, []string{"kind"})

var warningsIssued = promauto.NewCounter(prometheus.CounterOpts{
	Name: "rulefive_warnings_issued",
	Help: "Number of warning comments issued",
})

var removalsIssued = promauto.NewCounter(prometheus.CounterOpts{
	Name: "rulefive_removals_issued",
	Help: "Number of posts removed",
})

var reportsIssued = promauto.NewCounter(prometheus.CounterOpts{
	Name: "rulefive_reports_issued",
	Help: "Number of posts reported instead of removed",
})

var reinstatements = promauto.NewCounter(prometheus.CounterOpts{
	Name: "rulefive_reinstatements",
	Help: "Number of posts reinstated via modmail",
})

var modmailHandled = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "rulefive_modmail_handled",
	Help: "Number of modmail reinstatement requests handled, by outcome",
}, []string{"outcome"})

var notificationsFailed = promauto.NewCounter(prometheus.CounterOpts{
	Name: "rulefive_notifications_failed",
	Help: "Number of webhook notification deliveries that failed",
})
