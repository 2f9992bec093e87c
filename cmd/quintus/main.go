package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Zwemvest/paradoxplazabot-sub001/reddit"
	"github.com/Zwemvest/paradoxplazabot-sub001/rulefive/engine"

	"github.com/carlmjohnson/versioninfo"
	_ "github.com/joho/godotenv/autoload"
	cli "github.com/urfave/cli/v2"
)

func main() {
	if err := run(os.Args); err != nil {
		slog.Error("exiting", "err", err)
		os.Exit(-1)
	}
}

func run(args []string) error {

	app := cli.App{
		Name:    "quintus",
		Usage:   "rule five enforcement daemon (every image needs its story)",
		Version: versioninfo.Short(),
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:     "subreddit",
			Usage:    "subreddit to moderate, without the /r/ prefix",
			Required: true,
			EnvVars:  []string{"QUINTUS_SUBREDDIT"},
		},
		&cli.StringFlag{
			Name:    "reddit-client-id",
			EnvVars: []string{"REDDIT_CLIENT_ID"},
		},
		&cli.StringFlag{
			Name:    "reddit-client-secret",
			EnvVars: []string{"REDDIT_CLIENT_SECRET"},
		},
		&cli.StringFlag{
			Name:    "reddit-username",
			EnvVars: []string{"REDDIT_USERNAME"},
		},
		&cli.StringFlag{
			Name:    "reddit-password",
			EnvVars: []string{"REDDIT_PASSWORD"},
		},
	}

	app.Commands = []*cli.Command{
		runCmd,
	}

	return app.Run(args)
}

var runCmd = &cli.Command{
	Name:  "run",
	Usage: "run the enforcement service",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "redis-url",
			Usage:   "redis connection URL for durable state; empty runs fully in-memory",
			EnvVars: []string{"QUINTUS_REDIS_URL", "REDIS_URL"},
		},
		&cli.StringFlag{
			Name:    "metrics-listen",
			Usage:   "IP or address, and port, to listen on for metrics APIs",
			Value:   ":3989",
			EnvVars: []string{"QUINTUS_METRICS_LISTEN"},
		},
		&cli.StringFlag{
			Name:    "slack-webhook-url",
			EnvVars: []string{"SLACK_WEBHOOK_URL"},
		},
		&cli.StringFlag{
			Name:    "discord-webhook-url",
			EnvVars: []string{"DISCORD_WEBHOOK_URL"},
		},
		&cli.StringFlag{
			Name:    "policy",
			Usage:   "what to do with unexplained posts: remove, report, or both",
			Value:   "remove",
			EnvVars: []string{"QUINTUS_POLICY"},
		},
		&cli.StringFlag{
			Name:    "explanation-source",
			Usage:   "where an explanation may live: comment, selftext, or both",
			Value:   "both",
			EnvVars: []string{"QUINTUS_EXPLANATION_SOURCE"},
		},
		&cli.IntFlag{
			Name:    "grace-minutes",
			Usage:   "minutes a new post may sit without explanation before a warning",
			Value:   10,
			EnvVars: []string{"QUINTUS_GRACE_MINUTES"},
		},
		&cli.IntFlag{
			Name:    "warning-minutes",
			Usage:   "minutes between the warning comment and enforcement",
			Value:   30,
			EnvVars: []string{"QUINTUS_WARNING_MINUTES"},
		},
		&cli.IntFlag{
			Name:    "min-explanation-length",
			Value:   50,
			EnvVars: []string{"QUINTUS_MIN_EXPLANATION_LENGTH"},
		},
		&cli.BoolFlag{
			Name:    "enforce-images",
			Value:   true,
			EnvVars: []string{"QUINTUS_ENFORCE_IMAGES"},
		},
		&cli.BoolFlag{
			Name:    "enforce-galleries",
			Value:   true,
			EnvVars: []string{"QUINTUS_ENFORCE_GALLERIES"},
		},
		&cli.BoolFlag{
			Name:    "enforce-videos",
			Value:   true,
			EnvVars: []string{"QUINTUS_ENFORCE_VIDEOS"},
		},
		&cli.BoolFlag{
			Name:    "enforce-text-with-url",
			EnvVars: []string{"QUINTUS_ENFORCE_TEXT_WITH_URL"},
		},
		&cli.BoolFlag{
			Name:    "enforce-all-links",
			EnvVars: []string{"QUINTUS_ENFORCE_ALL_LINKS"},
		},
		&cli.StringFlag{
			Name:    "enforce-domains",
			Usage:   "newline- or comma-separated domains whose links always need explanation",
			EnvVars: []string{"QUINTUS_ENFORCE_DOMAINS"},
		},
		&cli.StringFlag{
			Name:    "excluded-domains",
			Usage:   "newline- or comma-separated domains whose links never need explanation",
			EnvVars: []string{"QUINTUS_EXCLUDED_DOMAINS"},
		},
		&cli.StringFlag{
			Name:    "allowed-authors",
			Usage:   "newline-separated usernames exempt from enforcement",
			EnvVars: []string{"QUINTUS_ALLOWED_AUTHORS"},
		},
		&cli.StringFlag{
			Name:    "excluded-flairs",
			EnvVars: []string{"QUINTUS_EXCLUDED_FLAIRS"},
		},
		&cli.StringFlag{
			Name:    "enforced-flairs",
			EnvVars: []string{"QUINTUS_ENFORCED_FLAIRS"},
		},
		&cli.StringFlag{
			Name:    "skip-keywords",
			Usage:   "newline-separated keywords that exempt a post when found in its title or body",
			EnvVars: []string{"QUINTUS_SKIP_KEYWORDS"},
		},
		&cli.StringFlag{
			Name:    "require-one-keyword",
			Usage:   "newline-separated keywords, at least one of which a valid explanation must contain",
			EnvVars: []string{"QUINTUS_REQUIRE_ONE_KEYWORD"},
		},
		&cli.StringFlag{
			Name:    "require-all-keywords",
			Usage:   "newline-separated keywords, all of which a valid explanation must contain",
			EnvVars: []string{"QUINTUS_REQUIRE_ALL_KEYWORDS"},
		},
		&cli.StringFlag{
			Name:    "require-prefixes",
			Usage:   "newline-separated prefixes, one of which a valid explanation must start with",
			EnvVars: []string{"QUINTUS_REQUIRE_PREFIXES"},
		},
		&cli.StringFlag{
			Name:    "require-suffixes",
			Usage:   "newline-separated suffixes, one of which a valid explanation must end with",
			EnvVars: []string{"QUINTUS_REQUIRE_SUFFIXES"},
		},
		&cli.StringFlag{
			Name:    "excluded-text-prefixes",
			Usage:   "newline-separated title prefixes that exempt a text post",
			EnvVars: []string{"QUINTUS_EXCLUDED_TEXT_PREFIXES"},
		},
		&cli.StringFlag{
			Name:    "excluded-text-keywords",
			Usage:   "newline-separated keywords that exempt a text post",
			EnvVars: []string{"QUINTUS_EXCLUDED_TEXT_KEYWORDS"},
		},
		&cli.StringFlag{
			Name:    "enforce-text-keywords",
			Usage:   "newline-separated keywords that make a text post require an explanation",
			EnvVars: []string{"QUINTUS_ENFORCE_TEXT_KEYWORDS"},
		},
		&cli.IntFlag{
			Name:    "max-post-age-hours",
			Usage:   "skip posts older than this many hours; 0 disables the age check",
			EnvVars: []string{"QUINTUS_MAX_POST_AGE_HOURS"},
		},
		&cli.Int64Flag{
			Name:    "upvote-threshold",
			Usage:   "skip posts whose score is above this; 0 disables the score check",
			EnvVars: []string{"QUINTUS_UPVOTE_THRESHOLD"},
		},
		&cli.StringFlag{
			Name:    "notify-events",
			Usage:   "newline- or comma-separated notification events to deliver (warning, removal, reinstatement, r5_report, r5_invalid, error); empty delivers all",
			EnvVars: []string{"QUINTUS_NOTIFY_EVENTS"},
		},
		&cli.StringFlag{
			Name:    "warning-template",
			Usage:   "override for the warning comment body ({{author}}, {{min_length}}, {{warning_minutes}} tags)",
			EnvVars: []string{"QUINTUS_WARNING_TEMPLATE"},
		},
		&cli.StringFlag{
			Name:    "removal-template",
			Usage:   "override for the removal comment body ({{author}}, {{reason}} tags)",
			EnvVars: []string{"QUINTUS_REMOVAL_TEMPLATE"},
		},
		&cli.StringFlag{
			Name:    "reply-no-post-id-template",
			EnvVars: []string{"QUINTUS_REPLY_NO_POST_ID_TEMPLATE"},
		},
		&cli.StringFlag{
			Name:    "reply-not-found-template",
			EnvVars: []string{"QUINTUS_REPLY_NOT_FOUND_TEMPLATE"},
		},
		&cli.StringFlag{
			Name:    "reply-not-author-template",
			EnvVars: []string{"QUINTUS_REPLY_NOT_AUTHOR_TEMPLATE"},
		},
		&cli.StringFlag{
			Name:    "reply-not-bot-template",
			EnvVars: []string{"QUINTUS_REPLY_NOT_BOT_TEMPLATE"},
		},
		&cli.StringFlag{
			Name:    "reply-already-live-template",
			EnvVars: []string{"QUINTUS_REPLY_ALREADY_LIVE_TEMPLATE"},
		},
		&cli.StringFlag{
			Name:    "reply-invalid-template",
			EnvVars: []string{"QUINTUS_REPLY_INVALID_TEMPLATE"},
		},
		&cli.StringFlag{
			Name:    "reply-success-template",
			EnvVars: []string{"QUINTUS_REPLY_SUCCESS_TEMPLATE"},
		},
		&cli.StringFlag{
			Name:    "reply-error-template",
			EnvVars: []string{"QUINTUS_REPLY_ERROR_TEMPLATE"},
		},
		&cli.StringFlag{
			Name:    "modmail-keywords",
			Usage:   "newline- or comma-separated subject keywords that mark a reinstatement request",
			Value:   "rule 5,reinstate",
			EnvVars: []string{"QUINTUS_MODMAIL_KEYWORDS"},
		},
		&cli.BoolFlag{
			Name:    "auto-reinstate",
			Value:   true,
			EnvVars: []string{"QUINTUS_AUTO_REINSTATE"},
		},
		&cli.BoolFlag{
			Name:    "auto-archive",
			Value:   true,
			EnvVars: []string{"QUINTUS_AUTO_ARCHIVE"},
		},
		&cli.IntFlag{
			Name:    "poll-interval-seconds",
			Usage:   "how often to sweep the subreddit's new listing",
			Value:   60,
			EnvVars: []string{"QUINTUS_POLL_INTERVAL_SECONDS"},
		},
		&cli.IntFlag{
			Name:    "modmail-interval-seconds",
			Usage:   "how often to poll unread modmail",
			Value:   120,
			EnvVars: []string{"QUINTUS_MODMAIL_INTERVAL_SECONDS"},
		},
	},
	Action: func(cctx *cli.Context) error {
		ctx := context.Background()
		logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
		slog.SetDefault(logger)

		shutdownTracing, err := configOTEL("quintus")
		if err != nil {
			return err
		}
		defer func() {
			if err := shutdownTracing(context.Background()); err != nil {
				slog.Error("failed to shutdown trace exporter", "err", err)
			}
		}()

		creds := reddit.Credentials{
			ClientID:     cctx.String("reddit-client-id"),
			ClientSecret: cctx.String("reddit-client-secret"),
			Username:     cctx.String("reddit-username"),
			Password:     cctx.String("reddit-password"),
		}
		if creds.ClientID == "" || creds.Username == "" {
			return fmt.Errorf("reddit script-app credentials are required")
		}

		ecfg := engine.Config{
			Subreddit:            cctx.String("subreddit"),
			BotUsername:          creds.Username,
			EnforceImages:        cctx.Bool("enforce-images"),
			EnforceGalleries:     cctx.Bool("enforce-galleries"),
			EnforceVideos:        cctx.Bool("enforce-videos"),
			EnforceTextWithURL:   cctx.Bool("enforce-text-with-url"),
			EnforceAllLinks:      cctx.Bool("enforce-all-links"),
			EnforceDomains:       engine.ParseDomainList(cctx.String("enforce-domains")),
			ExcludedDomains:      engine.ParseDomainList(cctx.String("excluded-domains")),
			AllowedAuthors:       engine.ParseKeywordList(cctx.String("allowed-authors")),
			ExcludedFlairs:       engine.ParseKeywordList(cctx.String("excluded-flairs")),
			EnforcedFlairs:       engine.ParseKeywordList(cctx.String("enforced-flairs")),
			SkipKeywords:         engine.ParseKeywordList(cctx.String("skip-keywords")),
			RespectApproved:      true,
			SkipModeratorRemoved: true,
			ExcludedTextPrefixes: engine.ParseKeywordList(cctx.String("excluded-text-prefixes")),
			ExcludedTextKeywords: engine.ParseKeywordList(cctx.String("excluded-text-keywords")),
			EnforceTextKeywords:  engine.ParseKeywordList(cctx.String("enforce-text-keywords")),
			MaxPostAge:           time.Duration(cctx.Int("max-post-age-hours")) * time.Hour,
			UpvoteThreshold:      cctx.Int64("upvote-threshold"),
			ExplanationSource:    engine.ExplanationSource(cctx.String("explanation-source")),
			MinExplanationLength: cctx.Int("min-explanation-length"),
			RequireOneKeyword:    engine.ParseKeywordList(cctx.String("require-one-keyword")),
			RequireAllKeywords:   engine.ParseKeywordList(cctx.String("require-all-keywords")),
			RequirePrefixes:      engine.ParseKeywordList(cctx.String("require-prefixes")),
			RequireSuffixes:      engine.ParseKeywordList(cctx.String("require-suffixes")),
			Policy:               engine.EnforcementPolicy(cctx.String("policy")),
			GracePeriod:          time.Duration(cctx.Int("grace-minutes")) * time.Minute,
			WarningPeriod:        time.Duration(cctx.Int("warning-minutes")) * time.Minute,
			ModmailKeywords:      engine.ParseDomainList(cctx.String("modmail-keywords")),
			AutoReinstate:        cctx.Bool("auto-reinstate"),
			AutoArchive:          cctx.Bool("auto-archive"),
			NotifyEvents:         engine.ParseDomainList(cctx.String("notify-events")),

			WarningTemplate:          cctx.String("warning-template"),
			RemovalTemplate:          cctx.String("removal-template"),
			ReplyNoPostIDTemplate:    cctx.String("reply-no-post-id-template"),
			ReplyNotFoundTemplate:    cctx.String("reply-not-found-template"),
			ReplyNotAuthorTemplate:   cctx.String("reply-not-author-template"),
			ReplyNotBotTemplate:      cctx.String("reply-not-bot-template"),
			ReplyAlreadyLiveTemplate: cctx.String("reply-already-live-template"),
			ReplyInvalidTemplate:     cctx.String("reply-invalid-template"),
			ReplySuccessTemplate:     cctx.String("reply-success-template"),
			ReplyErrorTemplate:       cctx.String("reply-error-template"),
		}
		if err := ecfg.Validate(); err != nil {
			return err
		}

		srv, err := NewServer(creds, ServerConfig{
			Logger:            logger,
			Engine:            ecfg,
			RedisURL:          cctx.String("redis-url"),
			SlackWebhookURL:   cctx.String("slack-webhook-url"),
			DiscordWebhookURL: cctx.String("discord-webhook-url"),
			PollInterval:      time.Duration(cctx.Int("poll-interval-seconds")) * time.Second,
			ModmailInterval:   time.Duration(cctx.Int("modmail-interval-seconds")) * time.Second,
		})
		if err != nil {
			return err
		}

		go func() {
			if err := srv.RunMetrics(cctx.String("metrics-listen")); err != nil {
				slog.Error("failed to start metrics endpoint", "error", err)
				panic(fmt.Errorf("failed to start metrics endpoint: %w", err))
			}
		}()

		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("failed to run enforcement service: %w", err)
		}
		return nil
	},
}
