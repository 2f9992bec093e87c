package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Zwemvest/paradoxplazabot-sub001/reddit"
	"github.com/Zwemvest/paradoxplazabot-sub001/rulefive/consumer"
	"github.com/Zwemvest/paradoxplazabot-sub001/rulefive/engine"
	"github.com/Zwemvest/paradoxplazabot-sub001/rulefive/scheduler"
	"github.com/Zwemvest/paradoxplazabot-sub001/rulefive/statestore"

	"github.com/redis/go-redis/v9"
)

type Server struct {
	logger        *slog.Logger
	engine        *engine.Engine
	poller        *consumer.Poller
	modmailPoller *consumer.ModmailPoller
	redisSched    *scheduler.RedisScheduler
}

type ServerConfig struct {
	Logger            *slog.Logger
	Engine            engine.Config
	RedisURL          string
	SlackWebhookURL   string
	DiscordWebhookURL string
	PollInterval      time.Duration
	ModmailInterval   time.Duration
}

func NewServer(creds reddit.Credentials, config ServerConfig) (*Server, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}

	client := reddit.NewClient(creds, logger)
	platform := reddit.NewPlatform(client, config.Engine.Subreddit)
	actions := reddit.NewActions(client)
	modmail := reddit.NewModmail(client, config.Engine.Subreddit)

	var notifier engine.Notifier
	var sinks []engine.Notifier
	if config.SlackWebhookURL != "" {
		sinks = append(sinks, &engine.SlackNotifier{WebhookURL: config.SlackWebhookURL})
	}
	if config.DiscordWebhookURL != "" {
		sinks = append(sinks, &engine.DiscordNotifier{WebhookURL: config.DiscordWebhookURL})
	}
	if len(sinks) > 0 {
		notifier = &engine.MultiNotifier{Logger: logger, Sinks: sinks}
	}

	// the engine and its scheduler reference each other; the handler
	// closure resolves eng at dispatch time, after wiring completes
	var eng *engine.Engine
	handler := func(ctx context.Context, postID string, kind scheduler.CheckKind) {
		eng.HandleScheduledCheck(ctx, postID, kind)
	}

	var store statestore.StateStore
	var sched scheduler.Scheduler
	var redisSched *scheduler.RedisScheduler
	var rdb *redis.Client
	if config.RedisURL != "" {
		st, err := statestore.NewRedisStateStore(config.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("initializing redis state store: %w", err)
		}
		store = st

		rs, err := scheduler.NewRedisScheduler(config.RedisURL, handler, logger)
		if err != nil {
			return nil, fmt.Errorf("initializing redis scheduler: %w", err)
		}
		sched = rs
		redisSched = rs

		// generic client, for cursor state
		opt, err := redis.ParseURL(config.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis URL: %w", err)
		}
		rdb = redis.NewClient(opt)
		if _, err := rdb.Ping(context.TODO()).Result(); err != nil {
			return nil, fmt.Errorf("redis ping failed: %w", err)
		}
	} else {
		logger.Info("redis not configured, running with in-memory state")
		store = statestore.NewMemStateStore(50_000)
		sched = scheduler.NewMemScheduler(handler)
	}

	eng = &engine.Engine{
		Logger:    logger,
		Config:    config.Engine,
		Store:     store,
		Scheduler: sched,
		Platform:  platform,
		Actions:   actions,
		Notifier:  notifier,
	}

	s := &Server{
		logger: logger,
		engine: eng,
		poller: &consumer.Poller{
			Logger:      logger,
			Engine:      eng,
			Platform:    platform,
			RedisClient: rdb,
			Interval:    config.PollInterval,
			PageSize:    100,
		},
		modmailPoller: &consumer.ModmailPoller{
			Logger:   logger,
			Engine:   eng,
			Source:   modmail,
			Interval: config.ModmailInterval,
		},
		redisSched: redisSched,
	}

	return s, nil
}

// Run starts the listing sweep, the modmail poller, and (when redis is
// configured) the durable check dispatcher, then blocks until the context
// is cancelled or a shutdown signal arrives.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errc := make(chan error, 3)
	go func() { errc <- s.poller.Run(ctx) }()
	go func() { errc <- s.modmailPoller.Run(ctx) }()
	if s.redisSched != nil {
		go func() { errc <- s.redisSched.Run(ctx) }()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		s.logger.Info("received shutdown signal", "signal", sig.String())
		cancel()
		return nil
	case err := <-errc:
		if err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	}
}
