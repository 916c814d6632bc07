package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/chatgpt-twitter-bot/server/internal/bot/chatgpt"
	"github.com/chatgpt-twitter-bot/server/internal/bot/model"
	"github.com/chatgpt-twitter-bot/server/internal/bot/repo"
	"github.com/chatgpt-twitter-bot/server/internal/bot/responder"
	"github.com/chatgpt-twitter-bot/server/internal/bot/segment"
	"github.com/chatgpt-twitter-bot/server/internal/bot/twitter"
	"github.com/chatgpt-twitter-bot/server/internal/core"
	logx "github.com/chatgpt-twitter-bot/server/pkg/logger"
)

type cliFlags struct {
	EnvFile     string
	DryRun      bool
	EarlyExit   bool
	DebugTweets []string
	Since       string
	Schedule    string
}

func (f cliFlags) runOptions() model.RunOptions {
	return model.RunOptions{
		DryRun:     f.DryRun,
		EarlyExit:  f.EarlyExit,
		DebugTweet: f.DebugTweets,
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags cliFlags
	cmd := &cobra.Command{
		Use:          "chatgpt-twitter-bot",
		Short:        "Answer Twitter mentions with ChatGPT",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), flags)
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.EnvFile, "env-file", ".env", "env file to load before reading the environment")
	f.BoolVar(&flags.DryRun, "dry-run", false, "answer mentions without posting or advancing the cursor")
	f.BoolVar(&flags.EarlyExit, "early-exit", false, "fetch and filter mentions, then stop")
	f.StringSliceVar(&flags.DebugTweets, "debug-tweet", nil, "process these tweet ids instead of the mentions timeline")
	f.StringVar(&flags.Since, "since", "", "mention id to start after, overriding the stored cursor on the first run")
	f.StringVar(&flags.Schedule, "schedule", "", "cron expression; run repeatedly instead of once")
	return cmd
}

type bot struct {
	responder *responder.Responder
	state     model.StateRepository
}

func run(ctx context.Context, flags cliFlags) error {
	cfg, err := loadConfig(flags.EnvFile)
	if err != nil {
		logx.Error().Err(err).Msg("failed to load config")
		return err
	}
	logx.Init(logx.LoggerOpts{Environment: core.ParseEnvironment(cfg.Environment)})

	b, cleanup, err := setup(ctx, cfg)
	if err != nil {
		logx.Error().Err(err).Msg("failed to initialise bot")
		return err
	}
	defer cleanup()

	schedule := flags.Schedule
	if schedule == "" {
		schedule = cfg.Bot.Schedule
	}
	if schedule == "" {
		return b.runOnce(ctx, flags.Since, flags.runOptions())
	}
	return b.runScheduled(ctx, schedule, flags)
}

func setup(ctx context.Context, cfg AppConfig) (*bot, func(), error) {
	cleanup := func() {}

	var (
		interactions model.InteractionRepository
		state        model.StateRepository
	)
	if cfg.Redis.Enabled {
		rdb, err := cfg.Redis.New(ctx)
		if err != nil {
			return nil, cleanup, fmt.Errorf("initialise redis: %w", err)
		}
		cleanup = func() { _ = rdb.Close() }

		ttl, err := cfg.Redis.TTL()
		if err != nil {
			return nil, cleanup, fmt.Errorf("invalid REDIS_INTERACTION_TTL %q: %w", cfg.Redis.InteractionTTL, err)
		}
		store := repo.NewRedisRepository(rdb, cfg.Redis.Namespace, ttl)
		interactions, state = store, store
		logx.Info().Str("namespace", cfg.Redis.Namespace).Msg("connected to redis")
	} else {
		store := repo.NewMemoryRepository()
		interactions, state = store, store
		logx.Warn().Msg("redis disabled, cursor and refresh token will not survive a restart")
	}

	httpClient, err := twitter.NewHTTPClient(ctx, cfg.Twitter, state)
	if err != nil {
		return nil, cleanup, fmt.Errorf("twitter auth: %w", err)
	}
	tw := twitter.NewClient(httpClient, cfg.Twitter)

	botUserID := cfg.Twitter.BotUserID
	if botUserID == "" {
		me, err := tw.Me(ctx)
		if err != nil {
			return nil, cleanup, err
		}
		botUserID = me.ID
		logx.Info().Str("user_id", me.ID).Str("username", me.Username).Msg("resolved bot user")
	}

	chat, err := chatgpt.New(ctx, cfg.AI, cfg.Bot.Handle)
	if err != nil {
		return nil, cleanup, fmt.Errorf("initialise AI client: %w", err)
	}

	seg, err := segment.Default()
	if err != nil {
		return nil, cleanup, fmt.Errorf("initialise sentence tokenizer: %w", err)
	}

	r, err := responder.New(responder.Options{
		Config:       cfg.Bot,
		BotUserID:    botUserID,
		Source:       tw,
		Chat:         chat,
		Creator:      tw,
		Segmenter:    seg,
		Interactions: interactions,
	})
	if err != nil {
		return nil, cleanup, err
	}
	return &bot{responder: r, state: state}, cleanup, nil
}

// runOnce answers pending mentions and saves the advanced cursor.
func (b *bot) runOnce(ctx context.Context, since string, opts model.RunOptions) error {
	if since == "" {
		stored, err := b.state.SinceMentionID(ctx)
		if err != nil {
			return fmt.Errorf("load since mention id: %w", err)
		}
		since = stored
	}

	session, err := b.responder.Run(ctx, since, opts)
	if err != nil {
		return err
	}
	if opts.DryRun || opts.EarlyExit || len(opts.DebugTweet) > 0 {
		return nil
	}
	if session.SinceMentionID != "" && session.SinceMentionID != since {
		if err := b.state.SetSinceMentionID(ctx, session.SinceMentionID); err != nil {
			return fmt.Errorf("save since mention id: %w", err)
		}
	}
	return nil
}

func (b *bot) runScheduled(ctx context.Context, schedule string, flags cliFlags) error {
	l := logx.CronLogger()
	c := cron.New(cron.WithLogger(l), cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l)))

	since := flags.Since
	_, err := c.AddFunc(schedule, func() {
		first := since
		since = ""
		if err := b.runOnce(ctx, first, flags.runOptions()); err != nil && !errors.Is(err, context.Canceled) {
			logx.Error().Err(err).Msg("scheduled run failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", strings.TrimSpace(schedule), err)
	}

	c.Start()
	logx.Info().Str("schedule", schedule).Msg("bot scheduled")

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
