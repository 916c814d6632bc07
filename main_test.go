package main

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatgpt-twitter-bot/server/internal/bot/model"
	"github.com/chatgpt-twitter-bot/server/internal/bot/repo"
	"github.com/chatgpt-twitter-bot/server/internal/bot/responder"
	"github.com/chatgpt-twitter-bot/server/internal/bot/segment"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("REDIS_NAMESPACE", "bot")
	t.Setenv("TWITTER_CLIENT_ID", "cid")
	t.Setenv("TWITTER_BOT_USER_ID", "999")
	t.Setenv("AI_PROVIDER", "openai")
	t.Setenv("AI_API_KEY", "key")
	t.Setenv("BOT_HANDLE", "@MyBot")
	t.Setenv("BOT_PROMPT_DELAY", "250ms")
	t.Setenv("BOT_IGNORE_TWEETS", "1,2")

	cfg, err := loadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	assert.Equal(t, "bot", cfg.Redis.Namespace)
	assert.Equal(t, "cid", cfg.Twitter.ClientID)
	assert.Equal(t, "999", cfg.Twitter.BotUserID)
	assert.Equal(t, "https://api.twitter.com", cfg.Twitter.APIHost)
	assert.Equal(t, "openai", cfg.AI.Provider)
	assert.Equal(t, "@MyBot", cfg.Bot.Handle)
	assert.Equal(t, 250*time.Millisecond, cfg.Bot.PromptDelay)
	assert.Equal(t, 5, cfg.Bot.MaxMentions)
	assert.Equal(t, []string{"1", "2"}, cfg.Bot.IgnoreTweets)
	assert.Equal(t, 2*time.Hour, cfg.Bot.ResponseTimeout)
}

func TestRootCmdFlags(t *testing.T) {
	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--dry-run", "--debug-tweet", "1,2", "--since", "100", "--schedule", "*/5 * * * *"}))

	dry, _ := cmd.Flags().GetBool("dry-run")
	assert.True(t, dry)
	ids, _ := cmd.Flags().GetStringSlice("debug-tweet")
	assert.Equal(t, []string{"1", "2"}, ids)
	since, _ := cmd.Flags().GetString("since")
	assert.Equal(t, "100", since)
}

type stubSource struct{ since []string }

func (s *stubSource) FetchMentions(_ context.Context, _, sinceID string) (*model.MentionBatch, error) {
	s.since = append(s.since, sinceID)
	batch := model.NewMentionBatch()
	batch.AddPage([]*model.Tweet{{ID: "105", Text: "@ChatGPTBot what is go?", AuthorID: "1"}}, nil, nil)
	return batch, nil
}

func (s *stubSource) LookupTweets(context.Context, []string) (*model.MentionBatch, error) {
	return model.NewMentionBatch(), nil
}

type stubChat struct{}

func (stubChat) SendMessage(context.Context, string) (string, error) { return "A language.", nil }

type stubCreator struct{ n int }

func (c *stubCreator) CreateTweet(_ context.Context, text, _ string) (*model.CreatedTweet, error) {
	c.n++
	return &model.CreatedTweet{ID: fmt.Sprintf("20%d", c.n), Text: text}, nil
}

func newTestBot(t *testing.T) (*bot, *stubSource, *repo.MemoryRepository) {
	t.Helper()
	src := &stubSource{}
	store := repo.NewMemoryRepository()
	cfg := model.BotConfig{Handle: "@ChatGPTBot", MaxMentions: 5}
	r, err := responder.New(responder.Options{
		Config:       cfg,
		BotUserID:    "999",
		Source:       src,
		Chat:         stubChat{},
		Creator:      &stubCreator{},
		Segmenter:    segment.New(func(s string) []string { return []string{s} }),
		Interactions: store,
	})
	require.NoError(t, err)
	return &bot{responder: r, state: store}, src, store
}

func TestRunOnce_SavesCursor(t *testing.T) {
	ctx := context.Background()
	b, src, store := newTestBot(t)
	require.NoError(t, store.SetSinceMentionID(ctx, "100"))

	require.NoError(t, b.runOnce(ctx, "", model.RunOptions{}))

	assert.Equal(t, []string{"100"}, src.since)
	since, _ := store.SinceMentionID(ctx)
	assert.Equal(t, "105", since)
}

func TestRunOnce_DryRunKeepsCursor(t *testing.T) {
	ctx := context.Background()
	b, src, store := newTestBot(t)
	require.NoError(t, store.SetSinceMentionID(ctx, "100"))

	require.NoError(t, b.runOnce(ctx, "90", model.RunOptions{DryRun: true}))

	assert.Equal(t, []string{"90"}, src.since)
	since, _ := store.SinceMentionID(ctx)
	assert.Equal(t, "100", since)
}
