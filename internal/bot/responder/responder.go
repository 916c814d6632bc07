// Package responder runs one pass of the bot: fetch mentions, filter them,
// ask the AI backend and reply with threads, tracking circuit breakers and
// the since-mention cursor in a per-run Session.
package responder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chatgpt-twitter-bot/server/internal/bot/mentions"
	"github.com/chatgpt-twitter-bot/server/internal/bot/model"
	"github.com/chatgpt-twitter-bot/server/internal/bot/segment"
	"github.com/chatgpt-twitter-bot/server/internal/bot/thread"
	errx "github.com/chatgpt-twitter-bot/server/internal/core/error"
	logx "github.com/chatgpt-twitter-bot/server/pkg/logger"
)

const (
	persistTimeout         = 10 * time.Second
	defaultResponseTimeout = 2 * time.Hour
)

// in-band failures the AI backend reports inside an otherwise normal reply
var (
	rateLimitSentinels   = []string{"too many requests, please slow down"}
	expiredAuthSentinels = []string{"your authentication token has expired", "please try signing in again"}
)

// Options wires a Responder to its collaborators. Interactions is optional.
type Options struct {
	Config       model.BotConfig
	BotUserID    string
	Source       model.MentionSource
	Chat         model.ChatClient
	Creator      model.TweetCreator
	Segmenter    *segment.Segmenter
	Language     model.LanguageDetector
	Interactions model.InteractionRepository
}

type Responder struct {
	cfg          model.BotConfig
	botUserID    string
	source       model.MentionSource
	chat         model.ChatClient
	poster       *thread.Poster
	segmenter    *segment.Segmenter
	language     model.LanguageDetector
	policy       languagePolicy
	filter       *mentions.Filter
	interactions model.InteractionRepository

	sleep func(context.Context, time.Duration) error
}

func New(o Options) (*Responder, error) {
	switch {
	case o.Source == nil:
		return nil, fmt.Errorf("mention source is nil")
	case o.Chat == nil:
		return nil, fmt.Errorf("chat client is nil")
	case o.Creator == nil:
		return nil, fmt.Errorf("tweet creator is nil")
	case o.Segmenter == nil:
		return nil, fmt.Errorf("segmenter is nil")
	}
	if o.Language == nil {
		o.Language = WhatlangDetector{}
	}
	if o.Config.ResponseTimeout <= 0 {
		o.Config.ResponseTimeout = defaultResponseTimeout
	}

	return &Responder{
		cfg:          o.Config,
		botUserID:    o.BotUserID,
		source:       o.Source,
		chat:         o.Chat,
		poster:       thread.NewPoster(o.Creator),
		segmenter:    o.Segmenter,
		language:     o.Language,
		policy:       newLanguagePolicy(o.Config.LanguageAllow, o.Config.LanguageDisallow),
		filter:       mentions.NewFilter(o.Config.Handle, o.BotUserID, o.Config.IgnoreSet(), o.Config.MaxMentions),
		interactions: o.Interactions,
		sleep:        sleepCtx,
	}, nil
}

// Run answers every admitted mention newer than sinceID and returns the
// session. The returned SinceMentionID is the cursor to use next time.
func (r *Responder) Run(ctx context.Context, sinceID string, opts model.RunOptions) (*model.Session, error) {
	runID := uuid.NewString()
	ctx = logx.WithRun(ctx, runID)
	log := logx.Ctx(ctx)

	session := &model.Session{RunID: runID, SinceMentionID: sinceID}
	advance := func(id string) {
		if opts.DryRun || opts.EarlyExit || id == "" {
			return
		}
		session.SinceMentionID = model.MaxTweetID(session.SinceMentionID, id)
	}

	batch, err := r.fetch(ctx, sinceID, opts)
	if err != nil {
		return nil, err
	}

	res := r.filter.Apply(batch)
	for _, id := range res.Rejected {
		advance(id)
	}

	log.Info().Int("fetched", len(batch.Mentions)).Int("admitted", len(res.Prompts)).Msg("processing tweet mentions")
	if opts.EarlyExit {
		for _, p := range res.Prompts {
			log.Info().Str("mention_id", p.Mention.ID).Str("text", p.Mention.Text).Str("prompt", p.Text).Msg("admitted mention")
		}
		return session, nil
	}

	var pending sync.WaitGroup
	for i, prompt := range res.Prompts {
		in := r.process(ctx, session, batch, prompt, i, opts)
		session.Interactions = append(session.Interactions, in)

		if in.Error == "" && r.interactions != nil && !opts.DryRun {
			pending.Add(1)
			go func() {
				defer pending.Done()
				r.persist(ctx, in)
			}()
		}
	}
	pending.Wait()

	for _, in := range session.Interactions {
		if in.Settled() {
			advance(in.PromptTweetID)
		}
	}

	log.Info().
		Int("interactions", len(session.Interactions)).
		Str("since_mention_id", session.SinceMentionID).
		Bool("chatgpt_rate_limited", session.IsRateLimited).
		Bool("twitter_rate_limited", session.IsRateLimitedTwitter).
		Bool("chatgpt_auth_expired", session.IsExpiredAuth).
		Bool("twitter_auth_expired", session.IsExpiredAuthTwitter).
		Msg("run finished")
	return session, nil
}

func (r *Responder) fetch(ctx context.Context, sinceID string, opts model.RunOptions) (*model.MentionBatch, error) {
	if len(opts.DebugTweet) > 0 {
		batch, err := r.source.LookupTweets(ctx, opts.DebugTweet)
		if err != nil {
			return nil, fmt.Errorf("lookup debug tweets: %w", err)
		}
		return batch, nil
	}

	logx.Ctx(ctx).Info().Str("since_mention_id", sinceID).Msg("fetching mentions")
	batch, err := r.source.FetchMentions(ctx, r.botUserID, sinceID)
	if err != nil {
		return nil, fmt.Errorf("fetch mentions: %w", err)
	}
	return batch, nil
}

// process answers a single prompt. Failures are recorded on the returned
// interaction and never abort the run.
func (r *Responder) process(ctx context.Context, session *model.Session, batch *model.MentionBatch, prompt *model.Prompt, index int, opts model.RunOptions) *model.Interaction {
	in := &model.Interaction{PromptTweetID: prompt.Mention.ID, Prompt: prompt.Text}

	if msg := session.Tripped(); msg != "" {
		in.Error = msg
		return in
	}
	if prompt.Text == "" {
		in.Error = model.ErrEmptyPrompt
		in.IsErrorFinal = true
		return in
	}

	if index > 0 {
		if err := r.sleep(ctx, r.cfg.PromptDelay); err != nil {
			in.Error = err.Error()
			return in
		}
	}

	if err := r.answer(ctx, session, batch, prompt, in, opts); err != nil {
		r.fail(ctx, session, prompt, in, err, opts)
	}
	return in
}

func (r *Responder) answer(ctx context.Context, session *model.Session, batch *model.MentionBatch, prompt *model.Prompt, in *model.Interaction, opts model.RunOptions) error {
	log := logx.Ctx(ctx).With().Str("mention_id", prompt.Mention.ID).Logger()

	code, name := r.language.Detect(prompt.Text)
	if !r.policy.allowed(code) {
		if r.policy.rejected(code) {
			log.Error().Str("lang", code).Str("lang_name", name).Str("prompt", prompt.Text).Msg("unsupported language detected in prompt")

			text := unsupportedLanguageMessage(batch.Username(prompt.Mention.AuthorID), name, prompt.Mention.ID)
			tweets, err := r.post(ctx, prompt.Mention.ID, []string{text}, opts)
			in.ResponseTweetIDs = tweetIDs(tweets)
			if err != nil {
				return err
			}
			in.Error = fmt.Sprintf("Unsupported language %q", name)
			in.IsErrorFinal = true
			return nil
		}
		log.Warn().Str("lang", code).Str("lang_name", name).Str("prompt", prompt.Text).Msg("unrecognized language detected in prompt")
	}

	response, err := r.ask(ctx, prompt.Text)
	if err != nil {
		return err
	}
	in.Response = response

	lower := strings.ToLower(response)
	if containsAny(lower, rateLimitSentinels) {
		session.IsRateLimited = true
		in.Error = model.ErrChatGPTRateLimited
		return nil
	}
	if containsAny(lower, expiredAuthSentinels) {
		session.IsExpiredAuth = true
		in.Error = model.ErrChatGPTAuthExpired
		return nil
	}

	chunks := r.segmenter.Segment(response)
	log.Info().Str("prompt", prompt.Text).Strs("tweets", chunks).Msg("prompt answered")

	tweets, err := r.post(ctx, prompt.Mention.ID, chunks, opts)
	in.ResponseTweetIDs = tweetIDs(tweets)
	return err
}

// ask calls the AI backend under the configured hard timeout.
func (r *Responder) ask(ctx context.Context, prompt string) (string, error) {
	tctx, cancel := context.WithTimeout(ctx, r.cfg.ResponseTimeout)
	defer cancel()

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		text, err := r.chat.SendMessage(tctx, prompt)
		done <- result{text, err}
	}()

	select {
	case res := <-done:
		if res.err != nil && errors.Is(res.err, context.DeadlineExceeded) && ctx.Err() == nil {
			return "", errx.Timeout(res.err)
		}
		return res.text, res.err
	case <-tctx.Done():
		if err := ctx.Err(); err != nil {
			return "", err
		}
		return "", errx.Timeout(tctx.Err())
	}
}

// fail records err on the interaction and raises the matching breaker.
func (r *Responder) fail(ctx context.Context, session *model.Session, prompt *model.Prompt, in *model.Interaction, err error, opts model.RunOptions) {
	in.Error = err.Error()

	in.IsErrorFinal = errx.IsTerminal(err)
	if ce, ok := errx.AsChatError(err); ok {
		switch ce.Kind {
		case errx.KindTimeout:
			session.IsExpiredAuth = true
			if _, perr := r.post(ctx, prompt.Mention.ID, []string{timeoutMessage(prompt.Mention.ID)}, opts); perr != nil {
				logx.Ctx(ctx).Debug().Err(perr).Msg("timeout apology not posted")
			}
		case errx.KindTwitterAuth:
			session.IsExpiredAuthTwitter = true
		case errx.KindTwitterRateLimit:
			session.IsRateLimitedTwitter = true
		}
	} else {
		lower := strings.ToLower(in.Error)
		switch {
		case containsAny(lower, rateLimitSentinels):
			session.IsRateLimited = true
		case containsAny(lower, expiredAuthSentinels):
			session.IsExpiredAuth = true
		}
	}

	logx.Ctx(ctx).Error().
		Err(err).
		Str("mention_id", prompt.Mention.ID).
		Str("prompt", prompt.Text).
		Str("response", in.Response).
		Bool("final", in.IsErrorFinal).
		Msg("error answering mention")
}

func (r *Responder) post(ctx context.Context, rootID string, chunks []string, opts model.RunOptions) ([]*model.CreatedTweet, error) {
	if opts.DryRun {
		return nil, nil
	}
	return r.poster.PostThread(ctx, rootID, chunks)
}

// persist stores a successful interaction. Failures are logged and dropped.
func (r *Responder) persist(ctx context.Context, in *model.Interaction) {
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	if err := r.interactions.PutInteraction(pctx, in.PromptTweetID, in); err != nil {
		logx.Ctx(ctx).Warn().Err(err).Str("mention_id", in.PromptTweetID).Msg("failed to persist interaction")
	}
}

func tweetIDs(tweets []*model.CreatedTweet) []string {
	if len(tweets) == 0 {
		return nil
	}
	ids := make([]string, 0, len(tweets))
	for _, t := range tweets {
		ids = append(ids, t.ID)
	}
	return ids
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
