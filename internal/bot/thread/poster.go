// Package thread posts a segmented response as a chain of replies.
package thread

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"

	"github.com/chatgpt-twitter-bot/server/internal/bot/model"
	errx "github.com/chatgpt-twitter-bot/server/internal/core/error"
	logx "github.com/chatgpt-twitter-bot/server/pkg/logger"
)

var invalidToken = regexp.MustCompile(`(?i)(value passed for the token was invalid|invalid token)`)

// Poster creates reply threads one tweet at a time: every tweet replies to
// the one before it, so posts can never run concurrently.
type Poster struct {
	client model.TweetCreator
}

func NewPoster(client model.TweetCreator) *Poster {
	return &Poster{client: client}
}

// PostThread replies to rootID with every chunk in order. The first failure
// aborts the thread; tweets created before it are returned alongside the
// classified error and are not deleted.
func (p *Poster) PostThread(ctx context.Context, rootID string, chunks []string) ([]*model.CreatedTweet, error) {
	log := logx.Ctx(ctx)
	created := make([]*model.CreatedTweet, 0, len(chunks))
	prevID := rootID

	for i, text := range chunks {
		if err := ctx.Err(); err != nil {
			return created, err
		}

		tweet, err := p.client.CreateTweet(ctx, text, prevID)
		if err != nil {
			classified := Classify(err)
			ev := log.Error().Err(err).Str("in_reply_to", prevID).Int("chunk", i+1)
			if ce, ok := errx.AsChatError(classified); ok {
				ev = ev.Str("kind", string(ce.Kind)).Bool("terminal", ce.Terminal)
			}
			ev.Msg("error creating tweet")
			return created, classified
		}
		if tweet == nil || tweet.ID == "" {
			log.Error().Str("text", text).Msg("unknown error creating tweet")
			continue
		}

		log.Debug().Str("tweet_id", tweet.ID).Str("in_reply_to", prevID).Msg("tweet created")
		created = append(created, tweet)
		prevID = tweet.ID
	}

	return created, nil
}

// Classify maps a failed post to a ChatError by HTTP status. Errors without
// a platform status, and non-4xx statuses, are returned unchanged.
func Classify(err error) error {
	var pe *model.PostError
	if !errors.As(err, &pe) {
		return err
	}

	switch {
	case pe.Status == http.StatusForbidden:
		msg := pe.Detail
		if msg == "" {
			msg = "error creating tweet: 403 forbidden"
		}
		return wrap(errx.KindTwitterDuplicate, true, pe, msg)
	case pe.Status == http.StatusBadRequest && (invalidToken.MatchString(pe.Description) || invalidToken.MatchString(pe.Detail)):
		return wrap(errx.KindTwitterAuth, false, pe, "error creating tweet: invalid auth token")
	case pe.Status == http.StatusTooManyRequests:
		return wrap(errx.KindTwitterRateLimit, false, pe, "error creating tweet: too many requests")
	case pe.Status >= 400 && pe.Status < 500:
		return wrap(errx.KindUnknown, false, pe, fmt.Sprintf("error creating tweet: %d %s", pe.Status, pe.Description))
	}
	return err
}

func wrap(kind errx.Kind, terminal bool, pe *model.PostError, msg string) *errx.ChatError {
	ce := errx.NewChatError(kind, terminal, pe.Status, msg)
	ce.Err = pe
	return ce
}
