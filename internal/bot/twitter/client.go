package twitter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	twitter "github.com/g8rswimmer/go-twitter/v2"

	"github.com/chatgpt-twitter-bot/server/internal/bot/model"
	logx "github.com/chatgpt-twitter-bot/server/pkg/logger"
)

var (
	tweetExpansions = []twitter.Expansion{
		twitter.ExpansionAuthorID,
		twitter.ExpansionInReplyToUserID,
		twitter.ExpansionReferencedTweetsID,
	}
	tweetFields = []twitter.TweetField{
		twitter.TweetFieldAuthorID,
		twitter.TweetFieldConversationID,
		twitter.TweetFieldInReplyToUserID,
		twitter.TweetFieldReferencedTweets,
	}
)

// Client implements the mention source and tweet creator on the Twitter v2 API.
type Client struct {
	api        *twitter.Client
	maxResults int
}

func NewClient(httpClient *http.Client, cfg Config) *Client {
	maxResults := cfg.MaxResults
	if maxResults <= 0 || maxResults > 100 {
		maxResults = 100
	}
	return &Client{
		api: &twitter.Client{
			Authorizer: noopAuthorizer{},
			Client:     httpClient,
			Host:       strings.TrimRight(cfg.APIHost, "/"),
		},
		maxResults: maxResults,
	}
}

// FetchMentions walks every page of the mentions timeline newer than sinceID.
func (c *Client) FetchMentions(ctx context.Context, userID, sinceID string) (*model.MentionBatch, error) {
	batch := model.NewMentionBatch()
	token := ""
	for page := 1; ; page++ {
		resp, err := c.api.UserMentionTimeline(ctx, userID, twitter.UserMentionTimelineOpts{
			Expansions:      tweetExpansions,
			TweetFields:     tweetFields,
			MaxResults:      c.maxResults,
			SinceID:         sinceID,
			PaginationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("fetch mentions page %d: %w", page, toPostError(err))
		}
		if resp.Raw != nil {
			addRaw(batch, resp.Raw)
		}

		if resp.Meta == nil || resp.Meta.NextToken == "" {
			break
		}
		token = resp.Meta.NextToken
	}

	logx.Ctx(ctx).Debug().Int("mentions", len(batch.Mentions)).Str("since_id", sinceID).Msg("fetched mentions")
	return batch, nil
}

// LookupTweets loads tweets by id with the mention expansions.
func (c *Client) LookupTweets(ctx context.Context, ids []string) (*model.MentionBatch, error) {
	batch := model.NewMentionBatch()
	if len(ids) == 0 {
		return batch, nil
	}
	resp, err := c.api.TweetLookup(ctx, ids, twitter.TweetLookupOpts{
		Expansions:  tweetExpansions,
		TweetFields: tweetFields,
	})
	if err != nil {
		return nil, fmt.Errorf("lookup tweets: %w", toPostError(err))
	}
	if resp.Raw != nil {
		addRaw(batch, resp.Raw)
	}
	return batch, nil
}

// CreateTweet posts text, as a reply when inReplyToID is set.
func (c *Client) CreateTweet(ctx context.Context, text, inReplyToID string) (*model.CreatedTweet, error) {
	req := twitter.CreateTweetRequest{Text: text}
	if inReplyToID != "" {
		req.Reply = &twitter.CreateTweetReply{InReplyToTweetID: inReplyToID}
	}

	resp, err := c.api.CreateTweet(ctx, req)
	if err != nil {
		return nil, toPostError(err)
	}
	if resp.Tweet == nil {
		return nil, nil
	}
	return &model.CreatedTweet{ID: resp.Tweet.ID, Text: resp.Tweet.Text}, nil
}

// Me returns the authenticated user.
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	resp, err := c.api.AuthUserLookup(ctx, twitter.UserLookupOpts{})
	if err != nil {
		return nil, fmt.Errorf("lookup authenticated user: %w", toPostError(err))
	}
	if resp.Raw == nil || len(resp.Raw.Users) == 0 || resp.Raw.Users[0] == nil {
		return nil, errors.New("lookup authenticated user: empty response")
	}
	u := resp.Raw.Users[0]
	return &model.User{ID: u.ID, Name: u.Name, Username: u.UserName}, nil
}

func addRaw(batch *model.MentionBatch, raw *twitter.TweetRaw) {
	var (
		included []*model.Tweet
		users    []*model.User
	)
	if raw.Includes != nil {
		included = convertTweets(raw.Includes.Tweets)
		for _, u := range raw.Includes.Users {
			if u == nil {
				continue
			}
			users = append(users, &model.User{ID: u.ID, Name: u.Name, Username: u.UserName})
		}
	}
	batch.AddPage(convertTweets(raw.Tweets), included, users)
}

func convertTweets(in []*twitter.TweetObj) []*model.Tweet {
	out := make([]*model.Tweet, 0, len(in))
	for _, t := range in {
		if t == nil {
			continue
		}
		tw := &model.Tweet{
			ID:              t.ID,
			Text:            t.Text,
			AuthorID:        t.AuthorID,
			ConversationID:  t.ConversationID,
			InReplyToUserID: t.InReplyToUserID,
		}
		for _, ref := range t.ReferencedTweets {
			if ref == nil {
				continue
			}
			tw.ReferencedTweets = append(tw.ReferencedTweets, model.ReferencedTweet{Type: ref.Type, ID: ref.ID})
		}
		out = append(out, tw)
	}
	return out
}

var (
	_ model.MentionSource = (*Client)(nil)
	_ model.TweetCreator  = (*Client)(nil)
)
