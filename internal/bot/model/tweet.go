package model

// RefRepliedTo marks a referenced tweet as the parent of a reply.
const RefRepliedTo = "replied_to"

// ReferencedTweet points at a tweet related to another one (reply parent,
// quote, retweet).
type ReferencedTweet struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// Tweet is a mention or a side-loaded referenced tweet. Tweets are read-only
// once fetched.
type Tweet struct {
	ID               string            `json:"id"`
	Text             string            `json:"text"`
	AuthorID         string            `json:"author_id,omitempty"`
	ConversationID   string            `json:"conversation_id,omitempty"`
	InReplyToUserID  string            `json:"in_reply_to_user_id,omitempty"`
	ReferencedTweets []ReferencedTweet `json:"referenced_tweets,omitempty"`
}

// RepliedToID returns the id of the tweet this one replies to.
func (t *Tweet) RepliedToID() (string, bool) {
	if t == nil {
		return "", false
	}
	for _, ref := range t.ReferencedTweets {
		if ref.Type == RefRepliedTo {
			return ref.ID, true
		}
	}
	return "", false
}

// IsReply reports whether the tweet replies to another tweet.
func (t *Tweet) IsReply() bool {
	_, ok := t.RepliedToID()
	return ok
}

// User is a tweet author.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Username string `json:"username"`
}

// CreatedTweet is a tweet the bot has posted.
type CreatedTweet struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// MentionBatch accumulates the mentions of one run together with the
// side-loaded tweets and users of every fetched page, keyed by id.
// It is populated during the fetch phase and read-only afterwards.
type MentionBatch struct {
	Mentions []*Tweet
	Tweets   map[string]*Tweet
	Users    map[string]*User
}

func NewMentionBatch() *MentionBatch {
	return &MentionBatch{
		Tweets: map[string]*Tweet{},
		Users:  map[string]*User{},
	}
}

// AddPage merges one fetched page into the batch.
func (b *MentionBatch) AddPage(mentions, included []*Tweet, users []*User) {
	for _, m := range mentions {
		if m != nil {
			b.Mentions = append(b.Mentions, m)
		}
	}
	for _, t := range included {
		if t != nil && t.ID != "" {
			b.Tweets[t.ID] = t
		}
	}
	for _, u := range users {
		if u != nil && u.ID != "" {
			b.Users[u.ID] = u
		}
	}
}

// Username returns the username of the given author, or "" when unknown.
func (b *MentionBatch) Username(authorID string) string {
	if b == nil {
		return ""
	}
	if u, ok := b.Users[authorID]; ok && u != nil {
		return u.Username
	}
	return ""
}
