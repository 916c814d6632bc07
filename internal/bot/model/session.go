package model

// Prompt is an admitted mention together with the cleaned text that will be
// sent to the AI backend.
type Prompt struct {
	Mention     *Tweet
	Text        string
	NumMentions int
	Usernames   []string
}

// Interaction is the outcome of answering one prompt.
type Interaction struct {
	PromptTweetID    string   `json:"promptTweetId"`
	Prompt           string   `json:"prompt"`
	Response         string   `json:"response,omitempty"`
	ResponseTweetIDs []string `json:"responseTweetIds,omitempty"`
	Error            string   `json:"error,omitempty"`
	IsErrorFinal     bool     `json:"isErrorFinal,omitempty"`
}

// Settled reports whether the interaction should advance the cursor: it
// either succeeded or failed with a terminal error.
func (i *Interaction) Settled() bool {
	return i.Error == "" || i.IsErrorFinal
}

// Session is the state of one run. The four circuit-breaker flags only ever
// go from false to true while the run is in progress.
type Session struct {
	RunID                string         `json:"runId"`
	Interactions         []*Interaction `json:"interactions"`
	IsRateLimited        bool           `json:"isRateLimited"`
	IsRateLimitedTwitter bool           `json:"isRateLimitedTwitter"`
	IsExpiredAuth        bool           `json:"isExpiredAuth"`
	IsExpiredAuthTwitter bool           `json:"isExpiredAuthTwitter"`
	SinceMentionID       string         `json:"sinceMentionId,omitempty"`
}

// Tripped returns the short-circuit error for the first raised flag, checked
// in a fixed order, or "" when no flag is set.
func (s *Session) Tripped() string {
	switch {
	case s.IsRateLimited:
		return ErrChatGPTRateLimited
	case s.IsRateLimitedTwitter:
		return ErrTwitterRateLimited
	case s.IsExpiredAuth:
		return ErrChatGPTAuthExpired
	case s.IsExpiredAuthTwitter:
		return ErrTwitterAuthExpired
	}
	return ""
}

const (
	ErrChatGPTRateLimited = "ChatGPT rate limited"
	ErrTwitterRateLimited = "Twitter rate limited"
	ErrChatGPTAuthExpired = "ChatGPT auth expired"
	ErrTwitterAuthExpired = "Twitter auth expired"
	ErrEmptyPrompt        = "empty prompt"
)
