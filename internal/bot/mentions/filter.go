// Package mentions decides which fetched mentions are prompts the bot
// should answer.
package mentions

import (
	"regexp"
	"strings"

	"github.com/chatgpt-twitter-bot/server/internal/bot/model"
	logx "github.com/chatgpt-twitter-bot/server/pkg/logger"
	"mvdan.cc/xurls/v2"
)

// DefaultMaxMentions bounds how many prompts a single run answers.
const DefaultMaxMentions = 5

// maxLeadingHandles is how many leading @username tokens are stripped from a prompt.
const maxLeadingHandles = 4

var (
	leadingHandle  = regexp.MustCompile(`^ *@[a-zA-Z0-9_]+`)
	prefixHandles  = regexp.MustCompile(`^(@[a-zA-Z0-9_]+,?\s+)+`)
	handleToken    = regexp.MustCompile(`@[a-zA-Z0-9_]+`)
	spacedHandle   = regexp.MustCompile(`@[a-zA-Z0-9_]+\s`)
	urlPattern     = xurls.Strict()
	copyCodeMarker = "\n\nCopy code\n\n"
)

// Filter turns a batch of raw mentions into admitted prompts.
type Filter struct {
	botHandle   string
	botUserID   string
	ignore      map[string]struct{}
	maxMentions int
	handleRe    *regexp.Regexp
}

// Result holds the admitted prompts in fetch order together with the ids of
// mentions rejected by the reply heuristics. Rejected ids count as seen.
type Result struct {
	Prompts  []*model.Prompt
	Rejected []string
}

func NewFilter(botHandle, botUserID string, ignore map[string]struct{}, maxMentions int) *Filter {
	if !strings.HasPrefix(botHandle, "@") {
		botHandle = "@" + botHandle
	}
	if maxMentions <= 0 {
		maxMentions = DefaultMaxMentions
	}
	return &Filter{
		botHandle:   strings.ToLower(botHandle),
		botUserID:   botUserID,
		ignore:      ignore,
		maxMentions: maxMentions,
		handleRe:    regexp.MustCompile(`(?i)` + regexp.QuoteMeta(botHandle) + `\b`),
	}
}

// CleanPrompt strips the bot handle, up to four leading @mentions and URLs
// from a tweet and trims the rest.
func (f *Filter) CleanPrompt(text string) string {
	prompt := f.handleRe.ReplaceAllString(text, "")
	for i := 0; i < maxLeadingHandles; i++ {
		prompt = leadingHandle.ReplaceAllString(prompt, "")
	}
	prompt = urlPattern.ReplaceAllString(prompt, "")
	prompt = strings.TrimSpace(prompt)

	// plaintext artifact of copied code blocks
	return strings.Replace(prompt, copyCodeMarker, "\n\n", 1)
}

// CountMentions scans the leading run of @username tokens of text. It
// returns how many of them are the bot and the lowercased usernames in order.
func (f *Filter) CountMentions(text string) (int, []string) {
	prefix := prefixHandles.FindString(text)
	if prefix == "" {
		return 0, nil
	}

	usernames := handleToken.FindAllString(prefix, -1)
	count := 0
	for i, u := range usernames {
		usernames[i] = strings.ToLower(u)
		if usernames[i] == f.botHandle {
			count++
		}
	}
	return count, usernames
}

// CountAllMentions counts the bot handles followed by whitespace anywhere
// in text.
func (f *Filter) CountAllMentions(text string) int {
	count := 0
	for _, u := range spacedHandle.FindAllString(text, -1) {
		if strings.ToLower(strings.TrimSpace(u)) == f.botHandle {
			count++
		}
	}
	return count
}

// parentMentions counts the bot mentions a parent tweet consumed. Only a
// reply's leading run is addressed at accounts; other tweets count in full.
func (f *Filter) parentMentions(parent *model.Tweet) int {
	if parent.IsReply() {
		n, _ := f.CountMentions(parent.Text)
		return n
	}
	return f.CountAllMentions(parent.Text)
}

// Apply filters the batch. It never fails: malformed mentions are dropped.
func (f *Filter) Apply(batch *model.MentionBatch) *Result {
	res := &Result{}
	if batch == nil {
		return res
	}

	for _, mention := range batch.Mentions {
		if mention == nil || mention.Text == "" {
			continue
		}
		if _, ok := f.ignore[mention.ID]; ok {
			logx.Debug().Str("mention_id", mention.ID).Msg("ignoring blocked mention")
			continue
		}

		prompt := f.CleanPrompt(mention.Text)
		if prompt == "" {
			continue
		}

		numMentions, usernames := f.CountMentions(mention.Text)
		if reason := f.reject(batch, mention, numMentions, usernames); reason != "" {
			logx.Info().
				Str("mention_id", mention.ID).
				Str("reason", reason).
				Int("num_mentions", numMentions).
				Msg("ignoring mention")
			res.Rejected = append(res.Rejected, mention.ID)
			continue
		}

		logx.Debug().
			Str("mention_id", mention.ID).
			Str("prompt", prompt).
			Int("num_mentions", numMentions).
			Msg("admitted mention")
		res.Prompts = append(res.Prompts, &model.Prompt{
			Mention:     mention,
			Text:        prompt,
			NumMentions: numMentions,
			Usernames:   usernames,
		})
	}

	if len(res.Prompts) > f.maxMentions {
		res.Prompts = res.Prompts[:f.maxMentions]
	}
	return res
}

// reject returns why a mention is not admitted, or "" when it is.
func (f *Filter) reject(batch *model.MentionBatch, mention *model.Tweet, numMentions int, usernames []string) string {
	isReply := mention.IsReply()

	addressed := numMentions > 0 &&
		(usernames[len(usernames)-1] == f.botHandle || (numMentions == 1 && !isReply))
	if !addressed {
		return "not addressed to the bot"
	}

	if isReply {
		parentID, _ := mention.RepliedToID()
		if parent, ok := batch.Tweets[parentID]; ok && parent != nil {
			if f.parentMentions(parent) >= numMentions {
				return "parent already mentioned the bot"
			}
		}
		if numMentions == 1 && f.botUserID != "" && mention.InReplyToUserID == f.botUserID {
			return "reply to the bot"
		}
	}
	return ""
}
