package mentions

import (
	"fmt"
	"testing"

	"github.com/chatgpt-twitter-bot/server/internal/bot/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const botUserID = "100"

func newTestFilter() *Filter {
	return NewFilter("@ChatGPTBot", botUserID, map[string]struct{}{"666": {}}, 5)
}

func reply(id, text, parentID string) *model.Tweet {
	return &model.Tweet{
		ID:               id,
		Text:             text,
		AuthorID:         "u1",
		ReferencedTweets: []model.ReferencedTweet{{Type: model.RefRepliedTo, ID: parentID}},
	}
}

func ids(prompts []*model.Prompt) []string {
	out := make([]string, 0, len(prompts))
	for _, p := range prompts {
		out = append(out, p.Mention.ID)
	}
	return out
}

func TestCleanPrompt(t *testing.T) {
	f := newTestFilter()

	cases := []struct {
		name, in, want string
	}{
		{"bot handle", "@ChatGPTBot what is Go?", "what is Go?"},
		{"handle case insensitive", "@chatgptbot what is Go?", "what is Go?"},
		{"leading mentions", "@alice @bob @ChatGPTBot explain closures", "explain closures"},
		{"urls", "@ChatGPTBot summarize https://go.dev/doc/effective_go please", "summarize  please"},
		{"copy code artifact", "@ChatGPTBot fix this\n\nCopy code\n\nfmt.Println()", "fix this\n\nfmt.Println()"},
		{"only handle and url", "@ChatGPTBot https://example.com/x", ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, f.CleanPrompt(c.in))
		})
	}
}

func TestCountMentions(t *testing.T) {
	f := newTestFilter()

	n, names := f.CountMentions("@alice, @ChatGPTBot @ChatGPTBot hi @ChatGPTBot")
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"@alice", "@chatgptbot", "@chatgptbot"}, names)

	n, names = f.CountMentions("hi @ChatGPTBot")
	assert.Zero(t, n)
	assert.Empty(t, names)
}

func TestApply_Admission(t *testing.T) {
	f := newTestFilter()

	batch := model.NewMentionBatch()
	batch.AddPage(
		[]*model.Tweet{
			{ID: "1", Text: "@ChatGPTBot what is love"},
			{ID: "2", Text: "hello there"},
			{ID: "3", Text: "what is @ChatGPTBot"},
			reply("4", "@alice @ChatGPTBot explain", "p1"),
			reply("5", "@ChatGPTBot @ChatGPTBot go deeper", "p1"),
			{ID: "6", Text: "@ChatGPTBot thanks", InReplyToUserID: botUserID,
				ReferencedTweets: []model.ReferencedTweet{{Type: model.RefRepliedTo, ID: "missing"}}},
			{ID: "7", Text: "@ChatGPTBot @bob hi"},
			reply("8", "@ChatGPTBot @bob hi", "p2"),
		},
		[]*model.Tweet{
			{ID: "p1", Text: "@ChatGPTBot explain"},
			{ID: "p2", Text: "no mentions here"},
		},
		nil,
	)

	res := f.Apply(batch)
	assert.Equal(t, []string{"1", "5", "7"}, ids(res.Prompts))
	assert.Equal(t, []string{"2", "3", "4", "6", "8"}, res.Rejected)

	require.Len(t, res.Prompts, 3)
	assert.Equal(t, "what is love", res.Prompts[0].Text)
	assert.Equal(t, 2, res.Prompts[1].NumMentions)
}

func TestApply_ParentMentionCounting(t *testing.T) {
	f := newTestFilter()

	batch := model.NewMentionBatch()
	batch.AddPage(
		[]*model.Tweet{
			reply("9", "@ChatGPTBot explain more", "p9"),
			reply("10", "@ChatGPTBot explain more", "p10"),
			reply("11", "@ChatGPTBot go on", "p11"),
		},
		[]*model.Tweet{
			{ID: "p9", Text: "Hey @ChatGPTBot what is go"},
			reply("p10", "@bob what about @ChatGPTBot here", "p0"),
			{ID: "p11", Text: "ends with @ChatGPTBot"},
		},
		nil,
	)

	res := f.Apply(batch)
	assert.Equal(t, []string{"10", "11"}, ids(res.Prompts))
	assert.Equal(t, []string{"9"}, res.Rejected)
}

func TestCountAllMentions(t *testing.T) {
	f := newTestFilter()
	assert.Equal(t, 2, f.CountAllMentions("hi @ChatGPTBot and @chatgptbot\tagain @ChatGPTBot"))
	assert.Zero(t, f.CountAllMentions("no mentions"))
}

func TestApply_DropsSilently(t *testing.T) {
	f := newTestFilter()

	batch := model.NewMentionBatch()
	batch.AddPage([]*model.Tweet{
		{ID: "666", Text: "@ChatGPTBot blocked"},
		{ID: "10", Text: ""},
		{ID: "11", Text: "@ChatGPTBot https://example.com"},
	}, nil, nil)

	res := f.Apply(batch)
	assert.Empty(t, res.Prompts)
	assert.Empty(t, res.Rejected)
}

func TestApply_TruncatesInFetchOrder(t *testing.T) {
	f := newTestFilter()

	batch := model.NewMentionBatch()
	var mentions []*model.Tweet
	for i := 20; i > 12; i-- {
		mentions = append(mentions, &model.Tweet{ID: fmt.Sprint(i), Text: fmt.Sprintf("@ChatGPTBot question %d", i)})
	}
	batch.AddPage(mentions, nil, nil)

	res := f.Apply(batch)
	assert.Equal(t, []string{"20", "19", "18", "17", "16"}, ids(res.Prompts))
}

func TestApply_NilBatch(t *testing.T) {
	res := newTestFilter().Apply(nil)
	assert.Empty(t, res.Prompts)
}
