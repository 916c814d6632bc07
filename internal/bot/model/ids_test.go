package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaxTweetID(t *testing.T) {
	cases := []struct {
		a, b, want string
	}{
		{"123", "456", "456"},
		{"456", "123", "456"},
		{"1230", "999", "1230"},
		{"999", "1230", "1230"},
		{"", "999", "999"},
		{"999", "", "999"},
		{"", "", ""},
		{"948392", "948392", "948392"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, MaxTweetID(c.a, c.b), "MaxTweetID(%q, %q)", c.a, c.b)
	}
}

func TestSessionTripped(t *testing.T) {
	s := &Session{}
	assert.Empty(t, s.Tripped())

	s.IsExpiredAuthTwitter = true
	assert.Equal(t, ErrTwitterAuthExpired, s.Tripped())

	s.IsRateLimitedTwitter = true
	assert.Equal(t, ErrTwitterRateLimited, s.Tripped())

	s.IsRateLimited = true
	assert.Equal(t, ErrChatGPTRateLimited, s.Tripped())
}

func TestMentionBatchAddPage(t *testing.T) {
	b := NewMentionBatch()
	b.AddPage(
		[]*Tweet{{ID: "2"}, nil},
		[]*Tweet{{ID: "1", Text: "parent"}},
		[]*User{{ID: "u1", Username: "alice"}},
	)
	b.AddPage([]*Tweet{{ID: "3"}}, nil, []*User{{ID: "u2", Username: "bob"}})

	assert.Len(t, b.Mentions, 2)
	assert.Equal(t, "parent", b.Tweets["1"].Text)
	assert.Equal(t, "alice", b.Username("u1"))
	assert.Equal(t, "bob", b.Username("u2"))
	assert.Empty(t, b.Username("missing"))
}

func TestTweetRepliedToID(t *testing.T) {
	tw := &Tweet{ReferencedTweets: []ReferencedTweet{{Type: "quoted", ID: "7"}, {Type: RefRepliedTo, ID: "9"}}}
	id, ok := tw.RepliedToID()
	assert.True(t, ok)
	assert.Equal(t, "9", id)
	assert.False(t, (&Tweet{}).IsReply())
}
