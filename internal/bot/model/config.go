package model

import "time"

// ================ Config ================
type BotConfig struct {
	Handle          string        `envconfig:"BOT_HANDLE" default:"@ChatGPTBot"`
	IgnoreTweets    []string      `envconfig:"BOT_IGNORE_TWEETS" default:"1599344387401863174"`
	MaxMentions     int           `envconfig:"BOT_MAX_MENTIONS" default:"5"`
	PromptDelay     time.Duration `envconfig:"BOT_PROMPT_DELAY" default:"1s"`
	ResponseTimeout time.Duration `envconfig:"BOT_RESPONSE_TIMEOUT" default:"2h"`
	Schedule        string        `envconfig:"BOT_SCHEDULE"`

	// ISO 639-3 codes. Languages outside both lists are answered anyway.
	LanguageAllow    []string `envconfig:"BOT_LANGUAGE_ALLOW" default:"eng,sco,spa,deu,nno,fra,nld,dan,lun,afr,arb,bcl,som,sot,prs,swe,ckb,nds"`
	LanguageDisallow []string `envconfig:"BOT_LANGUAGE_DISALLOW" default:"jpn,cmn,zho,cth,yue,nan,nod,sou,tha,vie"`
}

// IgnoreSet returns the ignored tweet ids as a set.
func (c BotConfig) IgnoreSet() map[string]struct{} {
	set := make(map[string]struct{}, len(c.IgnoreTweets))
	for _, id := range c.IgnoreTweets {
		set[id] = struct{}{}
	}
	return set
}

// RunOptions are per-invocation switches supplied by the CLI.
type RunOptions struct {
	DryRun     bool
	EarlyExit  bool
	DebugTweet []string
}
