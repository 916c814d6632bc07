package model

import (
	"context"
	"fmt"
)

// MentionSource fetches mentions of the bot from the platform.
type MentionSource interface {
	// FetchMentions walks every page of mentions newer than sinceID.
	FetchMentions(ctx context.Context, userID, sinceID string) (*MentionBatch, error)

	// LookupTweets loads the given tweets with the same expansions as mentions.
	LookupTweets(ctx context.Context, ids []string) (*MentionBatch, error)
}

// ChatClient sends a prompt to the AI backend and returns its reply.
type ChatClient interface {
	SendMessage(ctx context.Context, prompt string) (string, error)
}

// TweetCreator posts a single tweet, optionally as a reply.
type TweetCreator interface {
	CreateTweet(ctx context.Context, text, inReplyToID string) (*CreatedTweet, error)
}

// LanguageDetector guesses the ISO 639-3 code of a text ("und" when unsure).
type LanguageDetector interface {
	Detect(text string) (code, name string)
}

// InteractionRepository persists answered mentions.
type InteractionRepository interface {
	PutInteraction(ctx context.Context, mentionID string, in *Interaction) error
	GetInteraction(ctx context.Context, mentionID string) (*Interaction, error)
}

// StateRepository keeps the values that survive between runs.
type StateRepository interface {
	SinceMentionID(ctx context.Context) (string, error)
	SetSinceMentionID(ctx context.Context, id string) error
	RefreshToken(ctx context.Context) (string, error)
	SetRefreshToken(ctx context.Context, token string) error
}

// PostError is a failed platform call as reported by the transport:
// the HTTP status plus whatever detail the platform returned.
type PostError struct {
	Status      int
	Detail      string
	Description string
	Err         error
}

func (e *PostError) Error() string {
	msg := e.Detail
	if msg == "" {
		msg = e.Description
	}
	if e.Err != nil && msg == "" {
		return fmt.Sprintf("twitter error %d: %v", e.Status, e.Err)
	}
	return fmt.Sprintf("twitter error %d: %s", e.Status, msg)
}

func (e *PostError) Unwrap() error {
	return e.Err
}
