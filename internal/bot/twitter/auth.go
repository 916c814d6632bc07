package twitter

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"golang.org/x/oauth2"

	"github.com/chatgpt-twitter-bot/server/internal/bot/model"
	logx "github.com/chatgpt-twitter-bot/server/pkg/logger"
)

// noopAuthorizer leaves requests alone; the oauth2 transport signs them.
type noopAuthorizer struct{}

func (noopAuthorizer) Add(*http.Request) {}

// persistingSource saves every rotated refresh token so the next run can
// still authenticate.
type persistingSource struct {
	base  oauth2.TokenSource
	store model.StateRepository

	mu   sync.Mutex
	last string
}

func (s *persistingSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.RefreshToken != "" && tok.RefreshToken != s.last {
		s.last = tok.RefreshToken
		if err := s.store.SetRefreshToken(context.Background(), tok.RefreshToken); err != nil {
			logx.Error().Err(err).Msg("failed to persist rotated twitter refresh token")
		} else {
			logx.Debug().Msg("twitter refresh token rotated")
		}
	}
	return tok, nil
}

// NewHTTPClient returns an http.Client authenticated as the bot. The stored
// refresh token wins over the configured one, since the configured one is
// only valid until its first use.
func NewHTTPClient(ctx context.Context, cfg Config, store model.StateRepository) (*http.Client, error) {
	refresh, err := store.RefreshToken(ctx)
	if err != nil {
		return nil, err
	}
	if refresh == "" {
		refresh = cfg.RefreshToken
	}
	if refresh == "" {
		return nil, errors.New("TWITTER_OAUTH_REFRESH_TOKEN is required")
	}

	oc := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  cfg.TokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}
	src := &persistingSource{
		base:  oc.TokenSource(ctx, &oauth2.Token{RefreshToken: refresh}),
		store: store,
		last:  refresh,
	}
	return oauth2.NewClient(ctx, src), nil
}
