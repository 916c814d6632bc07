package twitter

type Config struct {
	ClientID     string `envconfig:"TWITTER_CLIENT_ID"`
	ClientSecret string `envconfig:"TWITTER_CLIENT_SECRET"`
	RefreshToken string `envconfig:"TWITTER_OAUTH_REFRESH_TOKEN"`
	BotUserID    string `envconfig:"TWITTER_BOT_USER_ID"`
	APIHost      string `envconfig:"TWITTER_API_HOST" default:"https://api.twitter.com"`
	TokenURL     string `envconfig:"TWITTER_TOKEN_URL" default:"https://api.twitter.com/2/oauth2/token"`
	MaxResults   int    `envconfig:"TWITTER_MAX_RESULTS" default:"100"`
}
