package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/chatgpt-twitter-bot/server/internal/bot/chatgpt"
	"github.com/chatgpt-twitter-bot/server/internal/bot/model"
	"github.com/chatgpt-twitter-bot/server/internal/bot/twitter"
	logx "github.com/chatgpt-twitter-bot/server/pkg/logger"
	pkgredis "github.com/chatgpt-twitter-bot/server/pkg/redis"
)

// AppConfig defines all configurable parameters of the bot, sourced from
// environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"APP_ENV" default:"development"`

	// Infrastructure
	Redis pkgredis.Config

	// Platform and AI backend
	Twitter twitter.Config
	AI      chatgpt.Config

	// Bot behaviour
	Bot model.BotConfig
}

func loadConfig(envFile string) (AppConfig, error) {
	if err := godotenv.Load(envFile); err != nil {
		logx.Warn().Err(err).Str("file", envFile).Msg("could not load env file")
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("process environment config: %w", err)
	}
	return cfg, nil
}
