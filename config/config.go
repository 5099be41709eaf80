package config

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"warden-bot/model"
)

// Load reads secrets from the environment and engine settings from the
// config file.
func Load() (*model.Config, error) {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Info: .env file not found, relying on environment variables")
	}

	token := os.Getenv("BOT_TOKEN")
	if token == "" {
		log.Fatal("Error: BOT_TOKEN environment variable not set")
	}

	appID := os.Getenv("APP_ID")
	if appID == "" {
		log.Fatal("Error: APP_ID environment variable not set")
	}

	alertWebhook := os.Getenv("ALERT_WEBHOOK_URL")
	if alertWebhook == "" {
		log.Println("Warning: ALERT_WEBHOOK_URL not set, operational alerts will be disabled")
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("data")
	v.AddConfigPath(".")

	v.SetDefault("database_path", "data/warden.db")
	v.SetDefault("sweep_interval", "60s")
	v.SetDefault("failure_alarm_threshold", 5)
	v.SetDefault("warning_retention_days", 30)
	v.SetDefault("gateway_timeout", "10s")
	v.SetDefault("storage_timeout", "5s")
	v.SetDefault("ledger_retry_count", 3)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		log.Println("Warning: config file not found, using defaults")
	}

	cfg := &model.Config{
		BotToken:        token,
		AppID:           appID,
		AlertWebhookURL: alertWebhook,
		GuildConfigs:    make(map[string]model.GuildConfig),
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	for guildID, guildCfg := range cfg.GuildConfigs {
		if guildCfg.GuildID == "" {
			guildCfg.GuildID = guildID
			cfg.GuildConfigs[guildID] = guildCfg
		}
	}

	return cfg, nil
}
