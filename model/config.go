package model

import "time"

// GuildConfig holds the per-guild settings the engine needs.
type GuildConfig struct {
	GuildID    string `mapstructure:"guild_id"`
	Enable     bool   `mapstructure:"enable"`
	MuteRoleID string `mapstructure:"mute_role_id"`
}

// Config is the assembled runtime configuration, loaded from the
// environment and the config file.
type Config struct {
	BotToken        string
	AppID           string
	AlertWebhookURL string

	DatabasePath          string                 `mapstructure:"database_path"`
	SweepInterval         time.Duration          `mapstructure:"sweep_interval"`
	FailureAlarmThreshold int                    `mapstructure:"failure_alarm_threshold"`
	WarningRetentionDays  int                    `mapstructure:"warning_retention_days"`
	GatewayTimeout        time.Duration          `mapstructure:"gateway_timeout"`
	StorageTimeout        time.Duration          `mapstructure:"storage_timeout"`
	LedgerRetryCount      int                    `mapstructure:"ledger_retry_count"`
	GuildConfigs          map[string]GuildConfig `mapstructure:"guilds"`
}
