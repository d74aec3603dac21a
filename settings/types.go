package settings

import (
	"time"

	"triggerbot/logger"
)

type (
	Config struct {
		Server  Server        `toml:"server" validate:"required"`
		Bot     Bot           `toml:"bot" validate:"required"`
		Logging logger.Config `toml:"logging" validate:"required"`
	}

	Server struct {
		Host string `toml:"host" validate:"required"`
		Port int    `toml:"port" validate:"required,gt=0"`
		Pass string `toml:"pass"`
		Ssl  bool   `toml:"ssl"`
	}

	Bot struct {
		Nick             string   `toml:"nick" validate:"required"`
		Channels         []string `toml:"channels"`
		Identify         bool     `toml:"identify"`
		IdentifyPassword string   `toml:"identifyPassword"`
		Database         string   `toml:"database" validate:"required"`
		// SaveSeconds is the checkpoint and liveness interval.
		SaveSeconds int `toml:"saveSeconds" validate:"gte=0"`
		// PurgeHours is the retention sweep interval.
		PurgeHours int    `toml:"purgeHours" validate:"gte=0"`
		SourceURL  string `toml:"sourceUrl" validate:"omitempty,url"`
	}
)

// SaveInterval returns the checkpoint interval, defaulting to a minute.
func (b *Bot) SaveInterval() time.Duration {
	if b.SaveSeconds == 0 {
		return time.Minute
	}
	return time.Duration(b.SaveSeconds) * time.Second
}

// PurgeInterval returns the retention sweep interval, defaulting to daily.
func (b *Bot) PurgeInterval() time.Duration {
	if b.PurgeHours == 0 {
		return 24 * time.Hour
	}
	return time.Duration(b.PurgeHours) * time.Hour
}
