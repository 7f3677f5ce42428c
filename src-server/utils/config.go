package utils

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

type Config struct {
	port         string
	databasePath string
	location     *time.Location

	categories []string
	locations  []string

	digestCron             string
	discordAppToken        string
	discordDigestChannelID string

	metricCollectionInterval time.Duration
}

var (
	defaultCategories = []string{"career", "club", "performance", "sports", "wellness"}
	defaultLocations  = []string{
		"University Center", "Hunt Library", "Purnell", "CFA", "Wean", "Gates", "Tepper",
		"The Cut", "Baker-Porter", "Posner", "Scaife", "Online", "Off-Campus", "Other",
	}
)

func NewConfig() *Config {
	return &Config{
		port: func() string {
			port := os.Getenv("PORT")
			if port == "" {
				port = "8080"
			}
			slog.Debug("env", "PORT", port)
			return port
		}(),
		databasePath: func() string {
			databasePath := os.Getenv("DATABASE_PATH")
			if databasePath == "" {
				databasePath = "./sqlite.db"
			}
			if databasePath != ":memory:" {
				databasePath = filepath.Clean(databasePath)
			}
			slog.Debug("env", "DATABASE_PATH", databasePath)
			return databasePath
		}(),
		location: func() *time.Location {
			timezoneStr := os.Getenv("TIMEZONE")
			var loc *time.Location
			var err error
			switch timezoneStr {
			case "":
				slog.Warn("TIMEZONE is not set, using local timezone", "timezone", time.Local)
				loc = time.Local
			case "UTC":
				loc = time.UTC
			default:
				loc, err = time.LoadLocation(timezoneStr)
				if err != nil {
					slog.Error("invalid timezone", "timezone", timezoneStr, "error", err)
					os.Exit(1)
				}
			}
			slog.Debug("env", "TIMEZONE", timezoneStr)
			return loc
		}(),

		categories: func() []string {
			categories := splitList(os.Getenv("CATEGORIES"))
			if len(categories) == 0 {
				categories = defaultCategories
			}
			slog.Debug("env", "CATEGORIES", categories)
			return categories
		}(),
		locations: func() []string {
			locations := splitList(os.Getenv("LOCATIONS"))
			if len(locations) == 0 {
				locations = defaultLocations
			}
			slog.Debug("env", "LOCATIONS", locations)
			return locations
		}(),

		digestCron: func() string {
			digestCron := os.Getenv("DIGEST_CRON")
			if digestCron == "" {
				digestCron = "0 7 * * *"
			}
			if _, err := cron.ParseStandard(digestCron); err != nil {
				slog.Error("invalid DIGEST_CRON", "value", digestCron, "error", err)
				os.Exit(1)
			}
			slog.Debug("env", "DIGEST_CRON", digestCron)
			return digestCron
		}(),
		discordAppToken: func() string {
			discordAppToken := os.Getenv("DISCORD_APP_TOKEN")
			if discordAppToken == "" {
				slog.Warn("DISCORD_APP_TOKEN is not set, daily digest disabled")
				return ""
			}
			slog.Debug("env", "DISCORD_APP_TOKEN", discordAppToken[0:min(3, len(discordAppToken))]+"...")
			return discordAppToken
		}(),
		discordDigestChannelID: func() string {
			channelID := os.Getenv("DISCORD_DIGEST_CHANNEL_ID")
			slog.Debug("env", "DISCORD_DIGEST_CHANNEL_ID", channelID)
			return channelID
		}(),

		metricCollectionInterval: func() time.Duration {
			interval := os.Getenv("METRIC_COLLECTION_INTERVAL")
			if interval == "" {
				interval = "15s"
			}
			duration, err := time.ParseDuration(interval)
			if err != nil || duration <= 0 {
				slog.Error("invalid METRIC_COLLECTION_INTERVAL", "value", interval, "error", err)
				os.Exit(1)
			}
			slog.Debug("env", "METRIC_COLLECTION_INTERVAL", duration)
			return duration
		}(),
	}
}

func splitList(s string) []string {
	out := make([]string, 0)
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Get PORT env, default to 8080
func (c *Config) GetPort() string {
	return c.port
}

// Get DATABASE_PATH env, default to ./sqlite.db
func (c *Config) GetDatabasePath() string {
	return c.databasePath
}

// Get TIMEZONE env, "today" is computed in this location
func (c *Config) GetLocation() *time.Location {
	return c.location
}

// Get CATEGORIES env
func (c *Config) GetCategories() []string {
	return c.categories
}

// Get LOCATIONS env
func (c *Config) GetLocations() []string {
	return c.locations
}

// Get DIGEST_CRON env, default to every day at 7am
func (c *Config) GetDigestCron() string {
	return c.digestCron
}

// Get DISCORD_APP_TOKEN env
func (c *Config) GetDiscordAppToken() string {
	return c.discordAppToken
}

// Get DISCORD_DIGEST_CHANNEL_ID env
func (c *Config) GetDiscordDigestChannelID() string {
	return c.discordDigestChannelID
}

// Digest runs only with both a bot token and a channel to post to
func (c *Config) DigestEnabled() bool {
	return c.discordAppToken != "" && c.discordDigestChannelID != ""
}

// Get METRIC_COLLECTION_INTERVAL env, default to 15s
func (c *Config) GetMetricCollectionInterval() time.Duration {
	return c.metricCollectionInterval
}
