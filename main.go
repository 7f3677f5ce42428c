package main

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"bulletin/src-server/cli"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
)

func init() {
	if err := godotenv.Load(); err != nil {
		slog.Info(err.Error())
	}
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      logLevel(),
			TimeFormat: time.RFC1123Z,
		}),
	))
}

// LOG_LEVEL accepts debug, info, warn or error; anything else means debug
func logLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(os.Getenv("LOG_LEVEL")))); err != nil {
		return slog.LevelDebug
	}
	return level
}

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		slog.Error("bulletin exited", "error", err)
		os.Exit(1)
	}
}
