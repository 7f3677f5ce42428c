package utils

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"bulletin/src-server/feed"
	"bulletin/src-server/model"

	"github.com/bwmarrin/discordgo"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
)

type AppState struct {
	Config *Config
	RawDB  *sql.DB
	BunDB  *bun.DB
	// nil unless the digest is enabled
	DgSession *discordgo.Session
	When      *when.Parser

	MetricChans    *Metric
	MetricRegistry *prometheus.Registry

	AppCloseSignalChan chan os.Signal

	mu                  sync.Mutex
	gracefulShutdownChs []chan struct{}
	// overrides the wall clock, tests only
	now func() time.Time
}

// Open the database at DATABASE_PATH and create the schema if needed
func NewAppState(cfg *Config) (*AppState, error) {
	dsn := cfg.GetDatabasePath()
	if dsn != ":memory:" {
		dsn = "file:" + dsn + "?mode=rwc"
	}
	rawDB, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, fmt.Errorf("NewAppState: can't open sqlite database: %w", err)
	}
	rawDB.SetMaxIdleConns(8)
	if dsn == ":memory:" {
		rawDB.SetMaxOpenConns(1)
	}

	as := NewAppStateWithDB(cfg, rawDB)
	if err := model.CreateSchema(context.Background(), as.BunDB); err != nil {
		rawDB.Close()
		return nil, fmt.Errorf("NewAppState: %w", err)
	}

	if cfg.DigestEnabled() {
		as.DgSession, err = discordgo.New("Bot " + cfg.GetDiscordAppToken())
		if err != nil {
			rawDB.Close()
			return nil, fmt.Errorf("NewAppState: can't create discord session: %w", err)
		}
	}
	return as, nil
}

// Wrap an already opened database, the caller owns the schema
func NewAppStateWithDB(cfg *Config, rawDB *sql.DB) *AppState {
	as := &AppState{
		Config:             cfg,
		RawDB:              rawDB,
		MetricChans:        NewMetric(),
		MetricRegistry:     prometheus.NewRegistry(),
		AppCloseSignalChan: make(chan os.Signal, 1),
		now:                time.Now,
	}

	// date parser
	as.When = when.New(nil)
	as.When.Add(en.All...)
	as.When.Add(common.All...)

	as.BunDB = bun.NewDB(rawDB, sqlitedialect.New())
	as.BunDB.AddQueryHook(bundebug.NewQueryHook(
		bundebug.WithVerbose(true),
		bundebug.FromEnv("BUNDEBUG"),
	))
	return as
}

// Calendar date of "now" in the configured timezone
func (as *AppState) Today() time.Time {
	return feed.Day(as.now().In(as.Config.GetLocation()))
}

// Pin the clock, used by tests
func (as *AppState) SetNow(now func() time.Time) {
	as.now = now
}

// Parse a YYYY-MM-DD date or a natural-language one such as "next friday"
func (as *AppState) ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if d, ok := feed.ParseDate(s); ok {
		return d, nil
	}
	base := as.now().In(as.Config.GetLocation())
	result, err := as.When.Parse(s, base)
	if err != nil {
		return time.Time{}, fmt.Errorf("AppState.ParseDate: %w", err)
	}
	if result == nil {
		return time.Time{}, fmt.Errorf("AppState.ParseDate: %q is not a date", s)
	}
	return feed.Day(result.Time), nil
}

// Each long-running goroutine asks for its own channel, closed on shutdown
func (as *AppState) CreateGracefulShutdownChan() *chan struct{} {
	as.mu.Lock()
	defer as.mu.Unlock()
	ch := make(chan struct{})
	as.gracefulShutdownChs = append(as.gracefulShutdownChs, ch)
	return &ch
}

func (as *AppState) GracefulShutdown() {
	as.mu.Lock()
	for _, ch := range as.gracefulShutdownChs {
		close(ch)
	}
	as.gracefulShutdownChs = nil
	as.mu.Unlock()

	if as.DgSession != nil {
		if err := as.DgSession.Close(); err != nil {
			slog.Warn("can't close discord session", "error", err)
		}
	}
	if err := as.BunDB.Close(); err != nil {
		slog.Warn("can't close database", "error", err)
	}
}
