package scheduler_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"bulletin/src-server/model"
	"bulletin/src-server/scheduler"
	"bulletin/src-server/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type fakeSender struct {
	channels []string
	messages [][]*discordgo.MessageEmbed
	err      error
}

func (f *fakeSender) ChannelMessageSendEmbeds(channelID string, embeds []*discordgo.MessageEmbed, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.channels = append(f.channels, channelID)
	f.messages = append(f.messages, embeds)
	return &discordgo.Message{}, nil
}

func newAppState(t *testing.T) *utils.AppState {
	t.Helper()
	t.Setenv("TIMEZONE", "UTC")
	rawDB, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	rawDB.SetMaxOpenConns(1)
	as := utils.NewAppStateWithDB(utils.NewConfig(), rawDB)
	require.NoError(t, model.CreateSchema(context.Background(), as.BunDB))
	as.SetNow(func() time.Time { return time.Date(2025, 1, 13, 6, 0, 0, 0, time.UTC) })
	t.Cleanup(as.GracefulShutdown)
	return as
}

func addPoster(t *testing.T, as *utils.AppState, p model.Poster) {
	t.Helper()
	if p.ID == "" {
		p.ID = p.Title
	}
	p.UploadedBy = "u1"
	if p.Category == nil {
		p.Category = []string{"club"}
	}
	if p.Location == nil {
		p.Location = []string{"Gates"}
	}
	require.NoError(t, p.Upsert(context.Background(), as.BunDB))
}

func TestSendDigest(t *testing.T) {
	as := newAppState(t)
	// 2025-01-13 is a Monday
	addPoster(t, as, model.Poster{Title: "Chess", Organizer: "Chess Club", Tags: []string{"games"},
		Repeating: true, AnchorDate: "2025-01-06", Frequency: "weekly", DaysOfWeek: []string{"Monday"}})
	addPoster(t, as, model.Poster{Title: "Career Fair", Category: []string{"career"}, SingleEventDate: "2025-01-13"})
	addPoster(t, as, model.Poster{Title: "Tomorrow", SingleEventDate: "2025-01-14"})

	sender := &fakeSender{}
	sent, err := scheduler.SendDigest(context.Background(), as, sender, "chan-1")
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	require.Len(t, sender.messages, 1)
	assert.Equal(t, []string{"chan-1"}, sender.channels)

	embeds := sender.messages[0]
	assert.Equal(t, "Chess", embeds[0].Title)
	assert.Equal(t, "Organized by Chess Club", embeds[0].Footer.Text)
	assert.Equal(t, "Career Fair", embeds[1].Title)
	assert.Equal(t, "Career", embeds[1].Fields[1].Value)
}

func TestSendDigestSplitsMessages(t *testing.T) {
	as := newAppState(t)
	for i := 0; i < 23; i++ {
		addPoster(t, as, model.Poster{Title: fmt.Sprintf("Event %02d", i), SingleEventDate: "2025-01-13"})
	}

	sender := &fakeSender{}
	sent, err := scheduler.SendDigest(context.Background(), as, sender, "chan-1")
	require.NoError(t, err)
	assert.Equal(t, 23, sent)
	require.Len(t, sender.messages, 3)
	assert.Len(t, sender.messages[0], 10)
	assert.Len(t, sender.messages[2], 3)
}

func TestSendDigestNothingToday(t *testing.T) {
	as := newAppState(t)
	addPoster(t, as, model.Poster{Title: "Later", SingleEventDate: "2025-02-01"})

	sender := &fakeSender{}
	sent, err := scheduler.SendDigest(context.Background(), as, sender, "chan-1")
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Empty(t, sender.messages)
}

func TestSendDigestReportsSendErrors(t *testing.T) {
	as := newAppState(t)
	addPoster(t, as, model.Poster{Title: "Today", SingleEventDate: "2025-01-13"})

	_, err := scheduler.SendDigest(context.Background(), as, &fakeSender{err: errors.New("boom")}, "chan-1")
	assert.Error(t, err)
}

func TestDigestRequiresSession(t *testing.T) {
	assert.Error(t, scheduler.Digest(newAppState(t)))
}
