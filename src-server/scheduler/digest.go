package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"bulletin/src-server/feed"
	"bulletin/src-server/model"
	"bulletin/src-server/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/robfig/cron/v3"
)

// Discord allows at most 10 embeds per message
const maxEmbedsPerMessage = 10

const maxEmbedDescription = 300

type EmbedSender interface {
	ChannelMessageSendEmbeds(channelID string, embeds []*discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

func toDiscordEmbed(e feed.Event) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       e.Title,
		Description: truncate(e.Description, maxEmbedDescription),
		Color:       0x3b82f6,
		Fields:      make([]*discordgo.MessageEmbedField, 0, 3),
	}
	if len(e.Location) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Location", Value: strings.Join(e.Location, ", "), Inline: true,
		})
	}
	if len(e.Category) > 0 {
		categories := make([]string, 0, len(e.Category))
		for _, category := range e.Category {
			categories = append(categories, utils.Label(category))
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Category", Value: strings.Join(categories, ", "), Inline: true,
		})
	}
	if len(e.Tags) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Tags", Value: strings.Join(e.Tags, ", "),
		})
	}
	if e.Organizer != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: "Organized by " + e.Organizer}
	}
	if e.ImageURL != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: e.ImageURL}
	}
	return embed
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}

// Post every event happening today to the digest channel, returns the
// number of events sent
func SendDigest(ctx context.Context, as *utils.AppState, sender EmbedSender, channelID string) (int, error) {
	events, err := model.FeedEvents(ctx, as.BunDB)
	if err != nil {
		return 0, fmt.Errorf("SendDigest: %w", err)
	}
	today := as.Today()
	events = feed.Build(events, feed.Criteria{ExplicitDate: today}, today)
	if len(events) == 0 {
		return 0, nil
	}

	embeds := make([]*discordgo.MessageEmbed, 0, len(events))
	for _, e := range events {
		embeds = append(embeds, toDiscordEmbed(e))
	}
	for start := 0; start < len(embeds); start += maxEmbedsPerMessage {
		end := min(start+maxEmbedsPerMessage, len(embeds))
		startTimer := time.Now()
		if _, err := sender.ChannelMessageSendEmbeds(channelID, embeds[start:end]); err != nil {
			return start, fmt.Errorf("SendDigest: can't send message: %w", err)
		}
		utils.ReportSince(as.MetricChans.DiscordSendMessage, startTimer)
	}
	return len(events), nil
}

// Schedule the daily digest on DIGEST_CRON until the app shuts down
func Digest(as *utils.AppState) error {
	if as.DgSession == nil {
		return fmt.Errorf("Digest: discord session is nil")
	}

	c := cron.New(cron.WithLocation(as.Config.GetLocation()))
	if _, err := c.AddFunc(as.Config.GetDigestCron(), func() {
		sent, err := SendDigest(context.Background(), as, as.DgSession, as.Config.GetDiscordDigestChannelID())
		if err != nil {
			slog.Error("can't send digest", "error", err)
			return
		}
		slog.Info("digest sent", "events", sent)
	}); err != nil {
		return fmt.Errorf("Digest: %w", err)
	}
	c.Start()

	gracefulShutdownCh := as.CreateGracefulShutdownChan()
	go func() {
		<-*gracefulShutdownCh
		<-c.Stop().Done()
		slog.Debug("digest scheduler stopped")
	}()
	return nil
}
