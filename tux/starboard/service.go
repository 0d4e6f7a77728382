package starboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	lru "github.com/hashicorp/golang-lru"

	"github.com/allthingslinux/tux/tux/database/models"
	"github.com/allthingslinux/tux/tux/database/repositories"
	"github.com/allthingslinux/tux/tux/utils"
)

const entryCacheSize = 2048

// Action is what a reaction change means for the starboard.
type Action int

const (
	ActionNone Action = iota
	ActionCreate
	ActionUpdate
	ActionDelete
)

// Decide maps a star count onto a starboard action given whether a board
// entry already exists.
func Decide(entryExists bool, count, threshold int) Action {
	switch {
	case count >= threshold && !entryExists:
		return ActionCreate
	case count >= threshold && entryExists:
		return ActionUpdate
	case count < threshold && entryExists:
		return ActionDelete
	default:
		return ActionNone
	}
}

// Service mirrors sufficiently-starred messages into the guild's starboard
// channel. Board entries are cached in an LRU so reaction bursts on the same
// message skip the database lookup.
type Service struct {
	client  bot.Client
	entries repositories.StarboardRepository
	configs repositories.GuildConfigRepository
	cache   *lru.Cache
}

func NewService(client bot.Client, entries repositories.StarboardRepository, configs repositories.GuildConfigRepository) *Service {
	cache, _ := lru.New(entryCacheSize)
	return &Service{
		client:  client,
		entries: entries,
		configs: configs,
		cache:   cache,
	}
}

// HandleReaction re-evaluates a message after a star reaction was added or
// removed.
func (s *Service) HandleReaction(ctx context.Context, guildID, channelID, messageID snowflake.ID, emojiName string) error {
	cfg, err := s.configs.Get(ctx, guildID.String())
	if err != nil {
		return err
	}
	if cfg.StarboardChannelID == "" || emojiName != cfg.StarboardEmoji {
		return nil
	}

	msg, err := s.client.Rest().GetMessage(channelID, messageID, rest.WithCtx(ctx))
	if err != nil {
		return fmt.Errorf("failed to fetch starred message: %w", err)
	}
	if msg.Author.Bot {
		return nil
	}

	count, err := s.countStars(ctx, msg, cfg)
	if err != nil {
		return err
	}

	entry, err := s.lookupEntry(ctx, messageID.String())
	if err != nil {
		return err
	}

	boardChannel, err := snowflake.Parse(cfg.StarboardChannelID)
	if err != nil {
		return fmt.Errorf("invalid starboard channel id: %w", err)
	}

	switch Decide(entry != nil, count, cfg.StarboardThreshold) {
	case ActionCreate:
		return s.createEntry(ctx, boardChannel, msg, guildID, count, cfg.StarboardEmoji)
	case ActionUpdate:
		return s.updateEntry(ctx, boardChannel, entry, count, cfg.StarboardEmoji)
	case ActionDelete:
		return s.deleteEntry(ctx, boardChannel, entry)
	default:
		return nil
	}
}

func (s *Service) countStars(ctx context.Context, msg *discord.Message, cfg *models.GuildConfig) (int, error) {
	count := 0
	for _, reaction := range msg.Reactions {
		if reaction.Emoji.Name == cfg.StarboardEmoji {
			count = reaction.Count
			break
		}
	}
	if count == 0 || cfg.StarboardSelfStar {
		return count, nil
	}

	// Self-stars do not count: check whether the author is among the
	// reactors.
	users, err := s.client.Rest().GetReactions(msg.ChannelID, msg.ID, cfg.StarboardEmoji, discord.MessageReactionTypeNormal, 0, 100, rest.WithCtx(ctx))
	if err != nil {
		// Degrade to the raw count rather than dropping the event.
		slog.Warn("Failed to fetch reactors for self-star check",
			slog.String("message_id", msg.ID.String()),
			slog.Any("error", err))
		return count, nil
	}
	for _, u := range users {
		if u.ID == msg.Author.ID {
			count--
			break
		}
	}
	return count, nil
}

func (s *Service) lookupEntry(ctx context.Context, messageID string) (*models.StarboardEntry, error) {
	if v, ok := s.cache.Get(messageID); ok {
		if entry, ok := v.(*models.StarboardEntry); ok {
			return entry, nil
		}
	}
	entry, err := s.entries.GetByMessageID(ctx, messageID)
	if errors.Is(err, repositories.ErrStarboardEntryNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.cache.Add(messageID, entry)
	return entry, nil
}

func (s *Service) createEntry(ctx context.Context, boardChannel snowflake.ID, msg *discord.Message, guildID snowflake.ID, count int, emoji string) error {
	posted, err := s.client.Rest().CreateMessage(boardChannel, discord.MessageCreate{
		Content: headline(emoji, count, msg.ChannelID),
		Embeds:  []discord.Embed{BuildEmbed(msg, guildID)},
	}, rest.WithCtx(ctx))
	if err != nil {
		return fmt.Errorf("failed to post starboard message: %w", err)
	}

	entry := &models.StarboardEntry{
		GuildID:            guildID.String(),
		ChannelID:          msg.ChannelID.String(),
		MessageID:          msg.ID.String(),
		AuthorID:           msg.Author.ID.String(),
		StarboardMessageID: posted.ID.String(),
		StarCount:          count,
	}
	if err := s.entries.Upsert(ctx, entry); err != nil {
		return err
	}
	s.cache.Add(entry.MessageID, entry)
	return nil
}

func (s *Service) updateEntry(ctx context.Context, boardChannel snowflake.ID, entry *models.StarboardEntry, count int, emoji string) error {
	if count == entry.StarCount {
		return nil
	}

	boardMessage, err := snowflake.Parse(entry.StarboardMessageID)
	if err != nil {
		return err
	}
	channelID, err := snowflake.Parse(entry.ChannelID)
	if err != nil {
		return err
	}
	if _, err = s.client.Rest().UpdateMessage(boardChannel, boardMessage, discord.MessageUpdate{
		Content: ptr(headline(emoji, count, channelID)),
	}, rest.WithCtx(ctx)); err != nil {
		return fmt.Errorf("failed to update starboard message: %w", err)
	}

	entry.StarCount = count
	s.cache.Add(entry.MessageID, entry)
	return s.entries.SetStarCount(ctx, entry.MessageID, count)
}

func (s *Service) deleteEntry(ctx context.Context, boardChannel snowflake.ID, entry *models.StarboardEntry) error {
	if boardMessage, err := snowflake.Parse(entry.StarboardMessageID); err == nil {
		if err := s.client.Rest().DeleteMessage(boardChannel, boardMessage, rest.WithCtx(ctx)); err != nil {
			slog.Warn("Failed to delete starboard message",
				slog.String("message_id", entry.StarboardMessageID),
				slog.Any("error", err))
		}
	}
	s.cache.Remove(entry.MessageID)
	return s.entries.Delete(ctx, entry.MessageID)
}

func headline(emoji string, count int, channelID snowflake.ID) string {
	return fmt.Sprintf("%s **%d** <#%s>", emoji, count, channelID)
}

// BuildEmbed renders the starboard copy of a message.
func BuildEmbed(msg *discord.Message, guildID snowflake.ID) discord.Embed {
	embed := discord.Embed{
		Author: &discord.EmbedAuthor{
			Name:    msg.Author.Username,
			IconURL: msg.Author.EffectiveAvatarURL(),
		},
		Description: msg.Content,
		Color:       utils.WarningColor,
		Fields: []discord.EmbedField{
			{
				Name:  "Source",
				Value: fmt.Sprintf("[Jump to message](https://discord.com/channels/%s/%s/%s)", guildID, msg.ChannelID, msg.ID),
			},
		},
		Timestamp: &msg.CreatedAt,
	}
	for _, attachment := range msg.Attachments {
		if attachment.ContentType != nil && len(*attachment.ContentType) >= 5 && (*attachment.ContentType)[:5] == "image" {
			embed.Image = &discord.EmbedResource{URL: attachment.URL}
			break
		}
	}
	return embed
}

func ptr[T any](v T) *T { return &v }
