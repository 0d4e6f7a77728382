package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"

	"github.com/allthingslinux/tux/tux"
	"github.com/allthingslinux/tux/tux/database/models"
	"github.com/allthingslinux/tux/tux/moderation"
	"github.com/allthingslinux/tux/tux/utils"
)

// respondError sends an ephemeral error embed.
func respondError(e *handler.CommandEvent, description string) error {
	return e.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{utils.ErrorEmbed(description)},
		Flags:  discord.MessageFlagEphemeral,
	})
}

func respondSuccess(e *handler.CommandEvent, title, description string) error {
	return e.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{utils.SuccessEmbed(title, description)},
	})
}

// guildScope resolves the guild a command ran in, including its cached name
// and owner.
func guildScope(e *handler.CommandEvent) (guildID snowflake.ID, name, ownerID string, err error) {
	if e.GuildID() == nil {
		return 0, "", "", errors.New("command used outside a guild")
	}
	guildID = *e.GuildID()
	if guild, ok := e.Client().Caches().Guild(guildID); ok {
		return guildID, guild.Name, guild.OwnerID.String(), nil
	}
	guild, restErr := e.Client().Rest().GetGuild(guildID, false)
	if restErr != nil {
		return 0, "", "", fmt.Errorf("failed to resolve guild: %w", restErr)
	}
	return guildID, guild.Name, guild.OwnerID.String(), nil
}

// modRequest collects everything a moderation command needs to hand to the
// case executor.
type modRequest struct {
	caseType     models.CaseType
	target       discord.User
	reason       string
	duration     time.Duration
	silent       bool
	roleSnapshot []string
	actions      []moderation.Action
}

// runModeration executes one moderation case and responds to the command.
// On success the case embed is posted publicly and mirrored to the mod-log
// channel.
func runModeration(b *tux.Bot, e *handler.CommandEvent, req modRequest) error {
	guildID, guildName, ownerID, err := guildScope(e)
	if err != nil {
		return respondError(e, "This command can only be used in a server.")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	result, err := b.Executor.Execute(ctx, moderation.Request{
		GuildID:      guildID.String(),
		GuildName:    guildName,
		GuildOwnerID: ownerID,
		ModeratorID:  e.User().ID.String(),
		TargetID:     req.target.ID.String(),
		Type:         req.caseType,
		Reason:       req.reason,
		Duration:     req.duration,
		Silent:       req.silent,
		RoleSnapshot: req.roleSnapshot,
		Actions:      req.actions,
	})
	if err != nil {
		var condErr *moderation.ConditionError
		var actionErr *moderation.ActionError
		var recordErr *moderation.RecordError
		switch {
		case errors.As(err, &condErr):
			return respondError(e, condErr.Message)
		case errors.As(err, &actionErr):
			return respondError(e, fmt.Sprintf("Failed to %s %s: %v", req.caseType.Verb(), req.target.Username, actionErr.Err))
		case errors.As(err, &recordErr):
			return e.CreateMessage(discord.MessageCreate{
				Embeds: []discord.Embed{{
					Title:       "Warning",
					Description: fmt.Sprintf("The action was applied but the case could not be recorded: %v", recordErr.Err),
					Color:       utils.WarningColor,
				}},
			})
		default:
			return respondError(e, "Something went wrong executing the action.")
		}
	}

	embed := caseEmbed(result.Case, req.target, result.DMSent)
	if err := e.CreateMessage(discord.MessageCreate{Embeds: []discord.Embed{embed}}); err != nil {
		slog.Warn("Failed to respond to moderation command", slog.Any("error", err))
	}

	postToModLog(ctx, b, result.Case, embed)
	return nil
}

// caseEmbed renders the public response for an executed case.
func caseEmbed(c *models.Case, target discord.User, dmSent bool) discord.Embed {
	title := fmt.Sprintf("Case #%d | %s", c.CaseNumber, strings.ToUpper(string(c.Type)))

	description := fmt.Sprintf("**Target:** %s (<@%s>)\n**Moderator:** <@%s>\n**Reason:** %s",
		target.Username, c.TargetID, c.ModeratorID, orDefault(c.Reason, "No reason provided"))
	if c.ExpiresAt != nil {
		description += fmt.Sprintf("\n**Expires:** <t:%d:R>", c.ExpiresAt.Unix())
	}
	if !dmSent {
		description += "\n*Could not DM the user.*"
	}

	color := utils.ErrorColor
	switch c.Type {
	case models.CaseTypeWarn, models.CaseTypeTimeout:
		color = utils.WarningColor
	case models.CaseTypeUnban, models.CaseTypeUntimeout, models.CaseTypeUnjail,
		models.CaseTypeUnpollBan, models.CaseTypeUnsnippetBan:
		color = utils.SuccessColor
	}

	now := time.Now()
	return discord.Embed{
		Title:       title,
		Description: description,
		Color:       color,
		Timestamp:   &now,
		Footer: &discord.EmbedFooter{
			Text: fmt.Sprintf("Case ID %d", c.ID),
		},
	}
}

// postToModLog mirrors a case embed to the configured mod-log channel and
// stores the message id so later edits to the case can update it.
func postToModLog(ctx context.Context, b *tux.Bot, c *models.Case, embed discord.Embed) {
	cfg, err := b.GuildConfigRepository.Get(ctx, c.GuildID)
	if err != nil {
		slog.Error("Failed to load guild config for mod log", slog.Any("error", err))
		return
	}
	if cfg.ModLogChannelID == "" {
		return
	}
	channelID, err := snowflake.Parse(cfg.ModLogChannelID)
	if err != nil {
		slog.Warn("Invalid mod log channel id", slog.String("channel_id", cfg.ModLogChannelID))
		return
	}

	msg, err := b.Client.Rest().CreateMessage(channelID, discord.MessageCreate{
		Embeds: []discord.Embed{embed},
	}, rest.WithCtx(ctx))
	if err != nil {
		slog.Warn("Failed to post case to mod log",
			slog.String("guild_id", c.GuildID),
			slog.Any("error", err))
		return
	}

	if err := b.CaseRepository.SetLogMessageID(ctx, c.ID, msg.ID.String()); err != nil {
		slog.Warn("Failed to store mod log message id", slog.Any("error", err))
	}
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// commandCtx is the short per-command context used by non-moderation
// handlers.
func commandCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), utils.DefaultQueryTimeout)
}
