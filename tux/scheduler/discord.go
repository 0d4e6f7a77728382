package scheduler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"

	"github.com/allthingslinux/tux/tux/database/models"
	"github.com/allthingslinux/tux/tux/utils"
)

// DiscordGateway backs the sweep interfaces with the live REST client.
type DiscordGateway struct {
	client bot.Client
}

func NewDiscordGateway(client bot.Client) *DiscordGateway {
	return &DiscordGateway{client: client}
}

func (g *DiscordGateway) IsBanned(ctx context.Context, guildID, userID string) (bool, error) {
	gid, uid, err := parseIDs(guildID, userID)
	if err != nil {
		return false, err
	}
	_, err = g.client.Rest().GetBan(gid, uid, rest.WithCtx(ctx))
	if err != nil {
		var restErr *rest.Error
		if errors.As(err, &restErr) && restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (g *DiscordGateway) Unban(ctx context.Context, guildID, userID string) error {
	gid, uid, err := parseIDs(guildID, userID)
	if err != nil {
		return err
	}
	return g.client.Rest().DeleteBan(gid, uid, rest.WithCtx(ctx))
}

// RestoreRoles replaces the member's roles with the saved snapshot, which
// also drops the jail role.
func (g *DiscordGateway) RestoreRoles(ctx context.Context, guildID, userID string, roles []string) error {
	gid, uid, err := parseIDs(guildID, userID)
	if err != nil {
		return err
	}

	roleIDs := make([]snowflake.ID, 0, len(roles))
	for _, r := range roles {
		id, err := snowflake.Parse(r)
		if err != nil {
			return fmt.Errorf("invalid role id %q: %w", r, err)
		}
		roleIDs = append(roleIDs, id)
	}

	_, err = g.client.Rest().UpdateMember(gid, uid, discord.MemberUpdate{
		Roles: &roleIDs,
	}, rest.WithCtx(ctx))
	return err
}

func (g *DiscordGateway) SetNickname(ctx context.Context, guildID, memberID, nickname string) error {
	gid, uid, err := parseIDs(guildID, memberID)
	if err != nil {
		return err
	}
	_, err = g.client.Rest().UpdateMember(gid, uid, discord.MemberUpdate{
		Nick: &nickname,
	}, rest.WithCtx(ctx))
	return err
}

// Deliver sends the reminder as a DM and falls back to the origin channel
// when the DM cannot be created or sent.
func (g *DiscordGateway) Deliver(ctx context.Context, reminder *models.Reminder) error {
	uid, err := snowflake.Parse(reminder.UserID)
	if err != nil {
		return err
	}

	embed := discord.Embed{
		Title:       "Reminder",
		Description: reminder.Content,
		Color:       utils.InfoColor,
	}

	if channel, err := g.client.Rest().CreateDMChannel(uid, rest.WithCtx(ctx)); err == nil {
		if _, err = g.client.Rest().CreateMessage(channel.ID(), discord.MessageCreate{
			Embeds: []discord.Embed{embed},
		}, rest.WithCtx(ctx)); err == nil {
			return nil
		}
	}

	cid, err := snowflake.Parse(reminder.ChannelID)
	if err != nil {
		return err
	}
	_, err = g.client.Rest().CreateMessage(cid, discord.MessageCreate{
		Content: fmt.Sprintf("<@%s>", reminder.UserID),
		Embeds:  []discord.Embed{embed},
	}, rest.WithCtx(ctx))
	return err
}

func parseIDs(guildID, userID string) (snowflake.ID, snowflake.ID, error) {
	gid, err := snowflake.Parse(guildID)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid guild id %q: %w", guildID, err)
	}
	uid, err := snowflake.Parse(userID)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid user id %q: %w", userID, err)
	}
	return gid, uid, nil
}
