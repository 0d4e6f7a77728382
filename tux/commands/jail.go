package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"

	"github.com/allthingslinux/tux/tux"
	"github.com/allthingslinux/tux/tux/database/models"
	"github.com/allthingslinux/tux/tux/database/repositories"
	"github.com/allthingslinux/tux/tux/moderation"
	"github.com/allthingslinux/tux/tux/utils"
)

var Jail = discord.SlashCommandCreate{
	Name:         "jail",
	Description:  "Jail a member: strip their roles and apply the jail role",
	DMPermission: boolPtr(false),
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionUser{
			Name:        "user",
			Description: "The member to jail",
			Required:    true,
		},
		discord.ApplicationCommandOptionString{
			Name:        "reason",
			Description: "Reason for the jail",
		},
		discord.ApplicationCommandOptionString{
			Name:        "duration",
			Description: "Optional release timer (e.g. 12h, 3d)",
		},
		discord.ApplicationCommandOptionBool{
			Name:        "silent",
			Description: "Skip the DM notification",
		},
	},
}

func JailHandler(b *tux.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if e.GuildID() == nil {
			return respondError(e, "This command can only be used in a server.")
		}
		data := e.SlashCommandInteractionData()
		target := data.User("user")
		member, hasMember := data.OptMember("user")
		if !hasMember {
			return respondError(e, "That user is not a member of this server.")
		}

		ctx, cancel := commandCtx()
		defer cancel()

		guildID := e.GuildID().String()

		jailed, err := b.Restrictions.IsJailed(ctx, guildID, target.ID.String())
		if err != nil {
			return respondError(e, "Failed to check the member's jail status.")
		}
		if jailed {
			return respondError(e, fmt.Sprintf("%s is already jailed.", target.Username))
		}

		cfg, err := b.GuildConfigRepository.Get(ctx, guildID)
		if err != nil || cfg.JailRoleID == "" {
			return respondError(e, "No jail role is configured. Set one with `/config jail`.")
		}
		jailRole, err := snowflake.Parse(cfg.JailRoleID)
		if err != nil {
			return respondError(e, "The configured jail role is invalid.")
		}

		var duration time.Duration
		if raw, ok := data.OptString("duration"); ok {
			duration, err = utils.ParseDuration(raw)
			if err != nil {
				return respondError(e, fmt.Sprintf("Invalid duration %q.", raw))
			}
		}

		snapshot := make([]string, 0, len(member.RoleIDs))
		for _, id := range member.RoleIDs {
			snapshot = append(snapshot, id.String())
		}

		return runModeration(b, e, modRequest{
			caseType:     models.CaseTypeJail,
			target:       target,
			reason:       data.String("reason"),
			duration:     duration,
			silent:       data.Bool("silent"),
			roleSnapshot: snapshot,
			actions: []moderation.Action{{
				Name: "apply jail role",
				Run: func(ctx context.Context) error {
					roles := []snowflake.ID{jailRole}
					_, err := e.Client().Rest().UpdateMember(*e.GuildID(), target.ID, discord.MemberUpdate{
						Roles: &roles,
					}, rest.WithCtx(ctx))
					return err
				},
			}},
		})
	}
}

var Unjail = discord.SlashCommandCreate{
	Name:         "unjail",
	Description:  "Release a jailed member and restore their roles",
	DMPermission: boolPtr(false),
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionUser{
			Name:        "user",
			Description: "The member to release",
			Required:    true,
		},
		discord.ApplicationCommandOptionString{
			Name:        "reason",
			Description: "Reason for the release",
		},
	},
}

func UnjailHandler(b *tux.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if e.GuildID() == nil {
			return respondError(e, "This command can only be used in a server.")
		}
		data := e.SlashCommandInteractionData()
		target := data.User("user")

		ctx, cancel := commandCtx()
		defer cancel()

		guildID := e.GuildID().String()

		jailed, err := b.Restrictions.IsJailed(ctx, guildID, target.ID.String())
		if err != nil {
			return respondError(e, "Failed to check the member's jail status.")
		}
		if !jailed {
			return respondError(e, fmt.Sprintf("%s is not jailed.", target.Username))
		}

		jailCase, err := b.CaseRepository.LatestByTypes(ctx, guildID, target.ID.String(),
			models.CaseTypeJail, models.CaseTypeUnjail)
		if err != nil && !errors.Is(err, repositories.ErrCaseNotFound) {
			return respondError(e, "Failed to load the jail case.")
		}

		var snapshot []snowflake.ID
		if jailCase != nil {
			for _, raw := range jailCase.RoleSnapshot {
				if id, parseErr := snowflake.Parse(raw); parseErr == nil {
					snapshot = append(snapshot, id)
				}
			}
		}

		return runModeration(b, e, modRequest{
			caseType: models.CaseTypeUnjail,
			target:   target,
			reason:   data.String("reason"),
			actions: []moderation.Action{
				{
					Name: "restore roles",
					Run: func(ctx context.Context) error {
						roles := snapshot
						if roles == nil {
							roles = []snowflake.ID{}
						}
						_, err := e.Client().Rest().UpdateMember(*e.GuildID(), target.ID, discord.MemberUpdate{
							Roles: &roles,
						}, rest.WithCtx(ctx))
						return err
					},
				},
				{
					Name: "settle jail case",
					Run: func(ctx context.Context) error {
						if jailCase == nil {
							return nil
						}
						return b.CaseRepository.SetStatus(ctx, jailCase.ID, false)
					},
				},
			},
		})
	}
}
