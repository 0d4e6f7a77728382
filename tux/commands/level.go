package commands

import (
	"fmt"
	"math"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/paginator"

	"github.com/allthingslinux/tux/tux"
	"github.com/allthingslinux/tux/tux/utils"
)

var Rank = discord.SlashCommandCreate{
	Name:         "rank",
	Description:  "Show a member's level and rank",
	DMPermission: boolPtr(false),
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionUser{
			Name:        "user",
			Description: "The member (defaults to you)",
		},
	},
}

func RankHandler(b *tux.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if e.GuildID() == nil {
			return respondError(e, "This command can only be used in a server.")
		}
		data := e.SlashCommandInteractionData()
		target := e.User()
		if u, ok := data.OptUser("user"); ok {
			target = u
		}

		ctx, cancel := commandCtx()
		defer cancel()

		guildID := e.GuildID().String()
		record, err := b.LevelsRepository.GetOrCreate(ctx, guildID, target.ID.String())
		if err != nil {
			return respondError(e, "Failed to load the level record.")
		}
		rank, err := b.LevelsRepository.Rank(ctx, guildID, target.ID.String())
		if err != nil {
			return respondError(e, "Failed to compute the rank.")
		}

		calc := b.Leveling.Calculator()
		nextLevelXP := calc.XPForLevel(record.Level + 1)

		description := fmt.Sprintf(
			"**Level:** %d\n**XP:** %.0f / %.0f\n**Rank:** #%d",
			record.Level, record.XP, nextLevelXP, rank)
		if record.Blacklisted {
			description += "\n*This member is excluded from XP gain.*"
		}

		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title:       fmt.Sprintf("Rank for %s", target.Username),
				Description: description,
				Color:       utils.InfoColor,
			}},
		})
	}
}

var Leaderboard = discord.SlashCommandCreate{
	Name:         "leaderboard",
	Description:  "Show the server's XP leaderboard",
	DMPermission: boolPtr(false),
}

func LeaderboardHandler(b *tux.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if e.GuildID() == nil {
			return respondError(e, "This command can only be used in a server.")
		}

		ctx, cancel := commandCtx()
		defer cancel()

		guildID := e.GuildID().String()
		records, err := b.LevelsRepository.Top(ctx, guildID, 200, 0)
		if err != nil {
			return respondError(e, "Failed to load the leaderboard.")
		}
		if len(records) == 0 {
			return e.CreateMessage(discord.MessageCreate{
				Embeds: []discord.Embed{utils.InfoEmbed("Leaderboard", "Nobody has earned XP yet.")},
			})
		}

		totalPages := int(math.Ceil(float64(len(records)) / float64(utils.LeaderboardPerPage)))

		return b.Paginator.Create(e.Respond, paginator.Pages{
			ID:      e.ID().String(),
			Creator: e.User().ID,
			PageFunc: func(page int, embed *discord.EmbedBuilder) {
				start := page * utils.LeaderboardPerPage
				end := min(start+utils.LeaderboardPerPage, len(records))

				var description strings.Builder
				for i, record := range records[start:end] {
					fmt.Fprintf(&description, "`#%-3d` <@%s> — level %d (%.0f XP)\n",
						start+i+1, record.MemberID, record.Level, record.XP)
				}

				embed.SetTitle("XP Leaderboard").
					SetDescription(description.String()).
					SetColor(utils.InfoColor).
					SetFooter(fmt.Sprintf("Page %d/%d", page+1, totalPages), "")
			},
			Pages:      totalPages,
			ExpireMode: paginator.ExpireModeAfterLastUsage,
		}, false)
	}
}

var XP = discord.SlashCommandCreate{
	Name:         "xp",
	Description:  "Manage member XP",
	DMPermission: boolPtr(false),
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "set",
			Description: "Set a member's XP",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionUser{
					Name:        "user",
					Description: "The member",
					Required:    true,
				},
				discord.ApplicationCommandOptionInt{
					Name:        "xp",
					Description: "The new XP total",
					Required:    true,
					MinValue:    intPtr(0),
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "reset",
			Description: "Reset a member's XP to zero",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionUser{
					Name:        "user",
					Description: "The member",
					Required:    true,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "blacklist",
			Description: "Include or exclude a member from XP gain",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionUser{
					Name:        "user",
					Description: "The member",
					Required:    true,
				},
				discord.ApplicationCommandOptionBool{
					Name:        "blocked",
					Description: "Whether the member is excluded",
					Required:    true,
				},
			},
		},
	},
}

func XPHandler(b *tux.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if e.GuildID() == nil {
			return respondError(e, "This command can only be used in a server.")
		}
		data := e.SlashCommandInteractionData()
		if data.SubCommandName == nil {
			return respondError(e, "Unknown subcommand.")
		}
		target := data.User("user")

		ctx, cancel := commandCtx()
		defer cancel()

		guildID := e.GuildID().String()

		switch *data.SubCommandName {
		case "set":
			xp := float64(data.Int("xp"))
			level, err := b.Leveling.SetXP(ctx, guildID, target.ID.String(), xp)
			if err != nil {
				return respondError(e, "Failed to set XP.")
			}
			return respondSuccess(e, "XP updated",
				fmt.Sprintf("%s now has %.0f XP (level %d).", target.Username, xp, level))

		case "reset":
			if err := b.Leveling.ResetXP(ctx, guildID, target.ID.String()); err != nil {
				return respondError(e, "Failed to reset XP.")
			}
			return respondSuccess(e, "XP reset",
				fmt.Sprintf("%s's XP has been reset.", target.Username))

		case "blacklist":
			blocked := data.Bool("blocked")
			if err := b.Leveling.SetBlacklisted(ctx, guildID, target.ID.String(), blocked); err != nil {
				return respondError(e, "Failed to update the blacklist.")
			}
			word := "now excluded from"
			if !blocked {
				word = "again included in"
			}
			return respondSuccess(e, "Blacklist updated",
				fmt.Sprintf("%s is %s XP gain.", target.Username, word))

		default:
			return respondError(e, "Unknown subcommand.")
		}
	}
}
