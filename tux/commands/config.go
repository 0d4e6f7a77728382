package commands

import (
	"fmt"
	"slices"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/allthingslinux/tux/tux"
	"github.com/allthingslinux/tux/tux/utils"
)

var ConfigCmd = discord.SlashCommandCreate{
	Name:         "config",
	Description:  "Configure the bot for this server",
	DMPermission: boolPtr(false),
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "show",
			Description: "Show the current configuration",
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "modlog",
			Description: "Set the moderation log channel",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionChannel{
					Name:        "channel",
					Description: "The channel receiving case logs",
					Required:    true,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "jail",
			Description: "Set the jail role and channel",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionRole{
					Name:        "role",
					Description: "The role applied to jailed members",
					Required:    true,
				},
				discord.ApplicationCommandOptionChannel{
					Name:        "channel",
					Description: "The channel jailed members can see",
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "starboard",
			Description: "Configure the starboard",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionChannel{
					Name:        "channel",
					Description: "The starboard channel",
					Required:    true,
				},
				discord.ApplicationCommandOptionString{
					Name:        "emoji",
					Description: "The star emoji (default ⭐)",
				},
				discord.ApplicationCommandOptionInt{
					Name:        "threshold",
					Description: "Stars needed to post (default 3)",
					MinValue:    intPtr(1),
				},
				discord.ApplicationCommandOptionBool{
					Name:        "selfstar",
					Description: "Whether authors can star their own messages",
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "xpblock",
			Description: "Toggle XP gain for a channel",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionChannel{
					Name:        "channel",
					Description: "The channel to toggle",
					Required:    true,
				},
			},
		},
	},
}

func ConfigHandler(b *tux.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if e.GuildID() == nil {
			return respondError(e, "This command can only be used in a server.")
		}
		data := e.SlashCommandInteractionData()
		if data.SubCommandName == nil {
			return respondError(e, "Unknown subcommand.")
		}

		ctx, cancel := commandCtx()
		defer cancel()

		guildID := e.GuildID().String()
		cfg, err := b.GuildConfigRepository.Get(ctx, guildID)
		if err != nil {
			return respondError(e, "Failed to load the server configuration.")
		}
		cfg.GuildID = guildID

		switch *data.SubCommandName {
		case "show":
			return e.CreateMessage(discord.MessageCreate{
				Embeds: []discord.Embed{utils.InfoEmbed("Server configuration", fmt.Sprintf(
					"**Mod log:** %s\n**Jail role:** %s\n**Jail channel:** %s\n**Starboard:** %s (%s, threshold %d, self-star %v)\n**XP-blocked channels:** %d",
					channelMention(cfg.ModLogChannelID),
					roleMention(cfg.JailRoleID),
					channelMention(cfg.JailChannelID),
					channelMention(cfg.StarboardChannelID),
					cfg.StarboardEmoji, cfg.StarboardThreshold, cfg.StarboardSelfStar,
					len(cfg.XPBlockedChannels)))},
			})

		case "modlog":
			cfg.ModLogChannelID = data.Channel("channel").ID.String()
			if err := b.GuildConfigRepository.Upsert(ctx, cfg); err != nil {
				return respondError(e, "Failed to save the configuration.")
			}
			return respondSuccess(e, "Configuration saved",
				fmt.Sprintf("Cases will be logged to %s.", channelMention(cfg.ModLogChannelID)))

		case "jail":
			cfg.JailRoleID = data.Role("role").ID.String()
			if channel, ok := data.OptChannel("channel"); ok {
				cfg.JailChannelID = channel.ID.String()
			}
			if err := b.GuildConfigRepository.Upsert(ctx, cfg); err != nil {
				return respondError(e, "Failed to save the configuration.")
			}
			return respondSuccess(e, "Configuration saved",
				fmt.Sprintf("Jailed members get %s.", roleMention(cfg.JailRoleID)))

		case "starboard":
			cfg.StarboardChannelID = data.Channel("channel").ID.String()
			if emoji, ok := data.OptString("emoji"); ok {
				cfg.StarboardEmoji = emoji
			}
			if threshold, ok := data.OptInt("threshold"); ok {
				cfg.StarboardThreshold = threshold
			}
			if selfStar, ok := data.OptBool("selfstar"); ok {
				cfg.StarboardSelfStar = selfStar
			}
			if err := b.GuildConfigRepository.Upsert(ctx, cfg); err != nil {
				return respondError(e, "Failed to save the configuration.")
			}
			return respondSuccess(e, "Configuration saved",
				fmt.Sprintf("Starboard set to %s: %s x%d.",
					channelMention(cfg.StarboardChannelID), cfg.StarboardEmoji, cfg.StarboardThreshold))

		case "xpblock":
			channelID := data.Channel("channel").ID.String()
			if i := slices.Index(cfg.XPBlockedChannels, channelID); i >= 0 {
				cfg.XPBlockedChannels = slices.Delete(cfg.XPBlockedChannels, i, i+1)
				if err := b.GuildConfigRepository.Upsert(ctx, cfg); err != nil {
					return respondError(e, "Failed to save the configuration.")
				}
				return respondSuccess(e, "Configuration saved",
					fmt.Sprintf("%s earns XP again.", channelMention(channelID)))
			}
			cfg.XPBlockedChannels = append(cfg.XPBlockedChannels, channelID)
			if err := b.GuildConfigRepository.Upsert(ctx, cfg); err != nil {
				return respondError(e, "Failed to save the configuration.")
			}
			return respondSuccess(e, "Configuration saved",
				fmt.Sprintf("%s no longer earns XP.", channelMention(channelID)))

		default:
			return respondError(e, "Unknown subcommand.")
		}
	}
}

func channelMention(id string) string {
	if strings.TrimSpace(id) == "" {
		return "not set"
	}
	return "<#" + id + ">"
}

func roleMention(id string) string {
	if strings.TrimSpace(id) == "" {
		return "not set"
	}
	return "<@&" + id + ">"
}
