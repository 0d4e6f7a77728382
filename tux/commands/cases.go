package commands

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/paginator"

	"github.com/allthingslinux/tux/tux"
	"github.com/allthingslinux/tux/tux/database/models"
	"github.com/allthingslinux/tux/tux/database/repositories"
	"github.com/allthingslinux/tux/tux/utils"
)

var Cases = discord.SlashCommandCreate{
	Name:         "cases",
	Description:  "Browse and manage moderation cases",
	DMPermission: boolPtr(false),
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "list",
			Description: "List the server's cases",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionUser{
					Name:        "user",
					Description: "Only show cases for this member",
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "view",
			Description: "Show one case in full",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionInt{
					Name:        "number",
					Description: "The case number",
					Required:    true,
					MinValue:    intPtr(1),
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "reason",
			Description: "Rewrite a case's reason",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionInt{
					Name:        "number",
					Description: "The case number",
					Required:    true,
					MinValue:    intPtr(1),
				},
				discord.ApplicationCommandOptionString{
					Name:        "reason",
					Description: "The new reason",
					Required:    true,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "status",
			Description: "Activate or deactivate a case",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionInt{
					Name:        "number",
					Description: "The case number",
					Required:    true,
					MinValue:    intPtr(1),
				},
				discord.ApplicationCommandOptionBool{
					Name:        "active",
					Description: "Whether the case is active",
					Required:    true,
				},
			},
		},
	},
}

func CasesHandler(b *tux.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if e.GuildID() == nil {
			return respondError(e, "This command can only be used in a server.")
		}
		data := e.SlashCommandInteractionData()
		if data.SubCommandName == nil {
			return respondError(e, "Unknown subcommand.")
		}
		switch *data.SubCommandName {
		case "list":
			return casesList(b, e)
		case "view":
			return casesView(b, e)
		case "reason":
			return casesReason(b, e)
		case "status":
			return casesStatus(b, e)
		default:
			return respondError(e, "Unknown subcommand.")
		}
	}
}

func casesList(b *tux.Bot, e *handler.CommandEvent) error {
	data := e.SlashCommandInteractionData()
	guildID := e.GuildID().String()

	ctx, cancel := commandCtx()
	defer cancel()

	var cases []*models.Case
	var err error
	if target, ok := data.OptUser("user"); ok {
		cases, err = b.CaseRepository.ListByTarget(ctx, guildID, target.ID.String())
	} else {
		cases, err = b.CaseRepository.ListByGuild(ctx, guildID, 500, 0)
	}
	if err != nil {
		return respondError(e, "Failed to load cases.")
	}
	if len(cases) == 0 {
		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{utils.InfoEmbed("Cases", "No cases found.")},
		})
	}

	totalPages := int(math.Ceil(float64(len(cases)) / float64(utils.CasesPerPage)))

	return b.Paginator.Create(e.Respond, paginator.Pages{
		ID:      e.ID().String(),
		Creator: e.User().ID,
		PageFunc: func(page int, embed *discord.EmbedBuilder) {
			start := page * utils.CasesPerPage
			end := min(start+utils.CasesPerPage, len(cases))

			var description strings.Builder
			for _, c := range cases[start:end] {
				status := "inactive"
				if c.Status {
					status = "active"
				}
				fmt.Fprintf(&description, "`#%-4d` **%s** <@%s> — %s (%s)\n",
					c.CaseNumber, c.Type, c.TargetID,
					orDefault(c.Reason, "no reason"), status)
			}

			embed.SetTitle(fmt.Sprintf("Cases (%d)", len(cases))).
				SetDescription(description.String()).
				SetColor(utils.EmbedColor).
				SetFooter(fmt.Sprintf("Page %d/%d", page+1, totalPages), "")
		},
		Pages:      totalPages,
		ExpireMode: paginator.ExpireModeAfterLastUsage,
	}, false)
}

func casesView(b *tux.Bot, e *handler.CommandEvent) error {
	data := e.SlashCommandInteractionData()

	ctx, cancel := commandCtx()
	defer cancel()

	c, err := b.CaseRepository.GetByNumber(ctx, e.GuildID().String(), data.Int("number"))
	if errors.Is(err, repositories.ErrCaseNotFound) {
		return respondError(e, fmt.Sprintf("Case #%d does not exist.", data.Int("number")))
	}
	if err != nil {
		return respondError(e, "Failed to load the case.")
	}

	status := "Inactive"
	if c.Status {
		status = "Active"
	}
	description := fmt.Sprintf(
		"**Type:** %s\n**Target:** <@%s>\n**Moderator:** <@%s>\n**Status:** %s\n**Reason:** %s\n**Created:** <t:%d:f>",
		c.Type, c.TargetID, c.ModeratorID, status,
		orDefault(c.Reason, "No reason provided"), c.CreatedAt.Unix())
	if c.ExpiresAt != nil {
		description += fmt.Sprintf("\n**Expires:** <t:%d:R>", c.ExpiresAt.Unix())
	}
	if len(c.RoleSnapshot) > 0 {
		description += fmt.Sprintf("\n**Saved roles:** %d", len(c.RoleSnapshot))
	}

	now := time.Now()
	return e.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{{
			Title:       fmt.Sprintf("Case #%d", c.CaseNumber),
			Description: description,
			Color:       utils.EmbedColor,
			Timestamp:   &now,
		}},
	})
}

func casesReason(b *tux.Bot, e *handler.CommandEvent) error {
	data := e.SlashCommandInteractionData()
	number := data.Int("number")

	ctx, cancel := commandCtx()
	defer cancel()

	guildID := e.GuildID().String()
	if _, err := b.CaseRepository.GetByNumber(ctx, guildID, number); errors.Is(err, repositories.ErrCaseNotFound) {
		return respondError(e, fmt.Sprintf("Case #%d does not exist.", number))
	} else if err != nil {
		return respondError(e, "Failed to load the case.")
	}

	if err := b.CaseRepository.SetReason(ctx, guildID, number, data.String("reason")); err != nil {
		return respondError(e, "Failed to update the reason.")
	}
	return respondSuccess(e, "Case updated",
		fmt.Sprintf("Reason for case #%d set to: %s", number, data.String("reason")))
}

func casesStatus(b *tux.Bot, e *handler.CommandEvent) error {
	data := e.SlashCommandInteractionData()
	number := data.Int("number")
	active := data.Bool("active")

	ctx, cancel := commandCtx()
	defer cancel()

	c, err := b.CaseRepository.GetByNumber(ctx, e.GuildID().String(), number)
	if errors.Is(err, repositories.ErrCaseNotFound) {
		return respondError(e, fmt.Sprintf("Case #%d does not exist.", number))
	}
	if err != nil {
		return respondError(e, "Failed to load the case.")
	}

	if err := b.CaseRepository.SetStatus(ctx, c.ID, active); err != nil {
		return respondError(e, "Failed to update the case status.")
	}

	word := "deactivated"
	if active {
		word = "reactivated"
	}
	return respondSuccess(e, "Case updated", fmt.Sprintf("Case #%d %s.", number, word))
}
