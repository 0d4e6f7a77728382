package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/sahilm/fuzzy"

	"github.com/allthingslinux/tux/tux"
	"github.com/allthingslinux/tux/tux/database/models"
	"github.com/allthingslinux/tux/tux/database/repositories"
	"github.com/allthingslinux/tux/tux/utils"
)

var Snippet = discord.SlashCommandCreate{
	Name:         "snippet",
	Description:  "Canned responses",
	DMPermission: boolPtr(false),
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "get",
			Description: "Post a snippet",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:         "name",
					Description:  "The snippet name",
					Required:     true,
					Autocomplete: true,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "create",
			Description: "Create a snippet",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:        "name",
					Description: "The snippet name",
					Required:    true,
				},
				discord.ApplicationCommandOptionString{
					Name:        "content",
					Description: "What the snippet says",
					Required:    true,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "delete",
			Description: "Delete a snippet",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:         "name",
					Description:  "The snippet name",
					Required:     true,
					Autocomplete: true,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "list",
			Description: "List the server's snippets",
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "info",
			Description: "Show a snippet's details",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:         "name",
					Description:  "The snippet name",
					Required:     true,
					Autocomplete: true,
				},
			},
		},
	},
}

func SnippetHandler(b *tux.Bot) handler.CommandHandler {
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
		userID := e.User().ID.String()

		// Snippet-banned members can read nothing, write nothing.
		banned, err := b.Restrictions.IsSnippetBanned(ctx, guildID, userID)
		if err != nil {
			return respondError(e, "Failed to check your snippet access.")
		}
		if banned {
			return respondError(e, "You are banned from using snippets.")
		}

		switch *data.SubCommandName {
		case "get":
			return snippetGet(b, e, guildID)
		case "create":
			return snippetCreate(b, e, guildID, userID)
		case "delete":
			return snippetDelete(b, e, guildID)
		case "list":
			return snippetList(b, e, guildID)
		case "info":
			return snippetInfo(b, e, guildID)
		default:
			return respondError(e, "Unknown subcommand.")
		}
	}
}

func snippetGet(b *tux.Bot, e *handler.CommandEvent, guildID string) error {
	name := normalizeSnippetName(e.SlashCommandInteractionData().String("name"))

	ctx, cancel := commandCtx()
	defer cancel()

	snippet, err := b.SnippetRepository.GetByName(ctx, guildID, name)
	if errors.Is(err, repositories.ErrSnippetNotFound) {
		return respondError(e, fmt.Sprintf("No snippet named %q.", name))
	}
	if err != nil {
		return respondError(e, "Failed to load the snippet.")
	}

	if err := b.SnippetRepository.IncrementUses(ctx, guildID, name); err != nil {
		// Count drift is acceptable; the content still goes out.
		slog.Warn("Failed to count snippet use", slog.Any("error", err))
	}

	return e.CreateMessage(discord.MessageCreate{Content: snippet.Content})
}

func snippetCreate(b *tux.Bot, e *handler.CommandEvent, guildID, userID string) error {
	data := e.SlashCommandInteractionData()
	name := normalizeSnippetName(data.String("name"))
	if name == "" || len(name) > 64 {
		return respondError(e, "Snippet names must be 1-64 characters.")
	}

	ctx, cancel := commandCtx()
	defer cancel()

	snippet := &models.Snippet{
		GuildID:   guildID,
		Name:      name,
		Content:   data.String("content"),
		AuthorID:  userID,
		CreatedAt: time.Now(),
	}
	err := b.SnippetRepository.Create(ctx, snippet)
	if errors.Is(err, repositories.ErrSnippetExists) {
		return respondError(e, fmt.Sprintf("A snippet named %q already exists.", name))
	}
	if err != nil {
		return respondError(e, "Failed to create the snippet.")
	}

	return respondSuccess(e, "Snippet created", fmt.Sprintf("`%s` is ready to use.", name))
}

func snippetDelete(b *tux.Bot, e *handler.CommandEvent, guildID string) error {
	name := normalizeSnippetName(e.SlashCommandInteractionData().String("name"))

	ctx, cancel := commandCtx()
	defer cancel()

	snippet, err := b.SnippetRepository.GetByName(ctx, guildID, name)
	if errors.Is(err, repositories.ErrSnippetNotFound) {
		return respondError(e, fmt.Sprintf("No snippet named %q.", name))
	}
	if err != nil {
		return respondError(e, "Failed to load the snippet.")
	}

	// Only the author or a moderator may delete.
	isModerator := e.Member() != nil && e.Member().Permissions.Has(discord.PermissionBanMembers)
	if snippet.AuthorID != e.User().ID.String() && !isModerator {
		return respondError(e, "Only the snippet's author or a moderator can delete it.")
	}

	if err := b.SnippetRepository.Delete(ctx, guildID, name); err != nil {
		return respondError(e, "Failed to delete the snippet.")
	}
	return respondSuccess(e, "Snippet deleted", fmt.Sprintf("`%s` is gone.", name))
}

func snippetList(b *tux.Bot, e *handler.CommandEvent, guildID string) error {
	ctx, cancel := commandCtx()
	defer cancel()

	snippets, err := b.SnippetRepository.ListByGuild(ctx, guildID)
	if err != nil {
		return respondError(e, "Failed to list snippets.")
	}
	if len(snippets) == 0 {
		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{utils.InfoEmbed("Snippets", "This server has no snippets yet.")},
		})
	}

	names := make([]string, len(snippets))
	for i, s := range snippets {
		names[i] = "`" + s.Name + "`"
	}
	return e.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{utils.InfoEmbed(
			fmt.Sprintf("Snippets (%d)", len(snippets)),
			strings.Join(names, ", "))},
	})
}

func snippetInfo(b *tux.Bot, e *handler.CommandEvent, guildID string) error {
	name := normalizeSnippetName(e.SlashCommandInteractionData().String("name"))

	ctx, cancel := commandCtx()
	defer cancel()

	snippet, err := b.SnippetRepository.GetByName(ctx, guildID, name)
	if errors.Is(err, repositories.ErrSnippetNotFound) {
		return respondError(e, fmt.Sprintf("No snippet named %q.", name))
	}
	if err != nil {
		return respondError(e, "Failed to load the snippet.")
	}

	description := fmt.Sprintf(
		"**Author:** <@%s>\n**Uses:** %d\n**Created:** <t:%d:f>\n\n%s",
		snippet.AuthorID, snippet.Uses, snippet.CreatedAt.Unix(), snippet.Content)
	return e.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{utils.InfoEmbed("Snippet: "+snippet.Name, description)},
	})
}

// SnippetAutocompleteHandler fuzzy-matches the typed prefix against the
// guild's snippet names.
func SnippetAutocompleteHandler(b *tux.Bot) handler.AutocompleteHandler {
	return func(e *handler.AutocompleteEvent) error {
		if e.GuildID() == nil {
			return e.AutocompleteResult(nil)
		}

		ctx, cancel := commandCtx()
		defer cancel()

		names, err := b.SnippetRepository.ListNames(ctx, e.GuildID().String())
		if err != nil || len(names) == 0 {
			return e.AutocompleteResult([]discord.AutocompleteChoice{})
		}

		query := normalizeSnippetName(e.Data.String("name"))
		choices := make([]discord.AutocompleteChoice, 0, 25)
		if query == "" {
			for _, name := range names {
				if len(choices) == 25 {
					break
				}
				choices = append(choices, discord.AutocompleteChoiceString{Name: name, Value: name})
			}
			return e.AutocompleteResult(choices)
		}

		for _, match := range fuzzy.Find(query, names) {
			if len(choices) == 25 {
				break
			}
			choices = append(choices, discord.AutocompleteChoiceString{
				Name:  match.Str,
				Value: match.Str,
			})
		}
		return e.AutocompleteResult(choices)
	}
}

func normalizeSnippetName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
