package tickets

import (
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
)

// RenderTranscript flattens a channel's message history into a plain text
// log, oldest first. Discord returns history newest first, so the input is
// walked in reverse.
func RenderTranscript(ticketID int64, guildID string, messages []discord.Message) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "Ticket #%d transcript\n", ticketID)
	fmt.Fprintf(&b, "Guild: %s\n", guildID)
	fmt.Fprintf(&b, "Messages: %d\n\n", len(messages))

	for i := len(messages) - 1; i >= 0; i-- {
		msg := messages[i]
		fmt.Fprintf(&b, "[%s] %s: %s\n",
			msg.CreatedAt.UTC().Format(time.RFC3339),
			msg.Author.Username,
			msg.Content)
		for _, attachment := range msg.Attachments {
			fmt.Fprintf(&b, "    attachment: %s\n", attachment.URL)
		}
		for _, embed := range msg.Embeds {
			if embed.Title != "" || embed.Description != "" {
				fmt.Fprintf(&b, "    embed: %s %s\n", embed.Title, strings.ReplaceAll(embed.Description, "\n", " "))
			}
		}
	}

	return []byte(b.String())
}
