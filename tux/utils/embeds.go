package utils

import (
	"github.com/disgoorg/disgo/discord"
)

// ErrorEmbed is the standard red error response body.
func ErrorEmbed(description string) discord.Embed {
	return discord.Embed{
		Title:       "Error",
		Description: description,
		Color:       ErrorColor,
	}
}

// SuccessEmbed is the standard green confirmation body.
func SuccessEmbed(title, description string) discord.Embed {
	return discord.Embed{
		Title:       title,
		Description: description,
		Color:       SuccessColor,
	}
}

// InfoEmbed is the neutral informational body.
func InfoEmbed(title, description string) discord.Embed {
	return discord.Embed{
		Title:       title,
		Description: description,
		Color:       InfoColor,
	}
}
