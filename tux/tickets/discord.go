package tickets

import (
	"context"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
)

// RestHistoryFetcher reads channel history through the Discord REST API.
type RestHistoryFetcher struct {
	client bot.Client
}

func NewRestHistoryFetcher(client bot.Client) *RestHistoryFetcher {
	return &RestHistoryFetcher{client: client}
}

func (f *RestHistoryFetcher) GetMessages(ctx context.Context, channelID, before snowflake.ID, limit int) ([]discord.Message, error) {
	return f.client.Rest().GetMessages(channelID, 0, before, 0, limit, rest.WithCtx(ctx))
}
