package leveling

import (
	"context"
	"fmt"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
)

// RestRoleSyncer applies tier roles through the Discord REST API.
type RestRoleSyncer struct {
	client bot.Client
}

func NewRestRoleSyncer(client bot.Client) *RestRoleSyncer {
	return &RestRoleSyncer{client: client}
}

func (r *RestRoleSyncer) AddRole(ctx context.Context, guildID, memberID, roleID string) error {
	guild, member, role, err := parseRoleIDs(guildID, memberID, roleID)
	if err != nil {
		return err
	}
	return r.client.Rest().AddMemberRole(guild, member, role, rest.WithCtx(ctx))
}

func (r *RestRoleSyncer) RemoveRole(ctx context.Context, guildID, memberID, roleID string) error {
	guild, member, role, err := parseRoleIDs(guildID, memberID, roleID)
	if err != nil {
		return err
	}
	return r.client.Rest().RemoveMemberRole(guild, member, role, rest.WithCtx(ctx))
}

func parseRoleIDs(guildID, memberID, roleID string) (snowflake.ID, snowflake.ID, snowflake.ID, error) {
	guild, err := snowflake.Parse(guildID)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid guild id %q: %w", guildID, err)
	}
	member, err := snowflake.Parse(memberID)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid member id %q: %w", memberID, err)
	}
	role, err := snowflake.Parse(roleID)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid role id %q: %w", roleID, err)
	}
	return guild, member, role, nil
}
