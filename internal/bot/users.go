package bot

import (
	"github.com/bwmarrin/discordgo"

	"github.com/devusSs/warden/internal/bot/types"
)

// The user who triggered an interaction, in guilds and direct messages.
func InteractionUser(it *discordgo.Interaction) *discordgo.User {
	if it.Member != nil && it.Member.User != nil {
		return it.Member.User
	}
	return it.User
}

// Checks the resolved permissions Discord sent with the interaction.
func HasPermission(it *discordgo.Interaction, perm int64) bool {
	if it.Member == nil {
		return false
	}
	return it.Member.Permissions&discordgo.PermissionAdministrator != 0 || it.Member.Permissions&perm == perm
}

// Reports whether the invoking member satisfies level.
func HasLevel(it *discordgo.Interaction, level types.UserLevel) bool {
	switch level {
	case types.Anyone:
		return true
	default:
		return HasPermission(it, discordgo.PermissionAdministrator)
	}
}
