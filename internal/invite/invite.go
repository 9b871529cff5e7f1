// Package invite builds the OAuth2 url used to add the bot to a guild.
package invite

import (
	"errors"
	"strconv"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/oauth2"
)

var endpoint = oauth2.Endpoint{
	AuthURL:  discordgo.EndpointOauth2 + "authorize",
	TokenURL: discordgo.EndpointOauth2 + "token",
}

// Permissions both cogs need to work.
const Permissions = discordgo.PermissionManageRoles |
	discordgo.PermissionKickMembers |
	discordgo.PermissionManageChannels |
	discordgo.PermissionVoiceMoveMembers |
	discordgo.PermissionViewChannel |
	discordgo.PermissionSendMessages |
	discordgo.PermissionManageMessages |
	discordgo.PermissionEmbedLinks |
	discordgo.PermissionAttachFiles |
	discordgo.PermissionVoiceConnect

// Returns the url an administrator opens to add the bot with its application commands.
func URL(applicationID, clientSecret string) (string, error) {
	if applicationID == "" {
		return "", errors.New("missing application id")
	}

	cfg := &oauth2.Config{
		ClientID:     applicationID,
		ClientSecret: clientSecret,
		Endpoint:     endpoint,
		Scopes:       []string{"bot", "applications.commands"},
	}

	return cfg.AuthCodeURL("",
		oauth2.SetAuthURLParam("permissions", strconv.FormatInt(Permissions, 10)),
	), nil
}
