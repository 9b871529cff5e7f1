package platform

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// Client is every call the cogs make into Discord.
//
// Errors returned by implementations are already passed through Classify.
type Client interface {
	SendMessage(ctx context.Context, channelID string, msg *discordgo.MessageSend) (*discordgo.Message, error)
	EditMessage(ctx context.Context, edit *discordgo.MessageEdit) (*discordgo.Message, error)
	DeleteMessage(ctx context.Context, channelID, messageID string) error
	SendDirect(ctx context.Context, userID string, msg *discordgo.MessageSend) (*discordgo.Message, error)

	Respond(ctx context.Context, it *discordgo.Interaction, resp *discordgo.InteractionResponse) error
	Followup(ctx context.Context, it *discordgo.Interaction, params *discordgo.WebhookParams) (*discordgo.Message, error)

	Guild(ctx context.Context, guildID string) (*discordgo.Guild, error)
	Member(ctx context.Context, guildID, userID string) (*discordgo.Member, error)
	AddRole(ctx context.Context, guildID, userID, roleID, reason string) error
	RemoveRole(ctx context.Context, guildID, userID, roleID, reason string) error
	Kick(ctx context.Context, guildID, userID, reason string) error
	// Permissions of the bot itself in a channel.
	BotPermissions(ctx context.Context, channelID string) (int64, error)

	Channel(ctx context.Context, channelID string) (*discordgo.Channel, error)
	CreateChannel(ctx context.Context, guildID string, data discordgo.GuildChannelCreateData, reason string) (*discordgo.Channel, error)
	EditChannel(ctx context.Context, channelID string, edit ChannelEdit, reason string) error
	DeleteChannel(ctx context.Context, channelID, reason string) error
	SetVoiceStatus(ctx context.Context, channelID, status string) error
	SetOverwrite(ctx context.Context, channelID string, ow *discordgo.PermissionOverwrite, reason string) error
	DeleteOverwrite(ctx context.Context, channelID, targetID, reason string) error

	// The bot user, nil before the first Ready.
	Self() *discordgo.User

	// User ids currently connected to a voice channel, read from the gateway state.
	VoiceMembers(guildID, channelID string) []string
	// An empty channelID disconnects the member.
	MoveMember(ctx context.Context, guildID, userID, channelID string) error
}

// Fields left nil are not changed. A zero UserLimit removes the limit.
type ChannelEdit struct {
	Name      *string
	UserLimit *int
}
