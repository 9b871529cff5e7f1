package bot

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/devusSs/warden/internal/bot/platform"
)

// Cog is a self-contained feature registered with the bot.
type Cog interface {
	Name() string
	// Semantic version of the cog itself.
	Version() string
	// Oldest framework version (see version.Framework) the cog runs on.
	MinFrameworkVersion() string
	Commands() []*discordgo.ApplicationCommand
	// Initialisation task, run once in its own goroutine after the first Ready.
	// ctx is cancelled on Disconnect.
	Start(ctx context.Context) error
	// Stops every timer the cog owns.
	Stop()
}

// Cogs implement any of the following to receive gateway events.

type InteractionHandler interface {
	// Returns false if the interaction does not belong to the cog.
	HandleInteraction(ctx context.Context, t *platform.InteractionTarget) (bool, error)
}

type MessageHandler interface {
	HandleMessage(ctx context.Context, m *discordgo.Message) error
}

type MemberRemoveHandler interface {
	HandleMemberRemove(ctx context.Context, guildID, userID string) error
}

type VoiceStateHandler interface {
	// before is nil if the member was not known to be connected.
	HandleVoiceState(ctx context.Context, before, after *discordgo.VoiceState) error
}
