package platform

import (
	"context"
	"errors"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// ResponseTarget is where a cog answers a user: either an interaction or a
// channel. The set of implementations is closed.
type ResponseTarget interface {
	// Returns the sent message if it can be deleted later, nil for ephemeral answers.
	Reply(ctx context.Context, c Client, content string) (*discordgo.Message, error)
	responseTarget()
}

// Answers an interaction ephemerally. The first reply responds to the
// interaction, every later one (or any reply after Defer) is a followup.
type InteractionTarget struct {
	Interaction *discordgo.Interaction

	mu        sync.Mutex
	responded bool
}

func NewInteractionTarget(it *discordgo.Interaction) *InteractionTarget {
	return &InteractionTarget{Interaction: it}
}

// Acknowledges the interaction without content, replies become followups.
func (t *InteractionTarget) Defer(ctx context.Context, c Client) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.responded {
		return nil
	}

	err := c.Respond(ctx, t.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
	if err == nil {
		t.responded = true
	}
	return err
}

// Opens a modal. Only valid as the first response.
func (t *InteractionTarget) Modal(ctx context.Context, c Client, data *discordgo.InteractionResponseData) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.responded {
		return errors.New("modal after the interaction was answered")
	}

	err := c.Respond(ctx, t.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: data,
	})
	if err == nil {
		t.responded = true
	}
	return err
}

func (t *InteractionTarget) Responded() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.responded
}

func (t *InteractionTarget) Reply(ctx context.Context, c Client, content string) (*discordgo.Message, error) {
	return t.ReplyComplex(ctx, c, &discordgo.InteractionResponseData{Content: content})
}

// Like Reply but with embeds, components or files.
func (t *InteractionTarget) ReplyComplex(ctx context.Context, c Client, data *discordgo.InteractionResponseData) (*discordgo.Message, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.responded {
		return c.Followup(ctx, t.Interaction, &discordgo.WebhookParams{
			Content:    data.Content,
			Embeds:     data.Embeds,
			Components: data.Components,
			Files:      data.Files,
			Flags:      discordgo.MessageFlagsEphemeral,
		})
	}

	data.Flags |= discordgo.MessageFlagsEphemeral
	err := c.Respond(ctx, t.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		return nil, err
	}
	t.responded = true
	return nil, nil
}

func (t *InteractionTarget) responseTarget() {}

// Answers with a normal message in a channel.
type ChannelTarget struct {
	ChannelID string
}

func (t ChannelTarget) Reply(ctx context.Context, c Client, content string) (*discordgo.Message, error) {
	return c.SendMessage(ctx, t.ChannelID, &discordgo.MessageSend{Content: content})
}

func (t ChannelTarget) responseTarget() {}
