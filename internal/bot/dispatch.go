package bot

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/devusSs/warden/internal/bot/platform"
)

// Upper bound for a single event handler, timers started by cogs are not bound by it.
const handlerTimeout = 30 * time.Second

const genericFailure = "❌ Something went wrong. The error has been logged."

func (b *Bot) handlerContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(b.ctx, handlerTimeout)
}

// Runs fn and reports its error or panic. t is nil for events without interaction.
func (b *Bot) safely(cog Cog, t *platform.InteractionTarget, fn func(ctx context.Context) error) {
	ctx, cancel := b.handlerContext()
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			b.log.Errorf("panic in cog %s: %v\n%s", cog.Name(), r, debug.Stack())
			b.report(ctx, cog, t, fmt.Errorf("panic: %v", r))
		}
	}()

	if err := fn(ctx); err != nil {
		b.report(ctx, cog, t, err)
	}
}

// Error reporter for command and event handlers.
//
// ValidationErrors are shown to the user as they are, everything else is
// logged and answered with a generic message.
func (b *Bot) report(ctx context.Context, cog Cog, t *platform.InteractionTarget, err error) {
	var verr *ValidationError
	isValidation := errors.As(err, &verr)

	if !isValidation {
		b.log.Errorf("cog %s: %v", cog.Name(), err)
	}

	if t == nil {
		return
	}

	content := genericFailure
	if isValidation {
		content = "❌ " + verr.Message
	}

	if _, rerr := t.Reply(ctx, b.client, content); rerr != nil {
		b.log.Warnf("Could not report error to user: %v", rerr)
	}
}

func (b *Bot) dispatchInteraction(it *discordgo.Interaction) {
	t := platform.NewInteractionTarget(it)

	for _, cog := range b.registered() {
		h, ok := cog.(InteractionHandler)
		if !ok {
			continue
		}

		handled := false
		b.safely(cog, t, func(ctx context.Context) error {
			var err error
			handled, err = h.HandleInteraction(ctx, t)
			if err != nil {
				handled = true
			}
			return err
		})

		// A panicking handler counts as handled.
		if handled || t.Responded() {
			return
		}
	}
}

func (b *Bot) dispatchMessage(m *discordgo.Message) {
	if m.Author == nil || m.Author.Bot {
		return
	}

	for _, cog := range b.registered() {
		if h, ok := cog.(MessageHandler); ok {
			b.safely(cog, nil, func(ctx context.Context) error {
				return h.HandleMessage(ctx, m)
			})
		}
	}
}

func (b *Bot) dispatchMemberRemove(guildID, userID string) {
	for _, cog := range b.registered() {
		if h, ok := cog.(MemberRemoveHandler); ok {
			b.safely(cog, nil, func(ctx context.Context) error {
				return h.HandleMemberRemove(ctx, guildID, userID)
			})
		}
	}
}

func (b *Bot) dispatchVoiceState(before, after *discordgo.VoiceState) {
	if after == nil {
		return
	}

	for _, cog := range b.registered() {
		if h, ok := cog.(VoiceStateHandler); ok {
			b.safely(cog, nil, func(ctx context.Context) error {
				return h.HandleVoiceState(ctx, before, after)
			})
		}
	}
}
