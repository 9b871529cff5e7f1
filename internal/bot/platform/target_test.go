package platform_test

import (
	"context"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devusSs/warden/internal/bot/platform"
	"github.com/devusSs/warden/internal/bot/platform/platformtest"
)

func TestInteractionTargetRespondsOnceThenFollowsUp(t *testing.T) {
	ctx := context.Background()
	fake := platformtest.New()
	target := platform.NewInteractionTarget(&discordgo.Interaction{ID: "1", ChannelID: "c"})

	_, err := target.Reply(ctx, fake, "first")
	require.NoError(t, err)
	assert.True(t, target.Responded())

	msg, err := target.Reply(ctx, fake, "second")
	require.NoError(t, err)
	assert.NotNil(t, msg)

	fake.Do(func(f *platformtest.Fake) {
		require.Len(t, f.Responses, 1)
		assert.Equal(t, "first", f.Responses[0].Data.Content)
		assert.Equal(t, discordgo.MessageFlagsEphemeral, f.Responses[0].Data.Flags)
		require.Len(t, f.Followups, 1)
		assert.Equal(t, "second", f.Followups[0].Content)
	})
}

func TestInteractionTargetDefer(t *testing.T) {
	ctx := context.Background()
	fake := platformtest.New()
	target := platform.NewInteractionTarget(&discordgo.Interaction{ID: "1"})

	require.NoError(t, target.Defer(ctx, fake))
	require.NoError(t, target.Defer(ctx, fake))
	_, err := target.Reply(ctx, fake, "done")
	require.NoError(t, err)

	fake.Do(func(f *platformtest.Fake) {
		require.Len(t, f.Responses, 1)
		assert.Equal(t, discordgo.InteractionResponseDeferredChannelMessageWithSource, f.Responses[0].Type)
		assert.Len(t, f.Followups, 1)
	})
}

func TestChannelTargetSendsMessage(t *testing.T) {
	fake := platformtest.New()
	var target platform.ResponseTarget = platform.ChannelTarget{ChannelID: "chan"}

	msg, err := target.Reply(context.Background(), fake, "hi")
	require.NoError(t, err)
	assert.Equal(t, "chan", msg.ChannelID)

	fake.Do(func(f *platformtest.Fake) {
		require.Len(t, f.Sent, 1)
		assert.Equal(t, "hi", f.Sent[0].Message.Content)
	})
}

func TestInteractionTargetModalMustComeFirst(t *testing.T) {
	ctx := context.Background()
	fake := platformtest.New()

	target := platform.NewInteractionTarget(&discordgo.Interaction{ID: "1"})
	require.NoError(t, target.Modal(ctx, fake, &discordgo.InteractionResponseData{CustomID: "modal", Title: "Modal"}))
	assert.True(t, target.Responded())

	late := platform.NewInteractionTarget(&discordgo.Interaction{ID: "2"})
	require.NoError(t, late.Defer(ctx, fake))
	assert.Error(t, late.Modal(ctx, fake, &discordgo.InteractionResponseData{CustomID: "modal"}))

	fake.Do(func(f *platformtest.Fake) {
		require.Len(t, f.Responses, 2)
		assert.Equal(t, discordgo.InteractionResponseModal, f.Responses[0].Type)
	})
}
