package roomer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devusSs/warden/internal/bot"
	"github.com/devusSs/warden/internal/bot/platform"
	"github.com/devusSs/warden/internal/bot/platform/platformtest"
	"github.com/devusSs/warden/internal/database/memory"
)

const (
	guildID  = "g"
	joinID   = "join"
	parentID = "category"
	modsRole = "mods"
)

type fixture struct {
	cog   *Cog
	fake  *platformtest.Fake
	clock *clock.Mock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	fake := platformtest.New()
	fake.AddChannel(&discordgo.Channel{
		ID:       joinID,
		GuildID:  guildID,
		Type:     discordgo.ChannelTypeGuildVoice,
		ParentID: parentID,
		PermissionOverwrites: []*discordgo.PermissionOverwrite{
			{ID: modsRole, Type: discordgo.PermissionOverwriteTypeRole, Allow: discordgo.PermissionViewChannel},
		},
	})

	mock := clock.NewMock()
	c, err := New(fake, memory.New(), Options{DeletionDelay: time.Minute, Clock: mock})
	require.NoError(t, err)
	t.Cleanup(c.Stop)

	ctx := context.Background()
	g := c.store.Guild(guildID)
	require.NoError(t, g.Set(ctx, keyAutoEnabled, true))
	require.NoError(t, g.Set(ctx, keyAutoChannels, []string{joinID}))

	return &fixture{cog: c, fake: fake, clock: mock}
}

func (f *fixture) move(t *testing.T, userID, from, to string) {
	t.Helper()
	var before *discordgo.VoiceState
	if from != "" {
		before = &discordgo.VoiceState{GuildID: guildID, UserID: userID, ChannelID: from}
	}
	after := &discordgo.VoiceState{GuildID: guildID, UserID: userID, ChannelID: to}
	require.NoError(t, f.cog.HandleVoiceState(context.Background(), before, after))
}

// Joins the join channel and returns the created room.
func (f *fixture) provision(t *testing.T, userID string) string {
	t.Helper()
	f.fake.SetVoice(joinID, userID)
	f.move(t, userID, "", joinID)

	var roomID string
	f.fake.Do(func(fk *platformtest.Fake) {
		require.NotEmpty(t, fk.Moves)
		roomID = fk.Moves[len(fk.Moves)-1].ChannelID
	})
	// gateway echo of the move
	f.move(t, userID, joinID, roomID)
	return roomID
}

func interaction(typ discordgo.InteractionType, userID string, data discordgo.InteractionData) *platform.InteractionTarget {
	return platform.NewInteractionTarget(&discordgo.Interaction{
		Type:    typ,
		GuildID: guildID,
		Member:  &discordgo.Member{User: &discordgo.User{ID: userID}},
		Data:    data,
	})
}

func (f *fixture) press(t *testing.T, userID, action, roomID string) (*platform.InteractionTarget, error) {
	t.Helper()
	target := interaction(discordgo.InteractionMessageComponent, userID,
		discordgo.MessageComponentInteractionData{CustomID: bot.CustomID(componentPrefix, action, roomID)})
	handled, err := f.cog.HandleInteraction(context.Background(), target)
	require.True(t, handled)
	return target, err
}

func (f *fixture) room(t *testing.T, userID, channelID, sub string, resolved *discordgo.ApplicationCommandInteractionDataResolved, opts ...*discordgo.ApplicationCommandInteractionDataOption) error {
	t.Helper()
	target := interaction(discordgo.InteractionApplicationCommand, userID, discordgo.ApplicationCommandInteractionData{
		Name:     roomCommand,
		Resolved: resolved,
		Options: []*discordgo.ApplicationCommandInteractionDataOption{{
			Name:    sub,
			Type:    discordgo.ApplicationCommandOptionSubCommand,
			Options: opts,
		}},
	})
	target.Interaction.ChannelID = channelID
	handled, err := f.cog.HandleInteraction(context.Background(), target)
	require.True(t, handled)
	return err
}

func (f *fixture) admin(t *testing.T, sub string, opts ...*discordgo.ApplicationCommandInteractionDataOption) (*platform.InteractionTarget, error) {
	t.Helper()
	target := platform.NewInteractionTarget(&discordgo.Interaction{
		Type:    discordgo.InteractionApplicationCommand,
		GuildID: guildID,
		Member:  &discordgo.Member{User: &discordgo.User{ID: "admin"}, Permissions: discordgo.PermissionAdministrator},
		Data: discordgo.ApplicationCommandInteractionData{
			Name: cogName,
			Options: []*discordgo.ApplicationCommandInteractionDataOption{{
				Name:    sub,
				Type:    discordgo.ApplicationCommandOptionSubCommand,
				Options: opts,
			}},
		},
	})
	handled, err := f.cog.HandleInteraction(context.Background(), target)
	require.True(t, handled)
	return target, err
}

func opt(name string, typ discordgo.ApplicationCommandOptionType, v interface{}) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: typ, Value: v}
}

func lastResponse(f *platformtest.Fake) string {
	if len(f.Responses) == 0 {
		return ""
	}
	return f.Responses[len(f.Responses)-1].Data.Content
}

func assertInvalid(t *testing.T, err error, msg string) {
	t.Helper()
	var verr *bot.ValidationError
	require.True(t, errors.As(err, &verr), "expected validation error, got %v", err)
	if msg != "" {
		assert.Equal(t, msg, verr.Message)
	}
}

func TestProvisionRoom(t *testing.T) {
	f := newFixture(t)
	roomID := f.provision(t, "u1")

	f.fake.Do(func(fk *platformtest.Fake) {
		require.Len(t, fk.Created, 1)
		created := fk.Created[0]
		assert.Equal(t, "Voice Room", created.Name)
		assert.Equal(t, discordgo.ChannelTypeGuildVoice, created.Type)
		assert.Equal(t, parentID, created.ParentID)
		assert.Equal(t, 0, created.UserLimit)
		require.Len(t, created.PermissionOverwrites, 2)
		assert.Equal(t, modsRole, created.PermissionOverwrites[0].ID)
		owner := created.PermissionOverwrites[1]
		assert.Equal(t, "u1", owner.ID)
		assert.Equal(t, int64(ownerAllow), owner.Allow)

		assert.Equal(t, []platformtest.Move{{UserID: "u1", ChannelID: roomID}}, fk.Moves)

		require.Len(t, fk.Sent, 1)
		assert.Equal(t, roomID, fk.Sent[0].ChannelID)
		require.Len(t, fk.Sent[0].Message.Embeds, 1)
		assert.Equal(t, "🔧 Voice Channel Controls", fk.Sent[0].Message.Embeds[0].Title)
		assert.Len(t, fk.Sent[0].Message.Components, 2)
	})

	owner, ok := f.cog.rooms.Owner(roomID)
	assert.True(t, ok)
	assert.Equal(t, "u1", owner)
	assert.False(t, f.cog.rooms.DeletionPending(roomID))
}

func TestProvisionIgnoresDisabledAndOtherChannels(t *testing.T) {
	f := newFixture(t)
	f.move(t, "u1", "", "elsewhere")

	require.NoError(t, f.cog.store.Guild(guildID).Set(context.Background(), keyAutoEnabled, false))
	f.move(t, "u1", "elsewhere", joinID)

	f.fake.Do(func(fk *platformtest.Fake) {
		assert.Empty(t, fk.Created)
	})
}

func TestProvisionClampsLimit(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.cog.store.Guild(guildID).Set(context.Background(), keyUserLimit, 150))

	f.provision(t, "u1")

	f.fake.Do(func(fk *platformtest.Fake) {
		require.Len(t, fk.Created, 1)
		assert.Equal(t, 99, fk.Created[0].UserLimit)
	})
}

func TestEmptyRoomIsDeleted(t *testing.T) {
	f := newFixture(t)
	roomID := f.provision(t, "u1")

	f.fake.SetVoice(roomID)
	f.move(t, "u1", roomID, "")
	assert.True(t, f.cog.rooms.DeletionPending(roomID))

	f.clock.Add(59 * time.Second)
	f.fake.Do(func(fk *platformtest.Fake) {
		assert.Empty(t, fk.Removed)
	})

	f.clock.Add(time.Second)
	require.Eventually(t, func() bool {
		var removed []string
		f.fake.Do(func(fk *platformtest.Fake) { removed = append(removed, fk.Removed...) })
		return len(removed) == 1 && removed[0] == roomID
	}, time.Second, time.Millisecond)

	require.Eventually(t, func() bool { return f.cog.rooms.Len() == 0 }, time.Second, time.Millisecond)
}

func TestRejoinCancelsDeletion(t *testing.T) {
	f := newFixture(t)
	roomID := f.provision(t, "u1")

	f.fake.SetVoice(roomID)
	f.move(t, "u1", roomID, "")
	require.True(t, f.cog.rooms.DeletionPending(roomID))

	f.clock.Add(30 * time.Second)
	f.fake.SetVoice(roomID, "u1")
	f.move(t, "u1", "", roomID)
	assert.False(t, f.cog.rooms.DeletionPending(roomID))

	f.clock.Add(time.Hour)
	f.fake.Do(func(fk *platformtest.Fake) {
		assert.Empty(t, fk.Removed)
	})
	assert.Equal(t, 1, f.cog.rooms.Len())
}

func TestDeletionRechecksMembers(t *testing.T) {
	f := newFixture(t)
	roomID := f.provision(t, "u1")

	f.fake.SetVoice(roomID)
	f.move(t, "u1", roomID, "")

	// joined without a voice state event reaching the cog
	f.fake.SetVoice(roomID, "u2")
	f.clock.Add(time.Minute)

	require.Eventually(t, func() bool { return !f.cog.rooms.DeletionPending(roomID) }, time.Second, time.Millisecond)
	f.fake.Do(func(fk *platformtest.Fake) {
		assert.Empty(t, fk.Removed)
	})
	assert.Equal(t, 1, f.cog.rooms.Len())
}

func TestClaim(t *testing.T) {
	f := newFixture(t)
	roomID := f.provision(t, "u1")
	f.fake.SetVoice(roomID, "u1", "u2")

	_, err := f.press(t, "u2", actionClaim, roomID)
	assertInvalid(t, err, "The owner is still in the room.")

	_, err = f.press(t, "u1", actionClaim, roomID)
	assertInvalid(t, err, "You already own this room.")

	f.fake.SetVoice(roomID, "u2")
	f.move(t, "u1", roomID, "")

	f.fake.Do(func(fk *platformtest.Fake) {
		require.Len(t, fk.Sent, 2)
		assert.Contains(t, fk.Sent[1].Message.Embeds[0].Description, "<@u1> left the room.")
	})
	assert.False(t, f.cog.rooms.DeletionPending(roomID))

	_, err = f.press(t, "u2", actionClaim, roomID)
	require.NoError(t, err)

	owner, _ := f.cog.rooms.Owner(roomID)
	assert.Equal(t, "u2", owner)
	assert.Nil(t, f.fake.Overwrite(roomID, "u1"))
	if ow := f.fake.Overwrite(roomID, "u2"); assert.NotNil(t, ow) {
		assert.Equal(t, int64(ownerAllow), ow.Allow)
	}
	f.fake.Do(func(fk *platformtest.Fake) {
		assert.Equal(t, "👑 You now own this room.", lastResponse(fk))
	})
}

func TestClaimRequiresPresence(t *testing.T) {
	f := newFixture(t)
	roomID := f.provision(t, "u1")
	f.fake.SetVoice(roomID)

	_, err := f.press(t, "u3", actionClaim, roomID)
	assertInvalid(t, err, "You need to be in the room to claim it.")
}

func TestLockAndUnlock(t *testing.T) {
	f := newFixture(t)
	roomID := f.provision(t, "u1")

	_, err := f.press(t, "u2", actionLock, roomID)
	assertInvalid(t, err, msgNotOwner)

	_, err = f.press(t, "u1", actionLock, roomID)
	require.NoError(t, err)

	ow := f.fake.Overwrite(roomID, guildID)
	require.NotNil(t, ow)
	assert.Equal(t, int64(discordgo.PermissionVoiceConnect), ow.Deny&discordgo.PermissionVoiceConnect)
	f.fake.Do(func(fk *platformtest.Fake) {
		assert.Equal(t, "🔒 Channel locked.", lastResponse(fk))
	})

	_, err = f.press(t, "u1", actionHide, roomID)
	require.NoError(t, err)
	_, err = f.press(t, "u1", actionUnlock, roomID)
	require.NoError(t, err)

	ow = f.fake.Overwrite(roomID, guildID)
	require.NotNil(t, ow)
	assert.Equal(t, int64(discordgo.PermissionViewChannel), ow.Deny)

	_, err = f.press(t, "u1", actionShow, roomID)
	require.NoError(t, err)
	assert.Nil(t, f.fake.Overwrite(roomID, guildID))
}

func TestAdministratorControlsAnyRoom(t *testing.T) {
	f := newFixture(t)
	roomID := f.provision(t, "u1")

	target := platform.NewInteractionTarget(&discordgo.Interaction{
		Type:    discordgo.InteractionMessageComponent,
		GuildID: guildID,
		Member:  &discordgo.Member{User: &discordgo.User{ID: "admin"}, Permissions: discordgo.PermissionAdministrator},
		Data:    discordgo.MessageComponentInteractionData{CustomID: bot.CustomID(componentPrefix, actionLock, roomID)},
	})
	handled, err := f.cog.HandleInteraction(context.Background(), target)
	assert.True(t, handled)
	require.NoError(t, err)
	assert.NotNil(t, f.fake.Overwrite(roomID, guildID))
}

func TestUnknownComponentsAreIgnored(t *testing.T) {
	f := newFixture(t)

	target := interaction(discordgo.InteractionMessageComponent, "u1",
		discordgo.MessageComponentInteractionData{CustomID: "captcha_verify"})
	handled, err := f.cog.HandleInteraction(context.Background(), target)
	assert.False(t, handled)
	assert.NoError(t, err)
}

func TestButtonOnDeletedRoom(t *testing.T) {
	f := newFixture(t)

	_, err := f.press(t, "u1", actionLock, "gone")
	assertInvalid(t, err, msgNotRoom)
}

func TestRenameAndLimitModals(t *testing.T) {
	f := newFixture(t)
	roomID := f.provision(t, "u1")

	target, err := f.press(t, "u1", actionRename, roomID)
	require.NoError(t, err)
	assert.True(t, target.Responded())
	f.fake.Do(func(fk *platformtest.Fake) {
		resp := fk.Responses[len(fk.Responses)-1]
		assert.Equal(t, discordgo.InteractionResponseModal, resp.Type)
		assert.Equal(t, bot.CustomID(componentPrefix, actionRename, roomID), resp.Data.CustomID)
	})

	submit := func(action, input, value string) error {
		target := interaction(discordgo.InteractionModalSubmit, "u1", discordgo.ModalSubmitInteractionData{
			CustomID: bot.CustomID(componentPrefix, action, roomID),
			Components: []discordgo.MessageComponent{
				&discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					&discordgo.TextInput{CustomID: input, Value: value},
				}},
			},
		})
		handled, err := f.cog.HandleInteraction(context.Background(), target)
		require.True(t, handled)
		return err
	}

	require.NoError(t, submit(actionRename, inputName, "  Chill  "))
	require.NoError(t, submit(actionLimit, inputLimit, "150"))
	assertInvalid(t, submit(actionLimit, inputLimit, "abc"), "Please enter a valid number.")
	require.NoError(t, submit(actionStatus, inputStatus, "vibing"))

	f.fake.Do(func(fk *platformtest.Fake) {
		require.Len(t, fk.ChannelEdit, 2)
		require.NotNil(t, fk.ChannelEdit[0].Edit.Name)
		assert.Equal(t, "Chill", *fk.ChannelEdit[0].Edit.Name)
		require.NotNil(t, fk.ChannelEdit[1].Edit.UserLimit)
		assert.Equal(t, 99, *fk.ChannelEdit[1].Edit.UserLimit)
		assert.Equal(t, "vibing", fk.Status[roomID])
		assert.Equal(t, "Chill", fk.Channels[roomID].Name)
	})
}

func TestPresetClampsLimit(t *testing.T) {
	f := newFixture(t)
	roomID := f.provision(t, "u1")

	require.NoError(t, f.cog.store.Guild(guildID).Set(context.Background(), keyPresets, map[string]Preset{
		"gaming": {Title: "Gaming", Status: "gg", Limit: 150},
	}))

	err := f.room(t, "u1", roomID, "preset", nil, opt("name", discordgo.ApplicationCommandOptionString, "Gaming"))
	require.NoError(t, err)

	f.fake.Do(func(fk *platformtest.Fake) {
		require.Len(t, fk.ChannelEdit, 1)
		edit := fk.ChannelEdit[0].Edit
		require.NotNil(t, edit.Name)
		require.NotNil(t, edit.UserLimit)
		assert.Equal(t, "Gaming", *edit.Name)
		assert.Equal(t, 99, *edit.UserLimit)
		assert.Equal(t, "gg", fk.Status[roomID])
	})

	err = f.room(t, "u1", roomID, "preset", nil, opt("name", discordgo.ApplicationCommandOptionString, "nope"))
	assertInvalid(t, err, `Unknown preset "nope".`)
}

func TestRoomCommandFindsCallersRoom(t *testing.T) {
	f := newFixture(t)
	roomID := f.provision(t, "u1")

	// sent from a text channel while connected to the room
	err := f.room(t, "u1", "text", actionLimit, nil, opt("amount", discordgo.ApplicationCommandOptionInteger, float64(4)))
	require.NoError(t, err)

	f.fake.Do(func(fk *platformtest.Fake) {
		require.Len(t, fk.ChannelEdit, 1)
		assert.Equal(t, roomID, fk.ChannelEdit[0].ChannelID)
	})

	err = f.room(t, "u9", "text", actionLock, nil)
	assertInvalid(t, err, msgNotInRoom)
}

func TestPermitAndForbid(t *testing.T) {
	f := newFixture(t)
	roomID := f.provision(t, "u1")
	f.fake.SetVoice(roomID, "u1", "u2")

	err := f.room(t, "u1", roomID, "forbid", nil, opt("target", discordgo.ApplicationCommandOptionMentionable, "u2"))
	require.NoError(t, err)

	ow := f.fake.Overwrite(roomID, "u2")
	require.NotNil(t, ow)
	assert.Equal(t, discordgo.PermissionOverwriteTypeMember, ow.Type)
	assert.Equal(t, int64(discordgo.PermissionVoiceConnect), ow.Deny)
	f.fake.Do(func(fk *platformtest.Fake) {
		assert.Equal(t, platformtest.Move{UserID: "u2", ChannelID: ""}, fk.Moves[len(fk.Moves)-1])
		assert.Equal(t, []string{"u1"}, fk.Voice[roomID])
	})

	err = f.room(t, "u1", roomID, "forbid", nil, opt("target", discordgo.ApplicationCommandOptionMentionable, "u1"))
	assertInvalid(t, err, "You cannot forbid the owner of the room.")

	resolved := &discordgo.ApplicationCommandInteractionDataResolved{
		Roles: map[string]*discordgo.Role{"friends": {ID: "friends"}},
	}
	err = f.room(t, "u1", roomID, "permit", resolved, opt("target", discordgo.ApplicationCommandOptionMentionable, "friends"))
	require.NoError(t, err)

	ow = f.fake.Overwrite(roomID, "friends")
	require.NotNil(t, ow)
	assert.Equal(t, discordgo.PermissionOverwriteTypeRole, ow.Type)
	assert.Equal(t, int64(ownerAllow), ow.Allow)
	f.fake.Do(func(fk *platformtest.Fake) {
		assert.Equal(t, "✅ <@&friends> may now join.", lastResponse(fk))
	})
}

func TestReset(t *testing.T) {
	f := newFixture(t)
	roomID := f.provision(t, "u1")

	_, err := f.press(t, "u1", actionLock, roomID)
	require.NoError(t, err)
	require.NoError(t, f.room(t, "u1", roomID, "permit", nil, opt("target", discordgo.ApplicationCommandOptionMentionable, "u3")))
	require.NoError(t, f.room(t, "u1", roomID, actionRename, nil, opt("name", discordgo.ApplicationCommandOptionString, "Mine")))

	_, err = f.press(t, "u1", actionReset, roomID)
	require.NoError(t, err)

	assert.Nil(t, f.fake.Overwrite(roomID, guildID))
	assert.Nil(t, f.fake.Overwrite(roomID, "u3"))
	assert.NotNil(t, f.fake.Overwrite(roomID, modsRole))
	assert.NotNil(t, f.fake.Overwrite(roomID, "u1"))

	f.fake.Do(func(fk *platformtest.Fake) {
		assert.Equal(t, "Voice Room", fk.Channels[roomID].Name)
		assert.Equal(t, "", fk.Status[roomID])
	})
}

func TestAdminCommands(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.admin(t, "add", opt("channel", discordgo.ApplicationCommandOptionChannel, "other"))
	require.NoError(t, err)
	_, err = f.admin(t, "add", opt("channel", discordgo.ApplicationCommandOptionChannel, "other"))
	require.NoError(t, err)
	f.fake.Do(func(fk *platformtest.Fake) {
		assert.Equal(t, "That channel is already configured.", lastResponse(fk))
	})

	_, err = f.admin(t, "remove", opt("channel", discordgo.ApplicationCommandOptionChannel, joinID))
	require.NoError(t, err)
	_, err = f.admin(t, "remove", opt("channel", discordgo.ApplicationCommandOptionChannel, joinID))
	require.NoError(t, err)
	f.fake.Do(func(fk *platformtest.Fake) {
		assert.Equal(t, "That channel wasn't configured.", lastResponse(fk))
	})

	_, err = f.admin(t, "disable")
	require.NoError(t, err)
	_, err = f.admin(t, "enable")
	require.NoError(t, err)
	f.fake.Do(func(fk *platformtest.Fake) {
		assert.Equal(t, "Automatic voicechannel creation enabled.", lastResponse(fk))
	})

	_, err = f.admin(t, "limit", opt("limit", discordgo.ApplicationCommandOptionInteger, float64(150)))
	assertInvalid(t, err, "")
	_, err = f.admin(t, "limit", opt("limit", discordgo.ApplicationCommandOptionInteger, float64(5)))
	require.NoError(t, err)

	_, err = f.admin(t, "preset-add",
		opt("name", discordgo.ApplicationCommandOptionString, "Study"),
		opt("title", discordgo.ApplicationCommandOptionString, "Study Room"),
		opt("limit", discordgo.ApplicationCommandOptionInteger, float64(4)))
	require.NoError(t, err)

	cfg, err := f.cog.config(ctx, guildID)
	require.NoError(t, err)
	assert.True(t, cfg.AutoEnabled)
	assert.Equal(t, []string{"other"}, cfg.AutoChannels)
	assert.Equal(t, 5, cfg.UserLimit)
	assert.Equal(t, Preset{Title: "Study Room", Limit: 4}, cfg.Presets["study"])

	_, err = f.admin(t, "presets")
	require.NoError(t, err)
	f.fake.Do(func(fk *platformtest.Fake) {
		assert.Contains(t, lastResponse(fk), "`study`: Study Room, limit 4")
	})

	_, err = f.admin(t, "preset-remove", opt("name", discordgo.ApplicationCommandOptionString, "study"))
	require.NoError(t, err)
	_, err = f.admin(t, "preset-remove", opt("name", discordgo.ApplicationCommandOptionString, "study"))
	assertInvalid(t, err, "")

	_, err = f.admin(t, "settings")
	require.NoError(t, err)
	f.fake.Do(func(fk *platformtest.Fake) {
		resp := fk.Responses[len(fk.Responses)-1]
		require.Len(t, resp.Data.Embeds, 1)
		assert.Contains(t, resp.Data.Embeds[0].Description, "<#other>")
	})
}

func TestAdminCommandsRequireAdministrator(t *testing.T) {
	f := newFixture(t)

	target := interaction(discordgo.InteractionApplicationCommand, "u1", discordgo.ApplicationCommandInteractionData{
		Name:    cogName,
		Options: []*discordgo.ApplicationCommandInteractionDataOption{{Name: "enable", Type: discordgo.ApplicationCommandOptionSubCommand}},
	})
	handled, err := f.cog.HandleInteraction(context.Background(), target)
	assert.True(t, handled)
	assertInvalid(t, err, "You are not allowed to use that command.")
}

func TestCommands(t *testing.T) {
	f := newFixture(t)

	cmds := f.cog.Commands()
	require.Len(t, cmds, 2)
	assert.Equal(t, roomCommand, cmds[0].Name)
	assert.Nil(t, cmds[0].DefaultMemberPermissions)
	assert.Equal(t, cogName, cmds[1].Name)
	assert.NotNil(t, cmds[1].DefaultMemberPermissions)
}
