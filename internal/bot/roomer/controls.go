package roomer

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/devusSs/warden/internal/bot"
	"github.com/devusSs/warden/internal/bot/platform"
	"github.com/devusSs/warden/internal/bot/types"
	"github.com/devusSs/warden/internal/utils"
)

const (
	actionLock   = "lock"
	actionUnlock = "unlock"
	actionHide   = "hide"
	actionShow   = "show"
	actionRename = "rename"
	actionLimit  = "limit"
	actionStatus = "status"
	actionClaim  = "claim"
	actionReset  = "reset"

	inputName   = "name"
	inputLimit  = "limit"
	inputStatus = "status"

	msgNotRoom   = "This is not a temporary voice room."
	msgNotOwner  = "Only the owner of this room can do that."
	msgNotInRoom = "Join a temporary voice room first."
)

type renameInput struct {
	Name string `option:"name" validate:"required,max=100"`
}

type statusInput struct {
	Status string `option:"status" validate:"max=500"`
}

// Room the interaction refers to. Components carry the channel in their
// custom id, commands use the channel they were sent in or the caller's
// current room.
func (c *Cog) lookup(it *discordgo.Interaction, channelID string) (Room, error) {
	if channelID != "" {
		room, ok := c.rooms.Get(channelID)
		if !ok {
			return Room{}, bot.Invalid(msgNotRoom)
		}
		return room, nil
	}

	if room, ok := c.rooms.Get(it.ChannelID); ok {
		return room, nil
	}

	if user := bot.InteractionUser(it); user != nil {
		for _, room := range c.rooms.Rooms() {
			if room.GuildID == it.GuildID && utils.CheckStringSliceForDuplicates(c.client.VoiceMembers(room.GuildID, room.ChannelID), user.ID) {
				return room, nil
			}
		}
	}
	return Room{}, bot.Invalid(msgNotInRoom)
}

// Like lookup but only the owner or an administrator passes.
func (c *Cog) owned(it *discordgo.Interaction, channelID string) (Room, error) {
	room, err := c.lookup(it, channelID)
	if err != nil {
		return Room{}, err
	}

	user := bot.InteractionUser(it)
	if user == nil || (room.OwnerID != user.ID && !bot.HasLevel(it, types.Administrator)) {
		return Room{}, bot.Invalid(msgNotOwner)
	}
	return room, nil
}

func (c *Cog) button(ctx context.Context, t *platform.InteractionTarget, action, channelID string) error {
	it := t.Interaction

	if action == actionClaim {
		room, err := c.lookup(it, channelID)
		if err != nil {
			return err
		}
		return c.claim(ctx, t, room)
	}

	room, err := c.owned(it, channelID)
	if err != nil {
		return err
	}

	switch action {
	case actionLock, actionUnlock, actionHide, actionShow, actionReset:
		return c.apply(ctx, t, room, action)
	case actionRename:
		return t.Modal(ctx, c.client, textModal(room.ChannelID, actionRename, "Rename Voice Channel", discordgo.TextInput{
			CustomID:    inputName,
			Label:       "New Channel Name",
			Style:       discordgo.TextInputShort,
			Placeholder: "Enter name...",
			MaxLength:   100,
			Required:    true,
		}))
	case actionLimit:
		return t.Modal(ctx, c.client, textModal(room.ChannelID, actionLimit, "Set User Limit", discordgo.TextInput{
			CustomID:    inputLimit,
			Label:       "User Limit (0 or empty for unlimited)",
			Style:       discordgo.TextInputShort,
			Placeholder: "e.g. 5",
			MaxLength:   3,
		}))
	case actionStatus:
		return t.Modal(ctx, c.client, textModal(room.ChannelID, actionStatus, "Set Channel Status", discordgo.TextInput{
			CustomID:    inputStatus,
			Label:       "Status (empty clears it)",
			Style:       discordgo.TextInputParagraph,
			Placeholder: "What's happening in here?",
			MaxLength:   500,
		}))
	default:
		return bot.Invalid("Unknown control %q.", action)
	}
}

func textModal(channelID, action, title string, input discordgo.TextInput) *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		CustomID: bot.CustomID(componentPrefix, action, channelID),
		Title:    title,
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{input}},
		},
	}
}

func (c *Cog) modal(ctx context.Context, t *platform.InteractionTarget, action, channelID string, values map[string]string) error {
	room, err := c.owned(t.Interaction, channelID)
	if err != nil {
		return err
	}

	switch action {
	case actionRename:
		return c.rename(ctx, t, room, values[inputName])
	case actionLimit:
		raw := values[inputLimit]
		if raw == "" {
			return c.limit(ctx, t, room, 0)
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return bot.Invalid("Please enter a valid number.")
		}
		return c.limit(ctx, t, room, n)
	case actionStatus:
		return c.status(ctx, t, room, values[inputStatus])
	default:
		return bot.Invalid("Unknown control %q.", action)
	}
}

// Applies one of the permission toggles or resets the room.
func (c *Cog) apply(ctx context.Context, t *platform.InteractionTarget, room Room, action string) error {
	var (
		err   error
		reply string
	)

	switch action {
	case actionLock:
		err = c.setEveryone(ctx, room, discordgo.PermissionVoiceConnect, true)
		reply = "🔒 Channel locked."
	case actionUnlock:
		err = c.setEveryone(ctx, room, discordgo.PermissionVoiceConnect, false)
		reply = "🔓 Channel unlocked."
	case actionHide:
		err = c.setEveryone(ctx, room, discordgo.PermissionViewChannel, true)
		reply = "🙈 Channel hidden."
	case actionShow:
		err = c.setEveryone(ctx, room, discordgo.PermissionViewChannel, false)
		reply = "👀 Channel visible."
	case actionReset:
		err = c.reset(ctx, room)
		reply = "♻️ Room reset."
	}
	if err != nil {
		return err
	}

	_, err = t.Reply(ctx, c.client, reply)
	return err
}

func (c *Cog) overwrite(ctx context.Context, channelID, targetID string) (*discordgo.PermissionOverwrite, error) {
	ch, err := c.client.Channel(ctx, channelID)
	if err != nil {
		return nil, err
	}
	for _, ow := range ch.PermissionOverwrites {
		if ow.ID == targetID {
			cp := *ow
			return &cp, nil
		}
	}
	return nil, nil
}

// Denies or clears perm on the @everyone overwrite, other bits are kept.
func (c *Cog) setEveryone(ctx context.Context, room Room, perm int64, deny bool) error {
	ow, err := c.overwrite(ctx, room.ChannelID, room.GuildID)
	if err != nil {
		return err
	}
	if ow == nil {
		ow = &discordgo.PermissionOverwrite{ID: room.GuildID, Type: discordgo.PermissionOverwriteTypeRole}
	}

	if deny {
		ow.Deny |= perm
		ow.Allow &^= perm
	} else {
		ow.Deny &^= perm
	}

	if ow.Allow == 0 && ow.Deny == 0 {
		err := c.client.DeleteOverwrite(ctx, room.ChannelID, room.GuildID, "Room control")
		if platform.IsNotFound(err) {
			return nil
		}
		return err
	}
	return c.client.SetOverwrite(ctx, room.ChannelID, ow, "Room control")
}

// Lets target connect to and see the room.
func (c *Cog) permit(ctx context.Context, room Room, targetID string, typ discordgo.PermissionOverwriteType) error {
	ow, err := c.overwrite(ctx, room.ChannelID, targetID)
	if err != nil {
		return err
	}
	if ow == nil {
		ow = &discordgo.PermissionOverwrite{ID: targetID, Type: typ}
	}
	ow.Allow |= ownerAllow
	ow.Deny &^= ownerAllow

	return c.client.SetOverwrite(ctx, room.ChannelID, ow, "Room permit")
}

// Keeps target out of the room and disconnects them if they are inside.
func (c *Cog) forbid(ctx context.Context, room Room, targetID string, typ discordgo.PermissionOverwriteType) error {
	ow, err := c.overwrite(ctx, room.ChannelID, targetID)
	if err != nil {
		return err
	}
	if ow == nil {
		ow = &discordgo.PermissionOverwrite{ID: targetID, Type: typ}
	}
	ow.Deny |= discordgo.PermissionVoiceConnect
	ow.Allow &^= discordgo.PermissionVoiceConnect

	if err := c.client.SetOverwrite(ctx, room.ChannelID, ow, "Room forbid"); err != nil {
		return err
	}

	if typ == discordgo.PermissionOverwriteTypeMember &&
		utils.CheckStringSliceForDuplicates(c.client.VoiceMembers(room.GuildID, room.ChannelID), targetID) {
		bot.BestEffort(c.log, "disconnect forbidden member", c.client.MoveMember(ctx, room.GuildID, targetID, ""))
	}
	return nil
}

// Restores the overwrites the room was created with and the guild defaults.
func (c *Cog) reset(ctx context.Context, room Room) error {
	ch, err := c.client.Channel(ctx, room.ChannelID)
	if err != nil {
		return err
	}

	keep := map[string]bool{room.OwnerID: true}
	for _, ow := range room.Template {
		keep[ow.ID] = true
	}

	for _, ow := range ch.PermissionOverwrites {
		if keep[ow.ID] {
			continue
		}
		bot.BestEffort(c.log, "remove room overwrite", c.client.DeleteOverwrite(ctx, room.ChannelID, ow.ID, "Room reset"))
	}
	for _, ow := range room.Template {
		if err := c.client.SetOverwrite(ctx, room.ChannelID, ow, "Room reset"); err != nil {
			return err
		}
	}
	if err := c.client.SetOverwrite(ctx, room.ChannelID, &discordgo.PermissionOverwrite{
		ID:    room.OwnerID,
		Type:  discordgo.PermissionOverwriteTypeMember,
		Allow: ownerAllow,
	}, "Room reset"); err != nil {
		return err
	}

	cfg, err := c.config(ctx, room.GuildID)
	if err != nil {
		return err
	}
	limit := ClampLimit(cfg.UserLimit)
	if err := c.client.EditChannel(ctx, room.ChannelID, platform.ChannelEdit{Name: &cfg.Name, UserLimit: &limit}, "Room reset"); err != nil {
		return err
	}
	bot.BestEffort(c.log, "clear room status", c.client.SetVoiceStatus(ctx, room.ChannelID, ""))

	return nil
}

func (c *Cog) rename(ctx context.Context, t *platform.InteractionTarget, room Room, name string) error {
	if err := bot.Validate(renameInput{Name: name}); err != nil {
		return err
	}
	if err := c.client.EditChannel(ctx, room.ChannelID, platform.ChannelEdit{Name: &name}, "Room rename"); err != nil {
		return err
	}
	_, err := t.Reply(ctx, c.client, fmt.Sprintf("✅ Renamed channel to **%s**.", name))
	return err
}

func (c *Cog) limit(ctx context.Context, t *platform.InteractionTarget, room Room, n int) error {
	n = ClampLimit(n)
	if err := c.client.EditChannel(ctx, room.ChannelID, platform.ChannelEdit{UserLimit: &n}, "Room limit"); err != nil {
		return err
	}

	reply := fmt.Sprintf("👥 User limit set to %d.", n)
	if n == 0 {
		reply = "👥 User limit removed."
	}
	_, err := t.Reply(ctx, c.client, reply)
	return err
}

func (c *Cog) status(ctx context.Context, t *platform.InteractionTarget, room Room, text string) error {
	if err := bot.Validate(statusInput{Status: text}); err != nil {
		return err
	}
	if err := c.client.SetVoiceStatus(ctx, room.ChannelID, text); err != nil {
		return err
	}

	reply := "📝 Status updated."
	if text == "" {
		reply = "📝 Status cleared."
	}
	_, err := t.Reply(ctx, c.client, reply)
	return err
}

// Hands the room to the caller if its owner is gone.
func (c *Cog) claim(ctx context.Context, t *platform.InteractionTarget, room Room) error {
	user := bot.InteractionUser(t.Interaction)
	if user == nil {
		return nil
	}

	members := c.client.VoiceMembers(room.GuildID, room.ChannelID)
	if !utils.CheckStringSliceForDuplicates(members, user.ID) {
		return bot.Invalid("You need to be in the room to claim it.")
	}

	previous, err := c.rooms.Claim(room.ChannelID, user.ID, func(ownerID string) bool {
		return utils.CheckStringSliceForDuplicates(members, ownerID)
	})
	switch {
	case errors.Is(err, ErrNotRoom):
		return bot.Invalid(msgNotRoom)
	case errors.Is(err, ErrAlreadyOwner):
		return bot.Invalid("You already own this room.")
	case errors.Is(err, ErrOwnerPresent):
		return bot.Invalid("The owner is still in the room.")
	case err != nil:
		return err
	}

	bot.BestEffort(c.log, "remove previous owner overwrite", c.client.DeleteOverwrite(ctx, room.ChannelID, previous, "Room claimed"))
	if err := c.client.SetOverwrite(ctx, room.ChannelID, &discordgo.PermissionOverwrite{
		ID:    user.ID,
		Type:  discordgo.PermissionOverwriteTypeMember,
		Allow: ownerAllow,
	}, "Room claimed"); err != nil {
		return err
	}

	c.metrics.RoomClaims.Inc()
	bot.RecordEvent(ctx, c.svc, c.log, room.GuildID, types.RoomClaimed, types.RoomEvent{ChannelID: room.ChannelID, OwnerID: user.ID, Detail: previous})
	c.log.Infof("User %s claimed room %s from %s", user.ID, room.ChannelID, previous)

	_, err = t.Reply(ctx, c.client, "👑 You now own this room.")
	return err
}

// Renames the room, sets its status and limit in one go.
func (c *Cog) preset(ctx context.Context, t *platform.InteractionTarget, room Room, name string) error {
	cfg, err := c.config(ctx, room.GuildID)
	if err != nil {
		return err
	}
	name = strings.ToLower(strings.TrimSpace(name))
	p, ok := cfg.Presets[name]
	if !ok {
		return bot.Invalid("Unknown preset %q.", name)
	}

	limit := ClampLimit(p.Limit)
	edit := platform.ChannelEdit{UserLimit: &limit}
	if p.Title != "" {
		edit.Name = &p.Title
	}
	if err := c.client.EditChannel(ctx, room.ChannelID, edit, "Room preset"); err != nil {
		return err
	}
	bot.BestEffort(c.log, "set preset status", c.client.SetVoiceStatus(ctx, room.ChannelID, p.Status))

	bot.RecordEvent(ctx, c.svc, c.log, room.GuildID, types.RoomPreset, types.RoomEvent{ChannelID: room.ChannelID, OwnerID: room.OwnerID, Detail: name})

	_, err = t.Reply(ctx, c.client, fmt.Sprintf("✅ Applied preset **%s**.", name))
	return err
}

func (c *Cog) roomCommand(ctx context.Context, t *platform.InteractionTarget, data discordgo.ApplicationCommandInteractionData) error {
	it := t.Interaction
	if it.GuildID == "" {
		return bot.Invalid("This command can only be used in a server.")
	}

	name, opts := bot.Subcommand(data)

	if name == actionClaim {
		room, err := c.lookup(it, "")
		if err != nil {
			return err
		}
		return c.claim(ctx, t, room)
	}

	room, err := c.owned(it, "")
	if err != nil {
		return err
	}

	switch name {
	case actionLock, actionUnlock, actionHide, actionShow, actionReset:
		return c.apply(ctx, t, room, name)

	case "permit", "forbid":
		targetID, _ := opts.ID("target")
		typ := discordgo.PermissionOverwriteTypeMember
		if data.Resolved != nil && data.Resolved.Roles[targetID] != nil {
			typ = discordgo.PermissionOverwriteTypeRole
		}

		if name == "permit" {
			if err := c.permit(ctx, room, targetID, typ); err != nil {
				return err
			}
			_, err := t.Reply(ctx, c.client, fmt.Sprintf("✅ %s may now join.", mention(targetID, typ)))
			return err
		}

		if targetID == room.OwnerID {
			return bot.Invalid("You cannot forbid the owner of the room.")
		}
		if err := c.forbid(ctx, room, targetID, typ); err != nil {
			return err
		}
		_, err := t.Reply(ctx, c.client, fmt.Sprintf("⛔ %s may no longer join.", mention(targetID, typ)))
		return err

	case actionRename:
		newName, _ := opts.String("name")
		return c.rename(ctx, t, room, newName)

	case actionStatus:
		text, _ := opts.String("text")
		return c.status(ctx, t, room, text)

	case actionLimit:
		n, _ := opts.Int("amount")
		return c.limit(ctx, t, room, n)

	case "preset":
		preset, _ := opts.String("name")
		return c.preset(ctx, t, room, preset)

	default:
		return bot.Invalid("Unknown subcommand %q.", name)
	}
}

func mention(id string, typ discordgo.PermissionOverwriteType) string {
	if typ == discordgo.PermissionOverwriteTypeRole {
		return fmt.Sprintf("<@&%s>", id)
	}
	return fmt.Sprintf("<@%s>", id)
}
