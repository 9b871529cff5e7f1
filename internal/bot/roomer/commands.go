package roomer

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/devusSs/warden/internal/bot"
	"github.com/devusSs/warden/internal/bot/platform"
	"github.com/devusSs/warden/internal/bot/types"
	"github.com/devusSs/warden/internal/utils"
)

type nameInput struct {
	Name string `option:"name" validate:"required,max=100"`
}

type limitInput struct {
	Limit int `option:"limit" validate:"min=0,max=99"`
}

type presetInput struct {
	Name   string `option:"name" validate:"required,max=32"`
	Title  string `option:"title" validate:"max=100"`
	Status string `option:"status" validate:"max=500"`
	Limit  int    `option:"limit" validate:"min=0,max=99"`
}

func (c *Cog) Commands() []*discordgo.ApplicationCommand {
	dm := false

	minLimit := float64(0)
	roomLimit := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        "amount",
		Description: "0 removes the limit, values above 99 are capped",
		Required:    true,
		MinValue:    &minLimit,
	}

	return []*discordgo.ApplicationCommand{
		{
			Name:         roomCommand,
			Description:  "Control your temporary voice room.",
			DMPermission: &dm,
			Options: []*discordgo.ApplicationCommandOption{
				bot.SubcommandOption(actionLock, "Lock the room for everyone"),
				bot.SubcommandOption(actionUnlock, "Unlock the room"),
				bot.SubcommandOption(actionHide, "Hide the room from everyone"),
				bot.SubcommandOption(actionShow, "Make the room visible again"),
				bot.SubcommandOption("permit", "Allow a member or role to join",
					bot.MentionableOption("target", "Member or role", true)),
				bot.SubcommandOption("forbid", "Keep a member or role out of the room",
					bot.MentionableOption("target", "Member or role", true)),
				bot.SubcommandOption(actionRename, "Rename the room",
					bot.StringOption("name", "New name", true, 100)),
				bot.SubcommandOption(actionStatus, "Set the status of the room",
					bot.StringOption("text", "Omit to clear", false, 500)),
				bot.SubcommandOption(actionLimit, "Set the user limit of the room", roomLimit),
				bot.SubcommandOption(actionReset, "Restore the room to its initial state"),
				bot.SubcommandOption(actionClaim, "Take over the room if its owner left"),
				bot.SubcommandOption("preset", "Apply a preset of this server",
					bot.StringOption("name", "Preset name", true, 32)),
			},
		},
		{
			Name:                     cogName,
			Description:              "Manage join-to-create voice channels.",
			DefaultMemberPermissions: types.Administrator.DefaultMemberPermissions(),
			DMPermission:             &dm,
			Options: []*discordgo.ApplicationCommandOption{
				bot.SubcommandOption("enable", "Enable automatic voice channel creation"),
				bot.SubcommandOption("disable", "Disable automatic voice channel creation"),
				bot.SubcommandOption("add", "Add a join-to-create channel",
					bot.ChannelOption("channel", "Voice channel", true, discordgo.ChannelTypeGuildVoice)),
				bot.SubcommandOption("remove", "Remove a join-to-create channel",
					bot.ChannelOption("channel", "Voice channel", true, discordgo.ChannelTypeGuildVoice)),
				bot.SubcommandOption("name", "Set the name of new rooms",
					bot.StringOption("name", "Room name", true, 100)),
				bot.SubcommandOption("limit", "Set the user limit of new rooms (0-99)",
					bot.IntOption("limit", "0 is unlimited", true, 0, 99)),
				bot.SubcommandOption("preset-add", "Add or replace a preset",
					bot.StringOption("name", "Preset name", true, 32),
					bot.StringOption("title", "Channel name", true, 100),
					bot.StringOption("status", "Channel status", false, 500),
					bot.IntOption("limit", "User limit, 0 is unlimited", false, 0, 99)),
				bot.SubcommandOption("preset-remove", "Remove a preset",
					bot.StringOption("name", "Preset name", true, 32)),
				bot.SubcommandOption("presets", "List the presets"),
				bot.SubcommandOption("settings", "View the current roomer configuration."),
			},
		},
	}
}

func (c *Cog) adminCommand(ctx context.Context, t *platform.InteractionTarget, data discordgo.ApplicationCommandInteractionData) error {
	it := t.Interaction
	if it.GuildID == "" {
		return bot.Invalid("This command can only be used in a server.")
	}
	if !bot.HasLevel(it, types.Administrator) {
		return bot.Invalid("You are not allowed to use that command.")
	}

	name, opts := bot.Subcommand(data)
	g := c.store.Guild(it.GuildID)

	cfg, err := c.config(ctx, it.GuildID)
	if err != nil {
		return err
	}

	var reply string

	switch name {
	case "enable", "disable":
		enabled := name == "enable"
		if err := g.Set(ctx, keyAutoEnabled, enabled); err != nil {
			return err
		}
		reply = fmt.Sprintf("Automatic voicechannel creation %sd.", name)
		c.changed(ctx, it, keyAutoEnabled)

	case "add":
		channelID, _ := opts.ID("channel")
		if utils.CheckStringSliceForDuplicates(cfg.AutoChannels, channelID) {
			reply = "That channel is already configured."
			break
		}
		if err := g.Set(ctx, keyAutoChannels, append(cfg.AutoChannels, channelID)); err != nil {
			return err
		}
		reply = fmt.Sprintf("Added <#%s> as a join-to-create channel.", channelID)
		c.changed(ctx, it, keyAutoChannels)

	case "remove":
		channelID, _ := opts.ID("channel")
		channels, ok := utils.RemoveString(cfg.AutoChannels, channelID)
		if !ok {
			reply = "That channel wasn't configured."
			break
		}
		if err := g.Set(ctx, keyAutoChannels, channels); err != nil {
			return err
		}
		reply = fmt.Sprintf("Removed <#%s> from the join-to-create channels.", channelID)
		c.changed(ctx, it, keyAutoChannels)

	case "name":
		roomName, _ := opts.String("name")
		if err := bot.Validate(nameInput{Name: roomName}); err != nil {
			return err
		}
		if err := g.Set(ctx, keyName, roomName); err != nil {
			return err
		}
		reply = fmt.Sprintf("New rooms will be named **%s**.", roomName)
		c.changed(ctx, it, keyName)

	case "limit":
		limit, _ := opts.Int("limit")
		if err := bot.Validate(limitInput{Limit: limit}); err != nil {
			return err
		}
		if err := g.Set(ctx, keyUserLimit, limit); err != nil {
			return err
		}
		reply = fmt.Sprintf("New rooms will have a user limit of %d.", limit)
		if limit == 0 {
			reply = "New rooms will have no user limit."
		}
		c.changed(ctx, it, keyUserLimit)

	case "preset-add":
		in := presetInput{}
		in.Name, _ = opts.String("name")
		in.Title, _ = opts.String("title")
		in.Status, _ = opts.String("status")
		in.Limit, _ = opts.Int("limit")
		in.Name = strings.ToLower(strings.TrimSpace(in.Name))
		if err := bot.Validate(in); err != nil {
			return err
		}
		cfg.Presets[in.Name] = Preset{Title: in.Title, Status: in.Status, Limit: in.Limit}
		if err := g.Set(ctx, keyPresets, cfg.Presets); err != nil {
			return err
		}
		reply = fmt.Sprintf("✅ Saved preset **%s**.", in.Name)
		c.changed(ctx, it, keyPresets)

	case "preset-remove":
		presetName, _ := opts.String("name")
		presetName = strings.ToLower(strings.TrimSpace(presetName))
		if _, ok := cfg.Presets[presetName]; !ok {
			return bot.Invalid("Unknown preset %q.", presetName)
		}
		delete(cfg.Presets, presetName)
		if err := g.Set(ctx, keyPresets, cfg.Presets); err != nil {
			return err
		}
		reply = fmt.Sprintf("Removed preset **%s**.", presetName)
		c.changed(ctx, it, keyPresets)

	case "presets":
		reply = listPresets(cfg.Presets)

	case "settings":
		return c.showSettings(ctx, t, cfg)

	default:
		return bot.Invalid("Unknown subcommand %q.", name)
	}

	_, err = t.Reply(ctx, c.client, reply)
	return err
}

func (c *Cog) changed(ctx context.Context, it *discordgo.Interaction, key string) {
	issuer := ""
	if u := bot.InteractionUser(it); u != nil {
		issuer = u.ID
	}
	bot.RecordEvent(ctx, c.svc, c.log, it.GuildID, types.SettingChanged, types.SettingEvent{Issuer: issuer, Cog: cogName, Key: key})
}

func listPresets(presets map[string]Preset) string {
	if len(presets) == 0 {
		return "No presets configured."
	}

	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("**Presets**\n")
	for _, name := range names {
		p := presets[name]
		fmt.Fprintf(&b, "• `%s`: %s, limit %d", name, p.Title, ClampLimit(p.Limit))
		if p.Status != "" {
			fmt.Fprintf(&b, ", status \"%s\"", utils.Truncate(p.Status, 50))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (c *Cog) showSettings(ctx context.Context, t *platform.InteractionTarget, cfg GuildConfig) error {
	channels := "None"
	if len(cfg.AutoChannels) > 0 {
		mentions := make([]string, 0, len(cfg.AutoChannels))
		for _, id := range cfg.AutoChannels {
			mentions = append(mentions, fmt.Sprintf("<#%s>", id))
		}
		channels = strings.Join(mentions, ", ")
	}

	limit := "unlimited"
	if cfg.UserLimit > 0 {
		limit = fmt.Sprint(cfg.UserLimit)
	}

	embed := &discordgo.MessageEmbed{
		Title: "Roomer Settings",
		Description: fmt.Sprintf("**Enabled**: %t\n**Join channels**: %s\n**Room name**: %s\n**User limit**: %s\n**Presets**: %d\n**Active rooms**: %d",
			cfg.AutoEnabled, channels, cfg.Name, limit, len(cfg.Presets), c.guildRooms(t.Interaction.GuildID)),
		Color: panelColor,
	}

	_, err := t.ReplyComplex(ctx, c.client, &discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{embed}})
	return err
}

func (c *Cog) guildRooms(guildID string) int {
	n := 0
	for _, room := range c.rooms.Rooms() {
		if room.GuildID == guildID {
			n++
		}
	}
	return n
}
