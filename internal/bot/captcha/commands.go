package captcha

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/devusSs/warden/internal/bot"
	"github.com/devusSs/warden/internal/bot/platform"
	"github.com/devusSs/warden/internal/bot/types"
)

type timeoutInput struct {
	Amount int `option:"amount" validate:"min=50,max=300"`
}

type triesInput struct {
	Amount int `option:"amount" validate:"min=2,max=10"`
}

type messageInput struct {
	Message string `option:"message" validate:"required,max=2000"`
}

type embedInput struct {
	Message string `option:"message" validate:"required,max=4000"`
}

func (c *Cog) Commands() []*discordgo.ApplicationCommand {
	dm := false
	return []*discordgo.ApplicationCommand{{
		Name:                     cogName,
		Description:              "Manage Captcha settings.",
		DefaultMemberPermissions: types.Administrator.DefaultMemberPermissions(),
		DMPermission:             &dm,
		Options: []*discordgo.ApplicationCommandOption{
			bot.SubcommandOption("deploy", "Deploy the verification message"),
			bot.SubcommandOption("toggle", "Enable or disable captcha verification",
				bot.BoolOption("enabled", "Omit to flip the current state", false)),
			bot.SubcommandOption("unverifiedrole", "Set the role assigned before captcha is completed.",
				bot.RoleOption("role", "Omit to clear", false)),
			bot.SubcommandOption("role", "Set the role granted after captcha is completed.",
				bot.RoleOption("role", "Omit to clear", false)),
			bot.SubcommandOption("timeout", "Set the timeout for captcha verification (50-300 seconds).",
				bot.IntOption("amount", "Seconds", true, 50, 300)),
			bot.SubcommandOption("tries", "Set the max attempts allowed for captcha verification (2-10).",
				bot.IntOption("amount", "Attempts", true, 2, 10)),
			bot.SubcommandOption("before", "Set the message shown before captcha.",
				bot.StringOption("message", "Supports {mention} {name} {username} {guild} {id}", true, 2000)),
			bot.SubcommandOption("after", "Set the message shown after captcha.",
				bot.StringOption("message", "Supports {mention} {name} {username} {guild} {id}", true, 2000)),
			bot.SubcommandOption("embed", "Set the text of the verification embed.",
				bot.StringOption("message", "Omit to reset to the default", false, 4000)),
			bot.SubcommandOption("settings", "View the current captcha configuration."),
			bot.SubcommandOption("channel", "Set the channel for captcha verification.",
				bot.ChannelOption("channel", "Omit to clear", false, discordgo.ChannelTypeGuildText)),
			bot.SubcommandOption("reset", "Reset all captcha settings to default."),
		},
	}}
}

func (c *Cog) command(ctx context.Context, t *platform.InteractionTarget, data discordgo.ApplicationCommandInteractionData) error {
	it := t.Interaction
	if it.GuildID == "" {
		return bot.Invalid("This command can only be used in a server.")
	}
	if !bot.HasLevel(it, types.Administrator) {
		return bot.Invalid("You are not allowed to use that command.")
	}

	name, opts := bot.Subcommand(data)
	g := c.store.Guild(it.GuildID)

	var reply string

	switch name {
	case "deploy":
		return c.deploy(ctx, t)

	case "toggle":
		cfg, err := c.config(ctx, it.GuildID)
		if err != nil {
			return err
		}
		enabled, ok := opts.Bool("enabled")
		if !ok {
			enabled = !cfg.Toggle
		}
		if err := g.Set(ctx, keyToggle, enabled); err != nil {
			return err
		}
		state := "disabled"
		if enabled {
			state = "enabled"
		}
		reply = fmt.Sprintf("Captcha verification is now %s.", state)
		c.changed(ctx, it, keyToggle)

	case "unverifiedrole", "role":
		key, label := keyRoleBefore, "unverified role"
		if name == "role" {
			key, label = keyRoleAfter, "captcha verification role"
		}
		roleID, ok := opts.ID("role")
		if !ok {
			if err := g.Clear(ctx, key); err != nil {
				return err
			}
			reply = fmt.Sprintf("Cleared the %s.", label)
		} else {
			if err := g.Set(ctx, key, roleID); err != nil {
				return err
			}
			reply = fmt.Sprintf("Configured the %s to <@&%s> (%s).", label, roleID, roleID)
		}
		c.changed(ctx, it, key)

	case "timeout":
		amount, _ := opts.Int("amount")
		if err := bot.Validate(timeoutInput{Amount: amount}); err != nil {
			return err
		}
		if err := g.Set(ctx, keyTimeout, amount); err != nil {
			return err
		}
		reply = fmt.Sprintf("Configured the timeout to %d seconds.", amount)
		c.changed(ctx, it, keyTimeout)

	case "tries":
		amount, _ := opts.Int("amount")
		if err := bot.Validate(triesInput{Amount: amount}); err != nil {
			return err
		}
		if err := g.Set(ctx, keyTries, amount); err != nil {
			return err
		}
		reply = fmt.Sprintf("Configured the number of attempts to %d.", amount)
		c.changed(ctx, it, keyTries)

	case "before", "after":
		key, label := keyMessageBefore, "before-captcha"
		if name == "after" {
			key, label = keyMessageAfter, "after-captcha"
		}
		message, _ := opts.String("message")
		if err := bot.Validate(messageInput{Message: message}); err != nil {
			return err
		}
		if err := g.Set(ctx, key, message); err != nil {
			return err
		}
		reply = fmt.Sprintf("✅ Updated %s message:\n```yaml\n%s\n```", label, message)
		c.changed(ctx, it, key)

	case "embed":
		return c.updateEmbed(ctx, t, opts)

	case "settings":
		return c.showSettings(ctx, t)

	case "channel":
		channelID, ok := opts.ID("channel")
		if !ok {
			if err := g.Clear(ctx, keyChannel); err != nil {
				return err
			}
			reply = "Cleared the captcha verification channel."
		} else {
			if err := g.Set(ctx, keyChannel, channelID); err != nil {
				return err
			}
			reply = fmt.Sprintf("Configured the captcha verification channel to <#%s> (%s).", channelID, channelID)
		}
		c.changed(ctx, it, keyChannel)

	case "reset":
		if err := g.ClearAll(ctx); err != nil {
			return err
		}
		reply = "Successfully reset all captcha settings to default."
		c.changed(ctx, it, "*")

	default:
		return bot.Invalid("Unknown subcommand %q.", name)
	}

	_, err := t.Reply(ctx, c.client, reply)
	return err
}

func (c *Cog) changed(ctx context.Context, it *discordgo.Interaction, key string) {
	issuer := ""
	if u := bot.InteractionUser(it); u != nil {
		issuer = u.ID
	}
	bot.RecordEvent(ctx, c.svc, c.log, it.GuildID, types.SettingChanged, types.SettingEvent{Issuer: issuer, Cog: cogName, Key: key})
}

func (c *Cog) embed(ctx context.Context, guildID, text string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Description: Format(text, nil, c.client.Self(), c.guildName(ctx, guildID)),
		Color:       embedColor,
	}
}

func verifyComponents() []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{Label: "Verify", Style: discordgo.SuccessButton, CustomID: verifyButtonID},
		}},
	}
}

// Posts the verify embed in the configured channel.
func (c *Cog) deploy(ctx context.Context, t *platform.InteractionTarget) error {
	guildID := t.Interaction.GuildID

	cfg, err := c.config(ctx, guildID)
	if err != nil {
		return err
	}
	if cfg.Channel == "" {
		return bot.Invalid("%s", msgNotConfigured)
	}

	ch, err := c.client.Channel(ctx, cfg.Channel)
	if err != nil && !platform.IsNotFound(err) {
		return err
	}
	if ch == nil || ch.Type != discordgo.ChannelTypeGuildText {
		return bot.Invalid("Invalid verification channel.")
	}

	msg, err := c.client.SendMessage(ctx, cfg.Channel, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{c.embed(ctx, guildID, cfg.EmbedText)},
		Components: verifyComponents(),
	})
	if err != nil {
		return fmt.Errorf("deploy verify message: %w", err)
	}

	raw, err := json.Marshal(deployedMessage{ChannelID: msg.ChannelID, MessageID: msg.ID})
	if err != nil {
		return err
	}
	if err := c.store.Guild(guildID).SetRaw(ctx, keyDeployed, raw); err != nil {
		return err
	}

	_, err = t.Reply(ctx, c.client, "Verification message deployed.")
	return err
}

// Stores the embed text and edits the deployed message to match.
func (c *Cog) updateEmbed(ctx context.Context, t *platform.InteractionTarget, opts bot.Options) error {
	it := t.Interaction
	g := c.store.Guild(it.GuildID)

	message, ok := opts.String("message")
	var reply string
	if !ok {
		if err := g.Clear(ctx, keyEmbedText); err != nil {
			return err
		}
		message = Defaults().EmbedText
		reply = "Cleared the embed message."
	} else {
		if err := bot.Validate(embedInput{Message: message}); err != nil {
			return err
		}
		if err := g.Set(ctx, keyEmbedText, message); err != nil {
			return err
		}
		reply = fmt.Sprintf("✅ Updated embed message:\n```yaml\n%s\n```", message)
	}
	c.changed(ctx, it, keyEmbedText)

	if _, err := t.Reply(ctx, c.client, reply); err != nil {
		return err
	}

	raw, ok, err := g.Raw(ctx, keyDeployed)
	if err != nil || !ok {
		return err
	}

	var deployed deployedMessage
	if err := json.Unmarshal(raw, &deployed); err != nil {
		return fmt.Errorf("decode deployed message: %w", err)
	}

	embeds := []*discordgo.MessageEmbed{c.embed(ctx, it.GuildID, message)}
	if _, err := c.client.EditMessage(ctx, &discordgo.MessageEdit{
		ID:      deployed.MessageID,
		Channel: deployed.ChannelID,
		Embeds:  &embeds,
	}); err != nil {
		_, rerr := t.Reply(ctx, c.client, fmt.Sprintf("Embed updated, but I couldn't edit the deployed message: `%v`", err))
		return rerr
	}

	return nil
}

func (c *Cog) showSettings(ctx context.Context, t *platform.InteractionTarget) error {
	cfg, err := c.config(ctx, t.Interaction.GuildID)
	if err != nil {
		return err
	}

	mention := func(format, id string) string {
		if id == "" {
			return "None"
		}
		return fmt.Sprintf(format+" (%s)", id, id)
	}

	embed := &discordgo.MessageEmbed{
		Title: "Captcha Settings",
		Description: fmt.Sprintf("**Toggle**: %t\n**Channel**: %s\n**Timeout**: %d\n**Tries**: %d\n**Unverified role**: %s\n**Role**: %s\n",
			cfg.Toggle,
			mention("<#%s>", cfg.Channel),
			cfg.Timeout,
			cfg.Tries,
			mention("<@&%s>", cfg.RoleBefore),
			mention("<@&%s>", cfg.RoleAfter),
		),
		Color: embedColor,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Before Captcha Message:", Value: codeBlock(cfg.MessageBefore)},
			{Name: "Embed Text:", Value: codeBlock(cfg.EmbedText)},
			{Name: "After Captcha Message:", Value: codeBlock(cfg.MessageAfter)},
		},
	}

	_, err = t.ReplyComplex(ctx, c.client, &discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{embed}})
	return err
}

func codeBlock(s string) string {
	return "```json\n" + s + "\n```"
}
