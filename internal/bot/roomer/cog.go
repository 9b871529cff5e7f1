// Package roomer provides join-to-create voice rooms.
//
// Joining one of the configured join channels creates a temporary voice
// channel owned by the member. Owners control their room through the panel
// posted in its chat or the /room command. Empty rooms are deleted after a
// short delay.
package roomer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/bwmarrin/discordgo"

	"github.com/devusSs/warden/internal/bot"
	"github.com/devusSs/warden/internal/bot/platform"
	"github.com/devusSs/warden/internal/bot/types"
	"github.com/devusSs/warden/internal/database"
	"github.com/devusSs/warden/internal/logging"
	"github.com/devusSs/warden/internal/settings"
	"github.com/devusSs/warden/internal/telemetry"
	"github.com/devusSs/warden/internal/utils"
)

const (
	cogName    = "roomer"
	cogVersion = "1.0.0"

	// Prefix of every component and modal custom id.
	componentPrefix = "roomer"
	roomCommand     = "room"

	panelColor = 0x5865F2

	defaultDeletionDelay = 60 * time.Second
	timerTimeout         = 30 * time.Second

	createReason = "Auto voice channel creation"
	deleteReason = "Temporary voice channel is empty"
)

// Granted to the owner on their room.
const ownerAllow = discordgo.PermissionVoiceConnect | discordgo.PermissionViewChannel

type Options struct {
	DeletionDelay time.Duration

	// Optional, real implementations are used if nil.
	Clock   clock.Clock
	Metrics *telemetry.Metrics
}

type Cog struct {
	client  platform.Client
	svc     database.Service
	store   *settings.Store
	metrics *telemetry.Metrics
	log     *logging.Logger
	clock   clock.Clock

	deletionDelay time.Duration

	rooms *Store

	ctxMu sync.RWMutex
	ctx   context.Context
}

func New(client platform.Client, svc database.Service, opts Options) (*Cog, error) {
	store, err := settings.New(svc, cogName, Defaults())
	if err != nil {
		return nil, err
	}

	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Metrics == nil {
		opts.Metrics = telemetry.Noop()
	}
	if opts.DeletionDelay <= 0 {
		opts.DeletionDelay = defaultDeletionDelay
	}

	return &Cog{
		client:        client,
		svc:           svc,
		store:         store,
		metrics:       opts.Metrics,
		log:           logging.For(cogName),
		clock:         opts.Clock,
		deletionDelay: opts.DeletionDelay,
		rooms:         NewStore(opts.Clock),
		ctx:           context.Background(),
	}, nil
}

func (c *Cog) Name() string                { return cogName }
func (c *Cog) Version() string             { return cogVersion }
func (c *Cog) MinFrameworkVersion() string { return "1.2.0" }

func (c *Cog) Start(ctx context.Context) error {
	c.ctxMu.Lock()
	c.ctx = ctx
	c.ctxMu.Unlock()

	return c.store.Warm(ctx)
}

// Rooms left behind stay until someone deletes them by hand.
func (c *Cog) Stop() {
	c.rooms.Stop()
}

func (c *Cog) timerContext() (context.Context, context.CancelFunc) {
	c.ctxMu.RLock()
	defer c.ctxMu.RUnlock()
	return context.WithTimeout(c.ctx, timerTimeout)
}

func (c *Cog) config(ctx context.Context, guildID string) (GuildConfig, error) {
	var cfg GuildConfig
	if err := c.store.Guild(guildID).Load(ctx, &cfg); err != nil {
		return cfg, err
	}
	if cfg.Presets == nil {
		cfg.Presets = map[string]Preset{}
	}
	return cfg, nil
}

func (c *Cog) HandleInteraction(ctx context.Context, t *platform.InteractionTarget) (bool, error) {
	it := t.Interaction

	switch it.Type {
	case discordgo.InteractionMessageComponent:
		parts := bot.SplitCustomID(it.MessageComponentData().CustomID)
		if len(parts) != 3 || parts[0] != componentPrefix {
			return false, nil
		}
		return true, c.button(ctx, t, parts[1], parts[2])
	case discordgo.InteractionModalSubmit:
		data := it.ModalSubmitData()
		parts := bot.SplitCustomID(data.CustomID)
		if len(parts) != 3 || parts[0] != componentPrefix {
			return false, nil
		}
		return true, c.modal(ctx, t, parts[1], parts[2], bot.ModalValues(data))
	case discordgo.InteractionApplicationCommand:
		data := it.ApplicationCommandData()
		switch data.Name {
		case roomCommand:
			return true, c.roomCommand(ctx, t, data)
		case cogName:
			return true, c.adminCommand(ctx, t, data)
		}
	}
	return false, nil
}

func (c *Cog) HandleVoiceState(ctx context.Context, before, after *discordgo.VoiceState) error {
	if after == nil || after.GuildID == "" {
		return nil
	}
	if after.Member != nil && after.Member.User != nil && after.Member.User.Bot {
		return nil
	}

	prev := ""
	if before != nil {
		prev = before.ChannelID
	}
	next := after.ChannelID

	// mute, deafen, streaming
	if prev == next {
		return nil
	}

	if prev != "" {
		c.left(ctx, after.GuildID, prev, after.UserID)
	}
	if next != "" {
		return c.joined(ctx, after.GuildID, next, after.UserID)
	}
	return nil
}

func (c *Cog) joined(ctx context.Context, guildID, channelID, userID string) error {
	if _, ok := c.rooms.Get(channelID); ok {
		if c.rooms.CancelDeletion(channelID) {
			c.log.Infof("Cancelled deletion of room %s", channelID)
		}
		return nil
	}

	cfg, err := c.config(ctx, guildID)
	if err != nil {
		return err
	}
	if !cfg.AutoEnabled || !utils.CheckStringSliceForDuplicates(cfg.AutoChannels, channelID) {
		return nil
	}

	return c.provision(ctx, guildID, channelID, userID, cfg)
}

// Creates a room next to the join channel and moves the member into it.
func (c *Cog) provision(ctx context.Context, guildID, joinID, userID string, cfg GuildConfig) error {
	join, err := c.client.Channel(ctx, joinID)
	if err != nil {
		return fmt.Errorf("fetch join channel: %w", err)
	}

	template := copyOverwrites(join.PermissionOverwrites)
	overwrites := append(copyOverwrites(template), &discordgo.PermissionOverwrite{
		ID:    userID,
		Type:  discordgo.PermissionOverwriteTypeMember,
		Allow: ownerAllow,
	})

	ch, err := c.client.CreateChannel(ctx, guildID, discordgo.GuildChannelCreateData{
		Name:                 cfg.Name,
		Type:                 discordgo.ChannelTypeGuildVoice,
		ParentID:             join.ParentID,
		UserLimit:            ClampLimit(cfg.UserLimit),
		PermissionOverwrites: overwrites,
	}, createReason)
	if err != nil {
		return fmt.Errorf("create room: %w", err)
	}

	room := c.rooms.Create(ch.ID, guildID, userID, template)
	c.metrics.RoomsCreated.Inc()
	c.updateActive()
	bot.RecordEvent(ctx, c.svc, c.log, guildID, types.RoomCreated, types.RoomEvent{ChannelID: ch.ID, OwnerID: userID})
	c.log.Infof("Created room %s (%s) for user %s in guild %s", ch.ID, room.ID, userID, guildID)

	bot.BestEffort(c.log, "move member into room", c.client.MoveMember(ctx, guildID, userID, ch.ID))

	c.postPanel(ctx, ch.ID, userID, "")

	if len(c.client.VoiceMembers(guildID, ch.ID)) == 0 {
		c.scheduleDeletion(ch.ID)
	}

	return nil
}

func (c *Cog) left(ctx context.Context, guildID, channelID, userID string) {
	room, ok := c.rooms.Get(channelID)
	if !ok {
		return
	}

	remaining := without(c.client.VoiceMembers(guildID, channelID), userID)
	if len(remaining) == 0 {
		c.scheduleDeletion(channelID)
		return
	}

	if room.OwnerID == userID {
		c.postPanel(ctx, channelID, "", fmt.Sprintf("<@%s> left the room. Anyone inside can claim it now.", userID))
	}
}

func (c *Cog) scheduleDeletion(channelID string) {
	if c.rooms.ScheduleDeletion(channelID, c.deletionDelay, c.deleteIfEmpty) {
		c.log.Infof("Room %s is empty, deleting in %s", channelID, c.deletionDelay)
	}
}

// Called by the store once a deletion timer fired.
func (c *Cog) deleteIfEmpty(room Room) {
	ctx, cancel := c.timerContext()
	defer cancel()

	if len(c.client.VoiceMembers(room.GuildID, room.ChannelID)) > 0 {
		return
	}

	if _, ok := c.rooms.Remove(room.ChannelID); !ok {
		return
	}
	c.updateActive()

	bot.BestEffort(c.log, "delete room", c.client.DeleteChannel(ctx, room.ChannelID, deleteReason))

	c.metrics.RoomsDeleted.Inc()
	bot.RecordEvent(ctx, c.svc, c.log, room.GuildID, types.RoomDeleted, types.RoomEvent{ChannelID: room.ChannelID, OwnerID: room.OwnerID})
	c.log.Infof("Deleted empty room %s in guild %s", room.ChannelID, room.GuildID)
}

func panel(channelID, ownerID, notice string) *discordgo.MessageSend {
	description := "Use the buttons below to control your channel."
	if ownerID != "" {
		description += fmt.Sprintf("\nOwner: <@%s>", ownerID)
	}
	if notice != "" {
		description = notice + "\n\n" + description
	}

	button := func(label, action string, style discordgo.ButtonStyle) discordgo.Button {
		return discordgo.Button{Label: label, Style: style, CustomID: bot.CustomID(componentPrefix, action, channelID)}
	}

	return &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{{
			Title:       "🔧 Voice Channel Controls",
			Description: description,
			Color:       panelColor,
		}},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				button("Lock", actionLock, discordgo.DangerButton),
				button("Unlock", actionUnlock, discordgo.SuccessButton),
				button("Hide", actionHide, discordgo.SecondaryButton),
				button("Show", actionShow, discordgo.SecondaryButton),
				button("Claim", actionClaim, discordgo.PrimaryButton),
			}},
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				button("Rename", actionRename, discordgo.PrimaryButton),
				button("Set Limit", actionLimit, discordgo.SecondaryButton),
				button("Status", actionStatus, discordgo.SecondaryButton),
				button("Reset", actionReset, discordgo.DangerButton),
			}},
		},
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	}
}

// Posts the control panel into the room's chat.
func (c *Cog) postPanel(ctx context.Context, channelID, ownerID, notice string) {
	_, err := c.client.SendMessage(ctx, channelID, panel(channelID, ownerID, notice))
	bot.BestEffort(c.log, "post control panel", err)
}

func (c *Cog) updateActive() {
	c.metrics.RoomsActive.Set(float64(c.rooms.Len()))
}

func without(ids []string, id string) []string {
	out, _ := utils.RemoveString(ids, id)
	return out
}
