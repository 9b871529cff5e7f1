package bot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/bwmarrin/discordgo"

	"github.com/devusSs/warden/internal/bot/platform"
	"github.com/devusSs/warden/internal/config"
	"github.com/devusSs/warden/internal/logging"
	"github.com/devusSs/warden/internal/version"
)

const intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMembers |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsGuildVoiceStates |
	discordgo.IntentsMessageContent

type Bot struct {
	Session *discordgo.Session
	client  platform.Client
	log     *logging.Logger

	// Commands are registered per guild if set, globally otherwise.
	guildIDs []string
	// Gets a DM when a cog fails to start.
	ownerID string

	ctx    context.Context
	cancel context.CancelFunc

	mu   sync.RWMutex
	cogs []Cog

	ready     atomic.Bool
	startOnce sync.Once
	running   sync.WaitGroup
}

// Creates the discordgo session, does not connect yet.
func New(cfg *config.Config) (*Bot, error) {
	s, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	s.Identify.Intents = intents

	b := newBot(platform.NewDiscord(s), cfg.Discord.GuildIDs)
	b.Session = s
	b.ownerID = cfg.Discord.OwnerID
	return b, nil
}

func newBot(client platform.Client, guildIDs []string) *Bot {
	ctx, cancel := context.WithCancel(context.Background())
	return &Bot{
		client:   client,
		log:      logging.For("bot"),
		guildIDs: guildIDs,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Client the cogs should talk to Discord with.
func (b *Bot) Client() platform.Client {
	return b.client
}

// Adds a cog. Fails on duplicate names and cogs needing a newer framework.
func (b *Bot) Register(cog Cog) error {
	if !version.Valid(cog.Version()) {
		return fmt.Errorf("cog %s: invalid version %q", cog.Name(), cog.Version())
	}

	if err := version.Compatible(version.Framework, cog.MinFrameworkVersion()); err != nil {
		return fmt.Errorf("cog %s: %w", cog.Name(), err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, c := range b.cogs {
		if c.Name() == cog.Name() {
			return fmt.Errorf("cog %s is already registered", cog.Name())
		}
	}

	b.cogs = append(b.cogs, cog)
	b.log.Successf("Registered cog %s v%s", cog.Name(), cog.Version())

	return nil
}

func (b *Bot) registered() []Cog {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Cog(nil), b.cogs...)
}

// Application commands of every registered cog.
func (b *Bot) Commands() []*discordgo.ApplicationCommand {
	var cmds []*discordgo.ApplicationCommand
	for _, cog := range b.registered() {
		cmds = append(cmds, cog.Commands()...)
	}
	return cmds
}

// Reports whether the gateway connection is up.
func (b *Bot) Ready() bool {
	return b.ready.Load()
}

// Opens the gateway connection.
func (b *Bot) Connect() error {
	return b.Session.Open()
}

// General function to setup handlers for all Discord gateway events.
func (b *Bot) SetupHandleFuncs() {
	b.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		b.ready.Store(true)
		b.log.Successf("Connected to Discord as %s", r.User.Username)

		if err := b.registerCommands(r.User.ID); err != nil {
			b.log.Errorf("Could not register commands: %v", err)
		}

		b.startOnce.Do(b.startCogs)
	})

	b.Session.AddHandler(func(_ *discordgo.Session, _ *discordgo.Disconnect) {
		b.ready.Store(false)
		b.log.Warnf("Lost connection to Discord, reconnecting...")
	})

	b.Session.AddHandler(func(_ *discordgo.Session, _ *discordgo.Resumed) {
		b.ready.Store(true)
	})

	b.Session.AddHandler(func(_ *discordgo.Session, i *discordgo.InteractionCreate) {
		b.dispatchInteraction(i.Interaction)
	})

	b.Session.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) {
		b.dispatchMessage(m.Message)
	})

	b.Session.AddHandler(func(_ *discordgo.Session, m *discordgo.GuildMemberRemove) {
		if m.Member == nil || m.User == nil {
			return
		}
		b.dispatchMemberRemove(m.GuildID, m.User.ID)
	})

	b.Session.AddHandler(func(_ *discordgo.Session, v *discordgo.VoiceStateUpdate) {
		b.dispatchVoiceState(v.BeforeUpdate, v.VoiceState)
	})

	b.log.Successf("Setup handle functions for Discord events")
}

func (b *Bot) registerCommands(applicationID string) error {
	cmds := b.Commands()

	guilds := b.guildIDs
	if len(guilds) == 0 {
		guilds = []string{""}
	}

	for _, guildID := range guilds {
		if _, err := b.Session.ApplicationCommandBulkOverwrite(applicationID, guildID, cmds, discordgo.WithContext(b.ctx)); err != nil {
			return fmt.Errorf("guild %q: %w", guildID, platform.Classify(err))
		}
	}

	b.log.Successf("Registered %d application command(s)", len(cmds))
	return nil
}

func (b *Bot) startCogs() {
	for _, cog := range b.registered() {
		b.running.Add(1)
		go func(cog Cog) {
			defer b.running.Done()
			if err := cog.Start(b.ctx); err != nil && !errors.Is(err, context.Canceled) {
				b.log.Errorf("Starting cog %s failed: %v", cog.Name(), err)
				b.notifyOwner(fmt.Sprintf("⚠️ Cog **%s** failed to start: `%v`", cog.Name(), err))
				return
			}
			b.log.Successf("Started cog %s", cog.Name())
		}(cog)
	}
}

// Sends content to the configured owner, if any.
func (b *Bot) notifyOwner(content string) {
	if b.ownerID == "" {
		return
	}

	ctx, cancel := b.handlerContext()
	defer cancel()

	if _, err := b.client.SendDirect(ctx, b.ownerID, &discordgo.MessageSend{Content: content}); err != nil {
		b.log.Warnf("Could not notify owner: %v", err)
	}
}

// This function will block further execution until CTRL+C is hit.
//
// # NOTE: This function will NOT disconnect the bot. Use the default function Disconnect() for that.
func (b *Bot) AwaitCancel() {
	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)
	<-done
	fmt.Println("")
}

// Cancels cog initialisation, stops every cog and closes the gateway connection.
func (b *Bot) Disconnect(wg *sync.WaitGroup) error {
	defer wg.Done()

	b.cancel()
	b.running.Wait()

	for _, cog := range b.registered() {
		cog.Stop()
	}

	b.ready.Store(false)

	if b.Session == nil {
		return nil
	}
	return b.Session.Close()
}
