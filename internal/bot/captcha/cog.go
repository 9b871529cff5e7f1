// Package captcha gates new members behind an image captcha.
//
// Members press the verify button of the deployed message, get an image
// posted in the verification channel and have to answer with its code
// before the guild's timeout runs out. Failing to answer in time kicks them.
package captcha

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/bwmarrin/discordgo"
	"golang.org/x/time/rate"

	"github.com/devusSs/warden/internal/bot"
	"github.com/devusSs/warden/internal/bot/platform"
	"github.com/devusSs/warden/internal/bot/types"
	"github.com/devusSs/warden/internal/database"
	"github.com/devusSs/warden/internal/logging"
	"github.com/devusSs/warden/internal/settings"
	"github.com/devusSs/warden/internal/telemetry"
)

const (
	cogName    = "captcha"
	cogVersion = "1.0.0"

	verifyButtonID = "captcha_verify"
	embedColor     = 0x34EB83
	imageName      = "captcha.png"

	defaultCleanupDelay = 10 * time.Second
	timerTimeout        = 30 * time.Second

	msgFailure        = "❌ Incorrect captcha. Please try again or contact an admin."
	msgExpired        = "❌ This captcha session has expired. Please start a new verification."
	msgExpiredDM      = "❌ Time expired for captcha verification. Please try again later."
	msgNotConfigured  = "Verification channel not configured."
	msgInvalidChannel = "Verification channel is invalid."
	msgDisabled       = "Captcha verification is currently disabled."
	msgCooldown       = "⏳ Please wait a moment before requesting a new captcha."

	kickReason = "Failed to solve captcha verification in time."
)

// Without these the cog switches itself off.
const requiredPermissions = discordgo.PermissionKickMembers |
	discordgo.PermissionManageRoles |
	discordgo.PermissionEmbedLinks |
	discordgo.PermissionAttachFiles

type Options struct {
	// Captcha images are written here while a challenge is open.
	DataDir        string
	CleanupDelay   time.Duration
	VerifyCooldown time.Duration

	// Optional, real implementations are used if nil.
	Clock    clock.Clock
	Renderer Renderer
	Metrics  *telemetry.Metrics
}

type Cog struct {
	client   platform.Client
	svc      database.Service
	store    *settings.Store
	metrics  *telemetry.Metrics
	log      *logging.Logger
	clock    clock.Clock
	renderer Renderer

	dataDir      string
	cleanupDelay time.Duration
	cooldown     time.Duration

	tracker *Tracker
	pending *Pending

	limMu    sync.Mutex
	limiters map[string]*rate.Limiter

	ctxMu sync.RWMutex
	ctx   context.Context
}

func New(client platform.Client, svc database.Service, opts Options) (*Cog, error) {
	store, err := settings.New(svc, cogName, Defaults())
	if err != nil {
		return nil, err
	}

	if opts.DataDir == "" {
		return nil, errors.New("captcha: missing data dir")
	}
	if err := os.MkdirAll(opts.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("captcha: create data dir: %w", err)
	}

	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Renderer == nil {
		opts.Renderer = NewImageRenderer()
	}
	if opts.Metrics == nil {
		opts.Metrics = telemetry.Noop()
	}
	if opts.CleanupDelay <= 0 {
		opts.CleanupDelay = defaultCleanupDelay
	}

	c := &Cog{
		client:       client,
		svc:          svc,
		store:        store,
		metrics:      opts.Metrics,
		log:          logging.For(cogName),
		clock:        opts.Clock,
		renderer:     opts.Renderer,
		dataDir:      opts.DataDir,
		cleanupDelay: opts.CleanupDelay,
		cooldown:     opts.VerifyCooldown,
		limiters:     map[string]*rate.Limiter{},
		ctx:          context.Background(),
	}
	c.tracker = NewTracker(opts.Clock, c.expired)
	c.pending = NewPending(opts.Clock, c.deleteMessages)

	return c, nil
}

func (c *Cog) Name() string                { return cogName }
func (c *Cog) Version() string             { return cogVersion }
func (c *Cog) MinFrameworkVersion() string { return "1.2.0" }

// Warms the settings cache.
func (c *Cog) Start(ctx context.Context) error {
	c.ctxMu.Lock()
	c.ctx = ctx
	c.ctxMu.Unlock()

	return c.store.Warm(ctx)
}

func (c *Cog) Stop() {
	for _, challenge := range c.tracker.Stop() {
		c.removeImage(challenge.UserID)
	}
	c.pending.Stop()
	c.updateActive()
}

// Context for work started by timers.
func (c *Cog) timerContext() (context.Context, context.CancelFunc) {
	c.ctxMu.RLock()
	defer c.ctxMu.RUnlock()
	return context.WithTimeout(c.ctx, timerTimeout)
}

func (c *Cog) config(ctx context.Context, guildID string) (GuildConfig, error) {
	var cfg GuildConfig
	err := c.store.Guild(guildID).Load(ctx, &cfg)
	return cfg, err
}

func (c *Cog) HandleInteraction(ctx context.Context, t *platform.InteractionTarget) (bool, error) {
	it := t.Interaction

	switch it.Type {
	case discordgo.InteractionMessageComponent:
		if it.MessageComponentData().CustomID != verifyButtonID {
			return false, nil
		}
		return true, c.verify(ctx, t)
	case discordgo.InteractionApplicationCommand:
		data := it.ApplicationCommandData()
		if data.Name != cogName {
			return false, nil
		}
		return true, c.command(ctx, t, data)
	default:
		return false, nil
	}
}

// Handles a click on the verify button.
func (c *Cog) verify(ctx context.Context, t *platform.InteractionTarget) error {
	it := t.Interaction
	user := bot.InteractionUser(it)
	if user == nil || user.Bot || it.GuildID == "" {
		return nil
	}

	cfg, err := c.config(ctx, it.GuildID)
	if err != nil {
		return err
	}

	if !cfg.Toggle {
		_, err := t.Reply(ctx, c.client, msgDisabled)
		return err
	}

	if cfg.Channel == "" {
		_, err := t.Reply(ctx, c.client, msgNotConfigured)
		return err
	}

	ch, err := c.client.Channel(ctx, cfg.Channel)
	if err != nil && !platform.IsNotFound(err) {
		return err
	}
	if ch == nil || ch.Type != discordgo.ChannelTypeGuildText {
		_, err := t.Reply(ctx, c.client, msgInvalidChannel)
		return err
	}

	if !c.allow(user.ID) {
		_, err := t.Reply(ctx, c.client, msgCooldown)
		return err
	}

	if err := t.Defer(ctx, c.client); err != nil {
		return err
	}

	if cfg.RoleBefore != "" {
		bot.BestEffort(c.log, "add unverified role",
			c.client.AddRole(ctx, it.GuildID, user.ID, cfg.RoleBefore, "Assigned unverified role before captcha."))
	}

	if err := c.begin(ctx, it.GuildID, cfg, it.Member, user); err != nil {
		return err
	}

	_, err = t.Reply(ctx, c.client, fmt.Sprintf("Your captcha has been posted in <#%s>. Answer within %d seconds.", cfg.Channel, cfg.Timeout))
	return err
}

// Issues a challenge and posts its image.
func (c *Cog) begin(ctx context.Context, guildID string, cfg GuildConfig, member *discordgo.Member, user *discordgo.User) error {
	challenge, superseded, err := c.tracker.Issue(user.ID, guildID, cfg.Channel, time.Duration(cfg.Timeout)*time.Second)
	if err != nil {
		return fmt.Errorf("issue challenge: %w", err)
	}
	if superseded != nil {
		c.log.Infof("Challenge %s of user %s superseded by %s", superseded.ID, user.ID, challenge.ID)
		c.pending.Purge(user.ID)
	}

	c.metrics.CaptchaChallenges.Inc()
	c.updateActive()
	bot.RecordEvent(ctx, c.svc, c.log, guildID, types.CaptchaIssued, types.CaptchaEvent{UserID: user.ID, ChallengeID: challenge.ID.String()})

	image, err := c.writeImage(user.ID, challenge.Code)
	if err != nil {
		c.abandon(user.ID)
		return err
	}

	msg, err := c.client.SendMessage(ctx, cfg.Channel, &discordgo.MessageSend{
		Content:         Format(cfg.MessageBefore, member, user, c.guildName(ctx, guildID)),
		Files:           []*discordgo.File{{Name: imageName, ContentType: "image/png", Reader: bytes.NewReader(image)}},
		AllowedMentions: &discordgo.MessageAllowedMentions{Users: []string{user.ID}},
	})
	if err != nil {
		c.abandon(user.ID)
		return fmt.Errorf("send captcha: %w", err)
	}
	c.pending.Track(user.ID, msg.ChannelID, msg.ID)

	return nil
}

// Drops a challenge which could not be delivered.
func (c *Cog) abandon(userID string) {
	c.tracker.Cancel(userID)
	c.removeImage(userID)
	c.updateActive()
}

// Checks answers posted in the verification channel.
func (c *Cog) HandleMessage(ctx context.Context, m *discordgo.Message) error {
	if m.GuildID == "" || m.Author == nil || m.Author.Bot {
		return nil
	}

	result, challenge := c.tracker.ResolveIf(m.Author.ID, m.Content, func(active Challenge) bool {
		return active.GuildID == m.GuildID && active.ChannelID == m.ChannelID
	})
	if result == NoChallenge {
		return nil
	}
	c.updateActive()

	bot.BestEffort(c.log, "delete captcha answer", c.client.DeleteMessage(ctx, m.ChannelID, m.ID))

	target := platform.ChannelTarget{ChannelID: m.ChannelID}

	switch result {
	case Match:
		c.removeImage(challenge.UserID)
		return c.passed(ctx, target, challenge, m.Author)
	case Mismatch:
		c.removeImage(challenge.UserID)
		c.failed(ctx, target, challenge)
	case Expired:
		c.reply(ctx, target, challenge.UserID, msgExpired)
		c.expire(ctx, challenge)
	}

	return nil
}

func (c *Cog) passed(ctx context.Context, target platform.ResponseTarget, challenge Challenge, user *discordgo.User) error {
	cfg, err := c.config(ctx, challenge.GuildID)
	if err != nil {
		c.pending.Schedule(challenge.UserID, c.cleanupDelay)
		return err
	}

	member, err := c.client.Member(ctx, challenge.GuildID, challenge.UserID)
	if err != nil {
		bot.BestEffort(c.log, "fetch verified member", err)
	}

	if cfg.RoleBefore != "" {
		bot.BestEffort(c.log, "remove unverified role",
			c.client.RemoveRole(ctx, challenge.GuildID, challenge.UserID, cfg.RoleBefore, "Captcha passed, removing unverified role."))
	}
	if cfg.RoleAfter != "" {
		bot.BestEffort(c.log, "add verified role",
			c.client.AddRole(ctx, challenge.GuildID, challenge.UserID, cfg.RoleAfter, "Captcha solved."))
	}

	c.reply(ctx, target, challenge.UserID, Format(cfg.MessageAfter, member, user, c.guildName(ctx, challenge.GuildID)))
	c.pending.Schedule(challenge.UserID, c.cleanupDelay)

	c.metrics.CaptchaResult(telemetry.ResultPassed)
	bot.RecordEvent(ctx, c.svc, c.log, challenge.GuildID, types.CaptchaPassed, types.CaptchaEvent{UserID: challenge.UserID, ChallengeID: challenge.ID.String()})
	c.log.Successf("User %s passed the captcha in guild %s", challenge.UserID, challenge.GuildID)

	return nil
}

func (c *Cog) failed(ctx context.Context, target platform.ResponseTarget, challenge Challenge) {
	c.reply(ctx, target, challenge.UserID, msgFailure)
	c.pending.Schedule(challenge.UserID, c.cleanupDelay)

	c.metrics.CaptchaResult(telemetry.ResultFailed)
	bot.RecordEvent(ctx, c.svc, c.log, challenge.GuildID, types.CaptchaFailed, types.CaptchaEvent{UserID: challenge.UserID, ChallengeID: challenge.ID.String()})
}

// Called by the tracker once a challenge ran out unanswered.
func (c *Cog) expired(challenge Challenge) {
	ctx, cancel := c.timerContext()
	defer cancel()

	c.updateActive()
	c.expire(ctx, challenge)
}

// Expiry path: notify the user, kick them, clean up.
func (c *Cog) expire(ctx context.Context, challenge Challenge) {
	c.removeImage(challenge.UserID)

	_, err := c.client.SendDirect(ctx, challenge.UserID, &discordgo.MessageSend{Content: msgExpiredDM})
	bot.BestEffort(c.log, "notify expired captcha", err)

	bot.BestEffort(c.log, "kick unverified member", c.client.Kick(ctx, challenge.GuildID, challenge.UserID, kickReason))

	c.pending.Schedule(challenge.UserID, c.cleanupDelay)

	c.metrics.CaptchaResult(telemetry.ResultExpired)
	bot.RecordEvent(ctx, c.svc, c.log, challenge.GuildID, types.CaptchaExpired, types.CaptchaEvent{UserID: challenge.UserID, ChallengeID: challenge.ID.String()})
	c.log.Infof("Captcha of user %s in guild %s expired", challenge.UserID, challenge.GuildID)
}

// Purges everything of a member who left while verifying.
func (c *Cog) HandleMemberRemove(ctx context.Context, guildID, userID string) error {
	cfg, err := c.config(ctx, guildID)
	if err != nil {
		return err
	}

	if cfg.Toggle {
		c.checkPermissions(ctx, guildID, cfg)
	}

	active, ok := c.tracker.Active(userID)
	if ok && active.GuildID != guildID {
		return nil
	}

	c.pending.Purge(userID)
	c.forget(userID)

	challenge, ok := c.tracker.Cancel(userID)
	if !ok {
		return nil
	}
	c.removeImage(userID)
	c.updateActive()

	c.metrics.CaptchaResult(telemetry.ResultDeparted)
	bot.RecordEvent(ctx, c.svc, c.log, guildID, types.CaptchaDeparted, types.CaptchaEvent{UserID: userID, ChallengeID: challenge.ID.String()})

	return nil
}

func (c *Cog) checkPermissions(ctx context.Context, guildID string, cfg GuildConfig) {
	if cfg.Channel == "" {
		return
	}

	perms, err := c.client.BotPermissions(ctx, cfg.Channel)
	if err != nil {
		bot.BestEffort(c.log, "check permissions", err)
		return
	}
	if perms&requiredPermissions == requiredPermissions {
		return
	}

	if err := c.store.Guild(guildID).Set(ctx, keyToggle, false); err != nil {
		c.log.Errorf("Could not disable captcha in guild %s: %v", guildID, err)
		return
	}

	c.log.Warnf("Disabled captcha verification in guild %s due to missing permissions", guildID)
	bot.RecordEvent(ctx, c.svc, c.log, guildID, types.CaptchaDisabled, types.SettingEvent{Cog: cogName, Key: keyToggle})
}

// Replies and remembers the message for cleanup.
func (c *Cog) reply(ctx context.Context, target platform.ResponseTarget, userID, content string) {
	msg, err := target.Reply(ctx, c.client, content)
	if err != nil {
		bot.BestEffort(c.log, "reply", err)
		return
	}
	if msg != nil {
		c.pending.Track(userID, msg.ChannelID, msg.ID)
	}
}

func (c *Cog) deleteMessages(userID string, refs []messageRef) {
	ctx, cancel := c.timerContext()
	defer cancel()

	for _, ref := range refs {
		bot.BestEffort(c.log, "delete captcha message", c.client.DeleteMessage(ctx, ref.ChannelID, ref.MessageID))
	}
}

// Reports whether userID may request a new captcha now.
func (c *Cog) allow(userID string) bool {
	if c.cooldown <= 0 {
		return true
	}

	c.limMu.Lock()
	defer c.limMu.Unlock()

	lim, ok := c.limiters[userID]
	if !ok {
		lim = rate.NewLimiter(rate.Every(c.cooldown), 1)
		c.limiters[userID] = lim
	}
	return lim.AllowN(c.clock.Now(), 1)
}

func (c *Cog) forget(userID string) {
	c.limMu.Lock()
	defer c.limMu.Unlock()
	delete(c.limiters, userID)
}

func (c *Cog) imagePath(userID string) string {
	return filepath.Join(c.dataDir, userID+".png")
}

func (c *Cog) writeImage(userID, code string) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.renderer.Render(code, &buf); err != nil {
		return nil, err
	}

	if err := os.WriteFile(c.imagePath(userID), buf.Bytes(), 0o600); err != nil {
		return nil, fmt.Errorf("write captcha image: %w", err)
	}
	return buf.Bytes(), nil
}

func (c *Cog) removeImage(userID string) {
	if err := os.Remove(c.imagePath(userID)); err != nil && !errors.Is(err, os.ErrNotExist) {
		c.log.Warnf("Could not remove captcha image of %s: %v", userID, err)
	}
}

func (c *Cog) guildName(ctx context.Context, guildID string) string {
	g, err := c.client.Guild(ctx, guildID)
	if err != nil {
		return ""
	}
	return g.Name
}

func (c *Cog) updateActive() {
	c.metrics.CaptchaActive.Set(float64(c.tracker.Len()))
}
