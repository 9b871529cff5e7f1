package platform

import (
	"context"
	"net/http"

	"github.com/bwmarrin/discordgo"
)

// Discord implements Client on top of a discordgo session.
type Discord struct {
	s *discordgo.Session
}

func NewDiscord(s *discordgo.Session) *Discord {
	return &Discord{s: s}
}

func opts(ctx context.Context, reason string) []discordgo.RequestOption {
	o := []discordgo.RequestOption{discordgo.WithContext(ctx)}
	if reason != "" {
		o = append(o, discordgo.WithAuditLogReason(reason))
	}
	return o
}

func (d *Discord) SendMessage(ctx context.Context, channelID string, msg *discordgo.MessageSend) (*discordgo.Message, error) {
	m, err := d.s.ChannelMessageSendComplex(channelID, msg, opts(ctx, "")...)
	return m, Classify(err)
}

func (d *Discord) EditMessage(ctx context.Context, edit *discordgo.MessageEdit) (*discordgo.Message, error) {
	m, err := d.s.ChannelMessageEditComplex(edit, opts(ctx, "")...)
	return m, Classify(err)
}

func (d *Discord) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	return Classify(d.s.ChannelMessageDelete(channelID, messageID, opts(ctx, "")...))
}

func (d *Discord) SendDirect(ctx context.Context, userID string, msg *discordgo.MessageSend) (*discordgo.Message, error) {
	ch, err := d.s.UserChannelCreate(userID, opts(ctx, "")...)
	if err != nil {
		return nil, Classify(err)
	}
	return d.SendMessage(ctx, ch.ID, msg)
}

func (d *Discord) Respond(ctx context.Context, it *discordgo.Interaction, resp *discordgo.InteractionResponse) error {
	return Classify(d.s.InteractionRespond(it, resp, opts(ctx, "")...))
}

func (d *Discord) Followup(ctx context.Context, it *discordgo.Interaction, params *discordgo.WebhookParams) (*discordgo.Message, error) {
	m, err := d.s.FollowupMessageCreate(it, true, params, opts(ctx, "")...)
	return m, Classify(err)
}

func (d *Discord) Guild(ctx context.Context, guildID string) (*discordgo.Guild, error) {
	if g, err := d.s.State.Guild(guildID); err == nil {
		return g, nil
	}
	g, err := d.s.Guild(guildID, opts(ctx, "")...)
	return g, Classify(err)
}

func (d *Discord) Member(ctx context.Context, guildID, userID string) (*discordgo.Member, error) {
	if m, err := d.s.State.Member(guildID, userID); err == nil {
		return m, nil
	}
	m, err := d.s.GuildMember(guildID, userID, opts(ctx, "")...)
	return m, Classify(err)
}

func (d *Discord) AddRole(ctx context.Context, guildID, userID, roleID, reason string) error {
	return Classify(d.s.GuildMemberRoleAdd(guildID, userID, roleID, opts(ctx, reason)...))
}

func (d *Discord) RemoveRole(ctx context.Context, guildID, userID, roleID, reason string) error {
	return Classify(d.s.GuildMemberRoleRemove(guildID, userID, roleID, opts(ctx, reason)...))
}

func (d *Discord) Kick(ctx context.Context, guildID, userID, reason string) error {
	return Classify(d.s.GuildMemberDeleteWithReason(guildID, userID, reason, opts(ctx, "")...))
}

func (d *Discord) BotPermissions(_ context.Context, channelID string) (int64, error) {
	if d.s.State.User == nil {
		return 0, ErrNotFound
	}
	return d.s.State.UserChannelPermissions(d.s.State.User.ID, channelID)
}

func (d *Discord) Channel(ctx context.Context, channelID string) (*discordgo.Channel, error) {
	if ch, err := d.s.State.Channel(channelID); err == nil {
		return ch, nil
	}
	ch, err := d.s.Channel(channelID, opts(ctx, "")...)
	return ch, Classify(err)
}

func (d *Discord) CreateChannel(ctx context.Context, guildID string, data discordgo.GuildChannelCreateData, reason string) (*discordgo.Channel, error) {
	ch, err := d.s.GuildChannelCreateComplex(guildID, data, opts(ctx, reason)...)
	return ch, Classify(err)
}

// discordgo.ChannelEdit drops a zero user limit, so the body is built by hand.
func (d *Discord) EditChannel(ctx context.Context, channelID string, edit ChannelEdit, reason string) error {
	body := map[string]interface{}{}
	if edit.Name != nil {
		body["name"] = *edit.Name
	}
	if edit.UserLimit != nil {
		body["user_limit"] = *edit.UserLimit
	}
	if len(body) == 0 {
		return nil
	}

	endpoint := discordgo.EndpointChannel(channelID)
	_, err := d.s.RequestWithBucketID(http.MethodPatch, endpoint, body, endpoint, opts(ctx, reason)...)
	return Classify(err)
}

func (d *Discord) DeleteChannel(ctx context.Context, channelID, reason string) error {
	_, err := d.s.ChannelDelete(channelID, opts(ctx, reason)...)
	return Classify(err)
}

// Voice channel status is not wrapped by discordgo yet.
func (d *Discord) SetVoiceStatus(ctx context.Context, channelID, status string) error {
	endpoint := discordgo.EndpointChannel(channelID) + "/voice-status"
	_, err := d.s.RequestWithBucketID(http.MethodPut, endpoint, map[string]string{"status": status}, endpoint, opts(ctx, "")...)
	return Classify(err)
}

func (d *Discord) SetOverwrite(ctx context.Context, channelID string, ow *discordgo.PermissionOverwrite, reason string) error {
	return Classify(d.s.ChannelPermissionSet(channelID, ow.ID, ow.Type, ow.Allow, ow.Deny, opts(ctx, reason)...))
}

func (d *Discord) DeleteOverwrite(ctx context.Context, channelID, targetID, reason string) error {
	return Classify(d.s.ChannelPermissionDelete(channelID, targetID, opts(ctx, reason)...))
}

func (d *Discord) Self() *discordgo.User {
	if d.s.State == nil {
		return nil
	}
	return d.s.State.User
}

func (d *Discord) VoiceMembers(guildID, channelID string) []string {
	g, err := d.s.State.Guild(guildID)
	if err != nil {
		return nil
	}

	d.s.State.RLock()
	defer d.s.State.RUnlock()

	var members []string
	for _, vs := range g.VoiceStates {
		if vs.ChannelID == channelID {
			members = append(members, vs.UserID)
		}
	}
	return members
}

func (d *Discord) MoveMember(ctx context.Context, guildID, userID, channelID string) error {
	var target *string
	if channelID != "" {
		target = &channelID
	}
	return Classify(d.s.GuildMemberMove(guildID, userID, target, opts(ctx, "")...))
}
