// Package platformtest provides an in-memory platform.Client recording every call.
package platformtest

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/devusSs/warden/internal/bot/platform"
)

type Sent struct {
	ChannelID string
	Message   *discordgo.MessageSend
	ID        string
	// Content of every attached file, read at send time.
	Files [][]byte
}

type RoleChange struct {
	GuildID, UserID, RoleID string
	Added                   bool
}

type Move struct {
	UserID, ChannelID string
}

type Edit struct {
	ChannelID string
	Edit      platform.ChannelEdit
}

// Fake is a platform.Client for tests. Set Errors[method] to make a call fail.
type Fake struct {
	mu     sync.Mutex
	nextID int

	Errors map[string]error

	Guilds      map[string]*discordgo.Guild
	Members     map[string]*discordgo.Member // by user id
	Channels    map[string]*discordgo.Channel
	Voice       map[string][]string // channel id => user ids
	Permissions int64

	Sent        []Sent
	Direct      []Sent
	Edited      []*discordgo.MessageEdit
	Deleted     []string // message ids
	Responses   []*discordgo.InteractionResponse
	Followups   []*discordgo.WebhookParams
	Roles       []RoleChange
	Kicked      []string
	Created     []discordgo.GuildChannelCreateData
	ChannelEdit []Edit
	Removed     []string // channel ids
	Status      map[string]string
	Overwrites  map[string]map[string]*discordgo.PermissionOverwrite // channel => target => overwrite
	Moves       []Move
}

func New() *Fake {
	return &Fake{
		Errors:      map[string]error{},
		Guilds:      map[string]*discordgo.Guild{},
		Members:     map[string]*discordgo.Member{},
		Channels:    map[string]*discordgo.Channel{},
		Voice:       map[string][]string{},
		Status:      map[string]string{},
		Overwrites:  map[string]map[string]*discordgo.PermissionOverwrite{},
		Permissions: discordgo.PermissionAll,
	}
}

var _ platform.Client = (*Fake)(nil)

func (f *Fake) id() string {
	f.nextID++
	return fmt.Sprintf("%d", 1000+f.nextID)
}

func (f *Fake) fail(method string) error {
	return f.Errors[method]
}

// Runs fn with the fake locked, for reading recorded calls from tests.
func (f *Fake) Do(fn func(f *Fake)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *Fake) SetVoice(channelID string, userIDs ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Voice[channelID] = userIDs
}

func (f *Fake) AddChannel(ch *discordgo.Channel) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Channels[ch.ID] = ch
	if ch.PermissionOverwrites != nil {
		f.Overwrites[ch.ID] = map[string]*discordgo.PermissionOverwrite{}
		for _, ow := range ch.PermissionOverwrites {
			cp := *ow
			f.Overwrites[ch.ID][ow.ID] = &cp
		}
	}
}

func (f *Fake) AddMember(guildID string, m *discordgo.Member) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m.GuildID = guildID
	f.Members[m.User.ID] = m
}

func (f *Fake) send(channelID string, msg *discordgo.MessageSend) (*discordgo.Message, Sent) {
	s := Sent{ChannelID: channelID, Message: msg, ID: f.id()}
	for _, file := range msg.Files {
		b, _ := io.ReadAll(file.Reader)
		s.Files = append(s.Files, b)
	}
	return &discordgo.Message{ID: s.ID, ChannelID: channelID, Content: msg.Content}, s
}

func (f *Fake) SendMessage(_ context.Context, channelID string, msg *discordgo.MessageSend) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("SendMessage"); err != nil {
		return nil, err
	}
	m, s := f.send(channelID, msg)
	f.Sent = append(f.Sent, s)
	return m, nil
}

func (f *Fake) EditMessage(_ context.Context, edit *discordgo.MessageEdit) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("EditMessage"); err != nil {
		return nil, err
	}
	f.Edited = append(f.Edited, edit)
	return &discordgo.Message{ID: edit.ID, ChannelID: edit.Channel}, nil
}

func (f *Fake) DeleteMessage(_ context.Context, _, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("DeleteMessage"); err != nil {
		return err
	}
	f.Deleted = append(f.Deleted, messageID)
	return nil
}

func (f *Fake) SendDirect(_ context.Context, userID string, msg *discordgo.MessageSend) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("SendDirect"); err != nil {
		return nil, err
	}
	m, s := f.send("dm:"+userID, msg)
	f.Direct = append(f.Direct, s)
	return m, nil
}

func (f *Fake) Respond(_ context.Context, _ *discordgo.Interaction, resp *discordgo.InteractionResponse) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("Respond"); err != nil {
		return err
	}
	f.Responses = append(f.Responses, resp)
	return nil
}

func (f *Fake) Followup(_ context.Context, it *discordgo.Interaction, params *discordgo.WebhookParams) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("Followup"); err != nil {
		return nil, err
	}
	f.Followups = append(f.Followups, params)
	return &discordgo.Message{ID: f.id(), ChannelID: it.ChannelID, Content: params.Content}, nil
}

func (f *Fake) Guild(_ context.Context, guildID string) (*discordgo.Guild, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if g, ok := f.Guilds[guildID]; ok {
		return g, nil
	}
	return &discordgo.Guild{ID: guildID, Name: "Guild " + guildID}, nil
}

func (f *Fake) Member(_ context.Context, guildID, userID string) (*discordgo.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("Member"); err != nil {
		return nil, err
	}
	if m, ok := f.Members[userID]; ok {
		return m, nil
	}
	return &discordgo.Member{GuildID: guildID, User: &discordgo.User{ID: userID, Username: "user" + userID}}, nil
}

func (f *Fake) AddRole(_ context.Context, guildID, userID, roleID, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("AddRole"); err != nil {
		return err
	}
	f.Roles = append(f.Roles, RoleChange{guildID, userID, roleID, true})
	return nil
}

func (f *Fake) RemoveRole(_ context.Context, guildID, userID, roleID, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("RemoveRole"); err != nil {
		return err
	}
	f.Roles = append(f.Roles, RoleChange{guildID, userID, roleID, false})
	return nil
}

func (f *Fake) Kick(_ context.Context, _, userID, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("Kick"); err != nil {
		return err
	}
	f.Kicked = append(f.Kicked, userID)
	return nil
}

func (f *Fake) BotPermissions(_ context.Context, _ string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Permissions, f.fail("BotPermissions")
}

func (f *Fake) Channel(_ context.Context, channelID string) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.Channels[channelID]
	if !ok {
		return nil, platform.ErrNotFound
	}
	cp := *ch
	cp.PermissionOverwrites = nil
	for _, ow := range f.Overwrites[channelID] {
		o := *ow
		cp.PermissionOverwrites = append(cp.PermissionOverwrites, &o)
	}
	return &cp, nil
}

func (f *Fake) CreateChannel(_ context.Context, guildID string, data discordgo.GuildChannelCreateData, _ string) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("CreateChannel"); err != nil {
		return nil, err
	}
	f.Created = append(f.Created, data)
	ch := &discordgo.Channel{
		ID:        f.id(),
		GuildID:   guildID,
		Name:      data.Name,
		Type:      data.Type,
		ParentID:  data.ParentID,
		UserLimit: data.UserLimit,
	}
	f.Channels[ch.ID] = ch
	f.Overwrites[ch.ID] = map[string]*discordgo.PermissionOverwrite{}
	for _, ow := range data.PermissionOverwrites {
		cp := *ow
		f.Overwrites[ch.ID][ow.ID] = &cp
	}
	return ch, nil
}

func (f *Fake) EditChannel(_ context.Context, channelID string, edit platform.ChannelEdit, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("EditChannel"); err != nil {
		return err
	}
	f.ChannelEdit = append(f.ChannelEdit, Edit{channelID, edit})
	if ch, ok := f.Channels[channelID]; ok {
		if edit.Name != nil {
			ch.Name = *edit.Name
		}
		if edit.UserLimit != nil {
			ch.UserLimit = *edit.UserLimit
		}
	}
	return nil
}

func (f *Fake) DeleteChannel(_ context.Context, channelID, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("DeleteChannel"); err != nil {
		return err
	}
	f.Removed = append(f.Removed, channelID)
	delete(f.Channels, channelID)
	return nil
}

func (f *Fake) SetVoiceStatus(_ context.Context, channelID, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("SetVoiceStatus"); err != nil {
		return err
	}
	f.Status[channelID] = status
	return nil
}

func (f *Fake) SetOverwrite(_ context.Context, channelID string, ow *discordgo.PermissionOverwrite, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("SetOverwrite"); err != nil {
		return err
	}
	if f.Overwrites[channelID] == nil {
		f.Overwrites[channelID] = map[string]*discordgo.PermissionOverwrite{}
	}
	cp := *ow
	f.Overwrites[channelID][ow.ID] = &cp
	return nil
}

func (f *Fake) DeleteOverwrite(_ context.Context, channelID, targetID, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("DeleteOverwrite"); err != nil {
		return err
	}
	delete(f.Overwrites[channelID], targetID)
	return nil
}

func (f *Fake) Self() *discordgo.User {
	return &discordgo.User{ID: "bot", Username: "warden", Bot: true}
}

func (f *Fake) VoiceMembers(_, channelID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.Voice[channelID]...)
}

func (f *Fake) MoveMember(_ context.Context, _, userID, channelID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("MoveMember"); err != nil {
		return err
	}
	f.Moves = append(f.Moves, Move{userID, channelID})
	for ch, users := range f.Voice {
		for i, u := range users {
			if u == userID {
				f.Voice[ch] = append(users[:i:i], users[i+1:]...)
				break
			}
		}
	}
	if channelID != "" {
		f.Voice[channelID] = append(f.Voice[channelID], userID)
	}
	return nil
}

// Overwrite returns a copy of the stored overwrite for target, nil if none.
func (f *Fake) Overwrite(channelID, targetID string) *discordgo.PermissionOverwrite {
	f.mu.Lock()
	defer f.mu.Unlock()
	ow, ok := f.Overwrites[channelID][targetID]
	if !ok {
		return nil
	}
	cp := *ow
	return &cp
}
