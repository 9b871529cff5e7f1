package bot

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// Options of a slash command or subcommand keyed by name.
type Options map[string]*discordgo.ApplicationCommandInteractionDataOption

func toOptions(opts []*discordgo.ApplicationCommandInteractionDataOption) Options {
	o := make(Options, len(opts))
	for _, opt := range opts {
		o[opt.Name] = opt
	}
	return o
}

// Returns the invoked subcommand (or "group subcommand") and its options.
// For commands without subcommands the name is empty.
func Subcommand(data discordgo.ApplicationCommandInteractionData) (string, Options) {
	if len(data.Options) == 0 {
		return "", Options{}
	}

	first := data.Options[0]
	switch first.Type {
	case discordgo.ApplicationCommandOptionSubCommand:
		return first.Name, toOptions(first.Options)
	case discordgo.ApplicationCommandOptionSubCommandGroup:
		if len(first.Options) == 0 {
			return first.Name, Options{}
		}
		sub := first.Options[0]
		return first.Name + " " + sub.Name, toOptions(sub.Options)
	default:
		return "", toOptions(data.Options)
	}
}

func (o Options) String(name string) (string, bool) {
	opt, ok := o[name]
	if !ok {
		return "", false
	}
	return opt.StringValue(), true
}

func (o Options) Int(name string) (int, bool) {
	opt, ok := o[name]
	if !ok {
		return 0, false
	}
	return int(opt.IntValue()), true
}

func (o Options) Bool(name string) (bool, bool) {
	opt, ok := o[name]
	if !ok {
		return false, false
	}
	return opt.BoolValue(), true
}

// Snowflake of a user, role, channel or mentionable option.
func (o Options) ID(name string) (string, bool) {
	opt, ok := o[name]
	if !ok {
		return "", false
	}
	return fmt.Sprint(opt.Value), true
}

// Text input values of a modal keyed by their custom id.
func ModalValues(data discordgo.ModalSubmitInteractionData) map[string]string {
	values := map[string]string{}
	for _, c := range data.Components {
		row, ok := c.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, inner := range row.Components {
			if input, ok := inner.(*discordgo.TextInput); ok {
				values[input.CustomID] = strings.TrimSpace(input.Value)
			}
		}
	}
	return values
}

// Custom ids of components are "<prefix>:<action>[:<arg>]".
func CustomID(parts ...string) string {
	return strings.Join(parts, ":")
}

func SplitCustomID(id string) []string {
	return strings.Split(id, ":")
}

// Builders for application command options.

func SubcommandOption(name, description string, opts ...*discordgo.ApplicationCommandOption) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommand,
		Name:        name,
		Description: description,
		Options:     opts,
	}
}

func StringOption(name, description string, required bool, maxLength int) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        name,
		Description: description,
		Required:    required,
		MaxLength:   maxLength,
	}
}

func IntOption(name, description string, required bool, min, max int) *discordgo.ApplicationCommandOption {
	minValue := float64(min)
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        name,
		Description: description,
		Required:    required,
		MinValue:    &minValue,
		MaxValue:    float64(max),
	}
}

func BoolOption(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionBoolean,
		Name:        name,
		Description: description,
		Required:    required,
	}
}

func RoleOption(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionRole,
		Name:        name,
		Description: description,
		Required:    required,
	}
}

func MentionableOption(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionMentionable,
		Name:        name,
		Description: description,
		Required:    required,
	}
}

func ChannelOption(name, description string, required bool, channelTypes ...discordgo.ChannelType) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:         discordgo.ApplicationCommandOptionChannel,
		Name:         name,
		Description:  description,
		Required:     required,
		ChannelTypes: channelTypes,
	}
}
