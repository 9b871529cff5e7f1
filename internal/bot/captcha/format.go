package captcha

import (
	"strings"

	"github.com/bwmarrin/discordgo"
)

// Expands {mention} {name} {username} {guild} {id} in template.
func Format(template string, member *discordgo.Member, user *discordgo.User, guildName string) string {
	if user == nil && member != nil {
		user = member.User
	}

	var mention, name, username, id string
	if user != nil {
		mention = user.Mention()
		username = user.Username
		id = user.ID
		name = user.GlobalName
		if name == "" {
			name = user.Username
		}
	}
	if member != nil && member.Nick != "" {
		name = member.Nick
	}

	return strings.NewReplacer(
		"{mention}", mention,
		"{name}", name,
		"{username}", username,
		"{guild}", guildName,
		"{id}", id,
	).Replace(template)
}
