package types

import "github.com/bwmarrin/discordgo"

type UserLevel int

const (
	Anyone UserLevel = iota
	// Members with the administrator permission.
	Administrator
)

func (u UserLevel) String() string {
	switch u {
	case Administrator:
		return "administrator"
	default:
		return "anyone"
	}
}

// Permissions needed to see the command in the client. Nil means everyone.
func (u UserLevel) DefaultMemberPermissions() *int64 {
	if u != Administrator {
		return nil
	}
	perms := int64(discordgo.PermissionAdministrator)
	return &perms
}
