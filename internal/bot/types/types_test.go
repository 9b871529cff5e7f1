package types

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func TestUserLevelPermissions(t *testing.T) {
	assert.Nil(t, Anyone.DefaultMemberPermissions())
	assert.Equal(t, "anyone", Anyone.String())

	perms := Administrator.DefaultMemberPermissions()
	if assert.NotNil(t, perms) {
		assert.Equal(t, int64(discordgo.PermissionAdministrator), *perms)
	}
	assert.Equal(t, "administrator", Administrator.String())
}
