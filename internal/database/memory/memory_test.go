package memory

import (
	"context"
	"database/sql"
	"testing"

	"github.com/devusSs/warden/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.SetGuildSetting(ctx, database.GuildSetting{GuildID: "g1", Cog: "captcha", Key: "toggle", Value: "true"}))
	require.NoError(t, s.SetGuildSetting(ctx, database.GuildSetting{GuildID: "g2", Cog: "captcha", Key: "timeout", Value: "60"}))
	require.NoError(t, s.SetGuildSetting(ctx, database.GuildSetting{GuildID: "g1", Cog: "roomer", Key: "name", Value: `"Room"`}))

	got, err := s.GetGuildSettings(ctx, "captcha", "g1")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"toggle": "true"}, got)

	all, err := s.GetAllGuildSettings(ctx, "captcha")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, s.ClearGuildSetting(ctx, "captcha", "g1", "toggle"))
	assert.ErrorIs(t, s.ClearGuildSetting(ctx, "captcha", "g1", "toggle"), sql.ErrNoRows)

	require.NoError(t, s.ClearGuildSettings(ctx, "captcha", "g2"))
	all, err = s.GetAllGuildSettings(ctx, "captcha")
	require.NoError(t, err)
	assert.Empty(t, all["g2"])

	roomer, err := s.GetGuildSettings(ctx, "roomer", "g1")
	require.NoError(t, err)
	assert.Equal(t, `"Room"`, roomer["name"])
}

func TestEvents(t *testing.T) {
	s := New()

	ev, err := s.AddCogEvent(context.Background(), database.CogEvent{GuildID: "g1", Type: "captcha_passed"})
	require.NoError(t, err)
	assert.Equal(t, 1, ev.ID)
	assert.Len(t, s.Events(), 1)
}
