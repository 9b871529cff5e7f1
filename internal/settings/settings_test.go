package settings

import (
	"context"
	"testing"

	"github.com/devusSs/warden/internal/database"
	"github.com/devusSs/warden/internal/database/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testDefaults struct {
	Toggle  bool   `json:"toggle"`
	Timeout int    `json:"timeout"`
	Channel string `json:"channel"`
}

func newStore(t *testing.T) (*Store, memory.Store) {
	t.Helper()
	db := memory.New()
	s, err := New(db, "captcha", testDefaults{Timeout: 120})
	require.NoError(t, err)
	return s, db
}

func TestGetFallsBackToDefaults(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	var timeout int
	require.NoError(t, s.Guild("g1").Get(ctx, "timeout", &timeout))
	assert.Equal(t, 120, timeout)

	var missing string
	assert.ErrorIs(t, s.Guild("g1").Get(ctx, "nope", &missing), ErrUnknownKey)
}

func TestSetClearAndLoad(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	g := s.Guild("g1")

	require.NoError(t, g.Set(ctx, "timeout", 60))
	require.NoError(t, g.Set(ctx, "toggle", true))

	var cfg testDefaults
	require.NoError(t, g.Load(ctx, &cfg))
	assert.Equal(t, testDefaults{Toggle: true, Timeout: 60}, cfg)

	require.NoError(t, g.Clear(ctx, "timeout"))
	require.NoError(t, g.Clear(ctx, "timeout"))

	require.NoError(t, g.Load(ctx, &cfg))
	assert.Equal(t, 120, cfg.Timeout)
	assert.True(t, cfg.Toggle)

	require.NoError(t, g.ClearAll(ctx))
	cfg = testDefaults{}
	require.NoError(t, g.Load(ctx, &cfg))
	assert.Equal(t, testDefaults{Timeout: 120}, cfg)
}

func TestRawKeysOutsideDefaults(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	type deployed struct {
		ChannelID string `json:"channel_id"`
		MessageID string `json:"message_id"`
	}

	require.NoError(t, s.Guild("g1").Set(ctx, "captcha_message", deployed{"c", "m"}))

	var got deployed
	require.NoError(t, s.Guild("g1").Get(ctx, "captcha_message", &got))
	assert.Equal(t, deployed{"c", "m"}, got)
}

func TestWarmLoadsEveryGuild(t *testing.T) {
	s, db := newStore(t)
	ctx := context.Background()

	require.NoError(t, db.SetGuildSetting(ctx, database.GuildSetting{GuildID: "g2", Cog: "captcha", Key: "timeout", Value: "75"}))
	require.NoError(t, s.Warm(ctx))

	var timeout int
	require.NoError(t, s.Guild("g2").Get(ctx, "timeout", &timeout))
	assert.Equal(t, 75, timeout)

	// Written behind the store's back after warm-up, so the cache wins.
	require.NoError(t, db.SetGuildSetting(ctx, database.GuildSetting{GuildID: "g3", Cog: "captcha", Key: "timeout", Value: "90"}))
	require.NoError(t, s.Guild("g3").Get(ctx, "timeout", &timeout))
	assert.Equal(t, 120, timeout)
}

func TestNewRejectsNonObjectDefaults(t *testing.T) {
	_, err := New(memory.New(), "broken", []string{"a"})
	assert.Error(t, err)
}

func TestRawRoundTrip(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	g := s.Guild("g1")

	_, ok, err := g.Raw(ctx, "captcha_message")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, g.SetRaw(ctx, "captcha_message", []byte(`{"channel_id":"1","message_id":"2"}`)))

	raw, ok, err := g.Raw(ctx, "captcha_message")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"channel_id":"1","message_id":"2"}`, string(raw))
}
