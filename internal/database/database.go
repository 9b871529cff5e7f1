package database

import (
	"context"
	"time"

	"github.com/devusSs/warden/internal/bot/types"
)

// Service layer for the settings and event store.
type Service interface {
	Ping() error
	Close() error
	Migrate() error

	// Returns key => json value of every stored setting of a cog in a guild.
	GetGuildSettings(ctx context.Context, cog, guildID string) (map[string]string, error)
	// Returns guild id => key => json value of every stored setting of a cog.
	GetAllGuildSettings(ctx context.Context, cog string) (map[string]map[string]string, error)
	SetGuildSetting(ctx context.Context, setting GuildSetting) error
	// Returns sql.ErrNoRows if the key was not stored.
	ClearGuildSetting(ctx context.Context, cog, guildID, key string) error
	ClearGuildSettings(ctx context.Context, cog, guildID string) error

	AddCogEvent(ctx context.Context, event CogEvent) (CogEvent, error)
}

// Model for a single guild scoped setting of a cog. Value is json encoded.
type GuildSetting struct {
	ID      int       `db:"id"`
	GuildID string    `db:"guild_id"`
	Cog     string    `db:"cog"`
	Key     string    `db:"key"`
	Value   string    `db:"value"`
	SetTime time.Time `db:"set"`
}

// Model for cog events like captcha passed, room created, room claimed, ...
//
// Check the internal/bot/types/event.go file for more information.
type CogEvent struct {
	ID        int             `db:"id"`
	GuildID   string          `db:"guild_id"`
	Type      types.EventType `db:"event_type"`
	Data      string          `db:"event_data"`
	Timestamp time.Time       `db:"event_time"`
}
