package roomer

const (
	keyAutoEnabled  = "auto_enabled"
	keyAutoChannels = "auto_channels"
	keyName         = "name"
	keyUserLimit    = "user_limit"
	keyPresets      = "presets"

	maxUserLimit = 99
)

// Preset is a named bundle applied to a room at once.
type Preset struct {
	Title  string `json:"title"`
	Status string `json:"status"`
	Limit  int    `json:"limit"`
}

// GuildConfig is the roomer configuration of one guild.
type GuildConfig struct {
	AutoEnabled bool `json:"auto_enabled"`
	// Join-to-create voice channels.
	AutoChannels []string          `json:"auto_channels"`
	Name         string            `json:"name"`
	UserLimit    int               `json:"user_limit"` // 0 is unlimited
	Presets      map[string]Preset `json:"presets"`
}

func Defaults() GuildConfig {
	return GuildConfig{
		AutoChannels: []string{},
		Name:         "Voice Room",
		Presets:      map[string]Preset{},
	}
}

// Clamps a user limit into what Discord accepts, 0 removes the limit.
func ClampLimit(n int) int {
	switch {
	case n < 0:
		return 0
	case n > maxUserLimit:
		return maxUserLimit
	default:
		return n
	}
}
