package captcha

const (
	keyToggle        = "toggle"
	keyChannel       = "channel"
	keyTimeout       = "timeout"
	keyTries         = "tries"
	keyRoleBefore    = "role_before_captcha"
	keyRoleAfter     = "role_after_captcha"
	keyMessageBefore = "message_before_captcha"
	keyMessageAfter  = "message_after_captcha"
	keyEmbedText     = "embed_text"

	// Stored outside the defaults once the verify message is deployed.
	keyDeployed = "captcha_message"
)

// GuildConfig is the captcha configuration of one guild.
type GuildConfig struct {
	Toggle        bool   `json:"toggle"`
	Channel       string `json:"channel"`
	Timeout       int    `json:"timeout"` // seconds
	Tries         int    `json:"tries"`   // shown only, one answer per challenge
	RoleBefore    string `json:"role_before_captcha"`
	RoleAfter     string `json:"role_after_captcha"`
	MessageBefore string `json:"message_before_captcha"`
	MessageAfter  string `json:"message_after_captcha"`
	EmbedText     string `json:"embed_text"`
}

func Defaults() GuildConfig {
	return GuildConfig{
		Timeout:       120,
		Tries:         3,
		MessageBefore: "{mention}, please solve the captcha below.",
		MessageAfter:  "✅ {mention}, you passed the captcha!",
		EmbedText:     "Click the green button below to verify.",
	}
}

type deployedMessage struct {
	ChannelID string `json:"channel_id"`
	MessageID string `json:"message_id"`
}
