package types

type EventType string

const (
	CaptchaIssued   EventType = "captcha_issued"
	CaptchaPassed   EventType = "captcha_passed"
	CaptchaFailed   EventType = "captcha_failed"
	CaptchaExpired  EventType = "captcha_expired"
	CaptchaDeparted EventType = "captcha_departed"
	CaptchaDisabled EventType = "captcha_disabled"

	RoomCreated EventType = "room_created"
	RoomDeleted EventType = "room_deleted"
	RoomClaimed EventType = "room_claimed"
	RoomPreset  EventType = "room_preset"

	SettingChanged EventType = "setting_changed"
)

type CaptchaEvent struct {
	UserID string `json:"user_id"`
	// ULID of the challenge, empty for events outside of a challenge.
	ChallengeID string `json:"challenge_id,omitempty"`
}

type RoomEvent struct {
	ChannelID string `json:"channel_id"`
	OwnerID   string `json:"owner_id"`
	// Previous owner on claims, preset name on preset events.
	Detail string `json:"detail,omitempty"`
}

type SettingEvent struct {
	Issuer string `json:"issuer"`
	Cog    string `json:"cog"`
	Key    string `json:"key"`
}
