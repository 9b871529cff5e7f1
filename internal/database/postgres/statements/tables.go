package statements

const (
	CreateGuildSettingsTable = `
		CREATE TABLE IF NOT EXISTS guild_settings (
			id bigserial,
			guild_id text NOT NULL,
			cog text NOT NULL,
			key text NOT NULL,
			value jsonb NOT NULL,
			set timestamp NOT NULL,
			UNIQUE (guild_id, cog, key)
		);
	`

	CreateCogEventsTable = `
		CREATE TABLE IF NOT EXISTS cog_events (
			id bigserial,
			guild_id text NOT NULL,
			event_type text NOT NULL,
			event_data text NOT NULL,
			event_time timestamp NOT NULL
		);
	`

	CreateCogEventsIndex = `
		CREATE INDEX IF NOT EXISTS cog_events_guild_type ON cog_events (guild_id, event_type);
	`
)
