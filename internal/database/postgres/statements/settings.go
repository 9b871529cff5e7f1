package statements

const (
	GetGuildSettings = `
		SELECT key, value FROM guild_settings WHERE cog = $1 AND guild_id = $2;
	`

	GetAllGuildSettings = `
		SELECT guild_id, key, value FROM guild_settings WHERE cog = $1;
	`

	UpsertGuildSetting = `
		INSERT INTO guild_settings (
			guild_id,
			cog,
			key,
			value,
			set
		) VALUES (
			$1,
			$2,
			$3,
			$4,
			$5
		)
		ON CONFLICT (guild_id, cog, key)
		DO UPDATE SET value = $4, set = $5
		RETURNING id;
	`

	DeleteGuildSetting = `
		DELETE FROM guild_settings WHERE cog = $1 AND guild_id = $2 AND key = $3;
	`

	DeleteGuildSettings = `
		DELETE FROM guild_settings WHERE cog = $1 AND guild_id = $2;
	`
)
