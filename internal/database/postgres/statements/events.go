package statements

const (
	AddEvent = `
		INSERT INTO cog_events (guild_id, event_type, event_data, event_time) 
		VALUES ($1, $2, $3, $4) RETURNING id;
	`
)
