package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/devusSs/warden/internal/database"
	"github.com/devusSs/warden/internal/database/postgres/statements"
	"github.com/devusSs/warden/internal/logging"
)

func (p *psql) GetGuildSettings(ctx context.Context, cog, guildID string) (map[string]string, error) {
	rows, err := p.db.QueryContext(ctx, statements.GetGuildSettings, cog, guildID)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	settings := map[string]string{}

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		settings[key] = value
	}

	return settings, rows.Err()
}

func (p *psql) GetAllGuildSettings(ctx context.Context, cog string) (map[string]map[string]string, error) {
	rows, err := p.db.QueryContext(ctx, statements.GetAllGuildSettings, cog)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	guilds := map[string]map[string]string{}

	for rows.Next() {
		var guildID, key, value string
		if err := rows.Scan(&guildID, &key, &value); err != nil {
			return nil, err
		}
		if guilds[guildID] == nil {
			guilds[guildID] = map[string]string{}
		}
		guilds[guildID][key] = value
	}

	return guilds, rows.Err()
}

func (p *psql) SetGuildSetting(ctx context.Context, setting database.GuildSetting) error {
	row := p.db.QueryRowContext(ctx, statements.UpsertGuildSetting, setting.GuildID, setting.Cog,
		setting.Key, setting.Value, setting.SetTime)

	return row.Scan(&setting.ID)
}

func (p *psql) ClearGuildSetting(ctx context.Context, cog, guildID, key string) error {
	res, err := p.db.ExecContext(ctx, statements.DeleteGuildSetting, cog, guildID, key)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return sql.ErrNoRows
	}
	if aff != 1 {
		return fmt.Errorf("error: multiple rows affected (%d)", aff)
	}
	return nil
}

func (p *psql) ClearGuildSettings(ctx context.Context, cog, guildID string) error {
	_, err := p.db.ExecContext(ctx, statements.DeleteGuildSettings, cog, guildID)
	return err
}

func closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		logging.WriteError(fmt.Sprintf("failed to close rows: %s", err.Error()))
	}
}
