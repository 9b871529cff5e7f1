package postgres

import (
	"context"

	"github.com/devusSs/warden/internal/database"
	"github.com/devusSs/warden/internal/database/postgres/statements"
)

func (p *psql) AddCogEvent(ctx context.Context, event database.CogEvent) (database.CogEvent, error) {
	row := p.db.QueryRowContext(ctx, statements.AddEvent, event.GuildID, event.Type, event.Data, event.Timestamp)

	err := row.Scan(&event.ID)

	return event, err
}
