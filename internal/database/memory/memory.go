// Package memory keeps settings and events in process memory.
//
// Used by tests and by the -memory flag, everything is lost on exit.
package memory

import (
	"context"
	"database/sql"
	"sync"

	"github.com/devusSs/warden/internal/database"
)

type store struct {
	mu       sync.RWMutex
	nextID   int
	settings map[string]map[string]map[string]string // cog => guild => key => value
	events   []database.CogEvent
}

// Store is the in-memory database.Service. Events returns everything recorded so far.
type Store interface {
	database.Service
	Events() []database.CogEvent
}

func New() Store {
	return &store{settings: map[string]map[string]map[string]string{}}
}

func (s *store) Ping() error    { return nil }
func (s *store) Close() error   { return nil }
func (s *store) Migrate() error { return nil }

func (s *store) GetGuildSettings(_ context.Context, cog, guildID string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := map[string]string{}
	for k, v := range s.settings[cog][guildID] {
		out[k] = v
	}
	return out, nil
}

func (s *store) GetAllGuildSettings(_ context.Context, cog string) (map[string]map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := map[string]map[string]string{}
	for guildID, values := range s.settings[cog] {
		out[guildID] = map[string]string{}
		for k, v := range values {
			out[guildID][k] = v
		}
	}
	return out, nil
}

func (s *store) SetGuildSetting(_ context.Context, setting database.GuildSetting) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.settings[setting.Cog] == nil {
		s.settings[setting.Cog] = map[string]map[string]string{}
	}
	if s.settings[setting.Cog][setting.GuildID] == nil {
		s.settings[setting.Cog][setting.GuildID] = map[string]string{}
	}
	s.settings[setting.Cog][setting.GuildID][setting.Key] = setting.Value
	return nil
}

func (s *store) ClearGuildSetting(_ context.Context, cog, guildID, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.settings[cog][guildID][key]; !ok {
		return sql.ErrNoRows
	}
	delete(s.settings[cog][guildID], key)
	return nil
}

func (s *store) ClearGuildSettings(_ context.Context, cog, guildID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.settings[cog], guildID)
	return nil
}

func (s *store) AddCogEvent(_ context.Context, event database.CogEvent) (database.CogEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	event.ID = s.nextID
	s.events = append(s.events, event)
	return event, nil
}

func (s *store) Events() []database.CogEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]database.CogEvent(nil), s.events...)
}
