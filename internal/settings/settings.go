// Package settings is the guild scoped configuration store shared by the cogs.
//
// Every cog owns one Store. Values are json encoded, keys without a stored
// value fall back to the defaults the cog registered.
package settings

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/devusSs/warden/internal/database"
)

// Returned by Get for keys which are neither stored nor registered as default.
var ErrUnknownKey = errors.New("unknown settings key")

type Store struct {
	svc      database.Service
	cog      string
	defaults map[string]json.RawMessage

	mu    sync.RWMutex
	warm  bool
	cache map[string]map[string]string
}

// Registers a store for cog. defaults must marshal to a json object, its keys
// become the known settings keys.
func New(svc database.Service, cog string, defaults interface{}) (*Store, error) {
	raw, err := json.Marshal(defaults)
	if err != nil {
		return nil, fmt.Errorf("marshal %s defaults: %w", cog, err)
	}

	d := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("%s defaults are not an object: %w", cog, err)
	}

	return &Store{
		svc:      svc,
		cog:      cog,
		defaults: d,
		cache:    map[string]map[string]string{},
	}, nil
}

func (s *Store) Cog() string {
	return s.cog
}

// Loads the stored settings of every guild into memory.
//
// Guilds without stored settings are not queried again afterwards.
func (s *Store) Warm(ctx context.Context) error {
	all, err := s.svc.GetAllGuildSettings(ctx, s.cog)
	if err != nil {
		return fmt.Errorf("load %s settings: %w", s.cog, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache = all
	s.warm = true

	return nil
}

func (s *Store) Guild(guildID string) *Guild {
	return &Guild{store: s, id: guildID}
}

// Guild is the settings view of a single guild.
type Guild struct {
	store *Store
	id    string
}

func (g *Guild) ID() string {
	return g.id
}

func (g *Guild) values(ctx context.Context) (map[string]string, error) {
	s := g.store

	s.mu.RLock()
	cached, ok := s.cache[g.id]
	warm := s.warm
	s.mu.RUnlock()

	if !ok && !warm {
		stored, err := s.svc.GetGuildSettings(ctx, s.cog, g.id)
		if err != nil {
			return nil, fmt.Errorf("load %s settings of guild %s: %w", s.cog, g.id, err)
		}

		s.mu.Lock()
		if _, raced := s.cache[g.id]; !raced {
			s.cache[g.id] = stored
		}
		cached = s.cache[g.id]
		s.mu.Unlock()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string, len(cached))
	for k, v := range cached {
		out[k] = v
	}
	return out, nil
}

// Decodes the value of key into out.
func (g *Guild) Get(ctx context.Context, key string, out interface{}) error {
	values, err := g.values(ctx)
	if err != nil {
		return err
	}

	if v, ok := values[key]; ok {
		return json.Unmarshal([]byte(v), out)
	}

	if d, ok := g.store.defaults[key]; ok {
		return json.Unmarshal(d, out)
	}

	return fmt.Errorf("%s: %w", key, ErrUnknownKey)
}

// Stores v for key. Keys outside the defaults are allowed.
func (g *Guild) Set(ctx context.Context, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}

	if _, err := g.values(ctx); err != nil {
		return err
	}

	s := g.store
	if err := s.svc.SetGuildSetting(ctx, database.GuildSetting{
		GuildID: g.id,
		Cog:     s.cog,
		Key:     key,
		Value:   string(raw),
		SetTime: time.Now(),
	}); err != nil {
		return fmt.Errorf("store %s: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cache[g.id] == nil {
		s.cache[g.id] = map[string]string{}
	}
	s.cache[g.id][key] = string(raw)

	return nil
}

// Resets key to its default.
func (g *Guild) Clear(ctx context.Context, key string) error {
	s := g.store
	if err := s.svc.ClearGuildSetting(ctx, s.cog, g.id, key); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("clear %s: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.cache[g.id], key)

	return nil
}

// Resets every key of the guild to its default.
func (g *Guild) ClearAll(ctx context.Context) error {
	s := g.store
	if err := s.svc.ClearGuildSettings(ctx, s.cog, g.id); err != nil {
		return fmt.Errorf("clear %s settings: %w", s.cog, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache[g.id] = map[string]string{}

	return nil
}

// Decodes the defaults merged with every stored value into out.
func (g *Guild) Load(ctx context.Context, out interface{}) error {
	values, err := g.values(ctx)
	if err != nil {
		return err
	}

	merged := make(map[string]json.RawMessage, len(g.store.defaults)+len(values))
	for k, v := range g.store.defaults {
		merged[k] = v
	}
	for k, v := range values {
		merged[k] = json.RawMessage(v)
	}

	raw, err := json.Marshal(merged)
	if err != nil {
		return err
	}

	return json.Unmarshal(raw, out)
}

// Returns the stored json of a key outside the defaults, ok is false if unset.
func (g *Guild) Raw(ctx context.Context, key string) (json.RawMessage, bool, error) {
	values, err := g.values(ctx)
	if err != nil {
		return nil, false, err
	}

	v, ok := values[key]
	if !ok {
		return nil, false, nil
	}
	return json.RawMessage(v), true, nil
}

func (g *Guild) SetRaw(ctx context.Context, key string, raw json.RawMessage) error {
	return g.Set(ctx, key, raw)
}
