package roomer

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/bwmarrin/discordgo"
	"github.com/oklog/ulid/v2"
)

var (
	ErrNotRoom      = errors.New("channel is not a temporary room")
	ErrAlreadyOwner = errors.New("already the owner of the room")
	ErrOwnerPresent = errors.New("the owner is still in the room")
)

// Room is a temporary voice channel and its owner.
type Room struct {
	ID        ulid.ULID
	ChannelID string
	GuildID   string
	OwnerID   string
	// Overwrites the room was created with, without the owner's.
	Template  []*discordgo.PermissionOverwrite
	CreatedAt time.Time

	deletion *clock.Timer
	gen      int
}

// Store tracks room ownership and pending deletions. Every transition is
// done under one lock, deletion timers are cancelled when a room is removed
// or its deletion is called off.
type Store struct {
	clock clock.Clock

	mu    sync.Mutex
	rooms map[string]*Room
}

func NewStore(c clock.Clock) *Store {
	return &Store{clock: c, rooms: map[string]*Room{}}
}

func copyOverwrites(in []*discordgo.PermissionOverwrite) []*discordgo.PermissionOverwrite {
	out := make([]*discordgo.PermissionOverwrite, 0, len(in))
	for _, ow := range in {
		cp := *ow
		out = append(out, &cp)
	}
	return out
}

func (s *Store) Create(channelID, guildID, ownerID string, template []*discordgo.PermissionOverwrite) Room {
	now := s.clock.Now()
	r := &Room{
		ID:        ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()),
		ChannelID: channelID,
		GuildID:   guildID,
		OwnerID:   ownerID,
		Template:  copyOverwrites(template),
		CreatedAt: now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.rooms[channelID]; ok && old.deletion != nil {
		old.deletion.Stop()
	}
	s.rooms[channelID] = r

	return *r
}

func (s *Store) Get(channelID string) (Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[channelID]
	if !ok {
		return Room{}, false
	}
	return *r, true
}

func (s *Store) Owner(channelID string) (string, bool) {
	r, ok := s.Get(channelID)
	return r.OwnerID, ok
}

// Makes claimant the owner unless the current owner is still present.
// Returns the previous owner.
func (s *Store) Claim(channelID, claimant string, present func(ownerID string) bool) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[channelID]
	if !ok {
		return "", ErrNotRoom
	}
	if r.OwnerID == claimant {
		return "", ErrAlreadyOwner
	}
	if present(r.OwnerID) {
		return "", ErrOwnerPresent
	}

	previous := r.OwnerID
	r.OwnerID = claimant

	return previous, nil
}

// Runs fn with the room after d unless cancelled. Replaces a pending deletion.
func (s *Store) ScheduleDeletion(channelID string, d time.Duration, fn func(Room)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[channelID]
	if !ok {
		return false
	}

	if r.deletion != nil {
		r.deletion.Stop()
	}
	r.gen++
	gen := r.gen
	r.deletion = s.clock.AfterFunc(d, func() { s.fire(channelID, gen, fn) })

	return true
}

func (s *Store) fire(channelID string, gen int, fn func(Room)) {
	s.mu.Lock()
	r, ok := s.rooms[channelID]
	if !ok || r.gen != gen || r.deletion == nil {
		s.mu.Unlock()
		return
	}
	r.deletion = nil
	room := *r
	s.mu.Unlock()

	fn(room)
}

// Reports whether a pending deletion was called off.
func (s *Store) CancelDeletion(channelID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[channelID]
	if !ok || r.deletion == nil {
		return false
	}
	r.deletion.Stop()
	r.deletion = nil
	r.gen++

	return true
}

func (s *Store) DeletionPending(channelID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[channelID]
	return ok && r.deletion != nil
}

func (s *Store) Remove(channelID string) (Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[channelID]
	if !ok {
		return Room{}, false
	}
	if r.deletion != nil {
		r.deletion.Stop()
	}
	delete(s.rooms, channelID)

	return *r, true
}

// All rooms ordered by creation.
func (s *Store) Rooms() []Room {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Compare(out[j].ID) < 0 })
	return out
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rooms)
}

// Stops every deletion timer, rooms stay known.
func (s *Store) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.rooms {
		if r.deletion != nil {
			r.deletion.Stop()
			r.deletion = nil
		}
	}
}
