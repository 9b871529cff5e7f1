package captcha

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

type messageRef struct {
	ChannelID string
	MessageID string
}

type pendingEntry struct {
	refs  []messageRef
	timer *clock.Timer
	gen   int
}

// Pending remembers the transient messages of each user so they can be
// deleted together, either after a delay or at once.
type Pending struct {
	clock  clock.Clock
	delete func(userID string, refs []messageRef)

	mu      sync.Mutex
	entries map[string]*pendingEntry
	// Never reset, so a timer can't match an entry created after its own.
	seq int
}

func NewPending(c clock.Clock, del func(userID string, refs []messageRef)) *Pending {
	return &Pending{clock: c, delete: del, entries: map[string]*pendingEntry{}}
}

func (p *Pending) entry(userID string) *pendingEntry {
	e, ok := p.entries[userID]
	if !ok {
		e = &pendingEntry{}
		p.entries[userID] = e
	}
	return e
}

func (p *Pending) Track(userID, channelID, messageID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	e := p.entry(userID)
	e.refs = append(e.refs, messageRef{ChannelID: channelID, MessageID: messageID})
}

// Deletes the messages of userID after delay. Rescheduling replaces the
// previous timer, messages tracked until it fires are included.
func (p *Pending) Schedule(userID string, delay time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	e := p.entry(userID)
	if e.timer != nil {
		e.timer.Stop()
	}
	p.seq++
	e.gen = p.seq
	gen := e.gen
	e.timer = p.clock.AfterFunc(delay, func() { p.fire(userID, gen) })
}

func (p *Pending) fire(userID string, gen int) {
	p.mu.Lock()
	e, ok := p.entries[userID]
	if !ok || e.gen != gen {
		p.mu.Unlock()
		return
	}
	delete(p.entries, userID)
	p.mu.Unlock()

	p.delete(userID, e.refs)
}

// Deletes every tracked message of userID now.
func (p *Pending) Purge(userID string) {
	p.mu.Lock()
	e, ok := p.entries[userID]
	if ok {
		delete(p.entries, userID)
		if e.timer != nil {
			e.timer.Stop()
		}
	}
	p.mu.Unlock()

	if ok && len(e.refs) > 0 {
		p.delete(userID, e.refs)
	}
}

// Number of tracked messages of userID.
func (p *Pending) Len(userID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	if e, ok := p.entries[userID]; ok {
		return len(e.refs)
	}
	return 0
}

// Stops every timer without deleting anything.
func (p *Pending) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for userID, e := range p.entries {
		if e.timer != nil {
			e.timer.Stop()
		}
		delete(p.entries, userID)
	}
}
