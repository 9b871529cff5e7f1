package captcha

import (
	"crypto/rand"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/oklog/ulid/v2"
)

const (
	codeLength   = 6
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// Result of comparing an answer with the active challenge.
type Result int

const (
	NoChallenge Result = iota
	Match
	Mismatch
	Expired
)

func (r Result) String() string {
	switch r {
	case Match:
		return "match"
	case Mismatch:
		return "mismatch"
	case Expired:
		return "expired"
	default:
		return "no challenge"
	}
}

// Challenge is the verification a user has to answer.
type Challenge struct {
	ID        ulid.ULID
	UserID    string
	GuildID   string
	ChannelID string
	Code      string
	CreatedAt time.Time
	ExpiresAt time.Time

	timer *clock.Timer
}

// Tracker holds at most one challenge per user.
//
// Every challenge owns an expiry timer. onExpire runs on the timer goroutine,
// only for the challenge the timer was started for and only if nothing
// resolved or replaced it before.
type Tracker struct {
	clock    clock.Clock
	onExpire func(Challenge)

	mu         sync.Mutex
	challenges map[string]*Challenge
}

func NewTracker(c clock.Clock, onExpire func(Challenge)) *Tracker {
	return &Tracker{
		clock:      c,
		onExpire:   onExpire,
		challenges: map[string]*Challenge{},
	}
}

// Generates a random code of six uppercase letters.
func GenerateCode() (string, error) {
	var sb strings.Builder
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := 0; i < codeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		sb.WriteByte(codeAlphabet[n.Int64()])
	}
	return sb.String(), nil
}

// Starts a new challenge for userID. An older challenge of the same user is
// cancelled and returned as superseded.
func (t *Tracker) Issue(userID, guildID, channelID string, timeout time.Duration) (Challenge, *Challenge, error) {
	code, err := GenerateCode()
	if err != nil {
		return Challenge{}, nil, err
	}

	now := t.clock.Now()
	c := &Challenge{
		ID:        ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()),
		UserID:    userID,
		GuildID:   guildID,
		ChannelID: channelID,
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(timeout),
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	var superseded *Challenge
	if old, ok := t.challenges[userID]; ok {
		old.timer.Stop()
		cp := *old
		superseded = &cp
	}

	id := c.ID
	c.timer = t.clock.AfterFunc(timeout, func() { t.expire(userID, id) })
	t.challenges[userID] = c

	return *c, superseded, nil
}

func (t *Tracker) expire(userID string, id ulid.ULID) {
	t.mu.Lock()
	c, ok := t.challenges[userID]
	if !ok || c.ID != id {
		t.mu.Unlock()
		return
	}
	delete(t.challenges, userID)
	t.mu.Unlock()

	if t.onExpire != nil {
		t.onExpire(*c)
	}
}

// Compares answer with the active challenge of userID and removes it.
//
// The comparison ignores case and surrounding whitespace. An overdue
// challenge yields Expired and its timer is stopped, the caller runs the
// expiry path itself.
func (t *Tracker) Resolve(userID, answer string) (Result, Challenge) {
	return t.ResolveIf(userID, answer, nil)
}

// Like Resolve, but only if accept reports true for the active challenge.
// Otherwise the challenge stays untouched and NoChallenge is returned.
func (t *Tracker) ResolveIf(userID, answer string, accept func(Challenge) bool) (Result, Challenge) {
	t.mu.Lock()
	defer t.mu.Unlock()

	c, ok := t.challenges[userID]
	if !ok || (accept != nil && !accept(*c)) {
		return NoChallenge, Challenge{}
	}
	delete(t.challenges, userID)
	c.timer.Stop()

	if !t.clock.Now().Before(c.ExpiresAt) {
		return Expired, *c
	}

	if strings.ToUpper(strings.TrimSpace(answer)) == c.Code {
		return Match, *c
	}
	return Mismatch, *c
}

// Drops the challenge of userID without running the expiry path.
func (t *Tracker) Cancel(userID string) (Challenge, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	c, ok := t.challenges[userID]
	if !ok {
		return Challenge{}, false
	}
	delete(t.challenges, userID)
	c.timer.Stop()

	return *c, true
}

func (t *Tracker) Active(userID string) (Challenge, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	c, ok := t.challenges[userID]
	if !ok {
		return Challenge{}, false
	}
	return *c, true
}

func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.challenges)
}

// Stops every timer and forgets all challenges. The dropped challenges are
// returned so the caller can clean up after them.
func (t *Tracker) Stop() []Challenge {
	t.mu.Lock()
	defer t.mu.Unlock()

	dropped := make([]Challenge, 0, len(t.challenges))
	for userID, c := range t.challenges {
		c.timer.Stop()
		dropped = append(dropped, *c)
		delete(t.challenges, userID)
	}
	return dropped
}
