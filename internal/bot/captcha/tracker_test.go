package captcha

import (
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type expiries struct {
	mu  sync.Mutex
	got []Challenge
}

func (e *expiries) record(c Challenge) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.got = append(e.got, c)
}

func (e *expiries) len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.got)
}

func TestGenerateCode(t *testing.T) {
	for i := 0; i < 500; i++ {
		code, err := GenerateCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		for _, r := range code {
			require.True(t, r >= 'A' && r <= 'Z', "unexpected rune %q in %s", r, code)
		}
	}
}

func TestResolveMatchesOnce(t *testing.T) {
	tr := NewTracker(clock.NewMock(), nil)

	c, superseded, err := tr.Issue("u1", "g", "chan", 120*time.Second)
	require.NoError(t, err)
	assert.Nil(t, superseded)
	assert.Equal(t, 1, tr.Len())

	result, resolved := tr.Resolve("u1", "  "+lower(c.Code)+"\n")
	assert.Equal(t, Match, result)
	assert.Equal(t, c.ID, resolved.ID)

	result, _ = tr.Resolve("u1", c.Code)
	assert.Equal(t, NoChallenge, result)
	assert.Equal(t, 0, tr.Len())
}

func TestResolveMismatchEndsChallenge(t *testing.T) {
	tr := NewTracker(clock.NewMock(), nil)

	_, _, err := tr.Issue("u1", "g", "chan", time.Minute)
	require.NoError(t, err)

	result, _ := tr.Resolve("u1", "nope")
	assert.Equal(t, Mismatch, result)

	result, _ = tr.Resolve("u1", "nope")
	assert.Equal(t, NoChallenge, result)
}

func TestResolveAfterDeadlineIsExpired(t *testing.T) {
	mock := clock.NewMock()
	var exp expiries
	tr := NewTracker(mock, exp.record)

	c, _, err := tr.Issue("u1", "g", "chan", 120*time.Second)
	require.NoError(t, err)

	// Timer delayed past the deadline, the answer arrives first.
	tr.mu.Lock()
	tr.challenges["u1"].timer.Stop()
	tr.mu.Unlock()
	mock.Add(121 * time.Second)

	result, _ := tr.Resolve("u1", c.Code)
	assert.Equal(t, Expired, result)
	assert.Equal(t, 0, exp.len())
}

func TestExpiryFiresExactlyOnce(t *testing.T) {
	mock := clock.NewMock()
	var exp expiries
	tr := NewTracker(mock, exp.record)

	c, _, err := tr.Issue("u1", "g", "chan", 120*time.Second)
	require.NoError(t, err)

	mock.Add(119 * time.Second)
	assert.Equal(t, 0, exp.len())

	mock.Add(time.Second)
	require.Eventually(t, func() bool { return exp.len() == 1 }, time.Second, 5*time.Millisecond)

	mock.Add(10 * time.Minute)
	assert.Equal(t, 1, exp.len())
	assert.Equal(t, c.ID, exp.got[0].ID)
	assert.Equal(t, 0, tr.Len())

	result, _ := tr.Resolve("u1", c.Code)
	assert.Equal(t, NoChallenge, result)
}

func TestIssueSupersedesPreviousChallenge(t *testing.T) {
	mock := clock.NewMock()
	var exp expiries
	tr := NewTracker(mock, exp.record)

	first, _, err := tr.Issue("u1", "g", "chan", 60*time.Second)
	require.NoError(t, err)

	mock.Add(30 * time.Second)
	second, superseded, err := tr.Issue("u1", "g", "chan", 60*time.Second)
	require.NoError(t, err)
	require.NotNil(t, superseded)
	assert.Equal(t, first.ID, superseded.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 1, tr.Len())

	// The first timer would have fired here.
	mock.Add(30 * time.Second)
	assert.Equal(t, 0, exp.len())

	mock.Add(30 * time.Second)
	require.Eventually(t, func() bool { return exp.len() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, second.ID, exp.got[0].ID)
}

func TestCancelSkipsExpiry(t *testing.T) {
	mock := clock.NewMock()
	var exp expiries
	tr := NewTracker(mock, exp.record)

	_, _, err := tr.Issue("u1", "g", "chan", time.Minute)
	require.NoError(t, err)

	_, ok := tr.Cancel("u1")
	assert.True(t, ok)
	_, ok = tr.Cancel("u1")
	assert.False(t, ok)

	mock.Add(2 * time.Minute)
	assert.Equal(t, 0, exp.len())
}

func TestResolveIfKeepsRejectedChallenge(t *testing.T) {
	tr := NewTracker(clock.NewMock(), nil)

	c, _, err := tr.Issue("u1", "g", "chan", time.Minute)
	require.NoError(t, err)

	otherChannel := func(active Challenge) bool { return active.ChannelID == "elsewhere" }
	result, _ := tr.ResolveIf("u1", c.Code, otherChannel)
	assert.Equal(t, NoChallenge, result)
	assert.Equal(t, 1, tr.Len())

	result, resolved := tr.ResolveIf("u1", c.Code, func(active Challenge) bool { return active.ChannelID == "chan" })
	assert.Equal(t, Match, result)
	assert.Equal(t, c.ID, resolved.ID)
}

func TestStopReturnsDroppedChallenges(t *testing.T) {
	mock := clock.NewMock()
	var exp expiries
	tr := NewTracker(mock, exp.record)

	_, _, err := tr.Issue("u1", "g", "chan", time.Minute)
	require.NoError(t, err)
	_, _, err = tr.Issue("u2", "g", "chan", time.Minute)
	require.NoError(t, err)

	dropped := tr.Stop()
	require.Len(t, dropped, 2)
	users := []string{dropped[0].UserID, dropped[1].UserID}
	assert.ElementsMatch(t, []string{"u1", "u2"}, users)
	assert.Equal(t, 0, tr.Len())
	assert.Empty(t, tr.Stop())

	mock.Add(2 * time.Minute)
	assert.Equal(t, 0, exp.len())
}
