package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoveStringFromSlice(t *testing.T) {
	in := []string{"a", "b", "c"}

	out, err := RemoveStringFromSlice(in, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, out)
	assert.Equal(t, []string{"a", "b", "c"}, in)

	_, err = RemoveStringFromSlice(in, 3)
	assert.Error(t, err)
}

func TestRemoveString(t *testing.T) {
	out, ok := RemoveString([]string{"1", "2"}, "2")
	assert.True(t, ok)
	assert.Equal(t, []string{"1"}, out)

	out, ok = RemoveString([]string{"1"}, "3")
	assert.False(t, ok)
	assert.Equal(t, []string{"1"}, out)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("  abc  ", 10))
	assert.Equal(t, "äb", Truncate("äbc", 2))
}
