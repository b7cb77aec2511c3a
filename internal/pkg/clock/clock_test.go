package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOffset(t *testing.T) {
	cases := []struct {
		input   string
		seconds int
	}{
		{"+09:00", 9 * 3600},
		{"-05:30", -(5*3600 + 30*60)},
		{"+7", 7 * 3600},
		{"", 0},
		{"Z", 0},
	}
	for _, c := range cases {
		loc, err := ParseOffset("", c.input)
		require.NoError(t, err, c.input)
		_, offset := time.Date(2024, 1, 1, 0, 0, 0, 0, loc).Zone()
		assert.Equal(t, c.seconds, offset, c.input)
	}
}

func TestParseOffset_Invalid(t *testing.T) {
	for _, input := range []string{"+ab:00", "+15:00", "+09:75"} {
		_, err := ParseOffset("", input)
		assert.Error(t, err, input)
	}
}

func TestBusinessClock_UsesLocation(t *testing.T) {
	loc := time.FixedZone("JST", 9*3600)
	c := NewBusinessClock(loc)

	assert.Equal(t, loc, c.Location())
	assert.Equal(t, loc, c.Now().Location())
}

func TestFixedClock(t *testing.T) {
	at := time.Date(2024, 3, 10, 2, 0, 0, 0, time.FixedZone("JST", 9*3600))
	c := FixedClock{At: at}

	assert.True(t, c.Now().Equal(at))
	assert.Equal(t, at.Location(), c.Location())
}
