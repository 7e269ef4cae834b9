package worldclock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/aethelgard/internal/kernelerr"
)

func TestAdvanceAndAdvanceBy(t *testing.T) {
	c := New()
	c.Advance()
	assert.Equal(t, uint64(1), c.CurrentTick())

	require.NoError(t, c.AdvanceBy(10))
	assert.Equal(t, uint64(11), c.CurrentTick())

	err := c.AdvanceBy(-1)
	assert.ErrorIs(t, err, kernelerr.ErrNegativeAdvance)
}

func TestSetTickRejectsNegativeButAllowsRewind(t *testing.T) {
	c := New()
	require.NoError(t, c.SetTick(100))
	assert.Equal(t, uint64(100), c.CurrentTick())

	require.NoError(t, c.SetTick(10)) // rewinding is explicitly allowed via SetTick
	assert.Equal(t, uint64(10), c.CurrentTick())

	err := c.SetTick(-1)
	assert.ErrorIs(t, err, kernelerr.ErrNegativeTick)
}

func TestResetReturnsToZero(t *testing.T) {
	c := New()
	require.NoError(t, c.SetTick(500))
	c.Reset()
	assert.Equal(t, uint64(0), c.CurrentTick())
}

func TestPeriodBoundaries(t *testing.T) {
	c := New()
	require.NoError(t, c.SetTick(Weekly))
	assert.True(t, c.IsNewWeek())
	require.NoError(t, c.SetTick(Weekly + 1))
	assert.False(t, c.IsNewWeek())

	require.NoError(t, c.SetTick(Annual * 3))
	assert.True(t, c.IsNewYear())
	assert.Equal(t, uint64(3), c.GetElapsedYears())

	require.NoError(t, c.SetTick(Decadal * 2))
	assert.True(t, c.IsNewDecade())
	assert.Equal(t, uint64(2), c.GetElapsedDecades())
}

func TestCalendarAtConversion(t *testing.T) {
	assert.Equal(t, Calendar{Year: 1, Month: 1, Day: 1}, CalendarAt(0))
	assert.Equal(t, Calendar{Year: 1, Month: 1, Day: 30}, CalendarAt(29))
	assert.Equal(t, Calendar{Year: 1, Month: 2, Day: 1}, CalendarAt(30))
	assert.Equal(t, Calendar{Year: 2, Month: 1, Day: 1}, CalendarAt(360))
}

func TestCalendarStringFormat(t *testing.T) {
	cal := CalendarAt(0)
	assert.Equal(t, "Year 1, Month 1 Day 1", cal.String())
}
