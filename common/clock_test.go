package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClock_Rates(t *testing.T) {
	_, err := NewClock(0, 60)
	assert.Error(t, err)
	_, err = NewClock(700, -1)
	assert.Error(t, err)

	c, err := NewClock(700, 60)
	require.NoError(t, err)
	assert.Equal(t, time.Second/60, c.FramePeriod())
}

func TestClock_Advance(t *testing.T) {
	assert := assert.New(t)

	c, err := NewClock(700, 60)
	require.NoError(t, err)

	cycles, ticks := c.Advance(100 * time.Millisecond)
	assert.Equal(70, cycles)
	assert.Equal(6, ticks)
}

func TestClock_CarriesRemainder(t *testing.T) {
	assert := assert.New(t)

	c, err := NewClock(700, 60)
	require.NoError(t, err)

	var cycles, ticks int
	for i := 0; i < 10; i++ {
		n, m := c.Advance(10 * time.Millisecond)
		cycles += n
		ticks += m
	}
	assert.Equal(70, cycles)
	assert.Equal(6, ticks)
}

func TestClock_CapsBacklog(t *testing.T) {
	assert := assert.New(t)

	c, err := NewClock(700, 60)
	require.NoError(t, err)

	cycles, ticks := c.Advance(time.Hour)
	assert.Equal(175, cycles)
	assert.Equal(15, ticks)

	cycles, ticks = c.Advance(-time.Second)
	assert.Equal(0, cycles)
	assert.Equal(0, ticks)
}
