package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSystemClock(t *testing.T) {
	before := time.Now()
	now := System().Now()
	after := time.Now()

	assert.False(t, now.Before(before))
	assert.False(t, now.After(after))
}

func TestFixedClock(t *testing.T) {
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	clk := &Fixed{Time: start}

	assert.Equal(t, start, clk.Now())

	clk.Advance(15 * time.Minute)
	assert.Equal(t, start.Add(15*time.Minute), clk.Now())

	// 重复读取不会推进时间
	assert.Equal(t, clk.Now(), clk.Now())
}
