package scraper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthFloor(t *testing.T) {
	ts := time.Date(2021, 11, 17, 13, 45, 12, 0, time.UTC)
	assert.Equal(t, time.Date(2021, 11, 1, 0, 0, 0, 0, time.UTC), monthFloor(ts))
}

func TestAddMonthsRollsOverYear(t *testing.T) {
	nov := time.Date(2021, 11, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC), addMonths(nov, 2))
}

func TestMonthWindows(t *testing.T) {
	start := time.Date(2021, 11, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2022, 4, 15, 6, 0, 0, 0, time.UTC)

	windows := monthWindows(start, end, 2)
	require.Len(t, windows, 3)

	assert.Equal(t, start, windows[0].Start)
	assert.Equal(t, time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC), windows[0].End)
	assert.Equal(t, windows[0].End, windows[1].Start)
	assert.Equal(t, time.Date(2022, 3, 1, 0, 0, 0, 0, time.UTC), windows[1].End)

	// Last window is clamped to the overall end
	assert.Equal(t, end, windows[2].End)
}

func TestMonthWindowsContiguous(t *testing.T) {
	start := time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2012, 1, 1, 0, 0, 0, 0, time.UTC)

	windows := monthWindows(start, end, 2)
	require.Len(t, windows, 12)
	for i := 1; i < len(windows); i++ {
		assert.Equal(t, windows[i-1].End, windows[i].Start)
	}
}

func TestMonthWindowsEmptyRange(t *testing.T) {
	now := time.Now()
	assert.Nil(t, monthWindows(now, now, 2))
	assert.Nil(t, monthWindows(now, now.Add(-time.Hour), 2))
	assert.Nil(t, monthWindows(now, now.Add(time.Hour), 0))
}
