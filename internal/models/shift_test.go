package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClockAction_Valid(t *testing.T) {
	assert.True(t, ActionClock.Valid())
	assert.True(t, ActionBreak.Valid())
	assert.True(t, ActionEndShift.Valid())
	assert.False(t, ClockAction("").Valid())
	assert.False(t, ClockAction("teleport").Valid())
}

func TestShift_Active(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	open := &Shift{Start: start}
	assert.True(t, open.Active())

	closed := &Shift{Start: start, End: start.Add(8 * time.Hour)}
	assert.False(t, closed.Active())

	blank := &Shift{}
	assert.False(t, blank.Active())
}

func TestShift_Interval(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	shift := &Shift{Start: start, End: start.Add(8 * time.Hour), BreakMinutes: 45}

	iv := shift.Interval()
	assert.Equal(t, start, iv.Start)
	assert.Equal(t, start.Add(8*time.Hour), iv.End)
	assert.Equal(t, 45, iv.BreakMinutes)
}
