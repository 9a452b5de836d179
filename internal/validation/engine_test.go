package validation

import (
	"testing"
	"time"
	"timeclock/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func interval(start, end time.Time, breakMinutes int) models.ShiftInterval {
	return models.ShiftInterval{Start: start, End: end, BreakMinutes: breakMinutes}
}

func at(hour, minute int) time.Time {
	return time.Date(2026, 3, 10, hour, minute, 0, 0, time.UTC)
}

func kinds(r Result) []models.WarningKind {
	out := make([]models.WarningKind, 0, len(r.Warnings))
	for _, w := range r.Warnings {
		out = append(out, w.Kind)
	}
	return out
}

func TestValidate_RegularShiftWithBreak(t *testing.T) {
	// 09:00-18:00 with 60min break
	r := Validate(interval(at(9, 0), at(18, 0), 60))

	assert.True(t, r.IsValid)
	assert.Empty(t, r.Warnings)
	assert.InDelta(t, 9.0, r.TotalHours, 1e-9)
	assert.InDelta(t, 1.0, r.BreakHours, 1e-9)
	assert.InDelta(t, 8.0, r.EffectiveHours, 1e-9)
}

func TestValidate_EndBeforeStart(t *testing.T) {
	r := Validate(interval(at(18, 0), at(9, 0), 0))

	assert.False(t, r.IsValid)
	assert.Contains(t, kinds(r), models.WarnInvalidRange)
	assert.Negative(t, r.TotalHours)
}

func TestValidate_EndEqualsStart(t *testing.T) {
	r := Validate(interval(at(9, 0), at(9, 0), 0))

	assert.False(t, r.IsValid)
	assert.Contains(t, kinds(r), models.WarnInvalidRange)
}

func TestValidate_MaxDurationExceeded(t *testing.T) {
	// 06:00-20:00 = 14h
	r := Validate(interval(at(6, 0), at(20, 0), 30))

	assert.False(t, r.IsValid)
	assert.Contains(t, kinds(r), models.WarnMaxDurationExceeded)
}

func TestValidate_TwelveHoursExactlyAllowed(t *testing.T) {
	r := Validate(interval(at(6, 0), at(18, 0), 45))

	assert.True(t, r.IsValid)
	assert.NotContains(t, kinds(r), models.WarnMaxDurationExceeded)
}

func TestValidate_MinBreakRecommended(t *testing.T) {
	// 7h shift, 15min break
	r := Validate(interval(at(9, 0), at(16, 0), 15))

	require.Contains(t, kinds(r), models.WarnMinBreakRecommended)
	assert.True(t, r.IsValid, "advisory warnings must not invalidate the shift")
}

func TestValidate_SixHoursNoBreakFlagged(t *testing.T) {
	r := Validate(interval(at(9, 0), at(15, 0), 0))

	assert.Contains(t, kinds(r), models.WarnMinBreakRecommended)
}

func TestValidate_ShortShiftNoBreakNotFlagged(t *testing.T) {
	// below 6h, break is optional
	r := Validate(interval(at(9, 0), at(13, 0), 0))

	assert.True(t, r.IsValid)
	assert.Empty(t, r.Warnings)
}

func TestValidate_BreakTooLong(t *testing.T) {
	// 4h shift, 150min break is over half the shift
	r := Validate(interval(at(9, 0), at(13, 0), 150))

	require.Contains(t, kinds(r), models.WarnBreakTooLong)
	assert.True(t, r.IsValid)
}

func TestValidate_BreakExactlyHalfNotFlagged(t *testing.T) {
	// 4h shift, 120min break is exactly half
	r := Validate(interval(at(9, 0), at(13, 0), 120))

	assert.NotContains(t, kinds(r), models.WarnBreakTooLong)
}

func TestValidate_EffectiveHoursMayGoNegative(t *testing.T) {
	// 2h shift with a 3h break
	r := Validate(interval(at(9, 0), at(11, 0), 180))

	assert.InDelta(t, -1.0, r.EffectiveHours, 1e-9)
	assert.Contains(t, kinds(r), models.WarnBreakTooLong)
}

func TestValidate_NightShiftCaution(t *testing.T) {
	// 22:00 to 08:30 next day, 10.5h
	start := at(22, 0)
	end := start.Add(10*time.Hour + 30*time.Minute)
	r := Validate(interval(start, end, 45))

	assert.Contains(t, kinds(r), models.WarnNightShiftCaution)
}

func TestValidate_NightShiftEightHoursExactlyNotFlagged(t *testing.T) {
	// 22:00 to 06:00 next day is exactly 8h; the caution requires more
	start := at(22, 0)
	end := start.Add(8 * time.Hour)
	r := Validate(interval(start, end, 0))

	assert.NotContains(t, kinds(r), models.WarnNightShiftCaution)
	assert.InDelta(t, 8.0, r.TotalHours, 1e-9)
}

func TestValidate_EarlyMorningEndTriggersNightCaution(t *testing.T) {
	// 19:00 to 05:00 next day, 10h, caught via the end hour
	start := at(19, 0)
	end := start.Add(10 * time.Hour)
	r := Validate(interval(start, end, 60))

	assert.Contains(t, kinds(r), models.WarnNightShiftCaution)
}

func TestValidate_LongDayShiftNoNightCaution(t *testing.T) {
	// 08:00-19:00 is long but entirely in daytime hours
	r := Validate(interval(at(8, 0), at(19, 0), 60))

	assert.NotContains(t, kinds(r), models.WarnNightShiftCaution)
}

func TestValidate_WarningsAccumulate(t *testing.T) {
	// 14h night shift with no break trips three rules at once
	start := at(22, 0)
	end := start.Add(14 * time.Hour)
	r := Validate(interval(start, end, 0))

	k := kinds(r)
	assert.Contains(t, k, models.WarnMaxDurationExceeded)
	assert.Contains(t, k, models.WarnMinBreakRecommended)
	assert.Contains(t, k, models.WarnNightShiftCaution)
	assert.False(t, r.IsValid)
}

func TestValidate_SeveritiesAssigned(t *testing.T) {
	r := Validate(interval(at(6, 0), at(20, 0), 15))

	bySeverity := map[models.WarningKind]models.Severity{}
	for _, w := range r.Warnings {
		bySeverity[w.Kind] = w.Severity
	}
	assert.Equal(t, models.SeverityError, bySeverity[models.WarnMaxDurationExceeded])
	assert.Equal(t, models.SeverityWarning, bySeverity[models.WarnMinBreakRecommended])
}

func TestValidate_WarningsCarryCodeAndMessage(t *testing.T) {
	r := Validate(interval(at(18, 0), at(9, 0), 0))

	require.NotEmpty(t, r.Warnings)
	for _, w := range r.Warnings {
		assert.NotEmpty(t, w.Code)
		assert.NotEmpty(t, w.Message)
	}
}

func TestValidate_PureNoMutation(t *testing.T) {
	iv := interval(at(9, 0), at(18, 0), 60)
	before := iv
	_ = Validate(iv)
	assert.Equal(t, before, iv)
}
