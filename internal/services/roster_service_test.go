package services

import (
	"testing"
	"time"
	"timeclock/internal/models"
	"timeclock/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRoster(t *testing.T) (RosterServiceInterface, *testutil.MockClock, *testutil.MockMetrics) {
	t.Helper()
	clock := testutil.NewMockClock(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	metrics := testutil.NewMockMetrics()
	return NewRosterService(clock, metrics), clock, metrics
}

func addEmployee(t *testing.T, roster RosterServiceInterface) *models.Employee {
	t.Helper()
	emp, err := roster.AddEmployee("Ada", "1234")
	require.NoError(t, err)
	return emp
}

func TestRoster_AddAndGetEmployee(t *testing.T) {
	roster, clock, metrics := newTestRoster(t)

	emp, err := roster.AddEmployee("Ada", "1234")
	require.NoError(t, err)
	assert.NotEmpty(t, emp.ID)
	assert.Equal(t, clock.Now(), emp.CreatedAt)
	assert.Equal(t, 1, metrics.EmployeesTotal)

	got, err := roster.GetEmployee(emp.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Name)
}

func TestRoster_AddEmployeeRequiresNameAndPin(t *testing.T) {
	roster, _, _ := newTestRoster(t)

	_, err := roster.AddEmployee("", "1234")
	assert.Error(t, err)

	_, err = roster.AddEmployee("Ada", "")
	assert.Error(t, err)
}

func TestRoster_GetEmployeeNotFound(t *testing.T) {
	roster, _, _ := newTestRoster(t)

	_, err := roster.GetEmployee("missing")
	assert.ErrorIs(t, err, ErrEmployeeNotFound)
}

func TestRoster_CreateShiftValidatesInterval(t *testing.T) {
	roster, _, _ := newTestRoster(t)
	emp := addEmployee(t, roster)

	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	shift, err := roster.CreateShift(emp.ID, models.ShiftInterval{
		Start:        start,
		End:          start.Add(9 * time.Hour),
		BreakMinutes: 60,
	})
	require.NoError(t, err)
	assert.True(t, shift.Valid)
	assert.Empty(t, shift.Warnings)
}

func TestRoster_CreateShiftStoresInvalidFlagged(t *testing.T) {
	roster, _, _ := newTestRoster(t)
	emp := addEmployee(t, roster)

	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	shift, err := roster.CreateShift(emp.ID, models.ShiftInterval{
		Start: start,
		End:   start.Add(-time.Hour),
	})
	require.NoError(t, err, "invalid intervals are stored flagged, not rejected")
	assert.False(t, shift.Valid)
	assert.NotEmpty(t, shift.Warnings)

	// and it is retrievable like any other shift
	assert.Len(t, roster.ListShifts(emp.ID), 1)
}

func TestRoster_CreateShiftUnknownEmployee(t *testing.T) {
	roster, _, _ := newTestRoster(t)

	_, err := roster.CreateShift("ghost", models.ShiftInterval{})
	assert.ErrorIs(t, err, ErrEmployeeNotFound)
}

func TestRoster_UpdateShiftReplacesWarnings(t *testing.T) {
	roster, _, _ := newTestRoster(t)
	emp := addEmployee(t, roster)

	start := time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)
	shift, err := roster.CreateShift(emp.ID, models.ShiftInterval{
		Start: start,
		End:   start.Add(14 * time.Hour),
	})
	require.NoError(t, err)
	require.False(t, shift.Valid)

	updated, err := roster.UpdateShift(shift.ID, models.ShiftInterval{
		Start:        start,
		End:          start.Add(8 * time.Hour),
		BreakMinutes: 45,
	})
	require.NoError(t, err)
	assert.True(t, updated.Valid)
	assert.Empty(t, updated.Warnings)
}

func TestRoster_UpdateShiftNotFound(t *testing.T) {
	roster, _, _ := newTestRoster(t)

	_, err := roster.UpdateShift("missing", models.ShiftInterval{})
	assert.ErrorIs(t, err, ErrShiftNotFound)
}

func TestRoster_DeleteShift(t *testing.T) {
	roster, _, metrics := newTestRoster(t)
	emp := addEmployee(t, roster)

	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	shift, err := roster.CreateShift(emp.ID, models.ShiftInterval{Start: start, End: start.Add(4 * time.Hour)})
	require.NoError(t, err)

	require.NoError(t, roster.DeleteShift(shift.ID))
	assert.Empty(t, roster.ListShifts(emp.ID))
	assert.Equal(t, 0, metrics.ShiftsTotal)

	assert.ErrorIs(t, roster.DeleteShift(shift.ID), ErrShiftNotFound)
}

func TestRoster_ListShiftsFiltersByEmployee(t *testing.T) {
	roster, _, _ := newTestRoster(t)
	ada := addEmployee(t, roster)
	grace, err := roster.AddEmployee("Grace", "5678")
	require.NoError(t, err)

	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	_, err = roster.CreateShift(ada.ID, models.ShiftInterval{Start: start, End: start.Add(4 * time.Hour)})
	require.NoError(t, err)
	_, err = roster.CreateShift(grace.ID, models.ShiftInterval{Start: start, End: start.Add(4 * time.Hour)})
	require.NoError(t, err)

	assert.Len(t, roster.ListShifts(ada.ID), 1)
	assert.Len(t, roster.ListShifts(""), 2)
}

func TestRoster_ClockOpensAndClosesShift(t *testing.T) {
	roster, clock, _ := newTestRoster(t)
	emp := addEmployee(t, roster)

	opened, err := roster.ApplyClockAction(emp.ID, models.ActionClock, models.ShiftMorning)
	require.NoError(t, err)
	assert.True(t, opened.Active())
	assert.Equal(t, models.ShiftMorning, opened.ShiftType)

	active, err := roster.GetActiveShift(emp.ID)
	require.NoError(t, err)
	assert.Equal(t, opened.ID, active.ID)

	clock.Advance(9 * time.Hour)
	closed, err := roster.ApplyClockAction(emp.ID, models.ActionClock, models.ShiftMorning)
	require.NoError(t, err)
	assert.Equal(t, opened.ID, closed.ID)
	assert.False(t, closed.Active())

	_, err = roster.GetActiveShift(emp.ID)
	assert.ErrorIs(t, err, ErrNoActiveShift)
}

func TestRoster_CloseAttachesValidationVerdict(t *testing.T) {
	roster, clock, _ := newTestRoster(t)
	emp := addEmployee(t, roster)

	_, err := roster.ApplyClockAction(emp.ID, models.ActionClock, models.ShiftMorning)
	require.NoError(t, err)

	// a 9h shift closed without any break trips the break rule
	clock.Advance(9 * time.Hour)
	closed, err := roster.ApplyClockAction(emp.ID, models.ActionEndShift, "")
	require.NoError(t, err)

	require.NotEmpty(t, closed.Warnings)
	assert.Equal(t, models.WarnMinBreakRecommended, closed.Warnings[0].Kind)
	assert.True(t, closed.Valid)
}

func TestRoster_BreakToggles(t *testing.T) {
	roster, clock, _ := newTestRoster(t)
	emp := addEmployee(t, roster)

	_, err := roster.ApplyClockAction(emp.ID, models.ActionClock, models.ShiftMorning)
	require.NoError(t, err)

	onBreak, err := roster.ApplyClockAction(emp.ID, models.ActionBreak, "")
	require.NoError(t, err)
	require.NotNil(t, onBreak.BreakOpenAt)
	assert.Zero(t, onBreak.BreakMinutes)

	clock.Advance(45 * time.Minute)
	offBreak, err := roster.ApplyClockAction(emp.ID, models.ActionBreak, "")
	require.NoError(t, err)
	assert.Nil(t, offBreak.BreakOpenAt)
	assert.Equal(t, 45, offBreak.BreakMinutes)
}

func TestRoster_EndShiftFoldsOpenBreak(t *testing.T) {
	roster, clock, _ := newTestRoster(t)
	emp := addEmployee(t, roster)

	_, err := roster.ApplyClockAction(emp.ID, models.ActionClock, models.ShiftMorning)
	require.NoError(t, err)

	clock.Advance(4 * time.Hour)
	_, err = roster.ApplyClockAction(emp.ID, models.ActionBreak, "")
	require.NoError(t, err)

	clock.Advance(30 * time.Minute)
	closed, err := roster.ApplyClockAction(emp.ID, models.ActionEndShift, "")
	require.NoError(t, err)

	assert.Nil(t, closed.BreakOpenAt)
	assert.Equal(t, 30, closed.BreakMinutes)
	assert.False(t, closed.Active())
}

func TestRoster_BreakWithoutActiveShift(t *testing.T) {
	roster, _, _ := newTestRoster(t)
	emp := addEmployee(t, roster)

	_, err := roster.ApplyClockAction(emp.ID, models.ActionBreak, "")
	assert.ErrorIs(t, err, ErrNoActiveShift)

	_, err = roster.ApplyClockAction(emp.ID, models.ActionEndShift, "")
	assert.ErrorIs(t, err, ErrNoActiveShift)
}

func TestRoster_ClockActionUnknownEmployee(t *testing.T) {
	roster, _, _ := newTestRoster(t)

	_, err := roster.ApplyClockAction("ghost", models.ActionClock, models.ShiftMorning)
	assert.ErrorIs(t, err, ErrEmployeeNotFound)
}

func TestRoster_SnapshotIsIsolated(t *testing.T) {
	roster, _, _ := newTestRoster(t)
	emp := addEmployee(t, roster)

	snap := roster.GetSnapshot()
	require.Len(t, snap.Employees, 1)

	// mutating the snapshot must not leak back into the live state
	snap.Employees[0].Name = "Mallory"

	got, err := roster.GetEmployee(emp.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Name)
}

func TestRoster_PutStateReplacesEverything(t *testing.T) {
	roster, _, metrics := newTestRoster(t)
	addEmployee(t, roster)

	state := models.NewAppState()
	state.Employees = append(state.Employees,
		&models.Employee{ID: "a", Name: "A", Pin: "1"},
		&models.Employee{ID: "b", Name: "B", Pin: "2"},
	)
	roster.PutState(state)

	assert.Len(t, roster.ListEmployees(), 2)
	assert.Equal(t, 2, metrics.EmployeesTotal)

	_, err := roster.GetEmployee("a")
	assert.NoError(t, err)
}

func TestRoster_AddPhoto(t *testing.T) {
	roster, _, _ := newTestRoster(t)

	roster.AddPhoto(&models.PhotoRecord{ID: "p1", EmployeeID: "emp-1"})
	snap := roster.GetSnapshot()
	require.Len(t, snap.Photos, 1)
	assert.Equal(t, "p1", snap.Photos[0].ID)
}

func TestRoster_InvalidOpenEndedShiftIsNotActive(t *testing.T) {
	roster, _, _ := newTestRoster(t)
	emp := addEmployee(t, roster)

	// Manually entered open-ended interval: stored flagged invalid.
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	entry, err := roster.CreateShift(emp.ID, models.ShiftInterval{Start: start})
	require.NoError(t, err)
	assert.False(t, entry.Valid)

	_, err = roster.GetActiveShift(emp.ID)
	assert.ErrorIs(t, err, ErrNoActiveShift)

	// Clocking in opens a fresh shift instead of closing the entry.
	opened, err := roster.ApplyClockAction(emp.ID, models.ActionClock, models.ShiftMorning)
	require.NoError(t, err)
	assert.NotEqual(t, entry.ID, opened.ID)
	assert.True(t, opened.Active())
}
