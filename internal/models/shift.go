package models

import "time"

type ClockAction string

const (
	ActionClock    ClockAction = "clock"
	ActionBreak    ClockAction = "break"
	ActionEndShift ClockAction = "end-shift"
)

func (a ClockAction) Valid() bool {
	switch a {
	case ActionClock, ActionBreak, ActionEndShift:
		return true
	}
	return false
}

type ShiftType string

const (
	ShiftMorning ShiftType = "morning"
	ShiftEvening ShiftType = "evening"
)

type WarningKind string

const (
	WarnInvalidRange        WarningKind = "InvalidRange"
	WarnMaxDurationExceeded WarningKind = "MaxDurationExceeded"
	WarnMinBreakRecommended WarningKind = "MinBreakRecommended"
	WarnBreakTooLong        WarningKind = "BreakTooLong"
	WarnNightShiftCaution   WarningKind = "NightShiftCaution"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// LaborWarning is produced by the validation engine and never mutated.
// Re-validation on edit replaces the whole set instead of patching it.
type LaborWarning struct {
	Kind     WarningKind `json:"kind"`
	Severity Severity    `json:"severity"`
	Code     string      `json:"code"`
	Message  string      `json:"message"`
}

// ShiftInterval is the transient input to the validation engine.
type ShiftInterval struct {
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	BreakMinutes int       `json:"break_minutes"`
}

type Shift struct {
	ID           string         `json:"id"`
	EmployeeID   string         `json:"employee_id"`
	Start        time.Time      `json:"start"`
	End          time.Time      `json:"end"`
	BreakMinutes int            `json:"break_minutes"`
	ShiftType    ShiftType      `json:"shift_type,omitempty"`
	Warnings     []LaborWarning `json:"warnings"`
	Valid        bool           `json:"valid"`
	BreakOpenAt  *time.Time     `json:"break_open_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// Active reports whether the shift has been opened by a clock-in and not
// yet closed.
func (s *Shift) Active() bool {
	return !s.Start.IsZero() && s.End.IsZero()
}

func (s *Shift) Interval() ShiftInterval {
	return ShiftInterval{Start: s.Start, End: s.End, BreakMinutes: s.BreakMinutes}
}
