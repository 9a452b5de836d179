package services

import (
	"errors"
	"sync"
	"timeclock/internal/models"
	"timeclock/internal/providers"
	"timeclock/internal/validation"

	"github.com/google/uuid"
)

var (
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrShiftNotFound    = errors.New("shift not found")
	ErrNoActiveShift    = errors.New("no active shift")
)

// RosterServiceInterface is the shift-mutation collaborator: the clock
// flow calls it only after identity verification completes.
type RosterServiceInterface interface {
	AddEmployee(name string, pin models.Pin) (*models.Employee, error)
	GetEmployee(id string) (*models.Employee, error)
	ListEmployees() []*models.Employee
	CreateShift(employeeID string, iv models.ShiftInterval) (*models.Shift, error)
	UpdateShift(id string, iv models.ShiftInterval) (*models.Shift, error)
	DeleteShift(id string) error
	ListShifts(employeeID string) []*models.Shift
	GetActiveShift(employeeID string) (*models.Shift, error)
	ApplyClockAction(employeeID string, action models.ClockAction, shiftType models.ShiftType) (*models.Shift, error)
	AddPhoto(record *models.PhotoRecord)
	GetSnapshot() *models.AppState
	PutState(state *models.AppState)
}

// RosterService owns the single in-memory state reference. All mutation
// happens synchronously under the lock before any save reads a
// snapshot, so the persistence layer never observes a half-applied
// change.
type RosterService struct {
	mu      sync.RWMutex
	state   *models.AppState
	clock   providers.Clock
	metrics providers.MetricsProviderInterface
}

func NewRosterService(clock providers.Clock, metrics providers.MetricsProviderInterface) RosterServiceInterface {
	return &RosterService{
		state:   models.NewAppState(),
		clock:   clock,
		metrics: metrics,
	}
}

func (rs *RosterService) AddEmployee(name string, pin models.Pin) (*models.Employee, error) {
	if name == "" {
		return nil, errors.New("employee name is required")
	}
	if pin == "" {
		return nil, errors.New("employee pin is required")
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()

	emp := &models.Employee{
		ID:        uuid.NewString(),
		Name:      name,
		Pin:       pin,
		CreatedAt: rs.clock.Now(),
	}
	rs.state.Employees = append(rs.state.Employees, emp)
	rs.metrics.SetEmployeesTotal(len(rs.state.Employees))
	return emp, nil
}

func (rs *RosterService) GetEmployee(id string) (*models.Employee, error) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	for _, emp := range rs.state.Employees {
		if emp.ID == id {
			return emp, nil
		}
	}
	return nil, ErrEmployeeNotFound
}

func (rs *RosterService) ListEmployees() []*models.Employee {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	out := make([]*models.Employee, len(rs.state.Employees))
	copy(out, rs.state.Employees)
	return out
}

// CreateShift validates the interval and stores the shift with its
// frozen warning set. A shift carrying an Error-severity warning is
// stored flagged invalid, never as valid.
func (rs *RosterService) CreateShift(employeeID string, iv models.ShiftInterval) (*models.Shift, error) {
	if _, err := rs.GetEmployee(employeeID); err != nil {
		return nil, err
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()

	now := rs.clock.Now()
	result := validation.Validate(iv)
	shift := &models.Shift{
		ID:           uuid.NewString(),
		EmployeeID:   employeeID,
		Start:        iv.Start,
		End:          iv.End,
		BreakMinutes: iv.BreakMinutes,
		Warnings:     result.Warnings,
		Valid:        result.IsValid,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	rs.state.Shifts = append(rs.state.Shifts, shift)
	rs.metrics.SetShiftsTotal(len(rs.state.Shifts))
	return shift, nil
}

// UpdateShift re-validates and replaces the warning set wholesale; the
// previous set is never patched.
func (rs *RosterService) UpdateShift(id string, iv models.ShiftInterval) (*models.Shift, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	shift := rs.findShift(id)
	if shift == nil {
		return nil, ErrShiftNotFound
	}

	result := validation.Validate(iv)
	shift.Start = iv.Start
	shift.End = iv.End
	shift.BreakMinutes = iv.BreakMinutes
	shift.Warnings = result.Warnings
	shift.Valid = result.IsValid
	shift.UpdatedAt = rs.clock.Now()
	return shift, nil
}

func (rs *RosterService) DeleteShift(id string) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	for i, shift := range rs.state.Shifts {
		if shift.ID == id {
			rs.state.Shifts = append(rs.state.Shifts[:i], rs.state.Shifts[i+1:]...)
			rs.metrics.SetShiftsTotal(len(rs.state.Shifts))
			return nil
		}
	}
	return ErrShiftNotFound
}

// ListShifts returns shifts for one employee, or all when employeeID is
// empty.
func (rs *RosterService) ListShifts(employeeID string) []*models.Shift {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	out := make([]*models.Shift, 0, len(rs.state.Shifts))
	for _, shift := range rs.state.Shifts {
		if employeeID == "" || shift.EmployeeID == employeeID {
			out = append(out, shift)
		}
	}
	return out
}

func (rs *RosterService) GetActiveShift(employeeID string) (*models.Shift, error) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	if shift := rs.findActiveShift(employeeID); shift != nil {
		return shift, nil
	}
	return nil, ErrNoActiveShift
}

// ApplyClockAction records a clock action against the employee's active
// shift. Clock opens a shift when none is active and closes the active
// one otherwise; Break toggles break accounting; EndShift closes.
func (rs *RosterService) ApplyClockAction(employeeID string, action models.ClockAction, shiftType models.ShiftType) (*models.Shift, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if !rs.employeeExists(employeeID) {
		return nil, ErrEmployeeNotFound
	}

	now := rs.clock.Now()
	active := rs.findActiveShift(employeeID)

	switch action {
	case models.ActionClock:
		if active == nil {
			shift := &models.Shift{
				ID:         uuid.NewString(),
				EmployeeID: employeeID,
				Start:      now,
				ShiftType:  shiftType,
				Warnings:   make([]models.LaborWarning, 0),
				Valid:      true,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			rs.state.Shifts = append(rs.state.Shifts, shift)
			rs.metrics.SetShiftsTotal(len(rs.state.Shifts))
			return shift, nil
		}
		rs.closeShift(active)
		return active, nil

	case models.ActionBreak:
		if active == nil {
			return nil, ErrNoActiveShift
		}
		if active.BreakOpenAt == nil {
			openedAt := now
			active.BreakOpenAt = &openedAt
		} else {
			active.BreakMinutes += int(now.Sub(*active.BreakOpenAt).Minutes())
			active.BreakOpenAt = nil
		}
		active.UpdatedAt = now
		return active, nil

	case models.ActionEndShift:
		if active == nil {
			return nil, ErrNoActiveShift
		}
		rs.closeShift(active)
		return active, nil
	}

	return nil, errors.New("unknown clock action")
}

// closeShift seals the interval, folding an open break into the break
// total, and attaches a fresh validation verdict. Caller holds the lock.
func (rs *RosterService) closeShift(shift *models.Shift) {
	now := rs.clock.Now()
	if shift.BreakOpenAt != nil {
		shift.BreakMinutes += int(now.Sub(*shift.BreakOpenAt).Minutes())
		shift.BreakOpenAt = nil
	}
	shift.End = now

	result := validation.Validate(shift.Interval())
	shift.Warnings = result.Warnings
	shift.Valid = result.IsValid
	shift.UpdatedAt = now
}

func (rs *RosterService) AddPhoto(record *models.PhotoRecord) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.state.Photos = append(rs.state.Photos, record)
}

// GetSnapshot returns a copy that the persistence layer can serialize
// without racing against later mutations.
func (rs *RosterService) GetSnapshot() *models.AppState {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	snap := &models.AppState{
		Employees:   make([]*models.Employee, 0, len(rs.state.Employees)),
		Shifts:      make([]*models.Shift, 0, len(rs.state.Shifts)),
		Photos:      make([]*models.PhotoRecord, 0, len(rs.state.Photos)),
		CurrentUser: rs.state.CurrentUser,
	}
	for _, emp := range rs.state.Employees {
		e := *emp
		snap.Employees = append(snap.Employees, &e)
	}
	for _, shift := range rs.state.Shifts {
		s := *shift
		snap.Shifts = append(snap.Shifts, &s)
	}
	for _, photo := range rs.state.Photos {
		p := *photo
		snap.Photos = append(snap.Photos, &p)
	}
	return snap
}

func (rs *RosterService) PutState(state *models.AppState) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.state = state
	rs.metrics.SetEmployeesTotal(len(state.Employees))
	rs.metrics.SetShiftsTotal(len(state.Shifts))
}

func (rs *RosterService) findShift(id string) *models.Shift {
	for _, shift := range rs.state.Shifts {
		if shift.ID == id {
			return shift
		}
	}
	return nil
}

// findActiveShift skips invalid-flagged shifts: a manually entered
// open-ended interval is a data-entry error, not a clock-in.
func (rs *RosterService) findActiveShift(employeeID string) *models.Shift {
	for i := len(rs.state.Shifts) - 1; i >= 0; i-- {
		shift := rs.state.Shifts[i]
		if shift.EmployeeID == employeeID && shift.Active() && shift.Valid {
			return shift
		}
	}
	return nil
}

func (rs *RosterService) employeeExists(id string) bool {
	for _, emp := range rs.state.Employees {
		if emp.ID == id {
			return true
		}
	}
	return false
}
