package models

import "time"

type PhotoRecord struct {
	ID         string      `json:"id"`
	EmployeeID string      `json:"employee_id"`
	Action     ClockAction `json:"action"`
	Path       string      `json:"path"`
	TakenAt    time.Time   `json:"taken_at"`
}

// AppState is the single durable state reference of the application.
// All mutation is funneled through the roster service, synchronously,
// before each save.
type AppState struct {
	Employees   []*Employee    `json:"employees"`
	Shifts      []*Shift       `json:"shifts"`
	Photos      []*PhotoRecord `json:"photos"`
	CurrentUser string         `json:"current_user,omitempty"`
}

func NewAppState() *AppState {
	return &AppState{
		Employees: make([]*Employee, 0),
		Shifts:    make([]*Shift, 0),
		Photos:    make([]*PhotoRecord, 0),
	}
}
