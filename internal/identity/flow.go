package identity

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"timeclock/internal/models"

	json "github.com/goccy/go-json"
)

type Stage string

const (
	StageAwaitingPin   Stage = "awaiting-pin"
	StagePhotoRequired Stage = "photo-required"
	StageCompleted     Stage = "completed"
	StageCancelled     Stage = "cancelled"
)

var (
	// ErrPinMismatch is recoverable while attempts remain.
	ErrPinMismatch = errors.New("pin mismatch")
	// ErrTooManyAttempts is terminal; the flow is cancelled and the
	// caller must enforce a cooldown before offering a retry surface.
	ErrTooManyAttempts = errors.New("too many attempts, access blocked")
	ErrWrongStage      = errors.New("operation not allowed in current stage")
	ErrEmptyPhoto      = errors.New("photo capture is empty")
)

// NormalizePin coerces a PIN of any origin to its trimmed string form.
// Stored PINs and submitted candidates may arrive as numbers or strings
// from different origins; equality is only meaningful after both sides
// pass through this function.
func NormalizePin(v any) string {
	switch p := v.(type) {
	case string:
		return strings.TrimSpace(p)
	case models.Pin:
		return strings.TrimSpace(string(p))
	case json.Number:
		return strings.TrimSpace(p.String())
	case int:
		return strconv.Itoa(p)
	case int64:
		return strconv.FormatInt(p, 10)
	case float64:
		return strconv.FormatFloat(p, 'f', -1, 64)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}

// Capture is handed to the caller on completion for persistence by the
// photo-storage collaborator.
type Capture struct {
	Photo   []byte
	TakenAt time.Time
}

// Flow is the identity-verification state machine for one clock
// attempt: PIN check, then mandatory photo capture, then completion.
// No shift-affecting side effect may be committed before StageCompleted;
// a correct PIN alone never authorizes an action.
type Flow struct {
	employeeID  string
	action      models.ClockAction
	pin         string
	maxAttempts int
	stage       Stage
	attempts    int
	capture     *Capture
}

func NewFlow(employeeID string, action models.ClockAction, storedPin any, maxAttempts int) *Flow {
	return &Flow{
		employeeID:  employeeID,
		action:      action,
		pin:         NormalizePin(storedPin),
		maxAttempts: maxAttempts,
		stage:       StageAwaitingPin,
	}
}

func (f *Flow) EmployeeID() string         { return f.employeeID }
func (f *Flow) Action() models.ClockAction { return f.action }
func (f *Flow) Stage() Stage               { return f.stage }
func (f *Flow) Attempts() int              { return f.attempts }

// AttemptsLeft reports how many PIN submissions remain before lockout.
func (f *Flow) AttemptsLeft() int {
	left := f.maxAttempts - f.attempts
	if left < 0 {
		return 0
	}
	return left
}

// SubmitPin compares the normalized candidate against the normalized
// stored PIN. A match advances to photo capture; a mismatch consumes an
// attempt, and exhausting all attempts cancels the flow.
func (f *Flow) SubmitPin(candidate any) error {
	if f.stage != StageAwaitingPin {
		return ErrWrongStage
	}

	if NormalizePin(candidate) == f.pin {
		f.stage = StagePhotoRequired
		return nil
	}

	f.attempts++
	if f.attempts >= f.maxAttempts {
		f.stage = StageCancelled
		return ErrTooManyAttempts
	}
	return ErrPinMismatch
}

// SubmitPhoto records the mandatory capture and completes the flow.
// There is no path to StageCompleted that skips this call.
func (f *Flow) SubmitPhoto(photo []byte, takenAt time.Time) (*Capture, error) {
	if f.stage != StagePhotoRequired {
		return nil, ErrWrongStage
	}
	if len(photo) == 0 {
		return nil, ErrEmptyPhoto
	}

	f.capture = &Capture{Photo: photo, TakenAt: takenAt}
	f.stage = StageCompleted
	return f.capture, nil
}

// Cancel moves any non-terminal stage to StageCancelled. The caller must
// treat a cancelled flow as "no action performed".
func (f *Flow) Cancel() {
	if f.stage == StageCompleted || f.stage == StageCancelled {
		return
	}
	f.stage = StageCancelled
}

func (f *Flow) Capture() *Capture { return f.capture }
