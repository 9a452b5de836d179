package services

import (
	"errors"
	"sync"
	"time"
	"timeclock/internal/identity"
	"timeclock/internal/models"
	"timeclock/internal/providers"
	"timeclock/internal/session"
	"timeclock/internal/structures"
)

var (
	// ErrSessionInvalid covers expired, forged and malformed tokens
	// alike; the user must re-scan, there is no fallback session.
	ErrSessionInvalid       = errors.New("invalid or expired session")
	ErrVerificationInFlight = errors.New("verification already in progress")
	ErrCooldownActive       = errors.New("access temporarily blocked, try again later")
	ErrNoVerification       = errors.New("no verification in progress")
)

type VerificationStatus struct {
	EmployeeID   string             `json:"employee_id"`
	Action       models.ClockAction `json:"action"`
	ShiftType    models.ShiftType   `json:"shift_type,omitempty"`
	Stage        identity.Stage     `json:"stage"`
	AttemptsLeft int                `json:"attempts_left"`
}

type ClockResult struct {
	Shift      *models.Shift       `json:"shift"`
	Photo      *models.PhotoRecord `json:"photo,omitempty"`
	PhotoError string              `json:"photo_error,omitempty"`
}

type ClockServiceInterface interface {
	MintSession(employeeID string, action models.ClockAction) (*session.Token, string, error)
	BeginVerification(encoded string) (*VerificationStatus, error)
	SubmitPin(employeeID string, pin any) (*VerificationStatus, error)
	SubmitPhoto(employeeID string, photo []byte, takenAt time.Time) (*ClockResult, error)
	Cancel(employeeID string) error
}

// ClockService wires token verification to the identity flow and, only
// on completion, to the shift-mutation and photo collaborators. It
// holds at most one in-flight flow per employee and enforces the
// post-lockout cooldown across attempts.
type ClockService struct {
	conf    *structures.Config
	codec   *session.Codec
	roster  RosterServiceInterface
	sink    PhotoSinkInterface
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
	clock   providers.Clock

	mu        sync.Mutex
	flows     map[string]*flowEntry
	cooldowns map[string]time.Time
}

type flowEntry struct {
	flow  *identity.Flow
	token *session.Token
}

func NewClockService(conf *structures.Config, codec *session.Codec, roster RosterServiceInterface, sink PhotoSinkInterface, logger providers.Logger, metrics providers.MetricsProviderInterface, clock providers.Clock) ClockServiceInterface {
	return &ClockService{
		conf:      conf,
		codec:     codec,
		roster:    roster,
		sink:      sink,
		logger:    logger,
		metrics:   metrics,
		clock:     clock,
		flows:     make(map[string]*flowEntry),
		cooldowns: make(map[string]time.Time),
	}
}

// MintSession issues a fresh token and the QR URL for a display surface.
func (cs *ClockService) MintSession(employeeID string, action models.ClockAction) (*session.Token, string, error) {
	if _, err := cs.roster.GetEmployee(employeeID); err != nil {
		return nil, "", err
	}

	token := cs.codec.Mint(employeeID, action)
	url, err := cs.codec.ClockURL(token)
	if err != nil {
		return nil, "", err
	}
	cs.metrics.IncSessionsMinted()
	return token, url, nil
}

// BeginVerification decodes and verifies the scanned payload and opens
// the identity flow. A rejected token terminates the attempt; the
// caller never falls back to a default session.
func (cs *ClockService) BeginVerification(encoded string) (*VerificationStatus, error) {
	token, err := cs.codec.Decode(encoded)
	if err != nil {
		cs.metrics.IncSessionVerdict("malformed")
		cs.logger.Warnf(providers.TypePost, "Rejected clock session: %s", err)
		return nil, ErrSessionInvalid
	}

	verdict := cs.codec.Verify(token)
	if !verdict.Valid {
		cs.metrics.IncSessionVerdict(verdict.Reason)
		cs.logger.Warnf(providers.TypePost, "Rejected clock session for %s: %s", token.EmployeeID, verdict.Reason)
		return nil, ErrSessionInvalid
	}
	cs.metrics.IncSessionVerdict("valid")

	employee, err := cs.roster.GetEmployee(token.EmployeeID)
	if err != nil {
		return nil, err
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()

	if until, ok := cs.cooldowns[employee.ID]; ok {
		if cs.clock.Now().Before(until) {
			return nil, ErrCooldownActive
		}
		delete(cs.cooldowns, employee.ID)
	}
	if _, ok := cs.flows[employee.ID]; ok {
		return nil, ErrVerificationInFlight
	}

	entry := &flowEntry{
		flow:  identity.NewFlow(employee.ID, token.Action, employee.Pin, cs.conf.Identity.MaxPinAttempts),
		token: token,
	}
	cs.flows[employee.ID] = entry
	return cs.status(entry), nil
}

func (cs *ClockService) SubmitPin(employeeID string, pin any) (*VerificationStatus, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	entry, ok := cs.flows[employeeID]
	if !ok {
		return nil, ErrNoVerification
	}

	err := entry.flow.SubmitPin(pin)
	switch {
	case err == nil:
		return cs.status(entry), nil
	case errors.Is(err, identity.ErrPinMismatch):
		cs.metrics.IncPinFailures()
		return cs.status(entry), err
	case errors.Is(err, identity.ErrTooManyAttempts):
		cs.metrics.IncPinFailures()
		cs.metrics.IncLockouts()
		delete(cs.flows, employeeID)
		cs.cooldowns[employeeID] = cs.clock.Now().Add(cs.conf.Identity.Cooldown)
		cs.logger.Warnf(providers.TypePost, "Employee %s locked out after exhausted pin attempts", employeeID)
		return nil, err
	default:
		return nil, err
	}
}

// SubmitPhoto completes the flow and, only then, commits the clock
// action. A failing photo store is surfaced in the result but does not
// undo the committed action.
func (cs *ClockService) SubmitPhoto(employeeID string, photo []byte, takenAt time.Time) (*ClockResult, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	entry, ok := cs.flows[employeeID]
	if !ok {
		return nil, ErrNoVerification
	}

	capture, err := entry.flow.SubmitPhoto(photo, takenAt)
	if err != nil {
		return nil, err
	}
	delete(cs.flows, employeeID)

	shift, err := cs.roster.ApplyClockAction(employeeID, entry.token.Action, entry.token.ShiftType)
	if err != nil {
		return nil, err
	}

	result := &ClockResult{Shift: shift}
	record, err := cs.sink.Store(employeeID, entry.token.Action, capture.Photo, capture.TakenAt)
	if err != nil {
		cs.logger.Errorf(providers.TypeApp, "Photo store failed for employee %s: %s", employeeID, err)
		result.PhotoError = err.Error()
	} else {
		result.Photo = record
	}
	return result, nil
}

// Cancel aborts the in-flight flow; no action is performed and no shift
// is created or mutated.
func (cs *ClockService) Cancel(employeeID string) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	entry, ok := cs.flows[employeeID]
	if !ok {
		return ErrNoVerification
	}
	entry.flow.Cancel()
	delete(cs.flows, employeeID)
	return nil
}

func (cs *ClockService) status(entry *flowEntry) *VerificationStatus {
	return &VerificationStatus{
		EmployeeID:   entry.flow.EmployeeID(),
		Action:       entry.flow.Action(),
		ShiftType:    entry.token.ShiftType,
		Stage:        entry.flow.Stage(),
		AttemptsLeft: entry.flow.AttemptsLeft(),
	}
}
