package services

import (
	"errors"
	"testing"
	"time"
	"timeclock/internal/identity"
	"timeclock/internal/models"
	"timeclock/internal/session"
	"timeclock/internal/structures"
	"timeclock/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clockFixture struct {
	service ClockServiceInterface
	roster  RosterServiceInterface
	codec   *session.Codec
	clock   *testutil.MockClock
	metrics *testutil.MockMetrics
	sink    *testutil.MockPhotoSink
	emp     *models.Employee
}

func newClockFixture(t *testing.T) *clockFixture {
	t.Helper()
	conf := &structures.Config{
		Session: structures.SessionConfig{
			Secret:         "test-secret",
			ValidityWindow: 5 * time.Minute,
			BaseURL:        "http://localhost:8080",
		},
		Identity: structures.IdentityConfig{
			MaxPinAttempts: 3,
			Cooldown:       time.Minute,
		},
	}
	clock := testutil.NewMockClock(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	metrics := testutil.NewMockMetrics()
	roster := NewRosterService(clock, metrics)
	codec := session.NewCodec(conf, clock)
	sink := &testutil.MockPhotoSink{}
	service := NewClockService(conf, codec, roster, sink, &testutil.MockLogger{}, metrics, clock)

	emp, err := roster.AddEmployee("Ada", "1234")
	require.NoError(t, err)

	return &clockFixture{
		service: service,
		roster:  roster,
		codec:   codec,
		clock:   clock,
		metrics: metrics,
		sink:    sink,
		emp:     emp,
	}
}

func (f *clockFixture) mintEncoded(t *testing.T, action models.ClockAction) string {
	t.Helper()
	token, _, err := f.service.MintSession(f.emp.ID, action)
	require.NoError(t, err)
	encoded, err := f.codec.Encode(token)
	require.NoError(t, err)
	return encoded
}

func TestClockService_MintSession(t *testing.T) {
	f := newClockFixture(t)

	token, url, err := f.service.MintSession(f.emp.ID, models.ActionClock)
	require.NoError(t, err)
	assert.Equal(t, f.emp.ID, token.EmployeeID)
	assert.Contains(t, url, "/clock/")
	assert.Equal(t, 1, f.metrics.SessionsMinted)
}

func TestClockService_MintSessionUnknownEmployee(t *testing.T) {
	f := newClockFixture(t)

	_, _, err := f.service.MintSession("ghost", models.ActionClock)
	assert.ErrorIs(t, err, ErrEmployeeNotFound)
}

func TestClockService_FullFlowCommitsAction(t *testing.T) {
	f := newClockFixture(t)
	encoded := f.mintEncoded(t, models.ActionClock)

	status, err := f.service.BeginVerification(encoded)
	require.NoError(t, err)
	assert.Equal(t, identity.StageAwaitingPin, status.Stage)
	assert.Equal(t, 3, status.AttemptsLeft)

	status, err = f.service.SubmitPin(f.emp.ID, "1234")
	require.NoError(t, err)
	assert.Equal(t, identity.StagePhotoRequired, status.Stage)

	// nothing committed until the photo lands
	_, err = f.roster.GetActiveShift(f.emp.ID)
	assert.ErrorIs(t, err, ErrNoActiveShift)

	result, err := f.service.SubmitPhoto(f.emp.ID, []byte{0xff, 0xd8}, f.clock.Now())
	require.NoError(t, err)
	require.NotNil(t, result.Shift)
	assert.True(t, result.Shift.Active())
	require.NotNil(t, result.Photo)
	assert.Empty(t, result.PhotoError)
	assert.Len(t, f.sink.Stored, 1)

	active, err := f.roster.GetActiveShift(f.emp.ID)
	require.NoError(t, err)
	assert.Equal(t, result.Shift.ID, active.ID)
	assert.Equal(t, 1, f.metrics.Verdicts["valid"])
}

func TestClockService_ExpiredSessionRejected(t *testing.T) {
	f := newClockFixture(t)
	encoded := f.mintEncoded(t, models.ActionClock)

	f.clock.Advance(6 * time.Minute)
	_, err := f.service.BeginVerification(encoded)
	assert.ErrorIs(t, err, ErrSessionInvalid)
	assert.Equal(t, 1, f.metrics.Verdicts["expired"])
}

func TestClockService_MalformedSessionRejected(t *testing.T) {
	f := newClockFixture(t)

	_, err := f.service.BeginVerification("garbage!!!")
	assert.ErrorIs(t, err, ErrSessionInvalid)
	assert.Equal(t, 1, f.metrics.Verdicts["malformed"])
}

func TestClockService_TamperedSessionRejected(t *testing.T) {
	f := newClockFixture(t)

	token, _, err := f.service.MintSession(f.emp.ID, models.ActionClock)
	require.NoError(t, err)
	token.Action = models.ActionEndShift
	encoded, err := f.codec.Encode(token)
	require.NoError(t, err)

	_, err = f.service.BeginVerification(encoded)
	assert.ErrorIs(t, err, ErrSessionInvalid)
	assert.Equal(t, 1, f.metrics.Verdicts["bad-signature"])
}

func TestClockService_WrongPinReportsAttemptsLeft(t *testing.T) {
	f := newClockFixture(t)
	_, err := f.service.BeginVerification(f.mintEncoded(t, models.ActionClock))
	require.NoError(t, err)

	status, err := f.service.SubmitPin(f.emp.ID, "0000")
	assert.ErrorIs(t, err, identity.ErrPinMismatch)
	require.NotNil(t, status)
	assert.Equal(t, 2, status.AttemptsLeft)
	assert.Equal(t, 1, f.metrics.PinFailures)
}

func TestClockService_LockoutAfterThreeFailures(t *testing.T) {
	f := newClockFixture(t)
	_, err := f.service.BeginVerification(f.mintEncoded(t, models.ActionClock))
	require.NoError(t, err)

	_, err = f.service.SubmitPin(f.emp.ID, "1111")
	assert.ErrorIs(t, err, identity.ErrPinMismatch)
	_, err = f.service.SubmitPin(f.emp.ID, "2222")
	assert.ErrorIs(t, err, identity.ErrPinMismatch)
	_, err = f.service.SubmitPin(f.emp.ID, "3333")
	assert.ErrorIs(t, err, identity.ErrTooManyAttempts)
	assert.Equal(t, 1, f.metrics.Lockouts)

	// flow destroyed, a new scan during the cooldown is refused
	_, err = f.service.SubmitPin(f.emp.ID, "1234")
	assert.ErrorIs(t, err, ErrNoVerification)

	_, err = f.service.BeginVerification(f.mintEncoded(t, models.ActionClock))
	assert.ErrorIs(t, err, ErrCooldownActive)

	// and is accepted once the cooldown lapses
	f.clock.Advance(61 * time.Second)
	_, err = f.service.BeginVerification(f.mintEncoded(t, models.ActionClock))
	assert.NoError(t, err)
}

func TestClockService_OneFlowPerEmployee(t *testing.T) {
	f := newClockFixture(t)

	_, err := f.service.BeginVerification(f.mintEncoded(t, models.ActionClock))
	require.NoError(t, err)

	_, err = f.service.BeginVerification(f.mintEncoded(t, models.ActionClock))
	assert.ErrorIs(t, err, ErrVerificationInFlight)
}

func TestClockService_PhotoBeforePinRefused(t *testing.T) {
	f := newClockFixture(t)
	_, err := f.service.BeginVerification(f.mintEncoded(t, models.ActionClock))
	require.NoError(t, err)

	_, err = f.service.SubmitPhoto(f.emp.ID, []byte{0x1}, f.clock.Now())
	assert.ErrorIs(t, err, identity.ErrWrongStage)

	// the flow survives a premature photo
	_, err = f.service.SubmitPin(f.emp.ID, "1234")
	assert.NoError(t, err)
}

func TestClockService_CancelAbortsWithoutAction(t *testing.T) {
	f := newClockFixture(t)
	_, err := f.service.BeginVerification(f.mintEncoded(t, models.ActionClock))
	require.NoError(t, err)

	require.NoError(t, f.service.Cancel(f.emp.ID))

	_, err = f.roster.GetActiveShift(f.emp.ID)
	assert.ErrorIs(t, err, ErrNoActiveShift)
	assert.Empty(t, f.sink.Stored)

	assert.ErrorIs(t, f.service.Cancel(f.emp.ID), ErrNoVerification)
}

func TestClockService_PhotoStoreFailureDoesNotUndoAction(t *testing.T) {
	f := newClockFixture(t)
	f.sink.FailErr = errors.New("disk full")

	_, err := f.service.BeginVerification(f.mintEncoded(t, models.ActionClock))
	require.NoError(t, err)
	_, err = f.service.SubmitPin(f.emp.ID, "1234")
	require.NoError(t, err)

	result, err := f.service.SubmitPhoto(f.emp.ID, []byte{0x1}, f.clock.Now())
	require.NoError(t, err)
	assert.Nil(t, result.Photo)
	assert.Contains(t, result.PhotoError, "disk full")

	// the clock action itself stands
	_, err = f.roster.GetActiveShift(f.emp.ID)
	assert.NoError(t, err)
}

func TestClockService_SubmitWithoutVerification(t *testing.T) {
	f := newClockFixture(t)

	_, err := f.service.SubmitPin(f.emp.ID, "1234")
	assert.ErrorIs(t, err, ErrNoVerification)

	_, err = f.service.SubmitPhoto(f.emp.ID, []byte{0x1}, f.clock.Now())
	assert.ErrorIs(t, err, ErrNoVerification)
}

func TestClockService_NumericPinAccepted(t *testing.T) {
	f := newClockFixture(t)
	_, err := f.service.BeginVerification(f.mintEncoded(t, models.ActionClock))
	require.NoError(t, err)

	status, err := f.service.SubmitPin(f.emp.ID, 1234)
	require.NoError(t, err)
	assert.Equal(t, identity.StagePhotoRequired, status.Stage)
}

func TestClockService_EndToEndShiftCycle(t *testing.T) {
	f := newClockFixture(t)

	verify := func(action models.ClockAction) *ClockResult {
		_, err := f.service.BeginVerification(f.mintEncoded(t, action))
		require.NoError(t, err)
		_, err = f.service.SubmitPin(f.emp.ID, "1234")
		require.NoError(t, err)
		result, err := f.service.SubmitPhoto(f.emp.ID, []byte{0x1}, f.clock.Now())
		require.NoError(t, err)
		return result
	}

	opened := verify(models.ActionClock)
	assert.True(t, opened.Shift.Active())

	f.clock.Advance(4 * time.Hour)
	verify(models.ActionBreak)
	f.clock.Advance(30 * time.Minute)
	verify(models.ActionBreak)

	f.clock.Advance(4 * time.Hour)
	closed := verify(models.ActionEndShift)
	assert.False(t, closed.Shift.Active())
	assert.Equal(t, 30, closed.Shift.BreakMinutes)
	assert.True(t, closed.Shift.Valid)
	assert.Len(t, f.sink.Stored, 4)
}
