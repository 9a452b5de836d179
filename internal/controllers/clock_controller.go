package controllers

import (
	"bytes"
	"errors"
	"net/http"
	"time"
	"timeclock/internal/identity"
	"timeclock/internal/models"
	"timeclock/internal/providers"
	"timeclock/internal/services"
	"timeclock/internal/session"

	json "github.com/goccy/go-json"
)

// ClockController is the HTTP surface of the clock flow: mint a session
// for the QR display, verify a scanned payload, then drive PIN and
// photo submission.
type ClockController struct {
	logger  providers.Logger
	service services.ClockServiceInterface
	cache   providers.CacheProviderInterface
	clock   providers.Clock
}

func NewClockController(logger providers.Logger, service services.ClockServiceInterface, cache providers.CacheProviderInterface, clock providers.Clock) *ClockController {
	return &ClockController{logger: logger, service: service, cache: cache, clock: clock}
}

type mintResponse struct {
	Token *session.Token `json:"token"`
	URL   string         `json:"url"`
}

func (cc *ClockController) MintSession(w http.ResponseWriter, r *http.Request) {
	employeeID := r.URL.Query().Get("employee")
	action := models.ClockAction(r.URL.Query().Get("action"))
	if employeeID == "" || !action.Valid() {
		writeError(w, http.StatusBadRequest, "employee and a valid action are required")
		return
	}

	token, url, err := cc.service.MintSession(employeeID, action)
	if err != nil {
		cc.clockError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mintResponse{Token: token, URL: url})
}

func (cc *ClockController) Verify(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload struct {
		Data string `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Data == "" {
		writeError(w, http.StatusBadRequest, "Bad Request")
		return
	}

	status, err := cc.service.BeginVerification(payload.Data)
	if err != nil {
		cc.clockError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (cc *ClockController) SubmitPin(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload struct {
		EmployeeID string          `json:"employeeId"`
		Pin        json.RawMessage `json:"pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.EmployeeID == "" {
		writeError(w, http.StatusBadRequest, "Bad Request")
		return
	}

	// The PIN may be a JSON string or number; keep numbers verbatim so
	// normalization sees the same digits the client sent.
	var pin any
	dec := json.NewDecoder(bytes.NewReader(payload.Pin))
	dec.UseNumber()
	if err := dec.Decode(&pin); err != nil {
		writeError(w, http.StatusBadRequest, "Bad Request")
		return
	}

	status, err := cc.service.SubmitPin(payload.EmployeeID, pin)
	if err != nil {
		if errors.Is(err, identity.ErrPinMismatch) && status != nil {
			left := status.AttemptsLeft
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error(), AttemptsLeft: &left})
			return
		}
		cc.clockError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (cc *ClockController) SubmitPhoto(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload struct {
		EmployeeID string    `json:"employeeId"`
		Photo      []byte    `json:"photo"`
		TakenAt    time.Time `json:"takenAt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.EmployeeID == "" {
		writeError(w, http.StatusBadRequest, "Bad Request")
		return
	}
	if payload.TakenAt.IsZero() {
		payload.TakenAt = cc.clock.Now()
	}

	result, err := cc.service.SubmitPhoto(payload.EmployeeID, payload.Photo, payload.TakenAt)
	if err != nil {
		cc.clockError(w, err)
		return
	}

	// The committed action changed shift state; drop the cached listings.
	cc.cache.Del("shifts:")
	cc.cache.Del("shifts:" + payload.EmployeeID)
	writeJSON(w, http.StatusOK, result)
}

func (cc *ClockController) Cancel(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload struct {
		EmployeeID string `json:"employeeId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.EmployeeID == "" {
		writeError(w, http.StatusBadRequest, "Bad Request")
		return
	}

	if err := cc.service.Cancel(payload.EmployeeID); err != nil {
		cc.clockError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (cc *ClockController) clockError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrSessionInvalid):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, identity.ErrTooManyAttempts), errors.Is(err, services.ErrCooldownActive):
		writeError(w, http.StatusLocked, err.Error())
	case errors.Is(err, services.ErrVerificationInFlight), errors.Is(err, identity.ErrWrongStage), errors.Is(err, services.ErrNoActiveShift):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrNoVerification), errors.Is(err, services.ErrEmployeeNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, identity.ErrEmptyPhoto):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		cc.logger.Errorf(providers.TypeApp, "Clock flow error: %s", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
	}
}
