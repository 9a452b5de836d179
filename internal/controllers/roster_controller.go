package controllers

import (
	"errors"
	"net/http"
	"time"
	"timeclock/internal/models"
	"timeclock/internal/providers"
	"timeclock/internal/services"
	"timeclock/internal/validation"

	json "github.com/goccy/go-json"
)

// RosterController serves the employee and shift surface. Read-mostly
// listings are answered through the cache; anything touching active
// shifts or mutating state always computes.
type RosterController struct {
	logger providers.Logger
	roster services.RosterServiceInterface
	cache  providers.CacheProviderInterface
}

func NewRosterController(logger providers.Logger, roster services.RosterServiceInterface, cache providers.CacheProviderInterface) *RosterController {
	return &RosterController{
		logger: logger,
		roster: roster,
		cache:  cache,
	}
}

func (rc *RosterController) serveFromCacheOrCompute(w http.ResponseWriter, cacheKey string, compute func() (any, error)) {
	if data, ok := rc.cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	result, err := compute()
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	rc.cache.Set(cacheKey, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

// employeeView leaves the PIN out of every API response.
type employeeView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func toEmployeeView(emp *models.Employee) employeeView {
	return employeeView{ID: emp.ID, Name: emp.Name, CreatedAt: emp.CreatedAt}
}

func (rc *RosterController) AddEmployee(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload struct {
		Name string     `json:"name"`
		Pin  models.Pin `json:"pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Bad Request")
		return
	}

	emp, err := rc.roster.AddEmployee(payload.Name, payload.Pin)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rc.cache.Del("employees")
	writeJSON(w, http.StatusCreated, toEmployeeView(emp))
}

func (rc *RosterController) ListEmployees(w http.ResponseWriter, r *http.Request) {
	rc.serveFromCacheOrCompute(w, "employees", func() (any, error) {
		employees := rc.roster.ListEmployees()
		views := make([]employeeView, 0, len(employees))
		for _, emp := range employees {
			views = append(views, toEmployeeView(emp))
		}
		return views, nil
	})
}

type shiftRequest struct {
	ID           string    `json:"id,omitempty"`
	EmployeeID   string    `json:"employeeId,omitempty"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	BreakMinutes int       `json:"breakMinutes"`
}

func (sr *shiftRequest) interval() models.ShiftInterval {
	return models.ShiftInterval{Start: sr.Start, End: sr.End, BreakMinutes: sr.BreakMinutes}
}

func (rc *RosterController) CreateShift(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodeShiftRequest(w, r)
	if !ok {
		return
	}
	if payload.EmployeeID == "" {
		writeError(w, http.StatusBadRequest, "employeeId is required")
		return
	}

	shift, err := rc.roster.CreateShift(payload.EmployeeID, payload.interval())
	if err != nil {
		rc.rosterError(w, err)
		return
	}
	rc.invalidateShiftLists(shift.EmployeeID)
	writeJSON(w, http.StatusCreated, shift)
}

func (rc *RosterController) UpdateShift(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodeShiftRequest(w, r)
	if !ok {
		return
	}
	if payload.ID == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	shift, err := rc.roster.UpdateShift(payload.ID, payload.interval())
	if err != nil {
		rc.rosterError(w, err)
		return
	}
	rc.invalidateShiftLists(shift.EmployeeID)
	writeJSON(w, http.StatusOK, shift)
}

func (rc *RosterController) DeleteShift(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.ID == "" {
		writeError(w, http.StatusBadRequest, "Bad Request")
		return
	}

	// Resolve the owner before the delete so the right per-employee
	// listing can be invalidated.
	var employeeID string
	for _, shift := range rc.roster.ListShifts("") {
		if shift.ID == payload.ID {
			employeeID = shift.EmployeeID
			break
		}
	}

	if err := rc.roster.DeleteShift(payload.ID); err != nil {
		rc.rosterError(w, err)
		return
	}
	rc.invalidateShiftLists(employeeID)
	w.WriteHeader(http.StatusNoContent)
}

// ValidateShift is the dry-run surface the shift editor calls while the
// user types; nothing is stored.
func (rc *RosterController) ValidateShift(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodeShiftRequest(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, validation.Validate(payload.interval()))
}

func (rc *RosterController) ListShifts(w http.ResponseWriter, r *http.Request) {
	employeeID := r.URL.Query().Get("employee")
	rc.serveFromCacheOrCompute(w, "shifts:"+employeeID, func() (any, error) {
		return rc.roster.ListShifts(employeeID), nil
	})
}

func (rc *RosterController) ActiveShift(w http.ResponseWriter, r *http.Request) {
	employeeID := r.URL.Query().Get("employee")
	if employeeID == "" {
		writeError(w, http.StatusBadRequest, "employee is required")
		return
	}

	shift, err := rc.roster.GetActiveShift(employeeID)
	if err != nil {
		rc.rosterError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, shift)
}

// invalidateShiftLists drops the cached all-shifts listing and, when the
// owner is known, that employee's filtered listing.
func (rc *RosterController) invalidateShiftLists(employeeID string) {
	rc.cache.Del("shifts:")
	if employeeID != "" {
		rc.cache.Del("shifts:" + employeeID)
	}
}

func decodeShiftRequest(w http.ResponseWriter, r *http.Request) (*shiftRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload shiftRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Bad Request")
		return nil, false
	}
	return &payload, true
}

func (rc *RosterController) rosterError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrEmployeeNotFound), errors.Is(err, services.ErrShiftNotFound), errors.Is(err, services.ErrNoActiveShift):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		rc.logger.Errorf(providers.TypeApp, "Roster error: %s", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
	}
}
