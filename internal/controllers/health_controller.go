package controllers

import (
	"fmt"
	"net/http"
	"time"
	"timeclock/internal/persistence"
	"timeclock/internal/providers"
	"timeclock/internal/services"

	json "github.com/goccy/go-json"
)

type HealthController struct {
	roster    services.RosterServiceInterface
	manager   *persistence.Manager
	clock     providers.Clock
	startTime time.Time
}

type healthResponse struct {
	Status        string  `json:"status"`
	Uptime        string  `json:"uptime"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Employees     int     `json:"employees"`
	Shifts        int     `json:"shifts"`
	LastSave      string  `json:"last_save,omitempty"`
	Recovered     bool    `json:"recovered"`
}

func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := hc.clock.Now().Sub(hc.startTime)
	resp := healthResponse{
		Status:        "ok",
		Uptime:        formatDuration(uptime),
		UptimeSeconds: uptime.Seconds(),
		Employees:     len(hc.roster.ListEmployees()),
		Shifts:        len(hc.roster.ListShifts("")),
		Recovered:     hc.manager.Recovered(),
	}
	if last := hc.manager.LastSave(); !last.IsZero() {
		resp.LastSave = last.Format(time.RFC3339)
	}

	gson, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func NewHealthController(roster services.RosterServiceInterface, manager *persistence.Manager, clock providers.Clock) *HealthController {
	return &HealthController{
		roster:    roster,
		manager:   manager,
		clock:     clock,
		startTime: clock.Now(),
	}
}
