package controllers

import (
	"io"
	"net/http"
	"timeclock/internal/persistence"
	"timeclock/internal/providers"
	"timeclock/internal/services"
)

const maxSnapshotSize = 16 << 20 // 16 MB

// SnapshotController is the manual export/import escape hatch for the
// locally persisted state.
type SnapshotController struct {
	logger  providers.Logger
	roster  services.RosterServiceInterface
	manager *persistence.Manager
}

func NewSnapshotController(logger providers.Logger, roster services.RosterServiceInterface, manager *persistence.Manager) *SnapshotController {
	return &SnapshotController{
		logger:  logger,
		roster:  roster,
		manager: manager,
	}
}

func (sc *SnapshotController) Export(w http.ResponseWriter, r *http.Request) {
	blob, err := sc.manager.ExportSnapshot(sc.roster.GetSnapshot())
	if err != nil {
		sc.logger.Errorf(providers.TypeApp, "Snapshot export failed: %s", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="timeclock-snapshot.json"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(blob)
}

// Import replaces the whole state or nothing: a snapshot that fails its
// checksum or lacks the required collections is rejected outright.
func (sc *SnapshotController) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSnapshotSize)
	blob, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Bad Request")
		return
	}

	state, err := sc.manager.ImportSnapshot(blob)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sc.roster.PutState(state)
	sc.logger.Infof(providers.TypeApp, "Snapshot imported: %d employees, %d shifts", len(state.Employees), len(state.Shifts))
	writeJSON(w, http.StatusOK, map[string]int{
		"employees": len(state.Employees),
		"shifts":    len(state.Shifts),
	})
}
