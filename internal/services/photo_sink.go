package services

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
	"timeclock/internal/models"
	"timeclock/internal/providers"
	"timeclock/internal/structures"

	"github.com/google/uuid"
)

// PhotoSinkInterface is the photo-storage collaborator. Correctness of
// the clock flow does not depend on it, but its failures must surface
// to the user.
type PhotoSinkInterface interface {
	Store(employeeID string, action models.ClockAction, photo []byte, takenAt time.Time) (*models.PhotoRecord, error)
}

// DirectoryPhotoSink writes captures as files under a configured
// directory and records their metadata in the application state.
type DirectoryPhotoSink struct {
	dir    string
	roster RosterServiceInterface
	logger providers.Logger
}

func NewDirectoryPhotoSink(conf *structures.Config, roster RosterServiceInterface, logger providers.Logger) (PhotoSinkInterface, error) {
	if err := os.MkdirAll(conf.Photos.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create photo dir %s: %w", conf.Photos.Dir, err)
	}
	return &DirectoryPhotoSink{
		dir:    conf.Photos.Dir,
		roster: roster,
		logger: logger,
	}, nil
}

func (ps *DirectoryPhotoSink) Store(employeeID string, action models.ClockAction, photo []byte, takenAt time.Time) (*models.PhotoRecord, error) {
	id := uuid.NewString()
	name := fmt.Sprintf("%s-%d-%s.jpg", employeeID, takenAt.UnixMilli(), id[:8])
	path := filepath.Join(ps.dir, name)

	if err := os.WriteFile(path, photo, 0o644); err != nil {
		return nil, fmt.Errorf("cannot store photo: %w", err)
	}

	record := &models.PhotoRecord{
		ID:         id,
		EmployeeID: employeeID,
		Action:     action,
		Path:       path,
		TakenAt:    takenAt,
	}
	ps.roster.AddPhoto(record)
	ps.logger.Debugf(providers.TypeApp, "Stored clock photo %s for employee %s", name, employeeID)
	return record, nil
}
