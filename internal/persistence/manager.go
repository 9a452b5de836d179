package persistence

import (
	"errors"
	"fmt"
	"time"
	"timeclock/internal/models"
	"timeclock/internal/providers"
	"timeclock/internal/structures"

	json "github.com/goccy/go-json"
	"go.uber.org/atomic"
)

const defaultStalenessThreshold = 5 * time.Minute

// Manager owns the durable application state. Every save writes three
// redundant records (primary, recovery envelope, rotated backup) and a
// last-save marker; load walks the redundancy chain and never trusts
// data whose embedded checksum fails self-validation.
type Manager struct {
	store     *ChecksumStore
	logger    providers.Logger
	clock     providers.Clock
	staleness time.Duration

	lastSave  atomic.Int64 // unix milli of the most recent successful save
	recovered atomic.Bool  // a redundant copy or fallback was used on load
}

func NewManager(conf *structures.Config, store *ChecksumStore, logger providers.Logger, clock providers.Clock) *Manager {
	staleness := conf.Persistence.StalenessThreshold
	if staleness <= 0 {
		staleness = defaultStalenessThreshold
	}
	return &Manager{
		store:     store,
		logger:    logger,
		clock:     clock,
		staleness: staleness,
	}
}

// Save persists the state. All records must be written or the save is
// reported failed; the caller decides whether to alert the user.
func (m *Manager) Save(state *models.AppState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("cannot serialize state: %w", err)
	}

	now := m.clock.Now()
	env := NewEnvelope(now, data)

	// Rotate the previous recovery envelope into the backup slot so one
	// older generation survives a corrupted save.
	if prev, err := m.store.Get(KeyRecovery); err == nil {
		if err := m.store.Put(KeyBackup, prev); err != nil {
			return fmt.Errorf("backup rotation failed: %w", err)
		}
	} else if errors.Is(err, ErrNotFound) {
		if err := m.store.PutEnvelope(KeyBackup, env); err != nil {
			return fmt.Errorf("backup write failed: %w", err)
		}
	} else {
		return fmt.Errorf("backup rotation failed: %w", err)
	}

	if err := m.store.Put(KeyState, data); err != nil {
		return fmt.Errorf("primary write failed: %w", err)
	}
	if err := m.store.PutEnvelope(KeyRecovery, env); err != nil {
		return fmt.Errorf("recovery write failed: %w", err)
	}

	marker, err := json.Marshal(now.UnixMilli())
	if err != nil {
		return err
	}
	if err := m.store.Put(KeyLastSave, marker); err != nil {
		return fmt.Errorf("last-save marker write failed: %w", err)
	}

	m.lastSave.Store(now.UnixMilli())
	return nil
}

// Load returns the primary state when its checksum matches the recovery
// envelope, otherwise the first redundant copy that self-validates, and
// the caller-supplied fallback when none does.
func (m *Manager) Load(fallback *models.AppState) *models.AppState {
	primary, perr := m.store.Get(KeyState)
	env, eerr := m.store.GetEnvelope(KeyRecovery)

	if perr == nil && eerr == nil && Checksum(primary) == env.Checksum {
		if state, err := decodeState(primary); err == nil {
			return state
		}
		m.logger.Warnf(providers.TypeApp, "Primary state record unreadable despite checksum match")
	}

	if errors.Is(perr, ErrNotFound) && eerr != nil {
		// First run, nothing stored yet.
		return fallback
	}

	m.logger.Warnf(providers.TypeApp, "Primary state corrupted or missing, walking recovery chain")
	m.recovered.Store(true)

	if eerr == nil && env.SelfValid() {
		if state, err := decodeState(env.Data); err == nil {
			m.logger.Infof(providers.TypeApp, "State restored from recovery envelope")
			return state
		}
	}

	if backup, err := m.store.GetEnvelope(KeyBackup); err == nil && backup.SelfValid() {
		if state, err := decodeState(backup.Data); err == nil {
			m.logger.Infof(providers.TypeApp, "State restored from rotated backup")
			return state
		}
	}

	m.logger.Errorf(providers.TypeApp, "All stored copies corrupted, using fallback state")
	return fallback
}

// Recovered reports whether the last Load had to leave the primary
// record behind.
func (m *Manager) Recovered() bool {
	return m.recovered.Load()
}

// DetectUnexpectedShutdown reports whether the stored last-save marker
// is staler than the configured threshold. It is a signal for a
// "recovery occurred" notice only and mutates nothing.
func (m *Manager) DetectUnexpectedShutdown() bool {
	raw, err := m.store.Get(KeyLastSave)
	if err != nil {
		return false
	}
	var millis int64
	if err := json.Unmarshal(raw, &millis); err != nil {
		return false
	}
	return m.clock.Now().Sub(time.UnixMilli(millis)) > m.staleness
}

// LastSave returns the in-memory timestamp of the latest successful
// save, zero before the first one.
func (m *Manager) LastSave() time.Time {
	millis := m.lastSave.Load()
	if millis == 0 {
		return time.Time{}
	}
	return time.UnixMilli(millis)
}

// ExportSnapshot renders the state as a human-portable envelope.
func (m *Manager) ExportSnapshot(state *models.AppState) ([]byte, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(NewEnvelope(m.clock.Now(), data), "", "  ")
}

// ImportSnapshot parses an exported snapshot (envelope or bare state),
// re-validates the embedded checksum when present and rejects input
// missing the employees or shifts collections. It never partially
// adopts invalid input.
func (m *Manager) ImportSnapshot(blob []byte) (*models.AppState, error) {
	payload := blob

	var env Envelope
	if err := json.Unmarshal(blob, &env); err == nil && len(env.Data) > 0 {
		if env.Checksum != "" && !env.SelfValid() {
			return nil, errors.New("snapshot checksum mismatch")
		}
		payload = env.Data
	}

	var probe struct {
		Employees *[]*models.Employee `json:"employees"`
		Shifts    *[]*models.Shift    `json:"shifts"`
	}
	if err := json.Unmarshal(payload, &probe); err != nil {
		return nil, fmt.Errorf("malformed snapshot: %w", err)
	}
	if probe.Employees == nil || probe.Shifts == nil {
		return nil, errors.New("snapshot missing employees or shifts collection")
	}

	return decodeState(payload)
}

func decodeState(data []byte) (*models.AppState, error) {
	var state models.AppState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	if state.Employees == nil {
		state.Employees = make([]*models.Employee, 0)
	}
	if state.Shifts == nil {
		state.Shifts = make([]*models.Shift, 0)
	}
	if state.Photos == nil {
		state.Photos = make([]*models.PhotoRecord, 0)
	}
	return &state, nil
}
