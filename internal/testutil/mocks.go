package testutil

import (
	"sync"
	"time"
	"timeclock/internal/models"
	"timeclock/internal/providers"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// MockClock implements providers.Clock with a settable instant.
type MockClock struct {
	mu      sync.Mutex
	current time.Time
}

func NewMockClock(start time.Time) *MockClock {
	return &MockClock{current: start}
}

func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

func (m *MockClock) Set(t time.Time) {
	m.mu.Lock()
	m.current = t
	m.mu.Unlock()
}

func (m *MockClock) Advance(d time.Duration) time.Time {
	m.mu.Lock()
	m.current = m.current.Add(d)
	updated := m.current
	m.mu.Unlock()
	return updated
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu   sync.Mutex
	Data map[string][]byte
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

func (m *MockCache) Del(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Data, key)
}

// MockCompressor implements interfaces.CompressorInterface with
// injectable behavior; the default is identity.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Close() {}

// MockMetrics implements providers.MetricsProviderInterface and counts
// the domain events tests care about.
type MockMetrics struct {
	mu              sync.Mutex
	SessionsMinted  int
	Verdicts        map[string]int
	PinFailures     int
	Lockouts        int
	SaveFailures    int
	EmployeesTotal  int
	ShiftsTotal     int
	SavesObserved   int
	RequestsCounted int
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{Verdicts: make(map[string]int)}
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestsCounted++
}
func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (m *MockMetrics) IncCacheHits()                                    {}
func (m *MockMetrics) IncCacheMisses()                                  {}
func (m *MockMetrics) ObservePersistenceDuration(_ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SavesObserved++
}
func (m *MockMetrics) IncSaveFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveFailures++
}
func (m *MockMetrics) IncSessionsMinted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SessionsMinted++
}
func (m *MockMetrics) IncSessionVerdict(verdict string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Verdicts[verdict]++
}
func (m *MockMetrics) IncPinFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PinFailures++
}
func (m *MockMetrics) IncLockouts() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Lockouts++
}
func (m *MockMetrics) SetEmployeesTotal(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EmployeesTotal = count
}
func (m *MockMetrics) SetShiftsTotal(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ShiftsTotal = count
}

// MockPhotoSink implements services.PhotoSinkInterface.
type MockPhotoSink struct {
	mu      sync.Mutex
	Stored  []*models.PhotoRecord
	FailErr error
}

func (m *MockPhotoSink) Store(employeeID string, action models.ClockAction, photo []byte, takenAt time.Time) (*models.PhotoRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailErr != nil {
		return nil, m.FailErr
	}
	record := &models.PhotoRecord{
		ID:         "photo-" + employeeID,
		EmployeeID: employeeID,
		Action:     action,
		Path:       "/dev/null",
		TakenAt:    takenAt,
	}
	m.Stored = append(m.Stored, record)
	return record, nil
}
