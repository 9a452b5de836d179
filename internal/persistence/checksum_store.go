package persistence

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
	"timeclock/internal/persistence/interfaces"
	"timeclock/internal/structures"

	"github.com/cespare/xxhash/v2"
	json "github.com/goccy/go-json"
)

// Storage keys. Each holds one compressed JSON record on disk.
const (
	KeyState    = "app-state"
	KeyRecovery = "app-state-recovery"
	KeyBackup   = "app-state-backup"
	KeyLastSave = "app-state-last-save"
)

var ErrNotFound = errors.New("record not found")

// Checksum is the integrity hash over a stored payload. xxhash is used
// for corruption detection, not tamper resistance.
func Checksum(data []byte) string {
	return strconv.FormatUint(xxhash.Sum64(data), 16)
}

// Envelope pairs a state snapshot with the hash that detects its
// corruption. An envelope is trusted only if SelfValid reports true.
type Envelope struct {
	Timestamp int64           `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
	Checksum  string          `json:"checksum"`
}

func (e *Envelope) SelfValid() bool {
	return len(e.Data) > 0 && e.Checksum == Checksum(e.Data)
}

func NewEnvelope(now time.Time, data []byte) *Envelope {
	return &Envelope{
		Timestamp: now.UnixMilli(),
		Data:      data,
		Checksum:  Checksum(data),
	}
}

// ChecksumStore is a file-backed key/value store. Every record is
// compressed and written atomically: tmp file, fsync, rename.
type ChecksumStore struct {
	dir        string
	compressor interfaces.CompressorInterface
}

func NewChecksumStore(conf *structures.Config, compressor interfaces.CompressorInterface) (*ChecksumStore, error) {
	dir := conf.Persistence.Dir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create storage dir %s: %w", dir, err)
	}
	return &ChecksumStore{dir: dir, compressor: compressor}, nil
}

func (s *ChecksumStore) path(key string) string {
	return filepath.Join(s.dir, key+".dat")
}

func (s *ChecksumStore) Put(key string, value []byte) error {
	data, err := s.compressor.Compress(value)
	if err != nil {
		return err
	}

	fileName := s.path(key)
	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, fileName)
}

func (s *ChecksumStore) Get(key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.compressor.Decompress(data)
}

func (s *ChecksumStore) Delete(key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *ChecksumStore) PutEnvelope(key string, env *Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return s.Put(key, data)
}

// GetEnvelope reads and parses an envelope without judging its
// checksum; callers decide what a failed SelfValid means.
func (s *ChecksumStore) GetEnvelope(key string) (*Envelope, error) {
	data, err := s.Get(key)
	if err != nil {
		return nil, err
	}
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("corrupted envelope %s: %w", key, err)
	}
	return &env, nil
}

func (s *ChecksumStore) Close() {
	s.compressor.Close()
}
