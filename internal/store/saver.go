package store

import (
	"sync"
	"time"

	"github.com/iwvelando/sba-spread/pkg/spread"
	"go.uber.org/zap"
)

// Status reports where the autosaver is.
type Status string

const (
	StatusSaved  Status = "saved"
	StatusSaving Status = "saving"
	StatusError  Status = "error"
)

// DefaultSaveDelay is how long the saver waits for edits to settle.
const DefaultSaveDelay = 500 * time.Millisecond

// Saver writes the latest deal to a DB once edits have been quiet for delay.
// Only the newest scheduled deal is written.
type Saver struct {
	db     *DB
	key    string
	delay  time.Duration
	logger *zap.Logger

	writeMu sync.Mutex

	mu      sync.Mutex
	timer   *time.Timer
	pending spread.Deal
	dirty   bool
	status  Status
	lastErr error
}

// NewSaver creates a saver writing under key. A non-positive delay uses
// DefaultSaveDelay.
func NewSaver(logger *zap.Logger, db *DB, key string, delay time.Duration) *Saver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if delay <= 0 {
		delay = DefaultSaveDelay
	}
	return &Saver{db: db, key: key, delay: delay, logger: logger, status: StatusSaved}
}

// Schedule queues d for saving, restarting the quiet-period timer.
func (s *Saver) Schedule(d spread.Deal) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = d
	s.dirty = true
	s.status = StatusSaving
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, s.save)
}

// Flush writes any pending deal immediately.
func (s *Saver) Flush() error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()

	s.save()
	_, err := s.Status()
	return err
}

// Status returns the current state and the last save error, if any.
func (s *Saver) Status() (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status, s.lastErr
}

func (s *Saver) save() {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	if !s.dirty {
		s.mu.Unlock()
		return
	}
	d := s.pending
	s.dirty = false
	s.mu.Unlock()

	err := s.db.Put(s.key, d)

	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case err != nil:
		s.status = StatusError
		s.lastErr = err
		s.logger.Error("autosave failed", zap.String("op", "store.Saver.save"), zap.String("key", s.key), zap.Error(err))
	case s.dirty:
		// a newer edit arrived while writing; its timer will save it
		s.lastErr = nil
	default:
		s.status = StatusSaved
		s.lastErr = nil
		s.logger.Debug("autosaved deal", zap.String("op", "store.Saver.save"), zap.String("key", s.key))
	}
}
