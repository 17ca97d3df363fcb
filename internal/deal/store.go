// Package deal holds the process-wide deal being edited. Readers receive
// snapshots; writers replace list-backed rows copy-on-write so that earlier
// snapshots are never mutated.
package deal

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/iwvelando/sba-spread/pkg/spread"
	"go.uber.org/zap"
)

// ErrNotFound is returned when a row ID or period index does not exist.
var ErrNotFound = errors.New("not found")

// Store guards a single deal.
type Store struct {
	mu          sync.RWMutex
	deal        spread.Deal
	logger      *zap.Logger
	subscribers []func(spread.Deal)
}

// NewStore creates a store seeded with initial. A nil logger is replaced with
// a no-op logger.
func NewStore(logger *zap.Logger, initial spread.Deal) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{logger: logger, deal: initial.Clone()}
}

// Subscribe registers fn to receive a snapshot after every change.
func (s *Store) Subscribe(fn func(spread.Deal)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// Snapshot returns a deep copy of the current deal.
func (s *Store) Snapshot() spread.Deal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.deal.Clone()
}

// mutate applies fn under the write lock and notifies subscribers once the
// lock is released.
func (s *Store) mutate(op string, fn func(d *spread.Deal) error) error {
	s.mu.Lock()
	if err := fn(&s.deal); err != nil {
		s.mu.Unlock()
		return err
	}
	snapshot := s.deal.Clone()
	subscribers := slices.Clone(s.subscribers)
	s.mu.Unlock()

	s.logger.Debug("deal updated", zap.String("op", op))
	for _, fn := range subscribers {
		fn(snapshot)
	}
	return nil
}

// Replace swaps in a whole new deal.
func (s *Store) Replace(d spread.Deal) {
	_ = s.mutate("deal.Replace", func(cur *spread.Deal) error {
		*cur = d.Clone()
		return nil
	})
}

// SetName renames the deal.
func (s *Store) SetName(name string) {
	_ = s.mutate("deal.SetName", func(d *spread.Deal) error {
		d.Name = name
		return nil
	})
}

// SetLabel renames column i.
func (s *Store) SetLabel(i int, label string) error {
	return s.mutate("deal.SetLabel", func(d *spread.Deal) error {
		if i < 0 || i >= len(d.BusinessPeriods) {
			return fmt.Errorf("label %d: %w", i, ErrNotFound)
		}
		labels := resize(d.Labels, len(d.BusinessPeriods))
		labels[i] = label
		d.Labels = labels
		return nil
	})
}

// SetBusinessPeriod replaces business period i.
func (s *Store) SetBusinessPeriod(i int, p spread.BusinessPeriod) error {
	return s.mutate("deal.SetBusinessPeriod", func(d *spread.Deal) error {
		rows, err := replaceAt(d.BusinessPeriods, i, p)
		if err != nil {
			return fmt.Errorf("business period %d: %w", i, err)
		}
		d.BusinessPeriods = rows
		return nil
	})
}

// SetPersonalPeriod replaces personal period i.
func (s *Store) SetPersonalPeriod(i int, p spread.PersonalPeriod) error {
	return s.mutate("deal.SetPersonalPeriod", func(d *spread.Deal) error {
		rows, err := replaceAt(d.PersonalPeriods, i, p)
		if err != nil {
			return fmt.Errorf("personal period %d: %w", i, err)
		}
		d.PersonalPeriods = rows
		return nil
	})
}

// SetBalanceSheet replaces balance sheet i.
func (s *Store) SetBalanceSheet(i int, p spread.BalanceSheetPeriod) error {
	return s.mutate("deal.SetBalanceSheet", func(d *spread.Deal) error {
		rows, err := replaceAt(d.BalanceSheets, i, p)
		if err != nil {
			return fmt.Errorf("balance sheet %d: %w", i, err)
		}
		d.BalanceSheets = rows
		return nil
	})
}

// LoanTerms returns the proposed loan's terms.
func (s *Store) LoanTerms() spread.LoanTerms {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.deal.LoanTerms
}

// SetLoanTerms replaces the proposed loan's terms.
func (s *Store) SetLoanTerms(t spread.LoanTerms) {
	_ = s.mutate("deal.SetLoanTerms", func(d *spread.Deal) error {
		d.LoanTerms = t
		return nil
	})
}

// SetPersonalLiabilities replaces the guarantor's monthly liabilities.
func (s *Store) SetPersonalLiabilities(l spread.PersonalLiabilities) {
	_ = s.mutate("deal.SetPersonalLiabilities", func(d *spread.Deal) error {
		d.PersonalLiabilities = l
		return nil
	})
}

// SetOptions replaces the DSCR toggles.
func (s *Store) SetOptions(o spread.DealOptions) {
	_ = s.mutate("deal.SetOptions", func(d *spread.Deal) error {
		d.Options = o
		return nil
	})
}

// newID returns a fresh row ID.
func newID() string {
	return uuid.NewString()
}

func resize[T any](rows []T, n int) []T {
	out := make([]T, n)
	copy(out, rows)
	return out
}

func replaceAt[T any](rows []T, i int, row T) ([]T, error) {
	if i < 0 || i >= len(rows) {
		return nil, ErrNotFound
	}
	out := append([]T(nil), rows...)
	out[i] = row
	return out, nil
}
