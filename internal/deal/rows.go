package deal

import (
	"fmt"

	"github.com/iwvelando/sba-spread/pkg/spread"
)

// appendRow returns a new slice with row added at the end.
func appendRow[T any](rows []T, row T) []T {
	out := make([]T, len(rows), len(rows)+1)
	copy(out, rows)
	return append(out, row)
}

// replaceRow returns a new slice with the row matching id replaced.
func replaceRow[T any](rows []T, id string, idOf func(T) string, row T) ([]T, error) {
	for i, r := range rows {
		if idOf(r) == id {
			return replaceAt(rows, i, row)
		}
	}
	return nil, fmt.Errorf("row %s: %w", id, ErrNotFound)
}

// removeRow returns a new slice without the row matching id.
func removeRow[T any](rows []T, id string, idOf func(T) string) ([]T, error) {
	for i, r := range rows {
		if idOf(r) == id {
			out := make([]T, 0, len(rows)-1)
			out = append(out, rows[:i]...)
			return append(out, rows[i+1:]...), nil
		}
	}
	return nil, fmt.Errorf("row %s: %w", id, ErrNotFound)
}

func debtID(d spread.Debt) string { return d.ID }
func useID(u spread.UseOfFunds) string { return u.ID }
func affiliateID(a spread.AffiliateEntity) string { return a.ID }

// Debts returns the existing debts.
func (s *Store) Debts() []spread.Debt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]spread.Debt(nil), s.deal.Debts...)
}

// AddDebt appends a debt, assigning an ID when it has none, and returns it.
func (s *Store) AddDebt(d spread.Debt) spread.Debt {
	if d.ID == "" {
		d.ID = newID()
	}
	_ = s.mutate("deal.AddDebt", func(cur *spread.Deal) error {
		cur.Debts = appendRow(cur.Debts, d)
		return nil
	})
	return d
}

// UpdateDebt replaces the debt with the same ID.
func (s *Store) UpdateDebt(d spread.Debt) error {
	return s.mutate("deal.UpdateDebt", func(cur *spread.Deal) error {
		rows, err := replaceRow(cur.Debts, d.ID, debtID, d)
		if err != nil {
			return fmt.Errorf("debt: %w", err)
		}
		cur.Debts = rows
		return nil
	})
}

// RemoveDebt deletes the debt with the given ID.
func (s *Store) RemoveDebt(id string) error {
	return s.mutate("deal.RemoveDebt", func(cur *spread.Deal) error {
		rows, err := removeRow(cur.Debts, id, debtID)
		if err != nil {
			return fmt.Errorf("debt: %w", err)
		}
		cur.Debts = rows
		return nil
	})
}

// UsesOfFunds returns the use-of-proceeds rows.
func (s *Store) UsesOfFunds() []spread.UseOfFunds {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]spread.UseOfFunds(nil), s.deal.UsesOfFunds...)
}

// AddUse appends a use of funds, assigning an ID when it has none.
func (s *Store) AddUse(u spread.UseOfFunds) spread.UseOfFunds {
	if u.ID == "" {
		u.ID = newID()
	}
	_ = s.mutate("deal.AddUse", func(cur *spread.Deal) error {
		cur.UsesOfFunds = appendRow(cur.UsesOfFunds, u)
		return nil
	})
	return u
}

// UpdateUse replaces the use of funds with the same ID.
func (s *Store) UpdateUse(u spread.UseOfFunds) error {
	return s.mutate("deal.UpdateUse", func(cur *spread.Deal) error {
		rows, err := replaceRow(cur.UsesOfFunds, u.ID, useID, u)
		if err != nil {
			return fmt.Errorf("use of funds: %w", err)
		}
		cur.UsesOfFunds = rows
		return nil
	})
}

// RemoveUse deletes the use of funds with the given ID.
func (s *Store) RemoveUse(id string) error {
	return s.mutate("deal.RemoveUse", func(cur *spread.Deal) error {
		rows, err := removeRow(cur.UsesOfFunds, id, useID)
		if err != nil {
			return fmt.Errorf("use of funds: %w", err)
		}
		cur.UsesOfFunds = rows
		return nil
	})
}

// Affiliates returns the affiliated entities.
func (s *Store) Affiliates() []spread.AffiliateEntity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.deal.Clone().Affiliates
}

// AddAffiliate appends an affiliate, assigning an ID when it has none.
func (s *Store) AddAffiliate(a spread.AffiliateEntity) spread.AffiliateEntity {
	if a.ID == "" {
		a.ID = newID()
	}
	_ = s.mutate("deal.AddAffiliate", func(cur *spread.Deal) error {
		cur.Affiliates = appendRow(cur.Affiliates, a)
		return nil
	})
	return a
}

// UpdateAffiliate replaces the affiliate with the same ID.
func (s *Store) UpdateAffiliate(a spread.AffiliateEntity) error {
	return s.mutate("deal.UpdateAffiliate", func(cur *spread.Deal) error {
		rows, err := replaceRow(cur.Affiliates, a.ID, affiliateID, a)
		if err != nil {
			return fmt.Errorf("affiliate: %w", err)
		}
		cur.Affiliates = rows
		return nil
	})
}

// RemoveAffiliate deletes the affiliate with the given ID.
func (s *Store) RemoveAffiliate(id string) error {
	return s.mutate("deal.RemoveAffiliate", func(cur *spread.Deal) error {
		rows, err := removeRow(cur.Affiliates, id, affiliateID)
		if err != nil {
			return fmt.Errorf("affiliate: %w", err)
		}
		cur.Affiliates = rows
		return nil
	})
}
