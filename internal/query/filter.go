package query

import (
	"strings"

	"moneytracker/internal/core"
)

// Matches reports whether t passes every active predicate.
func (c Criteria) Matches(t core.Transaction) bool {
	c = c.Normalize()
	if c.Type != TypeAll && string(t.Type) != string(c.Type) {
		return false
	}
	if c.Category != "" && strings.ToLower(t.Category) != c.Category {
		return false
	}
	if c.DateFrom != nil && t.Date.Before(c.DateFrom.Time) {
		return false
	}
	if c.DateTo != nil && t.Date.After(c.DateTo.EndOfDay()) {
		return false
	}
	if c.Search != "" && !strings.Contains(strings.ToLower(t.Note), c.Search) {
		return false
	}
	return true
}

// Filter returns the transactions matching c, in their original order. The
// input slice is never modified.
func Filter(transactions []core.Transaction, c Criteria) []core.Transaction {
	c = c.Normalize()
	out := make([]core.Transaction, 0, len(transactions))
	for _, t := range transactions {
		if c.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}
