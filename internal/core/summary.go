package core

import "time"

// Totals summarises a list of transactions. Balance is Income - Expense.
type Totals struct {
	Income  Money `json:"income"`
	Expense Money `json:"expense"`
	Balance Money `json:"balance"`
}

// MonthlySeries holds one income and one expense bucket per month label.
type MonthlySeries struct {
	Labels  []string `json:"labels"`
	Income  []Money  `json:"income"`
	Expense []Money  `json:"expense"`
}

// CategorySeries holds expense sums per category in first-seen order.
type CategorySeries struct {
	Labels []string `json:"labels"`
	Values []Money  `json:"values"`
}

// Value returns the sum recorded for label, if any.
func (s CategorySeries) Value(label string) (Money, bool) {
	for i, l := range s.Labels {
		if l == label {
			return s.Values[i], true
		}
	}
	return Money{}, false
}

// Operation names a collection mutation.
type Operation string

const (
	OpAdd    Operation = "add"
	OpEdit   Operation = "edit"
	OpDelete Operation = "delete"
	OpImport Operation = "import"
	OpSeed   Operation = "seed"
	OpReset  Operation = "reset"
)

// ChangeEvent describes an applied mutation of the collection.
type ChangeEvent struct {
	Operation     Operation `json:"operation"`
	TransactionID string    `json:"transaction_id,omitempty"`
	Version       uint64    `json:"version"`
	Count         int       `json:"count"`
	Timestamp     time.Time `json:"timestamp"`
}
