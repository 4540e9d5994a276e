// Package report aggregates transactions into totals and chart series.
//
// Every function is pure and works on whatever list it is given; callers
// pass the filtered list so the figures match the table.
package report

import (
	"sort"
	"strings"

	"moneytracker/internal/core"
)

// ComputeTotals sums income and expense amounts. Balance is always exactly
// Income - Expense.
func ComputeTotals(transactions []core.Transaction) core.Totals {
	var income, expense core.Money
	for _, t := range transactions {
		if t.IsIncome() {
			income = income.Add(t.Amount)
		} else {
			expense = expense.Add(t.Amount)
		}
	}
	return core.Totals{
		Income:  income,
		Expense: expense,
		Balance: income.Sub(expense),
	}
}

// Categories returns the distinct non-empty categories, sorted, for entry
// form suggestions.
func Categories(transactions []core.Transaction) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, t := range transactions {
		c := strings.TrimSpace(t.Category)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
