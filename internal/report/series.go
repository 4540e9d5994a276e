package report

import (
	"time"

	"moneytracker/internal/core"
)

// MonthsInWindow is the length of the trailing monthly window.
const MonthsInWindow = 12

// MonthKeys returns the YYYY-MM keys of the trailing window ending at now's
// calendar month, oldest first.
func MonthKeys(now time.Time) []string {
	y, m, _ := now.Date()
	first := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	keys := make([]string, MonthsInWindow)
	for i := 0; i < MonthsInWindow; i++ {
		keys[i] = first.AddDate(0, i-(MonthsInWindow-1), 0).Format(core.MonthLayout)
	}
	return keys
}

// BuildMonthlySeries buckets income and expense per month over the trailing
// window. Months without activity report zero; transactions outside the
// window are left out.
func BuildMonthlySeries(transactions []core.Transaction, now time.Time) core.MonthlySeries {
	keys := MonthKeys(now)
	index := make(map[string]int, len(keys))
	for i, k := range keys {
		index[k] = i
	}

	series := core.MonthlySeries{
		Labels:  keys,
		Income:  make([]core.Money, len(keys)),
		Expense: make([]core.Money, len(keys)),
	}
	for _, t := range transactions {
		i, ok := index[t.Date.MonthKey()]
		if !ok {
			continue
		}
		if t.IsIncome() {
			series.Income[i] = series.Income[i].Add(t.Amount)
		} else {
			series.Expense[i] = series.Expense[i].Add(t.Amount)
		}
	}
	return series
}

// BuildCategorySeries sums expenses per category in first-seen order.
// Expenses without a category are grouped under otherLabel, which falls back
// to core.OtherCategory when empty. Income is ignored.
func BuildCategorySeries(transactions []core.Transaction, otherLabel string) core.CategorySeries {
	if otherLabel == "" {
		otherLabel = core.OtherCategory
	}
	series := core.CategorySeries{
		Labels: make([]string, 0),
		Values: make([]core.Money, 0),
	}
	index := make(map[string]int)
	for _, t := range transactions {
		if t.IsIncome() {
			continue
		}
		label := t.Category
		if label == "" {
			label = otherLabel
		}
		i, ok := index[label]
		if !ok {
			i = len(series.Labels)
			index[label] = i
			series.Labels = append(series.Labels, label)
			series.Values = append(series.Values, core.Money{})
		}
		series.Values[i] = series.Values[i].Add(t.Amount)
	}
	return series
}
