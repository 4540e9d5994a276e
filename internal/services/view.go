package services

import (
	"context"
	"fmt"
	"time"

	"moneytracker/internal/core"
	"moneytracker/internal/i18n"
	"moneytracker/internal/query"
	"moneytracker/internal/report"
)

// Aggregates is everything derived from the collection and the criteria,
// independent of the current page.
type Aggregates struct {
	Sorted     []core.Transaction
	Totals     core.Totals
	Monthly    core.MonthlySeries
	Categories core.CategorySeries
	Options    []string
}

// View is one full refresh of the tracker's derived state.
type View struct {
	Version         uint64              `json:"version"`
	Totals          core.Totals         `json:"totals"`
	Page            query.Page          `json:"page"`
	Monthly         core.MonthlySeries  `json:"monthly"`
	Categories      core.CategorySeries `json:"categories"`
	CategoryOptions []string            `json:"category_options"`
	CountLabel      string              `json:"count_label"`
	Settings        core.Settings       `json:"settings"`
}

// View recomputes the derived state for the active criteria and page,
// labelled with tr (or the default translator when tr is nil).
func (t *Tracker) View(ctx context.Context, tr Translator) View {
	t.mu.Lock()
	defer t.mu.Unlock()

	agg := t.aggregates(tr)
	page := t.pager.Paginate(agg.Sorted)
	return View{
		Version:         t.version,
		Totals:          agg.Totals,
		Page:            page,
		Monthly:         agg.Monthly,
		Categories:      agg.Categories,
		CategoryOptions: agg.Options,
		CountLabel:      t.countLabel(tr, page.TotalCount),
		Settings:        t.settings,
	}
}

// Table returns the current page of the filtered, date-ordered list.
func (t *Tracker) Table(ctx context.Context) query.Page {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pager.Paginate(t.aggregates(nil).Sorted)
}

// Summary returns the totals of the filtered list.
func (t *Tracker) Summary(ctx context.Context) core.Totals {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.aggregates(nil).Totals
}

// Monthly returns the trailing twelve-month series of the filtered list.
func (t *Tracker) Monthly(ctx context.Context) core.MonthlySeries {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.aggregates(nil).Monthly
}

// CategorySeries returns expense sums per category of the filtered list.
func (t *Tracker) CategorySeries(ctx context.Context, tr Translator) core.CategorySeries {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.aggregates(tr).Categories
}

// CategoryOptions lists every category in the collection, ignoring
// criteria.
func (t *Tracker) CategoryOptions(ctx context.Context) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.aggregates(nil).Options
}

// CountLabel renders the number of filtered transactions.
func (t *Tracker) CountLabel(ctx context.Context, tr Translator) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.countLabel(tr, len(t.aggregates(tr).Sorted))
}

func (t *Tracker) countLabel(tr Translator, n int) string {
	if n == 1 {
		return t.translate(tr, "tx_count_one", nil)
	}
	return t.translate(tr, "tx_count_other", i18n.Params{"count": n})
}

func (t *Tracker) otherLabel(tr Translator) string {
	if tr == nil {
		tr = t.translator
	}
	if tr == nil {
		return core.OtherCategory
	}
	return tr.T("other", nil)
}

// aggregates must be called with mu held.
func (t *Tracker) aggregates(tr Translator) Aggregates {
	start := time.Now()
	now := t.now()
	other := t.otherLabel(tr)

	var key string
	if t.views != nil {
		key = fmt.Sprintf("%s|%s|%s", t.criteria.Key(), now.Format(core.MonthLayout), other)
		if agg, ok := t.views.Get(t.version, key); ok {
			t.metrics.RecordRefresh(time.Since(start), true)
			return agg
		}
	}

	filtered := query.Filter(t.transactions, t.criteria)
	agg := Aggregates{
		Sorted:     query.SortByDateDesc(filtered),
		Totals:     report.ComputeTotals(filtered),
		Monthly:    report.BuildMonthlySeries(filtered, now),
		Categories: report.BuildCategorySeries(filtered, other),
		Options:    report.Categories(t.transactions),
	}
	if t.views != nil {
		t.views.Set(t.version, key, agg)
	}
	t.metrics.RecordRefresh(time.Since(start), false)
	return agg
}
