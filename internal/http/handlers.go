package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"moneytracker/internal/core"
	"moneytracker/internal/i18n"
	"moneytracker/internal/services"
)

// FormattedTotals renders totals in the selected currency.
type FormattedTotals struct {
	Income  string `json:"income"`
	Expense string `json:"expense"`
	Balance string `json:"balance"`
}

type viewResponse struct {
	services.View
	Formatted FormattedTotals `json:"formatted"`
	Lang      string          `json:"lang"`
}

type summaryResponse struct {
	Totals     core.Totals     `json:"totals"`
	Formatted  FormattedTotals `json:"formatted"`
	CountLabel string          `json:"count_label"`
}

func formatTotals(tr *i18n.Translator, totals core.Totals, currency string) FormattedTotals {
	balance := tr.FormatMoney(totals.Balance.Abs(), currency)
	if totals.Balance.IsNegative() {
		balance = "-" + balance
	}
	return FormattedTotals{
		Income:  tr.FormatMoney(totals.Income, currency),
		Expense: tr.FormatMoney(totals.Expense, currency),
		Balance: balance,
	}
}

// applyListParams updates the tracker's criteria and page from the query
// string. Criteria only reset the page when they actually change.
func (s *Server) applyListParams(r *http.Request) {
	q := r.URL.Query()
	if c, ok := ParseCriteria(q); ok {
		s.tracker.SetCriteria(c)
	}
	if page := ParsePage(q); page > 0 {
		s.tracker.GoToPage(page)
	}
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	s.applyListParams(r)
	tr := s.translator(r)
	view := s.tracker.View(r.Context(), tr)

	NewJSONResponse().Body(viewResponse{
		View:      view,
		Formatted: formatTotals(tr, view.Totals, view.Settings.Currency),
		Lang:      tr.Lang(),
	}).Write(w)
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	s.applyListParams(r)
	NewJSONResponse().Body(s.tracker.Table(r.Context())).Write(w)
}

func (s *Server) handleNextPage(w http.ResponseWriter, r *http.Request) {
	s.tracker.NextPage()
	NewJSONResponse().Body(s.tracker.Table(r.Context())).Write(w)
}

func (s *Server) handlePrevPage(w http.ResponseWriter, r *http.Request) {
	s.tracker.PrevPage()
	NewJSONResponse().Body(s.tracker.Table(r.Context())).Write(w)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	s.applyListParams(r)
	tr := s.translator(r)
	totals := s.tracker.Summary(r.Context())
	NewJSONResponse().Body(summaryResponse{
		Totals:     totals,
		Formatted:  formatTotals(tr, totals, s.tracker.Settings().Currency),
		CountLabel: s.tracker.CountLabel(r.Context(), tr),
	}).Write(w)
}

func (s *Server) handleMonthlyChart(w http.ResponseWriter, r *http.Request) {
	s.applyListParams(r)
	NewJSONResponse().Body(s.tracker.Monthly(r.Context())).Write(w)
}

func (s *Server) handleCategoryChart(w http.ResponseWriter, r *http.Request) {
	s.applyListParams(r)
	NewJSONResponse().Body(s.tracker.CategorySeries(r.Context(), s.translator(r))).Write(w)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(s.tracker.CategoryOptions(r.Context())).Write(w)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	tx, ok := s.tracker.Get(chi.URLParam(r, "id"))
	if !ok {
		NotFoundError("transaction not found").Write(w)
		return
	}
	NewJSONResponse().Body(tx).Write(w)
}
