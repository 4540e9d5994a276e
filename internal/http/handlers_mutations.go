package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"moneytracker/internal/core"
	"moneytracker/internal/log"
	"moneytracker/internal/services"
)

type outcomeResponse struct {
	Outcome string `json:"outcome"`
	ID      string `json:"id,omitempty"`
	Count   int    `json:"count"`
}

type importResponse struct {
	Outcome string                `json:"outcome"`
	Error   string                `json:"error,omitempty"`
	Report  services.ImportReport `json:"report"`
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		BadRequestError(bodyError(err)).Write(w)
		return
	}

	in := parser.NewTransaction()
	tx, outcome := s.tracker.Add(r.Context(), in)
	if outcome != services.Applied {
		OutcomeError(outcome, rejectionReason(in.Amount, in.Date)).Write(w)
		return
	}
	NewJSONResponse().
		Status(StatusForOutcome(outcome, true)).
		Header("Location", "/api/transactions/"+tx.ID).
		Body(tx).
		Write(w)
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		BadRequestError(bodyError(err)).Write(w)
		return
	}

	patch := parser.TransactionPatch()
	tx, outcome := s.tracker.Edit(r.Context(), id, patch)
	switch outcome {
	case services.Applied:
		NewJSONResponse().Body(tx).Write(w)
	case services.NotFound:
		OutcomeError(outcome, "transaction not found").Write(w)
	default:
		amount, date := "0", ""
		if patch.Amount != nil {
			amount = *patch.Amount
		}
		if patch.Date != nil {
			date = *patch.Date
		}
		OutcomeError(outcome, rejectionReason(amount, date)).Write(w)
	}
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	outcome := s.tracker.Delete(r.Context(), id)
	if outcome != services.Applied {
		OutcomeError(outcome, "transaction not found").Write(w)
		return
	}
	NewJSONResponse().Body(outcomeResponse{
		Outcome: outcome.String(),
		ID:      id,
		Count:   s.tracker.Len(),
	}).Write(w)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(r)
	if err != nil {
		BadRequestError(bodyError(err)).Write(w)
		return
	}

	report, outcome := s.tracker.Import(r.Context(), data)
	resp := importResponse{Outcome: outcome.String(), Report: report}
	if outcome != services.Applied {
		resp.Error = services.ErrMalformedImport.Error()
	}
	NewJSONResponse().Status(StatusForOutcome(outcome, false)).Body(resp).Write(w)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	file, err := s.tracker.Export(r.Context())
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Export failed", log.FieldError, err)
		InternalServerError("export failed").Write(w)
		return
	}
	NewJSONResponse().Attachment(file.Name, file.Data).Write(w)
}

func (s *Server) handleSeed(w http.ResponseWriter, r *http.Request) {
	n, outcome := s.tracker.Seed(r.Context())
	NewJSONResponse().
		Status(StatusForOutcome(outcome, false)).
		Body(outcomeResponse{Outcome: outcome.String(), Count: n}).
		Write(w)
}

// handleReset clears the collection only with ?confirm=true; otherwise the
// reset is cancelled and answered with 409.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	confirmer := services.Declined
	if confirmed {
		confirmer = services.Confirmed
	}

	outcome := s.tracker.Reset(r.Context(), confirmer)
	if outcome != services.Applied {
		OutcomeError(outcome, s.translator(r).T("confirm_clear", nil)).Write(w)
		return
	}
	NewJSONResponse().Body(outcomeResponse{Outcome: outcome.String()}).Write(w)
}

// rejectionReason explains why amount or date input was refused.
func rejectionReason(amount, date string) string {
	if _, err := core.ParseAmount(amount); err != nil {
		return err.Error()
	}
	if strings.TrimSpace(date) != "" {
		if _, err := core.ParseDate(date); err != nil {
			return err.Error()
		}
	}
	return "invalid transaction"
}

func bodyError(err error) string {
	if errors.Is(err, errBodyTooLarge) {
		return err.Error()
	}
	return "invalid request body"
}
