package http

import (
	"net/http"

	"moneytracker/internal/core"
	"moneytracker/internal/i18n"
	"moneytracker/internal/services"
)

type settingsResponse struct {
	core.Settings
	Lang      string   `json:"lang"`
	Languages []string `json:"languages"`
}

func (s *Server) writeSettings(w http.ResponseWriter, r *http.Request, settings core.Settings) {
	NewJSONResponse().Body(settingsResponse{
		Settings:  settings,
		Lang:      s.translator(r).Lang(),
		Languages: i18n.Languages(),
	}).Write(w)
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	s.writeSettings(w, r, s.tracker.Settings())
}

func (s *Server) handleSetCurrency(w http.ResponseWriter, r *http.Request) {
	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		BadRequestError(bodyError(err)).Write(w)
		return
	}

	settings, outcome, _ := s.tracker.SetCurrency(r.Context(), parser.Get("currency"))
	if outcome != services.Applied {
		OutcomeError(outcome, s.translator(r).T("invalid_currency", nil)).Write(w)
		return
	}
	s.writeSettings(w, r, settings)
}

func (s *Server) handleSetTheme(w http.ResponseWriter, r *http.Request) {
	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		BadRequestError(bodyError(err)).Write(w)
		return
	}

	settings, outcome, err := s.tracker.SetTheme(r.Context(), parser.Get("theme"))
	if outcome != services.Applied {
		OutcomeError(outcome, err.Error()).Write(w)
		return
	}
	s.writeSettings(w, r, settings)
}

func (s *Server) handleToggleTheme(w http.ResponseWriter, r *http.Request) {
	s.writeSettings(w, r, s.tracker.ToggleTheme(r.Context()))
}
