package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/notely/notely/internal/core"
	"github.com/notely/notely/internal/market"
)

// --- Market ---

func (s *Server) handleMarket(w http.ResponseWriter, r *http.Request) {
	kind := market.Kind(strings.ToLower(r.URL.Query().Get("type")))
	symbol := strings.TrimSpace(r.URL.Query().Get("symbol"))
	if symbol == "" && (kind == market.KindCrypto || kind == market.KindStock) {
		s.respondError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	data, err := s.market.Lookup(r.Context(), kind, symbol)
	if err != nil {
		s.respondErr(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]json.RawMessage{"data": data})
}

// --- Templates ---

func (s *Server) handleGetTemplates(w http.ResponseWriter, r *http.Request) {
	if category := r.URL.Query().Get("category"); category != "" {
		list := s.templates.ByCategory()[category]
		if list == nil {
			list = []core.Template{}
		}
		s.respondJSON(w, http.StatusOK, list)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"templates":  s.templates.All(),
		"categories": s.templates.Categories(),
	})
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	tpl, err := s.templates.Get(chi.URLParam(r, "templateID"))
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, tpl)
}
