package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/notely/notely/internal/assist"
	"github.com/notely/notely/internal/core"
	"github.com/notely/notely/internal/tagging"
)

// assistRequest is the body of /assist and the legacy GenAI endpoints
type assistRequest struct {
	Action         string         `json:"action"`
	Text           string         `json:"text"`
	Messages       []core.Message `json:"messages"`
	Instructions   string         `json:"instructions"`
	Context        string         `json:"context"`
	Target         string         `json:"target"`
	TargetLanguage string         `json:"targetLanguage"`
}

func (r assistRequest) target() string {
	if r.Target != "" {
		return r.Target
	}
	return r.TargetLanguage
}

// resultKeys names the response field for each intent
var resultKeys = map[core.Intent]string{
	core.IntentSummarize: "summary",
	core.IntentExpand:    "expanded",
	core.IntentImprove:   "improved",
	core.IntentTitle:     "title",
	core.IntentTags:      "tags",
	core.IntentChat:      "response",
	core.IntentTranslate: "translated",
}

func (s *Server) handleAssist(w http.ResponseWriter, r *http.Request) {
	var req assistRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondErr(w, err)
		return
	}

	action := strings.ToLower(strings.TrimSpace(req.Action))
	if action == "" && len(req.Messages) > 0 {
		action = string(core.IntentChat)
	}

	s.runAssist(w, r, core.Intent(action), req)
}

func (s *Server) runAssist(w http.ResponseWriter, r *http.Request, intent core.Intent, req assistRequest) {
	key, ok := resultKeys[intent]
	if !ok {
		s.respondErr(w, fmt.Errorf("%w: invalid action or missing required parameters", core.ErrInvalidInput))
		return
	}

	res, err := s.gateway.Assist(r.Context(), intent, req.Text, assist.Options{
		Instructions:   req.Instructions,
		Messages:       req.Messages,
		NoteContext:    req.Context,
		TargetLanguage: req.target(),
	})
	if err != nil {
		s.respondErr(w, err)
		return
	}

	body := map[string]interface{}{
		"provider": res.Provider,
		"fallback": res.Fallback,
	}
	if intent == core.IntentTags {
		body[key] = res.Tags
	} else {
		body[key] = res.Text
	}
	s.respondJSON(w, http.StatusOK, body)
}

func (s *Server) handleGenAISummarize(w http.ResponseWriter, r *http.Request) {
	var req assistRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondErr(w, err)
		return
	}
	s.runAssist(w, r, core.IntentSummarize, req)
}

func (s *Server) handleGenAIExpand(w http.ResponseWriter, r *http.Request) {
	var req assistRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondErr(w, err)
		return
	}
	s.runAssist(w, r, core.IntentExpand, req)
}

// handleTranslate always goes through the provider chain; an exhausted
// chain is reported as 503, never as the untranslated input
func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var req assistRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondErr(w, err)
		return
	}

	res, err := s.translator.Translate(r.Context(), req.Text, req.target())
	if err != nil {
		s.respondErr(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{
		"translated": res.Text,
		"provider":   res.Provider,
	})
}

// handleSuggestTags runs the rule classifier, or the AI tagger with ai=1
func (s *Server) handleSuggestTags(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get("text")
	if strings.TrimSpace(text) == "" {
		s.respondError(w, http.StatusBadRequest, "text is required")
		return
	}

	if r.URL.Query().Get("ai") == "1" {
		tags, err := s.gateway.Tags(r.Context(), text)
		if err != nil {
			s.respondErr(w, err)
			return
		}
		s.respondJSON(w, http.StatusOK, map[string][]string{"tags": tags})
		return
	}

	s.respondJSON(w, http.StatusOK, map[string][]string{"tags": tagging.AutoTags(text)})
}
