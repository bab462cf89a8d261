package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/notely/notely/internal/auth"
	"github.com/notely/notely/internal/core"
	"github.com/notely/notely/internal/related"
	"github.com/notely/notely/internal/tagging"
)

// relatedCandidates bounds how many notes are scored for "related"
const relatedCandidates = 500

// noteInput is the body of note create and update. Absent fields are left
// alone on update; reminder_at null clears the reminder.
type noteInput struct {
	Title      *string         `json:"title"`
	Content    *string         `json:"content"`
	Tags       []string        `json:"tags"`
	Language   *string         `json:"language"`
	Archived   *bool           `json:"archived"`
	ReminderAt json.RawMessage `json:"reminder_at"`
}

// reminderLayouts are accepted for reminder_at; the second is what an
// HTML datetime-local input submits
var reminderLayouts = []string{time.RFC3339, "2006-01-02T15:04"}

// reminder reports whether reminder_at was present and its parsed value
func (in noteInput) reminder() (bool, *time.Time, error) {
	if len(in.ReminderAt) == 0 {
		return false, nil, nil
	}
	if bytes.Equal(in.ReminderAt, []byte("null")) {
		return true, nil, nil
	}

	var raw string
	if err := json.Unmarshal(in.ReminderAt, &raw); err != nil {
		return true, nil, fmt.Errorf("%w: reminder_at must be a timestamp string", core.ErrInvalidInput)
	}
	if raw == "" {
		return true, nil, nil
	}
	for _, layout := range reminderLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return true, &t, nil
		}
	}
	return true, nil, fmt.Errorf("%w: reminder_at %q is not RFC 3339", core.ErrInvalidInput, raw)
}

// retag recomputes the classifier's tags for the note's current text. Tags
// in base that the classifier added earlier are dropped unless the text still
// matches them.
func retag(note *core.Note, base []string) {
	note.Tags, note.AutoTags = tagging.Reconcile(base, note.AutoTags, note.Title+"\n"+note.Content)
}

// noteUser resolves the caller, failing when storage is not wired
func (s *Server) noteUser(w http.ResponseWriter, r *http.Request) (core.UserID, bool) {
	if s.notes == nil {
		s.respondError(w, http.StatusServiceUnavailable, "note storage is not configured")
		return "", false
	}
	user, err := auth.UserFrom(r.Context())
	if err != nil {
		s.respondErr(w, fmt.Errorf("%w: %v", core.ErrUnauthorized, err))
		return "", false
	}
	return user, true
}

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	user, ok := s.noteUser(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := core.NoteFilter{
		Query:           q.Get("q"),
		Tag:             q.Get("tag"),
		IncludeArchived: q.Get("archived") == "true",
	}
	if limit := q.Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 0 {
			s.respondError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		filter.Limit = n
	}

	notes, err := s.notes.List(user, filter)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	if notes == nil {
		notes = []*core.Note{}
	}
	s.respondJSON(w, http.StatusOK, notes)
}

func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	user, ok := s.noteUser(w, r)
	if !ok {
		return
	}

	var in noteInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.respondErr(w, err)
		return
	}

	note := &core.Note{UserID: user}
	if in.Title != nil {
		note.Title = *in.Title
	}
	if in.Content != nil {
		note.Content = *in.Content
	}
	if in.Language != nil {
		note.Language = *in.Language
	}
	if in.Archived != nil {
		note.Archived = *in.Archived
	}
	_, reminder, err := in.reminder()
	if err != nil {
		s.respondErr(w, err)
		return
	}
	note.ReminderAt = reminder

	if note.Title == "" && note.Content == "" {
		s.respondError(w, http.StatusBadRequest, "title or content is required")
		return
	}
	retag(note, in.Tags)

	if err := s.notes.Create(note); err != nil {
		s.respondErr(w, err)
		return
	}

	s.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"id":   note.ID,
		"tags": note.Tags,
	})
}

func (s *Server) handleGetNote(w http.ResponseWriter, r *http.Request) {
	user, ok := s.noteUser(w, r)
	if !ok {
		return
	}

	note, err := s.notes.GetByID(user, core.NoteID(chi.URLParam(r, "noteID")))
	if err != nil {
		s.respondErr(w, err)
		return
	}

	others, err := s.notes.List(user, core.NoteFilter{Limit: relatedCandidates})
	if err != nil {
		s.respondErr(w, err)
		return
	}
	candidates := make([]core.Note, 0, len(others))
	for _, n := range others {
		candidates = append(candidates, *n)
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"note":    note,
		"related": related.Rank(*note, candidates, related.DefaultLimit),
	})
}

func (s *Server) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	user, ok := s.noteUser(w, r)
	if !ok {
		return
	}

	var in noteInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.respondErr(w, err)
		return
	}

	note, err := s.notes.GetByID(user, core.NoteID(chi.URLParam(r, "noteID")))
	if err != nil {
		s.respondErr(w, err)
		return
	}

	textChanged := false
	if in.Title != nil {
		note.Title = *in.Title
		textChanged = true
	}
	if in.Content != nil {
		note.Content = *in.Content
		textChanged = true
	}
	if in.Language != nil {
		note.Language = *in.Language
	}
	if in.Archived != nil {
		note.Archived = *in.Archived
	}
	switch {
	case in.Tags != nil:
		retag(note, in.Tags)
	case textChanged:
		retag(note, note.Tags)
	}

	present, reminder, err := in.reminder()
	if err != nil {
		s.respondErr(w, err)
		return
	}
	if present {
		note.ReminderAt = reminder
	}

	if err := s.notes.Update(note); err != nil {
		s.respondErr(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	user, ok := s.noteUser(w, r)
	if !ok {
		return
	}

	if err := s.notes.Delete(user, core.NoteID(chi.URLParam(r, "noteID"))); err != nil {
		s.respondErr(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
