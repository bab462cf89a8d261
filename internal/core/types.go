// Package core defines the fundamental types for Notely.
package core

import (
	"time"
)

// -----------------------------------------------------------------------------
// USER - Owner of notes, resolved by the hosted auth provider
// -----------------------------------------------------------------------------

// UserID is a type-safe identifier for users.
// It is the `sub` claim of the session token issued by the auth provider.
type UserID string

// LocalUser is used when no auth secret is configured (single-user mode)
const LocalUser UserID = "local"

// -----------------------------------------------------------------------------
// NOTE - The unit of everything
// -----------------------------------------------------------------------------

// NoteID is a type-safe identifier for notes
type NoteID string

// Note is a single user note. Tags never contain duplicates (case-sensitive).
// AutoTags is the subset of Tags the classifier added, replaced whenever the
// text changes.
type Note struct {
	ID         NoteID     `json:"id"`
	UserID     UserID     `json:"user_id"`
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	Tags       []string   `json:"tags"`
	AutoTags   []string   `json:"auto_tags"`
	Language   string     `json:"language,omitempty"`
	ReminderAt *time.Time `json:"reminder_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	Archived   bool       `json:"archived"`
}

// NoteFilter narrows a note listing
type NoteFilter struct {
	Query           string // Case-insensitive substring of title or content
	Tag             string // Tag containment
	IncludeArchived bool
	Limit           int
}

// UniqueTags returns tags with duplicates and blanks removed, first occurrence wins.
func UniqueTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// HasTag reports whether the note carries tag
func (n *Note) HasTag(tag string) bool {
	for _, t := range n.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// -----------------------------------------------------------------------------
// AI ASSIST
// -----------------------------------------------------------------------------

// Intent is the requested AI-assist operation
type Intent string

const (
	IntentSummarize Intent = "summarize"
	IntentExpand    Intent = "expand"
	IntentImprove   Intent = "improve"
	IntentTitle     Intent = "title"
	IntentTags      Intent = "tags"
	IntentChat      Intent = "chat"
	IntentTranslate Intent = "translate"
)

// Valid reports whether the intent is one the gateway serves
func (i Intent) Valid() bool {
	switch i {
	case IntentSummarize, IntentExpand, IntentImprove, IntentTitle, IntentTags, IntentChat, IntentTranslate:
		return true
	}
	return false
}

// Role of a chat message
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a chat-style conversation
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// -----------------------------------------------------------------------------
// TRANSLATION
// -----------------------------------------------------------------------------

// TranslationAttempt records one provider call in the translation chain.
// It is consumed immediately by the chain and never persisted.
type TranslationAttempt struct {
	Provider       string        `json:"provider"`
	Success        bool          `json:"success"`
	Skipped        bool          `json:"skipped,omitempty"`
	TranslatedText string        `json:"translated_text,omitempty"`
	Error          string        `json:"error,omitempty"`
	Duration       time.Duration `json:"duration"`
}

// -----------------------------------------------------------------------------
// TEMPLATES
// -----------------------------------------------------------------------------

// Template is a starting point for a new note
type Template struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Category    string   `json:"category" yaml:"category"`
	Icon        string   `json:"icon" yaml:"icon"`
	Content     string   `json:"content" yaml:"content"`
	Tags        []string `json:"tags" yaml:"tags"`
}
