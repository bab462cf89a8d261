package testutil

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/notely/notely/internal/core"
	"github.com/notely/notely/internal/storage"
)

// RandomID generates a random ID for testing.
func RandomID() string {
	return uuid.NewString()[:8]
}

// NoteFixture creates a test note fixture.
type NoteFixture struct {
	UserID     core.UserID
	Title      string
	Content    string
	Tags       []string
	ReminderAt *time.Time
	Archived   bool
}

// DefaultNoteFixture returns a default note fixture.
func DefaultNoteFixture() NoteFixture {
	return NoteFixture{
		UserID:  core.LocalUser,
		Title:   "Test Note " + RandomID(),
		Content: "Meeting notes about project alpha roadmap and tasks",
		Tags:    []string{"work"},
	}
}

// Note converts the fixture to a core.Note.
func (f NoteFixture) Note() *core.Note {
	return &core.Note{
		UserID:     f.UserID,
		Title:      f.Title,
		Content:    f.Content,
		Tags:       append([]string(nil), f.Tags...),
		ReminderAt: f.ReminderAt,
		Archived:   f.Archived,
	}
}

// CreateNote stores the fixture and returns the created note.
func CreateNote(t *testing.T, store *storage.NoteStore, f NoteFixture) *core.Note {
	t.Helper()
	note := f.Note()
	if err := store.Create(note); err != nil {
		t.Fatalf("create note fixture: %v", err)
	}
	return note
}

// DueReminderFixture returns a fixture whose reminder is already due.
func DueReminderFixture(user core.UserID) NoteFixture {
	f := DefaultNoteFixture()
	f.UserID = user
	due := time.Now().Add(-time.Minute).UTC()
	f.ReminderAt = &due
	return f
}
