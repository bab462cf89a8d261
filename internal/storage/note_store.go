package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/notely/notely/internal/core"
)

// NoteStore handles note persistence. Every read and write is scoped to a
// user id.
type NoteStore struct {
	db  *DB
	now func() time.Time
}

// NewNoteStore creates a new note store
func NewNoteStore(db *DB) *NoteStore {
	return &NoteStore{db: db, now: time.Now}
}

const noteColumns = `id, user_id, title, content, tags, auto_tags, language, reminder_at, archived, created_at, updated_at`

func millis(t time.Time) int64 { return t.UTC().UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

func nullMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: millis(*t), Valid: true}
}

// Create creates a new note. A missing id is generated.
func (s *NoteStore) Create(note *core.Note) error {
	if note.UserID == "" {
		return fmt.Errorf("%w: user id", core.ErrMissingRequired)
	}
	if note.ID == "" {
		note.ID = core.NoteID(uuid.NewString())
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	note.CreatedAt = now
	note.UpdatedAt = now
	tags, auto := encodeTags(note)

	_, err := s.db.conn.Exec(`
		INSERT INTO notes (`+noteColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		note.ID, note.UserID, note.Title, note.Content, tags, auto, note.Language,
		nullMillis(note.ReminderAt), note.Archived, millis(note.CreatedAt), millis(note.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert note: %w", err)
	}
	return nil
}

// GetByID returns a note owned by user
func (s *NoteStore) GetByID(user core.UserID, id core.NoteID) (*core.Note, error) {
	row := s.db.conn.QueryRow(`SELECT `+noteColumns+` FROM notes WHERE id = ? AND user_id = ?`, id, user)

	note, err := scanNote(row)
	if err == sql.ErrNoRows {
		return nil, core.ErrNoteNotFound
	}
	if err != nil {
		return nil, err
	}
	return note, nil
}

// Update writes the editable fields of note. Moving a reminder re-arms it.
func (s *NoteStore) Update(note *core.Note) error {
	note.UpdatedAt = s.now().UTC().Truncate(time.Millisecond)
	tags, auto := encodeTags(note)
	reminder := nullMillis(note.ReminderAt)

	res, err := s.db.conn.Exec(`
		UPDATE notes SET
		    title = ?, content = ?, tags = ?, auto_tags = ?, language = ?,
		    reminder_fired = CASE WHEN reminder_at IS ? THEN reminder_fired ELSE 0 END,
		    reminder_at = ?, archived = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`,
		note.Title, note.Content, tags, auto, note.Language,
		reminder,
		reminder, note.Archived, millis(note.UpdatedAt),
		note.ID, note.UserID,
	)
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}
	return requireOneRow(res)
}

// Delete removes a note owned by user
func (s *NoteStore) Delete(user core.UserID, id core.NoteID) error {
	res, err := s.db.conn.Exec(`DELETE FROM notes WHERE id = ? AND user_id = ?`, id, user)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	return requireOneRow(res)
}

// encodeTags de-duplicates the note's tags in place and returns both lists as
// JSON. AutoTags is kept a subset of Tags.
func encodeTags(note *core.Note) (string, string) {
	note.Tags = core.UniqueTags(note.Tags)

	present := make(map[string]bool, len(note.Tags))
	for _, t := range note.Tags {
		present[t] = true
	}
	auto := []string{}
	for _, t := range core.UniqueTags(note.AutoTags) {
		if present[t] {
			auto = append(auto, t)
		}
	}
	note.AutoTags = auto

	tags, _ := json.Marshal(note.Tags)
	autoJSON, _ := json.Marshal(note.AutoTags)
	return string(tags), string(autoJSON)
}

func requireOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return core.ErrNoteNotFound
	}
	return nil
}

// List returns the user's notes matching filter, most recently updated first
func (s *NoteStore) List(user core.UserID, filter core.NoteFilter) ([]*core.Note, error) {
	where := []string{"user_id = ?"}
	args := []interface{}{user}

	if q := strings.ToLower(strings.TrimSpace(filter.Query)); q != "" {
		where = append(where, "(instr(lower(title), ?) > 0 OR instr(lower(content), ?) > 0)")
		args = append(args, q, q)
	}
	if tag := strings.TrimSpace(filter.Tag); tag != "" {
		where = append(where, "EXISTS (SELECT 1 FROM json_each(notes.tags) WHERE json_each.value = ?)")
		args = append(args, tag)
	}
	if !filter.IncludeArchived {
		where = append(where, "archived = 0")
	}

	limit := -1
	if filter.Limit > 0 {
		limit = filter.Limit
	}
	args = append(args, limit)

	rows, err := s.db.conn.Query(`
		SELECT `+noteColumns+`
		FROM notes
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY updated_at DESC, created_at DESC, id
		LIMIT ?
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	return scanNotes(rows)
}

// DueReminders returns un-archived notes whose reminder is at or before the
// given time and has not fired yet, oldest first. A non-empty users list
// restricts the owners; nil means any user.
func (s *NoteStore) DueReminders(before time.Time, users []core.UserID, limit int) ([]*core.Note, error) {
	if limit <= 0 {
		limit = 100
	}

	args := []interface{}{millis(before)}
	owners := ""
	if len(users) > 0 {
		marks := make([]string, len(users))
		for i, u := range users {
			marks[i] = "?"
			args = append(args, u)
		}
		owners = "AND user_id IN (" + strings.Join(marks, ", ") + ")"
	}
	args = append(args, limit)

	rows, err := s.db.conn.Query(`
		SELECT `+noteColumns+`
		FROM notes
		WHERE reminder_at IS NOT NULL
		  AND reminder_at <= ?
		  AND reminder_fired = 0
		  AND archived = 0
		  `+owners+`
		ORDER BY reminder_at ASC
		LIMIT ?
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("due reminders: %w", err)
	}
	defer rows.Close()

	return scanNotes(rows)
}

// MarkReminderFired records that the note's reminder was delivered
func (s *NoteStore) MarkReminderFired(id core.NoteID) error {
	res, err := s.db.conn.Exec(`UPDATE notes SET reminder_fired = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark reminder fired: %w", err)
	}
	return requireOneRow(res)
}

// Count returns the number of notes a user has, archived included
func (s *NoteStore) Count(user core.UserID) (int, error) {
	var count int
	err := s.db.conn.QueryRow("SELECT COUNT(*) FROM notes WHERE user_id = ?", user).Scan(&count)
	return count, err
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanNote(row scanner) (*core.Note, error) {
	note := &core.Note{}
	var tags, auto string
	var reminder sql.NullInt64
	var created, updated int64

	err := row.Scan(
		&note.ID, &note.UserID, &note.Title, &note.Content, &tags, &auto, &note.Language,
		&reminder, &note.Archived, &created, &updated,
	)
	if err != nil {
		return nil, err
	}

	note.CreatedAt = fromMillis(created)
	note.UpdatedAt = fromMillis(updated)
	if reminder.Valid {
		t := fromMillis(reminder.Int64)
		note.ReminderAt = &t
	}

	json.Unmarshal([]byte(tags), &note.Tags)
	if note.Tags == nil {
		note.Tags = []string{}
	}
	json.Unmarshal([]byte(auto), &note.AutoTags)
	if note.AutoTags == nil {
		note.AutoTags = []string{}
	}

	return note, nil
}

func scanNotes(rows *sql.Rows) ([]*core.Note, error) {
	notes := []*core.Note{}
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	return notes, rows.Err()
}
