package storage

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"testing/fstest"
	"time"

	"github.com/notely/notely/internal/core"
)

// testDB creates an in-memory database for testing
func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(Config{InMemory: true})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})
	if err := db.Migrate(); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return db
}

// testNoteStore returns a store whose clock advances one second per call
func testNoteStore(t *testing.T) *NoteStore {
	t.Helper()
	store := NewNoteStore(testDB(t))
	clock := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return store
}

// =============================================================================
// DB Tests
// =============================================================================

func TestDB_Open_InMemory(t *testing.T) {
	db, err := Open(Config{InMemory: true})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	if db.conn == nil {
		t.Error("db.conn should not be nil")
	}
	if !db.isMemory {
		t.Error("db.isMemory should be true for in-memory database")
	}
}

func TestDB_Open_InMemoryIsolated(t *testing.T) {
	a := testDB(t)
	b := testDB(t)

	if _, err := a.conn.Exec(`INSERT INTO notes (id, user_id, created_at, updated_at) VALUES ('n1', 'u', 0, 0)`); err != nil {
		t.Fatalf("insert: %v", err)
	}

	var count int
	b.conn.QueryRow("SELECT COUNT(*) FROM notes").Scan(&count)
	if count != 0 {
		t.Errorf("second in-memory database sees %d notes, want 0", count)
	}
}

func TestDB_Open_File(t *testing.T) {
	tmpDir := t.TempDir()
	path := tmpDir + "/nested/test.db"

	db, err := Open(Config{Path: path})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	if db.isMemory {
		t.Error("db.isMemory should be false for file database")
	}
	if db.Path() != path {
		t.Errorf("db.Path() = %v, want %v", db.Path(), path)
	}
}

func TestDB_Transaction_Rollback(t *testing.T) {
	db := testDB(t)

	err := db.Transaction(func(tx *sql.Tx) error {
		tx.Exec(`INSERT INTO notes (id, user_id, created_at, updated_at) VALUES ('rb', 'u', 0, 0)`)
		return sql.ErrNoRows // Return an error to trigger rollback
	})
	if err == nil {
		t.Error("Transaction() should return error when function returns error")
	}

	var count int
	db.conn.QueryRow("SELECT COUNT(*) FROM notes WHERE id = 'rb'").Scan(&count)
	if count != 0 {
		t.Error("Transaction should have rolled back the insert")
	}
}

func TestDB_Migrate(t *testing.T) {
	db, err := Open(Config{InMemory: true})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		t.Errorf("Migrate() error = %v", err)
	}

	// Running migrate again should be idempotent
	if err := db.Migrate(); err != nil {
		t.Errorf("Migrate() second run error = %v", err)
	}

	for _, table := range []string{"notes", "schema_migrations"} {
		var count int
		err := db.conn.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
		if err != nil {
			t.Errorf("checking table %s: %v", table, err)
		}
		if count == 0 {
			t.Errorf("table %s should exist after migration", table)
		}
	}
}

func TestDB_SchemaVersion(t *testing.T) {
	db, err := Open(Config{InMemory: true})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	version, err := db.SchemaVersion()
	if err != nil {
		t.Fatalf("SchemaVersion() error = %v", err)
	}
	if version != 2 {
		t.Errorf("SchemaVersion() = %d, want 2", version)
	}
}

func TestLoadMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/010_later.sql": {Data: []byte("SELECT 10;")},
		"migrations/002_next.sql":  {Data: []byte("SELECT 2;")},
		"migrations/README.md":     {Data: []byte("ignored")},
	}

	got, err := loadMigrations(fsys)
	if err != nil {
		t.Fatalf("loadMigrations() error = %v", err)
	}
	if len(got) != 2 || got[0].version != 2 || got[1].version != 10 {
		t.Errorf("loadMigrations() = %+v, want versions [2 10]", got)
	}

	fsys["migrations/002_clash.sql"] = &fstest.MapFile{Data: []byte("SELECT 2;")}
	if _, err := loadMigrations(fsys); err == nil {
		t.Error("expected an error for a duplicate version")
	}

	bad := fstest.MapFS{"migrations/notes.sql": {Data: []byte("SELECT 1;")}}
	if _, err := loadMigrations(bad); err == nil {
		t.Error("expected an error for an unversioned file")
	}
}

func TestDB_Ping(t *testing.T) {
	db := testDB(t)
	if err := db.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

// =============================================================================
// NoteStore Tests
// =============================================================================

func TestNoteStore_CreateAndGet(t *testing.T) {
	store := testNoteStore(t)
	reminder := time.Date(2024, 3, 2, 8, 30, 0, 0, time.UTC)

	note := &core.Note{
		UserID:     "alice",
		Title:      "Groceries",
		Content:    "Buy milk and eggs",
		Tags:       []string{"shopping", "home", "shopping"},
		ReminderAt: &reminder,
	}
	if err := store.Create(note); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if note.ID == "" {
		t.Fatal("Create() should assign an id")
	}

	got, err := store.GetByID("alice", note.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Title != "Groceries" || got.Content != "Buy milk and eggs" {
		t.Errorf("GetByID() = %+v", got)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "shopping" || got.Tags[1] != "home" {
		t.Errorf("Tags = %v, want [shopping home]", got.Tags)
	}
	if got.ReminderAt == nil || !got.ReminderAt.Equal(reminder) {
		t.Errorf("ReminderAt = %v, want %v", got.ReminderAt, reminder)
	}
	if !got.CreatedAt.Equal(note.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, note.CreatedAt)
	}
}

func TestNoteStore_RequiresUser(t *testing.T) {
	store := testNoteStore(t)
	err := store.Create(&core.Note{Title: "orphan"})
	if !errors.Is(err, core.ErrMissingRequired) {
		t.Errorf("Create() error = %v, want ErrMissingRequired", err)
	}
}

func TestNoteStore_ScopedToUser(t *testing.T) {
	store := testNoteStore(t)
	note := &core.Note{UserID: "alice", Title: "private"}
	store.Create(note)

	if _, err := store.GetByID("bob", note.ID); !errors.Is(err, core.ErrNoteNotFound) {
		t.Errorf("GetByID(bob) error = %v, want ErrNoteNotFound", err)
	}

	note.UserID = "bob"
	note.Title = "hijacked"
	if err := store.Update(note); !errors.Is(err, core.ErrNoteNotFound) {
		t.Errorf("Update(bob) error = %v, want ErrNoteNotFound", err)
	}
	if err := store.Delete("bob", note.ID); !errors.Is(err, core.ErrNoteNotFound) {
		t.Errorf("Delete(bob) error = %v, want ErrNoteNotFound", err)
	}

	got, _ := store.GetByID("alice", note.ID)
	if got.Title != "private" {
		t.Errorf("Title = %q, want %q", got.Title, "private")
	}
}

func TestNoteStore_UpdateAndDelete(t *testing.T) {
	store := testNoteStore(t)
	note := &core.Note{UserID: "alice", Title: "Draft"}
	store.Create(note)
	created := note.UpdatedAt

	note.Title = "Final"
	note.Tags = []string{"done"}
	if err := store.Update(note); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if !note.UpdatedAt.After(created) {
		t.Error("Update() should advance UpdatedAt")
	}

	got, _ := store.GetByID("alice", note.ID)
	if got.Title != "Final" || !got.HasTag("done") {
		t.Errorf("GetByID() after update = %+v", got)
	}

	if err := store.Delete("alice", note.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.GetByID("alice", note.ID); !errors.Is(err, core.ErrNoteNotFound) {
		t.Errorf("GetByID() after delete error = %v", err)
	}
}

func TestNoteStore_AutoTags(t *testing.T) {
	store := testNoteStore(t)
	note := &core.Note{
		UserID:   "alice",
		Content:  "buy milk",
		Tags:     []string{"home", "shopping"},
		AutoTags: []string{"shopping", "urgent"},
	}
	if err := store.Create(note); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, _ := store.GetByID("alice", note.ID)
	if len(got.AutoTags) != 1 || got.AutoTags[0] != "shopping" {
		t.Errorf("AutoTags = %v, want [shopping] (subset of Tags)", got.AutoTags)
	}

	got.Tags = []string{"home"}
	got.AutoTags = nil
	if err := store.Update(got); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	got, _ = store.GetByID("alice", note.ID)
	if got.AutoTags == nil || len(got.AutoTags) != 0 {
		t.Errorf("AutoTags after update = %#v, want empty", got.AutoTags)
	}
}

func TestNoteStore_List(t *testing.T) {
	store := testNoteStore(t)

	notes := []*core.Note{
		{UserID: "alice", Title: "Standup", Content: "Sprint planning notes", Tags: []string{"meeting"}},
		{UserID: "alice", Title: "Shopping", Content: "Buy apples", Tags: []string{"shopping"}},
		{UserID: "alice", Title: "Old", Content: "archived planning", Archived: true},
		{UserID: "bob", Title: "Bob's planning", Content: "not for alice", Tags: []string{"meeting"}},
		{UserID: "alice", Title: "Retro PLANNING", Content: "What went well", Tags: []string{"meeting", "team"}},
	}
	for _, n := range notes {
		if err := store.Create(n); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	tests := []struct {
		name   string
		filter core.NoteFilter
		want   []string
	}{
		{"all newest first", core.NoteFilter{}, []string{"Retro PLANNING", "Shopping", "Standup"}},
		{"query is case-insensitive", core.NoteFilter{Query: "planning"}, []string{"Retro PLANNING", "Standup"}},
		{"tag containment", core.NoteFilter{Tag: "meeting"}, []string{"Retro PLANNING", "Standup"}},
		{"tag is exact", core.NoteFilter{Tag: "meet"}, nil},
		{"include archived", core.NoteFilter{Query: "planning", IncludeArchived: true}, []string{"Retro PLANNING", "Old", "Standup"}},
		{"limit", core.NoteFilter{Limit: 1}, []string{"Retro PLANNING"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.List("alice", tt.filter)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("List() returned %d notes, want %d", len(got), len(tt.want))
			}
			for i, n := range got {
				if n.Title != tt.want[i] {
					t.Errorf("List()[%d].Title = %q, want %q", i, n.Title, tt.want[i])
				}
			}
		})
	}
}

func TestNoteStore_Reminders(t *testing.T) {
	store := testNoteStore(t)
	past := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	future := time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC)

	due := &core.Note{UserID: "alice", Title: "due", ReminderAt: &past}
	later := &core.Note{UserID: "bob", Title: "later", ReminderAt: &future}
	archived := &core.Note{UserID: "alice", Title: "archived", ReminderAt: &past, Archived: true}
	none := &core.Note{UserID: "alice", Title: "none"}
	for _, n := range []*core.Note{due, later, archived, none} {
		store.Create(n)
	}

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	got, err := store.DueReminders(now, nil, 0)
	if err != nil {
		t.Fatalf("DueReminders() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != due.ID {
		t.Fatalf("DueReminders() = %v, want only %q", got, due.ID)
	}

	if err := store.MarkReminderFired(due.ID); err != nil {
		t.Fatalf("MarkReminderFired() error = %v", err)
	}
	got, _ = store.DueReminders(now, nil, 0)
	if len(got) != 0 {
		t.Errorf("DueReminders() after firing = %d notes, want 0", len(got))
	}

	// Moving the reminder re-arms it
	moved := past.Add(time.Hour)
	due.ReminderAt = &moved
	store.Update(due)
	got, _ = store.DueReminders(now, nil, 0)
	if len(got) != 1 {
		t.Errorf("DueReminders() after moving = %d notes, want 1", len(got))
	}

	// Saving without touching the reminder does not
	store.MarkReminderFired(due.ID)
	due.Title = "edited"
	store.Update(due)
	got, _ = store.DueReminders(now, nil, 0)
	if len(got) != 0 {
		t.Errorf("DueReminders() after unrelated edit = %d notes, want 0", len(got))
	}

	got, _ = store.DueReminders(future, nil, 0)
	if len(got) != 1 || got[0].Title != "later" {
		t.Errorf("DueReminders(future) = %v, want [later]", got)
	}

	// The owner filter only returns reminders of the listed users
	got, _ = store.DueReminders(future, []core.UserID{"alice"}, 0)
	if len(got) != 0 {
		t.Errorf("DueReminders(future, alice) = %d notes, want 0", len(got))
	}
	got, _ = store.DueReminders(future, []core.UserID{"alice", "bob"}, 0)
	if len(got) != 1 || got[0].UserID != "bob" {
		t.Errorf("DueReminders(future, alice+bob) = %v, want bob's note", got)
	}
}

func TestNoteStore_Count(t *testing.T) {
	store := testNoteStore(t)
	store.Create(&core.Note{UserID: "alice"})
	store.Create(&core.Note{UserID: "alice", Archived: true})
	store.Create(&core.Note{UserID: "bob"})

	n, err := store.Count("alice")
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Count() = %d, want 2", n)
	}
}
