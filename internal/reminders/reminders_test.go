package reminders

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/notely/notely/internal/core"
	"github.com/notely/notely/internal/testutil"
)

// recordingNotifier accepts events for the users in online
type recordingNotifier struct {
	mu     sync.Mutex
	online map[core.UserID]bool
	events []event
}

func newNotifier(online ...core.UserID) *recordingNotifier {
	n := &recordingNotifier{online: make(map[core.UserID]bool)}
	for _, u := range online {
		n.online[u] = true
	}
	return n
}

type event struct {
	user    core.UserID
	name    string
	payload interface{}
}

func (n *recordingNotifier) ConnectedUsers() []core.UserID {
	n.mu.Lock()
	defer n.mu.Unlock()
	var users []core.UserID
	for u, ok := range n.online {
		if ok {
			users = append(users, u)
		}
	}
	return users
}

func (n *recordingNotifier) NotifyUser(user core.UserID, name string, payload interface{}) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.online[user] {
		return false
	}
	n.events = append(n.events, event{user, name, payload})
	return true
}

func (n *recordingNotifier) setOnline(user core.UserID, online bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.online[user] = online
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}

func TestSweep(t *testing.T) {
	store := testutil.TestNoteStore(t)
	past := time.Now().Add(-time.Minute)
	future := time.Now().Add(time.Hour)

	due := &core.Note{UserID: "alice", Title: "Call Bob", ReminderAt: &past}
	later := &core.Note{UserID: "alice", Title: "Later", ReminderAt: &future}
	none := &core.Note{UserID: "bob", Title: "No reminder"}
	for _, n := range []*core.Note{due, later, none} {
		if err := store.Create(n); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	notifier := newNotifier("alice", "bob")
	s, err := NewSweeper(store, notifier, Config{})
	if err != nil {
		t.Fatalf("NewSweeper() error = %v", err)
	}

	fired, err := s.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if fired != 1 {
		t.Errorf("Sweep() fired = %d, want 1", fired)
	}
	if notifier.count() != 1 {
		t.Fatalf("notifications = %d, want 1", notifier.count())
	}

	ev := notifier.events[0]
	if ev.user != "alice" || ev.name != EventDue {
		t.Errorf("event = %+v", ev)
	}
	payload, ok := ev.payload.(Due)
	if !ok || payload.NoteID != due.ID || payload.Title != "Call Bob" {
		t.Errorf("payload = %+v", ev.payload)
	}

	// Fired reminders are not delivered twice
	fired, err = s.Sweep(context.Background())
	if err != nil {
		t.Fatalf("second Sweep() error = %v", err)
	}
	if fired != 0 {
		t.Errorf("second Sweep() fired = %d, want 0", fired)
	}
}

func TestSweepKeepsRemindersOfOfflineUsers(t *testing.T) {
	store := testutil.TestNoteStore(t)
	past := time.Now().Add(-time.Minute)
	note := &core.Note{UserID: "alice", Title: "Call Bob", ReminderAt: &past}
	if err := store.Create(note); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	notifier := newNotifier()
	s, _ := NewSweeper(store, notifier, Config{})

	fired, err := s.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if fired != 0 || notifier.count() != 0 {
		t.Fatalf("offline Sweep() fired = %d, notifications = %d, want 0", fired, notifier.count())
	}

	// The reminder is still pending when alice connects
	notifier.setOnline("alice", true)
	fired, err = s.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if fired != 1 || notifier.count() != 1 {
		t.Errorf("online Sweep() fired = %d, notifications = %d, want 1", fired, notifier.count())
	}
}

// flakyNotifier lists a user as connected but never delivers, as when the
// last client drops between listing and sending
type flakyNotifier struct{ *recordingNotifier }

func (n *flakyNotifier) NotifyUser(core.UserID, string, interface{}) bool { return false }

func TestSweepUndeliveredStaysPending(t *testing.T) {
	store := testutil.TestNoteStore(t)
	testutil.CreateNote(t, store, testutil.DueReminderFixture("alice"))

	s, _ := NewSweeper(store, &flakyNotifier{newNotifier("alice")}, Config{})
	if fired, _ := s.Sweep(context.Background()); fired != 0 {
		t.Errorf("Sweep() fired = %d, want 0", fired)
	}

	pending, err := store.DueReminders(time.Now(), nil, 0)
	if err != nil {
		t.Fatalf("DueReminders() error = %v", err)
	}
	if len(pending) != 1 {
		t.Errorf("pending reminders = %d, want 1", len(pending))
	}
}

func TestSweepWithoutNotifier(t *testing.T) {
	store := testutil.TestNoteStore(t)
	testutil.CreateNote(t, store, testutil.DueReminderFixture("alice"))

	s, _ := NewSweeper(store, nil, Config{})
	if fired, err := s.Sweep(context.Background()); fired != 0 || err != nil {
		t.Errorf("Sweep() = %d, %v, want 0, nil", fired, err)
	}
}

func TestSweepUsesClock(t *testing.T) {
	store := testutil.TestNoteStore(t)
	at := time.Now().Add(time.Hour)
	if err := store.Create(&core.Note{UserID: "alice", Title: "Soon", ReminderAt: &at}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	notifier := newNotifier("alice")
	s, _ := NewSweeper(store, notifier, Config{})
	s.now = func() time.Time { return at.Add(time.Second) }

	fired, err := s.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if fired != 1 {
		t.Errorf("Sweep() fired = %d, want 1", fired)
	}
}

func TestNewSweeperInvalidSchedule(t *testing.T) {
	if _, err := NewSweeper(testutil.TestNoteStore(t), nil, Config{Schedule: "not a schedule"}); err == nil {
		t.Error("NewSweeper() expected error for invalid schedule")
	}
}

func TestStartStop(t *testing.T) {
	store := testutil.TestNoteStore(t)
	testutil.CreateNote(t, store, testutil.DueReminderFixture("alice"))

	notifier := newNotifier("alice")
	s, err := NewSweeper(store, notifier, Config{Schedule: "@every 1s"})
	if err != nil {
		t.Fatalf("NewSweeper() error = %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := s.Start(); err != nil {
		t.Errorf("second Start() error = %v", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for notifier.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	s.Stop()
	s.Stop()

	if notifier.count() != 1 {
		t.Errorf("notifications = %d, want 1", notifier.count())
	}
}
