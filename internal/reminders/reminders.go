// Package reminders delivers due note reminders on a cron schedule.
package reminders

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/notely/notely/internal/core"
	"github.com/notely/notely/internal/logging"
)

// EventDue is the event name published for a due reminder
const EventDue = "reminder.due"

// Store is the subset of the note store the sweeper needs
type Store interface {
	DueReminders(before time.Time, users []core.UserID, limit int) ([]*core.Note, error)
	MarkReminderFired(id core.NoteID) error
}

// Notifier delivers reminder events to connected users. NotifyUser reports
// whether the event reached at least one of the user's clients.
type Notifier interface {
	ConnectedUsers() []core.UserID
	NotifyUser(user core.UserID, event string, payload interface{}) bool
}

// Due is the payload of a reminder.due event
type Due struct {
	NoteID     core.NoteID `json:"note_id"`
	Title      string      `json:"title"`
	ReminderAt time.Time   `json:"reminder_at"`
}

// Sweeper periodically finds due reminders and notifies their owners
type Sweeper struct {
	store    Store
	notifier Notifier
	schedule string
	batch    int
	now      func() time.Time

	mu      sync.Mutex
	cron    *cron.Cron
	entryID cron.EntryID
	started bool
}

// Config for the sweeper
type Config struct {
	Schedule string // cron spec or descriptor (default: @every 1m)
	Batch    int    // max reminders per sweep (default: 100)
}

// NewSweeper creates a sweeper; the schedule is validated here
func NewSweeper(store Store, notifier Notifier, cfg Config) (*Sweeper, error) {
	if cfg.Schedule == "" {
		cfg.Schedule = "@every 1m"
	}
	if cfg.Batch <= 0 {
		cfg.Batch = 100
	}

	if _, err := cron.ParseStandard(cfg.Schedule); err != nil {
		return nil, fmt.Errorf("invalid reminder schedule %q: %w", cfg.Schedule, err)
	}

	return &Sweeper{
		store:    store,
		notifier: notifier,
		schedule: cfg.Schedule,
		batch:    cfg.Batch,
		now:      time.Now,
		cron:     cron.New(),
	}, nil
}

// Start begins sweeping on the schedule
func (s *Sweeper) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	id, err := s.cron.AddFunc(s.schedule, func() {
		if _, err := s.Sweep(context.Background()); err != nil {
			logging.Error("reminder sweep failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("add cron job: %w", err)
	}
	s.entryID = id
	s.cron.Start()
	s.started = true

	logging.Info("reminder sweeper started (%s)", s.schedule)
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	<-s.cron.Stop().Done()
	s.cron.Remove(s.entryID)
	s.started = false
}

// Sweep delivers reminders due now to owners who are connected and returns
// how many fired. A reminder is marked fired only once a client accepted it;
// reminders of offline users stay pending for a later sweep.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	if s.notifier == nil {
		return 0, nil
	}
	users := s.notifier.ConnectedUsers()
	if len(users) == 0 {
		return 0, nil
	}

	due, err := s.store.DueReminders(s.now(), users, s.batch)
	if err != nil {
		return 0, err
	}

	fired := 0
	for _, note := range due {
		if err := ctx.Err(); err != nil {
			return fired, err
		}

		payload := Due{NoteID: note.ID, Title: note.Title}
		if note.ReminderAt != nil {
			payload.ReminderAt = *note.ReminderAt
		}
		if !s.notifier.NotifyUser(note.UserID, EventDue, payload) {
			logging.Debug("reminder %s not delivered, user %s offline", note.ID, note.UserID)
			continue
		}

		if err := s.store.MarkReminderFired(note.ID); err != nil {
			logging.Warn("failed to mark reminder %s fired: %v", note.ID, err)
			continue
		}
		fired++
	}

	if fired > 0 {
		logging.Debug("delivered %d reminders", fired)
	}
	return fired, nil
}
