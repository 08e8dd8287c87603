// Package state holds the bot's single persisted configuration record and
// the file-backed store that owns it. Every command handler reads the full
// record, applies one mutation, and writes the full record back; concurrent
// writers serialize on the store's mutex and the last writer wins.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Senerol1/raven-daily-tasks-bot/internal/errs"
)

// Record is the bot configuration persisted as a pretty-printed JSON
// document. Zero values mean "unset" for ChatID, ThreadID, and OwnerID.
// Unknown keys found in a hand-edited file are dropped on the next save.
type Record struct {
	// Destination: chat alone is sufficient to arm the scheduler;
	// ThreadID narrows delivery to a topic thread when non-zero.
	ChatID   int64 `json:"chat_id"`
	ThreadID int64 `json:"thread_id"`

	// SendTime is the daily wall-clock delivery time, "HH:MM".
	SendTime string `json:"send_time"`

	// Timezone is an IANA zone name. Empty or unloadable falls back to
	// the store's default zone.
	Timezone string `json:"timezone"`

	// Tasks in display order, which is also poll-option order.
	// Duplicates are allowed.
	Tasks []string `json:"tasks"`

	// OwnerID is claimed by the first caller of an owner-gated command
	// and immutable thereafter.
	OwnerID int64 `json:"owner_id"`

	// Template is expanded in place of the task list when it is empty.
	// Placeholders: {date}, {weekday}, {time}, {username}.
	Template string `json:"template"`
}

// Bound reports whether a destination chat has been bound.
func (r Record) Bound() bool {
	return r.ChatID != 0
}

// Armable reports whether the scheduler can arm from this record.
func (r Record) Armable() bool {
	if !r.Bound() {
		return false
	}
	_, _, err := ParseSendTime(r.SendTime)
	return err == nil
}

// Location resolves the record's timezone, falling back to fallback and
// finally UTC when the zone name does not load.
func (r Record) Location(fallback string) *time.Location {
	for _, name := range []string{r.Timezone, fallback} {
		if name == "" {
			continue
		}
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	return time.UTC
}

// ParseSendTime parses a wall-clock "HH:MM" string. A single-digit hour is
// accepted; out-of-range components are rejected.
func ParseSendTime(s string) (hour, minute int, err error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, 0, errs.NewValidationError(fmt.Sprintf("invalid time %q, expected HH:MM", s), nil)
	}

	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, errs.NewValidationError(fmt.Sprintf("invalid hour in %q", s), nil)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, errs.NewValidationError(fmt.Sprintf("invalid minute in %q", s), nil)
	}

	return hour, minute, nil
}

// NormalizeSendTime returns the canonical "HH:MM" form of a valid time
// string, or a validation error.
func NormalizeSendTime(s string) (string, error) {
	hour, minute, err := ParseSendTime(s)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), nil
}

// Store is the file-backed State Store. It exclusively owns the persisted
// record; callers receive transient copies and must not cache them across
// operations.
type Store struct {
	path            string
	defaultSendTime string
	defaultTimezone string
	logger          *slog.Logger

	mu sync.Mutex
}

// NewStore creates a Store persisting to path. defaultSendTime and
// defaultTimezone seed the record created on first run and backfill
// records saved by older versions without those fields.
func NewStore(path, defaultSendTime, defaultTimezone string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		path:            path,
		defaultSendTime: defaultSendTime,
		defaultTimezone: defaultTimezone,
		logger:          logger.With("component", "state_store"),
	}
}

func (s *Store) defaultRecord() Record {
	return Record{
		SendTime: s.defaultSendTime,
		Timezone: s.defaultTimezone,
		Tasks:    []string{},
	}
}

// Load reads the persisted record. It never fails: a missing or corrupt
// file yields the default record, and corruption is logged, not fatal.
func (s *Store) Load() Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() Record {
	rec := s.defaultRecord()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("Failed to read state file, using defaults", "path", s.path, "error", err)
		}
		return rec
	}

	if err := json.Unmarshal(data, &rec); err != nil {
		s.logger.Warn("State file is corrupt, using defaults", "path", s.path, "error", err)
		return s.defaultRecord()
	}

	// Backfill fields absent from older state files.
	if rec.SendTime == "" {
		rec.SendTime = s.defaultSendTime
	}
	if rec.Timezone == "" {
		rec.Timezone = s.defaultTimezone
	}
	if rec.Tasks == nil {
		rec.Tasks = []string{}
	}

	return rec
}

// Save persists the record atomically: it writes a temporary file next to
// the canonical one and renames it into place, so a reader never observes
// a half-written record.
func (s *Store) Save(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(rec)
}

func (s *Store) save(rec Record) error {
	if rec.Tasks == nil {
		rec.Tasks = []string{}
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return errs.NewStorageError("failed to encode state", err)
	}
	data = append(data, '\n')

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return errs.NewStorageError("failed to write state file", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errs.NewStorageError("failed to replace state file", err)
	}

	return nil
}

// Mutate is the owner-gated read-modify-write path used by every mutating
// command. Under the store lock it loads the record fresh, claims ownership
// for userID when unclaimed, rejects any other caller, applies fn, and
// saves. An error from fn aborts the whole operation: nothing is saved and
// an unclaimed ownership stays unclaimed, so a failed validation leaves
// state untouched.
func (s *Store) Mutate(userID int64, fn func(*Record) error) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.load()

	if rec.OwnerID != 0 && rec.OwnerID != userID {
		return rec, errs.NewUnauthorizedError("command is reserved for the bot owner")
	}
	claimed := rec.OwnerID == 0
	rec.OwnerID = userID

	if fn != nil {
		if err := fn(&rec); err != nil {
			return rec, err
		}
	}

	if err := s.save(rec); err != nil {
		return rec, err
	}

	if claimed {
		s.logger.Info("Ownership claimed", "owner_id", userID)
	}

	return rec, nil
}

// Authorize performs the owner gate without a payload mutation: the first
// caller claims ownership, later callers must match it. Used by gated
// commands that deliver rather than mutate (postnow, pollnow).
func (s *Store) Authorize(userID int64) (Record, error) {
	return s.Mutate(userID, nil)
}
