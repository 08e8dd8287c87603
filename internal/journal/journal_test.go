package journal_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Senerol1/raven-daily-tasks-bot/internal/journal"
)

func newTestStore(t *testing.T) journal.Store {
	t.Helper()

	db, err := journal.NewDB(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("NewDB() error: %v", err)
	}
	t.Cleanup(func() { journal.CloseDB(db) })

	return journal.NewStore(db, nil)
}

func TestRecordAndFetchDeliveries(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Ping(ctx); err != nil {
		t.Fatalf("Ping() error: %v", err)
	}

	base := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	entries := []journal.Delivery{
		{CreatedAt: base, Kind: journal.KindPoll, ChatID: 100, Parts: 1, TaskCount: 4, Status: journal.StatusSent},
		{CreatedAt: base.Add(time.Hour), Kind: journal.KindText, ChatID: 100, Parts: 1, Status: journal.StatusSent},
		{CreatedAt: base.Add(2 * time.Hour), Kind: journal.KindPoll, ChatID: 100, Status: journal.StatusFailed, Detail: "telegram unavailable"},
	}
	for i := range entries {
		if err := store.RecordDelivery(ctx, &entries[i]); err != nil {
			t.Fatalf("RecordDelivery(%d) error: %v", i, err)
		}
		if entries[i].ID == 0 {
			t.Errorf("entry %d did not receive an id", i)
		}
	}

	got, err := store.RecentDeliveries(ctx, 2)
	if err != nil {
		t.Fatalf("RecentDeliveries() error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2", len(got))
	}

	// Newest first.
	if got[0].Status != journal.StatusFailed || got[0].Detail != "telegram unavailable" {
		t.Errorf("first entry = %+v, want the failed one", got[0])
	}
	if got[1].Kind != journal.KindText {
		t.Errorf("second entry kind = %s, want text", got[1].Kind)
	}
}

func TestRecordDeliveryValidation(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	testCases := []struct {
		name  string
		entry *journal.Delivery
	}{
		{name: "nil delivery", entry: nil},
		{name: "bad kind", entry: &journal.Delivery{Kind: "smoke", Status: journal.StatusSent}},
		{name: "bad status", entry: &journal.Delivery{Kind: journal.KindText, Status: "maybe"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if err := store.RecordDelivery(ctx, tc.entry); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestRecentDeliveriesLimit(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	if _, err := store.RecentDeliveries(context.Background(), 0); err == nil {
		t.Error("expected an error for a non-positive limit")
	}
}
