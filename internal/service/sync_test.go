package service

import (
	"context"
	"errors"
	"testing"

	"absensi-service/internal/airtable"
	"absensi-service/pkg/response"
)

func record(fields map[string]any) airtable.Record {
	return airtable.Record{Fields: fields}
}

func TestReconcileUnknownMonth(t *testing.T) {
	svc := testService(newFakeStore(), &fakeFetcher{}, newFakeLocker())

	_, err := svc.Reconcile(context.Background(), "Smarch")
	if !errors.Is(err, response.ErrInvalidMonth) {
		t.Fatalf("err = %v, want ErrInvalidMonth", err)
	}
}

func TestReconcileFutureMonth(t *testing.T) {
	// The clock is fixed to February; March has not arrived yet.
	svc := testService(newFakeStore(), &fakeFetcher{}, newFakeLocker())

	_, err := svc.Reconcile(context.Background(), "Mar")
	if !errors.Is(err, response.ErrInvalidMonth) {
		t.Fatalf("err = %v, want ErrInvalidMonth", err)
	}
}

func TestReconcileLocked(t *testing.T) {
	locker := newFakeLocker()
	locker.blocked = true

	svc := testService(newFakeStore(), &fakeFetcher{}, locker)

	_, err := svc.Reconcile(context.Background(), "Feb")
	if !errors.Is(err, response.ErrLocked) {
		t.Fatalf("err = %v, want ErrLocked", err)
	}
}

func TestReconcileSourceUnavailable(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("connection refused")}
	store := newFakeStore()

	svc := testService(store, fetcher, newFakeLocker())

	_, err := svc.Reconcile(context.Background(), "Feb")
	if !errors.Is(err, response.ErrSourceUnavailable) {
		t.Fatalf("err = %v, want ErrSourceUnavailable", err)
	}
	if len(store.entries) != 0 {
		t.Error("no writes may happen when the fetch fails")
	}
}

func TestReconcileNoData(t *testing.T) {
	svc := testService(newFakeStore(), &fakeFetcher{}, newFakeLocker())

	_, err := svc.Reconcile(context.Background(), "Feb")
	if !errors.Is(err, response.ErrNoData) {
		t.Fatalf("err = %v, want ErrNoData", err)
	}
}

func TestReconcileValidationAndDedupe(t *testing.T) {
	fetcher := &fakeFetcher{records: []airtable.Record{
		record(map[string]any{"Name": "Ana", "No WhatsApp": "081234567890", "1": "Hadir"}),
		record(map[string]any{"Name": "Budi"}), // no phone at all
		record(map[string]any{"Name": "Citra", "No WhatsApp": "0812"}), // too short
		// Same phone as Ana, typed in a different format.
		record(map[string]any{"Name": "Ana D.", "No WhatsApp": "+62 812-3456-7890", "1": "izin"}),
	}}
	store := newFakeStore()

	svc := testService(store, fetcher, newFakeLocker())

	report, err := svc.Reconcile(context.Background(), "Feb")
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	if report.Stats.TotalFetched != 4 {
		t.Errorf("totalFetched = %d, want 4", report.Stats.TotalFetched)
	}
	if report.Stats.OperationsPrepared != 1 {
		t.Errorf("operationsPrepared = %d, want 1", report.Stats.OperationsPrepared)
	}
	if report.Stats.SkippedCount != 2 || len(report.SkippedRecords) != 2 {
		t.Fatalf("skipped = %d/%d, want 2", report.Stats.SkippedCount, len(report.SkippedRecords))
	}
	if report.SkippedRecords[0].Reason != "no_phone" || report.SkippedRecords[0].Name != "Budi" {
		t.Errorf("first skip = %+v", report.SkippedRecords[0])
	}
	if report.SkippedRecords[1].Reason != "invalid_length" || report.SkippedRecords[1].Name != "Citra" {
		t.Errorf("second skip = %+v", report.SkippedRecords[1])
	}

	// First write wins; the duplicate is reported, not stored.
	if report.Stats.DuplicateCount != 1 || len(report.DuplicateRecords) != 1 {
		t.Fatalf("duplicates = %d", report.Stats.DuplicateCount)
	}
	if report.DuplicateRecords[0].Name != "Ana D." || report.DuplicateRecords[0].WhatsApp != "6281234567890" {
		t.Errorf("duplicate = %+v", report.DuplicateRecords[0])
	}

	stored, ok := store.entries[entryKey("6281234567890", "Feb")]
	if !ok {
		t.Fatal("entry not stored")
	}
	if stored.Name != "Ana" {
		t.Errorf("stored name = %q, want the first occurrence", stored.Name)
	}
	if stored.DailyStatus["1"] != "Hadir" {
		t.Errorf("stored status = %v", stored.DailyStatus)
	}
}

func TestReconcileIdempotent(t *testing.T) {
	fetcher := &fakeFetcher{records: []airtable.Record{
		record(map[string]any{"Name": "Ana", "No WhatsApp": "081234567890", "1": "Hadir", "2": "null"}),
	}}
	store := newFakeStore()

	svc := testService(store, fetcher, newFakeLocker())

	first, err := svc.Reconcile(context.Background(), "Feb")
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.Stats.Inserted != 1 || first.Stats.Updated != 0 {
		t.Errorf("first run inserted/updated = %d/%d, want 1/0",
			first.Stats.Inserted, first.Stats.Updated)
	}

	second, err := svc.Reconcile(context.Background(), "Feb")
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.Stats.Inserted != 0 || second.Stats.Updated != 1 {
		t.Errorf("second run inserted/updated = %d/%d, want 0/1",
			second.Stats.Inserted, second.Stats.Updated)
	}

	if len(store.entries) != 1 {
		t.Errorf("store has %d entries after two runs, want 1", len(store.entries))
	}
}

func TestReconcileReleasesLock(t *testing.T) {
	fetcher := &fakeFetcher{records: []airtable.Record{
		record(map[string]any{"Name": "Ana", "No WhatsApp": "081234567890"}),
	}}
	locker := newFakeLocker()

	svc := testService(newFakeStore(), fetcher, locker)

	if _, err := svc.Reconcile(context.Background(), "Feb"); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if locker.held["Feb"] {
		t.Error("lock still held after reconcile")
	}

	// A failed fetch must release it too.
	fetcher.err = errors.New("boom")
	if _, err := svc.Reconcile(context.Background(), "Feb"); err == nil {
		t.Fatal("expected error")
	}
	if locker.held["Feb"] {
		t.Error("lock still held after failed reconcile")
	}
}

func TestReconcileDoesNotDeleteMissingPhones(t *testing.T) {
	fetcher := &fakeFetcher{records: []airtable.Record{
		record(map[string]any{"Name": "Ana", "No WhatsApp": "081234567890"}),
		record(map[string]any{"Name": "Budi", "No WhatsApp": "081234567891"}),
	}}
	store := newFakeStore()

	svc := testService(store, fetcher, newFakeLocker())

	if _, err := svc.Reconcile(context.Background(), "Feb"); err != nil {
		t.Fatalf("first run: %v", err)
	}

	// Budi drops out of the source; his entry must survive.
	fetcher.records = fetcher.records[:1]
	if _, err := svc.Reconcile(context.Background(), "Feb"); err != nil {
		t.Fatalf("second run: %v", err)
	}

	if _, ok := store.entries[entryKey("6281234567891", "Feb")]; !ok {
		t.Error("entry for a phone missing from the new batch was deleted")
	}
}
