package service

import (
	"context"
	"fmt"

	"absensi-service/api"
	"absensi-service/internal/models"
	"absensi-service/internal/parser"
	"absensi-service/internal/period"
	"absensi-service/pkg/response"

	"github.com/google/uuid"
)

// Reconcile runs the fetch-validate-dedupe-upsert pipeline for one month.
// A malformed record is skipped and reported, never aborts the batch; a
// failed fetch aborts everything before any write.
func (s *Service) Reconcile(ctx context.Context, month string) (*api.SyncReport, error) {
	const op = "service.Reconcile"

	if !s.window.Contains(month) {
		return nil, fmt.Errorf("%s: %w", op, response.ErrInvalidMonth)
	}
	if period.IsFuture(month, s.now()) {
		return nil, fmt.Errorf("%s: %w", op, response.ErrInvalidMonth)
	}

	ok, err := s.locker.Lock(ctx, month, s.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, response.ErrLocked)
	}
	// The unlock must survive a caller disconnect mid-sync.
	defer s.locker.Unlock(context.WithoutCancel(ctx), month)

	records, err := s.fetcher.FetchTable(ctx, month)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, response.ErrSourceUnavailable, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: %w", op, response.ErrNoData)
	}

	now := s.now()

	report := &api.SyncReport{
		Month:            month,
		SkippedRecords:   []api.SkippedRecord{},
		DuplicateRecords: []api.DuplicateRecord{},
	}
	report.Stats.TotalFetched = len(records)

	seen := make(map[string]struct{}, len(records))
	batch := make([]models.AttendanceEntry, 0, len(records))

	for _, rec := range records {
		entry := parser.Parse(rec, month, s.batch, now)

		if entry.Phone == "" {
			report.SkippedRecords = append(report.SkippedRecords,
				api.SkippedRecord{Name: entry.Name, Reason: "no_phone"})
			continue
		}
		if len(entry.Phone) < 10 {
			report.SkippedRecords = append(report.SkippedRecords,
				api.SkippedRecord{Name: entry.Name, Reason: "invalid_length"})
			continue
		}

		// First occurrence of a phone wins; later rows in the same batch
		// are reported and dropped. Source order is assumed meaningful —
		// a deliberate simplification, not the only defensible policy.
		if _, dup := seen[entry.Phone]; dup {
			report.DuplicateRecords = append(report.DuplicateRecords,
				api.DuplicateRecord{Name: entry.Name, WhatsApp: entry.Phone})
			continue
		}
		seen[entry.Phone] = struct{}{}

		entry.ID = uuid.NewString()
		batch = append(batch, entry)
	}

	report.Stats.OperationsPrepared = len(batch)
	report.Stats.SkippedCount = len(report.SkippedRecords)
	report.Stats.DuplicateCount = len(report.DuplicateRecords)

	if len(batch) == 0 {
		return report, nil
	}

	inserted, updated, err := s.store.UpsertBatch(ctx, month, batch)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	report.Stats.Inserted = inserted
	report.Stats.Updated = updated
	report.Stats.Matched = updated

	return report, nil
}
