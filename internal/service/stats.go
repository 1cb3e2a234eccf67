package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"absensi-service/api"
	"absensi-service/internal/models"
	"absensi-service/internal/parser"
	"absensi-service/internal/period"
	"absensi-service/internal/phone"
	"absensi-service/pkg/response"
)

// Stats computes today's attendance snapshot. An entry with no status key
// for today was not scheduled today and lands in no bucket at all. The
// per-program breakdown ignores the active filter so the dashboard's
// filter chips always show the full picture.
func (s *Service) Stats(ctx context.Context, field models.FilterField, filter string) (*api.Stats, error) {
	const op = "service.Stats"

	filter = normFilter(filter)

	now := s.now()
	todayKey := strconv.Itoa(now.Day())
	currentMonth := period.Current(now)

	total, err := s.store.CountEntries(ctx, field, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	stats := &api.Stats{
		TotalMentees: total,
		Today: api.TodayStats{
			Date:  todayKey,
			Month: currentMonth,
		},
	}

	if field == models.FILTER_PROGRAM {
		programs, err := s.store.DistinctValues(ctx, models.FILTER_PROGRAM)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		stats.Programs = programs

		counts, err := s.store.CountByProgram(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		stats.ProgramCounts = counts

		lastSync, err := s.store.LastSyncedAt(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		stats.LastSync = lastSync
	}

	mentees, err := s.store.ListByMonth(ctx, currentMonth, field, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	stats.Today.TotalMenteesThisMonth = len(mentees)

	for _, m := range mentees {
		status, ok := m.DailyStatus[todayKey]
		if !ok {
			// Today is not a scheduled day for this mentee.
			continue
		}

		switch parser.Classify(status) {
		case parser.CLASS_UNFILLED:
			stats.Today.Unfilled++
		case parser.CLASS_PRESENT:
			stats.Today.Present++
		case parser.CLASS_EXCUSED:
			stats.Today.Excused++
		case parser.CLASS_ABSENT:
			stats.Today.Absent++
		}
	}

	return stats, nil
}

// History breaks a month down per day. The day set is the union of day
// keys present in the matching entries, not a fixed 1..31 range; a day
// nobody was scheduled on simply does not appear.
func (s *Service) History(ctx context.Context, month string, field models.FilterField, filter string) (*api.History, error) {
	const op = "service.History"

	filter = normFilter(filter)

	if month == "" {
		month = period.Current(s.now())
	}

	mentees, err := s.store.ListByMonth(ctx, month, field, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	daySet := make(map[int]struct{})
	for _, m := range mentees {
		for key := range m.DailyStatus {
			if day, err := strconv.Atoi(key); err == nil {
				daySet[day] = struct{}{}
			}
		}
	}

	days := make([]int, 0, len(daySet))
	for day := range daySet {
		days = append(days, day)
	}
	sort.Ints(days)

	history := &api.History{
		Month:        month,
		TotalMentees: len(mentees),
		TotalDays:    len(days),
		History:      make([]api.DayHistory, 0, len(days)),
	}

	for _, day := range days {
		dayKey := strconv.Itoa(day)
		dh := api.DayHistory{
			Day:          day,
			DayLabel:     fmt.Sprintf("%d %s", day, month),
			TotalMentees: len(mentees),
		}

		for _, m := range mentees {
			status, ok := m.DailyStatus[dayKey]
			if !ok {
				continue
			}

			switch parser.Classify(status) {
			case parser.CLASS_UNFILLED:
				dh.Unfilled++
			case parser.CLASS_PRESENT:
				dh.Present++
			case parser.CLASS_EXCUSED:
				dh.Excused++
			case parser.CLASS_ABSENT:
				dh.Absent++
			}
		}

		history.History = append(history.History, dh)
	}

	return history, nil
}

// ListEntries returns one page of entries sorted by name, plus the
// distinct program or mentor values for the dashboard's filter dropdown
// (computed irrespective of the active filter).
func (s *Service) ListEntries(ctx context.Context, field models.FilterField, filter string, page, limit int) ([]api.AttendanceEntry, *api.ListMeta, error) {
	const op = "service.ListEntries"

	filter = normFilter(filter)

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	total, err := s.store.CountEntries(ctx, field, filter)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	entries, err := s.store.ListPage(ctx, field, filter, limit, (page-1)*limit)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	meta := &api.ListMeta{
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: (total + limit - 1) / limit,
	}

	switch field {
	case models.FILTER_MENTOR:
		mentors, err := s.store.DistinctValues(ctx, models.FILTER_MENTOR)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", op, err)
		}
		meta.Mentors = mentors
	default:
		programs, err := s.store.DistinctValues(ctx, models.FILTER_PROGRAM)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", op, err)
		}
		meta.Programs = programs
	}

	out := make([]api.AttendanceEntry, len(entries))
	for i, e := range entries {
		out[i] = toAPIEntry(e)
	}

	return out, meta, nil
}

// Mentors returns the distinct non-empty mentor names, sorted.
func (s *Service) Mentors(ctx context.Context) ([]string, error) {
	const op = "service.Mentors"

	mentors, err := s.store.DistinctValues(ctx, models.FILTER_MENTOR)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return mentors, nil
}

// CheckAttendance finds every stored entry for a phone number across all
// months. The input goes through the same normalization as ingestion, so
// any format the mentee types matches the stored key.
func (s *Service) CheckAttendance(ctx context.Context, rawPhone string) ([]api.AttendanceEntry, error) {
	const op = "service.CheckAttendance"

	clean := phone.Normalize(rawPhone)
	if clean == "" {
		return nil, fmt.Errorf("%s: %w", op, response.ErrBadRequest)
	}

	entries, err := s.store.FindByPhone(ctx, clean)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	sort.Slice(entries, func(i, j int) bool {
		return period.Index(entries[i].Month) < period.Index(entries[j].Month)
	})

	out := make([]api.AttendanceEntry, len(entries))
	for i, e := range entries {
		out[i] = toAPIEntry(e)
	}

	return out, nil
}
