package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"absensi-service/internal/airtable"
	"absensi-service/internal/models"
	"absensi-service/internal/period"
	"absensi-service/pkg/response"
)

// In-memory fakes for the service's collaborators.

type fakeStore struct {
	entries map[string]models.AttendanceEntry // keyed by phone|month
	users   map[string]models.AdminUser       // keyed by id

	upsertCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		entries: make(map[string]models.AttendanceEntry),
		users:   make(map[string]models.AdminUser),
	}
}

func entryKey(phone, month string) string {
	return phone + "|" + month
}

func matches(e models.AttendanceEntry, field models.FilterField, filter string) bool {
	if filter == "" {
		return true
	}

	var v string
	switch field {
	case models.FILTER_PROGRAM:
		v = e.Program
	case models.FILTER_MENTOR:
		v = e.Mentor
	default:
		return true
	}

	return strings.Contains(strings.ToLower(v), strings.ToLower(filter))
}

func (f *fakeStore) UpsertBatch(_ context.Context, month string, entries []models.AttendanceEntry) (int, int, error) {
	f.upsertCalls++

	var inserted, updated int
	for _, e := range entries {
		key := entryKey(e.Phone, month)
		if old, ok := f.entries[key]; ok {
			e.ID = old.ID
			updated++
		} else {
			inserted++
		}
		f.entries[key] = e
	}

	return inserted, updated, nil
}

func (f *fakeStore) ListByMonth(_ context.Context, month string, field models.FilterField, filter string) ([]models.AttendanceEntry, error) {
	var out []models.AttendanceEntry
	for _, e := range f.entries {
		if e.Month == month && matches(e, field, filter) {
			out = append(out, e)
		}
	}

	return out, nil
}

func (f *fakeStore) ListPage(_ context.Context, field models.FilterField, filter string, limit, offset int) ([]models.AttendanceEntry, error) {
	var all []models.AttendanceEntry
	for _, e := range f.entries {
		if matches(e, field, filter) {
			all = append(all, e)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })

	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}

	return all[offset:end], nil
}

func (f *fakeStore) CountEntries(_ context.Context, field models.FilterField, filter string) (int, error) {
	n := 0
	for _, e := range f.entries {
		if matches(e, field, filter) {
			n++
		}
	}

	return n, nil
}

func (f *fakeStore) DistinctValues(_ context.Context, field models.FilterField) ([]string, error) {
	set := make(map[string]struct{})
	for _, e := range f.entries {
		var v string
		switch field {
		case models.FILTER_PROGRAM:
			v = e.Program
		case models.FILTER_MENTOR:
			v = e.Mentor
		}
		if v != "" {
			set[v] = struct{}{}
		}
	}

	var out []string
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)

	return out, nil
}

func (f *fakeStore) CountByProgram(_ context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	for _, e := range f.entries {
		if e.Program != "" {
			counts[e.Program]++
		}
	}

	return counts, nil
}

func (f *fakeStore) LastSyncedAt(_ context.Context) (*time.Time, error) {
	var last *time.Time
	for _, e := range f.entries {
		t := e.LastSyncedAt
		if last == nil || t.After(*last) {
			last = &t
		}
	}

	return last, nil
}

func (f *fakeStore) FindByPhone(_ context.Context, phone string) ([]models.AttendanceEntry, error) {
	var out []models.AttendanceEntry
	for _, e := range f.entries {
		if e.Phone == phone {
			out = append(out, e)
		}
	}

	return out, nil
}

func (f *fakeStore) CreateUser(_ context.Context, user *models.AdminUser) error {
	for _, u := range f.users {
		if u.Username == user.Username {
			return response.ErrUserExists
		}
	}
	f.users[user.ID] = *user

	return nil
}

func (f *fakeStore) UserByID(_ context.Context, id string) (*models.AdminUser, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, response.ErrNotFound
	}

	return &u, nil
}

func (f *fakeStore) UserByUsername(_ context.Context, username string) (*models.AdminUser, error) {
	for _, u := range f.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}

	return nil, response.ErrNotFound
}

func (f *fakeStore) ListUsers(_ context.Context) ([]models.AdminUser, error) {
	var out []models.AdminUser
	for _, u := range f.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })

	return out, nil
}

func (f *fakeStore) UpdateUser(_ context.Context, user *models.AdminUser) error {
	if _, ok := f.users[user.ID]; !ok {
		return response.ErrNotFound
	}
	f.users[user.ID] = *user

	return nil
}

func (f *fakeStore) DeleteUser(_ context.Context, id string) error {
	if _, ok := f.users[id]; !ok {
		return response.ErrNotFound
	}
	delete(f.users, id)

	return nil
}

func (f *fakeStore) HasSuperadmin(_ context.Context) (bool, error) {
	for _, u := range f.users {
		if u.Role == models.ROLE_SUPERADMIN {
			return true, nil
		}
	}

	return false, nil
}

type fakeFetcher struct {
	records []airtable.Record
	err     error
	calls   int
}

func (f *fakeFetcher) FetchTable(_ context.Context, _ string) ([]airtable.Record, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}

	return f.records, nil
}

type fakeLocker struct {
	held    map[string]bool
	blocked bool
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: make(map[string]bool)}
}

func (f *fakeLocker) Lock(_ context.Context, key string, _ time.Duration) (bool, error) {
	if f.blocked || f.held[key] {
		return false, nil
	}
	f.held[key] = true

	return true, nil
}

func (f *fakeLocker) Unlock(_ context.Context, key string) error {
	delete(f.held, key)

	return nil
}

// testService wires a service around fakes with a fixed clock
// (Friday, Feb 13 2026).
func testService(store *fakeStore, fetcher *fakeFetcher, locker *fakeLocker) *Service {
	return NewService(store, fetcher, locker, Settings{
		BatchName: "Batch 10",
		Window:    period.NewWindow("Jan", "Dec"),
		Now: func() time.Time {
			return time.Date(2026, time.February, 13, 10, 0, 0, 0, time.UTC)
		},
	})
}
