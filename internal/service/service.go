package service

import (
	"context"
	"time"

	"absensi-service/api"
	"absensi-service/internal/airtable"
	"absensi-service/internal/lock"
	"absensi-service/internal/models"
	"absensi-service/internal/period"
)

type Service struct {
	store   Store
	fetcher Fetcher
	locker  lock.Locker

	batch   string
	window  period.Window
	lockTTL time.Duration
	now     func() time.Time
}

// Fetcher pulls every raw record of one month's source table.
type Fetcher interface {
	FetchTable(ctx context.Context, table string) ([]airtable.Record, error)
}

type Store interface {
	// Attendance entries
	UpsertBatch(ctx context.Context, month string, entries []models.AttendanceEntry) (inserted, updated int, err error)
	ListByMonth(ctx context.Context, month string, field models.FilterField, filter string) ([]models.AttendanceEntry, error)
	ListPage(ctx context.Context, field models.FilterField, filter string, limit, offset int) ([]models.AttendanceEntry, error)
	CountEntries(ctx context.Context, field models.FilterField, filter string) (int, error)
	DistinctValues(ctx context.Context, field models.FilterField) ([]string, error)
	CountByProgram(ctx context.Context) (map[string]int, error)
	LastSyncedAt(ctx context.Context) (*time.Time, error)
	FindByPhone(ctx context.Context, phone string) ([]models.AttendanceEntry, error)

	// Admin users
	CreateUser(ctx context.Context, user *models.AdminUser) error
	UserByID(ctx context.Context, id string) (*models.AdminUser, error)
	UserByUsername(ctx context.Context, username string) (*models.AdminUser, error)
	ListUsers(ctx context.Context) ([]models.AdminUser, error)
	UpdateUser(ctx context.Context, user *models.AdminUser) error
	DeleteUser(ctx context.Context, id string) error
	HasSuperadmin(ctx context.Context) (bool, error)
}

// Settings are the process-wide constants every request shares.
type Settings struct {
	BatchName string
	Window    period.Window
	LockTTL   time.Duration

	// Now is overridable in tests; defaults to time.Now.
	Now func() time.Time
}

func NewService(store Store, fetcher Fetcher, locker lock.Locker, settings Settings) *Service {
	now := settings.Now
	if now == nil {
		now = time.Now
	}

	lockTTL := settings.LockTTL
	if lockTTL == 0 {
		lockTTL = 2 * time.Minute
	}

	return &Service{
		store:   store,
		fetcher: fetcher,
		locker:  locker,
		batch:   settings.BatchName,
		window:  settings.Window,
		lockTTL: lockTTL,
		now:     now,
	}
}

// normFilter treats the dashboard's "All" option the same as no filter.
func normFilter(filter string) string {
	if filter == "All" {
		return ""
	}

	return filter
}

func toAPIEntry(e models.AttendanceEntry) api.AttendanceEntry {
	return api.AttendanceEntry{
		Name:        e.Name,
		Institution: e.Institution,
		WhatsApp:    e.Phone,
		Program:     e.Program,
		Level:       e.Level,
		Mentor:      e.Mentor,
		Month:       e.Month,
		Batch:       e.Batch,
		DailyStatus: e.DailyStatus,
		Summary: api.Summary{
			Present:        e.Summary.Present,
			Excused:        e.Summary.Excused,
			Absent:         e.Summary.Absent,
			Unfilled:       e.Summary.Unfilled,
			PercentPresent: e.Summary.PercentPresent,
		},
		LastSyncedAt: e.LastSyncedAt,
	}
}

func toAPIUser(u *models.AdminUser) *api.User {
	return &api.User{
		ID:        u.ID,
		Username:  u.Username,
		Name:      u.Name,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}
