package models

import "time"

type Role string

const (
	ROLE_ADMIN      Role = "admin"
	ROLE_SUPERADMIN Role = "superadmin"
)

type AdminUser struct {
	ID           string    `db:"id"`
	Username     string    `db:"username"`
	PasswordHash string    `db:"password_hash"`
	Name         string    `db:"name"`
	Role         Role      `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
}

// Summary holds the per-entry tallies derived at parse time.
type Summary struct {
	Present        int     `db:"present"`
	Excused        int     `db:"excused"`
	Absent         int     `db:"absent"`
	Unfilled       int     `db:"unfilled"`
	PercentPresent float64 `db:"percent_present"`
}

// AttendanceEntry is one mentee's attendance for one month.
// (Phone, Month) is the natural key, unique at the storage layer.
// DailyStatus keys are day-of-month strings ("1".."31"); a value of
// exactly "null" is a scheduled day that has not been filled in yet,
// and a missing key means the day was never scheduled for this mentee.
type AttendanceEntry struct {
	ID           string            `db:"id"`
	Name         string            `db:"name"`
	Institution  string            `db:"institution"`
	Phone        string            `db:"phone"`
	Program      string            `db:"program"`
	Level        string            `db:"level"`
	Mentor       string            `db:"mentor"`
	Month        string            `db:"month"`
	Batch        string            `db:"batch"`
	DailyStatus  map[string]string `db:"daily_status"`
	Summary      Summary
	LastSyncedAt time.Time `db:"last_synced_at"`
}

// FilterField selects which descriptive column a substring filter runs on.
type FilterField string

const (
	FILTER_NONE    FilterField = ""
	FILTER_PROGRAM FilterField = "program"
	FILTER_MENTOR  FilterField = "mentor"
)
