package api

import "time"

// Auth

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	Name            string `json:"name"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword" validate:"omitempty,min=6"`
}

type CreateUserRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"required"`
	Role     string `json:"role"`
}

type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// Attendance

type CheckRequest struct {
	WhatsApp string `json:"whatsapp" validate:"required"`
}

type Summary struct {
	Present        int     `json:"present"`
	Excused        int     `json:"excused"`
	Absent         int     `json:"absent"`
	Unfilled       int     `json:"unfilled"`
	PercentPresent float64 `json:"percentPresent"`
}

type AttendanceEntry struct {
	Name         string            `json:"name"`
	Institution  string            `json:"institution"`
	WhatsApp     string            `json:"whatsapp"`
	Program      string            `json:"program"`
	Level        string            `json:"level"`
	Mentor       string            `json:"mentor"`
	Month        string            `json:"month"`
	Batch        string            `json:"batch"`
	DailyStatus  map[string]string `json:"dailyStatus"`
	Summary      Summary           `json:"summary"`
	LastSyncedAt time.Time         `json:"lastSyncedAt"`
}

// Sync report

type SkippedRecord struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

type DuplicateRecord struct {
	Name     string `json:"name"`
	WhatsApp string `json:"whatsapp"`
}

type SyncStats struct {
	TotalFetched       int `json:"totalFetched"`
	OperationsPrepared int `json:"operationsPrepared"`
	SkippedCount       int `json:"skippedCount"`
	DuplicateCount     int `json:"duplicateCount"`
	Inserted           int `json:"inserted"`
	Updated            int `json:"updated"`
	Matched            int `json:"matched"`
}

type SyncReport struct {
	Month            string            `json:"month"`
	Stats            SyncStats         `json:"stats"`
	SkippedRecords   []SkippedRecord   `json:"skippedRecords"`
	DuplicateRecords []DuplicateRecord `json:"duplicateRecords"`
}

// Aggregation

type TodayStats struct {
	Date                  string `json:"date"`
	Month                 string `json:"month"`
	TotalMenteesThisMonth int    `json:"totalMenteesThisMonth"`
	Present               int    `json:"present"`
	Excused               int    `json:"excused"`
	Absent                int    `json:"absent"`
	Unfilled              int    `json:"unfilled"`
}

type Stats struct {
	TotalMentees  int            `json:"totalMentees"`
	Programs      []string       `json:"programs,omitempty"`
	ProgramCounts map[string]int `json:"programCounts,omitempty"`
	LastSync      *time.Time     `json:"lastSync,omitempty"`
	Today         TodayStats     `json:"today"`
}

type DayHistory struct {
	Day          int    `json:"day"`
	DayLabel     string `json:"dayLabel"`
	Present      int    `json:"present"`
	Excused      int    `json:"excused"`
	Absent       int    `json:"absent"`
	Unfilled     int    `json:"unfilled"`
	TotalMentees int    `json:"totalMentees"`
}

type History struct {
	Month        string       `json:"month"`
	TotalMentees int          `json:"totalMentees"`
	TotalDays    int          `json:"totalDays"`
	History      []DayHistory `json:"history"`
}

type ListMeta struct {
	Total      int      `json:"total"`
	Page       int      `json:"page"`
	Limit      int      `json:"limit"`
	TotalPages int      `json:"totalPages"`
	Programs   []string `json:"programs,omitempty"`
	Mentors    []string `json:"mentors,omitempty"`
}
