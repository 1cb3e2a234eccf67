// Package parser maps raw source rows into attendance entries. The sheets
// have gone through two column naming conventions, so every descriptive
// field falls back between both; day columns are pure-integer keys whose
// values are stored verbatim, including the "null" placeholder.
package parser

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"absensi-service/internal/airtable"
	"absensi-service/internal/models"
	"absensi-service/internal/phone"
)

var dayKey = regexp.MustCompile(`^\d+$`)

// Class is the attendance bucket one recorded status falls into.
type Class int

const (
	CLASS_UNSCHEDULED Class = iota
	CLASS_UNFILLED
	CLASS_PRESENT
	CLASS_EXCUSED
	CLASS_ABSENT
)

// Classify buckets one status value. "null" is a scheduled day that has
// not been filled in yet; "hadir" anywhere in the status means present
// ("Hadir on-cam" and "Hadir off-cam" both count); "izin" is excused;
// any other non-empty status is absent. Empty means not scheduled.
func Classify(raw string) Class {
	status := strings.ToLower(strings.TrimSpace(raw))

	switch {
	case status == "":
		return CLASS_UNSCHEDULED
	case status == "null":
		return CLASS_UNFILLED
	case strings.Contains(status, "hadir"):
		return CLASS_PRESENT
	case status == "izin":
		return CLASS_EXCUSED
	default:
		return CLASS_ABSENT
	}
}

// Parse builds an unsaved AttendanceEntry from one source record. A day
// key is only recorded when the source provided a non-empty value for it;
// absent keys are never synthesized.
func Parse(rec airtable.Record, month, batch string, now time.Time) models.AttendanceEntry {
	f := rec.Fields

	entry := models.AttendanceEntry{
		Name:         pick(f, "Name", "Nama"),
		Institution:  pick(f, "Institusi"),
		Phone:        phone.Normalize(pick(f, "No WhatsApp", "WhatsApp")),
		Program:      pick(f, "Program IL", "Program"),
		Level:        pick(f, "Jenjang Pendidikan", "Jenjang"),
		Mentor:       pick(f, "Personal Mentor", "Mentor"),
		Month:        month,
		Batch:        batch,
		DailyStatus:  map[string]string{},
		LastSyncedAt: now,
	}

	for key, raw := range f {
		if !dayKey.MatchString(key) {
			continue
		}

		day, err := strconv.Atoi(key)
		if err != nil || day < 1 || day > 31 {
			continue
		}

		val := stringify(raw)
		if val == "" {
			continue
		}

		entry.DailyStatus[key] = val
	}

	entry.Summary = Tally(entry.DailyStatus)

	return entry
}

// Tally derives the summary counts from a daily status map. The present
// percentage runs over ALL scheduled days, unfilled ones included.
func Tally(dailyStatus map[string]string) models.Summary {
	var s models.Summary

	for _, raw := range dailyStatus {
		switch Classify(raw) {
		case CLASS_UNFILLED:
			s.Unfilled++
		case CLASS_PRESENT:
			s.Present++
		case CLASS_EXCUSED:
			s.Excused++
		case CLASS_ABSENT:
			s.Absent++
		}
	}

	total := s.Present + s.Excused + s.Absent + s.Unfilled
	if total > 0 {
		s.PercentPresent = math.Round(float64(s.Present)/float64(total)*100*100) / 100
	}

	return s
}

func pick(fields map[string]any, keys ...string) string {
	for _, k := range keys {
		if v := stringify(fields[k]); v != "" {
			return v
		}
	}

	return ""
}

// stringify renders one cell. The source feeds numbers for phone columns
// typed without a leading zero, so integral floats must not pick up an
// exponent or a decimal point.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == math.Trunc(t) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}
