package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"absensi-service/internal/models"
	"absensi-service/pkg/response"

	"github.com/lib/pq"
)

type Storage struct {
	db *sql.DB
}

func New(storagePath string) (*Storage, error) {
	const op = "storage.postgres.New"

	db, err := sql.Open("postgres", storagePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}

	return s.db.Close()
}

// Migrate bootstraps the schema. The unique (phone, month) constraint is
// the invariant the whole sync pipeline leans on.
func (s *Storage) Migrate(ctx context.Context) error {
	const op = "storage.postgres.Migrate"

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS admin_users (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			name TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'admin',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS attendance_entries (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			institution TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL,
			program TEXT NOT NULL DEFAULT '',
			level TEXT NOT NULL DEFAULT '',
			mentor TEXT NOT NULL DEFAULT '',
			month TEXT NOT NULL,
			batch TEXT NOT NULL DEFAULT '',
			daily_status JSONB NOT NULL DEFAULT '{}',
			present INT NOT NULL DEFAULT 0,
			excused INT NOT NULL DEFAULT 0,
			absent INT NOT NULL DEFAULT 0,
			unfilled INT NOT NULL DEFAULT 0,
			percent_present DOUBLE PRECISION NOT NULL DEFAULT 0,
			last_synced_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			CONSTRAINT attendance_entries_phone_month_key UNIQUE (phone, month)
		)`,
		`CREATE INDEX IF NOT EXISTS attendance_entries_phone_idx
			ON attendance_entries (phone)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	return nil
}

// #### attendance entries ####

const entryColumns = `id, name, institution, phone, program, level, mentor,
	month, batch, daily_status, present, excused, absent, unfilled,
	percent_present, last_synced_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (models.AttendanceEntry, error) {
	var (
		e          models.AttendanceEntry
		statusJSON []byte
	)

	err := row.Scan(
		&e.ID, &e.Name, &e.Institution, &e.Phone, &e.Program, &e.Level,
		&e.Mentor, &e.Month, &e.Batch, &statusJSON,
		&e.Summary.Present, &e.Summary.Excused, &e.Summary.Absent,
		&e.Summary.Unfilled, &e.Summary.PercentPresent, &e.LastSyncedAt,
	)
	if err != nil {
		return e, err
	}

	if len(statusJSON) > 0 {
		if err := json.Unmarshal(statusJSON, &e.DailyStatus); err != nil {
			return e, err
		}
	}

	return e, nil
}

// filterClause renders an optional case-insensitive substring filter on a
// descriptive column. The column name comes from a fixed switch, never
// from the caller's string.
func filterClause(field models.FilterField, filter string, argIdx int) (string, []any) {
	if filter == "" {
		return "", nil
	}

	var col string
	switch field {
	case models.FILTER_PROGRAM:
		col = "program"
	case models.FILTER_MENTOR:
		col = "mentor"
	default:
		return "", nil
	}

	return fmt.Sprintf(" AND %s ILIKE '%%' || $%d || '%%'", col, argIdx), []any{filter}
}

// UpsertBatch writes the surviving entries of one sync in a single
// transaction, keyed by (phone, month). Returns how many rows were new
// and how many updated an existing (phone, month) pair. No delete: rows
// for phones that vanished from the source survive from the prior sync.
func (s *Storage) UpsertBatch(ctx context.Context, month string, entries []models.AttendanceEntry) (inserted, updated int, err error) {
	const op = "storage.postgres.UpsertBatch"

	if len(entries) == 0 {
		return 0, 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback()

	phones := make([]string, len(entries))
	for i, e := range entries {
		phones[i] = e.Phone
	}

	existing, err := existingPhonesTx(ctx, tx, month, phones)
	if err != nil {
		return 0, 0, fmt.Errorf("%s: %w", op, err)
	}

	if err := upsertEntriesTx(ctx, tx, entries); err != nil {
		return 0, 0, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("%s: %w", op, err)
	}

	return len(entries) - len(existing), len(existing), nil
}

func existingPhonesTx(ctx context.Context, tx *sql.Tx, month string, phones []string) (map[string]struct{}, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT phone FROM attendance_entries WHERE month=$1 AND phone = ANY($2)`,
		month, pq.Array(phones),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	existing := make(map[string]struct{})
	for rows.Next() {
		var phone string
		if err := rows.Scan(&phone); err != nil {
			return nil, err
		}
		existing[phone] = struct{}{}
	}

	return existing, rows.Err()
}

func upsertEntriesTx(ctx context.Context, tx *sql.Tx, entries []models.AttendanceEntry) error {
	// 16 bind parameters per row against Postgres's 65535-parameter cap;
	// larger batches go in as several statements within the transaction.
	const chunkSize = 1000

	for len(entries) > 0 {
		n := len(entries)
		if n > chunkSize {
			n = chunkSize
		}

		if err := upsertChunkTx(ctx, tx, entries[:n]); err != nil {
			return err
		}
		entries = entries[n:]
	}

	return nil
}

func upsertChunkTx(ctx context.Context, tx *sql.Tx, entries []models.AttendanceEntry) error {
	const cols = 16

	placeholders := make([]string, 0, len(entries))
	args := make([]any, 0, len(entries)*cols)

	for i, e := range entries {
		statusJSON, err := json.Marshal(e.DailyStatus)
		if err != nil {
			return fmt.Errorf("marshal daily_status: %w", err)
		}

		base := i * cols
		ph := make([]string, cols)
		for j := range ph {
			ph[j] = "$" + strconv.Itoa(base+j+1)
		}
		placeholders = append(placeholders, "("+strings.Join(ph, ",")+")")

		args = append(args,
			e.ID, e.Name, e.Institution, e.Phone, e.Program, e.Level,
			e.Mentor, e.Month, e.Batch, statusJSON,
			e.Summary.Present, e.Summary.Excused, e.Summary.Absent,
			e.Summary.Unfilled, e.Summary.PercentPresent, e.LastSyncedAt,
		)
	}

	query := fmt.Sprintf(`
		INSERT INTO attendance_entries
		(id, name, institution, phone, program, level, mentor, month, batch,
		 daily_status, present, excused, absent, unfilled, percent_present, last_synced_at)
		VALUES %s
		ON CONFLICT (phone, month)
		DO UPDATE
		SET name = EXCLUDED.name,
			institution = EXCLUDED.institution,
			program = EXCLUDED.program,
			level = EXCLUDED.level,
			mentor = EXCLUDED.mentor,
			batch = EXCLUDED.batch,
			daily_status = EXCLUDED.daily_status,
			present = EXCLUDED.present,
			excused = EXCLUDED.excused,
			absent = EXCLUDED.absent,
			unfilled = EXCLUDED.unfilled,
			percent_present = EXCLUDED.percent_present,
			last_synced_at = EXCLUDED.last_synced_at;
		`,
		strings.Join(placeholders, ","),
	)

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("exec: %w", err)
	}

	return nil
}

func (s *Storage) ListByMonth(ctx context.Context, month string, field models.FilterField, filter string) ([]models.AttendanceEntry, error) {
	const op = "storage.postgres.ListByMonth"

	query := `SELECT ` + entryColumns + ` FROM attendance_entries WHERE month=$1`
	args := []any{month}

	clause, extra := filterClause(field, filter, 2)
	query += clause
	args = append(args, extra...)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var entries []models.AttendanceEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func (s *Storage) ListPage(ctx context.Context, field models.FilterField, filter string, limit, offset int) ([]models.AttendanceEntry, error) {
	const op = "storage.postgres.ListPage"

	query := `SELECT ` + entryColumns + ` FROM attendance_entries WHERE TRUE`
	args := []any{}

	clause, extra := filterClause(field, filter, 1)
	query += clause
	args = append(args, extra...)

	query += fmt.Sprintf(" ORDER BY name ASC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var entries []models.AttendanceEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func (s *Storage) CountEntries(ctx context.Context, field models.FilterField, filter string) (int, error) {
	const op = "storage.postgres.CountEntries"

	query := `SELECT COUNT(*) FROM attendance_entries WHERE TRUE`
	args := []any{}

	clause, extra := filterClause(field, filter, 1)
	query += clause
	args = append(args, extra...)

	var total int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return total, nil
}

func (s *Storage) DistinctValues(ctx context.Context, field models.FilterField) ([]string, error) {
	const op = "storage.postgres.DistinctValues"

	var col string
	switch field {
	case models.FILTER_PROGRAM:
		col = "program"
	case models.FILTER_MENTOR:
		col = "mentor"
	default:
		return nil, fmt.Errorf("%s: unknown field %q", op, field)
	}

	query := fmt.Sprintf(
		`SELECT DISTINCT %s FROM attendance_entries WHERE %s <> '' ORDER BY %s ASC`,
		col, col, col,
	)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		values = append(values, v)
	}

	return values, rows.Err()
}

func (s *Storage) CountByProgram(ctx context.Context) (map[string]int, error) {
	const op = "storage.postgres.CountByProgram"

	rows, err := s.db.QueryContext(ctx,
		`SELECT program, COUNT(*) FROM attendance_entries WHERE program <> '' GROUP BY program`,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			program string
			n       int
		)
		if err := rows.Scan(&program, &n); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		counts[program] = n
	}

	return counts, rows.Err()
}

func (s *Storage) LastSyncedAt(ctx context.Context) (*time.Time, error) {
	const op = "storage.postgres.LastSyncedAt"

	var last sql.NullTime
	err := s.db.QueryRowContext(ctx,
		`SELECT max(last_synced_at) FROM attendance_entries`,
	).Scan(&last)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !last.Valid {
		return nil, nil
	}

	return &last.Time, nil
}

func (s *Storage) FindByPhone(ctx context.Context, phone string) ([]models.AttendanceEntry, error) {
	const op = "storage.postgres.FindByPhone"

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM attendance_entries WHERE phone=$1`,
		phone,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var entries []models.AttendanceEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// #### admin users ####

func (s *Storage) CreateUser(ctx context.Context, user *models.AdminUser) error {
	const op = "storage.postgres.CreateUser"

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO admin_users (id, username, password_hash, name, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID, user.Username, user.PasswordHash, user.Name, string(user.Role), user.CreatedAt,
	)
	if err != nil {
		sqlErr, ok := err.(*pq.Error)
		if ok && sqlErr.Code == "23505" {
			return fmt.Errorf("%s: %w", op, response.ErrUserExists)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func scanUser(row rowScanner) (*models.AdminUser, error) {
	var u models.AdminUser

	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Name, &u.Role, &u.CreatedAt)
	if err != nil {
		return nil, err
	}

	return &u, nil
}

const userColumns = `id, username, password_hash, name, role, created_at`

func (s *Storage) UserByID(ctx context.Context, id string) (*models.AdminUser, error) {
	const op = "storage.postgres.UserByID"

	user, err := scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM admin_users WHERE id=$1`, id,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

func (s *Storage) UserByUsername(ctx context.Context, username string) (*models.AdminUser, error) {
	const op = "storage.postgres.UserByUsername"

	user, err := scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM admin_users WHERE username=$1`, username,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

func (s *Storage) ListUsers(ctx context.Context) ([]models.AdminUser, error) {
	const op = "storage.postgres.ListUsers"

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM admin_users ORDER BY created_at ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var users []models.AdminUser
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		users = append(users, *u)
	}

	return users, rows.Err()
}

func (s *Storage) UpdateUser(ctx context.Context, user *models.AdminUser) error {
	const op = "storage.postgres.UpdateUser"

	_, err := s.db.ExecContext(ctx,
		`UPDATE admin_users SET name=$1, password_hash=$2 WHERE id=$3`,
		user.Name, user.PasswordHash, user.ID,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) DeleteUser(ctx context.Context, id string) error {
	const op = "storage.postgres.DeleteUser"

	res, err := s.db.ExecContext(ctx, `DELETE FROM admin_users WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return nil
}

func (s *Storage) HasSuperadmin(ctx context.Context) (bool, error) {
	const op = "storage.postgres.HasSuperadmin"

	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM admin_users WHERE role=$1)`,
		string(models.ROLE_SUPERADMIN),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return exists, nil
}
