package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"

	"github.com/nhle/deadline-harvester/internal/model"
)

// deadlineColumns is the explicit column list for deadline queries.
const deadlineColumns = `id, raw_title, title, description, start_date, due_date,
	category, url, is_critical, is_event, ai_enhanced, created_at, updated_at`

// SQLiteStore implements the Store interface using SQLite, either a local
// file through modernc.org/sqlite or a remote libsql database.
type SQLiteStore struct {
	db  *sqlx.DB
	now func() time.Time
}

// driverFor picks the database/sql driver from the URL scheme.
func driverFor(dbURL string) string {
	if strings.HasPrefix(dbURL, "libsql://") || strings.HasPrefix(dbURL, "wss://") {
		return "libsql"
	}
	return "sqlite"
}

// NewSQLiteStore opens (or creates) the database at dbURL, enables WAL
// mode for local files, and runs any pending schema migrations.
func NewSQLiteStore(dbURL string) (*SQLiteStore, error) {
	driver := driverFor(dbURL)

	db, err := sqlx.Open(driver, dbURL)
	if err != nil {
		return nil, fmt.Errorf("opening %s db: %w", driver, err)
	}

	if driver == "sqlite" {
		// A single connection serializes writers and keeps :memory:
		// databases alive across calls.
		db.SetMaxOpenConns(1)

		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enabling WAL mode: %w", err)
		}
		if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting busy timeout: %w", err)
		}
	}

	s := &SQLiteStore{db: db, now: time.Now}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order, each inside its own transaction.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}

		tx, err := s.db.Beginx()
		if err != nil {
			return fmt.Errorf("beginning migration v%d: %w", m.version, err)
		}
		for _, stmt := range m.statements() {
			if _, err := tx.Exec(stmt); err != nil {
				tx.Rollback()
				return fmt.Errorf("applying migration v%d: %w", m.version, err)
			}
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// deadlineRow mirrors the deadlines table for sqlx scanning.
type deadlineRow struct {
	ID          int64        `db:"id"`
	RawTitle    string       `db:"raw_title"`
	Title       string       `db:"title"`
	Description string       `db:"description"`
	StartDate   sql.NullTime `db:"start_date"`
	DueDate     time.Time    `db:"due_date"`
	Category    string       `db:"category"`
	URL         string       `db:"url"`
	IsCritical  bool         `db:"is_critical"`
	IsEvent     bool         `db:"is_event"`
	AIEnhanced  bool         `db:"ai_enhanced"`
	CreatedAt   time.Time    `db:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at"`
}

// toModel converts a scanned row into a model.Deadline.
func (r deadlineRow) toModel() model.Deadline {
	d := model.Deadline{
		ID:          r.ID,
		RawTitle:    r.RawTitle,
		Title:       r.Title,
		Description: r.Description,
		DueDate:     r.DueDate,
		Category:    model.ParseCategory(r.Category),
		URL:         r.URL,
		IsCritical:  r.IsCritical,
		IsEvent:     r.IsEvent,
		AIEnhanced:  r.AIEnhanced,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.StartDate.Valid {
		start := r.StartDate.Time
		d.StartDate = &start
	}
	return d
}

// selectDeadlines runs query and converts every row.
func (s *SQLiteStore) selectDeadlines(
	ctx context.Context,
	query string,
	args ...interface{},
) ([]model.Deadline, error) {
	var rows []deadlineRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	deadlines := make([]model.Deadline, 0, len(rows))
	for _, r := range rows {
		deadlines = append(deadlines, r.toModel())
	}
	return deadlines, nil
}

// ListDeadlines returns deadlines ordered by due date, optionally limited
// to those not yet due.
func (s *SQLiteStore) ListDeadlines(
	ctx context.Context,
	activeOnly bool,
) ([]model.Deadline, error) {
	query := "SELECT " + deadlineColumns + " FROM deadlines"
	var args []interface{}
	if activeOnly {
		query += " WHERE due_date > ?"
		args = append(args, dbTime(s.now()))
	}
	query += " ORDER BY due_date ASC, id ASC"

	deadlines, err := s.selectDeadlines(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing deadlines: %w", err)
	}
	return deadlines, nil
}

// SearchByTitlePrefix returns deadlines whose display or raw title starts
// with prefix, case-insensitively.
func (s *SQLiteStore) SearchByTitlePrefix(
	ctx context.Context,
	prefix string,
) ([]model.Deadline, error) {
	pattern := escapeLike(strings.TrimSpace(prefix)) + "%"

	deadlines, err := s.selectDeadlines(ctx,
		"SELECT "+deadlineColumns+` FROM deadlines
		WHERE title LIKE ? ESCAPE '\' OR raw_title LIKE ? ESCAPE '\'
		ORDER BY due_date ASC, id ASC`,
		pattern, pattern,
	)
	if err != nil {
		return nil, fmt.Errorf("searching deadlines by %q: %w", prefix, err)
	}
	return deadlines, nil
}

// GetDeadline retrieves a single deadline by id.
func (s *SQLiteStore) GetDeadline(
	ctx context.Context,
	id int64,
) (*model.Deadline, error) {
	var row deadlineRow
	err := s.db.GetContext(ctx, &row,
		"SELECT "+deadlineColumns+" FROM deadlines WHERE id = ?", id,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("getting deadline %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting deadline %d: %w", id, err)
	}

	d := row.toModel()
	return &d, nil
}

// InsertDeadline stores a new deadline and returns its id.
func (s *SQLiteStore) InsertDeadline(
	ctx context.Context,
	d model.Deadline,
) (int64, error) {
	now := dbTime(s.now())
	rawTitle := d.RawTitle
	if rawTitle == "" {
		rawTitle = d.Title
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO deadlines (
			raw_title, title, description, start_date, due_date,
			category, url, is_critical, is_event, ai_enhanced,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rawTitle, d.Title, d.Description, nullTime(d.StartDate), dbTime(d.DueDate),
		string(d.Category), d.URL, boolToInt(d.IsCritical), boolToInt(d.IsEvent),
		boolToInt(d.AIEnhanced), now, now,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting deadline %q: %w", d.Title, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading id of deadline %q: %w", d.Title, err)
	}
	return id, nil
}

// UpdateDeadline overwrites the content fields of an existing deadline,
// including the display title and the enhanced flag.
func (s *SQLiteStore) UpdateDeadline(
	ctx context.Context,
	id int64,
	d model.Deadline,
) error {
	rawTitle := d.RawTitle
	if rawTitle == "" {
		rawTitle = d.Title
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE deadlines SET
			raw_title = ?, title = ?, description = ?,
			start_date = ?, due_date = ?, category = ?, url = ?,
			is_critical = ?, is_event = ?, ai_enhanced = ?,
			updated_at = ?
		WHERE id = ?`,
		rawTitle, d.Title, d.Description,
		nullTime(d.StartDate), dbTime(d.DueDate), string(d.Category), d.URL,
		boolToInt(d.IsCritical), boolToInt(d.IsEvent), boolToInt(d.AIEnhanced),
		dbTime(s.now()), id,
	)
	if err != nil {
		return fmt.Errorf("updating deadline %d: %w", id, err)
	}
	return requireRow(res, id)
}

// DeleteDeadline removes a deadline by id.
func (s *SQLiteStore) DeleteDeadline(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM deadlines WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting deadline %d: %w", id, err)
	}
	return requireRow(res, id)
}

// DeleteDueBefore removes every deadline due before cutoff.
func (s *SQLiteStore) DeleteDueBefore(
	ctx context.Context,
	cutoff time.Time,
) (int, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM deadlines WHERE due_date < ?", dbTime(cutoff),
	)
	if err != nil {
		return 0, fmt.Errorf("deleting deadlines due before %s: %w", cutoff.Format(time.RFC3339), err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted deadlines: %w", err)
	}
	return int(n), nil
}

// UpcomingDeadlines returns deadlines due in [from, from+within] and
// events starting in that window.
func (s *SQLiteStore) UpcomingDeadlines(
	ctx context.Context,
	from time.Time,
	within time.Duration,
) ([]model.Deadline, error) {
	start := dbTime(from)
	end := dbTime(from.Add(within))

	deadlines, err := s.selectDeadlines(ctx,
		"SELECT "+deadlineColumns+` FROM deadlines
		WHERE (due_date BETWEEN ? AND ?)
		   OR (is_event = 1 AND start_date IS NOT NULL AND start_date BETWEEN ? AND ?)
		ORDER BY due_date ASC, id ASC`,
		start, end, start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("querying upcoming deadlines: %w", err)
	}
	return deadlines, nil
}

// SetEnhancedTitle replaces the display title of a deadline and marks it
// as enhanced. RawTitle is left untouched.
func (s *SQLiteStore) SetEnhancedTitle(
	ctx context.Context,
	id int64,
	title string,
) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE deadlines SET title = ?, ai_enhanced = 1, updated_at = ? WHERE id = ?",
		title, dbTime(s.now()), id,
	)
	if err != nil {
		return fmt.Errorf("setting enhanced title of deadline %d: %w", id, err)
	}
	return requireRow(res, id)
}

// RecordRun stores the outcome of a harvest run.
func (s *SQLiteStore) RecordRun(ctx context.Context, run model.HarvestRun) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO harvest_runs (
			id, started_at, finished_at, added, updated, skipped,
			failed, parse_failures, candidates, error
		) VALUES (
			:id, :started_at, :finished_at, :added, :updated, :skipped,
			:failed, :parse_failures, :candidates, :error
		)`,
		runRow{
			ID:            run.ID,
			StartedAt:     dbTime(run.StartedAt),
			FinishedAt:    dbTime(run.FinishedAt),
			Added:         run.Added,
			Updated:       run.Updated,
			Skipped:       run.Skipped,
			Failed:        run.Failed,
			ParseFailures: run.ParseFailures,
			Candidates:    run.Candidates,
			Error:         run.Error,
		},
	)
	if err != nil {
		return fmt.Errorf("recording harvest run %s: %w", run.ID, err)
	}
	return nil
}

// RecentRuns returns up to limit harvest runs, newest first.
func (s *SQLiteStore) RecentRuns(ctx context.Context, limit int) ([]model.HarvestRun, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows []runRow
	err := s.db.SelectContext(ctx, &rows,
		"SELECT * FROM harvest_runs ORDER BY started_at DESC LIMIT ?", limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying harvest runs: %w", err)
	}

	runs := make([]model.HarvestRun, 0, len(rows))
	for _, r := range rows {
		runs = append(runs, model.HarvestRun{
			ID:            r.ID,
			StartedAt:     r.StartedAt,
			FinishedAt:    r.FinishedAt,
			Added:         r.Added,
			Updated:       r.Updated,
			Skipped:       r.Skipped,
			Failed:        r.Failed,
			ParseFailures: r.ParseFailures,
			Candidates:    r.Candidates,
			Error:         r.Error,
		})
	}
	return runs, nil
}

// runRow mirrors the harvest_runs table.
type runRow struct {
	ID            string    `db:"id"`
	StartedAt     time.Time `db:"started_at"`
	FinishedAt    time.Time `db:"finished_at"`
	Added         int       `db:"added"`
	Updated       int       `db:"updated"`
	Skipped       int       `db:"skipped"`
	Failed        int       `db:"failed"`
	ParseFailures int       `db:"parse_failures"`
	Candidates    int       `db:"candidates"`
	Error         string    `db:"error"`
}

// requireRow maps a zero-row result to ErrNotFound.
func requireRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows for deadline %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("deadline %d: %w", id, ErrNotFound)
	}
	return nil
}

// dbTime normalizes a timestamp for storage. Values are kept in UTC at
// second precision so that text comparisons order correctly.
func dbTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

// nullTime converts an optional timestamp for storage.
func nullTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return dbTime(*t)
}

// escapeLike escapes LIKE wildcards using backslash.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// boolToInt converts a boolean to 0 or 1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
