package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pocketpal/internal/core"

	_ "modernc.org/sqlite"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateName is returned on a uniqueness violation (category name,
	// or subject name within a category).
	ErrDuplicateName = errors.New("name already exists")
	// ErrInUse is returned when deleting a record that other records still
	// reference.
	ErrInUse = errors.New("record is in use")
)

// SQLiteRepository is the entry store and category/subject directory backed
// by a single SQLite database.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens (or creates) the database at dbPath, configures
// pragmas and runs migrations. Use ":memory:" for tests.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dbPath != ":memory:" && dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func parseTimestamp(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

// --- Categories ---

// CreateCategory inserts a category with a globally unique, trimmed name.
func (r *SQLiteRepository) CreateCategory(ctx context.Context, name string) (core.Category, error) {
	name = strings.TrimSpace(name)
	now := nowUTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (name, created_at, updated_at) VALUES (?, ?, ?)`,
		name, now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return core.Category{}, fmt.Errorf("category %q: %w", name, ErrDuplicateName)
		}
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	id, _ := res.LastInsertId()

	slog.InfoContext(ctx, "Category created", "id", id, "name", name)
	return r.GetCategory(ctx, id)
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	var c core.Category
	var createdAt, updatedAt string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, created_at, updated_at FROM categories WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return core.Category{}, fmt.Errorf("category %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category %d: %w", id, err)
	}
	c.CreatedAt = parseTimestamp(createdAt)
	c.UpdatedAt = parseTimestamp(updatedAt)
	return c, nil
}

// ListCategories returns all categories sorted by name ascending.
func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, created_at, updated_at FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]core.Category, 0)
	for rows.Next() {
		var c core.Category
		var createdAt, updatedAt string
		if err := rows.Scan(&c.ID, &c.Name, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.CreatedAt = parseTimestamp(createdAt)
		c.UpdatedAt = parseTimestamp(updatedAt)
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *SQLiteRepository) UpdateCategory(ctx context.Context, id int64, name string) (core.Category, error) {
	name = strings.TrimSpace(name)
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, updated_at = ? WHERE id = ?`,
		name, nowUTC(), id,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return core.Category{}, fmt.Errorf("category %q: %w", name, ErrDuplicateName)
		}
		return core.Category{}, fmt.Errorf("update category %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Category{}, fmt.Errorf("category %d: %w", id, ErrNotFound)
	}
	return r.GetCategory(ctx, id)
}

// DeleteCategory removes a category. Deletion is blocked while any subject
// or entry still references it.
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id int64) error {
	var refs int
	err := r.db.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM subjects WHERE category_id = ?) +
		        (SELECT COUNT(*) FROM entries  WHERE category_id = ?)`, id, id,
	).Scan(&refs)
	if err != nil {
		return fmt.Errorf("count category references: %w", err)
	}
	if refs > 0 {
		return fmt.Errorf("category %d has %d references: %w", id, refs, ErrInUse)
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete category %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("category %d: %w", id, ErrNotFound)
	}

	slog.InfoContext(ctx, "Category deleted", "id", id)
	return nil
}

// --- Subjects ---

// CreateSubject inserts a subject scoped to an existing category. The name
// must be unique within that category.
func (r *SQLiteRepository) CreateSubject(ctx context.Context, categoryID int64, name string) (core.Subject, error) {
	if _, err := r.GetCategory(ctx, categoryID); err != nil {
		return core.Subject{}, err
	}

	name = strings.TrimSpace(name)
	now := nowUTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO subjects (category_id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		categoryID, name, now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return core.Subject{}, fmt.Errorf("subject %q in category %d: %w", name, categoryID, ErrDuplicateName)
		}
		return core.Subject{}, fmt.Errorf("create subject: %w", err)
	}
	id, _ := res.LastInsertId()

	slog.InfoContext(ctx, "Subject created", "id", id, "name", name, "category_id", categoryID)
	return r.GetSubject(ctx, id)
}

func (r *SQLiteRepository) GetSubject(ctx context.Context, id int64) (core.Subject, error) {
	var s core.Subject
	var createdAt, updatedAt string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, category_id, name, created_at, updated_at FROM subjects WHERE id = ?`, id,
	).Scan(&s.ID, &s.CategoryID, &s.Name, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return core.Subject{}, fmt.Errorf("subject %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.Subject{}, fmt.Errorf("get subject %d: %w", id, err)
	}
	s.CreatedAt = parseTimestamp(createdAt)
	s.UpdatedAt = parseTimestamp(updatedAt)
	return s, nil
}

// ListSubjects returns subjects sorted by name ascending, optionally
// restricted to one category (categoryID 0 lists all).
func (r *SQLiteRepository) ListSubjects(ctx context.Context, categoryID int64) ([]core.Subject, error) {
	query := `SELECT id, category_id, name, created_at, updated_at FROM subjects`
	args := []any{}
	if categoryID != 0 {
		query += ` WHERE category_id = ?`
		args = append(args, categoryID)
	}
	query += ` ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	defer rows.Close()

	subjects := make([]core.Subject, 0)
	for rows.Next() {
		var s core.Subject
		var createdAt, updatedAt string
		if err := rows.Scan(&s.ID, &s.CategoryID, &s.Name, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan subject: %w", err)
		}
		s.CreatedAt = parseTimestamp(createdAt)
		s.UpdatedAt = parseTimestamp(updatedAt)
		subjects = append(subjects, s)
	}
	return subjects, rows.Err()
}

func (r *SQLiteRepository) UpdateSubject(ctx context.Context, id int64, name string) (core.Subject, error) {
	name = strings.TrimSpace(name)
	res, err := r.db.ExecContext(ctx,
		`UPDATE subjects SET name = ?, updated_at = ? WHERE id = ?`,
		name, nowUTC(), id,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return core.Subject{}, fmt.Errorf("subject %q: %w", name, ErrDuplicateName)
		}
		return core.Subject{}, fmt.Errorf("update subject %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Subject{}, fmt.Errorf("subject %d: %w", id, ErrNotFound)
	}
	return r.GetSubject(ctx, id)
}

// DeleteSubject removes a subject. Deletion is blocked while any entry still
// references it; those entries must be reassigned or deleted first.
func (r *SQLiteRepository) DeleteSubject(ctx context.Context, id int64) error {
	var refs int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM entries WHERE subject_id = ?`, id,
	).Scan(&refs)
	if err != nil {
		return fmt.Errorf("count subject references: %w", err)
	}
	if refs > 0 {
		return fmt.Errorf("subject %d has %d entries: %w", id, refs, ErrInUse)
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM subjects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete subject %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("subject %d: %w", id, ErrNotFound)
	}

	slog.InfoContext(ctx, "Subject deleted", "id", id)
	return nil
}

// --- Entries ---

const entrySelect = `
	SELECT e.id, e.entry_date, e.category_id, COALESCE(c.name, ''),
	       e.subject_id, COALESCE(s.name, ''),
	       e.debit_cents, e.credit_cents, e.created_at, e.updated_at
	FROM entries e
	LEFT JOIN categories c ON c.id = e.category_id
	LEFT JOIN subjects   s ON s.id = e.subject_id`

func scanEntry(row interface{ Scan(...any) error }) (core.Entry, error) {
	var e core.Entry
	var date, createdAt, updatedAt string
	err := row.Scan(&e.ID, &date, &e.CategoryID, &e.CategoryName,
		&e.SubjectID, &e.SubjectName,
		&e.Debit.Cents, &e.Credit.Cents, &createdAt, &updatedAt)
	if err != nil {
		return core.Entry{}, err
	}
	if t, err := time.Parse("2006-01-02", date); err == nil {
		e.Date = core.DateOf(t)
	}
	e.CreatedAt = parseTimestamp(createdAt)
	e.UpdatedAt = parseTimestamp(updatedAt)
	return e, nil
}

// CreateEntry inserts a validated entry and returns it with its assigned ID
// and denormalized names.
func (r *SQLiteRepository) CreateEntry(ctx context.Context, e core.Entry) (core.Entry, error) {
	now := nowUTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO entries (entry_date, category_id, subject_id, debit_cents, credit_cents, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.Date.Format("2006-01-02"), e.CategoryID, e.SubjectID,
		e.Debit.Cents, e.Credit.Cents, now, now,
	)
	if err != nil {
		return core.Entry{}, fmt.Errorf("create entry: %w", err)
	}
	id, _ := res.LastInsertId()

	slog.InfoContext(ctx, "Entry created",
		"id", id,
		"date", e.Date.Format("2006-01-02"),
		"category_id", e.CategoryID,
		"subject_id", e.SubjectID,
		"debit_cents", e.Debit.Cents,
		"credit_cents", e.Credit.Cents)

	return r.GetEntry(ctx, id)
}

func (r *SQLiteRepository) GetEntry(ctx context.Context, id int64) (core.Entry, error) {
	entry, err := scanEntry(r.db.QueryRowContext(ctx, entrySelect+` WHERE e.id = ?`, id))
	if err == sql.ErrNoRows {
		return core.Entry{}, fmt.Errorf("entry %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.Entry{}, fmt.Errorf("get entry %d: %w", id, err)
	}
	return entry, nil
}

// ListEntries returns every entry, newest date first, with category and
// subject names joined in.
func (r *SQLiteRepository) ListEntries(ctx context.Context) ([]core.Entry, error) {
	rows, err := r.db.QueryContext(ctx, entrySelect+` ORDER BY e.entry_date DESC, e.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	entries := make([]core.Entry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// UpdateEntry replaces the mutable fields of an existing entry.
func (r *SQLiteRepository) UpdateEntry(ctx context.Context, e core.Entry) (core.Entry, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE entries SET entry_date = ?, category_id = ?, subject_id = ?,
		        debit_cents = ?, credit_cents = ?, updated_at = ?
		 WHERE id = ?`,
		e.Date.Format("2006-01-02"), e.CategoryID, e.SubjectID,
		e.Debit.Cents, e.Credit.Cents, nowUTC(), e.ID,
	)
	if err != nil {
		return core.Entry{}, fmt.Errorf("update entry %d: %w", e.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Entry{}, fmt.Errorf("entry %d: %w", e.ID, ErrNotFound)
	}
	return r.GetEntry(ctx, e.ID)
}

// DeleteEntry removes an entry. Entries have no dependents, so deletion is
// never blocked.
func (r *SQLiteRepository) DeleteEntry(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete entry %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("entry %d: %w", id, ErrNotFound)
	}

	slog.InfoContext(ctx, "Entry deleted", "id", id)
	return nil
}
