// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface, selected with storage_driver: sqlite.
//
// Queries go through sqlx, which scans rows straight into types.Student
// using its db:"..." tags. The schema (and the two sample records) are
// applied at startup by golang-migrate from the SQL files embedded below.
//
// The store opens connections through its own driver name, which wraps
// go-sqlite3 and adds the ulower() SQL function.
package sqlite

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/aanand-mishra/student-records/internal/config"
	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"
)

//go:embed migrations/*.sql
var migrations embed.FS

// driverName is go-sqlite3 with ulower(text) registered on every
// connection. SQLite's built-in lower() folds ASCII only.
const driverName = "sqlite3_students"

func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("ulower", strings.ToLower, true)
		},
	})
}

// columns is the SELECT list matching types.Student's db tags.
// Never use SELECT *; a new column would break scanning.
const columns = "id, name, roll_number, age, grade, email, phone, course, created_at"

// SQLite is the database implementation of storage.Storage.
type SQLite struct {
	Db  *sqlx.DB
	now func() time.Time
}

// Option customises a SQLite store.
type Option func(*SQLite)

// WithClock replaces time.Now for createdAt stamps.
func WithClock(now func() time.Time) Option {
	return func(s *SQLite) { s.now = now }
}

// New opens the database at cfg.StoragePath.
func New(cfg *config.Config, opts ...Option) (*SQLite, error) {
	return Open(cfg.StoragePath, opts...)
}

// Open opens (creating if needed) the database file at path and migrates
// it to the latest schema.
func Open(path string, opts ...Option) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("sqlite.Open: create data dir: %w", err)
	}

	// sqlx.Open does NOT open a real connection yet; it validates the
	// driver name; the first connection happens on the first query.
	db, err := sqlx.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("sqlite.Open: open db: %w", err)
	}

	// One connection: SQLite allows a single writer, and this makes every
	// transaction below run strictly one after another.
	db.SetMaxOpenConns(1)

	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.Open: %w", err)
	}

	s := &SQLite{
		Db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// migrateUp applies every pending migration. ErrNoChange (already at the
// latest version) is not an error.
func migrateUp(db *sqlx.DB) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("migrate: source: %w", err)
	}

	driver, err := migratesqlite.WithInstance(db.DB, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("migrate: driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("migrate: init: %w", err)
	}

	// m.Close() is not called: it would close db through the driver.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate: up: %w", err)
	}

	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// CreateStudent checks the roll number, picks max(id)+1 and inserts, all in
// one transaction so no other operation can slip in between.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) CreateStudent(in types.NewStudent) (types.Student, error) {
	tx, err := s.Db.Beginx()
	if err != nil {
		return types.Student{}, fmt.Errorf("CreateStudent: begin: %w", err)
	}
	// Rollback after Commit is a no-op.
	defer tx.Rollback()

	var taken bool
	if err := tx.Get(&taken,
		"SELECT EXISTS(SELECT 1 FROM students WHERE roll_number = ?)", in.RollNumber,
	); err != nil {
		return types.Student{}, fmt.Errorf("CreateStudent: check roll number: %w", err)
	}
	if taken {
		return types.Student{}, storage.ErrRollNumberExists
	}

	st := in.Student()
	if err := tx.Get(&st.ID, "SELECT COALESCE(MAX(id), 0) + 1 FROM students"); err != nil {
		return types.Student{}, fmt.Errorf("CreateStudent: next id: %w", err)
	}
	st.CreatedAt = s.now()

	// NamedExec fills :name placeholders from the struct's db tags.
	if _, err := tx.NamedExec(`
		INSERT INTO students (`+columns+`)
		VALUES (:id, :name, :roll_number, :age, :grade, :email, :phone, :course, :created_at)`,
		st,
	); err != nil {
		return types.Student{}, fmt.Errorf("CreateStudent: insert: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return types.Student{}, fmt.Errorf("CreateStudent: commit: %w", err)
	}

	return st, nil
}

func (s *SQLite) GetStudentByID(id int64) (types.Student, error) {
	return getByID(s.Db, id)
}

// getByID works on the pool or inside a transaction.
func getByID(q sqlx.Queryer, id int64) (types.Student, error) {
	var st types.Student
	err := sqlx.Get(q, &st, "SELECT "+columns+" FROM students WHERE id = ? LIMIT 1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Student{}, storage.ErrNotFound
	}
	if err != nil {
		return types.Student{}, fmt.Errorf("GetStudentByID: %w", err)
	}
	return st, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// GetStudents builds the WHERE clause from the non-empty filter fields.
//
// instr(haystack, needle) > 0 is a plain substring test; unlike LIKE it
// gives no special meaning to % and _ typed into the search box. Both
// sides are folded with strings.ToLower (ulower on the column side), the
// same folding types.Filter.Match uses.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) GetStudents(f types.Filter) ([]types.Student, error) {
	var (
		where []string
		args  []any
	)

	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		where = append(where, "(instr(ulower(name), ?) > 0 OR instr(ulower(roll_number), ?) > 0)")
		args = append(args, needle, needle)
	}
	if f.Course != "" {
		where = append(where, "instr(ulower(course), ?) > 0")
		args = append(args, strings.ToLower(f.Course))
	}
	if f.Grade != "" {
		where = append(where, "grade = ?")
		args = append(args, f.Grade)
	}

	query := "SELECT " + columns + " FROM students"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"

	students := make([]types.Student, 0)
	if err := s.Db.Select(&students, query, args...); err != nil {
		return nil, fmt.Errorf("GetStudents: %w", err)
	}
	if students == nil {
		students = []types.Student{}
	}

	return students, nil
}

func (s *SQLite) UpdateStudentByID(id int64, p types.StudentPatch) (types.Student, error) {
	tx, err := s.Db.Beginx()
	if err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudentByID: begin: %w", err)
	}
	defer tx.Rollback()

	current, err := getByID(tx, id)
	if err != nil {
		return types.Student{}, err
	}

	updated := p.Apply(current)

	// id and created_at are not in the SET list.
	if _, err := tx.NamedExec(`
		UPDATE students
		SET name = :name, roll_number = :roll_number, age = :age, grade = :grade,
		    email = :email, phone = :phone, course = :course
		WHERE id = :id`,
		updated,
	); err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudentByID: exec: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudentByID: commit: %w", err)
	}

	return updated, nil
}

func (s *SQLite) DeleteStudentByID(id int64) (types.Student, error) {
	tx, err := s.Db.Beginx()
	if err != nil {
		return types.Student{}, fmt.Errorf("DeleteStudentByID: begin: %w", err)
	}
	defer tx.Rollback()

	removed, err := getByID(tx, id)
	if err != nil {
		return types.Student{}, err
	}

	if _, err := tx.Exec("DELETE FROM students WHERE id = ?", id); err != nil {
		return types.Student{}, fmt.Errorf("DeleteStudentByID: exec: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return types.Student{}, fmt.Errorf("DeleteStudentByID: commit: %w", err)
	}

	return removed, nil
}

func (s *SQLite) Close() error {
	return s.Db.Close()
}
