// Package jsonfile provides the default storage.Storage implementation:
// the whole collection is held in memory and the JSON document on disk is
// rewritten from it after every create, update and delete.
//
// The document is the durable source of truth. There is no write-ahead
// log and no partial write: a crash between a mutation and its persist
// loses that mutation.
package jsonfile

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/aanand-mishra/student-records/internal/config"
	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"
)

// JSONFile is the JSON-document implementation of storage.Storage.
//
// mu serializes every operation: net/http runs handlers on concurrent
// goroutines and the collection is a plain slice.
type JSONFile struct {
	mu       sync.Mutex
	path     string
	students []types.Student
	now      func() time.Time
}

// Option customises a JSONFile.
type Option func(*JSONFile)

// WithClock replaces time.Now for createdAt stamps.
func WithClock(now func() time.Time) Option {
	return func(s *JSONFile) { s.now = now }
}

// New opens the document at cfg.StoragePath.
func New(cfg *config.Config, opts ...Option) (*JSONFile, error) {
	return Open(cfg.StoragePath, opts...)
}

// Open loads the document at path, creating its directory if needed.
// A missing, unreadable or unparsable document is replaced with the
// sample records.
func Open(path string, opts ...Option) (*JSONFile, error) {
	s := &JSONFile{
		path: path,
		now:  func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("jsonfile.Open: create data dir: %w", err)
	}

	if err := s.load(); err != nil {
		return nil, err
	}

	return s, nil
}

// load fills the collection from disk, seeding it when the document
// cannot be used.
func (s *JSONFile) load() error {
	data, err := os.ReadFile(s.path)
	if err == nil {
		var students []types.Student
		if err = json.Unmarshal(data, &students); err == nil {
			if students == nil {
				students = []types.Student{}
			}
			s.students = students
			return nil
		}
	}

	slog.Warn("creating new data file",
		slog.String("path", s.path),
		slog.String("reason", err.Error()))

	now := s.now()
	s.students = make([]types.Student, 0, len(storage.Sample))
	for i, in := range storage.Sample {
		st := in.Student()
		st.ID = int64(i + 1)
		st.CreatedAt = now
		s.students = append(s.students, st)
	}

	if err := s.persist(); err != nil {
		return fmt.Errorf("jsonfile.Open: seed: %w", err)
	}
	return nil
}

// persist overwrites the document with the current collection,
// pretty-printed with a two-space indent.
func (s *JSONFile) persist() error {
	data, err := json.MarshalIndent(s.students, "", "  ")
	if err != nil {
		return fmt.Errorf("persist: encode: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("persist: write: %w", err)
	}
	return nil
}

// commit persists next as the new collection. On failure the previous
// collection stays in place so memory keeps mirroring the file.
func (s *JSONFile) commit(next []types.Student) error {
	prev := s.students
	s.students = next
	if err := s.persist(); err != nil {
		s.students = prev
		return err
	}
	return nil
}

func (s *JSONFile) indexOf(id int64) int {
	return slices.IndexFunc(s.students, func(st types.Student) bool {
		return st.ID == id
	})
}

func (s *JSONFile) nextID() int64 {
	var maxID int64
	for _, st := range s.students {
		maxID = max(maxID, st.ID)
	}
	return maxID + 1
}

func (s *JSONFile) CreateStudent(in types.NewStudent) (types.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.ContainsFunc(s.students, func(st types.Student) bool {
		return st.RollNumber == in.RollNumber
	}) {
		return types.Student{}, storage.ErrRollNumberExists
	}

	st := in.Student()
	st.ID = s.nextID()
	st.CreatedAt = s.now()

	next := append(slices.Clip(s.students), st)
	if err := s.commit(next); err != nil {
		return types.Student{}, fmt.Errorf("CreateStudent: %w", err)
	}

	return st, nil
}

func (s *JSONFile) GetStudentByID(id int64) (types.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return types.Student{}, storage.ErrNotFound
	}
	return s.students[i], nil
}

func (s *JSONFile) GetStudents(f types.Filter) ([]types.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]types.Student, 0, len(s.students))
	for _, st := range s.students {
		if f.Match(st) {
			out = append(out, st)
		}
	}
	return out, nil
}

func (s *JSONFile) UpdateStudentByID(id int64, p types.StudentPatch) (types.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return types.Student{}, storage.ErrNotFound
	}

	// Apply never touches ID or CreatedAt.
	updated := p.Apply(s.students[i])

	next := slices.Clone(s.students)
	next[i] = updated
	if err := s.commit(next); err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudentByID: %w", err)
	}

	return updated, nil
}

func (s *JSONFile) DeleteStudentByID(id int64) (types.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return types.Student{}, storage.ErrNotFound
	}

	removed := s.students[i]
	next := slices.Delete(slices.Clone(s.students), i, i+1)
	if err := s.commit(next); err != nil {
		return types.Student{}, fmt.Errorf("DeleteStudentByID: %w", err)
	}

	return removed, nil
}

// Close is a no-op: every mutation is already on disk.
func (s *JSONFile) Close() error {
	return nil
}
