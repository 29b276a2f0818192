// Package storage defines the Storage interface, the contract every
// record store must satisfy to work with this application.
//
// Handlers depend only on this interface. Two implementations exist:
//
//   - jsonfile: the collection lives in memory and is mirrored to a single
//     JSON document after every mutation (the default).
//   - sqlite:   the same contract on top of a SQLite database.
//
// Tests create isolated instances of either in a temp directory.
package storage

import (
	"errors"

	"github.com/aanand-mishra/student-records/internal/types"
)

// Errors every implementation returns for the corresponding condition.
// Handlers classify them with errors.Is.
var (
	ErrNotFound         = errors.New("student not found")
	ErrRollNumberExists = errors.New("roll number already exists")
)

// Sample is the pair of records a brand-new store starts with.
var Sample = []types.NewStudent{
	{
		Name:       "Ali Ahmed",
		RollNumber: "ST001",
		Age:        20,
		Grade:      "A",
		Email:      "ali.ahmed@example.com",
		Phone:      "0300-1234567",
		Course:     "Computer Science",
	},
	{
		Name:       "Sara Khan",
		RollNumber: "ST002",
		Age:        22,
		Grade:      "A+",
		Email:      "sara.khan@example.com",
		Phone:      "0312-7654321",
		Course:     "Software Engineering",
	},
}

// Storage is the record store contract.
type Storage interface {
	// CreateStudent assigns the next id (max existing + 1, or 1 when the
	// store is empty) and the creation time, appends and persists.
	// Returns ErrRollNumberExists without touching the collection when
	// the roll number is taken.
	CreateStudent(in types.NewStudent) (types.Student, error)

	// GetStudentByID returns ErrNotFound if no record has this id.
	GetStudentByID(id int64) (types.Student, error)

	// GetStudents returns the records matching f in insertion order.
	// Returns an empty slice (not nil) when nothing matches.
	GetStudents(f types.Filter) ([]types.Student, error)

	// UpdateStudentByID merges p over the stored record and persists.
	// The id and creation time are never changed.
	UpdateStudentByID(id int64, p types.StudentPatch) (types.Student, error)

	// DeleteStudentByID removes the record, persists, and returns what
	// was removed.
	DeleteStudentByID(id int64) (types.Student, error)

	Close() error
}
