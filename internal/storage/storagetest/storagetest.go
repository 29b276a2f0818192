// Package storagetest is a behaviour suite every storage.Storage
// implementation must pass. Driver packages call Run from their tests.
package storagetest

import (
	"errors"
	"testing"
	"time"

	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"
)

// Factory returns a freshly opened store holding only the sample records.
// Each call must be isolated from the others.
type Factory func(t *testing.T) storage.Storage

// Run executes the suite against stores produced by newStore.
func Run(t *testing.T, newStore Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s storage.Storage)
	}{
		{"SeedsSampleRecords", testSeedsSampleRecords},
		{"CreateOnEmptyStore", testCreateOnEmptyStore},
		{"CreateAssignsIncreasingIDs", testCreateAssignsIncreasingIDs},
		{"CreateRejectsDuplicateRollNumber", testCreateRejectsDuplicateRollNumber},
		{"GetByID", testGetByID},
		{"FilterStudents", testFilterStudents},
		{"UpdateMergesAndKeepsIdentity", testUpdateMergesAndKeepsIdentity},
		{"UpdateMissing", testUpdateMissing},
		{"DeleteTwice", testDeleteTwice},
		{"DeleteThenList", testDeleteThenList},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t)
			t.Cleanup(func() { s.Close() })
			tt.fn(t, s)
		})
	}
}

func newStudent(roll string) types.NewStudent {
	return types.NewStudent{
		Name:       "Student " + roll,
		RollNumber: roll,
		Age:        19,
		Grade:      "B",
		Email:      roll + "@example.com",
		Course:     "Mathematics",
	}
}

func mustList(t *testing.T, s storage.Storage, f types.Filter) []types.Student {
	t.Helper()
	students, err := s.GetStudents(f)
	if err != nil {
		t.Fatalf("GetStudents(%+v): %v", f, err)
	}
	if students == nil {
		t.Fatalf("GetStudents(%+v) returned nil slice", f)
	}
	return students
}

func ids(students []types.Student) []int64 {
	out := make([]int64, 0, len(students))
	for _, st := range students {
		out = append(out, st.ID)
	}
	return out
}

func emptyStore(t *testing.T, s storage.Storage) {
	t.Helper()
	for _, st := range mustList(t, s, types.Filter{}) {
		if _, err := s.DeleteStudentByID(st.ID); err != nil {
			t.Fatalf("delete %d: %v", st.ID, err)
		}
	}
}

func testSeedsSampleRecords(t *testing.T, s storage.Storage) {
	students := mustList(t, s, types.Filter{})
	if len(students) != 2 {
		t.Fatalf("expected 2 sample records, got %d", len(students))
	}
	if students[0].ID != 1 || students[0].RollNumber != "ST001" || students[0].Name != "Ali Ahmed" {
		t.Errorf("unexpected first sample: %+v", students[0])
	}
	if students[1].ID != 2 || students[1].Grade != "A+" {
		t.Errorf("unexpected second sample: %+v", students[1])
	}
	if students[0].CreatedAt.IsZero() {
		t.Error("sample createdAt not set")
	}
}

func testCreateOnEmptyStore(t *testing.T, s storage.Storage) {
	emptyStore(t, s)

	before := time.Now().Add(-time.Second)
	created, err := s.CreateStudent(types.NewStudent{
		Name: "X", RollNumber: "R1", Age: 20, Grade: "B", Email: "x@x.com", Course: "CS",
	})
	if err != nil {
		t.Fatalf("CreateStudent: %v", err)
	}

	if created.ID != 1 {
		t.Errorf("id = %d, want 1", created.ID)
	}
	if created.CreatedAt.Before(before) || created.CreatedAt.After(time.Now().Add(time.Second)) {
		t.Errorf("createdAt not stamped with the current time: %v", created.CreatedAt)
	}
	if created.Phone != types.DefaultPhone {
		t.Errorf("phone = %q, want %q", created.Phone, types.DefaultPhone)
	}

	stored, err := s.GetStudentByID(1)
	if err != nil {
		t.Fatalf("GetStudentByID: %v", err)
	}
	if stored.Name != "X" || stored.Age != 20 || !stored.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("stored record differs from created one: %+v vs %+v", stored, created)
	}
}

func testCreateAssignsIncreasingIDs(t *testing.T, s storage.Storage) {
	for _, roll := range []string{"R1", "R2", "R3"} {
		present := ids(mustList(t, s, types.Filter{}))

		created, err := s.CreateStudent(newStudent(roll))
		if err != nil {
			t.Fatalf("CreateStudent(%s): %v", roll, err)
		}
		for _, id := range present {
			if created.ID <= id {
				t.Errorf("new id %d not greater than existing id %d", created.ID, id)
			}
		}
	}

	// Removing a middle record must not cause its id to be reused.
	if _, err := s.DeleteStudentByID(3); err != nil {
		t.Fatalf("DeleteStudentByID: %v", err)
	}
	created, err := s.CreateStudent(newStudent("R4"))
	if err != nil {
		t.Fatalf("CreateStudent: %v", err)
	}
	if created.ID != 6 {
		t.Errorf("id = %d, want 6", created.ID)
	}
}

func testCreateRejectsDuplicateRollNumber(t *testing.T, s storage.Storage) {
	before := mustList(t, s, types.Filter{})

	dup := newStudent("ST001")
	_, err := s.CreateStudent(dup)
	if !errors.Is(err, storage.ErrRollNumberExists) {
		t.Fatalf("expected ErrRollNumberExists, got %v", err)
	}

	after := mustList(t, s, types.Filter{})
	if len(after) != len(before) {
		t.Errorf("collection changed after conflict: %d → %d records", len(before), len(after))
	}
}

func testGetByID(t *testing.T, s storage.Storage) {
	st, err := s.GetStudentByID(2)
	if err != nil {
		t.Fatalf("GetStudentByID(2): %v", err)
	}
	if st.Name != "Sara Khan" {
		t.Errorf("got %q", st.Name)
	}

	if _, err := s.GetStudentByID(42); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func testFilterStudents(t *testing.T, s storage.Storage) {
	if _, err := s.CreateStudent(types.NewStudent{
		Name: "Bilal Ali", RollNumber: "CS-100", Age: 21, Grade: "A", Email: "b@example.com", Course: "Data Science",
	}); err != nil {
		t.Fatalf("CreateStudent: %v", err)
	}
	if _, err := s.CreateStudent(types.NewStudent{
		Name: "ÖMER Çelik", RollNumber: "TR-7", Age: 23, Grade: "B", Email: "o@example.com", Course: "ÉCONOMIE",
	}); err != nil {
		t.Fatalf("CreateStudent: %v", err)
	}

	tests := []struct {
		name   string
		filter types.Filter
		want   []int64
	}{
		{"no filter", types.Filter{}, []int64{1, 2, 3, 4}},
		{"grade exact", types.Filter{Grade: "A"}, []int64{1, 3}},
		{"grade plus", types.Filter{Grade: "A+"}, []int64{2}},
		{"search name lower-case", types.Filter{Search: "ali"}, []int64{1, 3}},
		{"search roll number", types.Filter{Search: "cs-1"}, []int64{3}},
		{"course substring", types.Filter{Course: "science"}, []int64{1, 3}},
		{"combined", types.Filter{Search: "ali", Course: "computer", Grade: "A"}, []int64{1}},
		{"search non-ascii lower-case", types.Filter{Search: "ömer"}, []int64{4}},
		{"search non-ascii upper-case", types.Filter{Search: "ÇELIK"}, []int64{4}},
		{"course non-ascii", types.Filter{Course: "économie"}, []int64{4}},
		{"no match", types.Filter{Search: "nobody"}, []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(mustList(t, s, tt.filter))
			if len(got) != len(tt.want) {
				t.Fatalf("got ids %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got ids %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func testUpdateMergesAndKeepsIdentity(t *testing.T, s storage.Storage) {
	orig, err := s.GetStudentByID(1)
	if err != nil {
		t.Fatalf("GetStudentByID: %v", err)
	}

	name := "Ali Raza"
	age := types.FlexInt(23)
	// A roll number taken by another record is accepted on update.
	roll := "ST002"
	updated, err := s.UpdateStudentByID(1, types.StudentPatch{Name: &name, Age: &age, RollNumber: &roll})
	if err != nil {
		t.Fatalf("UpdateStudentByID: %v", err)
	}

	if updated.ID != 1 {
		t.Errorf("id changed to %d", updated.ID)
	}
	if !updated.CreatedAt.Equal(orig.CreatedAt) {
		t.Errorf("createdAt changed: %v → %v", orig.CreatedAt, updated.CreatedAt)
	}
	if updated.Name != name || updated.Age != 23 || updated.RollNumber != roll {
		t.Errorf("patch not applied: %+v", updated)
	}
	if updated.Email != orig.Email || updated.Course != orig.Course || updated.Grade != orig.Grade {
		t.Errorf("unpatched fields changed: %+v", updated)
	}

	stored, err := s.GetStudentByID(1)
	if err != nil {
		t.Fatalf("GetStudentByID: %v", err)
	}
	if stored.Name != name {
		t.Errorf("update not persisted in store: %+v", stored)
	}
}

func testUpdateMissing(t *testing.T, s storage.Storage) {
	name := "Ghost"
	if _, err := s.UpdateStudentByID(99, types.StudentPatch{Name: &name}); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func testDeleteTwice(t *testing.T, s storage.Storage) {
	removed, err := s.DeleteStudentByID(1)
	if err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if removed.ID != 1 || removed.RollNumber != "ST001" {
		t.Errorf("delete returned %+v", removed)
	}

	if _, err := s.DeleteStudentByID(1); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
}

func testDeleteThenList(t *testing.T, s storage.Storage) {
	if _, err := s.DeleteStudentByID(1); err != nil {
		t.Fatalf("DeleteStudentByID: %v", err)
	}

	students := mustList(t, s, types.Filter{})
	if len(students) != 1 || students[0].ID != 2 {
		t.Fatalf("expected only id 2, got %v", ids(students))
	}

	if stats := types.NewStatistics(students); stats.TotalStudents != 1 {
		t.Errorf("TotalStudents = %d, want 1", stats.TotalStudents)
	}
}
