// Package student contains all HTTP handlers related to the Student resource.
//
// Every handler is built by a factory that receives its dependencies and
// returns the func(http.ResponseWriter, *http.Request) the router needs:
//
//	router.HandleFunc("POST /api/students", student.New(store))
//
// New(store) runs once at startup; the returned closure runs on every
// request and reaches store through the closure.
package student

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"
	"github.com/aanand-mishra/student-records/internal/utils/response"
)

// Messages shown to API clients.
const (
	MsgCreated = "Student added successfully"
	MsgUpdated = "Student updated successfully"
	MsgDeleted = "Student deleted successfully"

	MsgNotFound         = "Student not found"
	MsgRollNumberExists = "Roll number already exists"
)

// validate is shared by all requests; a *validator.Validate caches struct
// metadata and is safe for concurrent use.
var validate = newValidator()

// newValidator reports fields by their JSON name ("rollNumber"), which is
// what API clients send.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeJSON reads the request body into v.
func decodeJSON(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		// io.EOF means the body was completely empty; nothing to decode.
		return errors.New("request body is empty")
	}
	return err
}

// parseID extracts {id} from the path. A value that is not an integer can
// never match a record, so it is reported as not found.
func parseID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil
}

// writeStoreError maps storage errors to statuses:
// ErrNotFound → 404, ErrRollNumberExists → 400, anything else → 500.
func writeStoreError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		response.WriteJSON(w, http.StatusNotFound, response.Error(MsgNotFound))
	case errors.Is(err, storage.ErrRollNumberExists):
		response.WriteJSON(w, http.StatusBadRequest, response.Error(MsgRollNumberExists))
	default:
		slog.Error("storage failure",
			slog.String("op", op),
			slog.String("error", err.Error()))
		response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /api/students
//
// Request body (JSON), phone optional, age may be a number or a string:
//
//	{ "name": "Ali", "rollNumber": "ST003", "age": "20", "grade": "A",
//	  "email": "ali@example.com", "course": "Computer Science" }
//
// Responses:
//
//	201 Created: { success, message, data: <student> }
//	400 Bad Request: empty/malformed body, missing field, duplicate roll number
//	500 Internal: persist failure
//
// ─────────────────────────────────────────────────────────────────────────────
func New(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a student")

		// ── Step 1: Decode JSON body ──────────────────────────────────
		var in types.NewStudent
		if err := decodeJSON(r, &in); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		// ── Step 2: Validate required fields ──────────────────────────
		if err := validate.Struct(in); err != nil {
			var validateErrs validator.ValidationErrors
			if errors.As(err, &validateErrs) {
				response.WriteJSON(w, http.StatusBadRequest,
					response.ValidationError(validateErrs))
				return
			}
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		// ── Step 3: Store (assigns id + createdAt, persists) ──────────
		created, err := store.CreateStudent(in)
		if err != nil {
			writeStoreError(w, "create", err)
			return
		}

		slog.Info("student created",
			slog.Int64("id", created.ID),
			slog.String("rollNumber", created.RollNumber))

		response.WriteJSON(w, http.StatusCreated, response.OKWithMessage(MsgCreated, created))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetByID handles GET /api/students/{id}
//
//	200 OK: { success, data: <student> }
//	404 Not Found: unknown or non-integer id
//
// ─────────────────────────────────────────────────────────────────────────────
func GetByID(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting a student", slog.String("id", r.PathValue("id")))

		id, ok := parseID(r)
		if !ok {
			writeStoreError(w, "get", storage.ErrNotFound)
			return
		}

		student, err := store.GetStudentByID(id)
		if err != nil {
			writeStoreError(w, "get", err)
			return
		}

		response.WriteJSON(w, http.StatusOK, response.OK(student))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetList handles GET /api/students?search=&course=&grade=
//
//	search: case-insensitive substring of name OR roll number
//	course: case-insensitive substring of course
//	grade: exact match ("A" does not match "A+")
//
// Returns { success, data: [...], count }; data is [] (not null) when
// nothing matches. No pagination.
// ─────────────────────────────────────────────────────────────────────────────
func GetList(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := types.FilterFromQuery(r.URL.Query())
		slog.Info("getting students",
			slog.String("search", filter.Search),
			slog.String("course", filter.Course),
			slog.String("grade", filter.Grade))

		students, err := store.GetStudents(filter)
		if err != nil {
			writeStoreError(w, "list", err)
			return
		}

		response.WriteJSON(w, http.StatusOK, response.List(students))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PUT /api/students/{id}
//
// Fields present in the body replace the stored ones; absent fields are
// kept. An id (or createdAt) in the body is ignored. No validation beyond
// the merge, and the roll number is not re-checked for uniqueness.
//
//	200 OK: { success, message, data: <merged student> }
//	400 Bad Request: empty or malformed body
//	404 Not Found: unknown id
//
// ─────────────────────────────────────────────────────────────────────────────
func Update(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("updating a student", slog.String("id", r.PathValue("id")))

		id, ok := parseID(r)
		if !ok {
			writeStoreError(w, "update", storage.ErrNotFound)
			return
		}

		var patch types.StudentPatch
		if err := decodeJSON(r, &patch); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		updated, err := store.UpdateStudentByID(id, patch)
		if err != nil {
			writeStoreError(w, "update", err)
			return
		}

		slog.Info("student updated", slog.Int64("id", id))
		response.WriteJSON(w, http.StatusOK, response.OKWithMessage(MsgUpdated, updated))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete handles DELETE /api/students/{id}
//
//	200 OK: { success, message, data: <removed student> }
//	404 Not Found: unknown id
//
// ─────────────────────────────────────────────────────────────────────────────
func Delete(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("deleting a student", slog.String("id", r.PathValue("id")))

		id, ok := parseID(r)
		if !ok {
			writeStoreError(w, "delete", storage.ErrNotFound)
			return
		}

		removed, err := store.DeleteStudentByID(id)
		if err != nil {
			writeStoreError(w, "delete", err)
			return
		}

		slog.Info("student deleted", slog.Int64("id", id))
		response.WriteJSON(w, http.StatusOK, response.OKWithMessage(MsgDeleted, removed))
	}
}
