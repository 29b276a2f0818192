package student

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aanand-mishra/student-records/internal/storage/jsonfile"
	"github.com/aanand-mishra/student-records/internal/types"
)

// envelope mirrors response.Response with a typed payload.
type envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Message string `json:"message"`
	Count   *int   `json:"count"`
}

func newMux(t *testing.T) *http.ServeMux {
	t.Helper()
	store, err := jsonfile.Open(filepath.Join(t.TempDir(), "students.json"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/students", New(store))
	mux.HandleFunc("GET /api/students", GetList(store))
	mux.HandleFunc("GET /api/students/{id}", GetByID(store))
	mux.HandleFunc("PUT /api/students/{id}", Update(store))
	mux.HandleFunc("DELETE /api/students/{id}", Delete(store))
	return mux
}

func do[T any](t *testing.T, h http.Handler, method, target, body string) (int, envelope[T]) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope[T]
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("%s %s: decode response: %v", method, target, err)
	}
	return rec.Code, env
}

func TestCreate(t *testing.T) {
	mux := newMux(t)

	code, env := do[types.Student](t, mux, http.MethodPost, "/api/students",
		`{"name":"Bilal","rollNumber":"ST003","age":"21","grade":"B","email":"b@example.com","course":"Physics"}`)

	if code != http.StatusCreated {
		t.Fatalf("status = %d, message %q", code, env.Message)
	}
	if !env.Success || env.Message != MsgCreated {
		t.Errorf("unexpected envelope: %+v", env)
	}
	if env.Data.ID != 3 || env.Data.Age != 21 || env.Data.Phone != types.DefaultPhone {
		t.Errorf("unexpected record: %+v", env.Data)
	}
	if env.Data.CreatedAt.IsZero() {
		t.Error("createdAt not set")
	}
}

func TestCreateRejects(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantMessage string
	}{
		{
			name:        "empty body",
			body:        ``,
			wantMessage: "request body is empty",
		},
		{
			name:        "malformed json",
			body:        `{"name":`,
			wantMessage: "unexpected EOF",
		},
		{
			name:        "missing fields",
			body:        `{"name":"X","age":20,"grade":"B","email":"x@x.com"}`,
			wantMessage: "field rollNumber is required, field course is required",
		},
		{
			name:        "zero age",
			body:        `{"name":"X","rollNumber":"R1","age":0,"grade":"B","email":"x@x.com","course":"CS"}`,
			wantMessage: "field age is required",
		},
		{
			name:        "age float past int64",
			body:        `{"name":"X","rollNumber":"R1","age":1e30,"grade":"B","email":"x@x.com","course":"CS"}`,
			wantMessage: "out of range",
		},
		{
			name:        "age string past int64",
			body:        `{"name":"X","rollNumber":"R1","age":"9223372036854775808","grade":"B","email":"x@x.com","course":"CS"}`,
			wantMessage: "out of range",
		},
		{
			name:        "duplicate roll number",
			body:        `{"name":"X","rollNumber":"ST001","age":20,"grade":"B","email":"x@x.com","course":"CS"}`,
			wantMessage: MsgRollNumberExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := newMux(t)

			code, env := do[json.RawMessage](t, mux, http.MethodPost, "/api/students", tt.body)
			if code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", code)
			}
			if env.Success || !strings.Contains(env.Message, tt.wantMessage) {
				t.Errorf("got %+v, want message containing %q", env, tt.wantMessage)
			}

			_, list := do[[]types.Student](t, mux, http.MethodGet, "/api/students", "")
			if len(list.Data) != 2 {
				t.Errorf("rejected create changed the collection: %d records", len(list.Data))
			}
		})
	}
}

func TestGetByID(t *testing.T) {
	mux := newMux(t)

	code, env := do[types.Student](t, mux, http.MethodGet, "/api/students/2", "")
	if code != http.StatusOK || env.Data.Name != "Sara Khan" {
		t.Errorf("got %d %+v", code, env)
	}

	for _, target := range []string{"/api/students/99", "/api/students/abc", "/api/students/1abc"} {
		code, env := do[json.RawMessage](t, mux, http.MethodGet, target, "")
		if code != http.StatusNotFound || env.Success || env.Message != MsgNotFound {
			t.Errorf("%s: got %d %+v", target, code, env)
		}
	}
}

func TestGetListFilters(t *testing.T) {
	mux := newMux(t)

	tests := []struct {
		query string
		want  []int64
	}{
		{"", []int64{1, 2}},
		{"?grade=A", []int64{1}},
		{"?grade=A%2B", []int64{2}},
		{"?search=ali", []int64{1}},
		{"?search=ST00", []int64{1, 2}},
		{"?course=software", []int64{2}},
		{"?search=ali&grade=A%2B", []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			code, env := do[[]types.Student](t, mux, http.MethodGet, "/api/students"+tt.query, "")
			if code != http.StatusOK || !env.Success {
				t.Fatalf("got %d %+v", code, env)
			}
			if env.Count == nil || *env.Count != len(tt.want) {
				t.Fatalf("count = %v, want %d", env.Count, len(tt.want))
			}
			if env.Data == nil {
				t.Fatal("data must be an array, got null")
			}
			for i, st := range env.Data {
				if st.ID != tt.want[i] {
					t.Errorf("ids differ at %d: got %d, want %d", i, st.ID, tt.want[i])
				}
			}
		})
	}
}

func TestUpdate(t *testing.T) {
	mux := newMux(t)

	code, env := do[types.Student](t, mux, http.MethodPut, "/api/students/1",
		`{"id": 500, "name": "Ali Raza", "age": 25, "extra": "ignored"}`)
	if code != http.StatusOK || env.Message != MsgUpdated {
		t.Fatalf("got %d %+v", code, env)
	}
	if env.Data.ID != 1 || env.Data.Name != "Ali Raza" || env.Data.Age != 25 || env.Data.RollNumber != "ST001" {
		t.Errorf("unexpected merged record: %+v", env.Data)
	}

	if code, _ := do[json.RawMessage](t, mux, http.MethodGet, "/api/students/500", ""); code != http.StatusNotFound {
		t.Errorf("record must not be reachable under the id sent in the body")
	}

	code, _ = do[json.RawMessage](t, mux, http.MethodPut, "/api/students/77", `{"name":"X"}`)
	if code != http.StatusNotFound {
		t.Errorf("update of unknown id: status %d", code)
	}

	code, _ = do[json.RawMessage](t, mux, http.MethodPut, "/api/students/1", ``)
	if code != http.StatusBadRequest {
		t.Errorf("update with empty body: status %d", code)
	}
}

func TestDeleteTwice(t *testing.T) {
	mux := newMux(t)

	code, env := do[types.Student](t, mux, http.MethodDelete, "/api/students/1", "")
	if code != http.StatusOK || env.Message != MsgDeleted || env.Data.RollNumber != "ST001" {
		t.Fatalf("first delete: %d %+v", code, env)
	}

	code, _ = do[json.RawMessage](t, mux, http.MethodDelete, "/api/students/1", "")
	if code != http.StatusNotFound {
		t.Errorf("second delete: status %d, want 404", code)
	}

	_, list := do[[]types.Student](t, mux, http.MethodGet, "/api/students", "")
	if len(list.Data) != 1 || list.Data[0].ID != 2 {
		t.Errorf("expected only id 2 left, got %+v", list.Data)
	}
}
