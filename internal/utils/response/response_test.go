package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
)

func encode(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestEnvelopeShapes(t *testing.T) {
	tests := []struct {
		name string
		resp Response
		want string
	}{
		{"ok", OK(map[string]int{"id": 1}), `{"success":true,"data":{"id":1}}`},
		{"ok with message", OKWithMessage("done", 1), `{"success":true,"data":1,"message":"done"}`},
		{"empty list keeps data and count", List([]string(nil)), `{"success":true,"data":[],"count":0}`},
		{"list", List([]string{"a", "b"}), `{"success":true,"data":["a","b"],"count":2}`},
		{"error", GeneralError(errors.New("student not found")), `{"success":false,"message":"student not found"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := encode(t, tt.resp); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	if err := WriteJSON(rec, http.StatusCreated, OK("x")); err != nil {
		t.Fatal(err)
	}

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestValidationError(t *testing.T) {
	type payload struct {
		Name  string `validate:"required"`
		Email string `validate:"required,email"`
		Age   int    `validate:"gte=0"`
	}

	err := validator.New().Struct(payload{Email: "nope", Age: -1})
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected ValidationErrors, got %v", err)
	}

	got := ValidationError(verrs)
	want := "field Name is required, field Email is invalid, field Age is invalid"
	if got.Success || got.Message != want {
		t.Errorf("got %+v, want message %q", got, want)
	}
}
