// Package response provides helpers for writing consistent JSON HTTP responses.
//
// Every API response, success or failure, uses the same envelope:
//
//	{ "success": true,  "data": {...}, "message": "...", "count": 2 }
//	{ "success": false, "message": "Student not found" }
//
// data, message and count are omitted when not set.
package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Response is the envelope shared by every endpoint and by the API client.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	// Count is a pointer so a list with zero matches still reports 0.
	Count *int `json:"count,omitempty"`
}

// ─────────────────────────────────────────────────────────────────────────────
// WriteJSON writes a JSON-encoded response with the given HTTP status code.
//
// IMPORTANT ORDER: Header() → WriteHeader() → body writes.
// Once WriteHeader is called (or the first Write), headers are locked.
// ─────────────────────────────────────────────────────────────────────────────
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// OK wraps a single payload.
func OK(data any) Response {
	return Response{Success: true, Data: data}
}

// OKWithMessage wraps a payload together with a confirmation message,
// e.g. "Student added successfully".
func OKWithMessage(message string, data any) Response {
	return Response{Success: true, Data: data, Message: message}
}

// List wraps a collection and reports its length in count.
func List[T any](items []T) Response {
	n := len(items)
	if items == nil {
		items = []T{}
	}
	return Response{Success: true, Data: items, Count: &n}
}

// Error is a failure envelope with a human-readable message.
func Error(message string) Response {
	return Response{Success: false, Message: message}
}

// GeneralError wraps any Go error into a failure envelope.
//
//	response.WriteJSON(w, http.StatusInternalServerError,
//	    response.GeneralError(err))
func GeneralError(err error) Response {
	return Error(err.Error())
}

// ─────────────────────────────────────────────────────────────────────────────
// ValidationError converts the validator's per-field failures into a single
// failure envelope:
//
//	{ "success": false, "message": "field name is required, field age is required" }
//
// Field names are the JSON names when the validator was set up with
// RegisterTagNameFunc (see the student handlers).
// ─────────────────────────────────────────────────────────────────────────────
func ValidationError(errs validator.ValidationErrors) Response {
	var errMessages []string

	for _, e := range errs {
		switch e.ActualTag() {
		case "required":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is required", e.Field()))
		default:
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is invalid", e.Field()))
		}
	}

	return Error(strings.Join(errMessages, ", "))
}
