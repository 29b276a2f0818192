// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles;
// handlers, storage, the API client and utils can all import types
// without depending on each other.
package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DefaultPhone is stored when a student is created without a phone number.
const DefaultPhone = "N/A"

// Student represents a student record in our system.
//
// Struct tags serve two purposes:
//
//  1. json:"..." gives the wire and on-disk field names (camelCase, matching
//     what the browser client reads).
//  2. db:"..." gives the column names used by sqlx in the sqlite driver.
type Student struct {
	ID         int64     `json:"id"         db:"id"`
	Name       string    `json:"name"       db:"name"`
	RollNumber string    `json:"rollNumber" db:"roll_number"`
	Age        int       `json:"age"        db:"age"`
	Grade      string    `json:"grade"      db:"grade"`
	Email      string    `json:"email"      db:"email"`
	Phone      string    `json:"phone"      db:"phone"`
	Course     string    `json:"course"     db:"course"`
	CreatedAt  time.Time `json:"createdAt"  db:"created_at"`
}

// NewStudent is the payload accepted by the create operation.
//
// validate:"required" means the field must be non-zero / non-empty, so an
// age of 0 is rejected the same way a missing age is. Phone is optional.
type NewStudent struct {
	Name       string  `json:"name"       validate:"required"`
	RollNumber string  `json:"rollNumber" validate:"required"`
	Age        FlexInt `json:"age"        validate:"required"`
	Grade      string  `json:"grade"      validate:"required"`
	Email      string  `json:"email"      validate:"required"`
	Phone      string  `json:"phone"`
	Course     string  `json:"course"     validate:"required"`
}

// Student builds the record a store appends for this payload.
// The store is responsible for ID and CreatedAt.
func (n NewStudent) Student() Student {
	phone := n.Phone
	if phone == "" {
		phone = DefaultPhone
	}

	return Student{
		Name:       n.Name,
		RollNumber: n.RollNumber,
		Age:        int(n.Age),
		Grade:      n.Grade,
		Email:      n.Email,
		Phone:      phone,
		Course:     n.Course,
	}
}

// StudentPatch is the payload accepted by the update operation.
//
// A nil field means "keep the stored value". There is deliberately no ID
// or CreatedAt field: an id (or timestamp) sent by the client is dropped
// by the decoder and the stored value survives the merge.
type StudentPatch struct {
	Name       *string  `json:"name,omitempty"`
	RollNumber *string  `json:"rollNumber,omitempty"`
	Age        *FlexInt `json:"age,omitempty"`
	Grade      *string  `json:"grade,omitempty"`
	Email      *string  `json:"email,omitempty"`
	Phone      *string  `json:"phone,omitempty"`
	Course     *string  `json:"course,omitempty"`
}

// Apply merges the patch over s and returns the result. s is not modified.
func (p StudentPatch) Apply(s Student) Student {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.RollNumber != nil {
		s.RollNumber = *p.RollNumber
	}
	if p.Age != nil {
		s.Age = int(*p.Age)
	}
	if p.Grade != nil {
		s.Grade = *p.Grade
	}
	if p.Email != nil {
		s.Email = *p.Email
	}
	if p.Phone != nil {
		s.Phone = *p.Phone
	}
	if p.Course != nil {
		s.Course = *p.Course
	}

	return s
}

// FlexInt is an integer that also decodes from a numeric JSON string.
//
// HTML form inputs always produce strings, so the browser client sends
// "age": "20" on create. Fractional numbers are truncated toward zero,
// "" and null decode to 0.
type FlexInt int

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}

	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			*f = 0
			return nil
		}
	}

	n, err := strconv.ParseInt(raw, 10, strconv.IntSize)
	if err == nil {
		*f = FlexInt(n)
		return nil
	}
	if errors.Is(err, strconv.ErrRange) {
		return fmt.Errorf("integer value %s out of range", string(data))
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("invalid integer value %s", string(data))
	}

	// -MinInt is a power of two, so both bounds are exact as float64.
	v = math.Trunc(v)
	if v < float64(math.MinInt) || v >= -float64(math.MinInt) {
		return fmt.Errorf("integer value %s out of range", string(data))
	}
	*f = FlexInt(v)

	return nil
}
