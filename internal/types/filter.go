package types

import (
	"net/url"
	"strings"
)

// Filter narrows the student list. Empty fields are ignored and the
// remaining ones are combined with AND.
type Filter struct {
	// Search is matched case-insensitively as a substring of the name
	// OR the roll number.
	Search string
	// Course is matched case-insensitively as a substring of the course.
	Course string
	// Grade must equal the grade exactly: "A" does not match "A+".
	Grade string
}

// FilterFromQuery reads the search, course and grade query parameters.
func FilterFromQuery(q url.Values) Filter {
	return Filter{
		Search: q.Get("search"),
		Course: q.Get("course"),
		Grade:  q.Get("grade"),
	}
}

// Query is the inverse of FilterFromQuery; empty fields are omitted.
func (f Filter) Query() url.Values {
	q := url.Values{}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Course != "" {
		q.Set("course", f.Course)
	}
	if f.Grade != "" {
		q.Set("grade", f.Grade)
	}
	return q
}

// IsZero reports whether the filter matches every student.
func (f Filter) IsZero() bool {
	return f == Filter{}
}

// Match reports whether s passes every non-empty criterion.
func (f Filter) Match(s Student) bool {
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(s.Name), needle) &&
			!strings.Contains(strings.ToLower(s.RollNumber), needle) {
			return false
		}
	}

	if f.Course != "" &&
		!strings.Contains(strings.ToLower(s.Course), strings.ToLower(f.Course)) {
		return false
	}

	if f.Grade != "" && s.Grade != f.Grade {
		return false
	}

	return true
}
