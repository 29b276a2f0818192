package types

// Statistics is the aggregate view served by GET /api/statistics.
type Statistics struct {
	TotalStudents     int            `json:"totalStudents"`
	TotalCourses      int            `json:"totalCourses"`
	GradeDistribution map[string]int `json:"gradeDistribution"`
}

// NewStatistics aggregates students. Course strings are counted as
// distinct values exactly as stored (no case folding).
func NewStatistics(students []Student) Statistics {
	courses := make(map[string]struct{})
	grades := make(map[string]int)

	for _, s := range students {
		courses[s.Course] = struct{}{}
		grades[s.Grade]++
	}

	return Statistics{
		TotalStudents:     len(students),
		TotalCourses:      len(courses),
		GradeDistribution: grades,
	}
}
