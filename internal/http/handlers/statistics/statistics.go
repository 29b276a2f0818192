// Package statistics serves the aggregate view of the student records.
package statistics

import (
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"
	"github.com/aanand-mishra/student-records/internal/utils/response"
)

// Get handles GET /api/statistics. Nothing is cached: every call reads
// the whole collection and aggregates it.
//
//	{ "success": true, "data": { "totalStudents": 2, "totalCourses": 2,
//	                             "gradeDistribution": { "A": 1, "A+": 1 } } }
func Get(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("computing statistics")

		students, err := store.GetStudents(types.Filter{})
		if err != nil {
			slog.Error("error reading students", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		response.WriteJSON(w, http.StatusOK, response.OK(types.NewStatistics(students)))
	}
}
