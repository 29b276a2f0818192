package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/aanand-mishra/student-records/internal/utils/response"
)

// Recover turns a panic in a handler into a 500 envelope.
func Recover(log *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				log.Error("panic recovered",
					slog.String("request_id", RequestIDFrom(r.Context())),
					slog.Any("panic", rec),
					slog.String("stack", string(debug.Stack())),
				)
				response.WriteJSON(w, http.StatusInternalServerError,
					response.Error("internal server error"))
			}()

			next.ServeHTTP(w, r)
		})
	}
}
