package middleware

import (
	"net/http"

	"golang.org/x/time/rate"

	"github.com/aanand-mishra/student-records/internal/utils/response"
)

// RateLimit shares one token bucket across all clients: perSecond tokens
// are added every second, up to burst. perSecond <= 0 disables limiting.
func RateLimit(perSecond float64, burst int) Middleware {
	if perSecond <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	limiter := rate.NewLimiter(rate.Limit(perSecond), max(burst, 1))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				w.Header().Set("Retry-After", "1")
				response.WriteJSON(w, http.StatusTooManyRequests,
					response.Error("too many requests, please try again later"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
