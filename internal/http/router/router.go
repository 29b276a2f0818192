// Package router assembles the HTTP handler: API routes, the metrics
// endpoint, the browser client fallback and the middleware chain.
package router

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/student-records/internal/config"
	"github.com/aanand-mishra/student-records/internal/http/handlers/statistics"
	"github.com/aanand-mishra/student-records/internal/http/handlers/student"
	"github.com/aanand-mishra/student-records/internal/http/middleware"
	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/web"
)

// Options tunes the middleware. The zero value disables rate limiting and
// allows any origin.
type Options struct {
	AllowedOrigins []string
	RateLimit      float64
	RateBurst      int
	// Assets overrides the embedded browser client (tests).
	Assets fs.FS
}

// OptionsFromConfig maps the config file onto Options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		RateLimit:      cfg.HTTPServer.RateLimit,
		RateBurst:      cfg.HTTPServer.RateBurst,
	}
}

// New returns the fully wrapped handler.
//
// Route table:
//
//	POST   /api/students        → create a new student
//	GET    /api/students        → list / filter students
//	GET    /api/students/{id}   → get one student by ID
//	PUT    /api/students/{id}   → update a student
//	DELETE /api/students/{id}   → delete a student
//	GET    /api/statistics      → aggregate counts
//	GET    /metrics             → Prometheus metrics
//	GET    /                    → browser client; unmatched paths get index.html
func New(store storage.Storage, log *slog.Logger, opts Options) http.Handler {
	assets := opts.Assets
	if assets == nil {
		assets = web.Assets()
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	metrics := middleware.NewMetrics()

	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/students", student.New(store))
	mux.HandleFunc("GET /api/students", student.GetList(store))
	mux.HandleFunc("GET /api/students/{id}", student.GetByID(store))
	mux.HandleFunc("PUT /api/students/{id}", student.Update(store))
	mux.HandleFunc("DELETE /api/students/{id}", student.Delete(store))
	mux.HandleFunc("GET /api/statistics", statistics.Get(store))

	mux.Handle("GET /metrics", metrics.Handler())
	mux.Handle("GET /", web.Handler(assets))

	// Outermost first. Metrics stays innermost so it sees the r.Pattern
	// the mux sets.
	return middleware.Chain(mux,
		middleware.RequestID,
		middleware.Logger(log),
		middleware.Recover(log),
		middleware.CORS(origins),
		middleware.RateLimit(opts.RateLimit, opts.RateBurst),
		metrics.Middleware,
	)
}
