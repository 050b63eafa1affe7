package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/cors"
	"github.com/gorilla/mux"
)

// Options configures NewRouter.
type Options struct {
	AllowedOrigins []string
	Logger         *slog.Logger
	Metrics        *Metrics // nil creates a fresh set
}

// NewRouter builds the HTTP handler for the food log API.
func NewRouter(t Tracker, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = NewMetrics("foodlog")
	}

	h := NewHandler(t, metrics, logger)

	router := mux.NewRouter()
	router.Use(metricsMiddleware(metrics))

	router.HandleFunc("/health", h.Health).Methods("GET")
	router.Handle("/metrics", metrics.Handler()).Methods("GET")

	router.HandleFunc("/foods/search", h.SearchFoods).Methods("GET")
	router.HandleFunc("/foods", h.ListFoods).Methods("GET")
	router.HandleFunc("/foods", h.AddFood).Methods("POST")

	router.HandleFunc("/entries", h.LogEntry).Methods("POST")
	router.HandleFunc("/entries", h.ListEntries).Methods("GET")

	router.HandleFunc("/summary", h.Summary).Methods("GET")

	// CORS wraps the router so preflight OPTIONS requests are answered
	// before method matching rejects them.
	withCORS := cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	})(router)

	return recoverMiddleware(logger)(withCORS)
}
