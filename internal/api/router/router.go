package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/medikah/telehealth-intake/internal/http/middleware"
	"github.com/medikah/telehealth-intake/internal/scheduling"
	"github.com/medikah/telehealth-intake/internal/triage"
	"github.com/medikah/telehealth-intake/pkg/logging"
)

// Deps carries everything the router mounts. Scheduling and MetricsGatherer
// are optional.
type Deps struct {
	Triage             *triage.Handler
	Scheduling         *scheduling.Handler
	Logger             *logging.Logger
	CORSAllowedOrigins []string
	MetricsGatherer    prometheus.Gatherer
}

// New assembles the HTTP surface.
func New(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Compress(5))
	r.Use(middleware.CORS(deps.CORSAllowedOrigins))
	r.Use(middleware.RequestLogger(deps.Logger))

	r.Get("/", health)
	r.Get("/health", health)
	r.Get("/ping", ping)

	r.Route("/triage", func(r chi.Router) {
		r.Post("/start", deps.Triage.StartSession)
		r.Post("/message", deps.Triage.HandleMessage)
	})

	if deps.Scheduling != nil {
		r.Post("/schedule", deps.Scheduling.Schedule)
	}
	if deps.MetricsGatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.MetricsGatherer, promhttp.HandlerOpts{}))
	}

	return r
}

func health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": "telehealth-intake",
	})
}

func ping(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte("pong"))
}
