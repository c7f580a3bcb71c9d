package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/bnema/recap/internal/adapter/http/middleware"
	"github.com/bnema/recap/internal/infrastructure/logger"
	"github.com/bnema/recap/internal/service"
)

type Options struct {
	MaxUploadBytes int64
	AllowedOrigins []string
	// Metrics serves /metrics when set.
	Metrics  http.Handler
	Requests middleware.RequestCounter
}

type Server struct {
	router     chi.Router
	handlers   *Handlers
	sseHandler *SSEHandler
	opts       Options
}

func NewServer(pipeline PipelineService, jobs JobService, events EventSource, layout service.Layout, opts Options) *Server {
	s := &Server{
		router:     chi.NewRouter(),
		handlers:   NewHandlers(pipeline, jobs, layout, opts.MaxUploadBytes),
		sseHandler: NewSSEHandler(events, pipeline),
		opts:       opts,
	}

	s.router.Use(
		chimiddleware.RequestID,
		middleware.Logger(logger.Zap(), opts.Requests),
		chimiddleware.Recoverer,
		middleware.SecurityHeaders,
	)
	if len(opts.AllowedOrigins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
			ExposedHeaders: []string{"Content-Disposition"},
			MaxAge:         300,
		}))
	}

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.Get("/healthz", Healthz())
	if s.opts.Metrics != nil {
		s.router.Method(http.MethodGet, "/metrics", s.opts.Metrics)
	}

	s.router.Route("/jobs", func(r chi.Router) {
		r.Get("/", s.handlers.ListJobs())
		r.Post("/", s.handlers.Submit())

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handlers.Job())
			r.Delete("/", s.handlers.Cleanup())
			r.Get("/events", s.sseHandler.Events())
			r.Get("/summary", s.handlers.Summary())
			r.Post("/stages/{stage}", s.handlers.RunStage())
		})
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
