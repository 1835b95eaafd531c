package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/neonzero/OpenERM/pkg/service/event"
	"github.com/neonzero/OpenERM/pkg/usecase"
	"github.com/neonzero/OpenERM/pkg/utils/logging"
)

// ActorHeader carries the ID of the user performing a request
const ActorHeader = "X-Actor-ID"

// maxImportBytes bounds the CSV body accepted by the import endpoint
const maxImportBytes = 10 << 20

type Server struct {
	router   *chi.Mux
	uc       *usecase.UseCases
	recorder *event.Recorder
}

type Options func(*Server)

// WithEventLog exposes recently recorded events on /api/tenants/{tenantID}/events
func WithEventLog(recorder *event.Recorder) Options {
	return func(s *Server) {
		s.recorder = recorder
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler)

	r.Route("/api/tenants/{tenantID}", func(r chi.Router) {
		r.Route("/risks", func(r chi.Router) {
			r.Get("/", s.listRisks)
			r.Post("/", s.createRisk)
			r.Post("/import", s.importRisks)
			r.Get("/export", s.exportRisks)
			r.Post("/recalibrate", s.recalibrateAppetite)

			r.Route("/{riskID}", func(r chi.Router) {
				r.Get("/", s.getRisk)
				r.Put("/key-risk", s.markKeyRisk)
				r.Get("/assessments", s.listAssessments)
				r.Post("/assessments", s.submitAssessment)
				r.Get("/treatments", s.listTreatments)
				r.Post("/treatments", s.createTreatment)
				r.Get("/indicators", s.listIndicators)
				r.Post("/indicators", s.createIndicator)
			})
		})

		r.Get("/treatments/overdue", s.listOverdueTreatments)
		r.Patch("/treatments/{treatmentID}/status", s.updateTreatmentStatus)

		r.Post("/indicators/{indicatorID}/readings", s.recordIndicatorReading)
		r.Get("/indicators/{indicatorID}/trend", s.indicatorTrend)

		r.Get("/risk-heatmap", s.heatmap)
		r.Put("/appetite", s.updateAppetite)

		if s.recorder != nil {
			r.Get("/events", s.listEvents)
		}
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger logs HTTP requests and attaches a request scoped logger to the context
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		logger := logging.Default().With("request_id", middleware.GetReqID(r.Context()))
		ctx := logging.With(r.Context(), logger)

		defer func() {
			logger.Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r.WithContext(ctx))
	})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func tenantID(r *http.Request) string {
	return chi.URLParam(r, "tenantID")
}

func actorID(r *http.Request) string {
	return r.Header.Get(ActorHeader)
}
