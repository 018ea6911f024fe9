package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"travel-ai-planner/internal/config"
	red "travel-ai-planner/internal/infra/redis"
	"travel-ai-planner/internal/usecase"
)

type Server struct {
	surveyUC usecase.SurveyUseCase
	jobUC    usecase.PlanJobUseCase
	itinUC   usecase.ItineraryUseCase
	cbUC     usecase.CallbackUseCase
	statsUC  usecase.StatsUseCase

	sched  DispatchScheduler
	locker red.Locker
	rl     *red.RateLimiter
	auth   *AuthManager

	cfg *config.Config
	log *zerolog.Logger
}

func NewServer(
	surveyUC usecase.SurveyUseCase,
	jobUC usecase.PlanJobUseCase,
	itinUC usecase.ItineraryUseCase,
	cbUC usecase.CallbackUseCase,
	statsUC usecase.StatsUseCase,
	sched DispatchScheduler,
	locker red.Locker,
	rl *red.RateLimiter,
	auth *AuthManager,
	cfg *config.Config,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		surveyUC: surveyUC,
		jobUC:    jobUC,
		itinUC:   itinUC,
		cbUC:     cbUC,
		statsUC:  statsUC,
		sched:    sched,
		locker:   locker,
		rl:       rl,
		auth:     auth,
		cfg:      cfg,
		log:      logger,
	}
}

// Router assembles the full route tree: public API, planner callback, admin
// surface and the operational endpoints.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(TraceID)
	r.Use(Recover(s.log))
	r.Use(RequestLog(s.log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Planner results come in here; guarded by the shared secret, not by a
	// user identity.
	r.Post("/callbacks/planner/{jobID}", callbackHandler(s.cbUC, s.locker, s.cfg.Planner.CallbackSecret, s.log))

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(OwnerID)

			r.Post("/surveys", surveyCreateHandler(s.surveyUC))
			r.Get("/surveys", surveyListHandler(s.surveyUC))
			r.Get("/surveys/{id}", surveyGetHandler(s.surveyUC))
			r.Delete("/surveys/{id}", surveyDeleteHandler(s.surveyUC))

			r.Group(func(r chi.Router) {
				r.Use(RateLimit(s.rl, "plan", s.cfg.RateLimit.PlanRequests, s.cfg.RateLimit.Window, s.log))
				r.Post("/plans/generate", planGenerateHandler(s.jobUC, s.sched))
				r.Post("/itineraries/{id}/modify", itineraryModifyHandler(s.jobUC, s.sched))
			})

			r.Get("/jobs/{id}", jobGetHandler(s.jobUC))
			r.Post("/jobs/{id}/retry", jobRetryHandler(s.jobUC, s.sched))

			r.Get("/itineraries", itineraryListHandler(s.itinUC))
			r.Get("/itineraries/{id}", itineraryGetHandler(s.itinUC))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", adminLoginHandler(s.auth, s.cfg.Admin.APIKey))
			r.Group(func(r chi.Router) {
				r.Use(s.auth.RequireAdmin)
				r.Get("/stats", adminStatsHandler(s.statsUC))
			})
		})
	})

	return r
}
