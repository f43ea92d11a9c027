package http

import (
	"net/http"

	_ "github.com/DRSN-tech/beauty-backend/docs" // Импорт сгенерированных файлов
	"github.com/DRSN-tech/beauty-backend/internal/cfg"
	"github.com/DRSN-tech/beauty-backend/internal/metrics"
	"github.com/DRSN-tech/beauty-backend/internal/usecase"
	"github.com/DRSN-tech/beauty-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

type Router struct {
	router  *chi.Mux
	logger  logger.Logger
	cfg     *cfg.HTTPConfig
	metrics *metrics.Metrics
	limiter usecase.RateLimiter // nil — без ограничения
}

func NewRouter(router *chi.Mux, cfg *cfg.HTTPConfig, metrics *metrics.Metrics, limiter usecase.RateLimiter, logger logger.Logger) *Router {
	return &Router{
		router:  router,
		logger:  logger,
		cfg:     cfg,
		metrics: metrics,
		limiter: limiter,
	}
}

func (r *Router) Init(predictUC usecase.PredictUC) {
	r.router.Use(middleware.RequestID, middleware.RealIP)
	r.router.Use(Logging(r.logger))
	if r.metrics != nil {
		r.router.Use(Metrics(r.metrics))
	}
	r.router.Use(middleware.Recoverer, CORS)

	r.router.Get("/health", health)
	if r.metrics != nil {
		r.router.Method(http.MethodGet, "/metrics", r.metrics.Handler())
	}
	r.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"), // ссылка на JSON
	))

	predictHandler := NewPredictHandler(predictUC, r.logger, r.cfg.MaxUploadSize, r.cfg.ExposeEyeColor)

	r.router.Route("/api/v1", func(v1 chi.Router) {
		registerPredictRoutes(v1, predictHandler, r.rateLimit())
	})
	// путь исходного сервиса, на него настроен существующий клиент
	r.router.Group(func(legacy chi.Router) {
		registerPredictRoutes(legacy, predictHandler, r.rateLimit())
	})
}

func (r *Router) rateLimit() func(http.Handler) http.Handler {
	if r.limiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return RateLimit(r.limiter, r.metrics, r.logger)
}

func registerPredictRoutes(router chi.Router, handler *PredictHandler, limit func(http.Handler) http.Handler) {
	router.With(limit).Post("/predict", handler.predict)
}

func health(w http.ResponseWriter, _ *http.Request) {
	WriteSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
}
