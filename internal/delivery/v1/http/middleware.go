package http

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/DRSN-tech/beauty-backend/internal/metrics"
	"github.com/DRSN-tech/beauty-backend/internal/usecase"
	"github.com/DRSN-tech/beauty-backend/pkg/e"
	"github.com/DRSN-tech/beauty-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// CORS разрешает запросы с любого источника: клиент с камерой открыт с другого origin.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-Id")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Logging пишет одну строку на запрос.
func Logging(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			log.Infof("%s %s %d %dB %s request_id=%s remote=%s",
				r.Method, r.URL.Path, ww.Status(), ww.BytesWritten(), time.Since(start),
				middleware.GetReqID(r.Context()), r.RemoteAddr)
		})
	}
}

// Metrics считает запросы по шаблону маршрута, а не по сырому пути.
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			path := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				path = rctx.RoutePattern()
			}
			status := strconv.Itoa(ww.Status())
			m.HTTPRequestDuration.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
			m.HTTPRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		})
	}
}

// RateLimit ограничивает число запросов с одного адреса. Если лимитер недоступен,
// запрос пропускается.
func RateLimit(limiter usecase.RateLimiter, m *metrics.Metrics, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision, err := limiter.Allow(r.Context(), clientKey(r))
			if err != nil {
				log.Warnf("rate limiter unavailable, request allowed: %v", err)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
			if !decision.Allowed {
				retry := int(time.Until(decision.ResetAt).Seconds()) + 1
				w.Header().Set("Retry-After", strconv.Itoa(max(retry, 1)))
				if m != nil {
					m.RateLimited.Inc()
				}
				WriteError(w, e.ErrTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientKey — адрес клиента без порта. RealIP уже подставил X-Forwarded-For, если он был.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
