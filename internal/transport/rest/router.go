package rest

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/ulule/limiter/v3"

	"surveyrelay/internal/config"
	"surveyrelay/internal/metrics"
	"surveyrelay/internal/service"
	"surveyrelay/internal/transport/rest/handler"
	"surveyrelay/internal/transport/rest/middleware"
)

// Container holds all dependencies for the router
type Container struct {
	Config         *config.Config
	Logger         logrus.FieldLogger
	SubmitService  *service.SubmitService
	RateLimitStore limiter.Store // nil disables rate limiting
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(c.SubmitService.HasToken)
	submitHandler := handler.NewSubmitHandler(c.SubmitService)

	// CORS first so that every response, rejections included, carries the headers
	r.Use(corsMiddleware(c.Config.CORS))
	r.Use(middleware.WithRequestLog(c.Logger))

	api := r.PathPrefix("/api").Subrouter()

	// Health check answers any method
	api.HandleFunc("/health", healthHandler.Health)

	// Submit checks the method itself to return a usage hint
	submit := api.NewRoute().Subrouter()
	if c.RateLimitStore != nil {
		submit.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerMinute: c.Config.RateLimit.PerMinute,
			Store:             c.RateLimitStore,
			OnLimitReached:    handler.RateLimited,
		}))
	}
	submit.HandleFunc("/submit", submitHandler.Submit)

	r.Handle("/metrics", metrics.Handler()).Methods("GET")

	return r
}

func corsMiddleware(cfg config.CORSConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", cfg.AllowedOrigins)
			w.Header().Set("Access-Control-Allow-Methods", cfg.AllowedMethods)
			w.Header().Set("Access-Control-Allow-Headers", cfg.AllowedHeaders)
			w.Header().Set("Cache-Control", "no-store")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
