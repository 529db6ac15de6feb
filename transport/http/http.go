package http

import (
	"context"
	"errors"
	"meetflow/config"
	"meetflow/infras/metrics"
	"meetflow/shared/constant"
	"meetflow/transport/http/middleware"
	"meetflow/transport/http/response"
	"meetflow/transport/http/router"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "meetflow/docs" // registers the OpenAPI document
)

const (
	readHeaderTimeout  = 10 * time.Second
	healthCheckTimeout = 2 * time.Second
)

// HealthCheck reports whether a dependency the API cannot serve without is reachable.
type HealthCheck func(ctx context.Context) error

// HealthChecks is keyed by dependency name.
type HealthChecks map[string]HealthCheck

type ServerState int32

const (
	ServerStateReady ServerState = iota + 1
	ServerStateInGracePeriod
	ServerStateInCleanupPeriod
)

type HTTP struct {
	Config     *config.Config
	Router     router.Router
	Middleware middleware.AppMiddleware
	Metrics    *metrics.Metrics
	Checks     HealthChecks

	state  atomic.Int32
	server *http.Server
}

func New(cfg *config.Config, r router.Router, appMiddleware middleware.AppMiddleware, metrics *metrics.Metrics, checks HealthChecks) *HTTP {
	return &HTTP{
		Config:     cfg,
		Router:     r,
		Middleware: appMiddleware,
		Metrics:    metrics,
		Checks:     checks,
	}
}

func (h *HTTP) State() ServerState {
	return ServerState(h.state.Load())
}

// Serve blocks until the listener closes. A clean Shutdown returns nil.
func (h *HTTP) Serve() error {
	h.server = &http.Server{
		Addr:              net.JoinHostPort(h.Config.Server.Host, h.Config.Server.Port),
		Handler:           h.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	h.state.Store(int32(ServerStateReady))

	log.Info().Str("port", h.Config.Server.Port).Msg("Starting up HTTP server.")

	if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err //nolint:wrapcheck
	}

	return nil
}

func (h *HTTP) Handler() http.Handler {
	mux := chi.NewRouter()

	mux.Use(chiMiddleware.Recoverer)
	mux.Use(h.Middleware.RequestID)
	mux.Use(h.Middleware.CORS())
	mux.Use(h.Middleware.Metrics)
	mux.Use(h.Middleware.Tracing)

	mux.Get("/health", h.health)
	mux.Handle("/metrics", h.Metrics.Handler())
	mux.Get("/swagger/*", httpSwagger.WrapHandler)

	mux.Group(func(api chi.Router) {
		api.Use(h.Middleware.RateLimit())
		h.Router.SetupRoutes(api)
	})

	return mux
}

// Shutdown drains in two phases: during the grace period the health check fails so
// load balancers stop routing, then in-flight requests get the cleanup period to finish.
func (h *HTTP) Shutdown(ctx context.Context) error {
	if h.server == nil {
		return nil
	}

	if h.Config.Server.Env == constant.ServerEnvDevelopment {
		log.Warn().Msg("Shutting down now.")

		return h.server.Close() //nolint:wrapcheck
	}

	shutdownConfig := h.Config.Server.Shutdown

	log.Info().Int64("seconds", shutdownConfig.GracePeriodSeconds).Msg("Entering grace period.")
	h.state.Store(int32(ServerStateInGracePeriod))

	select {
	case <-time.After(time.Duration(shutdownConfig.GracePeriodSeconds) * time.Second):
	case <-ctx.Done():
	}

	log.Info().Int64("seconds", shutdownConfig.CleanupPeriodSeconds).Msg("Entering cleanup period.")
	h.state.Store(int32(ServerStateInCleanupPeriod))

	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Duration(shutdownConfig.CleanupPeriodSeconds)*time.Second)
	defer cancel()

	if err := h.server.Shutdown(cleanupCtx); err != nil {
		return err //nolint:wrapcheck
	}

	log.Info().Msg("Cleaning up completed.")

	return nil
}

func (h *HTTP) health(w http.ResponseWriter, r *http.Request) {
	if h.State() != ServerStateReady {
		response.WithPreparingShutdown(w)

		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	for name, check := range h.Checks {
		if err := check(ctx); err != nil {
			log.Warn().Err(err).Str("dependency", name).Msg("health check failed")
			response.WithUnhealthy(w)

			return
		}
	}

	response.WithMessage(w, http.StatusOK, "OK")
}
