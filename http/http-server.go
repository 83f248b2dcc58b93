package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/programme-lv/contest/httpjson"
	"github.com/programme-lv/contest/logger"
	settingshttp "github.com/programme-lv/contest/settings/http"
	submhttp "github.com/programme-lv/contest/subm/http"
	timelinehttp "github.com/programme-lv/contest/timeline/http"
)

type Options struct {
	JwtKey         []byte
	AllowedOrigins []string
	AppEnv         string
	Version        string
	RequestTimeout time.Duration
}

type HttpServer struct {
	router *chi.Mux
	stats  *statsLogger
	logger *slog.Logger
}

func NewHttpServer(
	opts Options,
	timelineHandler *timelinehttp.TimelineHttpHandler,
	settingsHandler *settingshttp.SettingsHttpHandler,
	submHandler *submhttp.SubmHttpHandler,
) *HttpServer {
	router := chi.NewRouter()

	httpLogger := httplog.NewLogger("proglv-contest", httplog.Options{
		LogLevel:         slog.LevelDebug,
		JSON:             opts.AppEnv != "dev",
		Concise:          true,
		RequestHeaders:   false,
		MessageFieldName: "message",
		Tags: map[string]string{
			"version": opts.Version,
			"env":     opts.AppEnv,
		},
		QuietDownRoutes: []string{"/healthz"},
		QuietDownPeriod: 10 * time.Second,
	})

	stats := newStatsLogger(httpLogger.Logger, 5*time.Second)

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(logger.Middleware(httpLogger.Logger))
	router.Use(httplog.RequestLogger(httpLogger, []string{"/healthz"}))
	router.Use(middleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Retry-After"},
		AllowCredentials: true,
		MaxAge:           3000,
	}))

	if opts.RequestTimeout > 0 {
		router.Use(middleware.Timeout(opts.RequestTimeout))
	}
	router.Use(stats.middleware)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpjson.WriteSuccessJson(w, map[string]string{"status": "ok"})
	})

	timelineHandler.RegisterRoutes(router)
	settingsHandler.RegisterRoutes(router, opts.JwtKey)
	submHandler.RegisterRoutes(router, opts.JwtKey)

	return &HttpServer{
		router: router,
		stats:  stats,
		logger: httpLogger.Logger,
	}
}

func (httpserver *HttpServer) Handler() http.Handler {
	return httpserver.router
}

// Start serves until ctx is cancelled, then drains in-flight requests.
func (httpserver *HttpServer) Start(ctx context.Context, address string) error {
	srv := &http.Server{
		Addr:              address,
		Handler:           httpserver.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	statsCtx, stopStats := context.WithCancel(ctx)
	defer stopStats()
	go httpserver.stats.run(statsCtx)

	errCh := make(chan error, 1)
	go func() {
		httpserver.logger.Info("starting server", "address", address)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
