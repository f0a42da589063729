package server

import (
	"net"
	"net/http"
	"strconv"
	"time"

	httpLogger "github.com/chi-middleware/logrus-logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/riandyrn/otelchi"

	"github.com/slulibrary/nerdemo/pkg/models"
	"github.com/slulibrary/nerdemo/pkg/web"
)

// CreateUI creates the HTTP server for the demo page.
func CreateUI(appState *models.AppState) *http.Server {
	cfg := appState.Config.UI
	return &http.Server{
		Addr:              net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Handler:           setupUIRouter(appState),
		ReadHeaderTimeout: ReadHeaderTimeout,
	}
}

func setupUIRouter(appState *models.AppState) *chi.Mux {
	cfg := appState.Config

	router := chi.NewRouter()
	router.Use(httpLogger.Logger("ui", log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(SendVersion)
	router.Use(otelchi.Middleware(
		UIRouterName,
		otelchi.WithChiRoutes(router),
		otelchi.WithRequestMethodInSpanName(true),
	))
	router.Use(middleware.Heartbeat("/healthz"))
	router.Use(middleware.RequestSize(cfg.Server.MaxRequestSize))

	sessions := web.NewSessionStore(
		cfg.UI.MaxSessions,
		time.Duration(cfg.UI.SessionTTLMin)*time.Minute,
	)
	demo := web.NewDemoHandler(appState, sessions)

	router.Get("/", demo.Get)
	router.Post("/", demo.Post)
	router.Handle("/static/*", web.StaticHandler())

	return router
}
