package server

import (
	"net"
	"net/http"
	"strconv"
	"time"

	httpLogger "github.com/chi-middleware/logrus-logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/riandyrn/otelchi"

	"github.com/slulibrary/nerdemo/internal"
	"github.com/slulibrary/nerdemo/pkg/auth"
	"github.com/slulibrary/nerdemo/pkg/models"
	"github.com/slulibrary/nerdemo/pkg/server/apihandlers"
)

var log = internal.GetLogger()

const (
	ReadHeaderTimeout = 5 * time.Second

	RouterName   = "nerdemo-api"
	UIRouterName = "nerdemo-ui"
)

// Create creates a new HTTP server with the given app state
func Create(appState *models.AppState) (*http.Server, error) {
	router, err := setupRouter(appState)
	if err != nil {
		return nil, err
	}

	cfg := appState.Config.Server
	return &http.Server{
		Addr:              net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Handler:           router,
		ReadHeaderTimeout: ReadHeaderTimeout,
	}, nil
}

func setupRouter(appState *models.AppState) (*chi.Mux, error) {
	cfg := appState.Config

	router := chi.NewRouter()
	router.Use(httpLogger.Logger("router", log))
	// set before Recoverer so recovered panics still carry them
	router.Use(ApplyCustomHeaders(CORSHeaders))
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)
	router.Use(SendRequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.CleanPath)
	router.Use(SendVersion)
	router.Use(otelchi.Middleware(
		RouterName,
		otelchi.WithChiRoutes(router),
		otelchi.WithRequestMethodInSpanName(true),
	))
	router.Use(middleware.Heartbeat("/healthz"))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:     []string{"*"},
		AllowedMethods:     []string{http.MethodGet, http.MethodPut, http.MethodPost, http.MethodDelete},
		AllowedHeaders:     []string{"Content-Type", "Authorization"},
		ExposedHeaders:     []string{versionHeader, requestIDHeader},
		MaxAge:             300,
		OptionsPassthrough: true,
	}))
	router.Use(AnswerPreflight)
	router.Use(middleware.RequestSize(cfg.Server.MaxRequestSize))

	router.NotFound(notFoundHandler)
	router.MethodNotAllowed(methodNotAllowedHandler)

	if cfg.Server.Debug {
		log.Debug("Mounting profiler at /debug")
		router.Mount("/debug", middleware.Profiler())
	}

	router.Get("/", apihandlers.RootHandler)

	var verifier func(http.Handler) http.Handler
	if cfg.Auth.Required {
		log.Info("JWT authentication required")
		v, err := auth.JWTVerifier(cfg)
		if err != nil {
			return nil, err
		}
		verifier = v
	}

	router.Group(func(r chi.Router) {
		if verifier != nil {
			r.Use(verifier)
			r.Use(Authenticator)
		}
		r.Post("/api/ner", apihandlers.NERHandler(appState))
	})

	return router, nil
}
