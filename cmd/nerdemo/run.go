package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/slulibrary/nerdemo/config"
	"github.com/slulibrary/nerdemo/pkg/auth"
	"github.com/slulibrary/nerdemo/pkg/extractors"
	"github.com/slulibrary/nerdemo/pkg/models"
	"github.com/slulibrary/nerdemo/pkg/nlp"
	"github.com/slulibrary/nerdemo/pkg/server"
)

const ShutdownTimeout = 10 * time.Second

// runAPI is the entrypoint for the API server
func runAPI() {
	cfg := loadConfig()

	log.Infof("Starting nerdemo API version %s", config.VersionString)

	appState, err := NewAppState(context.Background(), cfg, true)
	if err != nil {
		log.Fatalf("Error loading NER pipeline: %s", err)
	}

	srv, err := server.Create(appState)
	if err != nil {
		log.Fatal(err)
	}

	if err := serve(srv, appState); err != nil {
		log.Fatal(err)
	}
}

// runUI is the entrypoint for the demo page
func runUI(echo bool) {
	cfg := loadConfig()
	if echo {
		cfg.UI.Echo = true
	}

	log.Infof("Starting nerdemo UI version %s", config.VersionString)

	appState, err := NewAppState(context.Background(), cfg, !cfg.UI.Echo)
	if err != nil {
		log.Fatalf("Error loading NER pipeline: %s", err)
	}

	if err := serve(server.CreateUI(appState), appState); err != nil {
		log.Fatal(err)
	}
}

func loadConfig() *config.Config {
	if showVersion {
		fmt.Println(config.VersionString)
		os.Exit(0)
	}

	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		log.Fatalf("Error configuring nerdemo: %s", err)
	}

	handleCLIOptions(cfg)
	config.SetLogLevel(cfg)

	return cfg
}

// handleCLIOptions handles CLI options that don't require the server to run
func handleCLIOptions(cfg *config.Config) {
	if dumpConfig {
		out, err := config.Dump(cfg)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Print(string(out))
		os.Exit(0)
	}
	if generateToken {
		token, err := auth.GenerateJWT(cfg)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(token)
		os.Exit(0)
	}
}

// NewAppState loads the configured pipeline once. The echo UI passes
// withPipeline false and gets an AppState without an extractor.
func NewAppState(ctx context.Context, cfg *config.Config, withPipeline bool) (*models.AppState, error) {
	appState := &models.AppState{Config: cfg}
	if !withPipeline {
		return appState, nil
	}

	loader, err := nlp.NewLoaderFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	pipeline, err := loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	log.Infof("NER pipeline %s ready in %s", pipeline.Name(), time.Since(start).Round(time.Millisecond))

	appState.Pipeline = pipeline
	appState.Extractor = extractors.NewEntityExtractor(pipeline)
	return appState, nil
}

// serve runs srv until it fails or the process receives SIGINT/SIGTERM, then
// shuts it down and closes the pipeline.
func serve(srv *http.Server, appState *models.AppState) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Listening on: %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	var serveErr error
	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = err
		}
	case <-ctx.Done():
		log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorf("Error shutting down server: %v", err)
		}
	}

	closePipeline(appState)
	return serveErr
}

func closePipeline(appState *models.AppState) {
	if appState.Pipeline == nil {
		return
	}
	if err := appState.Pipeline.Close(); err != nil {
		log.Errorf("Error closing NER pipeline: %v", err)
	}
}
