package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"slopgames/internal/config"
	"slopgames/internal/gamemanager"
	"slopgames/internal/genai"
	"slopgames/internal/generator"
	"slopgames/internal/storage"
	"slopgames/internal/templating"

	"github.com/spf13/cobra"
)

// application holds the application-wide dependencies for the web server.
type application struct {
	logger         *slog.Logger
	manager        *gamemanager.GameManager
	store          storage.CatalogStore
	templates      *templating.Engine
	artifacts      generator.Config
	staticDir      string
	csrf           bool
	handlerTimeout time.Duration
}

// newApplication wires storage, AI clients, the game manager and templates.
func newApplication(cfg config.Config, logger *slog.Logger) (*application, error) {
	store, err := storage.NewJSONStore(cfg.CatalogFile, logger)
	if err != nil {
		return nil, fmt.Errorf("initialize catalog store: %w", err)
	}

	artifacts := generator.DefaultGeneratorConfig(cfg.DataDir)
	artifacts.GamesDir = cfg.GamesDir
	artifacts.ThumbnailsDir = cfg.ThumbnailsDir
	if err := artifacts.EnsureDirs(); err != nil {
		return nil, err
	}

	if cfg.APIKey == "" {
		logger.Warn("No API key configured (GOOGLE_API_KEY); game generation will fail")
	}
	text := genai.NewTextClient(cfg.GenAI(), logger)
	images := genai.NewImageClient(cfg.GenAI(), logger)

	templates, err := templating.NewEngine(cfg.TemplatesDir)
	if err != nil {
		return nil, fmt.Errorf("load templates from %s: %w", cfg.TemplatesDir, err)
	}
	logger.Info("Templates cached successfully", "dir", cfg.TemplatesDir)

	return &application{
		logger:    logger,
		manager:   gamemanager.NewManager(store, text, images, artifacts, logger),
		store:     store,
		templates: templates,
		artifacts: artifacts,
		staticDir: cfg.StaticDir,
		csrf:      cfg.CSRF,
		// Markup and thumbnail generation run back to back within one request.
		handlerTimeout: 2*cfg.RequestTimeout + 10*time.Second,
	}, nil
}

func newRootCmd() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:           "slopgames-server",
		Short:         "Serve the SLOPGAMES procedural game generator",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			v := config.New()
			if err := config.BindFlags(v, cmd.Flags()); err != nil {
				return err
			}
			cfg, err := config.Load(v, configFile)
			if err != nil {
				return err
			}
			logger := config.NewLogger(cfg.Log)

			app, err := newApplication(cfg, logger)
			if err != nil {
				logger.Error("Failed to initialize application", "error", err)
				return err
			}
			return app.serve(cmd.Context(), ":"+cfg.Port)
		},
	}

	cmd.Flags().StringVar(&configFile, "config", "", "Path to a config file (yaml, toml or json)")
	cmd.Flags().String("port", "", "Port to listen on (default 3000, env PORT)")
	cmd.Flags().String("data-dir", "", "Directory holding the catalog, games and thumbnails")
	cmd.Flags().String("log-level", "", "Log level: debug, info, warn, error")
	return cmd
}

// serve runs the HTTP server until ctx is cancelled, then shuts down gracefully.
func (app *application) serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           app.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info("Starting server", "address", fmt.Sprintf("http://localhost%s", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			app.logger.Error("Server failed", "error", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	app.logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
