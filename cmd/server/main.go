package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/tendant/chi-demo/app"
	"github.com/tendant/simple-blog/pkg/blogcontent"
	"github.com/tendant/simple-blog/pkg/blogcontent/api"
	"github.com/tendant/simple-blog/pkg/blogcontent/config"
)

func main() {
	// Load .env file if it exists (silently ignore if not found)
	_ = godotenv.Load()

	cfg, err := config.Load(config.WithEnv())
	if err != nil {
		slog.Error("Failed to load configuration", "err", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	// The backend is chosen once; an unusable S3 bucket falls back to local files
	svc, err := cfg.BuildService(context.Background())
	if err != nil {
		slog.Error("Failed to build content service", "err", err)
		os.Exit(1)
	}
	slog.Info("Content service ready", "backend", svc.BackendName(), "env", cfg.Environment)

	server := newApp(svc)
	server.Run()
}

// newApp builds the chi-demo app serving the content API. chi-demo supplies
// request ids, the access log, panic recovery and CORS.
func newApp(svc *blogcontent.Service) *app.App {
	server := app.NewApp(
		app.WithAppConfig(app.DefaultAppConfig()),
		app.WithCors(&cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "HEAD", "OPTIONS"},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: false,
			MaxAge:           300,
		}),
	)

	app.RoutesHealthz(server.R)
	app.RoutesHealthzReady(server.R)

	server.R.Get("/health", api.Health)
	server.R.Mount("/api", api.NewContentHandler(svc).Routes())

	return server
}
