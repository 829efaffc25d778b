package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"artwall/internal/adapter/repo"
	"artwall/internal/adminform"
	"artwall/internal/domain"
	"artwall/internal/gallery"
	"artwall/internal/http/handlers"
	httpapi "artwall/internal/http/httpapi"
	"artwall/internal/imageurl"
	"artwall/internal/infra"
	"artwall/internal/infra/firebaseauth"
	"artwall/internal/storage"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	artworks, ping, closeStore := openArtworkStore(ctx, cfg, logger)
	defer closeStore()

	checker, closeChecker := newChecker(ctx, cfg, logger)
	defer closeChecker()
	images := imageurl.NewResolver(imageurl.Options{Checker: checker, Logger: &logger})

	snapshot := gallery.NewSnapshot(artworks, cfg.RevalidateInterval, logger)
	if _, err := snapshot.Refresh(ctx); err != nil {
		logger.Warn().Err(err).Msg("initial gallery load failed, serving on demand")
	}
	scheduler, err := snapshot.Schedule(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to schedule gallery refresh")
	}
	defer scheduler.Stop()

	files, err := storage.NewFileStore(cfg.DraftPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open draft storage")
	}
	drafts := adminform.NewDrafts(storage.NewDraftStore(files), cfg.AutosaveDelay, logger)

	app := &handlers.App{
		Config:   cfg,
		Logger:   logger,
		Artworks: artworks,
		Gallery:  snapshot,
		Images:   images,
		Drafts:   drafts,
		Verifier: firebaseauth.NewVerifier(cfg.FirebaseProjectID, cfg.FirebaseJWKSURL, nil),
		Ping:     ping,
	}

	server := infra.NewHTTPServer(cfg, httpapi.NewRouter(app))

	go func() {
		logger.Info().Str("addr", server.Addr()).Str("backend", cfg.ArtworkBackend).Msg("API listening")
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	if err := drafts.Close(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to flush drafts")
	}
	logger.Info().Msg("server stopped")
}

// openArtworkStore connects the configured backend and returns the
// repository, a health check and a close func.
func openArtworkStore(ctx context.Context, cfg *infra.Config, logger zerolog.Logger) (domain.ArtworkRepository, func(context.Context) error, func()) {
	switch cfg.ArtworkBackend {
	case infra.BackendFirestore:
		client, err := infra.NewFirestoreClient(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect firestore")
		}
		return repo.NewArtworkFirestoreRepository(client, logger), nil, func() { _ = client.Close() }
	default:
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		runner := infra.NewSQLRunner(pool, logger)
		pg := repo.NewArtworkRepository(runner)
		if err := pg.EnsureSchema(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to prepare schema")
		}
		return pg, runner.Ping, pool.Close
	}
}

func newChecker(ctx context.Context, cfg *infra.Config, logger zerolog.Logger) (imageurl.Checker, func()) {
	switch cfg.CheckMode {
	case infra.CheckNone:
		return nil, func() {}
	case infra.CheckGCS:
		client, err := infra.NewStorageClient(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect cloud storage")
		}
		return imageurl.NewGCSChecker(client), func() { _ = client.Close() }
	default:
		return imageurl.NewHTTPChecker(&http.Client{Timeout: cfg.CheckTimeout}, cfg.CheckTimeout), func() {}
	}
}

