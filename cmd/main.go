package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/markjakearzadon/servicedesk-gobackend/internal/config"
	"github.com/markjakearzadon/servicedesk-gobackend/internal/db"
	"github.com/markjakearzadon/servicedesk-gobackend/internal/handlers"
	"github.com/markjakearzadon/servicedesk-gobackend/internal/logging"
	"github.com/markjakearzadon/servicedesk-gobackend/internal/middleware"
	"github.com/markjakearzadon/servicedesk-gobackend/internal/repository"
	"github.com/markjakearzadon/servicedesk-gobackend/internal/services"
	"github.com/markjakearzadon/servicedesk-gobackend/internal/session"
	"github.com/markjakearzadon/servicedesk-gobackend/internal/storage"
	"github.com/markjakearzadon/servicedesk-gobackend/internal/views"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	flush, err := logging.Init(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		zap.L().Error("server stopped with error", zap.Error(err))
		flush()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.AppConfig) error {
	repos, closeRepos, err := openRepositories(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer closeRepos()

	logos, err := openLogoStore(ctx, cfg.Uploads)
	if err != nil {
		return err
	}

	// A failed seeding step is logged and the server still starts.
	if err := services.NewBootstrap(repos, services.AdminAccount{
		Username: cfg.Admin.Username,
		Password: cfg.Admin.Password,
	}).Run(ctx); err != nil {
		zap.L().Warn("startup scripts finished with errors", zap.Error(err))
	}

	renderer, err := views.New()
	if err != nil {
		return err
	}

	limiter := middleware.NewRateLimiter(cfg.Security.LoginPerMinute)
	limiter.StartCleanup(10*time.Minute, ctx.Done())

	router := handlers.NewRouter(handlers.Deps{
		Config:    cfg,
		Sessions:  session.NewManager(cfg.Session),
		Views:     renderer,
		Limiter:   limiter,
		Users:     services.NewUserService(repos.Users),
		Catalog:   services.NewCatalogService(repos.Services),
		Purchases: services.NewPurchaseService(repos),
		Business:  services.NewBusinessService(repos.Business, logos),
		Cards:     services.NewCardService(repos.Cards),
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("server listening", zap.String("addr", cfg.Server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zap.L().Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func openRepositories(ctx context.Context, cfg config.DatabaseConfig) (*repository.Repositories, func(), error) {
	if cfg.Driver == config.DriverMemory {
		zap.L().Warn("using in-memory storage, data is lost on exit")
		return repository.NewMemory(), func() {}, nil
	}

	client, err := db.Connect(ctx, cfg.URI)
	if err != nil {
		return nil, nil, err
	}
	database := client.Database(cfg.Name)
	if err := db.EnsureIndexes(ctx, database); err != nil {
		db.Disconnect(client)
		return nil, nil, err
	}
	return repository.NewMongo(database), func() { db.Disconnect(client) }, nil
}

func openLogoStore(ctx context.Context, cfg config.UploadsConfig) (storage.LogoStore, error) {
	if cfg.Backend == config.UploadS3 {
		return storage.NewS3Store(ctx, cfg)
	}
	return storage.NewLocalStore(cfg.Dir, cfg.URLPrefix)
}
