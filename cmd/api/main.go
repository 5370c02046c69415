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

	"github.com/cmlabs-hris/assetverse-backend-go/internal/config"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/asset"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/assetrequest"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/user"
	appHTTP "github.com/cmlabs-hris/assetverse-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/pkg/obs"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/repository/memory"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/repository/mongodb"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/repository/postgresql"
	accessService "github.com/cmlabs-hris/assetverse-backend-go/internal/service/access"
	assetService "github.com/cmlabs-hris/assetverse-backend-go/internal/service/asset"
	requestService "github.com/cmlabs-hris/assetverse-backend-go/internal/service/assetrequest"
	serviceAuth "github.com/cmlabs-hris/assetverse-backend-go/internal/service/auth"
	statsService "github.com/cmlabs-hris/assetverse-backend-go/internal/service/stats"
	userService "github.com/cmlabs-hris/assetverse-backend-go/internal/service/user"
)

type repositories struct {
	users    user.UserRepository
	assets   asset.AssetRepository
	requests assetrequest.RequestRepository
	close    func()
}

func openRepositories(ctx context.Context, cfg *config.Config) (repositories, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
		if err != nil {
			return repositories{}, err
		}
		if cfg.Database.AutoMigrate {
			if err := postgresql.EnsureSchema(ctx, db); err != nil {
				db.Close()
				return repositories{}, fmt.Errorf("apply schema: %w", err)
			}
		}
		return repositories{
			users:    postgresql.NewUserRepository(db),
			assets:   postgresql.NewAssetRepository(db),
			requests: postgresql.NewRequestRepository(db),
			close:    db.Close,
		}, nil

	case config.StoreDriverMongo:
		db, err := database.NewMongoDB(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return repositories{}, err
		}
		if err := mongodb.EnsureIndexes(ctx, db); err != nil {
			db.Close(context.Background())
			return repositories{}, fmt.Errorf("ensure indexes: %w", err)
		}
		return repositories{
			users:    mongodb.NewUserRepository(db),
			assets:   mongodb.NewAssetRepository(db),
			requests: mongodb.NewRequestRepository(db),
			close: func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				db.Close(closeCtx)
			},
		}, nil

	default:
		slog.Warn("Using in-memory store, data is lost on restart")
		store := memory.NewStore()
		return repositories{
			users:    store.Users(),
			assets:   store.Assets(),
			requests: store.Requests(),
			close:    func() {},
		}, nil
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	logger := appHTTP.NewLogger(cfg.App.Env, cfg.SlogLevel())
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startupCtx, cancelStartup := context.WithTimeout(ctx, 30*time.Second)
	repos, err := openRepositories(startupCtx, cfg)
	cancelStartup()
	if err != nil {
		slog.Error("Error connecting to store", "driver", cfg.Store.Driver, "error", err)
		os.Exit(1)
	}
	defer repos.close()

	obs.Init()

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	hub := sse.NewHub()

	policy := accessService.NewPolicy(repos.users)
	authService := serviceAuth.NewAuthService(repos.users, JWTService)
	usrService := userService.NewUserService(repos.users, policy)
	inventory := assetService.NewAssetService(repos.assets, repos.requests, policy)
	reqService := requestService.NewRequestService(repos.requests, repos.assets, inventory, policy, hub)
	stsService := statsService.NewStatsService(repos.assets, repos.requests, policy, statsService.Options{
		LowStockThreshold: cfg.Inventory.LowStockThreshold,
		PendingPreview:    cfg.Inventory.PendingPreview,
		Location:          cfg.App.TimeZone,
	})

	// A marker younger than one interval may still be cleared by its own call
	reconciler := requestService.NewReconciler(repos.requests, inventory, cfg.Inventory.ReconcileInterval)
	scheduler := cron.NewScheduler()
	if err := cron.NewInventoryJobs(reconciler, cfg.Inventory.ReconcileInterval, cfg.Inventory.ReconcileBatch).RegisterJobs(scheduler); err != nil {
		slog.Error("Error registering cron jobs", "error", err)
		os.Exit(1)
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	router := appHTTP.NewRouter(JWTService, logger, appHTTP.RouterOptions{
		AllowedOrigins: cfg.App.AllowedOrigins,
		LogLevel:       cfg.SlogLevel(),
		RateLimiter:    middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst),
	}, appHTTP.Handlers{
		Auth:    appHTTP.NewAuthHandler(authService),
		User:    appHTTP.NewUserHandler(usrService),
		Asset:   appHTTP.NewAssetHandler(inventory),
		Request: appHTTP.NewRequestHandler(reqService),
		Stats:   appHTTP.NewStatsHandler(stsService),
		Events:  appHTTP.NewEventsHandler(hub),
	})

	// no WriteTimeout: the event stream stays open
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	// in-flight requests finish on their own; open event streams are ended
	server.RegisterOnShutdown(hub.Close)

	go func() {
		slog.Info("Server running", "addr", server.Addr, "store", cfg.Store.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown error", "error", err)
	}
}
