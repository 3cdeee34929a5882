package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/janisto/todo-backend/internal/config"
	"github.com/janisto/todo-backend/internal/http/health"
	"github.com/janisto/todo-backend/internal/http/v1/routes"
	"github.com/janisto/todo-backend/internal/platform/database"
	"github.com/janisto/todo-backend/internal/platform/firebase"
	applog "github.com/janisto/todo-backend/internal/platform/logging"
	appmiddleware "github.com/janisto/todo-backend/internal/platform/middleware"
	"github.com/janisto/todo-backend/internal/platform/respond"
	"github.com/janisto/todo-backend/internal/service/todo"
)

// Version can be overridden at build time: -ldflags "-X main.Version=1.2.3"
var Version = "dev"

const (
	apiPrefix = "/api"
	docsPath  = "/docs"
)

func main() {
	defer func() {
		if err := applog.Sync(); err != nil {
			applog.LogError(context.Background(), "logger sync error", err)
		}
	}()
	if err := applog.Err(); err != nil {
		applog.LogError(context.Background(), "logger init error", err)
	}
	if err := run(); err != nil {
		applog.LogError(context.Background(), "server failed", err)
		_ = applog.Sync()
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := applog.SetLevel(cfg.LogLevel); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	limiter := appmiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go limiter.Run(ctx, time.Minute)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           newRouter(cfg, todo.NewService(store), limiter),
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    64 << 10, // 64 KB
	}

	listenErr := make(chan error, 1)
	go func() {
		applog.LogInfo(ctx, "server listening",
			zap.String("addr", srv.Addr),
			zap.String("storage", cfg.StorageBackend),
			zap.Bool("rateLimit", cfg.RateLimitEnabled()),
			zap.String("version", Version),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErr <- err
		}
	}()

	select {
	case err := <-listenErr:
		return fmt.Errorf("listen on %s: %w", srv.Addr, err)
	case <-ctx.Done():
		applog.LogInfo(context.Background(), "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		applog.LogError(shutdownCtx, "server shutdown error", err)
	}
	applog.LogInfo(context.Background(), "server exited")
	return nil
}

// openStore connects the configured storage backend. The returned func
// releases its resources.
func openStore(ctx context.Context, cfg *config.Config) (todo.Store, func(), error) {
	switch cfg.StorageBackend {
	case config.BackendFirestore:
		clients, err := firebase.InitializeClients(ctx, firebase.Config{
			ProjectID:                    cfg.ProjectID,
			GoogleApplicationCredentials: cfg.GoogleApplicationCredentials,
		})
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if err := clients.Close(); err != nil {
				applog.LogError(context.Background(), "firestore close error", err)
			}
		}
		return todo.NewFirestoreStore(clients.Firestore), closeFn, nil

	case config.BackendPostgres:
		if err := database.Migrate(cfg.DatabaseURL); err != nil {
			return nil, nil, err
		}
		pool, err := database.Connect(ctx, database.Config{
			URL:      cfg.DatabaseURL,
			MaxConns: cfg.DBMaxConns,
			MinConns: cfg.DBMinConns,
		})
		if err != nil {
			return nil, nil, err
		}
		return todo.NewPostgresStore(pool), pool.Close, nil

	default:
		return todo.NewMemoryStore(), func() {}, nil
	}
}

// newRouter builds the HTTP handler: base middleware, /health on the root
// router and the huma API mounted at /api.
func newRouter(cfg *config.Config, svc todo.Service, limiter *appmiddleware.RateLimiter) http.Handler {
	router := chi.NewRouter()
	router.NotFound(respond.NotFoundHandler())
	router.MethodNotAllowed(respond.MethodNotAllowedHandler())

	router.Use(
		appmiddleware.Security(apiPrefix+docsPath),
		appmiddleware.Vary(),
		appmiddleware.CORS(cfg.CORSAllowedOrigins),
		appmiddleware.RequestID(),
		// RealIP trusts X-Real-IP / X-Forwarded-For. Only run behind a trusted
		// proxy such as Cloud Run or nginx, otherwise clients can spoof it.
		chimiddleware.RealIP,
		chimiddleware.RequestSize(1<<20), // 1 MB limit
		applog.RequestLogger(),
		applog.AccessLogger(),
		respond.Recoverer(),
	)

	health.Register(router)

	apiRouter := chi.NewRouter()
	apiRouter.Use(limiter.Handler, appmiddleware.Owner())

	hcfg := huma.DefaultConfig("Todo API", Version)
	hcfg.Servers = []*huma.Server{{URL: apiPrefix}}
	hcfg.DocsPath = docsPath
	api := humachi.New(apiRouter, hcfg)

	// Advertise CBOR next to JSON for every request and response body.
	api.OpenAPI().OnAddOperation = append(api.OpenAPI().OnAddOperation,
		func(_ *huma.OpenAPI, op *huma.Operation) {
			if op.RequestBody != nil && op.RequestBody.Content != nil {
				if jsonContent, ok := op.RequestBody.Content["application/json"]; ok {
					op.RequestBody.Content["application/cbor"] = jsonContent
				}
			}
			for _, resp := range op.Responses {
				if resp.Content == nil {
					continue
				}
				if jsonContent, ok := resp.Content["application/json"]; ok {
					resp.Content["application/cbor"] = jsonContent
				}
			}
		},
	)

	routes.Register(api, svc)
	router.Mount(apiPrefix, apiRouter)
	return router
}
