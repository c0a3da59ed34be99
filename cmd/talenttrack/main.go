package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/talenttrack/talenttrack/internal/app"
	"github.com/talenttrack/talenttrack/internal/audit"
	"github.com/talenttrack/talenttrack/internal/candidates"
	"github.com/talenttrack/talenttrack/internal/docstore"
	"github.com/talenttrack/talenttrack/internal/observability"
	"github.com/talenttrack/talenttrack/internal/platform/cache"
	"github.com/talenttrack/talenttrack/internal/platform/db"
	"github.com/talenttrack/talenttrack/internal/rbac"
	"github.com/talenttrack/talenttrack/internal/tenant"
	"github.com/talenttrack/talenttrack/internal/users"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	if err := docstore.EnsureSchema(ctx, pool); err != nil {
		logger.Error("ensure document schema", slog.Any("error", err))
		os.Exit(1)
	}
	if err := tenant.EnsureSchema(ctx, pool); err != nil {
		logger.Error("ensure tenant schema", slog.Any("error", err))
		os.Exit(1)
	}

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, permission cache disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	store := docstore.NewStore(pool)
	metrics := observability.NewMetrics()

	userRepo := users.NewRepository(store)
	usersHandler := users.NewHandler(logger, userRepo)

	permStore := rbac.NewPermissionStore(store)
	roleStore := rbac.NewRoleStore(store)
	fieldStore := rbac.NewFieldPermissionStore(store)

	var permCache *rbac.PermissionCache
	if redisClient != nil {
		permCache = rbac.NewPermissionCache(redisClient, cfg.RBACCacheTTL)
	}

	rbacService := rbac.NewService(permStore, roleStore, fieldStore, userRepo, permCache, logger)
	rbacHandler := rbac.NewHandler(logger, rbacService, userRepo)

	match := rbac.MatchLoose
	if cfg.RBACStrictMatch {
		match = rbac.MatchStrict
	}
	rbacMiddleware := rbac.Middleware{
		Service: rbacService,
		Users:   userRepo,
		Logger:  logger,
		Match:   match,
		Denials: metrics,
	}

	redactor := &rbac.Redactor{
		Fields:       fieldStore,
		Roles:        roleStore,
		Users:        userRepo,
		Logger:       logger,
		Reverts:      metrics,
		HonorActions: cfg.RBACHonorFieldActions,
	}

	pools := tenant.NewPools(tenant.NewResolver(pool))
	defer pools.Close()

	changeStore := audit.NewChangeStore(pools)
	recorder := audit.NewRecorder(changeStore, logger)
	history := audit.NewHistory(changeStore)

	candidateRepo := candidates.NewRepository(pools)
	candidateService := candidates.NewService(candidateRepo, redactor, recorder, history, logger)
	candidatesHandler := candidates.NewHandler(logger, candidateService)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		UsersHandler:      usersHandler,
		RBACHandler:       rbacHandler,
		CandidatesHandler: candidatesHandler,
		RBACMiddleware:    rbacMiddleware,
		Metrics:           metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		logger.Error("server", slog.Any("error", err))
		os.Exit(1)
	}
}
