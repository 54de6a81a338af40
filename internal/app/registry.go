package app

import (
	"context"
	"database/sql"

	"go-hris-workflow/internal/absence"
	"go-hris-workflow/internal/approval"
	"go-hris-workflow/internal/auth"
	"go-hris-workflow/internal/config"
	"go-hris-workflow/internal/hierarchy"
	"go-hris-workflow/internal/leave"
	"go-hris-workflow/internal/messaging/kafka"
	"go-hris-workflow/internal/notification"
	"go-hris-workflow/internal/rbac"
	"go-hris-workflow/internal/rbac/infra"
	"go-hris-workflow/internal/report"
	"go-hris-workflow/internal/shared/counter"
	"go-hris-workflow/internal/storage"
	"go-hris-workflow/internal/user"
	"go-hris-workflow/internal/workflow"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type infrastructure struct {
	db         *sql.DB
	gormDB     *gorm.DB
	rdb        *redis.Client
	signatures storage.ObjectPutter
}

func registerModules(
	router *gin.Engine,
	cfg *config.Config,
	infraDeps infrastructure,
	logger *zap.Logger,
) error {
	table, err := hierarchy.ParseTable(cfg.ApprovalChain)
	if err != nil {
		return err
	}

	// --- Repositories ---
	rbacRepo := rbac.NewRepository(infraDeps.gormDB)
	userRepo := user.NewRepository(infraDeps.gormDB)
	counterRepo := counter.NewRepository(infraDeps.gormDB)
	outboxRepo := kafka.NewOutboxRepository(infraDeps.db)
	approvalRepo := approval.NewRepository(infraDeps.gormDB)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer()
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(rbacRepo, enforcer, logger)
	if err := rbacService.LoadPolicy(context.Background()); err != nil {
		return err
	}

	// --- Services ---
	userService := user.NewService(userRepo, table, infraDeps.rdb, logger)
	authService := auth.NewService(userRepo, cfg.JWTSecret, logger)
	dispatcher := notification.NewDispatcher(
		outboxRepo,
		cfg.NotifyTimeout,
		cfg.NotifyMaxAttempts,
		logger,
		notification.WithTopic(cfg.NotificationTopic),
	)

	deps := approval.Dependencies{
		Users:      userService,
		Counter:    counterRepo,
		Signatures: storage.NewSignatureStore(infraDeps.signatures, cfg.S3Bucket, logger),
		Notifier:   dispatcher,
	}
	opts := approval.Options{
		TxTimeout:                 cfg.WorkflowTxTimeout,
		BlobTimeout:               cfg.BlobTimeout,
		AllowPlaceholderSignature: cfg.AllowPlaceholderSignature,
	}
	if opts.AllowPlaceholderSignature {
		logger.Warn("placeholder signatures enabled, missing signatures will be recorded as " + approval.PlaceholderSignatureRef)
	}

	leaveService := approval.NewService(infraDeps.db, approvalRepo, workflow.NewEngine[leave.Payload](table), leave.Definition(), deps, opts, logger)
	absenceService := approval.NewService(infraDeps.db, approvalRepo, workflow.NewEngine[absence.Payload](table), absence.Definition(), deps, opts, logger)
	reportService := approval.NewService(infraDeps.db, approvalRepo, workflow.NewEngine[report.Payload](table), report.Definition(), deps, opts, logger)

	// --- Handlers ---
	authHandler := auth.NewHandler(authService, cfg.IsProduction(), logger)
	userHandler := user.NewHandler(userService, logger)
	rbacHandler := rbac.NewHandler(rbacService)
	leaveHandler := approval.NewHandler(leaveService, logger)
	absenceHandler := approval.NewHandler(absenceService, logger)
	reportHandler := approval.NewHandler(reportService, logger)

	// --- Routes Registration ---
	routeDeps := approval.RouteDeps{
		RBAC:      rbacService,
		JWTSecret: cfg.JWTSecret,
		Redis:     infraDeps.rdb,
		Logger:    logger,
	}
	api := router.Group("/api/v1")
	{
		auth.RegisterRoutes(api, authHandler, cfg.JWTSecret)
		rbac.RegisterRoutes(api, rbacHandler, cfg.JWTSecret)
		user.RegisterRoutes(api, userHandler, rbacService, cfg.JWTSecret, logger)
		leave.RegisterRoutes(api, leaveHandler, routeDeps)
		absence.RegisterRoutes(api, absenceHandler, routeDeps)
		report.RegisterRoutes(api, reportHandler, routeDeps)
	}

	return nil
}
