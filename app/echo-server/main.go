package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vintageCRM/app/echo-server/router"
	"vintageCRM/business/audit"
	"vintageCRM/business/campaign"
	"vintageCRM/business/catalog"
	"vintageCRM/business/clients"
	"vintageCRM/business/run"
	"vintageCRM/domain"
	"vintageCRM/internal/middleware"
	"vintageCRM/internal/repository/notification"
	psqlRepo "vintageCRM/internal/repository/postgres"
	redisRepo "vintageCRM/internal/repository/redis"
	"vintageCRM/internal/rest"
	"vintageCRM/pkg/config"
	"vintageCRM/pkg/database"
	redisdb "vintageCRM/pkg/database/redis"
	"vintageCRM/pkg/logger"
	"vintageCRM/pkg/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting vintageCRM", "version", cfg.App.Version)

	metrics.Init()

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	logger.Info("Database connected successfully")

	// Init run lock backend
	var runLock run.Lock
	if cfg.Redis.Enabled {
		redisClient, err := redisdb.NewRedisClient(cfg)
		if err != nil {
			logger.Fatal("Failed to connect to redis", "error", err)
		}
		defer redisdb.CloseRedisClient(redisClient)
		runLock = redisRepo.NewRunLockRepository(redisClient)
		logger.Info("Run lock backend: redis")
	} else {
		advisory, err := psqlRepo.NewAdvisoryLockRepository(db)
		if err != nil {
			logger.Fatal("Failed to init advisory lock", "error", err)
		}
		runLock = advisory
		logger.Info("Run lock backend: postgres advisory")
	}

	// Init mail gateway
	mailjet := notification.NewMailjetRepository(notification.MailjetConfig{
		BaseURL:           cfg.Mailjet.MailjetBaseUrl,
		BasicAuthUsername: cfg.Mailjet.MailjetBasicAuthUsername,
		BasicAuthPassword: cfg.Mailjet.MailjetBasicAuthPassword,
		SenderEmail:       cfg.Mailjet.MailjetSenderEmail,
		SenderName:        cfg.Mailjet.MailjetSenderName,
	})

	// Init audit policy
	policy, err := audit.LoadPolicy(cfg.Audit.PolicyFile)
	if err != nil {
		logger.Fatal("Failed to load audit policy", "file", cfg.Audit.PolicyFile, "error", err)
	}

	// Init repo
	tenantRepo := psqlRepo.NewTenantRepository(db)
	clientRepo := psqlRepo.NewClientRepository(db)
	productRepo := psqlRepo.NewProductRepository(db)
	orderRepo := psqlRepo.NewOrderRepository(db)
	runRepo := psqlRepo.NewRunRepository(db)
	recRepo := psqlRepo.NewRecommendationRepository(db)
	auditRepo := psqlRepo.NewAuditRepository(db)
	actionRepo := psqlRepo.NewNextActionRepository(db)
	summaryRepo := psqlRepo.NewRunSummaryRepository(db)
	dispatchRepo := psqlRepo.NewCampaignDispatchRepository(db)

	// Init service
	runService := run.NewService(run.Repositories{
		Clients:   clientRepo,
		Products:  productRepo,
		Orders:    orderRepo,
		Runs:      runRepo,
		Recs:      recRepo,
		Audits:    auditRepo,
		Actions:   actionRepo,
		Summaries: summaryRepo,
		Lock:      runLock,
	}, policy, cfg.Pipeline)
	campaignService := campaign.NewService(runRepo, actionRepo, clientRepo, recRepo, productRepo, dispatchRepo, mailjet)
	clientService := clients.NewService(clientRepo)
	catalogService := catalog.NewService(productRepo)

	// Init handler
	runHandler := rest.NewRunHandler(runService)
	campaignHandler := rest.NewCampaignHandler(campaignService)
	clientHandler := rest.NewClientHandler(clientService)
	catalogHandler := rest.NewCatalogHandler(catalogService)

	if cfg.App.Environment == "development" {
		seedCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := tenantRepo.Upsert(seedCtx, domain.Tenant{Code: "cavewine", Name: "Cave & Vine (dev)"}); err != nil {
			logger.Warn("Failed to seed dev tenant", "error", err)
		}
		cancel()
	}

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	// Unauthenticated operational endpoints
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Setup routes
	authRequired := middleware.TenantAuth(cfg.JWT.SecretKey, tenantRepo)
	api := e.Group("/api/v1", authRequired)
	router.SetupRunRoutes(api, runHandler)
	router.SetupCampaignRoutes(api, campaignHandler)
	router.SetupClientRoutes(api, clientHandler)
	router.SetupCatalogRoutes(api, catalogHandler)

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Server stopped")
}
