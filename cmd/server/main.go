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

	_ "github.com/doorsets/backend/docs"
	catalogapp "github.com/doorsets/backend/internal/application/catalog"
	"github.com/doorsets/backend/internal/application/common"
	identityapp "github.com/doorsets/backend/internal/application/identity"
	partnerapp "github.com/doorsets/backend/internal/application/partner"
	productionapp "github.com/doorsets/backend/internal/application/production"
	purchasingapp "github.com/doorsets/backend/internal/application/purchasing"
	"github.com/doorsets/backend/internal/application/reporting"
	"github.com/doorsets/backend/internal/infrastructure/auth"
	"github.com/doorsets/backend/internal/infrastructure/cache"
	"github.com/doorsets/backend/internal/infrastructure/config"
	"github.com/doorsets/backend/internal/infrastructure/event"
	"github.com/doorsets/backend/internal/infrastructure/logger"
	"github.com/doorsets/backend/internal/infrastructure/persistence"
	"github.com/doorsets/backend/internal/infrastructure/printing"
	"github.com/doorsets/backend/internal/infrastructure/storage"
	"github.com/doorsets/backend/internal/infrastructure/telemetry"
	"github.com/doorsets/backend/internal/interfaces/http/handler"
	"github.com/doorsets/backend/internal/interfaces/http/middleware"
	"github.com/doorsets/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

//	@title			DoorSets Admin API
//	@version		1.0
//	@description	Back office API for a door set workshop: inventory, assemblies, pick lists and purchase orders.

//	@contact.name	DoorSets Support
//	@contact.email	support@doorsets.local

//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT

//	@host		localhost:8080
//	@BasePath	/api
//	@schemes	http https

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Type "Bearer" followed by a space and the access token.

//	@tag.name			Account
//	@tag.description	Authentication and user accounts
//	@tag.name			items
//	@tag.description	Inventory items and the stock ledger
//	@tag.name			categories
//	@tag.name			assemblies
//	@tag.description	Bills of materials built from items
//	@tag.name			customers
//	@tag.name			suppliers
//	@tag.name			pick-lists
//	@tag.description	Production pick lists with stock checks
//	@tag.name			purchase-orders
//	@tag.name			dashboard
//	@tag.name			system

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logCfg := logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output}
	baseLog, err := logger.New(logCfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = baseLog.Sync() }()

	ctx := context.Background()
	tel, err := telemetry.Setup(ctx, cfg.Telemetry, cfg.App.Version, baseLog)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			baseLog.Error("Telemetry shutdown failed", zap.Error(err))
		}
	}()

	log := telemetry.Bridge(baseLog, cfg.Telemetry.ServiceName, tel.Logs)
	log.Info("Starting server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", cfg.App.Version),
	)

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database", zap.Error(err))
		}
	}()
	if err := tel.InstrumentDB(db.DB, cfg.Telemetry, cfg.Database.DBName, log); err != nil {
		return fmt.Errorf("instrument database: %w", err)
	}
	log.Info("Database connected", zap.String("host", cfg.Database.Host), zap.String("database", cfg.Database.DBName))

	// Redis is optional; everything it backs has an in-memory fallback
	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = cache.NewRedisClient(cfg.Redis)
		if err != nil {
			log.Warn("Redis unavailable, using in-memory cache and token blacklist", zap.Error(err))
			redisClient = nil
		} else {
			defer func() { _ = redisClient.Close() }()
		}
	}

	cacheOpts := []cache.QueryCacheFactoryOption{cache.WithLogger(log)}
	if redisClient != nil {
		cacheOpts = append(cacheOpts, cache.WithRedisClient(redisClient))
	}
	queryCache, err := cache.NewQueryCacheFactory(cfg.Redis, cfg.Cache, cacheOpts...).Create()
	if err != nil {
		return fmt.Errorf("init query cache: %w", err)
	}
	defer func() { _ = queryCache.Close() }()

	var blacklist auth.TokenBlacklist
	if redisClient != nil {
		blacklist = auth.NewRedisTokenBlacklist(redisClient)
	} else {
		blacklist = auth.NewInMemoryTokenBlacklist()
	}

	// Events
	bus := event.NewInMemoryEventBus(log)
	bus.Subscribe(cache.NewInvalidationHandler(queryCache, log))

	// Repositories
	itemRepo := persistence.NewGormItemRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	assemblyRepo := persistence.NewGormAssemblyRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	supplierRepo := persistence.NewGormSupplierRepository(db.DB)
	pickListRepo := persistence.NewGormPickListRepository(db.DB)
	orderRepo := persistence.NewGormPurchaseOrderRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	scope := persistence.NewGormTransactionScope(db.DB)

	businessMetrics, err := tel.StartBusinessMetrics(itemRepo, log)
	if err != nil {
		return fmt.Errorf("init business metrics: %w", err)
	}
	if businessMetrics != nil {
		bus.Subscribe(businessMetrics)
	}

	if err := bus.Start(ctx); err != nil {
		return fmt.Errorf("start event bus: %w", err)
	}
	defer func() {
		if err := bus.Stop(context.Background()); err != nil {
			log.Error("Failed to stop event bus", zap.Error(err))
		}
	}()

	// Documents
	objectStore, err := storage.New(ctx, cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("init object storage: %w", err)
	}
	paperSize, err := printing.ParsePaperSize(cfg.Printing.PaperSize)
	if err != nil {
		return err
	}
	var renderer printing.PDFRenderer
	if cfg.Printing.Enabled {
		chrome, err := printing.NewChromedpRenderer(&printing.ChromedpConfig{
			DefaultTimeout: cfg.Printing.Timeout,
			RemoteURL:      cfg.Printing.ChromeURL,
			NoSandbox:      true,
			Logger:         log,
		})
		if err != nil {
			return fmt.Errorf("init pdf renderer: %w", err)
		}
		defer func() { _ = chrome.Close() }()
		renderer = chrome
	} else {
		log.Info("PDF rendering disabled, documents are available as HTML only")
	}
	documents := printing.NewDocumentService(nil, renderer, objectStore, printing.DocumentConfig{
		CompanyName: cfg.Printing.CompanyName,
		PaperSize:   paperSize,
		Timeout:     cfg.Printing.Timeout,
		LinkExpiry:  cfg.Storage.PresignExpiration,
	}, log)

	// Services
	support := common.NewSupport(bus, queryCache, cfg.Cache.ListTTL, log)
	itemService := catalogapp.NewItemService(itemRepo, itemRepo, categoryRepo, supplierRepo, support)
	categoryService := catalogapp.NewCategoryService(categoryRepo, support)
	assemblyService := catalogapp.NewAssemblyService(assemblyRepo, itemRepo, categoryRepo, support)
	customerService := partnerapp.NewCustomerService(customerRepo, support)
	supplierService := partnerapp.NewSupplierService(supplierRepo, support)
	pickListService := productionapp.NewPickListService(pickListRepo, customerRepo, itemRepo, assemblyRepo, orderRepo, scope, documents, support)
	orderService := purchasingapp.NewPurchaseOrderService(orderRepo, supplierRepo, itemRepo, pickListRepo, scope, documents, support)
	dashboardService := reporting.NewDashboardService(itemRepo, pickListRepo, orderRepo, supplierRepo)

	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, identityapp.AuthServiceConfig{
		MaxLoginAttempts: cfg.JWT.MaxLoginAttempts,
		LockDuration:     cfg.JWT.LockDuration,
	}, log)

	created, err := authService.Bootstrap(ctx, identityapp.BootstrapAdmin{
		Username: cfg.Bootstrap.AdminUsername,
		Email:    cfg.Bootstrap.AdminEmail,
		Password: cfg.Bootstrap.AdminPassword,
	})
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	if created {
		log.Info("Bootstrap admin created", zap.String("username", cfg.Bootstrap.AdminUsername))
	}

	handlers := router.Handlers{
		Account:       handler.NewAccountHandler(authService),
		Item:          handler.NewItemHandler(itemService, dashboardService),
		Category:      handler.NewCategoryHandler(categoryService),
		Assembly:      handler.NewAssemblyHandler(assemblyService),
		Customer:      handler.NewCustomerHandler(customerService),
		Supplier:      handler.NewSupplierHandler(supplierService),
		PickList:      handler.NewPickListHandler(pickListService),
		PurchaseOrder: handler.NewPurchaseOrderHandler(orderService),
		Dashboard:     handler.NewDashboardHandler(dashboardService),
	}

	// HTTP
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		return fmt.Errorf("set trusted proxies: %w", err)
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     tel.Tracer.IsEnabled(),
	}))
	engine.Use(middleware.SpanEnricher())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsCfg))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow, cfg.HTTP.RateLimitBurst)
		defer limiter.Stop()
		engine.Use(middleware.RateLimit(limiter))
	}

	if tel.Meter.IsEnabled() {
		httpMetrics, err := middleware.HTTPMetrics(tel.Meter.Meter(telemetry.TracerName))
		if err != nil {
			return fmt.Errorf("init http metrics: %w", err)
		}
		engine.Use(httpMetrics)
	}
	if tel.Profiler.IsEnabled() {
		engine.Use(middleware.ProfilingWithConfig(middleware.DefaultProfilingConfig()))
	}

	health := handler.NewHealthHandler(db, cfg.App.Version)
	engine.GET("/health", health.Health)

	swagger := engine.Group("/swagger", middleware.SwaggerProtection(middleware.SwaggerConfig{
		Enabled:    cfg.Swagger.Enabled,
		AllowedIPs: cfg.Swagger.AllowedIPs,
	}))
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r := router.NewRouter(engine).Use(middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		Validator: authService,
		SkipPaths: router.PublicPaths(router.DefaultBasePath),
		Logger:    log,
	}))
	router.RegisterAPI(r, handlers, middleware.RequireAdmin())
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		log.Info("Shutting down server", zap.String("signal", sig.String()))
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info("Server exited")
	return nil
}
