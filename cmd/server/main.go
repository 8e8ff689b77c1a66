package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appexpedition "github.com/corsair/backend/internal/application/expedition"
	appidentity "github.com/corsair/backend/internal/application/identity"
	appreconciliation "github.com/corsair/backend/internal/application/reconciliation"
	appvault "github.com/corsair/backend/internal/application/vault"
	"github.com/corsair/backend/internal/domain/expedition"
	"github.com/corsair/backend/internal/domain/vault"
	"github.com/corsair/backend/internal/infrastructure/auth"
	"github.com/corsair/backend/internal/infrastructure/cache"
	"github.com/corsair/backend/internal/infrastructure/catalog"
	"github.com/corsair/backend/internal/infrastructure/config"
	"github.com/corsair/backend/internal/infrastructure/crypto"
	"github.com/corsair/backend/internal/infrastructure/event"
	"github.com/corsair/backend/internal/infrastructure/ledger"
	"github.com/corsair/backend/internal/infrastructure/logger"
	"github.com/corsair/backend/internal/infrastructure/notify"
	"github.com/corsair/backend/internal/infrastructure/persistence"
	"github.com/corsair/backend/internal/infrastructure/scheduler"
	"github.com/corsair/backend/internal/interfaces/http/handler"
	"github.com/corsair/backend/internal/interfaces/http/middleware"
	"github.com/corsair/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Corsair Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	expeditionRepo := persistence.NewGormExpeditionRepository(db.DB)
	itemRepo := persistence.NewGormItemRepository(db.DB)
	consumptionRepo := persistence.NewGormConsumptionRepository(db.DB)
	pirateRepo := persistence.NewGormPirateRepository(db.DB)
	registryRepo := persistence.NewGormAliasRegistryRepository(db.DB)
	noteRepo := persistence.NewGormNoteRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	ownerRepo := persistence.NewGormOwnerRepository(db.DB)

	// Owner-facing ledger collaborators
	productCatalog := catalog.NewGormProductCatalog(db.DB)
	salesLedger := ledger.NewGormSalesLedger(db.DB)
	cashBalance := ledger.NewGormCashBalance(db.DB)

	// Envelope cipher for identity material and the alias naming key. When no
	// master key material is configured (development only) an ephemeral key is
	// minted, so aliases are stable per process, not across restarts.
	cipher := crypto.NewEnvelopeCipher()
	masterKey, err := cfg.Vault.MasterKey()
	if err != nil {
		log.Fatal("Invalid vault master key material", zap.Error(err))
	}
	if len(masterKey) == 0 {
		masterKey, err = crypto.GenerateKey()
		if err != nil {
			log.Fatal("Failed to mint ephemeral master key", zap.Error(err))
		}
		log.Warn("vault.master_key_material not configured, using ephemeral key; aliases will not survive a restart")
	}
	aliasKey, err := crypto.DeriveSubkey(masterKey, "alias-naming")
	if err != nil {
		log.Fatal("Failed to derive alias naming key", zap.Error(err))
	}
	aliasGen := vault.NewAliasGenerator(aliasKey)

	// Progress notifier: Redis pub/sub when reachable, otherwise a no-op
	var notifier expedition.Notifier
	redisNotifier, err := notify.NewRedisNotifier(cfg.Redis, log)
	if err != nil {
		log.Warn("Redis unavailable, progress notifications disabled", zap.Error(err))
		notifier = notify.NopNotifier{}
	} else {
		notifier = redisNotifier
		defer func() {
			if err := redisNotifier.Close(); err != nil {
				log.Error("Error closing notifier", zap.Error(err))
			}
		}()
	}

	// Initialize application services
	expeditionService := appexpedition.NewExpeditionService(
		expeditionRepo, itemRepo, consumptionRepo, cipher, notifier, log)
	ledgerService := appexpedition.NewLedgerService(
		expeditionRepo, itemRepo, consumptionRepo, pirateRepo, paymentRepo, productCatalog, cipher, notifier, log)
	vaultService := appvault.NewVaultService(
		pirateRepo, registryRepo, noteRepo, expeditionRepo, cipher, aliasGen, log)
	bridgeService := appreconciliation.NewBridgeService(
		expeditionRepo, itemRepo, consumptionRepo, pirateRepo, paymentRepo,
		salesLedger, cashBalance, cipher, log)

	// Initialize event bus and handlers
	eventBus := event.NewInMemoryEventBus(log)

	// Idempotency store guards handlers against redelivered events. Redis when
	// reachable, in-memory otherwise.
	storeFactory := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log))
	idempotencyStore, err := storeFactory.CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}

	// Consumption recorded -> completion re-check
	consumptionHandler := appexpedition.NewConsumptionRecordedHandler(expeditionService, log)
	idempotentConsumption := event.NewIdempotentHandler(consumptionHandler, idempotencyStore, log)
	eventBus.Subscribe(idempotentConsumption, idempotentConsumption.EventTypes()...)

	log.Info("Event handlers registered",
		zap.Strings("consumption_recorded_events", consumptionHandler.EventTypes()),
	)

	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Inject event bus into services that publish events
	expeditionService.SetEventPublisher(eventBus)
	ledgerService.SetEventPublisher(eventBus)
	vaultService.SetEventPublisher(eventBus)

	// Deadline sweeper (if enabled)
	if cfg.Sweeper.Enabled {
		sweeper := scheduler.NewDeadlineSweeper(scheduler.DeadlineSweeperConfig{
			Enabled:       cfg.Sweeper.Enabled,
			CheckInterval: cfg.Sweeper.CheckInterval,
		}, expeditionRepo, expeditionService, log)
		if err := sweeper.Start(context.Background()); err != nil {
			log.Fatal("Failed to start deadline sweeper", zap.Error(err))
		}
		defer func() {
			if err := sweeper.Stop(context.Background()); err != nil {
				log.Error("Error stopping deadline sweeper", zap.Error(err))
			}
		}()
		log.Info("Deadline sweeper started",
			zap.Duration("check_interval", cfg.Sweeper.CheckInterval),
		)
	}

	// Token issuance and validation. Revocations are shared through Redis
	// when reachable; the in-memory fallback covers single-instance runs.
	jwtService := auth.NewJWTService(cfg.JWT)
	var blacklist auth.TokenBlacklist
	redisBlacklist, err := auth.NewRedisTokenBlacklist(auth.RedisTokenBlacklistConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn("Redis unavailable, using in-memory token blacklist", zap.Error(err))
		blacklist = auth.NewInMemoryTokenBlacklist()
	} else {
		blacklist = redisBlacklist
	}

	authService := appidentity.NewAuthService(
		ownerRepo, jwtService, blacklist, appidentity.DefaultAuthServiceConfig(), log)

	// Initialize HTTP handlers
	authHandler := handler.NewAuthHandler(authService)
	expeditionHandler := handler.NewExpeditionHandler(expeditionService, ledgerService)
	vaultHandler := handler.NewVaultHandler(vaultService, ledgerService)
	reconciliationHandler := handler.NewReconciliationHandler(bridgeService)
	systemHandler := handler.NewSystemHandler(db.DB)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	// 7. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health endpoints (outside API versioning, no authentication)
	engine.GET("/healthz", systemHandler.Healthz)
	engine.GET("/readyz", systemHandler.Readyz)

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
		SkipPaths: []string{
			"/api/v1/system/info",
			"/api/v1/auth/register",
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
		},
		Logger: log,
	}
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))
	r.Use(middleware.OwnerKey())

	r.Register(router.AuthRoutes(authHandler)).
		Register(router.ExpeditionRoutes(expeditionHandler)).
		Register(router.VaultRoutes(vaultHandler)).
		Register(router.ReconciliationRoutes(reconciliationHandler))

	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	r.Register(systemRoutes)

	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
