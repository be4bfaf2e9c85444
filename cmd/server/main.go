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

	catalogapp "github.com/storefront/backend/internal/application/catalog"
	identityapp "github.com/storefront/backend/internal/application/identity"
	orderapp "github.com/storefront/backend/internal/application/order"
	statsapp "github.com/storefront/backend/internal/application/stats"
	"github.com/storefront/backend/internal/domain/stats"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/storefront/backend/internal/interfaces/http/router"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting storefront backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	orderStatsRepo := persistence.NewGormOrderStatsRepository(db.DB, cfg.Stats.TimeZone)
	productStatsRepo := persistence.NewGormProductStatsRepository(db.DB)
	userStatsRepo := persistence.NewGormUserStatsRepository(db.DB)

	// Application services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, jwtService)
	categoryService := catalogapp.NewCategoryService(categoryRepo, productRepo)
	productService := catalogapp.NewProductService(productRepo, categoryRepo)
	orderService := orderapp.NewOrderService(orderRepo, productRepo)

	location, err := cfg.Stats.Location()
	if err != nil {
		log.Fatal("Failed to load reporting time zone", zap.Error(err))
	}
	defaultPeriod := stats.ParsePeriod(cfg.Stats.DefaultPeriod, stats.PeriodMonth)
	resolver := stats.NewPeriodResolver(time.Now, location, cfg.Stats.WeekStartDay(), defaultPeriod)
	statsService := statsapp.NewStatisticsService(
		resolver,
		orderStatsRepo,
		productStatsRepo,
		userStatsRepo,
		cfg.Stats.LowStockThreshold,
	)

	reportCache := cache.NewReportCache(cfg.Redis, log)

	// HTTP handlers
	systemHandler := handler.NewSystemHandler(version)
	authHandler := handler.NewAuthHandler(authService)
	categoryHandler := handler.NewCategoryHandler(categoryService)
	productHandler := handler.NewProductHandler(productService)
	orderHandler := handler.NewOrderHandler(orderService)
	dashboardHandler := handler.NewDashboardHandler(statsService, reportCache, cfg.Stats.CacheTTL, defaultPeriod, location)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(middleware.Tracing(cfg.App.Name))
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	authenticated := middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		Logger:     log,
	})
	adminOnly := middleware.RequireAdmin()

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// System routes
	systemRoutes := router.NewDomainGroup("system", "")
	systemRoutes.GET("/health", systemHandler.Health)

	// Auth routes; profile and password change need a valid token
	authRoutes := router.NewDomainGroup("auth", "/auth")
	authRoutes.POST("/login", authHandler.Login)
	authRoutes.POST("/register", authHandler.Register)
	authRoutes.GET("/profile", authenticated, authHandler.Profile)
	authRoutes.POST("/change-password", authenticated, authHandler.ChangePassword)

	// Catalog routes; reads are public, writes are admin only
	categoryRoutes := router.NewDomainGroup("categories", "/categories")
	categoryRoutes.GET("", categoryHandler.List)
	categoryRoutes.GET("/:id", categoryHandler.GetByID)
	categoryRoutes.POST("", authenticated, adminOnly, categoryHandler.Create)
	categoryRoutes.PUT("/:id", authenticated, adminOnly, categoryHandler.Update)
	categoryRoutes.DELETE("/:id", authenticated, adminOnly, categoryHandler.Delete)

	productRoutes := router.NewDomainGroup("products", "/products")
	productRoutes.GET("", productHandler.List)
	productRoutes.GET("/:id", productHandler.GetByID)
	productRoutes.POST("", authenticated, adminOnly, productHandler.Create)
	productRoutes.PUT("/:id", authenticated, adminOnly, productHandler.Update)
	productRoutes.POST("/:id/stock", authenticated, adminOnly, productHandler.AdjustStock)
	productRoutes.DELETE("/:id", authenticated, adminOnly, productHandler.Delete)

	// Order routes; placing an order needs a login, management is admin only
	orderRoutes := router.NewDomainGroup("orders", "/orders")
	orderRoutes.Use(authenticated)
	orderRoutes.POST("", orderHandler.Create)
	orderRoutes.GET("", adminOnly, orderHandler.List)
	orderRoutes.GET("/:id", adminOnly, orderHandler.GetByID)
	orderRoutes.POST("/:id/status", adminOnly, orderHandler.UpdateStatus)
	orderRoutes.POST("/:id/cancel", adminOnly, orderHandler.Cancel)

	// Dashboard routes are the admin reporting surface
	dashboardRoutes := router.NewDomainGroup("dashboard", "/dashboard")
	dashboardRoutes.Use(authenticated, adminOnly)
	dashboardRoutes.GET("/overview", dashboardHandler.Overview)
	dashboardRoutes.GET("/revenue", dashboardHandler.Revenue)
	dashboardRoutes.GET("/orders", dashboardHandler.Orders)
	dashboardRoutes.GET("/products", dashboardHandler.Products)
	dashboardRoutes.GET("/customers", dashboardHandler.Customers)
	dashboardRoutes.GET("/growth", dashboardHandler.Growth)
	dashboardRoutes.GET("/category-performance", dashboardHandler.CategoryPerformance)
	dashboardRoutes.POST("/cache/clear", dashboardHandler.ClearCache)

	r.Register(systemRoutes).
		Register(authRoutes).
		Register(categoryRoutes).
		Register(productRoutes).
		Register(orderRoutes).
		Register(dashboardRoutes)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}
	log.Info("Server stopped")
}
