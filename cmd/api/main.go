package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"backoffice/docs"
	"backoffice/internal/auth"
	"backoffice/internal/config"
	"backoffice/internal/database"
	"backoffice/internal/database/migration"
	handlers "backoffice/internal/http/handler"
	"backoffice/internal/http/middleware"
	"backoffice/internal/logging"
	"backoffice/internal/otel"
	"backoffice/internal/repository/postgres"
	"backoffice/internal/service"
	"backoffice/internal/storage"
)

const uploadBodyLimit = 10 << 20

// @title                      Back Office API
// @version                    1.0
// @BasePath                   /
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	log := logging.FromConfig(cfg.Log)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		log.Fatal("failed to initialize tracing", zap.Error(err))
	}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
		log.Fatal("failed to migrate database", zap.Error(err))
	}

	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		log.Fatal("failed to initialize object storage", zap.Error(err))
	}
	objStore = storage.WithBreaker(objStore, cfg.Breaker, log)

	tokens, err := auth.NewTokenManager(cfg.Auth)
	if err != nil {
		log.Fatal("failed to initialize token manager", zap.Error(err))
	}
	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)

	categories := postgres.NewCategoryPostgres(db)
	products := postgres.NewProductPostgres(db)
	orders := postgres.NewOrderPostgres(db)
	customers := postgres.NewCustomerPostgres(db)
	transactions := postgres.NewTransactionPostgres(db)
	users := postgres.NewUserPostgres(db)
	roles := postgres.NewRolePostgres(db)
	content := postgres.NewContentPostgres(db)

	media := service.NewMediaService(objStore, cfg.MinIO.PresignExpiry, log)
	svcs := handlers.Services{
		Categories:   service.NewCategoryService(categories, content),
		Products:     service.NewProductService(products, categories, media, log),
		Orders:       service.NewOrderService(orders, customers),
		Customers:    service.NewCustomerService(customers, orders, media, log),
		Transactions: service.NewTransactionService(transactions),
		Roles:        service.NewRoleService(roles, users),
		Users:        service.NewUserService(users, roles, hasher, media, log),
		Auth:         service.NewAuthService(users, roles, tokens, hasher),
		Content:      service.NewContentService(content, categories, media, log),
		Dashboard:    service.NewDashboardService(products, orders, customers, users, transactions),
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Fatal("failed to register metrics", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(log),
		BodyLimit:    uploadBodyLimit,
	})

	app.Use(otelfiber.Middleware(otelfiber.WithNext(func(c *fiber.Ctx) bool {
		return c.Path() == "/metrics" || c.Path() == "/healthz"
	})))
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log))
	app.Use(metrics.Handler())

	// Unauthenticated endpoints go before RegisterRoutes installs the auth middleware.
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	handlers.RegisterRoutes(app, db, svcs)

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error("http shutdown failed", zap.Error(err))
		}
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Error("tracing shutdown failed", zap.Error(err))
		}
	}()

	addr := ":" + cfg.Port
	log.Info("listening", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}
}
