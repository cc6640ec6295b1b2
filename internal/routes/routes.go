package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/laxo-exchange/laxo/internal/auth"
	"github.com/laxo-exchange/laxo/internal/config"
	"github.com/laxo-exchange/laxo/internal/deposits"
	"github.com/laxo-exchange/laxo/internal/identity"
	"github.com/laxo-exchange/laxo/internal/kyc"
	"github.com/laxo-exchange/laxo/internal/ledger"
	"github.com/laxo-exchange/laxo/internal/middleware"
	"github.com/laxo-exchange/laxo/internal/notification"
	"github.com/laxo-exchange/laxo/internal/pricing"
	"github.com/laxo-exchange/laxo/internal/trading"
	"github.com/laxo-exchange/laxo/internal/withdrawals"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though main also checks.
	if !isDev(d.Cfg.AppEnv) {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}
	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	// Plain text access log in desired format: [HH:MM:SS] 200 -  145ms METHOD /path
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(middleware.Audit(d.Logger))
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	// Health
	RegisterHealthRoutes(app, d)

	// Services and handlers
	var wallets ledger.Store
	if d.DB != nil {
		wallets = ledger.NewPostgresStore(d.DB)
	} else {
		wallets = ledger.NewInMemory()
	}

	var identityRepo identity.Repository
	if d.DB != nil {
		identityRepo = identity.NewPostgresRepository(d.DB)
	} else {
		identityRepo = identity.NewMemoryRepository()
	}
	identitySvc := identity.NewService(identityRepo, wallets)

	var kycRepo kyc.Repository
	if d.DB != nil {
		kycRepo = kyc.NewPostgresRepository(d.DB)
	} else {
		kycRepo = kyc.NewMemoryRepository()
	}
	kycSvc := kyc.NewService(kycRepo, identitySvc, d.Cfg.KYCReviewPeriod)

	var snapshots pricing.SnapshotStore
	if d.DB != nil {
		snapshots = pricing.NewPostgresSnapshotStore(d.DB)
	} else {
		snapshots = pricing.NewMemorySnapshotStore()
	}
	feed := pricing.NewCoinGeckoSource(d.Cfg.PriceFeedURL, d.Cfg.PriceFetchTimeout)
	oracle := pricing.NewOracle(feed, snapshots, d.Logger, d.Cfg.PriceMaxAge)

	notifier := notification.NewLoggerNotifier(d.Logger)

	var depositRepo deposits.Repository
	if d.DB != nil {
		depositRepo = deposits.NewPostgresRepository(d.DB)
	} else {
		depositRepo = deposits.NewMemoryRepository()
	}
	depositSvc := deposits.NewService(depositRepo, wallets, deposits.InstantConfirmer{}, identitySvc, notifier)

	var withdrawalRepo withdrawals.Repository
	if d.DB != nil {
		withdrawalRepo = withdrawals.NewPostgresRepository(d.DB)
	} else {
		withdrawalRepo = withdrawals.NewMemoryRepository()
	}
	withdrawalSvc := withdrawals.NewService(withdrawalRepo, wallets, notifier)

	var orderRepo trading.OrderRepository
	if d.DB != nil {
		orderRepo = trading.NewPostgresOrderRepository(d.DB)
	} else {
		orderRepo = trading.NewMemoryOrderRepository()
	}
	tradingSvc := trading.NewService(wallets, oracle, orderRepo, notifier)

	authSvc := auth.NewService(d.Cfg, identityRepo)
	authHandler := auth.NewHandler(identitySvc, authSvc)
	kycHandler := kyc.NewHandler(kycSvc)
	depositHandler := deposits.NewHandler(depositSvc)
	withdrawalHandler := withdrawals.NewHandler(withdrawalSvc)
	tradingHandler := trading.NewHandler(tradingSvc)

	// API routes
	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Public routes
	rateLimiter := middleware.LoginRateLimit(d.Cache, 5)
	RegisterAuthRoutes(api, authHandler, rateLimiter)
	RegisterPriceRoutes(api, oracle)

	// Protected routes
	jwtmw := middleware.JWTAuth(d.Cfg, identityRepo)
	protected := api.Group("", jwtmw)
	protected.Get("/me", func(c *fiber.Ctx) error {
		uid, _ := c.Locals("user_id").(string)
		if uid == "" {
			return c.SendStatus(http.StatusUnauthorized)
		}
		user, err := identityRepo.FindByID(c.UserContext(), uid)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "user not found")
		}
		return c.JSON(fiber.Map{
			"user_id":    user.ID,
			"email":      user.Email,
			"name":       user.Name,
			"status":     user.Status,
			"created_at": user.CreatedAt,
		})
	})
	RegisterKYCRoutes(protected, kycHandler)
	RegisterWalletRoutes(protected, wallets)
	RegisterDepositRoutes(protected, depositHandler)
	RegisterWithdrawalRoutes(protected, withdrawalHandler)
	RegisterTradingRoutes(protected, tradingHandler)

	return nil
}

func isDev(env string) bool {
	switch strings.ToLower(env) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}
