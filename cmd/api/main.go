package main

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/jsilmaro/c6/internal/auth"
	"github.com/jsilmaro/c6/internal/budgets"
	"github.com/jsilmaro/c6/internal/config"
	apphttp "github.com/jsilmaro/c6/internal/http"
	"github.com/jsilmaro/c6/internal/reports"
	"github.com/jsilmaro/c6/internal/router"
	"github.com/jsilmaro/c6/internal/transactions"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("error loading config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		logger.Fatal("DATABASE_URL is not set")
	}
	if cfg.JWTSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}
	secret := []byte(cfg.JWTSecret)

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("error creating pgx pool: %v", err)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		logger.Fatalf("error pinging database: %v", err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "internal server error"

			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				code = fiberErr.Code
				message = fiberErr.Message
			}

			return c.Status(code).JSON(fiber.Map{"error": message})
		},
	})

	app.Use(router.CorsMiddleware(cfg.CORSOrigin))
	app.Use(requestLogger(logger))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})

	authMiddleware := buildJWTMiddleware(pool, secret)

	txRepo := transactions.NewRepo(pool)
	aggregator := reports.NewAggregator(txRepo)
	selector := reports.NewSelector(aggregator)

	r := &router.Router{
		AuthHandler: &apphttp.AuthHandler{
			DB:          pool,
			Secret:      secret,
			TokenExpiry: cfg.TokenExpiry,
		},
		TxHandler:      transactions.NewHandler(txRepo),
		BudgetHandler:  budgets.NewHandler(budgets.NewRepo(pool)),
		ReportsHandler: reports.NewHandler(selector, pool),
		AuthMW:         authMiddleware,
	}
	r.RegisterRoutes(app)

	logger.WithField("port", cfg.Port).Info("listening")
	logger.Fatal(app.Listen(":" + cfg.Port))
}

func requestLogger(logger *logrus.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		logger.WithFields(logrus.Fields{
			"method":   c.Method(),
			"path":     c.Path(),
			"status":   c.Response().StatusCode(),
			"duration": time.Since(start).String(),
		}).Info("request")
		return err
	}
}

func buildJWTMiddleware(pool *pgxpool.Pool, secret []byte) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing token")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		userID, err := auth.ParseToken(secret, parts[1])
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		c.Locals("user_id", userID)

		// Update last_seen_at (best-effort, do not block request)
		go func(uid string) {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_, _ = pool.Exec(ctx, `UPDATE users SET last_seen_at = NOW() WHERE id = $1::uuid`, uid)
		}(userID)

		return c.Next()
	}
}
