package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/cardfile/cardfile/internal/account"
	"github.com/cardfile/cardfile/internal/auth"
	"github.com/cardfile/cardfile/internal/blob"
	"github.com/cardfile/cardfile/internal/card"
	"github.com/cardfile/cardfile/internal/config"
	"github.com/cardfile/cardfile/internal/credential"
	"github.com/cardfile/cardfile/internal/hashing"
	"github.com/cardfile/cardfile/internal/mail"
	"github.com/cardfile/cardfile/internal/middleware"
	"github.com/cardfile/cardfile/internal/ratelimit"
	"github.com/cardfile/cardfile/internal/token"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Blob   blob.Store
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB presence outside of dev, even though main also checks.
	if !d.Cfg.IsDev() && d.DB == nil {
		return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	RegisterHealthRoutes(app, d)

	// Repositories: Postgres when available, in-memory in dev without one.
	var (
		userRepo  account.Repository
		cardRepo  card.Repository
		tokenRepo token.Repository
	)
	if d.DB != nil {
		userRepo = account.NewPostgresRepository(d.DB)
		cardRepo = card.NewPostgresRepository(d.DB)
		tokenRepo = token.NewPostgresRepository(d.DB)
	} else {
		userRepo = account.NewMemoryRepository()
		cardRepo = card.NewMemoryRepository()
		tokenRepo = token.NewMemoryRepository()
	}

	hasher := hashing.New(d.Cfg.BcryptCost)
	signer := credential.NewSigner(d.Cfg.SessionSecret)
	tokens := token.NewStore(tokenRepo, d.Cfg.TokenBytes)
	mailer := mail.NewLogMailer(d.Logger)

	accountSvc := account.NewService(userRepo, hasher)
	authSvc := auth.NewService(d.Cfg, userRepo, tokens, hasher, signer, mailer, d.Logger)
	cardSvc := card.NewService(cardRepo, userRepo, tokens, d.Blob, d.Cfg.CardVerifyTTL)

	authHandler := auth.NewHandler(accountSvc, authSvc)
	cardHandler := card.NewHandler(cardSvc)

	// Sensitive routes share one quota config, with per-route windows.
	var limiter ratelimit.Limiter
	if d.Cache != nil {
		limiter = ratelimit.NewRedis(d.Cache)
	} else {
		limiter = ratelimit.NewFixedWindow()
	}
	limited := func(route string) fiber.Handler {
		return middleware.RateLimit(limiter, route, d.Cfg.RateLimitWindow, d.Cfg.RateLimitMax)
	}

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	RegisterAuthRoutes(api, authHandler, limited)
	RegisterCardVerifyRoute(api, cardHandler, limited)

	sessionMW := middleware.Session(signer)
	protected := api.Group("", sessionMW)
	RegisterAccountRoutes(protected, accountSvc, authSvc)
	RegisterCardRoutes(protected, cardHandler)

	return nil
}
