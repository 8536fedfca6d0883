package internal

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/karloscodes/cartridge"
	cartridgemiddleware "github.com/karloscodes/cartridge/middleware"

	"salesbi/internal/config"
	"salesbi/internal/http"
	"salesbi/internal/http/middleware"
	"salesbi/internal/metrics"
)

// apiCORSConfig lets other origins embed charts and call the question API.
var apiCORSConfig = &cors.Config{
	AllowOrigins: "*",
	AllowMethods: "POST,GET,OPTIONS",
	AllowHeaders: "Origin, Content-Type, Accept",
}

// MountAppRoutes mounts all application routes using cartridge's route API
func MountAppRoutes(srv *cartridge.Server) {
	cfg := config.GetConfig()

	// Rate limiting only applies in production; in development/test it would
	// interfere with testing.
	conditionalRateLimiter := func(limiter fiber.Handler) fiber.Handler {
		return func(c *fiber.Ctx) error {
			if cfg.IsProduction() {
				return limiter(c)
			}
			return c.Next()
		}
	}

	// Every question reads the dataset and renders a chart, so keep it modest.
	questionRateLimiter := conditionalRateLimiter(cartridgemiddleware.RateLimiter(
		cartridgemiddleware.WithMax(60),
		cartridgemiddleware.WithDuration(time.Minute),
	))

	questionAPIConfig := &cartridge.RouteConfig{
		EnableCORS:       true,
		CustomMiddleware: []fiber.Handler{questionRateLimiter},
		CORSConfig:       apiCORSConfig,
	}

	adminConfig := &cartridge.RouteConfig{
		CustomMiddleware: []fiber.Handler{
			middleware.APIKeyAuth(func() string { return cfg.APIKey }, srv.GetLogger()),
		},
	}

	noContent := func(ctx *cartridge.Context) error {
		return ctx.SendStatus(fiber.StatusNoContent)
	}

	// === ROOT ROUTES ===
	srv.Get("/", http.HomeIndexAction)

	// Health check endpoint
	srv.Get("/_health", http.HealthIndexAction)
	srv.Head("/_health", http.HealthIndexAction)

	// === QUESTION API ===
	srv.Get("/api/examples", http.ExamplesAction)
	srv.Get("/api/overview", http.OverviewAction, questionAPIConfig)
	srv.Post("/api/ask", http.AskAction, questionAPIConfig)
	srv.Options("/api/ask", noContent, questionAPIConfig)
	srv.Get("/api/chart.png", http.ChartAction, questionAPIConfig)
	srv.Get("/api/data.csv", http.DataCSVAction, questionAPIConfig)
	srv.Get("/api/history", http.HistoryIndexAction, adminConfig)

	// === METRICS ===
	metricsHandler := metrics.Handler()
	srv.Get("/metrics", func(ctx *cartridge.Context) error {
		return metricsHandler(ctx.Ctx)
	}, adminConfig)
}
