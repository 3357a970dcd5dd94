package middlewares

import (
	"github.com/gofiber/fiber/v2"

	"district_platform/internals/middlewares/logger"
)

// SetupMiddlewares installs the app-wide middleware chain.
func SetupMiddlewares(app *fiber.App) {
	app.Use(RecoveryMiddleware())
	app.Use(CorsMiddleware())
	app.Use(logger.LoggerMiddleware())
	app.Use(GlobalRateLimiter())
	app.Use(NoCacheMiddleware())
}

// NoCacheMiddleware disables caching for API responses. The dashboard
// frontend polls aggressively and stale reads show up as "lost" edits.
func NoCacheMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("Cache-Control", "no-store, no-cache, must-revalidate, proxy-revalidate")
		c.Set("Pragma", "no-cache")
		c.Set("Expires", "0")
		return c.Next()
	}
}
