package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"district_platform/internals/features/users/auth/controller"
	"district_platform/internals/middlewares"
	authMiddleware "district_platform/internals/middlewares/auth"
)

// AuthRoutes registers the public login endpoint (with its stricter rate
// limit) and the authed identity endpoint.
func AuthRoutes(api fiber.Router, db *gorm.DB) {
	authCtrl := controller.NewAuthController(db)

	api.Post("/login", middlewares.LoginRateLimiter(), authCtrl.Login)
	api.Get("/me", authMiddleware.AuthMiddleware(), authCtrl.Me)
}
