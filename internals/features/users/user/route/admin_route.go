package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"district_platform/internals/features/users/user/controller"
)

func UserAdminRoutes(admin fiber.Router, db *gorm.DB) {
	userCtrl := controller.NewUserController(db)

	users := admin.Group("/users")
	users.Get("/", userCtrl.ListUsers)
	users.Post("/", userCtrl.CreateUser)
}
