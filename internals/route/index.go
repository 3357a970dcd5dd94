package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"district_platform/internals/constants"
	assignmentRoute "district_platform/internals/features/assignments/route"
	templateRoute "district_platform/internals/features/forms/templates/route"
	authRoute "district_platform/internals/features/users/auth/route"
	userRoute "district_platform/internals/features/users/user/route"
	helper "district_platform/internals/helpers"
	authMiddleware "district_platform/internals/middlewares/auth"
)

// SetupRoutes wires the whole HTTP surface. The role-gated groups live on
// their own prefixes because fiber binds group middleware to the prefix,
// not to the group object.
func SetupRoutes(app *fiber.App, db *gorm.DB) {
	api := app.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		return helper.JsonOK(c, "", fiber.Map{"status": "ok"})
	})

	admin := app.Group("/api/admin",
		authMiddleware.AuthMiddleware(),
		authMiddleware.OnlyRoles(constants.RoleErrorAdmin("the admin panel"), constants.AdminOnly...))
	district := app.Group("/api/district",
		authMiddleware.AuthMiddleware(),
		authMiddleware.OnlyRoles(constants.RoleErrorDistrict("district workspaces"), constants.DistrictOnly...))

	authRoute.AuthRoutes(api, db)
	userRoute.UserAdminRoutes(admin, db)
	templateRoute.TemplateAdminRoutes(admin, db)
	assignmentRoute.SubmissionAdminRoutes(admin, db)
	assignmentRoute.AssignmentDistrictRoutes(district, db)
}
