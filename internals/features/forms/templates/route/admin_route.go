package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"district_platform/internals/features/forms/templates/controller"
)

func TemplateAdminRoutes(admin fiber.Router, db *gorm.DB) {
	templateCtrl := controller.NewTemplateController(db)
	fieldCtrl := controller.NewFieldController(db)

	templates := admin.Group("/templates")
	templates.Get("/", templateCtrl.ListTemplates)
	templates.Post("/", templateCtrl.CreateTemplate)
	templates.Get("/:id", templateCtrl.GetTemplateDetail)
	templates.Put("/:id", templateCtrl.UpdateTemplate)
	templates.Delete("/:id", templateCtrl.DeleteTemplate)
	templates.Post("/:id/publish", templateCtrl.PublishTemplate)
	templates.Post("/:id/fields", fieldCtrl.AddField)

	fields := admin.Group("/fields")
	fields.Put("/:id", fieldCtrl.UpdateField)
	fields.Delete("/:id", fieldCtrl.DeleteField)
}
